package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for a propstream daemon.
type Config struct {
	Instance InstanceConfig `yaml:"instance"`
	Realtime RealtimeConfig `yaml:"realtime"`
	Server   ServerConfig   `yaml:"server"`
	Watches  []WatchConfig  `yaml:"watches"`
}

// InstanceConfig identifies this daemon.
type InstanceConfig struct {
	ID string `yaml:"id"`
}

// RealtimeConfig holds connection and delivery settings.
type RealtimeConfig struct {
	WSURL        string `yaml:"ws_url"`  // push endpoint, empty disables push
	APIURL       string `yaml:"api_url"` // base URL for polling fetches
	ForcePolling bool   `yaml:"force_polling"`

	DefaultPollInterval time.Duration `yaml:"default_poll_interval"`
	ReconcileInterval   time.Duration `yaml:"reconcile_interval"`

	// Push transport tuning
	PingInterval  time.Duration `yaml:"ping_interval"`
	StaleAfter    time.Duration `yaml:"stale_after"`
	WriteTimeout  time.Duration `yaml:"write_timeout"`
	MessageBuffer int           `yaml:"message_buffer"`

	// Polling fetch tuning
	FetchTimeout time.Duration `yaml:"fetch_timeout"`
	MaxRetries   int           `yaml:"max_retries"`
	RetryBackoff time.Duration `yaml:"retry_backoff"`

	DedupCacheSize int `yaml:"dedup_cache_size"`
}

// ServerConfig holds the daemon's HTTP listener settings.
type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr"`
}

// WatchConfig declares one subscription the daemon establishes at startup.
type WatchConfig struct {
	ID                string        `yaml:"id"`
	Event             string        `yaml:"event"`
	Endpoint          string        `yaml:"endpoint"`
	QueryKey          StringList    `yaml:"query_key"`
	Interval          time.Duration `yaml:"interval"`
	SuppressUnchanged bool          `yaml:"suppress_unchanged"`
}

// StringList accepts either a single scalar or a sequence in yaml.
type StringList []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *StringList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var v string
		if err := node.Decode(&v); err != nil {
			return err
		}
		*s = StringList{v}
		return nil
	case yaml.SequenceNode:
		var v []string
		if err := node.Decode(&v); err != nil {
			return err
		}
		*s = StringList(v)
		return nil
	default:
		return fmt.Errorf("query_key must be a string or a list of strings")
	}
}
