package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultListenAddr        = ":8080"
	DefaultPollInterval      = 10 * time.Second
	DefaultReconcileInterval = 5 * time.Second
	DefaultPingInterval      = 15 * time.Second
	DefaultStaleAfter        = 60 * time.Second
	DefaultWriteTimeout      = 5 * time.Second
	DefaultMessageBuffer     = 1024
	DefaultFetchTimeout      = 10 * time.Second
	DefaultMaxRetries        = 3
	DefaultRetryBackoff      = 1 * time.Second
	DefaultDedupCacheSize    = 512
)

func (c *Config) applyDefaults() {
	if c.Server.ListenAddr == "" {
		c.Server.ListenAddr = DefaultListenAddr
	}

	r := &c.Realtime
	if r.DefaultPollInterval == 0 {
		r.DefaultPollInterval = DefaultPollInterval
	}
	if r.ReconcileInterval == 0 {
		r.ReconcileInterval = DefaultReconcileInterval
	}
	if r.PingInterval == 0 {
		r.PingInterval = DefaultPingInterval
	}
	if r.StaleAfter == 0 {
		r.StaleAfter = DefaultStaleAfter
	}
	if r.WriteTimeout == 0 {
		r.WriteTimeout = DefaultWriteTimeout
	}
	if r.MessageBuffer == 0 {
		r.MessageBuffer = DefaultMessageBuffer
	}
	if r.FetchTimeout == 0 {
		r.FetchTimeout = DefaultFetchTimeout
	}
	if r.MaxRetries == 0 {
		r.MaxRetries = DefaultMaxRetries
	}
	if r.RetryBackoff == 0 {
		r.RetryBackoff = DefaultRetryBackoff
	}
	if r.DedupCacheSize == 0 {
		r.DedupCacheSize = DefaultDedupCacheSize
	}

	// A watch without an interval polls at the instance default so it is
	// never silently inert when the layer falls back to polling.
	for i := range c.Watches {
		if c.Watches[i].Interval == 0 {
			c.Watches[i].Interval = r.DefaultPollInterval
		}
	}
}
