package config

import (
	"errors"
	"fmt"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if c.Instance.ID == "" {
		return errors.New("instance.id is required")
	}

	r := &c.Realtime
	if r.APIURL == "" {
		return errors.New("realtime.api_url is required")
	}
	if r.WSURL == "" && !r.ForcePolling {
		return errors.New("realtime.ws_url is required unless force_polling is set")
	}
	if r.DefaultPollInterval <= 0 {
		return errors.New("realtime.default_poll_interval must be positive")
	}
	if r.ReconcileInterval <= 0 {
		return errors.New("realtime.reconcile_interval must be positive")
	}
	if r.MessageBuffer < 1 {
		return errors.New("realtime.message_buffer must be >= 1")
	}
	if r.DedupCacheSize < 1 {
		return errors.New("realtime.dedup_cache_size must be >= 1")
	}

	seen := make(map[string]struct{}, len(c.Watches))
	for i, w := range c.Watches {
		if w.ID == "" {
			return fmt.Errorf("watches[%d].id is required", i)
		}
		if _, dup := seen[w.ID]; dup {
			return fmt.Errorf("watches[%d].id %q is duplicated", i, w.ID)
		}
		seen[w.ID] = struct{}{}
		if w.Event == "" && w.Endpoint == "" {
			return fmt.Errorf("watches[%d] (%s) needs an event, an endpoint, or both", i, w.ID)
		}
		if w.Endpoint != "" && w.Interval <= 0 {
			return fmt.Errorf("watches[%d] (%s): interval must be positive", i, w.ID)
		}
	}

	return nil
}
