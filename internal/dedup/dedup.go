// Package dedup suppresses redundant deliveries for subscriptions that
// opt in. Polling a slow-changing endpoint returns the same body on most
// ticks; a subscription that only cares about changes can skip the
// repeats without the manager growing per-subscription state.
package dedup

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Suppressor remembers recently delivered payloads per subscription.
type Suppressor struct {
	cache *lru.Cache[string, bool]
}

// New creates a Suppressor with the given cache size.
func New(size int) (*Suppressor, error) {
	cache, err := lru.New[string, bool](size)
	if err != nil {
		return nil, fmt.Errorf("create LRU cache: %w", err)
	}
	return &Suppressor{cache: cache}, nil
}

// Seen reports whether this exact payload was already delivered to the
// subscription, and records it if not.
func (s *Suppressor) Seen(subID string, payload []byte) bool {
	key := fmt.Sprintf("%s:%x", subID, hashBytes(payload))
	if s.cache.Contains(key) {
		return true
	}
	s.cache.Add(key, true)
	return false
}

// Clear drops all remembered payloads.
func (s *Suppressor) Clear() {
	s.cache.Purge()
}

// Len returns the current cache size.
func (s *Suppressor) Len() int {
	return s.cache.Len()
}

// hashBytes creates an FNV-1a hash of the payload.
func hashBytes(data []byte) uint64 {
	var hash uint64 = 14695981039346656037 // FNV-1a offset basis
	for _, b := range data {
		hash ^= uint64(b)
		hash *= 1099511628211 // FNV-1a prime
	}
	return hash
}
