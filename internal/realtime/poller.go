package realtime

import (
	"context"
	"time"
)

// pollLoop fetches one subscription's endpoint on its interval. The
// first fetch fires immediately so a fresh subscription does not wait a
// full interval for data. Fetches are sequential within a subscription:
// a tick that arrives while a fetch is outstanding is simply the next
// ticker value, never an overlapping request.
func (m *Manager) pollLoop(ctx context.Context, id string, gen uint64, b Binding) {
	defer m.wg.Done()

	ticker := time.NewTicker(b.Interval)
	defer ticker.Stop()

	m.pollOnce(ctx, id, gen, b)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.pollOnce(ctx, id, gen, b)
		}
	}
}

// pollOnce performs a single fetch and queues the result for dispatch.
// Fetch failures are absorbed: the subscription stays armed and retries
// on the next tick.
func (m *Manager) pollOnce(ctx context.Context, id string, gen uint64, b Binding) {
	fetchCtx, cancel := context.WithTimeout(ctx, m.cfg.FetchTimeout)
	defer cancel()

	body, err := m.fetcher.Get(fetchCtx, b.Endpoint, b.queryValues())
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		m.logger.Warn("poll fetch failed",
			"id", id,
			"endpoint", b.Endpoint,
			"error", err,
		)
		return
	}

	select {
	case m.deliveries <- delivery{subID: id, gen: gen, payload: body}:
	case <-ctx.Done():
		// Cancelled while queueing: the result is discarded.
	}
}
