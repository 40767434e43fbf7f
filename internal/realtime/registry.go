package realtime

import "context"

// subscription is one registry entry. gen distinguishes a re-subscribed
// id from its predecessor so in-flight fetch results for the old binding
// are discarded at dispatch time.
type subscription struct {
	id         string
	binding    Binding
	gen        uint64
	cancelPoll context.CancelFunc // non-nil while a poll loop is armed
}

// Subscribe upserts a binding. Re-subscribing an existing id replaces the
// prior binding and cancels its poll loop without invoking its callback
// again. In polling mode an interval-bearing binding is armed immediately
// and its first fetch fires without waiting a full interval.
func (m *Manager) Subscribe(id string, b Binding) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if old, ok := m.subs[id]; ok {
		m.stopPollerLocked(old)
		m.logger.Debug("replacing subscription", "id", id)
	}

	m.subSeq++
	sub := &subscription{
		id:      id,
		binding: b,
		gen:     m.subSeq,
	}
	m.subs[id] = sub

	if m.method == MethodPolling && m.status == StatusPolling {
		m.startPollerLocked(sub)
	}

	if b.Event == "" && b.Interval <= 0 {
		// Permanently inert: no push route and no polling schedule.
		m.logger.Warn("subscription can never fire", "id", id)
		return
	}

	m.logger.Debug("subscribed",
		"id", id,
		"event", b.Event,
		"endpoint", b.Endpoint,
		"interval", b.Interval,
	)
}

// Unsubscribe removes a binding and cancels its poll loop. Unknown ids
// are a no-op.
func (m *Manager) Unsubscribe(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sub, ok := m.subs[id]
	if !ok {
		return
	}

	m.stopPollerLocked(sub)
	delete(m.subs, id)

	m.logger.Debug("unsubscribed", "id", id)
}

// startPollerLocked arms a poll loop for the subscription if its binding
// has an interval. At most one loop exists per id. Caller holds mu.
func (m *Manager) startPollerLocked(sub *subscription) {
	m.stopPollerLocked(sub)

	if sub.binding.Interval <= 0 {
		// Inert in polling mode until a push recovery.
		return
	}

	ctx, cancel := context.WithCancel(m.runCtx)
	sub.cancelPoll = cancel

	m.wg.Add(1)
	go m.pollLoop(ctx, sub.id, sub.gen, sub.binding)
}

// stopPollerLocked cancels the subscription's poll loop if armed.
// Caller holds mu.
func (m *Manager) stopPollerLocked(sub *subscription) {
	if sub.cancelPoll != nil {
		sub.cancelPoll()
		sub.cancelPoll = nil
	}
}

// teardownPollersLocked cancels every armed poll loop, leaving the
// registry itself intact. Caller holds mu.
func (m *Manager) teardownPollersLocked() {
	for _, sub := range m.subs {
		m.stopPollerLocked(sub)
	}
}
