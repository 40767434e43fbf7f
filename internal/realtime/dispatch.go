package realtime

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/homeledger/propstream/internal/event"
)

// delivery is one unit of work on the dispatch queue. Poll results carry
// the target subscription's id and generation; push messages carry the
// event name and fan out to every matching subscription.
type delivery struct {
	subID   string // non-empty for poll results
	gen     uint64
	event   string // non-empty for push messages
	payload json.RawMessage
}

// dispatchLoop is the single consumer of the dispatch queue. Callbacks
// run here, serialized, never under the registry lock.
func (m *Manager) dispatchLoop() {
	defer m.wg.Done()

	for {
		select {
		case <-m.runCtx.Done():
			return
		case d := <-m.deliveries:
			m.dispatch(d)
		}
	}
}

// dispatch resolves a delivery against the current registry snapshot and
// invokes the matching callbacks.
func (m *Manager) dispatch(d delivery) {
	type target struct {
		id       string
		cb       Callback
		suppress bool
	}
	var targets []target

	m.mu.Lock()
	if d.subID != "" {
		// Poll result: deliver only while polling is still active and
		// the id is still registered with the same generation; otherwise
		// the binding was removed, replaced, or the mode switched while
		// the fetch was in flight.
		sub, ok := m.subs[d.subID]
		if ok && sub.gen == d.gen && m.method == MethodPolling && m.status == StatusPolling {
			targets = append(targets, target{sub.id, sub.binding.Callback, sub.binding.SuppressUnchanged})
		} else {
			m.dropped++
		}
	} else {
		// Push message: fan out by event name, but not after the mode
		// switched away from push underneath a queued message.
		if m.method == MethodPush {
			for _, sub := range m.subs {
				if sub.binding.Event == d.event {
					targets = append(targets, target{sub.id, sub.binding.Callback, sub.binding.SuppressUnchanged})
				}
			}
		} else {
			m.dropped++
		}
	}
	m.mu.Unlock()

	for _, t := range targets {
		if t.suppress && m.suppressor.Seen(t.id, d.payload) {
			m.mu.Lock()
			m.suppressed++
			m.mu.Unlock()
			continue
		}
		if t.cb != nil {
			t.cb(d.payload)
		}
		m.mu.Lock()
		m.delivered++
		m.mu.Unlock()
	}
}

// readLoop consumes one push session's messages and errors. Transport
// arrival order is preserved: frames are queued to the dispatch loop in
// the order they are read.
func (m *Manager) readLoop(ctx context.Context, t Transport, sess uint64) {
	defer m.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return

		case err := <-t.Errors():
			m.pushFailed(sess, err)
			return

		case msg, ok := <-t.Messages():
			if !ok {
				m.pushFailed(sess, errors.New("transport closed"))
				return
			}

			env, err := event.ParseEnvelope(msg.Data)
			if err != nil {
				m.logger.Warn("dropping bad push frame", "error", err)
				m.mu.Lock()
				m.parseErrors++
				m.mu.Unlock()
				continue
			}

			if m.cfg.Schema != nil {
				if err := m.cfg.Schema.Validate(env.Event, env.Payload); err != nil {
					m.logger.Warn("dropping invalid payload",
						"event", env.Event,
						"error", err,
					)
					m.mu.Lock()
					m.parseErrors++
					m.mu.Unlock()
					continue
				}
			}

			select {
			case m.deliveries <- delivery{event: env.Event, payload: env.Payload}:
			case <-ctx.Done():
				return
			}
		}
	}
}
