package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"github.com/homeledger/propstream/internal/dedup"
	"github.com/homeledger/propstream/internal/probe"
)

// Manager owns transport selection, connection lifecycle, and the
// subscription registry. Construct with New, run with Start, then drive
// it through Connect/Disconnect/Subscribe/Unsubscribe.
type Manager struct {
	cfg        Config
	dial       Dialer
	fetcher    Fetcher
	classifier probe.Classifier
	suppressor *dedup.Suppressor
	logger     *slog.Logger

	// Serialized dispatch queue fed by the push read loop and by every
	// poll loop; consumed by a single goroutine.
	deliveries chan delivery

	mu         sync.Mutex
	method     Method
	status     Status
	pinnedPush bool       // ForceWebSockets blocks automatic demotion
	transport  Transport  // active push connection, nil otherwise
	connCancel context.CancelFunc
	sessionSeq uint64 // invalidates stale establish/read goroutines
	subs       map[string]*subscription
	subSeq     uint64 // generation source for subscriptions
	observers  []StatusObserver

	// Counters (guarded by mu)
	delivered   int64
	suppressed  int64
	dropped     int64
	parseErrors int64

	runCtx context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a Manager. dial may be nil when the deployment has no push
// endpoint; cls may be nil to always allow push.
func New(cfg Config, dial Dialer, fetcher Fetcher, cls probe.Classifier, logger *slog.Logger) (*Manager, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cfg.applyDefaults()

	if cls == nil {
		cls = probe.Func(func() probe.Decision { return probe.Decision{} })
	}

	suppressor, err := dedup.New(cfg.DedupCacheSize)
	if err != nil {
		return nil, err
	}

	return &Manager{
		cfg:        cfg,
		dial:       dial,
		fetcher:    fetcher,
		classifier: cls,
		suppressor: suppressor,
		logger:     logger.With("component", "realtime"),
		deliveries: make(chan delivery, cfg.DeliveryBuffer),
		method:     MethodPush,
		status:     StatusDisconnected,
		subs:       make(map[string]*subscription),
	}, nil
}

// Start runs the dispatch and reconcile loops. It does not connect.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.runCtx != nil {
		m.mu.Unlock()
		return errors.New("already started")
	}
	m.runCtx, m.cancel = context.WithCancel(ctx)
	m.mu.Unlock()

	m.wg.Add(2)
	go m.dispatchLoop()
	go m.reconcileLoop()

	m.logger.Info("realtime manager started",
		"reconcile_interval", m.cfg.ReconcileInterval,
	)
	return nil
}

// Stop disconnects and shuts down all loops.
func (m *Manager) Stop(ctx context.Context) error {
	m.Disconnect()

	m.mu.Lock()
	cancel := m.cancel
	m.mu.Unlock()
	if cancel != nil {
		cancel()
	}

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		m.logger.Info("realtime manager stopped")
		return nil
	case <-ctx.Done():
		m.logger.Warn("realtime manager stop timed out")
		return ctx.Err()
	}
}

// Connect establishes delivery: polling immediately if the probe says
// push is disallowed, otherwise an asynchronous push connection attempt.
// Fire-and-forget; outcomes surface as status changes.
func (m *Manager) Connect() {
	m.mu.Lock()
	if m.runCtx == nil {
		m.mu.Unlock()
		m.logger.Warn("connect before start ignored")
		return
	}
	if m.method == MethodPush && (m.status == StatusConnecting || m.status == StatusConnected) {
		m.mu.Unlock()
		return
	}

	m.pinnedPush = false

	d := m.classifier.Classify()
	if d.PushDisallowed || m.dial == nil {
		reason := d.Reason
		if reason == "" {
			reason = "no push dialer configured"
		}
		m.logger.Info("push unavailable, starting in polling mode", "reason", reason)
		m.closePushLocked()
		m.enterPollingLocked()
		m.mu.Unlock()
		return
	}

	m.startPushLocked()
	m.mu.Unlock()
}

// Disconnect closes the active transport and cancels all polling timers.
// The registry is kept; Connect may be called again.
func (m *Manager) Disconnect() {
	m.mu.Lock()
	m.closePushLocked()
	m.teardownPollersLocked()
	m.status = StatusDisconnected
	m.mu.Unlock()

	m.logger.Info("disconnected")
}

// ForcePolling switches to polling regardless of the probe. Idempotent.
func (m *Manager) ForcePolling() {
	m.mu.Lock()
	if m.runCtx == nil {
		m.mu.Unlock()
		m.logger.Warn("force polling before start ignored")
		return
	}
	if m.method == MethodPolling && m.status == StatusPolling {
		m.mu.Unlock()
		return
	}

	m.pinnedPush = false
	m.closePushLocked()
	m.enterPollingLocked()
	m.mu.Unlock()

	m.logger.Info("polling forced")
}

// ForceWebSockets switches to push regardless of the probe and pins it:
// transport errors will not demote back to polling. Idempotent.
func (m *Manager) ForceWebSockets() {
	m.mu.Lock()
	if m.runCtx == nil {
		m.mu.Unlock()
		m.logger.Warn("force websockets before start ignored")
		return
	}

	m.pinnedPush = true

	if m.method == MethodPush && (m.status == StatusConnecting || m.status == StatusConnected) {
		m.mu.Unlock()
		return
	}
	if m.dial == nil {
		// The override still commits fully to push: pollers are torn
		// down and method moves with status, so Polling never reports
		// anything but StatusPolling.
		m.teardownPollersLocked()
		m.closePushLocked()
		m.method = MethodPush
		m.status = StatusError
		m.mu.Unlock()
		m.logger.Warn("websockets forced but no push dialer configured")
		return
	}

	m.startPushLocked()
	m.mu.Unlock()

	m.logger.Info("websockets forced")
}

// Send serializes data to the push transport. Returns true iff the
// message was written to an open push connection; polling mode and any
// non-connected status report false. Never panics, never queues.
func (m *Manager) Send(data any) bool {
	m.mu.Lock()
	t := m.transport
	ok := m.method == MethodPush && m.status == StatusConnected && t != nil
	m.mu.Unlock()

	if !ok {
		return false
	}

	raw, err := json.Marshal(data)
	if err != nil {
		m.logger.Warn("send: marshal failed", "error", err)
		return false
	}
	if err := t.Send(raw); err != nil {
		m.logger.Warn("send: write failed", "error", err)
		return false
	}
	return true
}

// ConnectionMethod returns the current delivery method.
func (m *Manager) ConnectionMethod() Method {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.method
}

// ConnectionStatus returns the current connection status.
func (m *Manager) ConnectionStatus() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// OnStatusChange registers an observer notified by the reconciler.
func (m *Manager) OnStatusChange(fn StatusObserver) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observers = append(m.observers, fn)
}

// Stats returns a snapshot of manager state.
func (m *Manager) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	pollers := 0
	for _, sub := range m.subs {
		if sub.cancelPoll != nil {
			pollers++
		}
	}

	return Stats{
		Method:        m.method,
		Status:        m.status,
		Subscriptions: len(m.subs),
		ActivePollers: pollers,
		Delivered:     m.delivered,
		Suppressed:    m.suppressed,
		Dropped:       m.dropped,
		ParseErrors:   m.parseErrors,
	}
}

// startPushLocked begins an asynchronous push connection attempt.
// Caller holds mu.
func (m *Manager) startPushLocked() {
	m.teardownPollersLocked()
	m.closePushLocked()
	m.method = MethodPush
	m.status = StatusConnecting

	ctx, cancel := context.WithCancel(m.runCtx)
	m.connCancel = cancel
	m.sessionSeq++
	sess := m.sessionSeq

	m.wg.Add(1)
	go m.establish(ctx, sess)
}

// establish dials the push transport and hands off to the read loop.
func (m *Manager) establish(ctx context.Context, sess uint64) {
	defer m.wg.Done()

	t := m.dial()

	dialCtx, cancel := context.WithTimeout(ctx, m.cfg.DialTimeout)
	err := t.Connect(dialCtx)
	cancel()

	m.mu.Lock()
	if m.sessionSeq != sess || ctx.Err() != nil {
		// A newer session or a disconnect superseded this attempt.
		m.mu.Unlock()
		t.Close()
		return
	}

	if err != nil {
		m.logger.Warn("push connect failed", "error", err)
		m.status = StatusError
		if !m.pinnedPush {
			m.logger.Info("failing over to polling")
			m.enterPollingLocked()
		}
		m.mu.Unlock()
		return
	}

	m.transport = t
	m.status = StatusConnected
	m.mu.Unlock()

	m.logger.Info("push transport connected")

	m.wg.Add(1)
	go m.readLoop(ctx, t, sess)
}

// pushFailed handles an error or unexpected close of the push transport.
func (m *Manager) pushFailed(sess uint64, err error) {
	m.mu.Lock()
	if m.sessionSeq != sess {
		m.mu.Unlock()
		return
	}

	m.logger.Warn("push transport failed", "error", err)
	m.status = StatusError
	m.closePushLocked()

	if m.pinnedPush {
		// Pinned to push: stay in Error until an explicit Connect or
		// ForceWebSockets.
		m.mu.Unlock()
		return
	}

	m.logger.Info("failing over to polling")
	m.enterPollingLocked()
	m.mu.Unlock()
}

// enterPollingLocked switches to polling mode and arms a poll loop for
// every interval-bearing subscription. Caller holds mu.
func (m *Manager) enterPollingLocked() {
	m.method = MethodPolling
	m.status = StatusPolling

	for _, sub := range m.subs {
		m.startPollerLocked(sub)
	}
}

// closePushLocked tears down the push session if any. Caller holds mu.
func (m *Manager) closePushLocked() {
	if m.connCancel != nil {
		m.connCancel()
		m.connCancel = nil
	}
	if t := m.transport; t != nil {
		m.transport = nil
		go t.Close()
	}
	m.sessionSeq++
}
