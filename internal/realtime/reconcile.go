package realtime

import "time"

// reconcileLoop periodically re-reads method/status and republishes to
// observers when they changed since the last period. Display staleness
// is bounded by one period; notification volume is bounded by actual
// changes.
func (m *Manager) reconcileLoop() {
	defer m.wg.Done()

	ticker := time.NewTicker(m.cfg.ReconcileInterval)
	defer ticker.Stop()

	var lastMethod Method
	var lastStatus Status
	first := true

	for {
		select {
		case <-m.runCtx.Done():
			return
		case <-ticker.C:
			m.mu.Lock()
			method, status := m.method, m.status
			observers := make([]StatusObserver, len(m.observers))
			copy(observers, m.observers)
			m.mu.Unlock()

			if !first && method == lastMethod && status == lastStatus {
				continue
			}
			first = false
			lastMethod, lastStatus = method, status

			m.logger.Debug("status reconciled", "method", method, "status", status)
			for _, fn := range observers {
				fn(method, status)
			}
		}
	}
}
