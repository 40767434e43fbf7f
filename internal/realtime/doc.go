// Package realtime implements the Realtime Connection & Subscription
// Manager: the component that keeps UI subscriptions fed with live data
// over whichever transport the deployment allows.
//
// The manager:
//   - Owns the transport choice (push WebSocket vs. interval polling)
//     and the connection lifecycle
//   - Holds a registry of logical subscriptions that survives transport
//     failures and mode switches
//   - Fans push messages out by event name and runs one poll loop per
//     interval-bearing subscription in polling mode
//   - Demotes push to polling on transport errors unless push was pinned
//     by ForceWebSockets
//   - Republishes connection method/status to observers on a fixed
//     reconcile period
//
// A Manager is explicitly constructed and injected into its consumers;
// there is no package-level instance. All transport errors are absorbed
// here and surfaced only as status changes.
package realtime
