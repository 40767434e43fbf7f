// Package transport implements the push transport: a single long-lived
// WebSocket connection over which the server delivers event messages.
//
// The client:
//   - Dials the configured URL and reads messages into a buffered channel
//   - Detects stale connections via keepalive pings and a rolling read
//     deadline
//   - Reports read and staleness errors on a separate channel so the
//     owning manager can decide whether to fail over
//
// The client never reconnects on its own; recovery policy belongs to the
// realtime manager.
package transport
