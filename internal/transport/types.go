package transport

import (
	"errors"
	"time"
)

// Errors
var (
	ErrNotConnected    = errors.New("not connected")
	ErrStaleConnection = errors.New("connection stale (nothing received)")
	ErrAlreadyClosed   = errors.New("already closed")
)

// Message wraps raw message data with a receive timestamp.
type Message struct {
	Data       []byte    // Raw message bytes from the WebSocket
	ReceivedAt time.Time // Local timestamp when ReadMessage() returned
}

// Config configures a WebSocket client.
type Config struct {
	URL              string        // WebSocket URL (e.g., wss://realtime.homeledger.io/ws)
	ClientID         string        // Sent as X-Client-ID on the handshake (empty = omitted)
	HandshakeTimeout time.Duration // Dial timeout
	PingInterval     time.Duration // How often to send keepalive pings
	StaleAfter       time.Duration // Max time without inbound traffic before the connection is considered stale
	WriteTimeout     time.Duration // Write deadline for sends
	BufferSize       int           // Message channel buffer size
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		HandshakeTimeout: 10 * time.Second,
		PingInterval:     15 * time.Second,
		StaleAfter:       60 * time.Second,
		WriteTimeout:     5 * time.Second,
		BufferSize:       1024,
	}
}

func (c *Config) applyDefaults() {
	d := DefaultConfig()
	if c.HandshakeTimeout == 0 {
		c.HandshakeTimeout = d.HandshakeTimeout
	}
	if c.PingInterval == 0 {
		c.PingInterval = d.PingInterval
	}
	if c.StaleAfter == 0 {
		c.StaleAfter = d.StaleAfter
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = d.WriteTimeout
	}
	if c.BufferSize == 0 {
		c.BufferSize = d.BufferSize
	}
}
