package transport

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Client is a single WebSocket push connection.
type Client interface {
	// Connect establishes the WebSocket connection.
	Connect(ctx context.Context) error

	// Close gracefully closes the connection.
	Close() error

	// Send writes raw bytes to the connection.
	Send(data []byte) error

	// Messages returns a channel of raw incoming messages.
	Messages() <-chan Message

	// Errors returns a channel of connection errors (read failures,
	// staleness). At most one error is delivered per connection.
	Errors() <-chan error

	// IsConnected returns the current connection state.
	IsConnected() bool
}

// client implements the Client interface. Liveness is enforced through
// the read deadline: any inbound traffic or pong pushes it out by
// StaleAfter, and a read that hits the deadline surfaces as
// ErrStaleConnection.
type client struct {
	cfg    Config
	logger *slog.Logger

	conn *websocket.Conn

	messages chan Message
	errors   chan error
	done     chan struct{}

	writeMu sync.Mutex

	mu        sync.RWMutex
	connected bool
	closed    bool
}

// NewClient creates a new WebSocket client. Each client is good for one
// connection; create a fresh client to reconnect.
func NewClient(cfg Config, logger *slog.Logger) Client {
	if logger == nil {
		logger = slog.Default()
	}
	cfg.applyDefaults()

	return &client{
		cfg:      cfg,
		logger:   logger,
		messages: make(chan Message, cfg.BufferSize),
		errors:   make(chan error, 1),
		done:     make(chan struct{}),
	}
}

// Connect establishes the WebSocket connection.
func (c *client) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrAlreadyClosed
	}
	c.mu.Unlock()

	dialer := websocket.Dialer{
		HandshakeTimeout: c.cfg.HandshakeTimeout,
	}

	conn, _, err := dialer.DialContext(ctx, c.cfg.URL, c.dialHeader())
	if err != nil {
		return err
	}

	conn.SetReadDeadline(time.Now().Add(c.cfg.StaleAfter))

	// Pongs to our keepalives extend the deadline.
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(c.cfg.StaleAfter))
	})

	// Server-initiated pings count as liveness too, and get a pong back.
	conn.SetPingHandler(func(data string) error {
		conn.SetReadDeadline(time.Now().Add(c.cfg.StaleAfter))
		return conn.WriteControl(
			websocket.PongMessage,
			[]byte(data),
			time.Now().Add(time.Second),
		)
	})

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()

	go c.readLoop(conn)
	go c.pingLoop(conn)

	c.logger.Debug("websocket connected", "url", c.cfg.URL)

	return nil
}

// dialHeader builds the handshake headers identifying this client.
func (c *client) dialHeader() http.Header {
	header := http.Header{}
	header.Set("Accept", "application/json")
	if c.cfg.ClientID != "" {
		header.Set("X-Client-ID", c.cfg.ClientID)
	}
	return header
}

// Close gracefully closes the connection.
func (c *client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.connected = false
	conn := c.conn
	c.mu.Unlock()

	// Signal goroutines to stop
	close(c.done)

	if conn != nil {
		conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second),
		)
		return conn.Close()
	}

	return nil
}

// Send writes raw bytes to the connection.
func (c *client) Send(data []byte) error {
	c.mu.RLock()
	conn, ok := c.conn, c.connected
	c.mu.RUnlock()
	if !ok {
		return ErrNotConnected
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
	return conn.WriteMessage(websocket.TextMessage, data)
}

// Messages returns the messages channel.
func (c *client) Messages() <-chan Message {
	return c.messages
}

// Errors returns the errors channel.
func (c *client) Errors() <-chan error {
	return c.errors
}

// IsConnected returns the current connection state.
func (c *client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// readLoop reads messages from the WebSocket into the messages channel
// until a read fails. Every successful read extends the staleness
// deadline; a deadline hit means nothing arrived for StaleAfter and is
// reported as ErrStaleConnection.
func (c *client) readLoop(conn *websocket.Conn) {
	defer func() {
		c.mu.Lock()
		c.connected = false
		c.mu.Unlock()
	}()

	for {
		select {
		case <-c.done:
			return
		default:
		}

		_, data, err := conn.ReadMessage()
		receivedAt := time.Now()

		if err != nil {
			// Ignore errors after Close() is called
			select {
			case <-c.done:
				return
			default:
			}
			if errors.Is(err, os.ErrDeadlineExceeded) {
				c.logger.Warn("connection stale, nothing received",
					"stale_after", c.cfg.StaleAfter,
				)
				err = ErrStaleConnection
			}
			select {
			case c.errors <- err:
			default:
			}
			return
		}

		conn.SetReadDeadline(receivedAt.Add(c.cfg.StaleAfter))

		select {
		case c.messages <- Message{Data: data, ReceivedAt: receivedAt}:
		case <-c.done:
			return
		default:
			c.logger.Warn("message buffer full, dropping message")
		}
	}
}

// pingLoop sends keepalive pings so an idle but healthy connection keeps
// producing pongs for the read deadline.
func (c *client) pingLoop(conn *websocket.Conn) {
	ticker := time.NewTicker(c.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			deadline := time.Now().Add(c.cfg.WriteTimeout)
			if err := conn.WriteControl(websocket.PingMessage, []byte("keepalive"), deadline); err != nil {
				c.logger.Debug("keepalive ping failed", "error", err)
			}
		}
	}
}
