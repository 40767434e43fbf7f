package realtime

import (
	"context"
	"encoding/json"
	"net/url"
	"time"

	"github.com/homeledger/propstream/internal/event"
	"github.com/homeledger/propstream/internal/transport"
)

// Method is the active delivery path.
type Method string

const (
	MethodPush    Method = "push"
	MethodPolling Method = "polling"
)

// Status is the reported connection state. While the method is polling
// the status is always StatusPolling; push status ranges over the other
// four values.
type Status string

const (
	StatusDisconnected Status = "disconnected"
	StatusConnecting   Status = "connecting"
	StatusConnected    Status = "connected"
	StatusError        Status = "error"
	StatusPolling      Status = "polling"
)

// Callback receives a subscription's payloads: the event payload in push
// mode, the raw response body in polling mode.
type Callback func(payload json.RawMessage)

// Binding describes what one logical subscription wants delivered and how.
type Binding struct {
	Event             string        // push event name, empty = no push route
	Endpoint          string        // polling endpoint path
	QueryKey          []string      // cache scope keys, sent as repeated "key" params
	Interval          time.Duration // polling interval, 0 = inert in polling mode
	SuppressUnchanged bool          // skip deliveries whose payload matches the last one
	Callback          Callback
}

// queryValues derives the polling query string from the binding's keys.
func (b Binding) queryValues() url.Values {
	if len(b.QueryKey) == 0 {
		return nil
	}
	return url.Values{"key": b.QueryKey}
}

// Transport is a single push connection. transport.Client implements it.
type Transport interface {
	Connect(ctx context.Context) error
	Close() error
	Send(data []byte) error
	Messages() <-chan transport.Message
	Errors() <-chan error
	IsConnected() bool
}

// Dialer creates a fresh Transport for each connect attempt; push clients
// are good for one connection. A nil Dialer means push is unavailable.
type Dialer func() Transport

// Fetcher is the pull primitive used by polling subscriptions.
// fetch.Client implements it.
type Fetcher interface {
	Get(ctx context.Context, endpoint string, query url.Values) ([]byte, error)
}

// StatusObserver is notified by the reconciler when method or status
// changed since the last period.
type StatusObserver func(Method, Status)

// Stats provides a snapshot of manager state for status endpoints.
type Stats struct {
	Method        Method `json:"method"`
	Status        Status `json:"status"`
	Subscriptions int    `json:"subscriptions"`
	ActivePollers int    `json:"active_pollers"`
	Delivered     int64  `json:"delivered"`
	Suppressed    int64  `json:"suppressed"`
	Dropped       int64  `json:"dropped"`
	ParseErrors   int64  `json:"parse_errors"`
}

// Config configures a Manager.
type Config struct {
	ReconcileInterval time.Duration // status republish period
	DialTimeout       time.Duration // push connect timeout
	FetchTimeout      time.Duration // per polling fetch timeout
	DeliveryBuffer    int           // dispatch queue depth
	DedupCacheSize    int           // payload suppression cache entries
	Schema            *event.Schema // nil = no payload validation
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		ReconcileInterval: 5 * time.Second,
		DialTimeout:       10 * time.Second,
		FetchTimeout:      10 * time.Second,
		DeliveryBuffer:    1024,
		DedupCacheSize:    512,
	}
}

func (c *Config) applyDefaults() {
	d := DefaultConfig()
	if c.ReconcileInterval == 0 {
		c.ReconcileInterval = d.ReconcileInterval
	}
	if c.DialTimeout == 0 {
		c.DialTimeout = d.DialTimeout
	}
	if c.FetchTimeout == 0 {
		c.FetchTimeout = d.FetchTimeout
	}
	if c.DeliveryBuffer == 0 {
		c.DeliveryBuffer = d.DeliveryBuffer
	}
	if c.DedupCacheSize == 0 {
		c.DedupCacheSize = d.DedupCacheSize
	}
}
