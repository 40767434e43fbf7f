package event

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
)

// Well-known event names produced by the application server.
const (
	PropertyUpdate = "property-update"
	DocumentReady  = "document-ready"
	Notification   = "notification"
)

// ErrEmptyEvent indicates an envelope without an event name.
var ErrEmptyEvent = errors.New("envelope has no event name")

// Envelope is the wire format for all push messages.
type Envelope struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// ParseEnvelope decodes a raw push frame.
func ParseEnvelope(data []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, fmt.Errorf("parse envelope: %w", err)
	}
	if env.Event == "" {
		return Envelope{}, ErrEmptyEvent
	}
	return env, nil
}

// PropertyUpdatePayload is sent when a property record changes.
type PropertyUpdatePayload struct {
	ID        int64  `json:"id"`
	Status    string `json:"status,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

// DocumentReadyPayload is sent when a generated document is available.
type DocumentReadyPayload struct {
	ID         string `json:"id"`
	PropertyID int64  `json:"propertyId,omitempty"`
	Name       string `json:"name,omitempty"`
	URL        string `json:"url"`
}

// NotificationPayload is a user-facing notice.
type NotificationPayload struct {
	ID      string `json:"id"`
	Level   string `json:"level,omitempty"`
	Message string `json:"message"`
}

// DecodeFunc validates and decodes one event's payload.
type DecodeFunc func(json.RawMessage) (any, error)

// Schema maps event names to payload decoders. Safe for concurrent use.
type Schema struct {
	mu       sync.RWMutex
	decoders map[string]DecodeFunc
}

// NewSchema returns a schema with the built-in application events
// registered.
func NewSchema() *Schema {
	s := &Schema{decoders: make(map[string]DecodeFunc)}

	s.Register(PropertyUpdate, func(raw json.RawMessage) (any, error) {
		var p PropertyUpdatePayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		if p.ID == 0 {
			return nil, errors.New("property-update: missing id")
		}
		return p, nil
	})

	s.Register(DocumentReady, func(raw json.RawMessage) (any, error) {
		var p DocumentReadyPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		if p.ID == "" || p.URL == "" {
			return nil, errors.New("document-ready: missing id or url")
		}
		return p, nil
	})

	s.Register(Notification, func(raw json.RawMessage) (any, error) {
		var p NotificationPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, err
		}
		if p.Message == "" {
			return nil, errors.New("notification: missing message")
		}
		return p, nil
	})

	return s
}

// Register adds or replaces the decoder for an event name.
func (s *Schema) Register(name string, fn DecodeFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.decoders[name] = fn
}

// Validate checks a payload against the registered decoder for the event.
// Unknown events validate trivially.
func (s *Schema) Validate(name string, payload json.RawMessage) error {
	s.mu.RLock()
	fn := s.decoders[name]
	s.mu.RUnlock()

	if fn == nil {
		return nil
	}
	_, err := fn(payload)
	return err
}

// Decode decodes a payload into its registered shape. Unknown events are
// returned as raw JSON.
func (s *Schema) Decode(name string, payload json.RawMessage) (any, error) {
	s.mu.RLock()
	fn := s.decoders[name]
	s.mu.RUnlock()

	if fn == nil {
		return payload, nil
	}
	return fn(payload)
}
