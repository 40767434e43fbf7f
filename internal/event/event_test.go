package event

import (
	"encoding/json"
	"testing"
)

func TestParseEnvelope(t *testing.T) {
	env, err := ParseEnvelope([]byte(`{"event":"property-update","payload":{"id":7}}`))
	if err != nil {
		t.Fatalf("ParseEnvelope failed: %v", err)
	}
	if env.Event != "property-update" {
		t.Errorf("Event = %q, want property-update", env.Event)
	}
	if string(env.Payload) != `{"id":7}` {
		t.Errorf("Payload = %s", env.Payload)
	}
}

func TestParseEnvelope_Invalid(t *testing.T) {
	if _, err := ParseEnvelope([]byte(`not json`)); err == nil {
		t.Error("expected error for malformed frame")
	}
	if _, err := ParseEnvelope([]byte(`{"payload":{}}`)); err != ErrEmptyEvent {
		t.Errorf("expected ErrEmptyEvent, got %v", err)
	}
}

func TestSchema_ValidateKnownEvents(t *testing.T) {
	s := NewSchema()

	cases := []struct {
		name    string
		event   string
		payload string
		wantErr bool
	}{
		{"valid property update", PropertyUpdate, `{"id":1,"status":"listed"}`, false},
		{"property update missing id", PropertyUpdate, `{"status":"listed"}`, true},
		{"valid document ready", DocumentReady, `{"id":"d1","url":"/docs/d1.pdf"}`, false},
		{"document ready missing url", DocumentReady, `{"id":"d1"}`, true},
		{"valid notification", Notification, `{"id":"n1","message":"hi"}`, false},
		{"notification missing message", Notification, `{"id":"n1"}`, true},
		{"malformed payload", PropertyUpdate, `[1,2]`, true},
	}

	for _, tc := range cases {
		err := s.Validate(tc.event, json.RawMessage(tc.payload))
		if (err != nil) != tc.wantErr {
			t.Errorf("%s: Validate err = %v, wantErr %v", tc.name, err, tc.wantErr)
		}
	}
}

func TestSchema_UnknownEventPassesThrough(t *testing.T) {
	s := NewSchema()

	if err := s.Validate("made-up-event", json.RawMessage(`"anything"`)); err != nil {
		t.Errorf("unknown event should validate trivially, got %v", err)
	}

	decoded, err := s.Decode("made-up-event", json.RawMessage(`{"x":1}`))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	raw, ok := decoded.(json.RawMessage)
	if !ok || string(raw) != `{"x":1}` {
		t.Errorf("Decode = %v (%T), want raw passthrough", decoded, decoded)
	}
}

func TestSchema_Decode(t *testing.T) {
	s := NewSchema()

	decoded, err := s.Decode(PropertyUpdate, json.RawMessage(`{"id":42,"status":"sold"}`))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	p, ok := decoded.(PropertyUpdatePayload)
	if !ok {
		t.Fatalf("decoded type = %T, want PropertyUpdatePayload", decoded)
	}
	if p.ID != 42 || p.Status != "sold" {
		t.Errorf("decoded = %+v", p)
	}
}

func TestSchema_RegisterReplaces(t *testing.T) {
	s := NewSchema()
	s.Register(PropertyUpdate, func(raw json.RawMessage) (any, error) {
		return "replaced", nil
	})

	decoded, err := s.Decode(PropertyUpdate, json.RawMessage(`{}`))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if decoded != "replaced" {
		t.Errorf("decoded = %v, want replaced", decoded)
	}
}
