package dedup

import "testing"

func TestSuppressor_Seen(t *testing.T) {
	s, err := New(16)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	payload := []byte(`{"properties":[{"id":1}]}`)

	if s.Seen("props", payload) {
		t.Error("first delivery should not be seen")
	}
	if !s.Seen("props", payload) {
		t.Error("second identical delivery should be seen")
	}
	if s.Seen("props", []byte(`{"properties":[{"id":2}]}`)) {
		t.Error("changed payload should not be seen")
	}
}

func TestSuppressor_PerSubscription(t *testing.T) {
	s, err := New(16)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	payload := []byte(`{"id":1}`)
	s.Seen("a", payload)

	// Same payload under a different subscription id is distinct.
	if s.Seen("b", payload) {
		t.Error("payload should be tracked per subscription id")
	}
}

func TestSuppressor_Clear(t *testing.T) {
	s, err := New(16)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	s.Seen("props", []byte(`{"id":1}`))
	if s.Len() != 1 {
		t.Errorf("Len = %d, want 1", s.Len())
	}

	s.Clear()
	if s.Len() != 0 {
		t.Errorf("Len after Clear = %d, want 0", s.Len())
	}
	if s.Seen("props", []byte(`{"id":1}`)) {
		t.Error("cleared payload should not be seen")
	}
}

func TestSuppressor_Eviction(t *testing.T) {
	s, err := New(2)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	s.Seen("a", []byte(`1`))
	s.Seen("a", []byte(`2`))
	s.Seen("a", []byte(`3`)) // evicts the oldest entry

	if !s.Seen("a", []byte(`3`)) {
		t.Error("most recent payload should still be remembered")
	}
	if s.Seen("a", []byte(`1`)) {
		t.Error("evicted payload should read as unseen again")
	}
}

func TestNew_InvalidSize(t *testing.T) {
	if _, err := New(0); err == nil {
		t.Error("expected error for zero cache size")
	}
}
