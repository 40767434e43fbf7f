package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// mockWSServer creates a test WebSocket server.
func mockWSServer(t *testing.T, handler func(*websocket.Conn)) *httptest.Server {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Logf("upgrade error: %v", err)
			return
		}
		defer conn.Close()
		handler(conn)
	}))

	return server
}

func wsURL(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func testConfig(url string) Config {
	return Config{
		URL:          url,
		StaleAfter:   30 * time.Second,
		WriteTimeout: 5 * time.Second,
		BufferSize:   100,
	}
}

func TestClient_Connect(t *testing.T) {
	server := mockWSServer(t, func(conn *websocket.Conn) {
		// Just keep the connection open
		for {
			_, _, err := conn.ReadMessage()
			if err != nil {
				return
			}
		}
	})
	defer server.Close()

	client := NewClient(testConfig(wsURL(server)), nil)
	ctx := context.Background()

	if err := client.Connect(ctx); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	if !client.IsConnected() {
		t.Error("expected IsConnected to return true")
	}

	if err := client.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}

	if client.IsConnected() {
		t.Error("expected IsConnected to return false after Close")
	}
}

func TestClient_Send(t *testing.T) {
	var received []byte
	var mu sync.Mutex

	server := mockWSServer(t, func(conn *websocket.Conn) {
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			mu.Lock()
			received = msg
			mu.Unlock()
		}
	})
	defer server.Close()

	client := NewClient(testConfig(wsURL(server)), nil)
	ctx := context.Background()

	if err := client.Connect(ctx); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer client.Close()

	testMsg := []byte(`{"event":"ping","payload":null}`)
	if err := client.Send(testMsg); err != nil {
		t.Errorf("Send failed: %v", err)
	}

	// Wait for message to be received
	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if string(received) != string(testMsg) {
		t.Errorf("received %q, want %q", received, testMsg)
	}
}

func TestClient_Messages(t *testing.T) {
	testMessages := []string{
		`{"event":"property-update","payload":{"id":1}}`,
		`{"event":"property-update","payload":{"id":2}}`,
		`{"event":"notification","payload":{"id":"n1"}}`,
	}

	server := mockWSServer(t, func(conn *websocket.Conn) {
		for _, msg := range testMessages {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return
			}
			time.Sleep(10 * time.Millisecond)
		}
		// Keep connection open
		time.Sleep(time.Second)
	})
	defer server.Close()

	client := NewClient(testConfig(wsURL(server)), nil)
	ctx := context.Background()

	if err := client.Connect(ctx); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer client.Close()

	var received []string
	timeout := time.After(500 * time.Millisecond)

	for i := 0; i < len(testMessages); i++ {
		select {
		case msg := <-client.Messages():
			received = append(received, string(msg.Data))
			if msg.ReceivedAt.IsZero() {
				t.Error("ReceivedAt should not be zero")
			}
		case <-timeout:
			t.Fatalf("timeout waiting for messages, received %d of %d", len(received), len(testMessages))
		}
	}

	for i, want := range testMessages {
		if received[i] != want {
			t.Errorf("message %d: got %q, want %q", i, received[i], want)
		}
	}
}

func TestClient_SendNotConnected(t *testing.T) {
	client := NewClient(testConfig("ws://localhost:12345"), nil)

	if err := client.Send([]byte("test")); err != ErrNotConnected {
		t.Errorf("expected ErrNotConnected, got %v", err)
	}
}

func TestClient_DoubleClose(t *testing.T) {
	server := mockWSServer(t, func(conn *websocket.Conn) {
		time.Sleep(time.Second)
	})
	defer server.Close()

	client := NewClient(testConfig(wsURL(server)), nil)
	ctx := context.Background()

	if err := client.Connect(ctx); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}

	// First close should succeed
	if err := client.Close(); err != nil {
		t.Errorf("first Close failed: %v", err)
	}

	// Second close should be no-op
	if err := client.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
}

func TestClient_ErrorOnServerClose(t *testing.T) {
	server := mockWSServer(t, func(conn *websocket.Conn) {
		// Drop the connection shortly after the handshake.
		time.Sleep(50 * time.Millisecond)
		conn.Close()
	})
	defer server.Close()

	client := NewClient(testConfig(wsURL(server)), nil)
	ctx := context.Background()

	if err := client.Connect(ctx); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer client.Close()

	select {
	case err := <-client.Errors():
		if err == nil {
			t.Error("expected non-nil error")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for connection error")
	}

	// Give the read loop a moment to mark the client disconnected.
	time.Sleep(50 * time.Millisecond)
	if client.IsConnected() {
		t.Error("expected IsConnected to return false after server close")
	}
}

func TestClient_StaleConnection(t *testing.T) {
	// A server that never sends and never reads: keepalive pings go
	// unanswered, so the read deadline fires.
	server := mockWSServer(t, func(conn *websocket.Conn) {
		time.Sleep(2 * time.Second)
	})
	defer server.Close()

	cfg := testConfig(wsURL(server))
	cfg.StaleAfter = 100 * time.Millisecond

	client := NewClient(cfg, nil)
	if err := client.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer client.Close()

	select {
	case err := <-client.Errors():
		if err != ErrStaleConnection {
			t.Errorf("expected ErrStaleConnection, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for staleness error")
	}
}

func TestClient_ClientIDHeader(t *testing.T) {
	var gotID string
	var mu sync.Mutex

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		gotID = r.Header.Get("X-Client-ID")
		mu.Unlock()
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		time.Sleep(100 * time.Millisecond)
	}))
	defer server.Close()

	cfg := testConfig(wsURL(server))
	cfg.ClientID = "instance-1"

	client := NewClient(cfg, nil)
	if err := client.Connect(context.Background()); err != nil {
		t.Fatalf("Connect failed: %v", err)
	}
	defer client.Close()

	mu.Lock()
	defer mu.Unlock()
	if gotID != "instance-1" {
		t.Errorf("X-Client-ID = %q, want %q", gotID, "instance-1")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.StaleAfter != 60*time.Second {
		t.Errorf("StaleAfter = %v, want 60s", cfg.StaleAfter)
	}
	if cfg.BufferSize != 1024 {
		t.Errorf("BufferSize = %d, want 1024", cfg.BufferSize)
	}
}
