// watch subscribes to a single realtime feed and prints payloads to the
// console. Useful for poking at a deployment without running the full
// daemon.
//
// Usage:
//
//	go run ./cmd/watch --api http://localhost:3000 --ws ws://localhost:3000/ws \
//	    --event property-update --endpoint /api/properties --interval 10s
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/homeledger/propstream/internal/event"
	"github.com/homeledger/propstream/internal/fetch"
	"github.com/homeledger/propstream/internal/probe"
	"github.com/homeledger/propstream/internal/realtime"
	"github.com/homeledger/propstream/internal/transport"
)

func main() {
	apiURL := flag.String("api", "http://localhost:3000", "base URL for polling fetches")
	wsURL := flag.String("ws", "", "push endpoint (empty = polling only)")
	eventName := flag.String("event", event.PropertyUpdate, "push event name to watch")
	endpoint := flag.String("endpoint", "/api/properties", "polling endpoint path")
	interval := flag.Duration("interval", 10*time.Second, "polling interval")
	forcePolling := flag.Bool("force-polling", false, "skip push entirely")
	verbose := flag.Bool("verbose", false, "pretty-print payload JSON")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var dial realtime.Dialer
	if *wsURL != "" {
		dial = func() realtime.Transport {
			return transport.NewClient(transport.Config{
				URL:      *wsURL,
				ClientID: "watch",
			}, logger)
		}
	}

	fetcher := fetch.NewClient(*apiURL, fetch.WithLogger(logger))

	classifier := probe.New(probe.Inputs{
		ForcePolling: *forcePolling,
		WSURL:        *wsURL,
	})

	schema := event.NewSchema()

	mgr, err := realtime.New(realtime.DefaultConfig(), dial, fetcher, classifier, logger)
	if err != nil {
		logger.Error("failed to create realtime manager", "error", err)
		os.Exit(1)
	}

	mgr.OnStatusChange(func(method realtime.Method, status realtime.Status) {
		logger.Info("connection state", "method", method, "status", status)
	})

	if err := mgr.Start(ctx); err != nil {
		logger.Error("failed to start realtime manager", "error", err)
		os.Exit(1)
	}

	mgr.Subscribe("watch", realtime.Binding{
		Event:    *eventName,
		Endpoint: *endpoint,
		Interval: *interval,
		Callback: func(payload json.RawMessage) {
			if *verbose {
				fmt.Printf("[%s] %s\n", time.Now().Format(time.RFC3339), prettyPayload(schema, *eventName, payload))
			} else {
				fmt.Printf("[%s] %d bytes\n", time.Now().Format(time.RFC3339), len(payload))
			}
		},
	})

	mgr.Connect()

	logger.Info("watching - press Ctrl+C to stop",
		"event", *eventName,
		"endpoint", *endpoint,
		"interval", *interval,
	)

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	mgr.Stop(shutdownCtx)

	logger.Info("stopped")
}

// prettyPayload renders a payload for the console: typed via the schema
// when it matches the event's registered shape (push deliveries), raw
// JSON otherwise (polling bodies).
func prettyPayload(schema *event.Schema, name string, payload json.RawMessage) []byte {
	if v, err := schema.Decode(name, payload); err == nil {
		if buf, err := json.MarshalIndent(v, "", "  "); err == nil {
			return buf
		}
	}
	var v any
	if err := json.Unmarshal(payload, &v); err == nil {
		if buf, err := json.MarshalIndent(v, "", "  "); err == nil {
			return buf
		}
	}
	return payload
}
