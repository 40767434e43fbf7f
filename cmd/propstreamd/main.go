package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/homeledger/propstream/internal/config"
	"github.com/homeledger/propstream/internal/event"
	"github.com/homeledger/propstream/internal/fetch"
	"github.com/homeledger/propstream/internal/probe"
	"github.com/homeledger/propstream/internal/realtime"
	"github.com/homeledger/propstream/internal/transport"
	"github.com/homeledger/propstream/internal/version"
)

func main() {
	// .env is optional; real deployments set environment directly.
	_ = godotenv.Load()

	configPath := flag.String("config", "configs/propstream.yaml", "path to config file")
	flag.Parse()

	// Set up structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	logger.Info("starting propstreamd",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("configuration loaded",
		"instance_id", cfg.Instance.ID,
		"api_url", cfg.Realtime.APIURL,
		"ws_url", cfg.Realtime.WSURL,
		"watches", len(cfg.Watches),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Each connect attempt gets a fresh transport; the client id ties
	// server-side logs back to this daemon instance.
	var dial realtime.Dialer
	if cfg.Realtime.WSURL != "" {
		dial = func() realtime.Transport {
			return transport.NewClient(transport.Config{
				URL:          cfg.Realtime.WSURL,
				ClientID:     cfg.Instance.ID + "-" + uuid.NewString()[:8],
				PingInterval: cfg.Realtime.PingInterval,
				StaleAfter:   cfg.Realtime.StaleAfter,
				WriteTimeout: cfg.Realtime.WriteTimeout,
				BufferSize:   cfg.Realtime.MessageBuffer,
			}, logger)
		}
	}

	fetcher := fetch.NewClient(
		cfg.Realtime.APIURL,
		fetch.WithLogger(logger),
		fetch.WithTimeout(cfg.Realtime.FetchTimeout),
		fetch.WithRetries(cfg.Realtime.MaxRetries, cfg.Realtime.RetryBackoff),
	)

	classifier := probe.New(probe.Inputs{
		ForcePolling: cfg.Realtime.ForcePolling,
		WSURL:        cfg.Realtime.WSURL,
	})

	mgr, err := realtime.New(realtime.Config{
		ReconcileInterval: cfg.Realtime.ReconcileInterval,
		FetchTimeout:      cfg.Realtime.FetchTimeout,
		DedupCacheSize:    cfg.Realtime.DedupCacheSize,
		Schema:            event.NewSchema(),
	}, dial, fetcher, classifier, logger)
	if err != nil {
		logger.Error("failed to create realtime manager", "error", err)
		os.Exit(1)
	}

	mgr.OnStatusChange(func(method realtime.Method, status realtime.Status) {
		logger.Info("connection state",
			"method", method,
			"status", status,
		)
	})

	if err := mgr.Start(ctx); err != nil {
		logger.Error("failed to start realtime manager", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		mgr.Stop(shutdownCtx)
	}()

	for _, w := range cfg.Watches {
		w := w
		mgr.Subscribe(w.ID, realtime.Binding{
			Event:             w.Event,
			Endpoint:          w.Endpoint,
			QueryKey:          w.QueryKey,
			Interval:          w.Interval,
			SuppressUnchanged: w.SuppressUnchanged,
			Callback: func(payload json.RawMessage) {
				logger.Info("update received",
					"watch", w.ID,
					"bytes", len(payload),
				)
			},
		})
	}

	mgr.Connect()

	server := &http.Server{
		Addr:    cfg.Server.ListenAddr,
		Handler: createHandler(mgr),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting status server", "addr", cfg.Server.ListenAddr)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}

	logger.Info("propstreamd stopped")
}

// createHandler builds the daemon's HTTP surface: liveness plus a status
// snapshot of the realtime layer.
func createHandler(mgr *realtime.Manager) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	r.Get("/status", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(mgr.Stats())
	})

	return r
}
