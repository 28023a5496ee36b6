// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	_ "modernc.org/sqlite"

	"github.com/danielhkuo/secret-ballot/ballot"
	"github.com/danielhkuo/secret-ballot/cliparse"
	"github.com/danielhkuo/secret-ballot/db"
	"github.com/danielhkuo/secret-ballot/events"
	"github.com/danielhkuo/secret-ballot/kvstore"
	"github.com/danielhkuo/secret-ballot/metrics"
	"github.com/danielhkuo/secret-ballot/pubsub"
	"github.com/danielhkuo/secret-ballot/router"
)

func main() {
	if err := cliparse.LoadEnvFile(".env"); err != nil {
		slog.Error("Error loading .env", "error", err)
		os.Exit(1)
	}

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Open the backing store
	store, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("store setup failed", "store", cfg.StoreType, "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Backing store ready", "store", cfg.StoreType)

	// Listeners see every committed change
	hub := pubsub.NewHub(logger)
	go hub.Run(ctx)

	listeners := []ballot.Listener{metrics.NewMetrics(prometheus.DefaultRegisterer), hub}
	if len(cfg.KafkaBrokers) > 0 {
		publisher := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
		defer publisher.Close()
		listeners = append(listeners, publisher)
		slog.Info("Publishing poll events", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	}

	engine := ballot.NewStoreEngine(store, ballot.Dependencies{
		Listeners: listeners,
		Logger:    logger,
	})

	// Create router
	mux := router.NewRouter(router.Deps{
		Engine: engine,
		Hub:    hub,
		Logger: logger,
	}, cfg)

	// Create server
	server := http.Server{
		Handler:           mux,
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		// Wait for Ctrl-C signal
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown failed", "error", err)
		}
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port)
	err = server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed")
	}
}

func openStore(ctx context.Context, cfg cliparse.Config) (kvstore.Store, error) {
	switch cfg.StoreType {
	case cliparse.StoreMemory:
		return kvstore.NewMemory(), nil
	case cliparse.StoreSQLite, cliparse.StorePostgres:
		conn, err := db.Open(cfg.StoreType, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := db.CreateSchema(conn); err != nil {
			conn.Close()
			return nil, fmt.Errorf("schema creation failed: %w", err)
		}
		return kvstore.NewSQLStore(conn, kvstore.Dialect(cfg.StoreType)), nil
	case cliparse.StoreRedis:
		rs, err := kvstore.NewRedisStore(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		return rs, nil
	}
	return nil, fmt.Errorf("unknown store type %q", cfg.StoreType)
}
