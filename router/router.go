// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/danielhkuo/secret-ballot/ballot"
	"github.com/danielhkuo/secret-ballot/chat"
	"github.com/danielhkuo/secret-ballot/cliparse"
	"github.com/danielhkuo/secret-ballot/handlers"
	"github.com/danielhkuo/secret-ballot/middleware"
	"github.com/danielhkuo/secret-ballot/pubsub"
)

// Deps are the long-lived services the routes are served from. A nil
// Gatherer serves the default prometheus registry.
type Deps struct {
	Engine   *ballot.Engine
	Hub      *pubsub.Hub
	Gatherer prometheus.Gatherer
	Logger   *slog.Logger
}

func NewRouter(deps Deps, cfg cliparse.Config) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.WithLogging)
	r.Use(middleware.CORS)

	// Initialize handlers
	dispatcher := chat.NewDispatcher(deps.Engine, deps.Logger)
	chatHandler := handlers.NewChatHandler(dispatcher, middleware.NewRateLimiter(cfg.RateLimitPerMinute), cfg.WebhookSecret)
	pollHandler := handlers.NewPollHandler(deps.Engine)
	liveHandler := handlers.NewLiveHandler(deps.Engine, deps.Hub)

	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	// Chat webhook. Without a secret anyone can post any user name, so
	// unsigned deliveries are also limited per client IP.
	r.Group(func(r chi.Router) {
		if cfg.WebhookSecret == "" {
			r.Use(middleware.RateLimit(middleware.NewRateLimiter(cfg.RateLimitPerMinute)))
		}
		r.Post("/messages", chatHandler.HandleMessage)
	})

	// Read-only poll API
	r.Route("/polls", func(r chi.Router) {
		r.Use(middleware.RateLimit(middleware.NewRateLimiter(cfg.RateLimitPerMinute)))
		r.Get("/", pollHandler.ListPolls)
		r.Get("/{id}", pollHandler.GetPoll)
		r.Get("/{id}/results", pollHandler.GetResults)
		if deps.Hub != nil {
			r.Get("/{id}/live", liveHandler.Watch)
		}
	})

	// Root endpoint
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("secret-ballot API v1"))
	})

	return r
}
