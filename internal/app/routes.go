package app

import (
	"github.com/gorilla/mux"
	"webhook-notifier/internal/common/ratelimit"
	"webhook-notifier/internal/handlers"
	"webhook-notifier/internal/middleware"
)

// SetupRoutes configures all HTTP routes for the application
func SetupRoutes(router *mux.Router, h *handlers.WebhookHandler, rateLimiter ratelimit.Limiter) {
	router.Use(middleware.LoggingMiddleware)

	// Health check
	router.HandleFunc("/healthz", h.Health).Methods("GET")
	router.HandleFunc("/health", h.Health).Methods("GET")

	webhooks := router.NewRoute().Subrouter()
	if rateLimiter != nil {
		webhooks.Use(ratelimit.HTTPMiddleware(rateLimiter, ratelimit.SourceKey))
	}

	// Per-source endpoints. GET serves subscription challenges.
	webhooks.HandleFunc("/webhook/{source}", h.Receive).Methods("POST")
	webhooks.HandleFunc("/webhook/{source}", h.Challenge).Methods("GET")

	// Bare endpoint routed by the X-Webhook-Source header.
	webhooks.HandleFunc("/webhook", h.Receive).Methods("POST")
}

// Router builds the fully wired HTTP router for the app.
func (a *App) Router() *mux.Router {
	router := mux.NewRouter()
	handler := handlers.NewWebhookHandler(a.Registry, a.Logger)
	SetupRoutes(router, handler, a.RateLimiter)
	return router
}
