// Package api provides the statuscope local HTTP API: the reconciled
// dashboard view and its mutation surface, for consumption by a thin UI.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/statuscope/statuscope/internal/api/handler"
	"github.com/statuscope/statuscope/internal/api/middleware"
	"github.com/statuscope/statuscope/internal/dashboard"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version     string
	BuildTime   string
	Logger      zerolog.Logger
	Reconciler  *dashboard.Reconciler
	Coordinator *dashboard.Coordinator
}

// NewRouter creates a chi router with all local API routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware - order matters
	r.Use(middleware.RequestID)
	r.Use(middleware.Tracing())
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequireJSON)
	r.Use(middleware.ContentTypeJSON)

	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.Reconciler)
	dashboardHandler := handler.NewDashboardHandler(cfg.Reconciler, cfg.Coordinator)

	readRateLimit := middleware.RateLimitByIP(middleware.ReadRateLimit)
	mutationRateLimit := middleware.RateLimitByIP(middleware.MutationRateLimit)

	r.Route("/v1", func(r chi.Router) {
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
		})

		r.Route("/dashboard", func(r chi.Router) {
			r.With(readRateLimit).Get("/", dashboardHandler.GetSnapshot)
			r.With(readRateLimit).Post("/refresh", dashboardHandler.Refresh)
			r.With(readRateLimit).Post("/retry", dashboardHandler.Retry)
			r.With(readRateLimit).Post("/load-more", dashboardHandler.LoadMore)
			r.With(readRateLimit).Put("/query", dashboardHandler.SetQuery)

			r.Route("/products", func(r chi.Router) {
				r.Use(mutationRateLimit)
				r.Post("/", dashboardHandler.CreateProduct)
				r.Route("/{productId}", func(r chi.Router) {
					r.Post("/toggle", dashboardHandler.ToggleProduct)
					r.Patch("/", dashboardHandler.UpdateProduct)
					r.Delete("/", dashboardHandler.DeleteProduct)
					r.Post("/components", dashboardHandler.CreateComponent)
				})
			})

			r.Route("/components/{componentId}", func(r chi.Router) {
				r.Use(mutationRateLimit)
				r.Patch("/", dashboardHandler.UpdateComponent)
				r.Delete("/", dashboardHandler.DeleteComponent)
			})
		})
	})

	return r
}
