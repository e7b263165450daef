package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"

	"github.com/arkidots/pipeline-api/internal/auth"
	"github.com/arkidots/pipeline-api/internal/config"
	"github.com/arkidots/pipeline-api/internal/http/handler"
	"github.com/arkidots/pipeline-api/internal/http/middleware"
	"github.com/arkidots/pipeline-api/internal/store"

	_ "github.com/arkidots/pipeline-api/docs" // Import generated swagger docs
)

type Router struct {
	cfg            *config.Config
	logger         *zap.Logger
	leads          *store.LeadStore
	identity       *store.IdentityStore
	authMiddleware *auth.Middleware
	rateLimiter    *middleware.RateLimiter
	authHandler    *handler.AuthHandler
	userHandler    *handler.UserHandler
	leadHandler    *handler.LeadHandler
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	leads *store.LeadStore,
	identity *store.IdentityStore,
	authMiddleware *auth.Middleware,
	rateLimiter *middleware.RateLimiter,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	leadHandler *handler.LeadHandler,
) *Router {
	return &Router{
		cfg:            cfg,
		logger:         logger,
		leads:          leads,
		identity:       identity,
		authMiddleware: authMiddleware,
		rateLimiter:    rateLimiter,
		authHandler:    authHandler,
		userHandler:    userHandler,
		leadHandler:    leadHandler,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	if rt.cfg.Server.EnableMetrics {
		r.Use(middleware.Metrics)
	}
	r.Use(rt.rateLimiter.LimitByIP) // Apply IP-based rate limiting globally

	// Health check (basic liveness probe)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Readiness check with store counts
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": "healthy",
			"checks": map[string]interface{}{
				"leads": map[string]interface{}{
					"status": "healthy",
					"count":  rt.leads.Count(),
				},
				"users": map[string]interface{}{
					"status": "healthy",
					"count":  rt.identity.Count(),
				},
			},
		})
	})

	// Prometheus metrics
	if rt.cfg.Server.EnableMetrics {
		r.Handle("/metrics", promhttp.Handler())
	}

	// Swagger documentation
	if rt.cfg.Server.EnableSwagger {
		r.Get("/swagger/*", httpSwagger.Handler(
			httpSwagger.URL("/swagger/doc.json"),
		))
	}

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public routes (no auth required)
		r.Post("/auth/login", rt.authHandler.Login)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(rt.authMiddleware.Authenticate)
			r.Use(rt.rateLimiter.Limit)

			// Auth
			r.Get("/auth/me", rt.authHandler.Me)
			r.Post("/auth/logout", rt.authHandler.Logout)

			// Users (admin only)
			r.Route("/users", func(r chi.Router) {
				r.Use(rt.authMiddleware.RequireAdmin)
				r.Get("/", rt.userHandler.ListUsers)
				r.Post("/", rt.userHandler.CreateUser)
				r.Get("/{id}", rt.userHandler.GetUser)
				r.Put("/{id}", rt.userHandler.UpdateUser)
				r.Delete("/{id}", rt.userHandler.DeleteUser)
			})

			// Leads
			r.Route("/leads", func(r chi.Router) {
				r.Get("/", rt.leadHandler.ListLeads)
				r.Post("/", rt.leadHandler.CreateLead)
				r.Get("/selected", rt.leadHandler.SelectedLead)
				r.Get("/{id}", rt.leadHandler.GetLead)
				r.Put("/{id}", rt.leadHandler.UpdateLead)
				r.Delete("/{id}", rt.leadHandler.DeleteLead)
				r.Post("/{id}/select", rt.leadHandler.SelectLead)
				r.Put("/{id}/stages/{stageId}", rt.leadHandler.UpdateStage)
				r.With(rt.authMiddleware.RequireAdmin).
					Put("/{id}/timeline-interval", rt.leadHandler.UpdateTimelineInterval)
				r.Get("/{id}/timeline", rt.leadHandler.Timeline)
				r.Get("/{id}/milestones", rt.leadHandler.Milestones)
				r.Get("/{id}/progress", rt.leadHandler.Progress)
			})
		})
	})

	return r
}
