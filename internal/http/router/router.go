package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hagglehub/negotiation-api/internal/config"
	"github.com/hagglehub/negotiation-api/internal/database"
	"github.com/hagglehub/negotiation-api/internal/http/handler"
	"github.com/hagglehub/negotiation-api/internal/http/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Router struct {
	cfg            *config.Config
	logger         *zap.Logger
	db             *gorm.DB
	rateLimiter    *middleware.RateLimiter
	vehicleHandler *handler.VehicleHandler
	dealerHandler  *handler.DealerHandler
	dealHandler    *handler.DealHandler
	messageHandler *handler.MessageHandler
	listingHandler *handler.ListingHandler
	insightHandler *handler.InsightHandler
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	rateLimiter *middleware.RateLimiter,
	vehicleHandler *handler.VehicleHandler,
	dealerHandler *handler.DealerHandler,
	dealHandler *handler.DealHandler,
	messageHandler *handler.MessageHandler,
	listingHandler *handler.ListingHandler,
	insightHandler *handler.InsightHandler,
) *Router {
	return &Router{
		cfg:            cfg,
		logger:         logger,
		db:             db,
		rateLimiter:    rateLimiter,
		vehicleHandler: vehicleHandler,
		dealerHandler:  dealerHandler,
		dealHandler:    dealHandler,
		messageHandler: messageHandler,
		listingHandler: listingHandler,
		insightHandler: insightHandler,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(rt.rateLimiter.Limit)

	// Health check (basic liveness probe)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Database health check (readiness probe with detailed stats)
	r.Get("/health/db", func(w http.ResponseWriter, r *http.Request) {
		stats, err := database.HealthCheckWithStats(rt.db)
		if err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status":  "unhealthy",
				"error":   err.Error(),
				"service": "database",
			})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "healthy",
			"service": "database",
			"stats": map[string]interface{}{
				"max_open_connections": stats.MaxOpenConnections,
				"open_connections":     stats.OpenConnections,
				"in_use":               stats.InUse,
				"idle":                 stats.Idle,
				"wait_count":           stats.WaitCount,
				"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
				"max_idle_closed":      stats.MaxIdleClosed,
				"max_lifetime_closed":  stats.MaxLifetimeClosed,
			},
		})
	})

	// Combined readiness check (checks all dependencies)
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		checks := make(map[string]interface{})
		allHealthy := true

		// Check database
		if err := database.HealthCheck(rt.db); err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			checks["database"] = map[string]interface{}{
				"status": "unhealthy",
				"error":  err.Error(),
			}
			allHealthy = false
		} else {
			checks["database"] = map[string]interface{}{
				"status": "healthy",
			}
		}

		w.Header().Set("Content-Type", "application/json")
		if allHealthy {
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status": "healthy",
				"checks": checks,
			})
		} else {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status": "unhealthy",
				"checks": checks,
			})
		}
	})

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Vehicles
		r.Route("/vehicles", func(r chi.Router) {
			r.Get("/", rt.vehicleHandler.List)
			r.Post("/", rt.vehicleHandler.Create)
			r.Get("/{id}", rt.vehicleHandler.Get)
			r.Put("/{id}", rt.vehicleHandler.Update)
			r.Delete("/{id}", rt.vehicleHandler.Delete)
		})

		// Dealers
		r.Route("/dealers", func(r chi.Router) {
			r.Get("/", rt.dealerHandler.List)
			r.Post("/", rt.dealerHandler.Create)
			r.Get("/{id}", rt.dealerHandler.Get)
			r.Put("/{id}", rt.dealerHandler.Update)
			r.Delete("/{id}", rt.dealerHandler.Delete)
		})

		// Deals
		r.Route("/deals", func(r chi.Router) {
			r.Get("/", rt.dealHandler.List)
			r.Post("/", rt.dealHandler.Create)
			r.Get("/{id}", rt.dealHandler.Get)
			r.Delete("/{id}", rt.dealHandler.Delete)

			// Pricing
			r.Put("/{id}/prices", rt.dealHandler.UpdatePrices)
			r.Post("/{id}/toggle-mode", rt.dealHandler.ToggleMode)
			r.Post("/{id}/fees/resolve", rt.dealHandler.ResolveFees)
			r.Put("/{id}/fees/manual", rt.dealHandler.SetManualFees)
			r.Delete("/{id}/fees/manual", rt.dealHandler.ClearManualFees)

			// Lifecycle
			r.Post("/{id}/status", rt.dealHandler.UpdateStatus)

			// Thread
			r.Get("/{dealId}/messages", rt.messageHandler.Thread)
		})

		// Fee preview (no deal required)
		r.Post("/fees/preview", rt.dealHandler.PreviewFees)

		// Messages
		r.Route("/messages", func(r chi.Router) {
			r.Get("/", rt.messageHandler.List)
			r.Post("/", rt.messageHandler.Create)
			r.Get("/unread-count", rt.messageHandler.UnreadCount)
			r.Get("/{id}", rt.messageHandler.Get)
			r.Put("/{id}/read", rt.messageHandler.MarkRead)
		})

		// Listings
		r.Route("/listings", func(r chi.Router) {
			r.Post("/import", rt.listingHandler.ImportURL)
			r.Post("/parse-conversation", rt.listingHandler.ParseConversation)
			r.Post("/import-conversation", rt.listingHandler.ImportConversation)
		})

		// Insights
		r.Route("/insights", func(r chi.Router) {
			r.Get("/latest", rt.insightHandler.Latest)
			r.Post("/check", rt.insightHandler.Check)
			r.Post("/refresh", rt.insightHandler.Refresh)
		})
	})

	return r
}
