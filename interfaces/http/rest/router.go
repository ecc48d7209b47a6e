package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"marketplace/application/commands/bus"
	querybus "marketplace/application/queries/bus"
	"marketplace/interfaces/http/rest/handlers"
	"marketplace/interfaces/http/rest/middleware"
	apperrors "marketplace/pkg/errors"
	"marketplace/pkg/ratelimit"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// ReadinessCheck reports whether a dependency can serve traffic.
type ReadinessCheck func(ctx context.Context) error

// Observer is the metrics surface the router exposes and feeds.
type Observer interface {
	middleware.RequestObserver
	Handler() http.Handler
}

// RouterConfig wires the router. CommandBus and QueryBus are optional so the
// same router serves the command API, the query API or both.
type RouterConfig struct {
	CommandBus     *bus.CommandBus
	QueryBus       *querybus.QueryBus
	Errors         *apperrors.ErrorHandler
	Limiter        ratelimit.Limiter
	Observer       Observer
	Checks         map[string]ReadinessCheck
	EnableCORS     bool
	AllowedOrigins []string
}

// Router creates and configures the HTTP router
type Router struct {
	cfg    RouterConfig
	logger *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(cfg RouterConfig, logger *zap.Logger) *Router {
	if cfg.Errors == nil {
		cfg.Errors = apperrors.NewErrorHandler(logger, false)
	}
	return &Router{cfg: cfg, logger: logger}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	var observer middleware.RequestObserver
	if rt.cfg.Observer != nil {
		observer = rt.cfg.Observer
	}
	router.Use(middleware.Logger(rt.logger, observer))
	router.Use(rt.cfg.Errors.Middleware)

	if rt.cfg.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins: rt.cfg.AllowedOrigins,
			AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders: []string{"X-Request-ID", "Retry-After"},
			MaxAge:         300,
		}))
	}

	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)
	if rt.cfg.Observer != nil {
		router.Method(http.MethodGet, "/metrics", rt.cfg.Observer.Handler())
	}

	if rt.cfg.CommandBus == nil && rt.cfg.QueryBus == nil {
		return router
	}
	router.Route("/api/v1", func(r chi.Router) {
		if rt.cfg.CommandBus != nil {
			rt.commandRoutes(r)
		}
		if rt.cfg.QueryBus != nil {
			rt.queryRoutes(r)
		}
	})

	return router
}

func (rt *Router) commandRoutes(r chi.Router) {
	h := handlers.NewCommandHandler(rt.cfg.CommandBus, rt.cfg.Errors, rt.logger)

	r.Group(func(r chi.Router) {
		if rt.cfg.Limiter != nil {
			r.Use(middleware.RateLimit(rt.cfg.Limiter, rt.cfg.Errors, rt.logger))
		}
		r.Post("/shops", h.CreateShop)
		r.Delete("/shops/{shopID}", h.DeleteShop)
		r.Post("/reviews", h.CreateReview)
		r.Delete("/reviews/{reviewID}", h.DeleteReview)
		r.Post("/replies", h.CreateReply)
		r.Delete("/replies/{replyID}", h.DeleteReply)
	})
}

func (rt *Router) queryRoutes(r chi.Router) {
	h := handlers.NewQueryHandler(rt.cfg.QueryBus, rt.cfg.Errors, rt.logger)

	r.Get("/shops", h.ListShops)
	r.Get("/shops/{shopID}", h.GetShop)
	r.Get("/shops/{shopID}/reviews", h.ListShopReviews)
	r.Get("/reviews/{reviewID}", h.GetReview)
	r.Get("/reviews/{reviewID}/reply", h.GetReviewReply)
	r.Get("/replies/{replyID}", h.GetReply)
}

func (rt *Router) healthCheck(w http.ResponseWriter, _ *http.Request) {
	writeStatus(w, http.StatusOK, map[string]interface{}{"status": "healthy"})
}

// readinessCheck runs every registered check with a short deadline.
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
	defer cancel()

	failures := make(map[string]string)
	for name, check := range rt.cfg.Checks {
		if err := check(ctx); err != nil {
			rt.logger.Warn("Readiness check failed", zap.String("check", name), zap.Error(err))
			failures[name] = err.Error()
		}
	}

	if len(failures) > 0 {
		writeStatus(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":   "not_ready",
			"failures": failures,
		})
		return
	}
	writeStatus(w, http.StatusOK, map[string]interface{}{"status": "ready"})
}

func writeStatus(w http.ResponseWriter, status int, body map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
