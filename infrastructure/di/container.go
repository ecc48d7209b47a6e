package di

import (
	"net/http"

	"marketplace/application/commands/bus"
	"marketplace/application/ports"
	"marketplace/application/projections"
	querybus "marketplace/application/queries/bus"
	"marketplace/application/services"
	"marketplace/infrastructure/config"
	"marketplace/interfaces/http/rest"
	apperrors "marketplace/pkg/errors"
	"marketplace/pkg/observability"
	"marketplace/pkg/ratelimit"

	"go.uber.org/zap"
)

// Container holds all application dependencies
type Container struct {
	Config         *config.Config
	Logger         *zap.Logger
	Tracer         *observability.Tracer
	Collector      *observability.Collector
	Stores         *Stores
	Repositories   *Repositories
	Publisher      ports.EventPublisher
	CatalogService *services.CatalogService
	CommandBus     *bus.CommandBus
	QueryBus       *querybus.QueryBus
	Projector      *projections.Projector
	Reconciler     *projections.Reconciler
	CountReporter  *projections.CountReporter
	RateLimiter    ratelimit.Limiter
	Errors         *apperrors.ErrorHandler
	Checks         ReadinessChecks
}

// HTTPHandler builds the REST router. Either side can be left out so the
// command and query APIs deploy separately.
func (c *Container) HTTPHandler(withCommands, withQueries bool) http.Handler {
	cfg := rest.RouterConfig{
		Errors:         c.Errors,
		Limiter:        c.RateLimiter,
		Checks:         make(map[string]rest.ReadinessCheck, len(c.Checks)),
		EnableCORS:     c.Config.EnableCORS,
		AllowedOrigins: c.Config.CORSAllowedOrigins,
	}
	for name, check := range c.Checks {
		cfg.Checks[name] = check
	}
	if c.Config.EnableMetrics {
		cfg.Observer = c.Collector
	}
	if withCommands {
		cfg.CommandBus = c.CommandBus
	}
	if withQueries {
		cfg.QueryBus = c.QueryBus
	}
	return rest.NewRouter(cfg, c.Logger).Setup()
}
