//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"marketplace/infrastructure/config"

	"github.com/google/wire"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideTracer,
	ProvideAWSConfig,
	ProvideDynamoDBClient,
	ProvideEventBridgeClient,
	ProvideCloudWatchClient,
	ProvideCollector,
	ProvideMetrics,
	ProvideStores,
	ProvideCache,
	ProvideRepositories,
	ProvideMemoryBus,
	ProvideEventPublisher,
	ProvideCatalogService,
	ProvideCatalogDirectory,
	ProvideCommandBus,
	ProvideQueryBus,
	ProvideReconciler,
	ProvideProjector,
	ProvideCountReporter,
	ProvideRateLimiter,
	ProvideErrorHandler,
	ProvideReadinessChecks,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, func(), error) {
	wire.Build(SuperSet)
	return nil, nil, nil // Wire will replace this
}
