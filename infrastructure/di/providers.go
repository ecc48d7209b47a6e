package di

import (
	"context"
	"fmt"
	"strings"
	"time"

	"marketplace/application/commands"
	"marketplace/application/commands/bus"
	cmdhandlers "marketplace/application/commands/handlers"
	"marketplace/application/ports"
	"marketplace/application/projections"
	querybus "marketplace/application/queries/bus"
	queryhandlers "marketplace/application/queries/handlers"
	"marketplace/application/services"
	"marketplace/domain/core/entities"
	"marketplace/infrastructure/config"
	"marketplace/infrastructure/messaging/eventbridge"
	"marketplace/infrastructure/messaging/kafka"
	messagingmemory "marketplace/infrastructure/messaging/memory"
	"marketplace/infrastructure/persistence/cache"
	"marketplace/infrastructure/persistence/dynamodb"
	"marketplace/infrastructure/persistence/memory"
	"marketplace/infrastructure/rpc"
	apperrors "marketplace/pkg/errors"
	"marketplace/pkg/observability"
	"marketplace/pkg/ratelimit"
	"marketplace/pkg/utils"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscloudwatch "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Stores groups the system-of-record tables and the lock they share.
type Stores struct {
	Shops   ports.ShopStore
	Reviews ports.ReviewStore
	Replies ports.ReplyStore
	Locker  ports.Locker
}

// Repositories are the cache-aside readers over Stores.
type Repositories struct {
	Shops   *cache.CachedRepository[entities.Shop]
	Reviews *cache.CachedRepository[entities.ShopReview]
	Replies *cache.CachedRepository[entities.Reply]
}

// Indexes lists the repositories as the reconciler and reporter see them.
func (r *Repositories) Indexes() []ports.CacheIndex {
	return []ports.CacheIndex{r.Shops, r.Reviews, r.Replies}
}

// Wait blocks until in-flight cache write-backs finish.
func (r *Repositories) Wait() {
	r.Shops.Wait()
	r.Reviews.Wait()
	r.Replies.Wait()
}

// ReadinessChecks are probed by /ready.
type ReadinessChecks map[string]func(ctx context.Context) error

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, func(), error) {
	var zapCfg zap.Config
	if cfg.IsProduction() {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}

	level, err := zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	zapCfg.Level = level

	logger, err := zapCfg.Build(zap.Fields(
		zap.String("service", cfg.ServiceName),
		zap.String("environment", cfg.Environment),
	))
	if err != nil {
		return nil, nil, err
	}
	return logger, func() { _ = logger.Sync() }, nil
}

// ProvideTracer creates the X-Ray tracer
func ProvideTracer(cfg *config.Config) *observability.Tracer {
	return observability.NewTracer(cfg.ServiceName, cfg.EnableTracing)
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config, tracer *observability.Tracer) (aws.Config, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}
	tracer.InstrumentAWS(&awsCfg)
	return awsCfg, nil
}

// ProvideDynamoDBClient creates a DynamoDB client. DYNAMODB_ENDPOINT points
// it at DynamoDB Local.
func ProvideDynamoDBClient(awsCfg aws.Config, cfg *config.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg, func(o *awsdynamodb.Options) {
		if cfg.DynamoDBEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.DynamoDBEndpoint)
		}
	})
}

// ProvideEventBridgeClient creates an EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideCloudWatchClient creates a CloudWatch client
func ProvideCloudWatchClient(awsCfg aws.Config) *awscloudwatch.Client {
	return awscloudwatch.NewFromConfig(awsCfg)
}

// ProvideCollector creates the Prometheus collector
func ProvideCollector(cfg *config.Config) *observability.Collector {
	return observability.NewCollector(strings.ReplaceAll(cfg.ServiceName, "-", "_"))
}

// ProvideMetrics exposes the collector to the application layer
func ProvideMetrics(cfg *config.Config, collector *observability.Collector) ports.Metrics {
	if !cfg.EnableMetrics {
		return ports.NopMetrics{}
	}
	return collector
}

// ProvideStores creates the shop, review and reply tables for the configured
// backend.
func ProvideStores(cfg *config.Config, client *awsdynamodb.Client, logger *zap.Logger) *Stores {
	now := utils.SystemClock
	if cfg.StoreBackend == config.BackendDynamoDB {
		return &Stores{
			Shops:   dynamodb.NewShopTable(client, cfg.ShopTable, now, logger),
			Reviews: dynamodb.NewReviewTable(client, cfg.ReviewTable, now, logger),
			Replies: dynamodb.NewReplyTable(client, cfg.ReplyTable, logger),
			Locker:  dynamodb.NewDistributedLock(client, cfg.LockTable, uuid.NewString(), now, logger),
		}
	}

	logger.Warn("Using in-memory stores; data is lost on restart")
	return &Stores{
		Shops:   memory.NewShopTable(now),
		Reviews: memory.NewReviewTable(now),
		Replies: memory.NewReplyTable(),
		Locker:  memory.NewLocker(now),
	}
}

// ProvideCache creates the read-side cache
func ProvideCache(cfg *config.Config) (ports.Cache, func(), error) {
	if cfg.CacheBackend == config.BackendRedis {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddress,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		return cache.NewRedisCache(client), func() { _ = client.Close() }, nil
	}

	c := cache.NewMemoryCache(time.Minute)
	return c, func() { _ = c.Close() }, nil
}

// ProvideRepositories wraps each store in a cache-aside reader
func ProvideRepositories(
	cfg *config.Config,
	stores *Stores,
	c ports.Cache,
	collector *observability.Collector,
	logger *zap.Logger,
) (*Repositories, func()) {
	opts := cache.Options{
		TTL:              cfg.CacheTTL,
		WriteBackTimeout: cfg.WriteBackTimeout,
		Logger:           logger,
	}
	if cfg.EnableMetrics {
		opts.Observer = collector
	}

	repos := &Repositories{
		Shops:   cache.NewCachedRepository[entities.Shop](entities.KindShop, stores.Shops, c, apperrors.ErrShopNotFound, opts),
		Reviews: cache.NewCachedRepository[entities.ShopReview](entities.KindReview, stores.Reviews, c, apperrors.ErrReviewNotFound, opts),
		Replies: cache.NewCachedRepository[entities.Reply](entities.KindReply, stores.Replies, c, apperrors.ErrReplyNotFound, opts),
	}
	return repos, repos.Wait
}

// ProvideMemoryBus creates the in-process bus used by the memory transport
func ProvideMemoryBus(logger *zap.Logger) *messagingmemory.Bus {
	return messagingmemory.NewBus(logger)
}

// ProvideEventPublisher creates the publisher for the configured transport
func ProvideEventPublisher(
	cfg *config.Config,
	memBus *messagingmemory.Bus,
	client *awseventbridge.Client,
	logger *zap.Logger,
) (ports.EventPublisher, func(), error) {
	switch cfg.EventTransport {
	case config.TransportKafka:
		writer := kafka.NewWriter(cfg.KafkaBrokers, cfg.KafkaTopic)
		publisher := kafka.NewPublisher(writer, cfg.KafkaTopic, logger)
		return publisher, func() { _ = publisher.Close() }, nil
	case config.TransportEventBridge:
		return eventbridge.NewPublisher(client, cfg.EventBusName, logger), func() {}, nil
	case config.TransportMemory:
		return memBus, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown event transport %q", cfg.EventTransport)
	}
}

// ProvideCatalogService creates the local existence checker
func ProvideCatalogService(stores *Stores, logger *zap.Logger) *services.CatalogService {
	return services.NewCatalogService(stores.Shops, stores.Reviews, logger)
}

// ProvideCatalogDirectory answers existence checks locally, or through the
// catalog gRPC service when CATALOG_TARGET is set.
func ProvideCatalogDirectory(
	cfg *config.Config,
	local *services.CatalogService,
	logger *zap.Logger,
) (ports.CatalogDirectory, func(), error) {
	if cfg.CatalogTarget == "" {
		return local, func() {}, nil
	}

	client, err := rpc.NewCatalogClient(rpc.ClientConfig{
		Target:          cfg.CatalogTarget,
		Timeout:         cfg.RPCTimeout,
		BreakerFailures: uint32(cfg.BreakerFailures),
		BreakerCooldown: cfg.BreakerCooldown,
	}, logger)
	if err != nil {
		return nil, nil, err
	}
	return client, func() { _ = client.Close() }, nil
}

// ProvideCommandBus creates a command bus with registered handlers
func ProvideCommandBus(
	stores *Stores,
	directory ports.CatalogDirectory,
	publisher ports.EventPublisher,
	metrics ports.Metrics,
	logger *zap.Logger,
) (*bus.CommandBus, error) {
	now := utils.SystemClock
	commandBus := bus.NewCommandBus(
		commands.NewValidator(nil),
		bus.LoggingMiddleware(logger),
		bus.MetricsMiddleware(metrics),
	)

	err := cmdhandlers.Register(commandBus,
		cmdhandlers.NewShopHandler(stores.Shops, publisher, metrics, now, logger),
		cmdhandlers.NewReviewHandler(stores.Reviews, directory, publisher, metrics, now, logger),
		cmdhandlers.NewReplyHandler(stores.Replies, directory, publisher, metrics, now, logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register command handlers: %w", err)
	}
	return commandBus, nil
}

// ProvideQueryBus creates a query bus with registered handlers
func ProvideQueryBus(repos *Repositories, logger *zap.Logger) (*querybus.QueryBus, error) {
	queryBus := querybus.NewQueryBus(querybus.LoggingMiddleware(logger))

	handler := queryhandlers.NewCatalogHandler(repos.Shops, repos.Reviews, repos.Replies, logger)
	if err := handler.Register(queryBus); err != nil {
		return nil, fmt.Errorf("failed to register query handlers: %w", err)
	}
	return queryBus, nil
}

// ProvideReconciler creates the cache count reconciler
func ProvideReconciler(
	cfg *config.Config,
	repos *Repositories,
	stores *Stores,
	metrics ports.Metrics,
	logger *zap.Logger,
) *projections.Reconciler {
	return projections.NewReconciler(repos.Indexes(), stores.Locker, cfg.ReconcileLockTTL, metrics, logger)
}

// ProvideProjector creates the event projector. With the memory transport it
// is subscribed to the in-process bus directly.
func ProvideProjector(
	cfg *config.Config,
	repos *Repositories,
	stores *Stores,
	reconciler *projections.Reconciler,
	memBus *messagingmemory.Bus,
	metrics ports.Metrics,
	logger *zap.Logger,
) *projections.Projector {
	projector := projections.NewProjector(
		projections.Caches{
			Shops:   repos.Shops,
			Reviews: repos.Reviews,
			Replies: repos.Replies,
		},
		stores.Shops,
		stores.Reviews,
		reconciler,
		metrics,
		logger,
	)
	if cfg.EventTransport == config.TransportMemory {
		memBus.Subscribe(projector)
	}
	return projector
}

// ProvideCountReporter creates the periodic cache count reporter
func ProvideCountReporter(
	cfg *config.Config,
	repos *Repositories,
	publisher ports.EventPublisher,
	client *awscloudwatch.Client,
	metrics ports.Metrics,
	logger *zap.Logger,
) *projections.CountReporter {
	var gauge projections.GaugeReporter
	if cfg.EnableCloudWatch {
		gauge = observability.NewCloudWatchGauge(cfg.MetricsNamespace, client, utils.SystemClock)
	}
	return projections.NewCountReporter(
		repos.Indexes(),
		publisher,
		gauge,
		metrics,
		cfg.CountReportInterval,
		utils.SystemClock,
		logger,
	)
}

// ProvideRateLimiter creates the write limiter. A RATE_LIMIT_TABLE shares the
// window across replicas; otherwise each process keeps its own buckets.
func ProvideRateLimiter(cfg *config.Config, client *awsdynamodb.Client) (ratelimit.Limiter, func()) {
	if cfg.RateLimitTable != "" {
		limit := int(cfg.RateLimitRPS * 60)
		return ratelimit.NewWindowLimiter(client, cfg.RateLimitTable, limit, time.Minute), func() {}
	}
	limiter := ratelimit.NewTokenBucketLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	return limiter, limiter.Close
}

// ProvideErrorHandler creates the HTTP error renderer
func ProvideErrorHandler(cfg *config.Config, logger *zap.Logger) *apperrors.ErrorHandler {
	return apperrors.NewErrorHandler(logger, cfg.IsDevelopment())
}

// ProvideReadinessChecks probes the configured backends
func ProvideReadinessChecks(cfg *config.Config, client *awsdynamodb.Client, c ports.Cache) ReadinessChecks {
	checks := ReadinessChecks{}
	if cfg.StoreBackend == config.BackendDynamoDB {
		checks["dynamodb"] = func(ctx context.Context) error {
			_, err := client.DescribeTable(ctx, &awsdynamodb.DescribeTableInput{
				TableName: aws.String(cfg.ShopTable),
			})
			return err
		}
	}
	if pinger, ok := c.(interface{ Ping(context.Context) error }); ok {
		checks["cache"] = pinger.Ping
	}
	return checks
}
