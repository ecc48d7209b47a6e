package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Backends selectable at startup.
const (
	BackendMemory   = "memory"
	BackendDynamoDB = "dynamodb"
	BackendRedis    = "redis"

	TransportMemory      = "memory"
	TransportKafka       = "kafka"
	TransportEventBridge = "eventbridge"
)

// Config holds all application configuration. Values come from defaults,
// then the optional YAML file named by CONFIG_FILE, then the environment.
type Config struct {
	// Server configuration
	HTTPAddress string `yaml:"http_address"`
	GRPCAddress string `yaml:"grpc_address"`
	Environment string `yaml:"environment"`
	ServiceName string `yaml:"service_name"`

	// Store configuration
	StoreBackend     string `yaml:"store_backend"`
	AWSRegion        string `yaml:"aws_region"`
	DynamoDBEndpoint string `yaml:"dynamodb_endpoint"`
	ShopTable        string `yaml:"shop_table"`
	ReviewTable      string `yaml:"review_table"`
	ReplyTable       string `yaml:"reply_table"`
	LockTable        string `yaml:"lock_table"`

	// Cache configuration
	CacheBackend     string        `yaml:"cache_backend"`
	RedisAddress     string        `yaml:"redis_address"`
	RedisPassword    string        `yaml:"redis_password"`
	RedisDB          int           `yaml:"redis_db"`
	CacheTTL         time.Duration `yaml:"cache_ttl"`
	WriteBackTimeout time.Duration `yaml:"write_back_timeout"`

	// Event transport
	EventTransport    string        `yaml:"event_transport"`
	KafkaBrokers      []string      `yaml:"kafka_brokers"`
	KafkaTopic        string        `yaml:"kafka_topic"`
	KafkaGroupID      string        `yaml:"kafka_group_id"`
	KafkaMaxAttempts  int           `yaml:"kafka_max_attempts"`
	KafkaRetryBackoff time.Duration `yaml:"kafka_retry_backoff"`
	EventBusName      string        `yaml:"event_bus_name"`

	// Catalog RPC. An empty target answers existence checks from the local
	// stores instead.
	CatalogTarget   string        `yaml:"catalog_target"`
	RPCTimeout      time.Duration `yaml:"rpc_timeout"`
	BreakerFailures int           `yaml:"breaker_failures"`
	BreakerCooldown time.Duration `yaml:"breaker_cooldown"`

	// Reconciliation
	CountReportInterval time.Duration `yaml:"count_report_interval"`
	ReconcileLockTTL    time.Duration `yaml:"reconcile_lock_ttl"`

	// HTTP
	CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
	RateLimitRPS       float64  `yaml:"rate_limit_rps"`
	RateLimitBurst     int      `yaml:"rate_limit_burst"`
	// RateLimitTable switches write throttling to a per-minute window shared
	// by every replica through DynamoDB.
	RateLimitTable string `yaml:"rate_limit_table"`

	// Logging
	LogLevel string `yaml:"log_level"`

	// Feature flags
	EnableMetrics    bool   `yaml:"enable_metrics"`
	EnableTracing    bool   `yaml:"enable_tracing"`
	EnableCORS       bool   `yaml:"enable_cors"`
	EnableCloudWatch bool   `yaml:"enable_cloudwatch"`
	MetricsNamespace string `yaml:"metrics_namespace"`
}

// Default returns the configuration used for local development.
func Default() *Config {
	return &Config{
		HTTPAddress: ":8080",
		GRPCAddress: ":9090",
		Environment: "development",
		ServiceName: "marketplace",

		StoreBackend: BackendMemory,
		AWSRegion:    "ap-northeast-2",
		ShopTable:    "marketplace-shops",
		ReviewTable:  "marketplace-reviews",
		ReplyTable:   "marketplace-replies",
		LockTable:    "marketplace-locks",

		CacheBackend:     BackendMemory,
		RedisAddress:     "localhost:6379",
		CacheTTL:         24 * time.Hour,
		WriteBackTimeout: 2 * time.Second,

		EventTransport:    TransportMemory,
		KafkaBrokers:      []string{"localhost:9092"},
		KafkaTopic:        "marketplace.catalog.events",
		KafkaGroupID:      "marketplace-projector",
		KafkaMaxAttempts:  5,
		KafkaRetryBackoff: 200 * time.Millisecond,
		EventBusName:      "marketplace-events",

		RPCTimeout:      2 * time.Second,
		BreakerFailures: 5,
		BreakerCooldown: 30 * time.Second,

		CountReportInterval: 5 * time.Minute,
		ReconcileLockTTL:    5 * time.Minute,

		CORSAllowedOrigins: []string{"*"},
		RateLimitRPS:       50,
		RateLimitBurst:     100,

		LogLevel:         "info",
		EnableMetrics:    true,
		EnableCORS:       true,
		MetricsNamespace: "Marketplace",
	}
}

// LoadConfig loads configuration from the optional file and the environment
func LoadConfig() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.HTTPAddress = getEnv("HTTP_ADDRESS", getEnv("SERVER_ADDRESS", c.HTTPAddress))
	c.GRPCAddress = getEnv("GRPC_ADDRESS", c.GRPCAddress)
	c.Environment = getEnv("ENVIRONMENT", c.Environment)
	c.ServiceName = getEnv("SERVICE_NAME", c.ServiceName)

	c.StoreBackend = getEnv("STORE_BACKEND", c.StoreBackend)
	c.AWSRegion = getEnv("AWS_REGION", c.AWSRegion)
	c.DynamoDBEndpoint = getEnv("DYNAMODB_ENDPOINT", c.DynamoDBEndpoint)
	c.ShopTable = getEnv("SHOP_TABLE", c.ShopTable)
	c.ReviewTable = getEnv("REVIEW_TABLE", c.ReviewTable)
	c.ReplyTable = getEnv("REPLY_TABLE", c.ReplyTable)
	c.LockTable = getEnv("LOCK_TABLE", c.LockTable)

	c.CacheBackend = getEnv("CACHE_BACKEND", c.CacheBackend)
	c.RedisAddress = getEnv("REDIS_ADDRESS", c.RedisAddress)
	c.RedisPassword = getEnv("REDIS_PASSWORD", c.RedisPassword)
	c.RedisDB = getEnvInt("REDIS_DB", c.RedisDB)
	c.CacheTTL = getEnvDuration("CACHE_TTL", c.CacheTTL)
	c.WriteBackTimeout = getEnvDuration("WRITE_BACK_TIMEOUT", c.WriteBackTimeout)

	c.EventTransport = getEnv("EVENT_TRANSPORT", c.EventTransport)
	c.KafkaBrokers = getEnvList("KAFKA_BROKERS", c.KafkaBrokers)
	c.KafkaTopic = getEnv("KAFKA_TOPIC", c.KafkaTopic)
	c.KafkaGroupID = getEnv("KAFKA_GROUP_ID", c.KafkaGroupID)
	c.KafkaMaxAttempts = getEnvInt("KAFKA_MAX_ATTEMPTS", c.KafkaMaxAttempts)
	c.KafkaRetryBackoff = getEnvDuration("KAFKA_RETRY_BACKOFF", c.KafkaRetryBackoff)
	c.EventBusName = getEnv("EVENT_BUS_NAME", c.EventBusName)

	c.CatalogTarget = getEnv("CATALOG_TARGET", c.CatalogTarget)
	c.RPCTimeout = getEnvDuration("RPC_TIMEOUT", c.RPCTimeout)
	c.BreakerFailures = getEnvInt("BREAKER_FAILURES", c.BreakerFailures)
	c.BreakerCooldown = getEnvDuration("BREAKER_COOLDOWN", c.BreakerCooldown)

	c.CountReportInterval = getEnvDuration("COUNT_REPORT_INTERVAL", c.CountReportInterval)
	c.ReconcileLockTTL = getEnvDuration("RECONCILE_LOCK_TTL", c.ReconcileLockTTL)

	c.CORSAllowedOrigins = getEnvList("CORS_ALLOWED_ORIGINS", c.CORSAllowedOrigins)
	c.RateLimitRPS = getEnvFloat("RATE_LIMIT_RPS", c.RateLimitRPS)
	c.RateLimitBurst = getEnvInt("RATE_LIMIT_BURST", c.RateLimitBurst)
	c.RateLimitTable = getEnv("RATE_LIMIT_TABLE", c.RateLimitTable)

	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.EnableMetrics = getEnvBool("ENABLE_METRICS", c.EnableMetrics)
	c.EnableTracing = getEnvBool("ENABLE_TRACING", c.EnableTracing)
	c.EnableCORS = getEnvBool("ENABLE_CORS", c.EnableCORS)
	c.EnableCloudWatch = getEnvBool("ENABLE_CLOUDWATCH", c.EnableCloudWatch)
	c.MetricsNamespace = getEnv("METRICS_NAMESPACE", c.MetricsNamespace)
}

// Validate checks that the selected backends are known and fully configured
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case BackendMemory:
	case BackendDynamoDB:
		if c.ShopTable == "" || c.ReviewTable == "" || c.ReplyTable == "" {
			return fmt.Errorf("SHOP_TABLE, REVIEW_TABLE and REPLY_TABLE are required for the dynamodb store")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}

	switch c.CacheBackend {
	case BackendMemory:
	case BackendRedis:
		if c.RedisAddress == "" {
			return fmt.Errorf("REDIS_ADDRESS is required for the redis cache")
		}
	default:
		return fmt.Errorf("unknown CACHE_BACKEND %q", c.CacheBackend)
	}

	switch c.EventTransport {
	case TransportMemory:
	case TransportKafka:
		if len(c.KafkaBrokers) == 0 || c.KafkaTopic == "" {
			return fmt.Errorf("KAFKA_BROKERS and KAFKA_TOPIC are required for the kafka transport")
		}
	case TransportEventBridge:
		if c.EventBusName == "" {
			return fmt.Errorf("EVENT_BUS_NAME is required for the eventbridge transport")
		}
	default:
		return fmt.Errorf("unknown EVENT_TRANSPORT %q", c.EventTransport)
	}

	// Projector and query API share the cache only when they share a process.
	if c.CacheBackend == BackendMemory && c.EventTransport != TransportMemory {
		return fmt.Errorf("the memory cache requires the memory event transport; use CACHE_BACKEND=redis with %s", c.EventTransport)
	}

	if c.CacheTTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive")
	}

	if c.IsProduction() {
		if c.StoreBackend == BackendMemory {
			return fmt.Errorf("the memory store is not allowed in production")
		}
		if c.EventTransport == TransportMemory {
			return fmt.Errorf("the memory event transport is not allowed in production")
		}
	}
	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// getEnvDuration accepts Go duration strings such as "90s" or "5m".
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvList splits a comma separated variable, dropping empty entries.
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
