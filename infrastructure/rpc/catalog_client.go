package rpc

import (
	"context"
	"fmt"
	"time"

	"marketplace/application/ports"
	"marketplace/pkg/catalogrpc"
	apperrors "marketplace/pkg/errors"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ClientConfig configures a CatalogClient.
type ClientConfig struct {
	Target  string
	Timeout time.Duration

	// BreakerFailures is the number of consecutive failures that opens the
	// circuit; BreakerCooldown is how long it stays open.
	BreakerFailures uint32
	BreakerCooldown time.Duration
}

// CatalogClient answers existence checks by calling the command API. It owns
// its connection; call Close at shutdown.
type CatalogClient struct {
	conn    *grpc.ClientConn
	client  catalogrpc.CatalogServiceClient
	timeout time.Duration
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

// NewCatalogClient connects lazily to cfg.Target. Extra dial options are
// appended after the defaults.
func NewCatalogClient(cfg ClientConfig, logger *zap.Logger, opts ...grpc.DialOption) (*CatalogClient, error) {
	if cfg.Target == "" {
		return nil, fmt.Errorf("catalog RPC target is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Second
	}
	if cfg.BreakerFailures == 0 {
		cfg.BreakerFailures = 5
	}
	if cfg.BreakerCooldown <= 0 {
		cfg.BreakerCooldown = 30 * time.Second
	}

	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	}, opts...)

	conn, err := grpc.NewClient(cfg.Target, dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create catalog client for %s: %w", cfg.Target, err)
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "catalog-rpc",
		MaxRequests: 1,
		Timeout:     cfg.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerFailures
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
		IsSuccessful: func(err error) bool {
			// Rejected arguments say nothing about the peer's health.
			return err == nil || status.Code(err) == codes.InvalidArgument
		},
	})

	return &CatalogClient{
		conn:    conn,
		client:  catalogrpc.NewCatalogServiceClient(conn),
		timeout: cfg.Timeout,
		breaker: breaker,
		logger:  logger,
	}, nil
}

func (c *CatalogClient) ShopExists(ctx context.Context, shopID string) (bool, error) {
	return c.exists(ctx, "ShopExists", shopID, c.client.ShopExists)
}

func (c *CatalogClient) ReviewExists(ctx context.Context, reviewID string) (bool, error) {
	return c.exists(ctx, "ReviewExists", reviewID, c.client.ReviewExists)
}

type existsCall func(ctx context.Context, id *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.BoolValue, error)

func (c *CatalogClient) exists(ctx context.Context, method, id string, call existsCall) (bool, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		ctx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		resp, err := call(ctx, wrapperspb.String(id))
		if err != nil {
			return nil, err
		}
		return resp.GetValue(), nil
	})
	if err != nil {
		c.logger.Warn("Catalog RPC failed",
			zap.String("method", method),
			zap.String("id", id),
			zap.Error(err),
		)
		return false, apperrors.NewExternalError("catalog."+method, err)
	}
	return result.(bool), nil
}

// Close releases the connection.
func (c *CatalogClient) Close() error {
	return c.conn.Close()
}

var _ ports.CatalogDirectory = (*CatalogClient)(nil)
