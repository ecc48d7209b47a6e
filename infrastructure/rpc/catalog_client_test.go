package rpc

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"marketplace/application/services"
	"marketplace/domain/core/entities"
	"marketplace/infrastructure/persistence/memory"
	grpcapi "marketplace/interfaces/grpc"
	apperrors "marketplace/pkg/errors"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/test/bufconn"
)

type brokenDirectory struct{}

func (brokenDirectory) ShopExists(context.Context, string) (bool, error) {
	return false, errors.New("table unavailable")
}

func (brokenDirectory) ReviewExists(context.Context, string) (bool, error) {
	return false, errors.New("table unavailable")
}

// serve starts a catalog server on an in-memory listener and returns a
// client connected to it.
func serve(t *testing.T, catalog *grpcapi.CatalogServer, cfg ClientConfig) *CatalogClient {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	server := grpcapi.NewServer(catalog, zap.NewNop())
	go func() { _ = server.Serve(lis) }()
	t.Cleanup(server.Stop)

	cfg.Target = "passthrough:///bufnet"
	client, err := NewCatalogClient(cfg, zap.NewNop(),
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestCatalogClient_ExistenceChecks(t *testing.T) {
	ctx := context.Background()
	now := func() time.Time { return time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC) }

	shops := memory.NewShopTable(now)
	reviews := memory.NewReviewTable(now)
	require.NoError(t, shops.Create(ctx, entities.Shop{ShopID: "s1"}))
	require.NoError(t, shops.Create(ctx, entities.Shop{ShopID: "s2"}))
	_, err := shops.SoftDelete(ctx, "s2", now())
	require.NoError(t, err)
	require.NoError(t, reviews.Create(ctx, entities.ShopReview{ReviewID: "r1", ShopID: "s1"}))

	directory := services.NewCatalogService(shops, reviews, zap.NewNop())
	client := serve(t, grpcapi.NewCatalogServer(directory, zap.NewNop()), ClientConfig{Timeout: time.Second})

	tests := []struct {
		name  string
		check func(context.Context, string) (bool, error)
		id    string
		want  bool
	}{
		{"live shop", client.ShopExists, "s1", true},
		{"soft-deleted shop", client.ShopExists, "s2", false},
		{"missing shop", client.ShopExists, "nope", false},
		{"live review", client.ReviewExists, "r1", true},
		{"missing review", client.ReviewExists, "nope", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.check(ctx, tt.id)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCatalogClient_EmptyIDDoesNotTripBreaker(t *testing.T) {
	ctx := context.Background()
	client := serve(t, grpcapi.NewCatalogServer(brokenDirectory{}, zap.NewNop()), ClientConfig{BreakerFailures: 1})

	for i := 0; i < 3; i++ {
		_, err := client.ShopExists(ctx, "")
		require.Error(t, err)
		assert.NotErrorIs(t, err, gobreaker.ErrOpenState)
	}
}

func TestCatalogClient_PeerFailureOpensBreaker(t *testing.T) {
	ctx := context.Background()
	client := serve(t, grpcapi.NewCatalogServer(brokenDirectory{}, zap.NewNop()), ClientConfig{
		BreakerFailures: 2,
		BreakerCooldown: time.Minute,
	})

	for i := 0; i < 2; i++ {
		_, err := client.ShopExists(ctx, "s1")
		require.Error(t, err)
		appErr := apperrors.GetAppError(err)
		require.NotNil(t, appErr)
		assert.Equal(t, apperrors.ErrorTypeExternal, appErr.Type)
	}

	_, err := client.ReviewExists(ctx, "r1")
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
}

func TestNewCatalogClient_RequiresTarget(t *testing.T) {
	_, err := NewCatalogClient(ClientConfig{}, zap.NewNop())
	assert.Error(t, err)
}
