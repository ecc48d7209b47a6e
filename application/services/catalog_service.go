package services

import (
	"context"
	"errors"
	"fmt"

	"marketplace/application/ports"

	"go.uber.org/zap"
)

// CatalogService answers existence checks straight from the stores. The
// command API serves it over gRPC; single-process deployments use it in
// place of the RPC client.
type CatalogService struct {
	shops   ports.ShopStore
	reviews ports.ReviewStore
	logger  *zap.Logger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(shops ports.ShopStore, reviews ports.ReviewStore, logger *zap.Logger) *CatalogService {
	return &CatalogService{
		shops:   shops,
		reviews: reviews,
		logger:  logger,
	}
}

// ShopExists reports whether a live shop with shopID exists.
func (s *CatalogService) ShopExists(ctx context.Context, shopID string) (bool, error) {
	return exists(ctx, "shop", shopID, s.shops.Get)
}

// ReviewExists reports whether a live review with reviewID exists.
func (s *CatalogService) ReviewExists(ctx context.Context, reviewID string) (bool, error) {
	return exists(ctx, "review", reviewID, s.reviews.Get)
}

func exists[T any](ctx context.Context, kind, id string, get func(context.Context, string) (T, error)) (bool, error) {
	if id == "" {
		return false, nil
	}
	if _, err := get(ctx, id); err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to look up %s %s: %w", kind, id, err)
	}
	return true, nil
}

var _ ports.CatalogDirectory = (*CatalogService)(nil)
