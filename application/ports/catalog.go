package ports

import "context"

// CatalogDirectory answers referential existence checks owned by the
// command side. Soft-deleted entities do not exist.
type CatalogDirectory interface {
	ShopExists(ctx context.Context, shopID string) (bool, error)
	ReviewExists(ctx context.Context, reviewID string) (bool, error)
}
