package handlers

import (
	"context"
	"sort"

	"marketplace/application/ports"
	"marketplace/application/queries"
	"marketplace/application/queries/bus"
	"marketplace/domain/core/entities"
	"marketplace/pkg/common"
	apperrors "marketplace/pkg/errors"

	"go.uber.org/zap"
)

// CatalogHandler answers catalog reads through the cache-through readers.
type CatalogHandler struct {
	shops   ports.EntityReader[entities.Shop]
	reviews ports.EntityReader[entities.ShopReview]
	replies ports.EntityReader[entities.Reply]
	logger  *zap.Logger
}

// NewCatalogHandler creates a new catalog query handler
func NewCatalogHandler(
	shops ports.EntityReader[entities.Shop],
	reviews ports.EntityReader[entities.ShopReview],
	replies ports.EntityReader[entities.Reply],
	logger *zap.Logger,
) *CatalogHandler {
	return &CatalogHandler{
		shops:   shops,
		reviews: reviews,
		replies: replies,
		logger:  logger,
	}
}

// Register binds every catalog query to h on b.
func (h *CatalogHandler) Register(b *bus.QueryBus) error {
	registrations := []struct {
		query   bus.Query
		handler bus.QueryHandler
	}{
		{queries.GetShopQuery{}, bus.Typed(h.GetShop)},
		{queries.ListShopsQuery{}, bus.Typed(h.ListShops)},
		{queries.ListShopReviewsQuery{}, bus.Typed(h.ListShopReviews)},
		{queries.GetReviewQuery{}, bus.Typed(h.GetReview)},
		{queries.GetReviewReplyQuery{}, bus.Typed(h.GetReviewReply)},
		{queries.GetReplyQuery{}, bus.Typed(h.GetReply)},
	}

	for _, r := range registrations {
		if err := b.Register(r.query, r.handler); err != nil {
			return err
		}
	}
	return nil
}

func (h *CatalogHandler) GetShop(ctx context.Context, q queries.GetShopQuery) (queries.ShopView, error) {
	shop, err := h.shops.Read(ctx, q.ShopID)
	if err != nil {
		return queries.ShopView{}, err
	}
	return queries.NewShopView(shop), nil
}

// ListShops returns shops ordered by creation time, newest first.
func (h *CatalogHandler) ListShops(ctx context.Context, q queries.ListShopsQuery) (common.Page[queries.ShopView], error) {
	shops, err := h.shops.ReadAll(ctx)
	if err != nil {
		return common.Page[queries.ShopView]{}, err
	}

	sort.SliceStable(shops, func(i, j int) bool {
		return newerFirst(shops[i].CreatedAt.UnixNano(), shops[j].CreatedAt.UnixNano(), shops[i].ShopID, shops[j].ShopID)
	})

	views := make([]queries.ShopView, len(shops))
	for i, shop := range shops {
		views[i] = queries.NewShopView(shop)
	}
	return common.Paginate(views, q.Pagination), nil
}

// ListShopReviews fails with SHOP_NOT_FOUND when the shop itself is gone.
func (h *CatalogHandler) ListShopReviews(ctx context.Context, q queries.ListShopReviewsQuery) (common.Page[entities.ShopReview], error) {
	if _, err := h.shops.Read(ctx, q.ShopID); err != nil {
		return common.Page[entities.ShopReview]{}, err
	}

	reviews, err := h.reviews.ReadWhere(ctx, "shop_id", q.ShopID)
	if err != nil {
		return common.Page[entities.ShopReview]{}, err
	}

	sort.SliceStable(reviews, func(i, j int) bool {
		return newerFirst(reviews[i].CreatedAt.UnixNano(), reviews[j].CreatedAt.UnixNano(), reviews[i].ReviewID, reviews[j].ReviewID)
	})
	return common.Paginate(reviews, q.Pagination), nil
}

func (h *CatalogHandler) GetReview(ctx context.Context, q queries.GetReviewQuery) (entities.ShopReview, error) {
	return h.reviews.Read(ctx, q.ReviewID)
}

// GetReviewReply fails with REVIEW_NOT_FOUND for a missing review and
// REPLY_NOT_FOUND when the review has no live reply.
func (h *CatalogHandler) GetReviewReply(ctx context.Context, q queries.GetReviewReplyQuery) (entities.Reply, error) {
	if _, err := h.reviews.Read(ctx, q.ReviewID); err != nil {
		return entities.Reply{}, err
	}

	replies, err := h.replies.ReadWhere(ctx, "review_id", q.ReviewID)
	if err != nil {
		return entities.Reply{}, err
	}
	if len(replies) == 0 {
		return entities.Reply{}, apperrors.ErrReplyNotFound.New().WithDetail("review_id", q.ReviewID)
	}
	if len(replies) > 1 {
		h.logger.Warn("Review has more than one live reply",
			zap.String("review_id", q.ReviewID),
			zap.Int("replies", len(replies)),
		)
	}
	return replies[0], nil
}

func (h *CatalogHandler) GetReply(ctx context.Context, q queries.GetReplyQuery) (entities.Reply, error) {
	return h.replies.Read(ctx, q.ReplyID)
}

func newerFirst(a, b int64, idA, idB string) bool {
	if a != b {
		return a > b
	}
	return idA < idB
}
