package memory

import (
	"context"
	"errors"
	"time"

	"marketplace/application/ports"
	"marketplace/domain/core/entities"
)

// ShopTable is the in-memory ports.ShopStore.
type ShopTable struct {
	*Table[entities.Shop]
	now func() time.Time
}

func NewShopTable(now func() time.Time) *ShopTable {
	return &ShopTable{Table: NewTable[entities.Shop](), now: now}
}

func (t *ShopTable) ApplyReviewDelta(ctx context.Context, shopID string, scoreDelta float64, countDelta int) (entities.Shop, error) {
	return t.Update(ctx, shopID, func(shop *entities.Shop) error {
		if err := shop.ApplyReviewDelta(scoreDelta, countDelta, t.now()); err != nil {
			if errors.Is(err, entities.ErrAggregateUnderflow) {
				return ports.ErrPreconditionFailed
			}
			return err
		}
		return nil
	})
}

// ReviewTable is the in-memory ports.ReviewStore.
type ReviewTable struct {
	*Table[entities.ShopReview]
	now func() time.Time
}

func NewReviewTable(now func() time.Time) *ReviewTable {
	return &ReviewTable{Table: NewTable[entities.ShopReview](), now: now}
}

func (t *ReviewTable) SetHasReply(ctx context.Context, reviewID string, hasReply bool) (entities.ShopReview, error) {
	return t.Update(ctx, reviewID, func(review *entities.ShopReview) error {
		review.HasReply = hasReply
		review.UpdatedAt = t.now()
		return nil
	})
}

// ReplyTable is the in-memory ports.ReplyStore.
type ReplyTable struct {
	*Table[entities.Reply]
}

func NewReplyTable() *ReplyTable {
	return &ReplyTable{Table: NewTable[entities.Reply]()}
}

var (
	_ ports.ShopStore   = (*ShopTable)(nil)
	_ ports.ReviewStore = (*ReviewTable)(nil)
	_ ports.ReplyStore  = (*ReplyTable)(nil)
)
