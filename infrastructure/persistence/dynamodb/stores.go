package dynamodb

import (
	"context"
	"errors"
	"time"

	"marketplace/application/ports"
	"marketplace/domain/core/entities"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"go.uber.org/zap"
)

const (
	attrTotalScore   = "total_score"
	attrReviewNumber = "review_number"
	attrHasReply     = "has_reply"
)

// ShopTable is the DynamoDB ports.ShopStore.
type ShopTable struct {
	*Table[entities.Shop]
	now func() time.Time
}

// NewShopTable creates the shop store on tableName.
func NewShopTable(client API, tableName string, now func() time.Time, logger *zap.Logger) *ShopTable {
	return &ShopTable{
		Table: NewTable[entities.Shop](client, TableConfig{
			TableName:      tableName,
			KeyAttribute:   "shop_id",
			TouchUpdatedAt: true,
		}, logger),
		now: now,
	}
}

// ApplyReviewDelta adds to total_score and review_number in one atomic
// UpdateItem. A decrement is guarded so review_number never drops below
// zero; when the count reaches zero the total is reset to exactly zero.
func (t *ShopTable) ApplyReviewDelta(ctx context.Context, shopID string, scoreDelta float64, countDelta int) (entities.Shop, error) {
	update := expression.Add(expression.Name(attrTotalScore), expression.Value(scoreDelta)).
		Add(expression.Name(attrReviewNumber), expression.Value(countDelta)).
		Set(expression.Name(attrUpdatedAt), expression.Value(t.now()))

	cond := t.liveCondition()
	if countDelta < 0 {
		cond = cond.And(expression.Name(attrReviewNumber).GreaterThanEqual(expression.Value(-countDelta)))
	}

	shop, err := t.update(ctx, shopID, update, cond)
	if errors.Is(err, errConditionFailed) {
		return entities.Shop{}, t.explainConditionFailure(ctx, shopID)
	}
	if err != nil {
		return entities.Shop{}, err
	}

	if shop.ReviewNumber == 0 && shop.TotalScore != 0 {
		return t.resetTotal(ctx, shopID, shop)
	}

	t.logger.Debug("Shop aggregate updated",
		zap.String("shop_id", shopID),
		zap.Float64("total_score", shop.TotalScore),
		zap.Int("review_number", shop.ReviewNumber),
	)
	return shop, nil
}

// resetTotal clears float residue left on total_score once the last review
// is gone. A concurrent increment wins over the reset.
func (t *ShopTable) resetTotal(ctx context.Context, shopID string, current entities.Shop) (entities.Shop, error) {
	update := expression.Set(expression.Name(attrTotalScore), expression.Value(0))
	cond := expression.Name(attrReviewNumber).Equal(expression.Value(0))

	shop, err := t.update(ctx, shopID, update, cond)
	if errors.Is(err, errConditionFailed) {
		return t.Get(ctx, shopID)
	}
	if err != nil {
		t.logger.Warn("Failed to reset total_score", zap.String("shop_id", shopID), zap.Error(err))
		return current, nil
	}
	return shop, nil
}

// explainConditionFailure tells a missing shop apart from a refused
// decrement.
func (t *ShopTable) explainConditionFailure(ctx context.Context, shopID string) error {
	if _, err := t.Get(ctx, shopID); err != nil {
		return err
	}
	return ports.ErrPreconditionFailed
}

// ReviewTable is the DynamoDB ports.ReviewStore.
type ReviewTable struct {
	*Table[entities.ShopReview]
	now func() time.Time
}

// NewReviewTable creates the review store on tableName.
func NewReviewTable(client API, tableName string, now func() time.Time, logger *zap.Logger) *ReviewTable {
	return &ReviewTable{
		Table: NewTable[entities.ShopReview](client, TableConfig{
			TableName:      tableName,
			KeyAttribute:   "review_id",
			TouchUpdatedAt: true,
		}, logger),
		now: now,
	}
}

// SetHasReply sets the derived has_reply flag on a live review.
func (t *ReviewTable) SetHasReply(ctx context.Context, reviewID string, hasReply bool) (entities.ShopReview, error) {
	update := expression.Set(expression.Name(attrHasReply), expression.Value(hasReply)).
		Set(expression.Name(attrUpdatedAt), expression.Value(t.now()))

	review, err := t.update(ctx, reviewID, update, t.liveCondition())
	if errors.Is(err, errConditionFailed) {
		return entities.ShopReview{}, ports.ErrNotFound
	}
	return review, err
}

// ReplyTable is the DynamoDB ports.ReplyStore.
type ReplyTable struct {
	*Table[entities.Reply]
}

// NewReplyTable creates the reply store on tableName.
func NewReplyTable(client API, tableName string, logger *zap.Logger) *ReplyTable {
	return &ReplyTable{
		Table: NewTable[entities.Reply](client, TableConfig{
			TableName:    tableName,
			KeyAttribute: "reply_id",
		}, logger),
	}
}

var (
	_ ports.ShopStore   = (*ShopTable)(nil)
	_ ports.ReviewStore = (*ReviewTable)(nil)
	_ ports.ReplyStore  = (*ReplyTable)(nil)
)
