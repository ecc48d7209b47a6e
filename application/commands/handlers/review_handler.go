package handlers

import (
	"context"
	"errors"

	"marketplace/application/commands"
	"marketplace/application/ports"
	"marketplace/domain/core/entities"
	"marketplace/domain/core/valueobjects"
	"marketplace/domain/events"
	apperrors "marketplace/pkg/errors"
	"marketplace/pkg/utils"

	"go.uber.org/zap"
)

// ReviewHandler handles review commands
type ReviewHandler struct {
	reviews   ports.ReviewStore
	directory ports.CatalogDirectory
	events    eventSink
	now       utils.Clock
	logger    *zap.Logger
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(
	reviews ports.ReviewStore,
	directory ports.CatalogDirectory,
	publisher ports.EventPublisher,
	metrics ports.Metrics,
	now utils.Clock,
	logger *zap.Logger,
) *ReviewHandler {
	return &ReviewHandler{
		reviews:   reviews,
		directory: directory,
		events:    eventSink{publisher: publisher, metrics: metrics, logger: logger},
		now:       now,
		logger:    logger,
	}
}

// Create stores a review of an existing shop. The shop aggregate is updated
// downstream from the published event.
func (h *ReviewHandler) Create(ctx context.Context, cmd commands.CreateReviewCommand) (entities.ShopReview, error) {
	exists, err := h.directory.ShopExists(ctx, cmd.ShopID)
	if err != nil {
		return entities.ShopReview{}, apperrors.ErrCatalogUnavailable.New().
			WithDetail("shop_id", cmd.ShopID).
			WithCause(err)
	}
	if !exists {
		return entities.ShopReview{}, apperrors.ErrShopNotFound.New().WithDetail("shop_id", cmd.ShopID)
	}

	review := cmd.ToReview(valueobjects.ResolveID(cmd.ReviewID), h.now())
	if err := h.reviews.Create(ctx, review); err != nil {
		if errors.Is(err, ports.ErrAlreadyExists) {
			return entities.ShopReview{}, apperrors.ErrReviewAlreadyExists.New().WithDetail("review_id", review.ReviewID)
		}
		return entities.ShopReview{}, err
	}

	h.events.publish(ctx, events.NewReviewCreated(review, review.CreatedAt))

	h.logger.Info("Review created",
		zap.String("review_id", review.ReviewID),
		zap.String("shop_id", review.ShopID),
		zap.Float64("review_score", review.ReviewScore),
	)
	return review, nil
}

// Delete soft-deletes a review. The event carries the shop id and score so
// the aggregate can be decremented without another read.
func (h *ReviewHandler) Delete(ctx context.Context, cmd commands.DeleteReviewCommand) (entities.ShopReview, error) {
	at := h.now()
	review, err := h.reviews.SoftDelete(ctx, cmd.ReviewID, at)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return entities.ShopReview{}, apperrors.ErrReviewNotFound.New().WithDetail("review_id", cmd.ReviewID)
		}
		return entities.ShopReview{}, err
	}

	h.events.publish(ctx, events.NewReviewDeleted(review, at))

	h.logger.Info("Review deleted",
		zap.String("review_id", review.ReviewID),
		zap.String("shop_id", review.ShopID),
	)
	return review, nil
}
