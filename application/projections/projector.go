package projections

import (
	"context"
	"errors"
	"fmt"

	"marketplace/application/ports"
	"marketplace/domain/core/entities"
	"marketplace/domain/events"

	"go.uber.org/zap"
)

// Caches groups the cache writers of every entity kind.
type Caches struct {
	Shops   ports.EntityCache[entities.Shop]
	Reviews ports.EntityCache[entities.ShopReview]
	Replies ports.EntityCache[entities.Reply]
}

// Projector applies catalog events to the cache and to the derived fields
// of the store. Only store failures are returned, so the broker delivers the
// event again; the aggregate delta is not idempotent and must not be
// re-applied because a cache write failed. Cache failures are logged,
// counted and left to TTL expiry or count reconciliation.
type Projector struct {
	caches     Caches
	shops      ports.ShopStore
	reviews    ports.ReviewStore
	reconciler *Reconciler
	metrics    ports.Metrics
	logger     *zap.Logger
}

// NewProjector creates a new projector
func NewProjector(
	caches Caches,
	shops ports.ShopStore,
	reviews ports.ReviewStore,
	reconciler *Reconciler,
	metrics ports.Metrics,
	logger *zap.Logger,
) *Projector {
	return &Projector{
		caches:     caches,
		shops:      shops,
		reviews:    reviews,
		reconciler: reconciler,
		metrics:    metrics,
		logger:     logger,
	}
}

// CanHandle implements ports.EventHandler.
func (p *Projector) CanHandle(eventType string) bool {
	switch eventType {
	case events.TypeShopCreated, events.TypeShopDeleted,
		events.TypeReviewCreated, events.TypeReviewDeleted,
		events.TypeReplyCreated, events.TypeReplyDeleted,
		events.TypeCacheCountReported:
		return true
	}
	return false
}

// Handle implements ports.EventHandler.
func (p *Projector) Handle(ctx context.Context, event events.DomainEvent) error {
	err := p.apply(ctx, event)
	p.metrics.EventHandled(event.GetEventType(), err)
	if err != nil {
		p.logger.Error("Failed to project event",
			zap.String("event_type", event.GetEventType()),
			zap.String("event_id", event.GetEventID()),
			zap.String("aggregate_id", event.GetAggregateID()),
			zap.Error(err),
		)
	}
	return err
}

func (p *Projector) apply(ctx context.Context, event events.DomainEvent) error {
	switch e := event.(type) {
	case events.ShopCreated:
		p.cacheStep(event, "cache shop", p.caches.Shops.Put(ctx, e.Shop))
		return nil

	case events.ShopDeleted:
		p.cacheStep(event, "evict shop", p.caches.Shops.Evict(ctx, e.ShopID))
		return nil

	case events.ReviewCreated:
		p.cacheStep(event, "cache review", p.caches.Reviews.Put(ctx, e.Review))
		return p.applyReviewDelta(ctx, event, e.Review.ShopID, e.Review.ReviewScore, 1)

	case events.ReviewDeleted:
		p.cacheStep(event, "evict review", p.caches.Reviews.Evict(ctx, e.ReviewID))
		return p.applyReviewDelta(ctx, event, e.ShopID, -e.ReviewScore, -1)

	case events.ReplyCreated:
		p.cacheStep(event, "cache reply", p.caches.Replies.Put(ctx, e.Reply))
		return p.setHasReply(ctx, event, e.Reply.ReviewID, true)

	case events.ReplyDeleted:
		p.cacheStep(event, "evict reply", p.caches.Replies.Evict(ctx, e.ReplyID))
		return p.setHasReply(ctx, event, e.ReviewID, false)

	case events.CacheCountReported:
		if p.reconciler == nil {
			return nil
		}
		return p.reconciler.Reconcile(ctx, e.Kind, e.Count)
	}

	p.logger.Warn("Ignoring unsupported event", zap.String("event_type", event.GetEventType()))
	return nil
}

// cacheStep records a failed cache write without failing the event.
func (p *Projector) cacheStep(event events.DomainEvent, step string, err error) {
	if err == nil {
		return
	}
	p.metrics.ProjectionCacheFailed(event.GetEventType())
	p.logger.Warn("Cache step failed",
		zap.String("step", step),
		zap.String("event_type", event.GetEventType()),
		zap.String("event_id", event.GetEventID()),
		zap.Error(err),
	)
}

// applyReviewDelta updates the shop aggregate in the store and re-caches the
// result. A shop that is gone or would underflow is skipped: delivering the
// event again cannot fix it.
func (p *Projector) applyReviewDelta(ctx context.Context, event events.DomainEvent, shopID string, scoreDelta float64, countDelta int) error {
	shop, err := p.shops.ApplyReviewDelta(ctx, shopID, scoreDelta, countDelta)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) || errors.Is(err, ports.ErrPreconditionFailed) {
			p.logger.Warn("Skipping shop aggregate update",
				zap.String("shop_id", shopID),
				zap.Float64("score_delta", scoreDelta),
				zap.Int("count_delta", countDelta),
				zap.Error(err),
			)
			return nil
		}
		return fmt.Errorf("update aggregate of shop %s: %w", shopID, err)
	}

	p.logger.Debug("Shop aggregate updated",
		zap.String("shop_id", shopID),
		zap.Int("review_number", shop.ReviewNumber),
		zap.Float64("total_score", shop.TotalScore),
	)
	p.cacheStep(event, "cache shop", p.caches.Shops.Put(ctx, shop))
	return nil
}

func (p *Projector) setHasReply(ctx context.Context, event events.DomainEvent, reviewID string, hasReply bool) error {
	review, err := p.reviews.SetHasReply(ctx, reviewID, hasReply)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			p.logger.Warn("Skipping reply flag of missing review", zap.String("review_id", reviewID))
			return nil
		}
		return fmt.Errorf("set has_reply of review %s: %w", reviewID, err)
	}
	p.cacheStep(event, "cache review", p.caches.Reviews.Put(ctx, review))
	return nil
}
