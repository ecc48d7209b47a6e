package handlers

import (
	"context"

	"marketplace/application/ports"
	"marketplace/domain/events"
	apperrors "marketplace/pkg/errors"

	"go.uber.org/zap"
)

// eventSink publishes the event that follows a durable write. The write
// already succeeded, so a refused publish is logged and counted but never
// returned. Count reconciliation later repairs the cache only: a lost review
// or reply event leaves the shop aggregate or has_reply stale in the store.
type eventSink struct {
	publisher ports.EventPublisher
	metrics   ports.Metrics
	logger    *zap.Logger
}

func (s eventSink) publish(ctx context.Context, event events.DomainEvent) {
	err := s.publisher.Publish(ctx, event)
	s.metrics.EventPublished(event.GetEventType(), err)
	if err == nil {
		return
	}

	failure := apperrors.ErrEventPublishFailed.New().WithCause(err)
	s.logger.Error("Failed to publish event",
		zap.String("error_code", failure.Code),
		zap.String("event_type", event.GetEventType()),
		zap.String("event_id", event.GetEventID()),
		zap.String("aggregate_id", event.GetAggregateID()),
		zap.Error(failure),
	)
}
