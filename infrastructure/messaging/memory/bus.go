package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"marketplace/application/ports"
	"marketplace/domain/events"

	"go.uber.org/zap"
)

// Bus is a synchronous in-process ports.EventBus. Publish returns once every
// subscriber has handled the event.
type Bus struct {
	mu       sync.RWMutex
	handlers []ports.EventHandler
	logger   *zap.Logger
}

// NewBus creates an empty bus.
func NewBus(logger *zap.Logger) *Bus {
	return &Bus{logger: logger}
}

// Subscribe registers handler for every event type it can handle.
func (b *Bus) Subscribe(handler ports.EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = append(b.handlers, handler)
}

// Publish dispatches event to its handlers. Handler failures are joined.
func (b *Bus) Publish(ctx context.Context, event events.DomainEvent) error {
	b.mu.RLock()
	handlers := append([]ports.EventHandler(nil), b.handlers...)
	b.mu.RUnlock()

	var errs []error
	for _, h := range handlers {
		if !h.CanHandle(event.GetEventType()) {
			continue
		}
		if err := h.Handle(ctx, event); err != nil {
			b.logger.Warn("Event handler failed",
				zap.String("event_type", event.GetEventType()),
				zap.String("event_id", event.GetEventID()),
				zap.Error(err),
			)
			errs = append(errs, fmt.Errorf("%s: %w", event.GetEventType(), err))
		}
	}
	return errors.Join(errs...)
}

// PublishBatch publishes events in order.
func (b *Bus) PublishBatch(ctx context.Context, domainEvents []events.DomainEvent) error {
	var errs []error
	for _, event := range domainEvents {
		if err := b.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var _ ports.EventBus = (*Bus)(nil)
