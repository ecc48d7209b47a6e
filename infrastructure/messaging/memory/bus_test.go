package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"marketplace/domain/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recorder struct {
	accepts string
	err     error
	seen    []string
}

func (r *recorder) Handle(_ context.Context, event events.DomainEvent) error {
	r.seen = append(r.seen, event.GetAggregateID())
	return r.err
}

func (r *recorder) CanHandle(eventType string) bool { return eventType == r.accepts }

func TestBus_DispatchesByType(t *testing.T) {
	bus := NewBus(zap.NewNop())
	shops := &recorder{accepts: events.TypeShopDeleted}
	counts := &recorder{accepts: events.TypeCacheCountReported}
	bus.Subscribe(shops)
	bus.Subscribe(counts)

	require.NoError(t, bus.PublishBatch(context.Background(), []events.DomainEvent{
		events.NewShopDeleted("s1", time.Now()),
		events.NewShopDeleted("s2", time.Now()),
	}))

	assert.Equal(t, []string{"s1", "s2"}, shops.seen)
	assert.Empty(t, counts.seen)
}

func TestBus_JoinsHandlerErrors(t *testing.T) {
	bus := NewBus(zap.NewNop())
	failing := &recorder{accepts: events.TypeShopDeleted, err: errors.New("redis down")}
	healthy := &recorder{accepts: events.TypeShopDeleted}
	bus.Subscribe(failing)
	bus.Subscribe(healthy)

	err := bus.Publish(context.Background(), events.NewShopDeleted("s1", time.Now()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis down")
	assert.Equal(t, []string{"s1"}, healthy.seen)
}
