package kafka

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"marketplace/application/ports"
	"marketplace/application/projections"
	"marketplace/domain/core/entities"
	"marketplace/domain/events"
	"marketplace/infrastructure/persistence/cache"
	"marketplace/infrastructure/persistence/memory"
	apperrors "marketplace/pkg/errors"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

// fakeReader serves queued messages, then blocks until the context ends.
type fakeReader struct {
	mu        sync.Mutex
	queue     []kafka.Message
	committed []kafka.Message
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	if len(r.queue) > 0 {
		msg := r.queue[0]
		r.queue = r.queue[1:]
		r.mu.Unlock()
		return msg, nil
	}
	r.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.committed = append(r.committed, msgs...)
	return nil
}

func (r *fakeReader) Close() error { return nil }

func (r *fakeReader) commits() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.committed)
}

type flakyHandler struct {
	mu       sync.Mutex
	failures int
	handled  []events.DomainEvent
	calls    int
}

func (h *flakyHandler) Handle(_ context.Context, event events.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls++
	if h.failures > 0 {
		h.failures--
		return errors.New("cache unavailable")
	}
	h.handled = append(h.handled, event)
	return nil
}

func (h *flakyHandler) CanHandle(eventType string) bool {
	return eventType != events.TypeCacheCountReported
}

func (h *flakyHandler) snapshot() (int, []events.DomainEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.calls, append([]events.DomainEvent(nil), h.handled...)
}

func TestPublisher_KeysByAggregate(t *testing.T) {
	writer := &fakeWriter{}
	p := NewPublisher(writer, "catalog-events", zap.NewNop())

	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	event := events.NewReviewDeleted(entities.ShopReview{ReviewID: "r1", ShopID: "s1", ReviewScore: 4.5}, at)
	require.NoError(t, p.Publish(context.Background(), event))

	require.Len(t, writer.msgs, 1)
	msg := writer.msgs[0]
	assert.Equal(t, "r1", string(msg.Key))
	assert.Equal(t, kafka.Header{Key: headerEventType, Value: []byte(events.TypeReviewDeleted)}, msg.Headers[0])

	decoded, err := decode(msg)
	require.NoError(t, err)
	assert.Equal(t, event, decoded)
}

func TestPublisher_WrapsWriteFailure(t *testing.T) {
	p := NewPublisher(&fakeWriter{err: errors.New("leader not available")}, "catalog-events", zap.NewNop())

	err := p.Publish(context.Background(), events.NewShopDeleted("s1", time.Now()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "leader not available")
}

func publishTo(t *testing.T, reader *fakeReader, evts ...events.DomainEvent) {
	t.Helper()
	writer := &fakeWriter{}
	require.NoError(t, NewPublisher(writer, "catalog-events", zap.NewNop()).PublishBatch(context.Background(), evts))
	reader.queue = append(reader.queue, writer.msgs...)
}

func TestConsumer_RetriesThenCommits(t *testing.T) {
	reader := &fakeReader{}
	publishTo(t, reader, events.NewShopCreated(entities.Shop{ShopID: "s1"}, time.Now()))
	handler := &flakyHandler{failures: 2}

	consumer := NewConsumer(reader, handler, ConsumerConfig{MaxAttempts: 5, Backoff: time.Millisecond}, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- consumer.Run(ctx) }()

	assert.Eventually(t, func() bool { return reader.commits() == 1 }, time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	calls, handled := handler.snapshot()
	assert.Equal(t, 3, calls)
	require.Len(t, handled, 1)
	assert.Equal(t, events.TypeShopCreated, handled[0].GetEventType())
}

func TestConsumer_GivesUpAndMovesOn(t *testing.T) {
	reader := &fakeReader{}
	publishTo(t, reader,
		events.NewShopDeleted("s1", time.Now()),
		events.NewShopDeleted("s2", time.Now()),
	)
	handler := &flakyHandler{failures: 2}

	consumer := NewConsumer(reader, handler, ConsumerConfig{MaxAttempts: 2, Backoff: time.Millisecond}, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- consumer.Run(ctx) }()

	assert.Eventually(t, func() bool { return reader.commits() == 2 }, time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	_, handled := handler.snapshot()
	require.Len(t, handled, 1)
	assert.Equal(t, "s2", handled[0].GetAggregateID())
}

func TestConsumer_SkipsPoisonAndUnhandledMessages(t *testing.T) {
	reader := &fakeReader{queue: []kafka.Message{{Value: []byte("not json")}}}
	publishTo(t, reader, events.NewCacheCountReported("shop", 3, time.Now()))
	handler := &flakyHandler{}

	consumer := NewConsumer(reader, handler, ConsumerConfig{}, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- consumer.Run(ctx) }()

	assert.Eventually(t, func() bool { return reader.commits() == 2 }, time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	calls, _ := handler.snapshot()
	assert.Zero(t, calls)
}

// downCache fails every call, like an unreachable Redis.
type downCache struct{}

func (downCache) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New("connection refused")
}
func (downCache) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("connection refused")
}
func (downCache) Delete(context.Context, string) error { return errors.New("connection refused") }
func (downCache) Keys(context.Context, string) ([]string, error) {
	return nil, errors.New("connection refused")
}

func TestConsumer_CacheOutageAppliesReviewDeltaOnce(t *testing.T) {
	ctx := context.Background()
	now := func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }

	shops := memory.NewShopTable(now)
	reviews := memory.NewReviewTable(now)
	replies := memory.NewReplyTable()
	require.NoError(t, shops.Create(ctx, entities.Shop{ShopID: "s1", ShopName: "Corner Cafe"}))

	opts := cache.Options{TTL: time.Hour}
	var down ports.Cache = downCache{}
	projector := projections.NewProjector(
		projections.Caches{
			Shops:   cache.NewCachedRepository[entities.Shop](entities.KindShop, shops, down, apperrors.ErrShopNotFound, opts),
			Reviews: cache.NewCachedRepository[entities.ShopReview](entities.KindReview, reviews, down, apperrors.ErrReviewNotFound, opts),
			Replies: cache.NewCachedRepository[entities.Reply](entities.KindReply, replies, down, apperrors.ErrReplyNotFound, opts),
		},
		shops, reviews, nil, ports.NopMetrics{}, zap.NewNop(),
	)

	reader := &fakeReader{}
	publishTo(t, reader, events.NewReviewCreated(entities.ShopReview{ReviewID: "r1", ShopID: "s1", ReviewScore: 8}, now()))

	consumer := NewConsumer(reader, projector, ConsumerConfig{MaxAttempts: 5, Backoff: time.Millisecond}, zap.NewNop())
	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- consumer.Run(runCtx) }()

	assert.Eventually(t, func() bool { return reader.commits() == 1 }, time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	stored, err := shops.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 1, stored.ReviewNumber)
	assert.Equal(t, 8.0, stored.TotalScore)
}
