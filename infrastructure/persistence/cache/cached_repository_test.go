package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"marketplace/application/ports"
	"marketplace/domain/core/entities"
	"marketplace/infrastructure/persistence/memory"
	apperrors "marketplace/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingStore counts Get calls and can be told to fail them.
type countingStore struct {
	ports.Store[entities.Shop]
	gets    atomic.Int32
	failGet error
}

func (s *countingStore) Get(ctx context.Context, id string) (entities.Shop, error) {
	s.gets.Add(1)
	if s.failGet != nil {
		return entities.Shop{}, s.failGet
	}
	return s.Store.Get(ctx, id)
}

// brokenCache fails every call.
type brokenCache struct{}

func (brokenCache) Get(context.Context, string) ([]byte, error) { return nil, errors.New("connection refused") }
func (brokenCache) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("connection refused")
}
func (brokenCache) Delete(context.Context, string) error { return errors.New("connection refused") }
func (brokenCache) Keys(context.Context, string) ([]string, error) {
	return nil, errors.New("connection refused")
}

type recordingObserver struct {
	mu         sync.Mutex
	hits       int
	misses     int
	writeBacks []error
}

func (o *recordingObserver) CacheHit(string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.hits++
}

func (o *recordingObserver) CacheMiss(string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.misses++
}

func (o *recordingObserver) WriteBack(_ string, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.writeBacks = append(o.writeBacks, err)
}

func newFixture(t *testing.T) (*countingStore, *MemoryCache, *recordingObserver, *CachedRepository[entities.Shop]) {
	t.Helper()
	table := memory.NewShopTable(time.Now)
	store := &countingStore{Store: table}
	cache := NewMemoryCache(0)
	t.Cleanup(func() { _ = cache.Close() })
	observer := &recordingObserver{}

	repo := NewCachedRepository[entities.Shop]("shop", store, cache, apperrors.ErrShopNotFound, Options{
		TTL:      time.Hour,
		Observer: observer,
	})
	return store, cache, observer, repo
}

func TestRead_StoreOnlyEntityIsCachedForNextRead(t *testing.T) {
	store, cache, observer, repo := newFixture(t)
	ctx := context.Background()
	require.NoError(t, store.Create(ctx, entities.Shop{ShopID: "s1", ShopName: "Kimbap Heaven"}))

	// Act
	shop, err := repo.Read(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "Kimbap Heaven", shop.ShopName)

	repo.Wait()
	_, err = cache.Get(ctx, "shop:s1")
	require.NoError(t, err)

	again, err := repo.Read(ctx, "s1")
	require.NoError(t, err)

	// Assert
	assert.Equal(t, shop, again)
	assert.EqualValues(t, 1, store.gets.Load())
	assert.Equal(t, 1, observer.hits)
	assert.Equal(t, 1, observer.misses)
	assert.Equal(t, []error{nil}, observer.writeBacks)
}

func TestRead_AbsentEverywhereIsNotFoundAndNotCached(t *testing.T) {
	_, cache, _, repo := newFixture(t)
	ctx := context.Background()

	_, err := repo.Read(ctx, "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrShopNotFound))
	assert.True(t, errors.Is(err, ports.ErrNotFound))

	repo.Wait()
	keys, err := cache.Keys(ctx, "shop:")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestRead_StoreFailureBecomesNotFoundWithCause(t *testing.T) {
	store, _, _, repo := newFixture(t)
	boom := errors.New("throttled")
	store.failGet = boom

	_, err := repo.Read(context.Background(), "s1")

	assert.True(t, errors.Is(err, apperrors.ErrShopNotFound))
	assert.True(t, errors.Is(err, boom))
}

func TestRead_CacheOutageFallsBackToStore(t *testing.T) {
	table := memory.NewShopTable(time.Now)
	require.NoError(t, table.Create(context.Background(), entities.Shop{ShopID: "s1"}))
	observer := &recordingObserver{}
	repo := NewCachedRepository[entities.Shop]("shop", table, brokenCache{}, apperrors.ErrShopNotFound, Options{
		Observer: observer,
	})

	shop, err := repo.Read(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", shop.ShopID)

	repo.Wait()
	require.Len(t, observer.writeBacks, 1)
	assert.Error(t, observer.writeBacks[0])
}

func TestRead_UndecodableEntryIsAMiss(t *testing.T) {
	store, cache, _, repo := newFixture(t)
	ctx := context.Background()
	require.NoError(t, store.Create(ctx, entities.Shop{ShopID: "s1"}))
	require.NoError(t, cache.Set(ctx, "shop:s1", []byte("{not json"), time.Hour))

	shop, err := repo.Read(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", shop.ShopID)
	assert.EqualValues(t, 1, store.gets.Load())
}

func TestRead_WriteBackSurvivesCancelledRequest(t *testing.T) {
	store, cache, _, repo := newFixture(t)
	require.NoError(t, store.Create(context.Background(), entities.Shop{ShopID: "s1"}))

	ctx, cancel := context.WithCancel(context.Background())
	_, err := repo.Read(ctx, "s1")
	require.NoError(t, err)
	cancel()

	assert.Eventually(t, func() bool {
		_, err := cache.Get(context.Background(), "shop:s1")
		return err == nil
	}, time.Second, 10*time.Millisecond)
}

func TestReadAll_ResolvesEveryLiveID(t *testing.T) {
	store, _, _, repo := newFixture(t)
	ctx := context.Background()
	for _, id := range []string{"s3", "s1", "s2"} {
		require.NoError(t, store.Create(ctx, entities.Shop{ShopID: id}))
	}
	_, err := store.SoftDelete(ctx, "s2", time.Now())
	require.NoError(t, err)

	shops, err := repo.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, shops, 2)
	assert.Equal(t, "s1", shops[0].ShopID)
	assert.Equal(t, "s3", shops[1].ShopID)
}

func TestReadWhere_FiltersByAttribute(t *testing.T) {
	table := memory.NewReviewTable(time.Now)
	cache := NewMemoryCache(0)
	defer cache.Close()
	repo := NewCachedRepository[entities.ShopReview]("review", table, cache, apperrors.ErrReviewNotFound, Options{})

	ctx := context.Background()
	require.NoError(t, table.Create(ctx, entities.ShopReview{ReviewID: "r1", ShopID: "s1"}))
	require.NoError(t, table.Create(ctx, entities.ShopReview{ReviewID: "r2", ShopID: "s2"}))
	require.NoError(t, table.Create(ctx, entities.ShopReview{ReviewID: "r3", ShopID: "s1"}))

	reviews, err := repo.ReadWhere(ctx, "shop_id", "s1")
	require.NoError(t, err)
	require.Len(t, reviews, 2)
	assert.Equal(t, "r1", reviews[0].ReviewID)
	assert.Equal(t, "r3", reviews[1].ReviewID)
}

func TestPutEvictAndCounts(t *testing.T) {
	store, _, _, repo := newFixture(t)
	ctx := context.Background()
	require.NoError(t, store.Create(ctx, entities.Shop{ShopID: "s1"}))
	require.NoError(t, store.Create(ctx, entities.Shop{ShopID: "s2"}))

	require.NoError(t, repo.Put(ctx, entities.Shop{ShopID: "s1"}))
	cached, err := repo.CountCached(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, cached)

	written, err := repo.Rewarm(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, written)

	cached, err = repo.CountCached(ctx)
	require.NoError(t, err)
	stored, err := repo.CountStored(ctx)
	require.NoError(t, err)
	assert.Equal(t, stored, cached)

	require.NoError(t, repo.Evict(ctx, "s1"))
	cached, err = repo.CountCached(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, cached)
}

func TestRewarm_DropsEntriesWithoutLiveRecord(t *testing.T) {
	store, cache, _, repo := newFixture(t)
	ctx := context.Background()
	require.NoError(t, store.Create(ctx, entities.Shop{ShopID: "s1"}))

	require.NoError(t, repo.Put(ctx, entities.Shop{ShopID: "gone"}))
	require.NoError(t, cache.Set(ctx, "review:r1", []byte(`{}`), time.Hour))

	written, err := repo.Rewarm(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, written)

	cached, err := repo.CountCached(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, cached)

	_, err = cache.Get(ctx, "shop:gone")
	assert.ErrorIs(t, err, ports.ErrCacheMiss)
	_, err = cache.Get(ctx, "review:r1")
	assert.NoError(t, err, "other kinds are left alone")
}
