package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"marketplace/application/ports"
	apperrors "marketplace/pkg/errors"

	"go.uber.org/zap"
)

// Options configures a CachedRepository.
type Options struct {
	// TTL is the retention window of every entry written by the repository.
	TTL time.Duration

	// WriteBackTimeout bounds the background cache fill after a miss.
	WriteBackTimeout time.Duration

	Observer ports.CacheObserver
	Logger   *zap.Logger
}

// CachedRepository composes a Cache in front of a Store for one entity kind.
// Entries live under "{kind}:{id}". The store is authoritative; the cache is
// filled in the background on a miss and can be rebuilt at any time.
type CachedRepository[T ports.Entity[T]] struct {
	kind     string
	store    ports.Store[T]
	cache    ports.Cache
	notFound *apperrors.DomainError

	ttl          time.Duration
	writeTimeout time.Duration
	observer     ports.CacheObserver
	logger       *zap.Logger

	pending sync.WaitGroup
}

// NewCachedRepository creates a reader for kind. notFound is the domain
// error returned when neither cache nor store can produce the entity.
func NewCachedRepository[T ports.Entity[T]](
	kind string,
	store ports.Store[T],
	cache ports.Cache,
	notFound *apperrors.DomainError,
	opts Options,
) *CachedRepository[T] {
	if opts.TTL <= 0 {
		opts.TTL = 24 * time.Hour
	}
	if opts.WriteBackTimeout <= 0 {
		opts.WriteBackTimeout = 2 * time.Second
	}
	if opts.Observer == nil {
		opts.Observer = noopObserver{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	return &CachedRepository[T]{
		kind:         kind,
		store:        store,
		cache:        cache,
		notFound:     notFound,
		ttl:          opts.TTL,
		writeTimeout: opts.WriteBackTimeout,
		observer:     opts.Observer,
		logger:       opts.Logger.With(zap.String("kind", kind)),
	}
}

// Kind returns the entity kind, which is also the cache key prefix.
func (r *CachedRepository[T]) Kind() string {
	return r.kind
}

// Key returns the cache key of id.
func (r *CachedRepository[T]) Key(id string) string {
	return r.kind + ":" + id
}

// Read returns the entity with id from the cache, falling back to the store
// on a miss. A store hit is written back to the cache without blocking the
// caller. Cache failures count as misses. Store failures surface as the
// kind's not-found error with the store error as its cause.
func (r *CachedRepository[T]) Read(ctx context.Context, id string) (T, error) {
	var zero T

	if value, ok := r.fromCache(ctx, id); ok {
		r.observer.CacheHit(r.kind)
		return value, nil
	}
	r.observer.CacheMiss(r.kind)

	value, err := r.store.Get(ctx, id)
	if err != nil {
		if !errors.Is(err, ports.ErrNotFound) {
			r.logger.Error("Store read failed, reporting not found",
				zap.String("id", id),
				zap.Error(err),
			)
		}
		return zero, r.notFound.New().WithDetail("id", id).WithCause(err)
	}

	r.writeBack(ctx, value)
	return value, nil
}

// ReadAll enumerates live ids from the store and resolves each one through
// Read. Entities removed between the two steps are skipped.
func (r *CachedRepository[T]) ReadAll(ctx context.Context) ([]T, error) {
	ids, err := r.store.ListIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s ids: %w", r.kind, err)
	}
	return r.readEach(ctx, ids), nil
}

// ReadWhere is ReadAll restricted to records whose field equals value.
func (r *CachedRepository[T]) ReadWhere(ctx context.Context, field, value string) ([]T, error) {
	ids, err := r.store.ListIDsBy(ctx, field, value)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s ids by %s: %w", r.kind, field, err)
	}
	return r.readEach(ctx, ids), nil
}

func (r *CachedRepository[T]) readEach(ctx context.Context, ids []string) []T {
	values := make([]T, 0, len(ids))
	for _, id := range ids {
		value, err := r.Read(ctx, id)
		if err != nil {
			r.logger.Debug("Skipping entity that vanished during listing",
				zap.String("id", id),
				zap.Error(err),
			)
			continue
		}
		values = append(values, value)
	}
	return values
}

// Put writes value to the cache with the standard TTL.
func (r *CachedRepository[T]) Put(ctx context.Context, value T) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s %s: %w", r.kind, value.EntityID(), err)
	}
	return r.cache.Set(ctx, r.Key(value.EntityID()), data, r.ttl)
}

// Evict removes id from the cache.
func (r *CachedRepository[T]) Evict(ctx context.Context, id string) error {
	return r.cache.Delete(ctx, r.Key(id))
}

// CountCached returns the number of entries of this kind in the cache.
func (r *CachedRepository[T]) CountCached(ctx context.Context) (int, error) {
	keys, err := r.cache.Keys(ctx, r.kind+":")
	if err != nil {
		return 0, err
	}
	return len(keys), nil
}

// CountStored returns the number of live records in the store.
func (r *CachedRepository[T]) CountStored(ctx context.Context) (int, error) {
	return r.store.Count(ctx)
}

// Rewarm scans the whole store, deletes cached keys of this kind that have
// no live record and writes every live record to the cache. It returns how
// many entries were written; individual failures are joined.
func (r *CachedRepository[T]) Rewarm(ctx context.Context) (int, error) {
	values, err := r.store.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to scan %s store: %w", r.kind, err)
	}

	live := make(map[string]struct{}, len(values))
	for _, value := range values {
		live[r.Key(value.EntityID())] = struct{}{}
	}

	var errs []error
	keys, err := r.cache.Keys(ctx, r.kind+":")
	if err != nil {
		errs = append(errs, fmt.Errorf("list %s keys: %w", r.kind, err))
	}
	for _, key := range keys {
		if _, ok := live[key]; ok {
			continue
		}
		if err := r.cache.Delete(ctx, key); err != nil {
			errs = append(errs, fmt.Errorf("evict %s: %w", key, err))
		}
	}

	written := 0
	for _, value := range values {
		if err := r.Put(ctx, value); err != nil {
			errs = append(errs, fmt.Errorf("%s %s: %w", r.kind, value.EntityID(), err))
			continue
		}
		written++
	}
	return written, errors.Join(errs...)
}

// Wait blocks until every background write-back has finished.
func (r *CachedRepository[T]) Wait() {
	r.pending.Wait()
}

func (r *CachedRepository[T]) fromCache(ctx context.Context, id string) (T, bool) {
	var value T

	data, err := r.cache.Get(ctx, r.Key(id))
	if err != nil {
		if !errors.Is(err, ports.ErrCacheMiss) {
			r.logger.Warn("Cache read failed, falling back to store",
				zap.String("id", id),
				zap.Error(err),
			)
		}
		return value, false
	}

	if err := json.Unmarshal(data, &value); err != nil {
		r.logger.Warn("Discarding undecodable cache entry",
			zap.String("id", id),
			zap.Error(err),
		)
		return value, false
	}
	return value, true
}

// writeBack fills the cache off the request path. The fill outlives the
// request context but not the write-back timeout.
func (r *CachedRepository[T]) writeBack(ctx context.Context, value T) {
	r.pending.Add(1)
	go func() {
		defer r.pending.Done()

		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.writeTimeout)
		defer cancel()

		err := r.Put(ctx, value)
		r.observer.WriteBack(r.kind, err)
		if err != nil {
			r.logger.Warn("Cache write-back failed",
				zap.String("id", value.EntityID()),
				zap.Error(err),
			)
		}
	}()
}

type noopObserver struct{}

func (noopObserver) CacheHit(string)         {}
func (noopObserver) CacheMiss(string)        {}
func (noopObserver) WriteBack(string, error) {}
