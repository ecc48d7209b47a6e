package ports

import (
	"context"
	"errors"
	"time"
)

// ErrCacheMiss is returned by Cache.Get when the key is absent or expired.
var ErrCacheMiss = errors.New("cache miss")

// Cache is the derived, best-effort key/value store in front of a Store.
type Cache interface {
	// Get returns the raw value for key, or ErrCacheMiss.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key for ttl.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Keys returns every key starting with prefix.
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// CacheObserver receives the outcome of cache reads and background
// write-backs, which never reach the caller.
type CacheObserver interface {
	CacheHit(kind string)
	CacheMiss(kind string)
	WriteBack(kind string, err error)
}

// CacheIndex is the per-kind view of a cache used for reconciliation.
type CacheIndex interface {
	Kind() string

	// CountCached returns how many entries of the kind the cache holds.
	CountCached(ctx context.Context) (int, error)

	// CountStored returns how many live records the store holds.
	CountStored(ctx context.Context) (int, error)

	// Rewarm writes every live record to the cache and returns how many
	// entries were written.
	Rewarm(ctx context.Context) (int, error)
}

// EntityCache is the write side of a cache-through reader.
type EntityCache[T Entity[T]] interface {
	CacheIndex

	Put(ctx context.Context, value T) error
	Evict(ctx context.Context, id string) error
}

// EntityReader is the read side of a cache-through reader.
type EntityReader[T Entity[T]] interface {
	// Read returns one live entity or the kind's not-found error.
	Read(ctx context.Context, id string) (T, error)

	// ReadAll returns every live entity.
	ReadAll(ctx context.Context) ([]T, error)

	// ReadWhere returns the live entities whose field equals value.
	ReadWhere(ctx context.Context, field, value string) ([]T, error)
}
