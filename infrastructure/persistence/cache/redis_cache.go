package cache

import (
	"context"
	"errors"
	"time"

	"marketplace/application/ports"
	apperrors "marketplace/pkg/errors"

	"github.com/redis/go-redis/v9"
)

const scanBatchSize = 200

// RedisCache implements ports.Cache on Redis.
type RedisCache struct {
	client redis.UniversalClient
}

// NewRedisCache wraps an existing client. The caller owns the client's
// lifecycle.
func NewRedisCache(client redis.UniversalClient) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ports.ErrCacheMiss
	}
	if err != nil {
		return nil, apperrors.NewCacheError("GET", err)
	}
	return value, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return apperrors.NewCacheError("SET", err)
	}
	return nil
}

func (c *RedisCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return apperrors.NewCacheError("DEL", err)
	}
	return nil
}

// Keys walks SCAN MATCH prefix* to completion. Redis may return a key more
// than once during a scan, so results are de-duplicated.
func (c *RedisCache) Keys(ctx context.Context, prefix string) ([]string, error) {
	seen := make(map[string]struct{})
	keys := make([]string, 0)

	iter := c.client.Scan(ctx, 0, prefix+"*", scanBatchSize).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}
	if err := iter.Err(); err != nil {
		return nil, apperrors.NewCacheError("SCAN", err)
	}
	return keys, nil
}

// Ping reports whether Redis is reachable.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
