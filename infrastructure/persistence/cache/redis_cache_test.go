package cache

import (
	"context"
	"testing"
	"time"

	"marketplace/application/ports"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisCache(t *testing.T) (*miniredis.Miniredis, *RedisCache) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, NewRedisCache(client)
}

func TestRedisCache_GetSetDelete(t *testing.T) {
	_, c := newRedisCache(t)
	ctx := context.Background()

	_, err := c.Get(ctx, "shop:s1")
	assert.ErrorIs(t, err, ports.ErrCacheMiss)

	require.NoError(t, c.Set(ctx, "shop:s1", []byte(`{"shop_id":"s1"}`), time.Hour))
	value, err := c.Get(ctx, "shop:s1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"shop_id":"s1"}`, string(value))

	require.NoError(t, c.Delete(ctx, "shop:s1"))
	require.NoError(t, c.Delete(ctx, "shop:s1"))
	_, err = c.Get(ctx, "shop:s1")
	assert.ErrorIs(t, err, ports.ErrCacheMiss)
}

func TestRedisCache_TTLExpires(t *testing.T) {
	mr, c := newRedisCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "review:r1", []byte("{}"), 24*time.Hour))
	assert.Equal(t, 24*time.Hour, mr.TTL("review:r1"))

	mr.FastForward(25 * time.Hour)
	_, err := c.Get(ctx, "review:r1")
	assert.ErrorIs(t, err, ports.ErrCacheMiss)
}

func TestRedisCache_KeysByPrefix(t *testing.T) {
	_, c := newRedisCache(t)
	ctx := context.Background()

	for _, key := range []string{"shop:s1", "shop:s2", "review:r1", "reply:p1"} {
		require.NoError(t, c.Set(ctx, key, []byte("{}"), time.Hour))
	}

	keys, err := c.Keys(ctx, "shop:")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"shop:s1", "shop:s2"}, keys)

	require.NoError(t, c.Ping(ctx))
}

func TestRedisCache_OutageIsCacheError(t *testing.T) {
	mr, c := newRedisCache(t)
	mr.Close()

	_, err := c.Get(context.Background(), "shop:s1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ports.ErrCacheMiss)
}
