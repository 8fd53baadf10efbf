package service

import (
	"context"
	"errors"
	"testing"

	"bolao-api/pkg/redis"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupCacheService(t *testing.T) (*miniredis.Miniredis, *CacheService) {
	mr := miniredis.RunT(t)

	client, err := redis.NewClient("redis://"+mr.Addr(), "test", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return mr, NewCacheService(client, zap.NewNop())
}

func TestCacheService_GetPoolCount_MissThenHit(t *testing.T) {
	mr, cache := setupCacheService(t)
	ctx := context.Background()

	calls := 0
	fallback := func(ctx context.Context) (int64, error) {
		calls++
		return 42, nil
	}

	count, err := cache.GetPoolCount(ctx, fallback)
	require.NoError(t, err)
	assert.Equal(t, int64(42), count)
	assert.Equal(t, 1, calls)

	stored, err := mr.Get("test:pools:count:0")
	require.NoError(t, err)
	assert.Equal(t, "42", stored)
	assert.Equal(t, redis.TTLPoolCount, mr.TTL("test:pools:count:0"))

	count, err = cache.GetPoolCount(ctx, fallback)
	require.NoError(t, err)
	assert.Equal(t, int64(42), count)
	assert.Equal(t, 1, calls, "second read is served from cache")
}

func TestCacheService_GetPoolCount_CorruptedValue(t *testing.T) {
	mr, cache := setupCacheService(t)
	require.NoError(t, mr.Set("test:pools:count:0", "not-a-number"))

	count, err := cache.GetPoolCount(context.Background(), func(ctx context.Context) (int64, error) {
		return 7, nil
	})
	require.NoError(t, err)
	assert.Equal(t, int64(7), count)

	stored, _ := mr.Get("test:pools:count:0")
	assert.Equal(t, "7", stored)
}

func TestCacheService_GetPoolCount_FallbackError(t *testing.T) {
	mr, cache := setupCacheService(t)
	boom := errors.New("db down")

	_, err := cache.GetPoolCount(context.Background(), func(ctx context.Context) (int64, error) {
		return 0, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists("test:pools:count:0"))
}

func TestCacheService_GetPoolCount_RedisDown(t *testing.T) {
	mr, cache := setupCacheService(t)
	mr.Close()

	count, err := cache.GetPoolCount(context.Background(), func(ctx context.Context) (int64, error) {
		return 3, nil
	})
	require.NoError(t, err, "cache outages fall back to the database")
	assert.Equal(t, int64(3), count)
}

func TestCacheService_InvalidatePoolCount(t *testing.T) {
	mr, cache := setupCacheService(t)
	ctx := context.Background()
	require.NoError(t, mr.Set("test:pools:count:0", "5"))

	cache.InvalidatePoolCount(ctx)

	gen, err := mr.Get("test:pools:count:gen")
	require.NoError(t, err)
	assert.Equal(t, "1", gen)

	count, err := cache.GetPoolCount(ctx, func(ctx context.Context) (int64, error) {
		return 6, nil
	})
	require.NoError(t, err)
	assert.Equal(t, int64(6), count, "the previous generation is no longer read")

	stored, err := mr.Get("test:pools:count:1")
	require.NoError(t, err)
	assert.Equal(t, "6", stored)
}

func TestCacheService_InvalidateDuringLoad(t *testing.T) {
	_, cache := setupCacheService(t)
	ctx := context.Background()

	// the first load reads the count, then a create lands and invalidates
	// before the stale value is written back
	calls := 0
	fallback := func(ctx context.Context) (int64, error) {
		calls++
		if calls == 1 {
			cache.InvalidatePoolCount(ctx)
			return 1, nil
		}
		return 2, nil
	}

	count, err := cache.GetPoolCount(ctx, fallback)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	count, err = cache.GetPoolCount(ctx, fallback)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count, "stale write-back must not be served")
	assert.Equal(t, 2, calls)

	count, err = cache.GetPoolCount(ctx, fallback)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
	assert.Equal(t, 2, calls, "fresh value is cached")
}

func TestCacheService_GetPoolCount_CorruptedGeneration(t *testing.T) {
	mr, cache := setupCacheService(t)
	require.NoError(t, mr.Set("test:pools:count:gen", "garbage"))

	count, err := cache.GetPoolCount(context.Background(), func(ctx context.Context) (int64, error) {
		return 4, nil
	})
	require.NoError(t, err)
	assert.Equal(t, int64(4), count)
	assert.False(t, mr.Exists("test:pools:count:0"))
}

func TestCacheService_HealthCheck(t *testing.T) {
	mr, cache := setupCacheService(t)
	assert.NoError(t, cache.HealthCheck(context.Background()))

	mr.Close()
	assert.Error(t, cache.HealthCheck(context.Background()))
}
