package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"bolao-api/pkg/redis"
	"go.uber.org/zap"
)

// CacheService provides cache-aside reads backed by Redis. Cache failures are
// logged and never fail the request.
type CacheService struct {
	redis  *redis.Client
	logger *zap.Logger
}

// NewCacheService creates a new cache service
func NewCacheService(redisClient *redis.Client, logger *zap.Logger) *CacheService {
	return &CacheService{
		redis:  redisClient,
		logger: logger,
	}
}

// GetPoolCount returns the cached pool count, loading it with fallback on a miss.
// Counts are stored under the current cache generation, so a load that races
// with InvalidatePoolCount writes to a generation nobody reads anymore.
func (c *CacheService) GetPoolCount(ctx context.Context, fallback func(ctx context.Context) (int64, error)) (int64, error) {
	generation, err := c.poolCountGeneration(ctx)
	if err != nil {
		c.logger.Warn("Pool count cache error, falling back to database", zap.Error(err))
		return fallback(ctx)
	}
	cacheKey := c.redis.KeyBuilder.KeyPoolCount(generation)

	cached, err := c.redis.Get(ctx, cacheKey)
	switch {
	case err == nil:
		if count, parseErr := strconv.ParseInt(cached, 10, 64); parseErr == nil {
			c.logger.Debug("Pool count cache hit",
				zap.Int64("count", count),
				zap.Int64("generation", generation))
			return count, nil
		}
		c.logger.Warn("Pool count cache corrupted, falling back to database", zap.String("value", cached))
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("Pool count cache error, falling back to database", zap.Error(err))
	}

	count, err := fallback(ctx)
	if err != nil {
		return 0, err
	}

	if err := c.redis.Set(ctx, cacheKey, count, redis.TTLPoolCount); err != nil {
		c.logger.Warn("Failed to cache pool count", zap.Error(err))
	}

	return count, nil
}

// InvalidatePoolCount moves the count cache to a new generation after a pool is created
func (c *CacheService) InvalidatePoolCount(ctx context.Context) {
	generation, err := c.redis.Incr(ctx, c.redis.KeyBuilder.KeyPoolCountGeneration())
	if err != nil {
		c.logger.Error("Failed to invalidate pool count cache", zap.Error(err))
		return
	}
	c.logger.Debug("Pool count cache invalidated", zap.Int64("generation", generation))
}

// poolCountGeneration reads the current count generation; an unset generation is 0
func (c *CacheService) poolCountGeneration(ctx context.Context) (int64, error) {
	raw, err := c.redis.Get(ctx, c.redis.KeyBuilder.KeyPoolCountGeneration())
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	generation, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid pool count generation %q: %w", raw, err)
	}
	return generation, nil
}

// HealthCheck performs a health check on the cache system
func (c *CacheService) HealthCheck(ctx context.Context) error {
	start := time.Now()
	err := c.redis.Health(ctx)
	duration := time.Since(start)

	if err != nil {
		c.logger.Error("Cache health check failed",
			zap.Duration("duration", duration),
			zap.Error(err))
		return err
	}

	c.logger.Debug("Cache health check passed", zap.Duration("duration", duration))
	return nil
}
