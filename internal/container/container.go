package container

import (
	"bolao-api/internal/config"
	"bolao-api/internal/repository"
	"bolao-api/internal/service"
	"bolao-api/internal/service/auth"
	"bolao-api/internal/service/code"
	"bolao-api/pkg/database"
	"bolao-api/pkg/logger"
	"bolao-api/pkg/redis"
)

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *logger.Logger
	DB          *database.PostgresDB
	RedisClient *redis.Client
	Services    *service.Services
}

// New creates a new dependency injection container. db is the storage handle
// every repository is built on; Redis is optional and only backs the pool count.
func New(cfg *config.Config, logger *logger.Logger, db *database.PostgresDB) (*Container, error) {
	// Initialize Redis client if Redis URL is configured
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		client, err := redis.NewClient(cfg.RedisURL, cfg.Environment, logger.Named("redis").Logger)
		if err != nil {
			logger.WithError(err).Warn("Failed to initialize Redis client, proceeding without caching")
		} else {
			redisClient = client
			logger.Info("Redis client initialized successfully")
		}
	} else {
		logger.Info("Redis URL not configured, proceeding without caching")
	}

	c := &Container{
		Config:      cfg,
		Logger:      logger,
		DB:          db,
		RedisClient: redisClient,
	}

	// Keep the interface nil when there is no cache
	var countCache service.CountCache
	if cache := c.GetCacheService(); cache != nil {
		countCache = cache
	}

	poolService := service.NewPoolService(
		repository.NewPoolRepository(db),
		code.NewGenerator(cfg.PoolCodeLength),
		countCache,
		cfg.PoolCodeMaxAttempts,
		logger.Named("pools"),
	)

	c.Services = &service.Services{
		Auth: auth.NewService(cfg.JWTSecret, logger.Named("auth")),
		Pool: poolService,
	}

	return c, nil
}

// GetAuthService returns the auth service
func (c *Container) GetAuthService() service.AuthService {
	return c.Services.Auth
}

// GetPoolService returns the pool service
func (c *Container) GetPoolService() service.PoolService {
	return c.Services.Pool
}

// GetLogger returns the logger
func (c *Container) GetLogger() *logger.Logger {
	return c.Logger
}

// GetConfig returns the configuration
func (c *Container) GetConfig() *config.Config {
	return c.Config
}

// GetDB returns the database handle
func (c *Container) GetDB() *database.PostgresDB {
	return c.DB
}

// GetRedisClient returns the Redis client (may be nil if not configured)
func (c *Container) GetRedisClient() *redis.Client {
	return c.RedisClient
}

// HasRedis returns true if Redis client is available
func (c *Container) HasRedis() bool {
	return c.RedisClient != nil
}

// GetCacheService returns a cache service instance (returns nil if Redis is not available)
func (c *Container) GetCacheService() *service.CacheService {
	if c.RedisClient == nil {
		return nil
	}
	return service.NewCacheService(c.RedisClient, c.Logger.Named("cache").Logger)
}
