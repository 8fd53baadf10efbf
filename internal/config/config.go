package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// MaxPoolCodeLength is the width of the pools.code column
const MaxPoolCodeLength = 16

// Config holds all configuration values for the application
type Config struct {
	Port                string
	AllowedOrigins      []string
	LogLevel            string
	LogFormat           string
	DatabaseURL         string
	DatabaseReadURL     string // Read replica URL for SELECT queries
	RedisURL            string
	JWTSecret           string
	JWTTTL              time.Duration
	PoolCodeLength      int
	PoolCodeMaxAttempts int
	Environment         string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	return &Config{
		Port:                getEnv("PORT", "8080"),
		AllowedOrigins:      parseOrigins(getEnv("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		LogFormat:           getEnv("LOG_FORMAT", "json"),
		DatabaseURL:         getEnv("DATABASE_URL", ""),
		DatabaseReadURL:     getEnv("DATABASE_READ_URL", getEnv("DATABASE_URL", "")), // Falls back to write DB if not set
		RedisURL:            getEnv("REDIS_URL", ""),
		JWTSecret:           getEnv("JWT_SECRET", ""),
		JWTTTL:              getDurationEnv("JWT_TTL", 7*24*time.Hour),
		PoolCodeLength:      getIntEnv("POOL_CODE_LENGTH", 6),
		PoolCodeMaxAttempts: getIntEnv("POOL_CODE_MAX_ATTEMPTS", 5),
		Environment:         getEnv("ENVIRONMENT", "production"),
	}, nil
}

// Validate reports the first setting the server cannot start without
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.PoolCodeLength < 1 || c.PoolCodeLength > MaxPoolCodeLength {
		return fmt.Errorf("POOL_CODE_LENGTH must be between 1 and %d", MaxPoolCodeLength)
	}
	if c.PoolCodeMaxAttempts <= 0 {
		return errors.New("POOL_CODE_MAX_ATTEMPTS must be positive")
	}
	return nil
}

// IsDevelopment reports whether the service runs in a local/development environment
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development" || c.Environment == "local"
}

// getEnv gets an environment variable with a fallback value
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// getIntEnv gets an integer environment variable with a fallback value
func getIntEnv(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

// getDurationEnv gets a duration environment variable (e.g. "24h") with a fallback value
func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}

// parseOrigins parses comma-separated origins into a slice
func parseOrigins(origins string) []string {
	if origins == "" {
		return []string{}
	}

	parts := strings.Split(origins, ",")
	result := make([]string, 0, len(parts))

	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
