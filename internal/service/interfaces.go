package service

import (
	"context"
	"time"

	"bolao-api/internal/domain"
)

// AuthService defines the interface for authentication operations
type AuthService interface {
	// ValidateToken verifies a bearer token and returns the caller's profile
	ValidateToken(ctx context.Context, token string) (*domain.UserProfile, error)

	// ResolveIdentity turns an Authorization header value into a tagged identity.
	// Missing or invalid credentials yield IdentityUnauthenticated; only
	// infrastructure problems yield IdentityFailed.
	ResolveIdentity(ctx context.Context, authHeader string) domain.Identity

	// IssueToken signs a token for user valid for ttl
	IssueToken(user *domain.UserProfile, ttl time.Duration) (string, error)
}

// PoolService defines the pool operations exposed over HTTP
type PoolService interface {
	// Count returns the total number of pools
	Count(ctx context.Context) (int64, error)

	// Create creates a pool and returns its share code. An authenticated
	// identity owns and joins the pool; an unauthenticated one leaves it unowned.
	Create(ctx context.Context, title string, identity domain.Identity) (string, error)

	// Join adds user to the pool identified by code
	Join(ctx context.Context, code string, user *domain.UserProfile) error

	// ListForCaller returns the pools userID participates in
	ListForCaller(ctx context.Context, userID string) ([]domain.PoolSummary, error)

	// GetOne returns a pool only if userID participates in it
	GetOne(ctx context.Context, poolID, userID string) (*domain.PoolSummary, error)
}

// CountCache caches the total pool count
type CountCache interface {
	GetPoolCount(ctx context.Context, fallback func(ctx context.Context) (int64, error)) (int64, error)
	InvalidatePoolCount(ctx context.Context)
}

// Services aggregates all service interfaces
type Services struct {
	Auth AuthService
	Pool PoolService
}
