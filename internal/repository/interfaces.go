package repository

import (
	"context"

	"bolao-api/internal/domain"
)

// PoolRepository defines the interface for pool and participant data operations
type PoolRepository interface {
	// Count returns the total number of pools
	Count(ctx context.Context) (int64, error)

	// Create inserts pool. When creator is non-nil the creator's user row is
	// upserted, the pool is owned by the creator and the creator joins it, all
	// in one transaction. Returns ErrDuplicateCode when pool.Code is taken.
	Create(ctx context.Context, pool *domain.Pool, creator *domain.UserProfile) error

	// Join adds user to the pool with the given code and claims ownership when
	// the pool has none. Returns ErrNotFound or ErrAlreadyMember.
	Join(ctx context.Context, code string, user *domain.UserProfile) (*domain.JoinResult, error)

	// ListByParticipant returns every pool userID participates in
	ListByParticipant(ctx context.Context, userID string, previewLimit int) ([]domain.PoolSummary, error)

	// GetForParticipant returns poolID only if userID participates in it, else ErrNotFound
	GetForParticipant(ctx context.Context, poolID, userID string, previewLimit int) (*domain.PoolSummary, error)
}
