package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"bolao-api/internal/domain"
	"bolao-api/internal/repository"
	"bolao-api/internal/service/code"
	apperrors "bolao-api/pkg/errors"
	"bolao-api/pkg/logger"
	"github.com/google/uuid"
)

type poolService struct {
	pools       repository.PoolRepository
	codes       code.Generator
	cache       CountCache
	maxAttempts int
	logger      *logger.Logger
}

// NewPoolService creates the pool service. cache may be nil, in which case the
// count is always read from the database.
func NewPoolService(pools repository.PoolRepository, codes code.Generator, cache CountCache, maxAttempts int, log *logger.Logger) PoolService {
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	return &poolService{
		pools:       pools,
		codes:       codes,
		cache:       cache,
		maxAttempts: maxAttempts,
		logger:      log,
	}
}

// Count returns the total number of pools
func (s *poolService) Count(ctx context.Context) (int64, error) {
	if s.cache != nil {
		return s.cache.GetPoolCount(ctx, s.pools.Count)
	}
	return s.pools.Count(ctx)
}

// Create generates a share code and stores the pool. Code collisions are
// retried with a fresh code up to maxAttempts times.
func (s *poolService) Create(ctx context.Context, title string, identity domain.Identity) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", apperrors.NewValidationError("title is required", map[string]interface{}{"field": "title"})
	}

	var creator *domain.UserProfile
	switch identity.Status {
	case domain.IdentityAuthenticated:
		creator = identity.User
	case domain.IdentityFailed:
		return "", fmt.Errorf("failed to resolve caller identity: %w", identity.Err)
	}

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		generated, err := s.codes.Generate()
		if err != nil {
			return "", err
		}

		pool := &domain.Pool{
			Title: title,
			Code:  strings.ToUpper(generated),
		}

		err = s.pools.Create(ctx, pool, creator)
		if errors.Is(err, repository.ErrDuplicateCode) {
			s.logger.WithFields(map[string]interface{}{
				"attempt": attempt,
				"code":    pool.Code,
			}).Warn("Pool code collision, regenerating")
			continue
		}
		if err != nil {
			return "", err
		}

		if s.cache != nil {
			s.cache.InvalidatePoolCount(ctx)
		}

		s.logger.WithFields(map[string]interface{}{
			"pool_id":  pool.ID,
			"code":     pool.Code,
			"owned":    creator != nil,
			"identity": identity.Status.String(),
		}).Info("Pool created")

		return pool.Code, nil
	}

	return "", ErrCodeExhausted
}

// Join adds user to the pool with the given code, claiming an unowned pool
func (s *poolService) Join(ctx context.Context, poolCode string, user *domain.UserProfile) error {
	if poolCode == "" {
		return apperrors.NewValidationError("code is required", map[string]interface{}{"field": "code"})
	}

	result, err := s.pools.Join(ctx, poolCode, user)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return ErrPoolNotFound
	case errors.Is(err, repository.ErrAlreadyMember):
		return ErrAlreadyMember
	case err != nil:
		return err
	}

	s.logger.WithFields(map[string]interface{}{
		"pool_id":           result.PoolID,
		"user_id":           user.Sub,
		"claimed_ownership": result.ClaimedOwnership,
	}).Info("User joined pool")

	return nil
}

// ListForCaller returns the pools userID participates in
func (s *poolService) ListForCaller(ctx context.Context, userID string) ([]domain.PoolSummary, error) {
	return s.pools.ListByParticipant(ctx, userID, domain.ParticipantPreviewLimit)
}

// GetOne returns the pool only when userID participates in it. Unknown ids,
// malformed ids and pools the caller is not part of are indistinguishable.
func (s *poolService) GetOne(ctx context.Context, poolID, userID string) (*domain.PoolSummary, error) {
	id, err := uuid.Parse(poolID)
	if err != nil {
		return nil, ErrPoolNotFound
	}

	// uuid.Parse accepts urn and braced forms that Postgres rejects
	pool, err := s.pools.GetForParticipant(ctx, id.String(), userID, domain.ParticipantPreviewLimit)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrPoolNotFound
	}
	if err != nil {
		return nil, err
	}
	return pool, nil
}
