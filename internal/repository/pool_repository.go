package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"bolao-api/internal/domain"
	"bolao-api/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type poolRepository struct {
	db *database.PostgresDB
}

// NewPoolRepository creates a new pool repository backed by PostgreSQL
func NewPoolRepository(db *database.PostgresDB) PoolRepository {
	return &poolRepository{db: db}
}

// poolSummarySelect projects a pool with its owner, member count and the
// first $2 participants (oldest first) as a JSON array.
const poolSummarySelect = `
	SELECT p.id::text, p.title, p.code, p.owner_id, p.created_at,
	       o.id, o.name,
	       (SELECT COUNT(*) FROM participants c WHERE c.pool_id = p.id) AS participant_count,
	       COALESCE((
	           SELECT json_agg(json_build_object(
	                      'id', pp.id::text,
	                      'user', json_build_object('avatarUrl', u.avatar_url)
	                  ) ORDER BY pp.created_at, pp.id)
	           FROM (
	               SELECT id, user_id, created_at
	               FROM participants
	               WHERE pool_id = p.id
	               ORDER BY created_at, id
	               LIMIT $2
	           ) pp
	           JOIN users u ON u.id = pp.user_id
	       ), '[]'::json) AS preview
	FROM pools p
	LEFT JOIN users o ON o.id = p.owner_id
`

// Count returns the total number of pools
func (r *poolRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.GetReadPool().QueryRow(ctx, `SELECT COUNT(*) FROM pools`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count pools: %w", err)
	}
	return count, nil
}

// Create inserts the pool and, for an authenticated creator, the creator's participant row
func (r *poolRepository) Create(ctx context.Context, pool *domain.Pool, creator *domain.UserProfile) error {
	if pool.ID == "" {
		pool.ID = uuid.New().String()
	}

	return r.db.WithTx(ctx, func(tx pgx.Tx) error {
		if creator != nil {
			if err := upsertUser(ctx, tx, creator); err != nil {
				return err
			}
			ownerID := creator.Sub
			pool.OwnerID = &ownerID
		}

		query := `
			INSERT INTO pools (id, title, code, owner_id)
			VALUES ($1, $2, $3, $4)
			RETURNING created_at
		`
		err := tx.QueryRow(ctx, query, pool.ID, pool.Title, pool.Code, pool.OwnerID).Scan(&pool.CreatedAt)
		if err != nil {
			if isUniqueViolation(err, poolsCodeConstraint) {
				return ErrDuplicateCode
			}
			return fmt.Errorf("failed to create pool: %w", err)
		}

		if creator == nil {
			return nil
		}

		_, err = tx.Exec(ctx,
			`INSERT INTO participants (id, pool_id, user_id) VALUES ($1, $2, $3)`,
			uuid.New().String(), pool.ID, creator.Sub,
		)
		if err != nil {
			return fmt.Errorf("failed to add creator as participant: %w", err)
		}
		return nil
	})
}

// Join locks the pool row, inserts the participant and claims an unowned pool.
// Concurrent joins on the same pool serialize on the row lock.
func (r *poolRepository) Join(ctx context.Context, code string, user *domain.UserProfile) (*domain.JoinResult, error) {
	result := &domain.JoinResult{ParticipantID: uuid.New().String()}

	err := r.db.WithTx(ctx, func(tx pgx.Tx) error {
		var ownerID *string
		err := tx.QueryRow(ctx,
			`SELECT id::text, owner_id FROM pools WHERE code = $1 FOR UPDATE`, code,
		).Scan(&result.PoolID, &ownerID)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to find pool by code: %w", err)
		}

		if err := upsertUser(ctx, tx, user); err != nil {
			return err
		}

		tag, err := tx.Exec(ctx, `
			INSERT INTO participants (id, pool_id, user_id)
			VALUES ($1, $2, $3)
			ON CONFLICT (pool_id, user_id) DO NOTHING
		`, result.ParticipantID, result.PoolID, user.Sub)
		if err != nil {
			return fmt.Errorf("failed to create participant: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return ErrAlreadyMember
		}

		if ownerID != nil {
			return nil
		}

		tag, err = tx.Exec(ctx,
			`UPDATE pools SET owner_id = $2 WHERE id = $1 AND owner_id IS NULL`,
			result.PoolID, user.Sub,
		)
		if err != nil {
			return fmt.Errorf("failed to claim pool ownership: %w", err)
		}
		result.ClaimedOwnership = tag.RowsAffected() == 1
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// ListByParticipant returns the caller's pools, newest first
func (r *poolRepository) ListByParticipant(ctx context.Context, userID string, previewLimit int) ([]domain.PoolSummary, error) {
	query := poolSummarySelect + `
	WHERE EXISTS (
		SELECT 1 FROM participants m WHERE m.pool_id = p.id AND m.user_id = $1
	)
	ORDER BY p.created_at DESC, p.id
	`

	rows, err := r.db.GetReadPool().Query(ctx, query, userID, previewLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to query pools for participant: %w", err)
	}
	defer rows.Close()

	pools := make([]domain.PoolSummary, 0)
	for rows.Next() {
		summary, err := scanPoolSummary(rows)
		if err != nil {
			return nil, err
		}
		pools = append(pools, *summary)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading pool rows: %w", err)
	}

	return pools, nil
}

// GetForParticipant returns one pool, filtered by the caller's membership in the query itself
func (r *poolRepository) GetForParticipant(ctx context.Context, poolID, userID string, previewLimit int) (*domain.PoolSummary, error) {
	query := poolSummarySelect + `
	WHERE p.id = $3::uuid
	  AND EXISTS (
		SELECT 1 FROM participants m WHERE m.pool_id = p.id AND m.user_id = $1
	  )
	`

	summary, err := scanPoolSummary(r.db.GetReadPool().QueryRow(ctx, query, userID, previewLimit, poolID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return summary, nil
}

func scanPoolSummary(row pgx.Row) (*domain.PoolSummary, error) {
	var (
		summary   domain.PoolSummary
		ownerID   *string
		ownerName *string
		preview   []byte
	)

	err := row.Scan(
		&summary.ID,
		&summary.Title,
		&summary.Code,
		&summary.OwnerID,
		&summary.CreatedAt,
		&ownerID,
		&ownerName,
		&summary.ParticipantCount,
		&preview,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan pool: %w", err)
	}

	if ownerID != nil {
		summary.Owner = &domain.PoolOwner{ID: *ownerID}
		if ownerName != nil {
			summary.Owner.Name = *ownerName
		}
	}

	summary.Participants = make([]domain.ParticipantPreview, 0)
	if err := json.Unmarshal(preview, &summary.Participants); err != nil {
		return nil, fmt.Errorf("failed to decode participant preview: %w", err)
	}

	return &summary, nil
}
