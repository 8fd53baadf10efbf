package repository

import (
	"context"
	"fmt"

	"bolao-api/internal/domain"
	"github.com/jackc/pgx/v5"
)

// upsertUser records the token claims of user so pools and participants can
// reference it. Name and avatar follow the most recent token.
func upsertUser(ctx context.Context, tx pgx.Tx, user *domain.UserProfile) error {
	query := `
		INSERT INTO users (id, name, avatar_url)
		VALUES ($1, $2, NULLIF($3, ''))
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			avatar_url = COALESCE(EXCLUDED.avatar_url, users.avatar_url)
	`

	if _, err := tx.Exec(ctx, query, user.Sub, user.Name, user.AvatarURL); err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	return nil
}
