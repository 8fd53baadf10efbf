package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound      = errors.New("repository: record not found")
	ErrAlreadyMember = errors.New("repository: user already participates in pool")
	ErrDuplicateCode = errors.New("repository: pool code already exists")
)

const (
	pgUniqueViolation = "23505"

	poolsCodeConstraint = "pools_code_key"
)

// isUniqueViolation reports whether err is a unique violation of constraint
func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == pgUniqueViolation && pgErr.ConstraintName == constraint
}
