package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

type InvalidTokenRepo struct {
	DB DBTX
}

const addInvalidToken = `-- name: AddInvalidToken
INSERT INTO invalid_tokens (token, expires_at)
VALUES ($1, $2)
ON CONFLICT (token) DO NOTHING
`

// Add token to the ledger
// Re-adding the same token is a no-op so logout stays idempotent
func (r *InvalidTokenRepo) Add(ctx context.Context, token string, expiresAt time.Time) error {
	_, err := r.DB.Exec(ctx, addInvalidToken, token, expiresAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

const containsInvalidToken = `-- name: ContainsInvalidToken
SELECT 1
FROM invalid_tokens
WHERE token = $1
`

func (r *InvalidTokenRepo) Contains(ctx context.Context, token string) (bool, error) {
	rows, _ := r.DB.Query(ctx, containsInvalidToken, token)
	_, err := pgx.CollectOneRow(rows, pgx.RowTo[int])

	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, pgx.ErrNoRows):
		return false, nil
	default:
		return false, fmt.Errorf("db error: %w", err)
	}
}

const deleteExpiredTokens = `-- name: DeleteExpiredTokens
DELETE FROM invalid_tokens
WHERE expires_at <= $1
`

// DeleteExpired purges records whose veto window already closed.
// The records are logically dead after expiry either way
func (r *InvalidTokenRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.DB.Exec(ctx, deleteExpiredTokens, now)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return tag.RowsAffected(), nil
}
