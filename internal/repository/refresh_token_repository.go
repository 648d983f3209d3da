package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/auth-service/internal/domain"
)

// RefreshTokenRepository manages refresh token persistence. The store must
// guarantee that Replace leaves exactly one record per user even under
// concurrent calls for the same user.
type RefreshTokenRepository interface {
	// Replace removes any record owned by token.UserID and persists token
	// as that user's single active refresh token, atomically.
	Replace(ctx context.Context, token *domain.RefreshToken) error
	// GetByToken is a pure lookup returning nil when absent.
	GetByToken(ctx context.Context, tokenStr string) (*domain.RefreshToken, error)
	DeleteByID(ctx context.Context, id string) error
	DeleteByUserID(ctx context.Context, userID string) error
}

type refreshTokenRepository struct {
	pool *pgxpool.Pool
}

// NewRefreshTokenRepository returns a Postgres-backed implementation.
// Uniqueness of both the token string and the owning user is enforced by
// unique constraints on refresh_tokens.
func NewRefreshTokenRepository(pool *pgxpool.Pool) RefreshTokenRepository {
	return &refreshTokenRepository{pool: pool}
}

func (r *refreshTokenRepository) Replace(ctx context.Context, token *domain.RefreshToken) error {
	// Single upsert keyed on user_id: concurrent logins for the same user
	// serialize on the row and the last writer wins, leaving one record.
	const query = `
        INSERT INTO refresh_tokens (user_id, token, expires_at)
        VALUES ($1, $2, $3)
        ON CONFLICT (user_id) DO UPDATE
            SET token = EXCLUDED.token,
                expires_at = EXCLUDED.expires_at,
                created_at = NOW()
        RETURNING id, created_at`

	return r.pool.QueryRow(ctx, query,
		token.UserID,
		token.Token,
		token.ExpiresAt,
	).Scan(&token.ID, &token.CreatedAt)
}

func (r *refreshTokenRepository) GetByToken(ctx context.Context, tokenStr string) (*domain.RefreshToken, error) {
	const query = `
        SELECT id, user_id, token, expires_at, created_at
        FROM refresh_tokens WHERE token=$1`

	var token domain.RefreshToken
	if err := r.pool.QueryRow(ctx, query, tokenStr).Scan(
		&token.ID,
		&token.UserID,
		&token.Token,
		&token.ExpiresAt,
		&token.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &token, nil
}

func (r *refreshTokenRepository) DeleteByID(ctx context.Context, id string) error {
	const query = `DELETE FROM refresh_tokens WHERE id=$1`
	_, err := r.pool.Exec(ctx, query, id)
	return err
}

func (r *refreshTokenRepository) DeleteByUserID(ctx context.Context, userID string) error {
	const query = `DELETE FROM refresh_tokens WHERE user_id=$1`
	_, err := r.pool.Exec(ctx, query, userID)
	return err
}
