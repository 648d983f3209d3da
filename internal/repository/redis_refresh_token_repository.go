package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/auth-service/internal/domain"
)

const (
	refreshTokenKeyPrefix = "auth:refresh:token:"
	refreshUserKeyPrefix  = "auth:refresh:user:"
)

type redisRefreshTokenRepository struct {
	client *redis.Client
}

// NewRedisRefreshTokenRepository returns a Redis-backed implementation.
// Each token is stored under a token key, with a per-user index key pointing
// at the active token string so old tokens can be removed on replacement.
// Key TTLs mirror the record expiry so Redis reclaims stale entries on its
// own, independent of the lazy delete-on-expiry check.
func NewRedisRefreshTokenRepository(client *redis.Client) RefreshTokenRepository {
	return &redisRefreshTokenRepository{client: client}
}

type redisRefreshRecord struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

func (r *redisRefreshTokenRepository) Replace(ctx context.Context, token *domain.RefreshToken) error {
	if token.ID == "" {
		token.ID = token.Token
	}
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now()
	}

	payload, err := json.Marshal(redisRefreshRecord{
		ID:        token.ID,
		UserID:    token.UserID,
		Token:     token.Token,
		ExpiresAt: token.ExpiresAt,
		CreatedAt: token.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("marshal refresh token: %w", err)
	}

	userKey := refreshUserKeyPrefix + token.UserID
	ttl := time.Until(token.ExpiresAt)
	if ttl <= 0 {
		ttl = time.Second
	}

	// Watch the user index so two concurrent replacements for the same user
	// retry rather than leaving both token keys behind.
	txn := func(tx *redis.Tx) error {
		oldToken, err := tx.Get(ctx, userKey).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if oldToken != "" {
				pipe.Del(ctx, refreshTokenKeyPrefix+oldToken)
			}
			pipe.Set(ctx, refreshTokenKeyPrefix+token.Token, payload, ttl)
			pipe.Set(ctx, userKey, token.Token, ttl)
			return nil
		})
		return err
	}

	for attempt := 0; attempt < 5; attempt++ {
		err := r.client.Watch(ctx, txn, userKey)
		if err == nil {
			return nil
		}
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return errors.New("refresh token replace: too many concurrent updates")
}

func (r *redisRefreshTokenRepository) GetByToken(ctx context.Context, tokenStr string) (*domain.RefreshToken, error) {
	payload, err := r.client.Get(ctx, refreshTokenKeyPrefix+tokenStr).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var record redisRefreshRecord
	if err := json.Unmarshal(payload, &record); err != nil {
		return nil, fmt.Errorf("unmarshal refresh token: %w", err)
	}
	return &domain.RefreshToken{
		ID:        record.ID,
		UserID:    record.UserID,
		Token:     record.Token,
		ExpiresAt: record.ExpiresAt,
		CreatedAt: record.CreatedAt,
	}, nil
}

func (r *redisRefreshTokenRepository) DeleteByID(ctx context.Context, id string) error {
	// The record ID doubles as the token string in this store.
	record, err := r.GetByToken(ctx, id)
	if err != nil || record == nil {
		return err
	}
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, refreshTokenKeyPrefix+record.Token)
		pipe.Del(ctx, refreshUserKeyPrefix+record.UserID)
		return nil
	})
	return err
}

func (r *redisRefreshTokenRepository) DeleteByUserID(ctx context.Context, userID string) error {
	userKey := refreshUserKeyPrefix + userID
	tokenStr, err := r.client.Get(ctx, userKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return err
	}
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, refreshTokenKeyPrefix+tokenStr)
		pipe.Del(ctx, userKey)
		return nil
	})
	return err
}
