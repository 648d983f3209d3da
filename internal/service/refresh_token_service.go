package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/auth-service/internal/domain"
	"github.com/spec-kit/auth-service/internal/repository"
)

// Service-level failure kinds. Handlers translate these into HTTP statuses;
// nothing below this layer knows about HTTP.
var (
	ErrUserNotFound        = errors.New("user not found")
	ErrUsernameTaken       = errors.New("user already exists")
	ErrInvalidCredentials  = errors.New("invalid username or password")
	ErrRefreshNotFound     = errors.New("refresh token is not found or is invalid")
	ErrRefreshTokenExpired = errors.New("refresh token is expired, please log in again")
)

// RefreshTokenService issues, finds, and expires refresh tokens, keeping at
// most one active token per user.
type RefreshTokenService struct {
	users  repository.UserRepository
	tokens repository.RefreshTokenRepository
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time
	gen    func() string
}

// NewRefreshTokenService builds the service.
func NewRefreshTokenService(users repository.UserRepository, tokens repository.RefreshTokenRepository, ttl time.Duration, logger *zap.Logger) *RefreshTokenService {
	return &RefreshTokenService{
		users:  users,
		tokens: tokens,
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
		gen:    uuid.NewString,
	}
}

// WithClock overrides the time source, for tests.
func (s *RefreshTokenService) WithClock(now func() time.Time) *RefreshTokenService {
	s.now = now
	return s
}

// WithGenerator overrides the token string source, for tests.
func (s *RefreshTokenService) WithGenerator(gen func() string) *RefreshTokenService {
	s.gen = gen
	return s
}

// Create replaces any refresh token owned by the user with a freshly
// generated one. After it returns, exactly one non-expired record exists for
// the user and it is the one returned. Fails with ErrUserNotFound for
// unknown usernames.
func (s *RefreshTokenService) Create(ctx context.Context, username string) (*domain.RefreshToken, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, ErrUserNotFound
	}

	// Drop any existing record up front so the collision check below runs
	// against the live token namespace, not a record about to be replaced.
	if err := s.tokens.DeleteByUserID(ctx, user.ID); err != nil {
		return nil, err
	}

	// Collision on a random UUID is vanishingly unlikely, but the contract
	// is that no two concurrently valid tokens share a string; the unique
	// constraint on the token column backs this loop up.
	var tokenStr string
	for {
		tokenStr = s.gen()
		existing, err := s.tokens.GetByToken(ctx, tokenStr)
		if err != nil {
			return nil, err
		}
		if existing == nil {
			break
		}
		s.logger.Warn("refresh token collision, regenerating")
	}

	record := &domain.RefreshToken{
		UserID:    user.ID,
		Token:     tokenStr,
		ExpiresAt: s.now().Add(s.ttl),
	}
	if err := s.tokens.Replace(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// Find is a pure lookup; it returns nil with no error when absent.
func (s *RefreshTokenService) Find(ctx context.Context, tokenStr string) (*domain.RefreshToken, error) {
	return s.tokens.GetByToken(ctx, tokenStr)
}

// VerifyNotExpired returns the record unchanged when still valid. An expired
// record is deleted from the store before ErrRefreshTokenExpired is
// returned: a verify call can be destructive.
func (s *RefreshTokenService) VerifyNotExpired(ctx context.Context, record *domain.RefreshToken) (*domain.RefreshToken, error) {
	if record.Expired(s.now()) {
		if err := s.tokens.DeleteByID(ctx, record.ID); err != nil {
			// A concurrent check may have deleted it already; the outcome
			// is the same either way.
			s.logger.Debug("expired refresh token cleanup failed", zap.Error(err))
		}
		return nil, ErrRefreshTokenExpired
	}
	return record, nil
}
