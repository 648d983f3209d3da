package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/auth-service/internal/auth"
	"github.com/spec-kit/auth-service/internal/config"
	"github.com/spec-kit/auth-service/internal/domain"
	"github.com/spec-kit/auth-service/internal/events"
	"github.com/spec-kit/auth-service/internal/repository"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// SignupParams carries the signup request fields.
type SignupParams struct {
	Username string
	Password string
	LastName string
	PhoneNo  string
	EmailID  string
}

// AuthService coordinates signup, login, and refresh flows, and resolves
// principals for the request filter.
type AuthService struct {
	users      repository.UserRepository
	refresh    *RefreshTokenService
	tokenMgr   *auth.TokenManager
	dispatcher events.Dispatcher
	logger     *zap.Logger
	bcryptCost int
}

// AuthDependencies encapsulates collaborator requirements for the auth service.
type AuthDependencies struct {
	UserRepo      repository.UserRepository
	RefreshTokens *RefreshTokenService
	Dispatcher    events.Dispatcher
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies, logger *zap.Logger) *AuthService {
	return &AuthService{
		users:      deps.UserRepo,
		refresh:    deps.RefreshTokens,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL()),
		dispatcher: deps.Dispatcher,
		logger:     logger,
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// Signup creates a new account and immediately issues an authenticated
// session, sparing the client a separate login round-trip. Fails with
// ErrUsernameTaken when the username is already registered.
func (s *AuthService) Signup(ctx context.Context, params SignupParams) (*domain.User, *TokenPair, error) {
	if existing, _ := s.users.GetByUsername(ctx, params.Username); existing != nil {
		return nil, nil, ErrUsernameTaken
	}

	hash, err := auth.HashPassword(params.Password, s.bcryptCost)
	if err != nil {
		return nil, nil, err
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Username:     params.Username,
		PasswordHash: hash,
		LastName:     params.LastName,
		PhoneNo:      params.PhoneNo,
		EmailID:      params.EmailID,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, nil, err
	}

	pair, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	s.publish(ctx, events.EventUserSignedUp, user, events.UserSignedUpPayload{EmailID: user.EmailID})
	return user, pair, nil
}

// Login verifies credentials and mints a fresh token pair. Unknown usernames
// and wrong passwords both yield ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, username, password string) (*TokenPair, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}

	pair, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.EventUserLoggedIn, user, nil)
	return pair, nil
}

// Refresh exchanges a stored refresh token for a new access token. The
// refresh token string itself is returned unchanged; it rotates only on
// login and signup. Fails with ErrRefreshNotFound when the token is absent
// and ErrRefreshTokenExpired when expired (the record is deleted in that
// case).
func (s *AuthService) Refresh(ctx context.Context, refreshTokenStr string) (*TokenPair, error) {
	record, err := s.refresh.Find(ctx, refreshTokenStr)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, ErrRefreshNotFound
	}

	record, err = s.refresh.VerifyNotExpired(ctx, record)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, record.UserID)
	if err != nil {
		return nil, ErrUserNotFound
	}

	accessToken, _, err := s.tokenMgr.Issue(user.Username, user.RoleNames())
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.EventTokenRefreshed, user, events.TokenRefreshedPayload{RefreshTokenID: record.ID})
	return &TokenPair{AccessToken: accessToken, RefreshToken: record.Token}, nil
}

// Resolve loads the principal for a username. No password comparison happens
// here; credential checks belong to Login.
func (s *AuthService) Resolve(ctx context.Context, username string) (*domain.Principal, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, ErrUserNotFound
	}
	return &domain.Principal{
		UserID:   user.ID,
		Username: user.Username,
		Roles:    user.RoleNames(),
	}, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *AuthService) issueTokens(ctx context.Context, user *domain.User) (*TokenPair, error) {
	accessToken, _, err := s.tokenMgr.Issue(user.Username, user.RoleNames())
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.refresh.Create(ctx, user.Username)
	if err != nil {
		return nil, err
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken.Token}, nil
}

func (s *AuthService) publish(ctx context.Context, eventType events.EventType, user *domain.User, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	event := events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		UserID:    user.ID,
		Username:  user.Username,
		Timestamp: time.Now(),
		Payload:   payload,
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event publish failed", zap.String("event_type", string(eventType)), zap.Error(err))
	}
}
