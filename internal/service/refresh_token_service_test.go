package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/auth-service/internal/domain"
)

func seedUser(t *testing.T, users *memUserRepo, username string) *domain.User {
	t.Helper()
	user := &domain.User{ID: "id-" + username, Username: username, PasswordHash: "x"}
	require.NoError(t, users.Create(context.Background(), user))
	return user
}

func TestRefreshCreate_UnknownUser(t *testing.T) {
	t.Parallel()

	svc := NewRefreshTokenService(newMemUserRepo(), newMemRefreshRepo(), 10*time.Minute, zap.NewNop())

	_, err := svc.Create(context.Background(), "nobody")
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestRefreshCreate_SingleActiveTokenPerUser(t *testing.T) {
	t.Parallel()

	users := newMemUserRepo()
	store := newMemRefreshRepo()
	svc := NewRefreshTokenService(users, store, 10*time.Minute, zap.NewNop())
	seedUser(t, users, "alice")

	first, err := svc.Create(context.Background(), "alice")
	require.NoError(t, err)

	second, err := svc.Create(context.Background(), "alice")
	require.NoError(t, err)

	assert.NotEqual(t, first.Token, second.Token)
	assert.Equal(t, 1, store.countForUser("id-alice"))

	// The first token is gone; only the returned one survives.
	gone, err := svc.Find(context.Background(), first.Token)
	require.NoError(t, err)
	assert.Nil(t, gone)

	found, err := svc.Find(context.Background(), second.Token)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, second.Token, found.Token)
}

func TestRefreshCreate_RetriesOnCollision(t *testing.T) {
	t.Parallel()

	users := newMemUserRepo()
	store := newMemRefreshRepo()
	svc := NewRefreshTokenService(users, store, 10*time.Minute, zap.NewNop())
	seedUser(t, users, "alice")
	seedUser(t, users, "bob")

	// Force the generator to collide with bob's live token once.
	svc.WithGenerator(func() string { return "bob-token" })
	_, err := svc.Create(context.Background(), "bob")
	require.NoError(t, err)

	candidates := []string{"bob-token", "fresh-token"}
	svc.WithGenerator(func() string {
		next := candidates[0]
		if len(candidates) > 1 {
			candidates = candidates[1:]
		}
		return next
	})

	record, err := svc.Create(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "fresh-token", record.Token)
}

func TestVerifyNotExpired_ValidTokenUnchanged(t *testing.T) {
	t.Parallel()

	users := newMemUserRepo()
	store := newMemRefreshRepo()
	svc := NewRefreshTokenService(users, store, 10*time.Minute, zap.NewNop())
	seedUser(t, users, "alice")

	record, err := svc.Create(context.Background(), "alice")
	require.NoError(t, err)

	verified, err := svc.VerifyNotExpired(context.Background(), record)
	require.NoError(t, err)
	assert.Equal(t, record.Token, verified.Token)
	assert.Equal(t, 1, store.countForUser("id-alice"))
}

func TestVerifyNotExpired_DeletesExpiredToken(t *testing.T) {
	t.Parallel()

	users := newMemUserRepo()
	store := newMemRefreshRepo()
	clock := time.Now()
	svc := NewRefreshTokenService(users, store, 10*time.Minute, zap.NewNop()).
		WithClock(func() time.Time { return clock })
	seedUser(t, users, "alice")

	record, err := svc.Create(context.Background(), "alice")
	require.NoError(t, err)

	clock = clock.Add(11 * time.Minute)

	_, err = svc.VerifyNotExpired(context.Background(), record)
	require.ErrorIs(t, err, ErrRefreshTokenExpired)

	// The verify call is destructive: the record is gone from the store.
	assert.Equal(t, 0, store.countForUser("id-alice"))
}

func TestVerifyNotExpired_ExpiryEqualsNowIsExpired(t *testing.T) {
	t.Parallel()

	clock := time.Now()
	svc := NewRefreshTokenService(newMemUserRepo(), newMemRefreshRepo(), 10*time.Minute, zap.NewNop()).
		WithClock(func() time.Time { return clock })

	record := &domain.RefreshToken{ID: "rt-1", UserID: "u1", Token: "tok", ExpiresAt: clock}

	_, err := svc.VerifyNotExpired(context.Background(), record)
	require.ErrorIs(t, err, ErrRefreshTokenExpired)
}

func TestFind_Absent(t *testing.T) {
	t.Parallel()

	svc := NewRefreshTokenService(newMemUserRepo(), newMemRefreshRepo(), 10*time.Minute, zap.NewNop())

	record, err := svc.Find(context.Background(), "unknown-token")
	require.NoError(t, err)
	assert.Nil(t, record)
}
