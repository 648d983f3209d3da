package service

import (
	"context"
	"strconv"
	"sync"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/auth-service/internal/domain"
)

// memUserRepo is an in-memory repository.UserRepository.
type memUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User // keyed by username
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]*domain.User)}
}

func (r *memUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *user
	r.users[user.Username] = &copied
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.ID == id {
			copied := *user
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *memUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[username]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *user
	return &copied, nil
}

func (r *memUserRepo) delete(username string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, username)
}

// memRefreshRepo is an in-memory repository.RefreshTokenRepository. Replace
// is atomic under the mutex, matching the isolation the real stores provide.
type memRefreshRepo struct {
	mu      sync.Mutex
	byToken map[string]*domain.RefreshToken
	byUser  map[string]*domain.RefreshToken
	seq     int
}

func newMemRefreshRepo() *memRefreshRepo {
	return &memRefreshRepo{
		byToken: make(map[string]*domain.RefreshToken),
		byUser:  make(map[string]*domain.RefreshToken),
	}
}

func (r *memRefreshRepo) Replace(_ context.Context, token *domain.RefreshToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.byUser[token.UserID]; ok {
		delete(r.byToken, existing.Token)
	}
	r.seq++
	token.ID = "rt-" + strconv.Itoa(r.seq)
	copied := *token
	r.byToken[token.Token] = &copied
	r.byUser[token.UserID] = &copied
	return nil
}

func (r *memRefreshRepo) GetByToken(_ context.Context, tokenStr string) (*domain.RefreshToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	token, ok := r.byToken[tokenStr]
	if !ok {
		return nil, nil
	}
	copied := *token
	return &copied, nil
}

func (r *memRefreshRepo) DeleteByID(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, token := range r.byToken {
		if token.ID == id {
			delete(r.byToken, token.Token)
			delete(r.byUser, token.UserID)
			return nil
		}
	}
	return nil
}

func (r *memRefreshRepo) DeleteByUserID(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.byUser[userID]; ok {
		delete(r.byToken, existing.Token)
		delete(r.byUser, userID)
	}
	return nil
}

func (r *memRefreshRepo) countForUser(userID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, token := range r.byToken {
		if token.UserID == userID {
			count++
		}
	}
	return count
}
