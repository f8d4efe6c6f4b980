package auth

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryUserRepository is an in-memory UserRepository for tests.
type MemoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]*User
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[string]*User)}
}

func (r *MemoryUserRepository) Insert(_ context.Context, user *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == user.Email {
			return ErrEmailTaken
		}
	}

	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *MemoryUserRepository) FindByEmail(_ context.Context, email string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *MemoryUserRepository) FindByID(_ context.Context, id string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *MemoryUserRepository) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.users)), nil
}
