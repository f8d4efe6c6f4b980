package auth

import (
	"context"
	"sync"
	"time"
)

type memorySession struct {
	userID    string
	expiresAt time.Time
}

// MemorySessionStore implements SessionStore in memory for testing.
// Expired sessions are dropped lazily on read.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]memorySession
}

// NewMemorySessionStore creates a new in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]memorySession),
	}
}

func (s *MemorySessionStore) Set(ctx context.Context, token, userID string, ttl time.Duration) error {
	s.mu.Lock()
	s.sessions[token] = memorySession{
		userID:    userID,
		expiresAt: time.Now().Add(ttl),
	}
	s.mu.Unlock()
	return nil
}

func (s *MemorySessionStore) Get(ctx context.Context, token string) (string, error) {
	s.mu.RLock()
	session, exists := s.sessions[token]
	s.mu.RUnlock()

	if !exists {
		return "", ErrSessionNotFound
	}

	if time.Now().After(session.expiresAt) {
		s.mu.Lock()
		delete(s.sessions, token)
		s.mu.Unlock()
		return "", ErrSessionNotFound
	}

	return session.userID, nil
}

func (s *MemorySessionStore) Delete(ctx context.Context, token string) error {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
	return nil
}
