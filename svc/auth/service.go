package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Config holds authentication configuration.
type Config struct {
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"24h"` // SessionTTL is how long an issued token stays valid.
}

// Service resolves session tokens to user identities and manages user
// accounts. It is the single authority on who a request belongs to.
type Service struct {
	users      UserRepository
	sessions   SessionStore
	sessionTTL time.Duration
}

// NewService creates an authentication service.
func NewService(cfg Config, users UserRepository, sessions SessionStore) *Service {
	ttl := cfg.SessionTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Service{
		users:      users,
		sessions:   sessions,
		sessionTTL: ttl,
	}
}

// Register creates a new user account with a bcrypt credentials digest.
func (s *Service) Register(ctx context.Context, email, password string) (*User, error) {
	if email == "" {
		return nil, ErrMissingEmail
	}
	if password == "" {
		return nil, ErrMissingPassword
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &User{
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := s.users.Insert(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Login verifies credentials and issues a session token valid for the
// configured TTL. Unknown emails and wrong passwords both report
// ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	if email == "" || password == "" {
		return "", ErrInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("failed to load user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", ErrInvalidCredentials
	}

	token := uuid.NewString()
	if err := s.sessions.Set(ctx, token, user.ID, s.sessionTTL); err != nil {
		return "", fmt.Errorf("failed to store session: %w", err)
	}

	return token, nil
}

// Logout invalidates the session for token.
func (s *Service) Logout(ctx context.Context, token string) error {
	if _, err := s.Authenticate(ctx, token); err != nil {
		return err
	}
	if err := s.sessions.Delete(ctx, token); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Authenticate resolves a session token to a user id. Missing, unknown, and
// expired tokens all report ErrUnauthenticated.
func (s *Service) Authenticate(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrUnauthenticated
	}

	userID, err := s.sessions.Get(ctx, token)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return "", ErrUnauthenticated
		}
		return "", fmt.Errorf("failed to resolve session: %w", err)
	}

	return userID, nil
}

// UserByID loads a user account by id.
func (s *Service) UserByID(ctx context.Context, id string) (*User, error) {
	return s.users.FindByID(ctx, id)
}

// CountUsers returns the total number of registered users.
func (s *Service) CountUsers(ctx context.Context) (int64, error) {
	return s.users.Count(ctx)
}
