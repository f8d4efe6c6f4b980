package auth

import (
	"context"
	"time"
)

// SessionStore maps opaque session tokens to user identifiers with a TTL.
// Implementations own expiry; a token past its TTL behaves as absent.
type SessionStore interface {
	// Set stores token -> userID for the given duration.
	Set(ctx context.Context, token, userID string, ttl time.Duration) error

	// Get returns the user id mapped to token, or ErrSessionNotFound.
	Get(ctx context.Context, token string) (string, error)

	// Delete removes the session for token. Deleting an absent token is a no-op.
	Delete(ctx context.Context, token string) error
}
