package auth

import "errors"

var (
	// ErrUnauthenticated indicates a missing, unknown, or expired session token.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrNotFound is returned by authorization checks when the caller may not
	// see the resource. Ownership mismatches are deliberately folded into
	// not-found so the existence of foreign resources never leaks.
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidCredentials indicates a wrong email/password combination.
	// Unknown emails report the same error as wrong passwords.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrSessionNotFound indicates the token has no live session.
	ErrSessionNotFound = errors.New("session not found")

	// ErrUserNotFound indicates no user matches the given id or email.
	ErrUserNotFound = errors.New("user not found")

	// Registration validation errors
	ErrMissingEmail    = errors.New("missing email")
	ErrMissingPassword = errors.New("missing password")
	ErrEmailTaken      = errors.New("email already registered")
)
