package auth

import "context"

// UserRepository defines the storage operations needed for user accounts.
type UserRepository interface {
	// Insert stores a new user and assigns its ID.
	Insert(ctx context.Context, user *User) error

	// FindByEmail returns the user with the given email, or ErrUserNotFound.
	FindByEmail(ctx context.Context, email string) (*User, error)

	// FindByID returns the user with the given id, or ErrUserNotFound.
	// Malformed ids are reported as ErrUserNotFound.
	FindByID(ctx context.Context, id string) (*User, error)

	// Count returns the total number of registered users.
	Count(ctx context.Context) (int64, error)
}
