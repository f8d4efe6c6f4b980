package auth

// User represents a registered account. Immutable after registration within
// the scope of this service.
type User struct {
	ID           string
	Email        string
	PasswordHash string
}
