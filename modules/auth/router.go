// Package auth exposes account and session endpoints: registration, token
// issuance via Basic credentials, token revocation, and the current user
// lookup.
package auth

import (
	"context"

	"github.com/go-chi/chi/v5"

	"filevault/svc/auth"
)

// TokenHeader carries the session token on authenticated requests.
const TokenHeader = "X-Token"

// Service is the authentication surface the module needs.
type Service interface {
	Register(ctx context.Context, email, password string) (*auth.User, error)
	Login(ctx context.Context, email, password string) (string, error)
	Logout(ctx context.Context, token string) error
	Authenticate(ctx context.Context, token string) (string, error)
	UserByID(ctx context.Context, id string) (*auth.User, error)
}

// Routes registers the account endpoints on r.
func Routes(r chi.Router, svc Service) {
	h := &handlers{svc: svc}

	r.Post("/users", h.register)
	r.Get("/connect", h.connect)
	r.Get("/disconnect", h.disconnect)
	r.Get("/users/me", h.me)
}

// Router returns the account endpoints on a new chi router.
func Router(svc Service) chi.Router {
	r := chi.NewRouter()
	Routes(r, svc)
	return r
}
