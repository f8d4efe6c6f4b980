// Package files exposes the file tree API: upload, metadata lookup,
// listing, visibility toggles, and content download.
package files

import (
	"context"

	"github.com/go-chi/chi/v5"

	"filevault/svc/files"
)

// TokenHeader carries the session token on authenticated requests.
const TokenHeader = "X-Token"

// Authenticator resolves session tokens to user ids.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (string, error)
}

// Service is the file tree surface the module needs.
type Service interface {
	Create(ctx context.Context, userID string, in files.CreateInput) (*files.Entry, error)
	Get(ctx context.Context, userID, id string) (*files.Entry, error)
	List(ctx context.Context, userID, parentID string, page int64) ([]*files.Entry, error)
	Publish(ctx context.Context, userID, id string) (*files.Entry, error)
	Unpublish(ctx context.Context, userID, id string) (*files.Entry, error)
	OpenContent(ctx context.Context, userID, id, size string) (*files.Content, error)
}

// Routes registers the file endpoints on r. All routes except content
// download require a valid token.
func Routes(r chi.Router, svc Service, authn Authenticator) {
	h := &handlers{svc: svc, authn: authn}

	r.Post("/files", h.create)
	r.Get("/files", h.list)
	r.Get("/files/{id}", h.get)
	r.Put("/files/{id}/publish", h.publish)
	r.Put("/files/{id}/unpublish", h.unpublish)
	r.Get("/files/{id}/data", h.data)
}

// Router returns the file endpoints on a new chi router.
func Router(svc Service, authn Authenticator) chi.Router {
	r := chi.NewRouter()
	Routes(r, svc, authn)
	return r
}
