package files

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"filevault/pkg/apierror"
	"filevault/svc/files"
)

type handlers struct {
	svc   Service
	authn Authenticator
}

type createRequest struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	ParentID string `json:"parentId"`
	IsPublic bool   `json:"isPublic"`
	Data     string `json:"data"`
}

type entryResponse struct {
	ID       string `json:"id"`
	UserID   string `json:"userId"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	IsPublic bool   `json:"isPublic"`
	ParentID string `json:"parentId"`
}

func toEntryResponse(e *files.Entry) entryResponse {
	return entryResponse{
		ID:       e.ID,
		UserID:   e.UserID,
		Name:     e.Name,
		Type:     string(e.Kind),
		IsPublic: e.IsPublic,
		ParentID: e.ParentID,
	}
}

// authenticate resolves the request token or writes a 401.
func (h *handlers) authenticate(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, err := h.authn.Authenticate(r.Context(), r.Header.Get(TokenHeader))
	if err != nil {
		apierror.Write(w, apierror.ErrUnauthorized)
		return "", false
	}
	return userID, true
}

func (h *handlers) create(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierror.Write(w, apierror.BadRequest("Missing name"))
		return
	}

	entry, err := h.svc.Create(r.Context(), userID, files.CreateInput{
		Name:     req.Name,
		Kind:     files.Kind(req.Type),
		ParentID: req.ParentID,
		IsPublic: req.IsPublic,
		Data:     req.Data,
	})
	if err != nil {
		apierror.Write(w, domainError(err))
		return
	}

	apierror.WriteJSON(w, http.StatusCreated, toEntryResponse(entry))
}

func (h *handlers) get(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	entry, err := h.svc.Get(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		apierror.Write(w, domainError(err))
		return
	}

	apierror.WriteJSON(w, http.StatusOK, toEntryResponse(entry))
}

func (h *handlers) list(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	page, err := strconv.ParseInt(r.URL.Query().Get("page"), 10, 64)
	if err != nil || page < 0 {
		page = 0
	}

	entries, err := h.svc.List(r.Context(), userID, r.URL.Query().Get("parentId"), page)
	if err != nil {
		apierror.Write(w, domainError(err))
		return
	}

	out := make([]entryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toEntryResponse(e))
	}
	apierror.WriteJSON(w, http.StatusOK, out)
}

func (h *handlers) publish(w http.ResponseWriter, r *http.Request) {
	h.setVisibility(w, r, h.svc.Publish)
}

func (h *handlers) unpublish(w http.ResponseWriter, r *http.Request) {
	h.setVisibility(w, r, h.svc.Unpublish)
}

func (h *handlers) setVisibility(w http.ResponseWriter, r *http.Request, update func(ctx context.Context, userID, id string) (*files.Entry, error)) {
	userID, ok := h.authenticate(w, r)
	if !ok {
		return
	}

	entry, err := update(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		apierror.Write(w, domainError(err))
		return
	}

	apierror.WriteJSON(w, http.StatusOK, toEntryResponse(entry))
}

// data streams entry content. Unlike the other endpoints it accepts
// anonymous requests: public entries are readable without a token.
func (h *handlers) data(w http.ResponseWriter, r *http.Request) {
	userID, err := h.authn.Authenticate(r.Context(), r.Header.Get(TokenHeader))
	if err != nil {
		userID = ""
	}

	content, err := h.svc.OpenContent(r.Context(), userID, chi.URLParam(r, "id"), r.URL.Query().Get("size"))
	if err != nil {
		apierror.Write(w, domainError(err))
		return
	}
	defer content.Reader.Close() //nolint:errcheck

	w.Header().Set("Content-Type", content.MIMEType)
	_, _ = io.Copy(w, content.Reader)
}

// domainError maps files service errors onto the API error contract.
func domainError(err error) error {
	switch {
	case errors.Is(err, files.ErrNotFound):
		return apierror.ErrNotFound
	case errors.Is(err, files.ErrMissingName),
		errors.Is(err, files.ErrMissingType),
		errors.Is(err, files.ErrMissingData),
		errors.Is(err, files.ErrInvalidData),
		errors.Is(err, files.ErrParentNotFound),
		errors.Is(err, files.ErrParentNotFolder),
		errors.Is(err, files.ErrFolderNoContent):
		return apierror.BadRequest(err.Error())
	}
	return err
}
