package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"filevault/pkg/apierror"
	"filevault/svc/auth"
)

type handlers struct {
	svc Service
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

func (h *handlers) register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierror.Write(w, apierror.BadRequest("Missing email"))
		return
	}

	user, err := h.svc.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		apierror.Write(w, registerError(err))
		return
	}

	apierror.WriteJSON(w, http.StatusCreated, userResponse{ID: user.ID, Email: user.Email})
}

func registerError(err error) error {
	switch {
	case errors.Is(err, auth.ErrMissingEmail):
		return apierror.BadRequest("Missing email")
	case errors.Is(err, auth.ErrMissingPassword):
		return apierror.BadRequest("Missing password")
	case errors.Is(err, auth.ErrEmailTaken):
		return apierror.BadRequest("Already exist")
	}
	return err
}

func (h *handlers) connect(w http.ResponseWriter, r *http.Request) {
	email, password, ok := r.BasicAuth()
	if !ok {
		apierror.Write(w, apierror.ErrUnauthorized)
		return
	}

	token, err := h.svc.Login(r.Context(), email, password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			apierror.Write(w, apierror.ErrUnauthorized)
			return
		}
		apierror.Write(w, err)
		return
	}

	apierror.WriteJSON(w, http.StatusOK, tokenResponse{Token: token})
}

func (h *handlers) disconnect(w http.ResponseWriter, r *http.Request) {
	token := r.Header.Get(TokenHeader)
	if err := h.svc.Logout(r.Context(), token); err != nil {
		if errors.Is(err, auth.ErrUnauthenticated) {
			apierror.Write(w, apierror.ErrUnauthorized)
			return
		}
		apierror.Write(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) me(w http.ResponseWriter, r *http.Request) {
	token := r.Header.Get(TokenHeader)
	userID, err := h.svc.Authenticate(r.Context(), token)
	if err != nil {
		apierror.Write(w, apierror.ErrUnauthorized)
		return
	}

	user, err := h.svc.UserByID(r.Context(), userID)
	if err != nil {
		apierror.Write(w, apierror.ErrUnauthorized)
		return
	}

	apierror.WriteJSON(w, http.StatusOK, userResponse{ID: user.ID, Email: user.Email})
}
