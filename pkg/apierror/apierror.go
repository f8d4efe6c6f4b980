package apierror

import (
	"encoding/json"
	"errors"
	"net/http"
)

// Error represents an HTTP error with a status code and a client-facing message.
// Services return domain errors; HTTP modules translate them into Error values
// before rendering, so the wire format stays uniform across endpoints.
type Error struct {
	Code    int    `json:"-"`
	Message string `json:"error"`
}

// Error implements the error interface.
func (e Error) Error() string {
	return e.Message
}

// New creates an Error with the given status code and message.
func New(code int, message string) Error {
	return Error{Code: code, Message: message}
}

// Common API errors. Messages match the public contract of the service:
// ownership mismatches and private entries are reported as "Not found" so the
// existence of foreign resources is never revealed.
var (
	ErrUnauthorized = Error{Code: http.StatusUnauthorized, Message: "Unauthorized"}
	ErrNotFound     = Error{Code: http.StatusNotFound, Message: "Not found"}
	ErrInternal     = Error{Code: http.StatusInternalServerError, Message: "Internal server error"}
)

// BadRequest creates a 400 error with a specific validation message.
func BadRequest(message string) Error {
	return Error{Code: http.StatusBadRequest, Message: message}
}

// Write renders err as a JSON error response. Non-Error values are rendered
// as a generic 500 to avoid leaking internals to clients.
func Write(w http.ResponseWriter, err error) {
	apiErr := ErrInternal
	var e Error
	if errors.As(err, &e) {
		apiErr = e
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(apiErr.Code)
	_ = json.NewEncoder(w).Encode(apiErr)
}

// WriteJSON renders v as a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
