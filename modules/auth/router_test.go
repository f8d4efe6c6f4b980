package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authmod "filevault/modules/auth"
	"filevault/svc/auth"
)

func newTestRouter(t *testing.T) (http.Handler, *auth.Service) {
	t.Helper()
	svc := auth.NewService(
		auth.Config{SessionTTL: time.Hour},
		auth.NewMemoryUserRepository(),
		auth.NewMemorySessionStore(),
	)
	return authmod.Router(svc), svc
}

func doJSON(t *testing.T, h http.Handler, method, target, body string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRegisterEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("creates user", func(t *testing.T) {
		t.Parallel()

		h, _ := newTestRouter(t)
		rec := doJSON(t, h, http.MethodPost, "/users", `{"email":"bob@dylan.com","password":"toto1234!"}`, nil)
		require.Equal(t, http.StatusCreated, rec.Code)

		var resp struct {
			ID    string `json:"id"`
			Email string `json:"email"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.ID)
		assert.Equal(t, "bob@dylan.com", resp.Email)
		assert.NotContains(t, rec.Body.String(), "password")
	})

	t.Run("missing email", func(t *testing.T) {
		t.Parallel()

		h, _ := newTestRouter(t)
		rec := doJSON(t, h, http.MethodPost, "/users", `{"password":"toto1234!"}`, nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"error":"Missing email"}`, rec.Body.String())
	})

	t.Run("missing password", func(t *testing.T) {
		t.Parallel()

		h, _ := newTestRouter(t)
		rec := doJSON(t, h, http.MethodPost, "/users", `{"email":"bob@dylan.com"}`, nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"error":"Missing password"}`, rec.Body.String())
	})

	t.Run("duplicate email", func(t *testing.T) {
		t.Parallel()

		h, _ := newTestRouter(t)
		rec := doJSON(t, h, http.MethodPost, "/users", `{"email":"bob@dylan.com","password":"toto1234!"}`, nil)
		require.Equal(t, http.StatusCreated, rec.Code)

		rec = doJSON(t, h, http.MethodPost, "/users", `{"email":"bob@dylan.com","password":"other"}`, nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"error":"Already exist"}`, rec.Body.String())
	})
}

func TestConnectEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("valid credentials", func(t *testing.T) {
		t.Parallel()

		h, svc := newTestRouter(t)
		_, err := svc.Register(context.Background(), "bob@dylan.com", "toto1234!")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/connect", nil)
		req.SetBasicAuth("bob@dylan.com", "toto1234!")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var resp struct {
			Token string `json:"token"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.Token)
	})

	t.Run("wrong password", func(t *testing.T) {
		t.Parallel()

		h, svc := newTestRouter(t)
		_, err := svc.Register(context.Background(), "bob@dylan.com", "toto1234!")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/connect", nil)
		req.SetBasicAuth("bob@dylan.com", "nope")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"error":"Unauthorized"}`, rec.Body.String())
	})

	t.Run("missing header", func(t *testing.T) {
		t.Parallel()

		h, _ := newTestRouter(t)
		rec := doJSON(t, h, http.MethodGet, "/connect", "", nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestDisconnectEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("revokes the token", func(t *testing.T) {
		t.Parallel()

		h, svc := newTestRouter(t)
		_, err := svc.Register(context.Background(), "bob@dylan.com", "toto1234!")
		require.NoError(t, err)
		token, err := svc.Login(context.Background(), "bob@dylan.com", "toto1234!")
		require.NoError(t, err)

		rec := doJSON(t, h, http.MethodGet, "/disconnect", "", map[string]string{"X-Token": token})
		require.Equal(t, http.StatusNoContent, rec.Code)

		rec = doJSON(t, h, http.MethodGet, "/users/me", "", map[string]string{"X-Token": token})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("unknown token", func(t *testing.T) {
		t.Parallel()

		h, _ := newTestRouter(t)
		rec := doJSON(t, h, http.MethodGet, "/disconnect", "", map[string]string{"X-Token": "nope"})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"error":"Unauthorized"}`, rec.Body.String())
	})
}

func TestMeEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("returns the current user", func(t *testing.T) {
		t.Parallel()

		h, svc := newTestRouter(t)
		user, err := svc.Register(context.Background(), "bob@dylan.com", "toto1234!")
		require.NoError(t, err)
		token, err := svc.Login(context.Background(), "bob@dylan.com", "toto1234!")
		require.NoError(t, err)

		rec := doJSON(t, h, http.MethodGet, "/users/me", "", map[string]string{"X-Token": token})
		require.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			ID    string `json:"id"`
			Email string `json:"email"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, user.ID, resp.ID)
		assert.Equal(t, "bob@dylan.com", resp.Email)
	})

	t.Run("no token", func(t *testing.T) {
		t.Parallel()

		h, _ := newTestRouter(t)
		rec := doJSON(t, h, http.MethodGet, "/users/me", "", nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
