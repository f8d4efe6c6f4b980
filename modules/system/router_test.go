package system_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filevault/modules/system"
)

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestStatusEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("all healthy", func(t *testing.T) {
		t.Parallel()

		h := system.Router(system.Deps{
			RedisHealth: func(context.Context) error { return nil },
			DBHealth:    func(context.Context) error { return nil },
		})

		rec := get(t, h, "/status")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"redis":true,"db":true}`, rec.Body.String())
	})

	t.Run("redis down", func(t *testing.T) {
		t.Parallel()

		h := system.Router(system.Deps{
			RedisHealth: func(context.Context) error { return errors.New("connection refused") },
			DBHealth:    func(context.Context) error { return nil },
		})

		rec := get(t, h, "/status")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"redis":false,"db":true}`, rec.Body.String())
	})
}

func TestStatsEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("returns counters", func(t *testing.T) {
		t.Parallel()

		h := system.Router(system.Deps{
			CountUsers: func(context.Context) (int64, error) { return 12, nil },
			CountFiles: func(context.Context) (int64, error) { return 1231, nil },
		})

		rec := get(t, h, "/stats")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"users":12,"files":1231}`, rec.Body.String())
	})

	t.Run("counter failure is a 500", func(t *testing.T) {
		t.Parallel()

		h := system.Router(system.Deps{
			CountUsers: func(context.Context) (int64, error) { return 0, errors.New("db down") },
			CountFiles: func(context.Context) (int64, error) { return 0, nil },
		})

		rec := get(t, h, "/stats")
		require.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.JSONEq(t, `{"error":"Internal server error"}`, rec.Body.String())
	})
}
