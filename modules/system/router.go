// Package system exposes the operational endpoints: dependency health and
// aggregate usage counters.
package system

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"filevault/pkg/apierror"
)

// HealthFunc reports whether a dependency is reachable.
type HealthFunc func(ctx context.Context) error

// CountFunc returns an aggregate count.
type CountFunc func(ctx context.Context) (int64, error)

// Deps wires the system endpoints to their data sources.
type Deps struct {
	RedisHealth HealthFunc
	DBHealth    HealthFunc
	CountUsers  CountFunc
	CountFiles  CountFunc
}

// Routes registers the status and stats endpoints on r.
func Routes(r chi.Router, deps Deps) {
	r.Get("/status", func(w http.ResponseWriter, req *http.Request) {
		ctx := req.Context()
		status := map[string]bool{
			"redis": deps.RedisHealth == nil || deps.RedisHealth(ctx) == nil,
			"db":    deps.DBHealth == nil || deps.DBHealth(ctx) == nil,
		}
		apierror.WriteJSON(w, http.StatusOK, status)
	})

	r.Get("/stats", func(w http.ResponseWriter, req *http.Request) {
		ctx := req.Context()

		users, err := deps.CountUsers(ctx)
		if err != nil {
			apierror.Write(w, err)
			return
		}
		entries, err := deps.CountFiles(ctx)
		if err != nil {
			apierror.Write(w, err)
			return
		}

		apierror.WriteJSON(w, http.StatusOK, map[string]int64{
			"users": users,
			"files": entries,
		})
	})
}

// Router returns the system endpoints on a new chi router.
func Router(deps Deps) chi.Router {
	r := chi.NewRouter()
	Routes(r, deps)
	return r
}
