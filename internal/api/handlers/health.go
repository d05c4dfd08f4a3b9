package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eventregistry/server/internal/api/envelope"
)

// Verify is the liveness endpoint.
func Verify() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		envelope.OK(w, http.StatusOK, "API is running", nil)
	}
}

// Healthz also pings the database, for container health probes.
func Healthz(pool *pgxpool.Pool, env string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := pool.Ping(ctx); err != nil {
			envelope.Fail(w, r, http.StatusServiceUnavailable, "Database unreachable", err, env)
			return
		}
		envelope.OK(w, http.StatusOK, "OK", nil)
	}
}
