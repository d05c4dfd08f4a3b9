package middleware

import (
	"fmt"
	"net/http"

	"github.com/eventregistry/server/internal/api/envelope"
)

// Recover converts handler panics into a 500 envelope so no request dies
// without a response.
func Recover(env string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					envelope.Fail(w, r, http.StatusInternalServerError, "Internal server error", fmt.Errorf("panic: %v", rec), env)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
