package middleware

import (
	"net/http"

	"github.com/sga-edu/sgaauth/internal/handlers/principalctx"
	"github.com/sga-edu/sgaauth/internal/handlers/render"
	"github.com/sga-edu/sgaauth/internal/models"
)

// RequireRole admits a request only if the authenticated principal's
// role matches exactly. Must run after Auth: a missing principal means
// the middleware chain is miswired and is reported as a server error,
// not as a client failure
func RequireRole(role models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := principalctx.FromContext(r.Context())
			if !ok {
				render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
				return
			}

			if principal.Role != role {
				render.ServiceError(w, "Forbidden: insufficient permissions", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
