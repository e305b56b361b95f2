package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/sga-edu/sgaauth/internal/apperrors"
	"github.com/sga-edu/sgaauth/internal/handlers/principalctx"
	"github.com/sga-edu/sgaauth/internal/handlers/render"
	"github.com/sga-edu/sgaauth/internal/models"
)

type verifier interface {
	Verify(ctx context.Context, raw string) (models.Principal, error)
}

// BearerToken extracts the bearer token from the Authorization header,
// empty string if absent
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found {
		return ""
	}
	return strings.TrimSpace(token)
}

// Auth verifies the presented token on every request and attaches the
// decoded principal to the context. Any failure short-circuits, no
// downstream handler runs
func Auth(v verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, err := v.Verify(r.Context(), BearerToken(r))
			if err != nil {
				switch {
				case errors.Is(err, apperrors.ErrTokenMissing):
					render.ServiceError(w, "Unauthorized: no token provided", http.StatusUnauthorized)
				case errors.Is(err, apperrors.ErrTokenInvalidated):
					render.ServiceError(w, "Unauthorized: token invalidated", http.StatusUnauthorized)
				case errors.Is(err, apperrors.ErrTokenExpired):
					render.ServiceError(w, "Unauthorized: token expired", http.StatusUnauthorized)
				case errors.Is(err, apperrors.ErrTokenMalformed):
					render.ServiceError(w, "Unauthorized: invalid token", http.StatusUnauthorized)
				default:
					render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
				}
				return
			}

			ctx := principalctx.New(r.Context(), principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
