package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/sga-edu/sgaauth/internal/apperrors"
	"github.com/sga-edu/sgaauth/internal/handlers/middleware"
	"github.com/sga-edu/sgaauth/internal/handlers/principalctx"
	"github.com/sga-edu/sgaauth/internal/handlers/render"
	"github.com/sga-edu/sgaauth/internal/models"
)

type authService interface {
	// Login user with email and password
	// Has to return apperrors.ErrInvalidCredentials on any credential mismatch
	Login(ctx context.Context, email string, password string) (models.IssuedToken, models.User, error)

	// Put raw token into the invalidation ledger. Idempotent
	Logout(ctx context.Context, raw string) error

	// Verify raw token and return the decoded principal
	Verify(ctx context.Context, raw string) (models.Principal, error)
}

// Minimal public profile of the user. The password hash is never
// serialized
type userProfile struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"nombre"`
	Email string    `json:"email"`
	Role  string    `json:"rol"`
}

func toProfile(u models.User) userProfile {
	return userProfile{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Role:  u.Role.String(),
	}
}

type AuthHandler struct {
	auth authService
}

func NewAuth(auth authService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	type LoginRequest struct {
		Email    string `json:"email" validate:"required"`
		Password string `json:"password" validate:"required"`
	}
	type LoginSuccessResponse struct {
		Token string      `json:"token"`
		User  userProfile `json:"user"`
	}

	data, err := render.BindAndValidate[LoginRequest](w, r)
	if err != nil {
		return
	}

	token, user, err := h.auth.Login(r.Context(), data.Email, data.Password)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrInvalidCredentials):
			render.ServiceError(w, "Invalid credentials", http.StatusUnauthorized)
		default:
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	render.JSON(w, LoginSuccessResponse{
		Token: token.Value,
		User:  toProfile(user),
	})
}

func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	type LogoutSuccessResponse struct {
		Message string `json:"message"`
	}

	err := h.auth.Logout(r.Context(), middleware.BearerToken(r))
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrTokenMissing):
			render.ServiceError(w, "Token not provided", http.StatusBadRequest)
		case errors.Is(err, apperrors.ErrTokenExpired):
			render.ServiceError(w, "Unauthorized: token expired", http.StatusUnauthorized)
		case errors.Is(err, apperrors.ErrTokenMalformed):
			render.ServiceError(w, "Unauthorized: invalid token", http.StatusUnauthorized)
		default:
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	render.JSON(w, LogoutSuccessResponse{Message: "Session closed successfully"})
}

// verify reports the principal the auth middleware already attached
func (h *AuthHandler) verify(w http.ResponseWriter, r *http.Request) {
	type VerifyResponse struct {
		User struct {
			ID        uuid.UUID `json:"id"`
			Role      string    `json:"rol"`
			ExpiresAt time.Time `json:"expires_at"`
		} `json:"user"`
	}

	principal, ok := principalctx.FromContext(r.Context())
	if !ok {
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	var resp VerifyResponse
	resp.User.ID = principal.UserID
	resp.User.Role = principal.Role.String()
	resp.User.ExpiresAt = principal.ExpiresAt

	render.JSON(w, resp)
}
