package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/sga-edu/sgaauth/internal/apperrors"
	"github.com/sga-edu/sgaauth/internal/handlers/principalctx"
	"github.com/sga-edu/sgaauth/internal/handlers/render"
	"github.com/sga-edu/sgaauth/internal/models"
)

type userService interface {
	List(ctx context.Context) ([]models.User, error)
	Create(ctx context.Context, name string, email string, password string, role models.Role) (models.User, error)
	Update(ctx context.Context, userID uuid.UUID, name string, email string, role models.Role, active bool) (models.User, error)
	Deactivate(ctx context.Context, userID uuid.UUID) error
	ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword string, newPassword string) error
}

// Full user record as visible to administrators, without the hash
type userRecord struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"nombre"`
	Email       string     `json:"email"`
	Role        string     `json:"rol"`
	CreatedAt   time.Time  `json:"fecha_creacion"`
	LastLoginAt *time.Time `json:"ultimo_login"`
	Active      bool       `json:"activo"`
}

func toRecord(u models.User) userRecord {
	return userRecord{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Role:        u.Role.String(),
		CreatedAt:   u.CreatedAt,
		LastLoginAt: u.LastLoginAt,
		Active:      u.Active,
	}
}

type UserHandler struct {
	users userService
}

func NewUser(users userService) *UserHandler {
	return &UserHandler{users: users}
}

func (h *UserHandler) list(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	records := make([]userRecord, 0, len(users))
	for _, u := range users {
		records = append(records, toRecord(u))
	}

	render.JSON(w, records)
}

func (h *UserHandler) create(w http.ResponseWriter, r *http.Request) {
	type CreateUserRequest struct {
		Name     string `json:"nombre" validate:"required"`
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required,min=8"`
		Role     string `json:"rol" validate:"required,role"`
	}
	type CreateUserResponse struct {
		ID      uuid.UUID `json:"id"`
		Message string    `json:"message"`
	}

	data, err := render.BindAndValidate[CreateUserRequest](w, r)
	if err != nil {
		return
	}

	// Role already validated by the 'role' tag
	role, _ := models.ParseRole(data.Role)

	user, err := h.users.Create(r.Context(), data.Name, data.Email, data.Password, role)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrUserAlreadyExists):
			render.ServiceError(w, "Email already registered", http.StatusConflict)
		default:
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	render.JSONWithStatus(w, CreateUserResponse{ID: user.ID, Message: "User created successfully"}, http.StatusCreated)
}

func (h *UserHandler) update(w http.ResponseWriter, r *http.Request) {
	type UpdateUserRequest struct {
		Name   string `json:"nombre" validate:"required"`
		Email  string `json:"email" validate:"required,email"`
		Role   string `json:"rol" validate:"required,role"`
		Active bool   `json:"activo"`
	}
	type UpdateUserResponse struct {
		Message string `json:"message"`
	}

	userID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		render.ServiceError(w, "Invalid user id", http.StatusBadRequest)
		return
	}

	data, err := render.BindAndValidate[UpdateUserRequest](w, r)
	if err != nil {
		return
	}

	role, _ := models.ParseRole(data.Role)

	_, err = h.users.Update(r.Context(), userID, data.Name, data.Email, role, data.Active)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrUserNotFound):
			render.ServiceError(w, "User not found", http.StatusNotFound)
		case errors.Is(err, apperrors.ErrUserAlreadyExists):
			render.ServiceError(w, "Email already registered", http.StatusConflict)
		default:
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	render.JSON(w, UpdateUserResponse{Message: "User updated successfully"})
}

func (h *UserHandler) deactivate(w http.ResponseWriter, r *http.Request) {
	type DeactivateResponse struct {
		Message string `json:"message"`
	}

	userID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		render.ServiceError(w, "Invalid user id", http.StatusBadRequest)
		return
	}

	err = h.users.Deactivate(r.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrUserNotFound):
			render.ServiceError(w, "User not found", http.StatusNotFound)
		default:
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	render.JSON(w, DeactivateResponse{Message: "User deactivated successfully"})
}

func (h *UserHandler) changePassword(w http.ResponseWriter, r *http.Request) {
	type ChangePasswordRequest struct {
		CurrentPassword string `json:"currentPassword" validate:"required"`
		NewPassword     string `json:"newPassword" validate:"required,min=8"`
	}
	type ChangePasswordResponse struct {
		Message string `json:"message"`
	}

	principal, ok := principalctx.FromContext(r.Context())
	if !ok {
		render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	data, err := render.BindAndValidate[ChangePasswordRequest](w, r)
	if err != nil {
		return
	}

	err = h.users.ChangePassword(r.Context(), principal.UserID, data.CurrentPassword, data.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrInvalidCredentials):
			render.ServiceError(w, "Current password is incorrect", http.StatusUnauthorized)
		case errors.Is(err, apperrors.ErrUserNotFound):
			render.ServiceError(w, "User not found", http.StatusNotFound)
		default:
			render.ServiceError(w, "Internal server error", http.StatusInternalServerError)
		}
		return
	}

	render.JSON(w, ChangePasswordResponse{Message: "Password updated successfully"})
}
