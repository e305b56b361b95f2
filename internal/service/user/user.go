package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/sga-edu/sgaauth/internal/apperrors"
	"github.com/sga-edu/sgaauth/internal/models"
	"github.com/sga-edu/sgaauth/internal/repository"
	"github.com/sga-edu/sgaauth/internal/service/auth"
)

// UserService covers administrator account management and the
// change-password flow available to every authenticated user
type UserService struct {
	users  repository.UserRepo
	hasher auth.PasswordHasher
}

func NewService(users repository.UserRepo, hasher auth.PasswordHasher) *UserService {
	if hasher == nil {
		hasher = auth.BcryptHasher{}
	}

	return &UserService{users: users, hasher: hasher}
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	return s.users.ListUsers(ctx)
}

func (s *UserService) Create(ctx context.Context, name string, email string, password string, role models.Role) (models.User, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return models.User{}, fmt.Errorf("can't use this as password, error=%w", err)
	}

	return s.users.CreateUser(ctx, name, auth.NormalizeEmail(email), hash, role)
}

func (s *UserService) Update(ctx context.Context, userID uuid.UUID, name string, email string, role models.Role, active bool) (models.User, error) {
	return s.users.UpdateUser(ctx, userID, name, auth.NormalizeEmail(email), role, active)
}

// Deactivate soft deletes a user: the account stays stored but can no
// longer log in
func (s *UserService) Deactivate(ctx context.Context, userID uuid.UUID) error {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}

	_, err = s.users.UpdateUser(ctx, user.ID, user.Name, user.Email, user.Role, false)
	return err
}

// ChangePassword verifies the current password the same way login does
// before storing the new hash
func (s *UserService) ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword string, newPassword string) error {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := s.hasher.Compare(user.HashedPassword, currentPassword); err != nil {
		return apperrors.ErrInvalidCredentials
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("can't use this as password, error=%w", err)
	}

	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return err
		}
		return fmt.Errorf("password update failed: %w", err)
	}

	return nil
}
