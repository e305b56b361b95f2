package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sga-edu/sgaauth/internal/models"
)

// User repository interface
type UserRepo interface {
	// Create user
	// If user with the same email exists already has to return apperrors.ErrUserAlreadyExists
	CreateUser(ctx context.Context, name string, email string, hashedPassword string, role models.Role) (models.User, error)

	// Get user by id or by normalized email
	// If user not found must return apperrors.ErrUserNotFound
	GetUserByID(ctx context.Context, userID uuid.UUID) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)

	// List all users ordered by creation time
	ListUsers(ctx context.Context) ([]models.User, error)

	// Update user profile fields
	// If user not found must return apperrors.ErrUserNotFound
	UpdateUser(ctx context.Context, userID uuid.UUID, name string, email string, role models.Role, active bool) (models.User, error)

	// Replace stored password hash
	UpdatePassword(ctx context.Context, userID uuid.UUID, hashedPassword string) error

	// Set last login timestamp to now. Last write wins
	TouchLastLogin(ctx context.Context, userID uuid.UUID) error
}

// Ledger of explicitly invalidated tokens
// Point lookups and point inserts only
type InvalidTokenRepo interface {
	// Add token to the ledger keyed by the exact raw string
	// Must be idempotent: adding the same token twice is not an error
	Add(ctx context.Context, token string, expiresAt time.Time) error

	// Report whether the exact raw token is present in the ledger
	Contains(ctx context.Context, token string) (bool, error)

	// Delete records whose own expiry already passed
	// Housekeeping only, never required for correctness
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// Storage aggregates all repositories backed by the same database
type Storage interface {
	Users() UserRepo
	InvalidTokens() InvalidTokenRepo
}
