package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sga-edu/sgaauth/internal/apperrors"
	"github.com/sga-edu/sgaauth/internal/models"
	"github.com/sga-edu/sgaauth/internal/repository"
	"github.com/sga-edu/sgaauth/internal/service/auth/tokenmanager"
)

// Interface to create or compare user password hashes
type PasswordHasher interface {
	// Generate Hash from password
	Hash(password string) (string, error)

	// Compare known hashedPassword and user provided password
	// Must be protected against timing attacks
	Compare(hashedPassword string, password string) error
}

type Config struct {
	// Secret key to sign token payload
	SecretKey string

	// Hasher used to compare user passwords on login
	Hasher PasswordHasher

	// Token lifetime, defaults to the token manager default
	TokenTTL time.Duration
}

// AuthService issues, verifies and invalidates bearer tokens
type AuthService struct {
	tokens *tokenmanager.TokenManager
	hasher PasswordHasher

	users  repository.UserRepo
	ledger repository.InvalidTokenRepo
}

func NewService(cfg Config, users repository.UserRepo, ledger repository.InvalidTokenRepo) (*AuthService, error) {
	if users == nil || ledger == nil {
		return nil, errors.New("repos must not be nil")
	}

	hasher := cfg.Hasher
	if hasher == nil {
		hasher = BcryptHasher{}
	}

	tokens, err := tokenmanager.New(tokenmanager.Config{SecretKey: cfg.SecretKey, TTL: cfg.TokenTTL})
	if err != nil {
		return nil, err
	}

	return &AuthService{
		tokens: tokens,
		hasher: hasher,
		users:  users,
		ledger: ledger,
	}, nil
}

// NormalizeEmail trims and case folds an identifier the same way it is
// stored, so lookups can't be bypassed with casing or whitespace tricks
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Login verifies credentials and issues a new token.
// Unknown email, wrong password and deactivated accounts all fail with
// the identical apperrors.ErrInvalidCredentials
func (s *AuthService) Login(ctx context.Context, email string, password string) (models.IssuedToken, models.User, error) {
	var token models.IssuedToken

	user, err := s.users.GetUserByEmail(ctx, NormalizeEmail(email))
	switch {
	case err == nil:
	case errors.Is(err, apperrors.ErrUserNotFound):
		// Compare against the stored (empty) hash anyway so both
		// failure paths cost one hash comparison
	default:
		return token, user, fmt.Errorf("user lookup failed: %w", err)
	}

	if err := s.hasher.Compare(user.HashedPassword, password); err != nil {
		return token, user, apperrors.ErrInvalidCredentials
	}

	if !user.Active {
		return token, user, apperrors.ErrInvalidCredentials
	}

	// Sign first: a signing failure must not leave a last-login update
	// behind, while a duplicated last-login touch is harmless
	token, err = s.tokens.Issue(user)
	if err != nil {
		return token, user, fmt.Errorf("token could not be issued: %w", err)
	}

	if err := s.users.TouchLastLogin(ctx, user.ID); err != nil {
		return models.IssuedToken{}, user, fmt.Errorf("last login update failed: %w", err)
	}

	return token, user, nil
}

// Logout puts the exact raw token into the invalidation ledger with the
// expiry copied from its own claim. Idempotent: logging out an already
// invalidated token succeeds again, the net effect is unchanged.
// Forged or expired tokens can't be logged out and fail the same way
// Verify would fail them
func (s *AuthService) Logout(ctx context.Context, raw string) error {
	if raw == "" {
		return apperrors.ErrTokenMissing
	}

	principal, err := s.tokens.Parse(raw)
	if err != nil {
		return err
	}

	if err := s.ledger.Add(ctx, raw, principal.ExpiresAt); err != nil {
		return fmt.Errorf("ledger insert failed: %w", err)
	}

	return nil
}

// Verify is the per-request gate check. Order matters:
//  1. missing token
//  2. ledger lookup, before and independent of signature validity
//  3. malformed (bad signature or structure)
//  4. expired
//
// Read only, no side effects
func (s *AuthService) Verify(ctx context.Context, raw string) (models.Principal, error) {
	if raw == "" {
		return models.Principal{}, apperrors.ErrTokenMissing
	}

	invalidated, err := s.ledger.Contains(ctx, raw)
	if err != nil {
		return models.Principal{}, fmt.Errorf("ledger lookup failed: %w", err)
	}
	if invalidated {
		return models.Principal{}, apperrors.ErrTokenInvalidated
	}

	return s.tokens.Parse(raw)
}
