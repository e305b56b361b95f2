package apperrors

import (
	"errors"
)

var (
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrUserNotFound      = errors.New("user not found")

	// Returned for unknown email, wrong password and deactivated
	// accounts alike, so the client can't tell which half was wrong
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrTokenMissing     = errors.New("token not provided")
	ErrTokenInvalidated = errors.New("token invalidated")
	ErrTokenMalformed   = errors.New("token malformed")
	ErrTokenExpired     = errors.New("token expired")

	ErrForbidden = errors.New("insufficient role")
)
