package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Role of the user
// Closed set: unknown role strings must be rejected on the boundary with ParseRole
type Role string

const (
	RoleAdministrador Role = "administrador"
	RoleDocente       Role = "docente"
)

// ParseRole validates a raw role string against the known set
func ParseRole(raw string) (Role, error) {
	switch Role(raw) {
	case RoleAdministrador:
		return RoleAdministrador, nil
	case RoleDocente:
		return RoleDocente, nil
	default:
		return "", fmt.Errorf("unknown role %q", raw)
	}
}

func (r Role) String() string {
	return string(r)
}

type User struct {
	ID             uuid.UUID
	CreatedAt      time.Time
	Name           string
	Email          string // stored normalized: trimmed and lower cased
	Role           Role
	HashedPassword string
	LastLoginAt    *time.Time // nil if the user never logged in
	Active         bool
}
