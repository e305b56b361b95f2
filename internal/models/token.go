package models

import (
	"time"

	"github.com/google/uuid"
)

// IssuedToken is a signed bearer token returned to the client on login
type IssuedToken struct {
	Value     string
	ExpiresAt time.Time
}

// Principal is the decoded claim set attached to a request after
// successful verification. Read only for downstream handlers.
type Principal struct {
	UserID    uuid.UUID
	Role      Role
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// InvalidToken is a ledger record that vetoes an otherwise valid token
// between explicit logout and its natural expiry
type InvalidToken struct {
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
}
