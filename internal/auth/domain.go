package auth

import (
	"time"

	"github.com/google/uuid"
)

// User represents an account row from profiles as seen by the login flow.
type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	Role         string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
