package users

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/rediwater/rediwater/internal/rbac"
)

// MinPasswordLength is the shortest password accepted for new accounts.
const MinPasswordLength = 6

// MaxPasswordBytes is bcrypt's input limit. It counts bytes, not characters.
const MaxPasswordBytes = 72

// ErrLastAdmin is returned when a change would leave no active admin.
var ErrLastAdmin = errors.New("users: at least one admin must remain")

// User represents a profile row for management.
type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Role      rbac.Role `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateUserRequest is the payload for creating an account.
type CreateUserRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Role     string `json:"role" validate:"omitempty,oneof=admin editor viewer"`
}

// UpdateRoleRequest changes the role of an account.
type UpdateRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=admin editor viewer"`
}
