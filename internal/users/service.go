package users

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/rediwater/rediwater/internal/platform/httpx"
	"github.com/rediwater/rediwater/internal/rbac"
	"github.com/rediwater/rediwater/internal/shared"
)

// Service handles user business logic.
type Service struct {
	repo     RepositoryPort
	hashCost int
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo, hashCost: bcrypt.DefaultCost}
}

// WithHashCost overrides the bcrypt cost, mainly so tests stay fast.
func (s *Service) WithHashCost(cost int) *Service {
	s.hashCost = cost
	return s
}

// List returns a page of users.
func (s *Service) List(ctx context.Context, params shared.ListParams) ([]User, int, error) {
	return s.repo.List(ctx, params)
}

// Get returns a single user.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (User, error) {
	return s.repo.Get(ctx, id)
}

// Create registers a new account. An empty role defaults to viewer.
func (s *Service) Create(ctx context.Context, req CreateUserRequest) (User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if len(req.Password) < MinPasswordLength {
		return User{}, httpx.NewValidationError("password", fmt.Sprintf("Must be at least %d", MinPasswordLength))
	}
	if len(req.Password) > MaxPasswordBytes {
		return User{}, httpx.NewValidationError("password", fmt.Sprintf("Must be at most %d bytes", MaxPasswordBytes))
	}
	role := rbac.RoleViewer
	if req.Role != "" {
		role = rbac.ParseRole(req.Role)
		if !role.Valid() {
			return User{}, httpx.NewValidationError("role", "Must be one of: admin editor viewer")
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.hashCost)
	if err != nil {
		return User{}, fmt.Errorf("users: hash password: %w", err)
	}

	var created User
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var err error
		created, err = tx.Create(ctx, User{Email: email, Role: role, IsActive: true}, string(hash))
		return err
	})
	return created, err
}

// ChangeRole assigns a new role. Demoting the last active admin is refused.
func (s *Service) ChangeRole(ctx context.Context, id uuid.UUID, role rbac.Role) (User, error) {
	if !role.Valid() {
		return User{}, httpx.NewValidationError("role", "Must be one of: admin editor viewer")
	}

	var updated User
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if current.Role == role {
			updated = current
			return nil
		}
		if current.Role == rbac.RoleAdmin && current.IsActive {
			if err := ensureAnotherAdmin(ctx, tx); err != nil {
				return err
			}
		}
		updated, err = tx.UpdateRole(ctx, id, role)
		return err
	})
	return updated, err
}

// Delete removes an account. Deleting the last active admin is refused.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if current.Role == rbac.RoleAdmin && current.IsActive {
			if err := ensureAnotherAdmin(ctx, tx); err != nil {
				return err
			}
		}
		return tx.Delete(ctx, id)
	})
}

func ensureAnotherAdmin(ctx context.Context, tx TxRepository) error {
	admins, err := tx.CountActiveAdmins(ctx)
	if err != nil {
		return err
	}
	if admins <= 1 {
		return fmt.Errorf("%w: %w", httpx.ErrConflict, ErrLastAdmin)
	}
	return nil
}
