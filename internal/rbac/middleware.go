package rbac

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/rediwater/rediwater/internal/platform/httpx"
	"github.com/rediwater/rediwater/internal/shared"
)

// RoleSource reports the role currently assigned to a user. Implementations
// return RoleNone, not an error, when the user has no profile.
type RoleSource interface {
	RoleOf(ctx context.Context, userID uuid.UUID) (Role, error)
}

// ErrNoIdentity is returned by CurrentRole for unauthenticated requests.
var ErrNoIdentity = errors.New("rbac: no authenticated identity")

type roleContextKey struct{}

// RoleFromContext returns the role resolved by a guard earlier in the chain.
// It is only valid for the lifetime of the request.
func RoleFromContext(ctx context.Context) Role {
	role, _ := ctx.Value(roleContextKey{}).(Role)
	return role
}

// Middleware wires RBAC authorization helpers for HTTP handlers.
type Middleware struct {
	Roles  RoleSource
	Logger *slog.Logger
}

// CurrentRole resolves the caller's role for this request. Every call reads
// the RoleSource again; nothing is kept between requests.
func (m Middleware) CurrentRole(r *http.Request) (Role, error) {
	id, ok := shared.IdentityFromContext(r.Context())
	if !ok {
		return RoleNone, ErrNoIdentity
	}
	if m.Roles == nil {
		return RoleNone, nil
	}
	return m.Roles.RoleOf(r.Context(), id.UserID)
}

// RequireAll ensures the current user holds every listed capability.
func (m Middleware) RequireAll(caps ...Capability) func(http.Handler) http.Handler {
	return m.guard("require all", len(caps) == 0, func(role Role) bool {
		for _, c := range caps {
			if !HasPermission(role, c) {
				return false
			}
		}
		return true
	})
}

// RequireAny ensures the current user holds at least one listed capability.
func (m Middleware) RequireAny(caps ...Capability) func(http.Handler) http.Handler {
	return m.guard("require any", len(caps) == 0, func(role Role) bool {
		for _, c := range caps {
			if HasPermission(role, c) {
				return true
			}
		}
		return false
	})
}

// RequireAction gates a route on CanPerformAction.
func (m Middleware) RequireAction(action Action, entity Entity) func(http.Handler) http.Handler {
	return m.guard("require action", false, func(role Role) bool {
		return CanPerformAction(role, action, entity)
	})
}

// RequireRole restricts a route to the listed roles.
func (m Middleware) RequireRole(roles ...Role) func(http.Handler) http.Handler {
	return m.guard("require role", false, func(role Role) bool {
		if !role.Valid() {
			return false
		}
		for _, allowed := range roles {
			if role == allowed {
				return true
			}
		}
		return false
	})
}

func (m Middleware) guard(name string, open bool, allow func(Role) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if open {
				next.ServeHTTP(w, r)
				return
			}
			role, err := m.CurrentRole(r)
			if err != nil {
				if errors.Is(err, ErrNoIdentity) {
					httpx.RespondError(w, httpx.ErrUnauthorized)
					return
				}
				if m.Logger != nil {
					m.Logger.Error("rbac "+name, slog.Any("error", err))
				}
				httpx.RespondError(w, err)
				return
			}
			if !allow(role) {
				if m.Logger != nil {
					m.Logger.Debug("rbac denied", slog.String("guard", name), slog.String("role", role.String()), slog.String("path", r.URL.Path))
				}
				httpx.RespondError(w, httpx.ErrForbidden)
				return
			}
			ctx := context.WithValue(r.Context(), roleContextKey{}, role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
