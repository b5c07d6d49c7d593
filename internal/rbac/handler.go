package rbac

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rediwater/rediwater/internal/platform/httpx"
)

// PermissionsHandler exposes the permission model to UI clients.
type PermissionsHandler struct {
	logger *slog.Logger
	rbac   Middleware
}

// NewPermissionsHandler builds PermissionsHandler instance.
func NewPermissionsHandler(logger *slog.Logger, rbac Middleware) *PermissionsHandler {
	return &PermissionsHandler{logger: logger, rbac: rbac}
}

// MountMe registers the current-caller endpoint, usually under /me.
func (h *PermissionsHandler) MountMe(r chi.Router) {
	r.Get("/permissions", h.myPermissions)
}

// MountRoutes registers the matrix listing, usually under /permissions.
func (h *PermissionsHandler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(CanViewSettings))
		r.Get("/matrix", h.matrix)
	})
}

type permissionsResponse struct {
	Role         Role         `json:"role"`
	Capabilities Capabilities `json:"capabilities"`
	Granted      []string     `json:"granted"`
}

// myPermissions answers for anonymous callers too: they get no role and an
// all-false record, which hides every gated control.
func (h *PermissionsHandler) myPermissions(w http.ResponseWriter, r *http.Request) {
	role, err := h.rbac.CurrentRole(r)
	if err != nil && !errors.Is(err, ErrNoIdentity) {
		h.logger.Error("resolve role", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	resp := permissionsResponse{Role: RoleNone, Granted: []string{}}
	if role.Valid() {
		resp.Role = role
		resp.Capabilities = CapabilitiesFor(role)
		for _, c := range resp.Capabilities.Granted() {
			resp.Granted = append(resp.Granted, c.String())
		}
	}
	w.Header().Set("Cache-Control", "no-store")
	httpx.JSON(w, http.StatusOK, resp)
}

// matrix runs behind a guard, so the caller's role is already resolved.
func (h *PermissionsHandler) matrix(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]any{
		"role":   RoleFromContext(r.Context()),
		"roles":  Roles(),
		"matrix": Matrix(),
	})
}
