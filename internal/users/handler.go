package users

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/rediwater/rediwater/internal/platform/httpx"
	"github.com/rediwater/rediwater/internal/rbac"
	"github.com/rediwater/rediwater/internal/shared"
)

// Handler manages user management endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	rbac      rbac.Middleware
	validator *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbac, validator: httpx.NewValidator()}
}

// MountRoutes registers user routes. Every action on users maps to
// canManageUsers.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.rbac.RequireAction(rbac.ActionRead, rbac.EntityUsers)).Get("/", h.listUsers)
	r.With(h.rbac.RequireAction(rbac.ActionRead, rbac.EntityUsers)).Get("/{id}", h.getUser)
	r.With(h.rbac.RequireAction(rbac.ActionCreate, rbac.EntityUsers)).Post("/", h.createUser)
	r.With(h.rbac.RequireAction(rbac.ActionUpdate, rbac.EntityUsers)).Put("/{id}/role", h.updateRole)
	r.With(h.rbac.RequireAction(rbac.ActionDelete, rbac.EntityUsers)).Delete("/{id}", h.deleteUser)
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	params := shared.ParseListParams(r.URL.Query())
	users, total, err := h.service.List(r.Context(), params)
	if err != nil {
		h.logger.Error("list users failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, shared.NewPage(users, params, total))
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.URLParamUUID(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	user, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, httpx.FromValidator(err))
		return
	}
	user, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.logger.Warn("create user failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	h.logger.Info("user created", slog.String("user_id", user.ID.String()), slog.String("role", user.Role.String()))
	httpx.JSON(w, http.StatusCreated, user)
}

func (h *Handler) updateRole(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.URLParamUUID(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req UpdateRoleRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.RespondError(w, httpx.FromValidator(err))
		return
	}
	user, err := h.service.ChangeRole(r.Context(), id, rbac.ParseRole(req.Role))
	if err != nil {
		h.logger.Warn("change role failed", slog.Any("error", err), slog.String("user_id", id.String()))
		httpx.RespondError(w, err)
		return
	}
	h.logger.Info("role changed", slog.String("user_id", id.String()), slog.String("role", user.Role.String()))
	httpx.JSON(w, http.StatusOK, user)
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.URLParamUUID(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.logger.Warn("delete user failed", slog.Any("error", err), slog.String("user_id", id.String()))
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
