package sites

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rediwater/rediwater/internal/platform/httpx"
	"github.com/rediwater/rediwater/internal/rbac"
	"github.com/rediwater/rediwater/internal/shared"
)

type Handler struct {
	logger  *slog.Logger
	service *Service
	rbac    rbac.Middleware
}

func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbac}
}

// MountRoutes registers site routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.rbac.RequireAction(rbac.ActionRead, rbac.EntitySites)).Get("/", h.List)
	r.With(h.rbac.RequireAction(rbac.ActionRead, rbac.EntitySites)).Get("/{id}", h.Show)
	r.With(h.rbac.RequireAction(rbac.ActionCreate, rbac.EntitySites)).Post("/", h.Create)
	r.With(h.rbac.RequireAction(rbac.ActionUpdate, rbac.EntitySites)).Put("/{id}", h.Update)
	r.With(h.rbac.RequireAction(rbac.ActionDelete, rbac.EntitySites)).Delete("/{id}", h.Delete)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	params := shared.ParseListParams(r.URL.Query())
	items, total, err := h.service.List(r.Context(), params)
	if err != nil {
		h.logger.Error("list sites failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, shared.NewPage(items, params, total))
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.URLParamUUID(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	site, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, site)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in SiteInput
	if err := httpx.DecodeJSON(w, r, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	site, err := h.service.Create(r.Context(), in)
	if err != nil {
		h.logger.Warn("create site failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, site)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.URLParamUUID(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var in SiteInput
	if err := httpx.DecodeJSON(w, r, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	site, err := h.service.Update(r.Context(), id, in)
	if err != nil {
		h.logger.Warn("update site failed", slog.Any("error", err), slog.String("id", id.String()))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, site)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.URLParamUUID(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.logger.Warn("delete site failed", slog.Any("error", err), slog.String("id", id.String()))
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
