package boreholes

import (
	"log/slog"
	"net/http"
	"slices"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/rediwater/rediwater/internal/format"
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

// MountRoutes registers borehole routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAction(rbac.ActionRead, rbac.EntityBoreholes))
		r.Get("/", h.List)
		r.Get("/options", h.Options)
		r.Get("/{id}", h.Show)
	})
	r.With(h.rbac.RequireAction(rbac.ActionCreate, rbac.EntityBoreholes)).Post("/", h.Create)
	r.With(h.rbac.RequireAction(rbac.ActionUpdate, rbac.EntityBoreholes)).Put("/{id}", h.Update)
	r.With(h.rbac.RequireAction(rbac.ActionDelete, rbac.EntityBoreholes)).Delete("/{id}", h.Delete)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := shared.ParseListParams(q)

	var filters ListFilters
	if raw := q.Get("site_id"); raw != "" {
		siteID, err := uuid.Parse(raw)
		if err != nil {
			httpx.RespondError(w, httpx.NewValidationError("site_id", "Must be a valid UUID"))
			return
		}
		filters.SiteID = &siteID
	}
	if status := q.Get("status"); status != "" {
		if !slices.Contains(Statuses(), status) {
			httpx.RespondError(w, httpx.NewValidationError("status", "Unknown status"))
			return
		}
		filters.Status = status
	}
	if raw := q.Get("has_recent_readings"); raw != "" {
		recent, err := strconv.ParseBool(raw)
		if err != nil {
			httpx.RespondError(w, httpx.NewValidationError("has_recent_readings", "Must be true or false"))
			return
		}
		filters.HasRecentReadings = &recent
	}

	items, total, err := h.service.List(r.Context(), params, filters)
	if err != nil {
		h.logger.Error("list boreholes failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, shared.NewPage(items, params, total))
}

type option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

var labelOverrides = map[string]string{
	StatusMaintenance: "Under Maintenance",
}

func optionsFor(values []string) []option {
	out := make([]option, 0, len(values))
	for _, v := range values {
		label, ok := labelOverrides[v]
		if !ok {
			label = format.SnakeToTitle(v)
		}
		out = append(out, option{Value: v, Label: label})
	}
	return out
}

// Options lists the closed value sets a borehole form offers.
func (h *Handler) Options(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string][]option{
		"statuses":    optionsFor(Statuses()),
		"yield_tests": optionsFor(YieldTests()),
	})
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.URLParamUUID(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	b, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, b)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in BoreholeInput
	if err := httpx.DecodeJSON(w, r, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	b, err := h.service.Create(r.Context(), in)
	if err != nil {
		h.logger.Warn("create borehole failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, b)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.URLParamUUID(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var in BoreholeInput
	if err := httpx.DecodeJSON(w, r, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	b, err := h.service.Update(r.Context(), id, in)
	if err != nil {
		h.logger.Warn("update borehole failed", slog.Any("error", err), slog.String("id", id.String()))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, b)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.URLParamUUID(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.logger.Warn("delete borehole failed", slog.Any("error", err), slog.String("id", id.String()))
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
