package readings

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rediwater/rediwater/internal/format"
	"github.com/rediwater/rediwater/internal/platform/httpx"
	"github.com/rediwater/rediwater/internal/rbac"
	"github.com/rediwater/rediwater/internal/shared"
)

// Handler serves water-level readings. Readings are part of a borehole's
// data, so reads need canViewBoreholes and writes need canEditBoreholes.
type Handler struct {
	logger  *slog.Logger
	service *Service
	rbac    rbac.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbac}
}

// MountBoreholeRoutes registers the routes nested under /boreholes/{id}/readings.
func (h *Handler) MountBoreholeRoutes(r chi.Router) {
	r.With(h.rbac.RequireAction(rbac.ActionRead, rbac.EntityBoreholes)).Get("/", h.List)
	r.With(h.rbac.RequireAction(rbac.ActionUpdate, rbac.EntityBoreholes)).Post("/", h.Create)
}

// MountRoutes registers the routes addressing a single reading.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.rbac.RequireAction(rbac.ActionRead, rbac.EntityBoreholes)).Get("/{id}", h.Show)
	r.With(h.rbac.RequireAction(rbac.ActionUpdate, rbac.EntityBoreholes)).Put("/{id}", h.Update)
	r.With(h.rbac.RequireAction(rbac.ActionUpdate, rbac.EntityBoreholes)).Delete("/{id}", h.Delete)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	boreholeID, err := httpx.URLParamUUID(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	q := r.URL.Query()
	params := shared.ParseListParams(q)

	var dates Range
	for _, bound := range []struct {
		key    string
		target **time.Time
	}{{"from", &dates.From}, {"to", &dates.To}} {
		raw := q.Get(bound.key)
		if raw == "" {
			continue
		}
		parsed, err := time.Parse(format.InputLayout, raw)
		if err != nil {
			httpx.RespondError(w, httpx.NewValidationError(bound.key, "Must be a date formatted as "+format.InputLayout))
			return
		}
		*bound.target = &parsed
	}

	items, total, err := h.service.List(r.Context(), boreholeID, dates, params)
	if err != nil {
		if !isClientError(err) {
			h.logger.Error("list readings failed", slog.Any("error", err))
		}
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
	reading, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, reading)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	boreholeID, err := httpx.URLParamUUID(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var in ReadingInput
	if err := httpx.DecodeJSON(w, r, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	reading, err := h.service.Create(r.Context(), boreholeID, in)
	if err != nil {
		h.logger.Warn("create reading failed", slog.Any("error", err), slog.String("borehole_id", boreholeID.String()))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, reading)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.URLParamUUID(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var in ReadingInput
	if err := httpx.DecodeJSON(w, r, &in); err != nil {
		httpx.RespondError(w, err)
		return
	}
	reading, err := h.service.Update(r.Context(), id, in)
	if err != nil {
		h.logger.Warn("update reading failed", slog.Any("error", err), slog.String("id", id.String()))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, reading)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.URLParamUUID(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.logger.Warn("delete reading failed", slog.Any("error", err), slog.String("id", id.String()))
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func isClientError(err error) bool {
	var verr *httpx.ValidationError
	return errors.As(err, &verr)
}
