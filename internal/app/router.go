package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/rediwater/rediwater/internal/auth"
	"github.com/rediwater/rediwater/internal/boreholes"
	"github.com/rediwater/rediwater/internal/dashboard"
	"github.com/rediwater/rediwater/internal/observability"
	"github.com/rediwater/rediwater/internal/platform/httpx"
	"github.com/rediwater/rediwater/internal/rbac"
	"github.com/rediwater/rediwater/internal/readings"
	"github.com/rediwater/rediwater/internal/shared"
	"github.com/rediwater/rediwater/internal/sites"
	"github.com/rediwater/rediwater/internal/users"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager
	Authenticator  auth.Authenticator

	AuthHandler        *auth.Handler
	PermissionsHandler *rbac.PermissionsHandler
	SitesHandler       *sites.Handler
	BoreholesHandler   *boreholes.Handler
	ReadingsHandler    *readings.Handler
	UsersHandler       *users.Handler
	DashboardHandler   *dashboard.Handler

	Metrics *observability.Metrics
	// Ready reports dependency health for /readyz. Nil means always ready.
	Ready func(r *http.Request) error
}

// NewRouter constructs the chi.Router with rediwater defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if params.Ready != nil {
			if err := params.Ready(r); err != nil {
				params.Logger.Warn("readiness check failed", slog.Any("error", err))
				httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Group(func(r chi.Router) {
		for _, mw := range MiddlewareStack(MiddlewareConfig{
			Logger:         params.Logger,
			Config:         params.Config,
			SessionManager: params.SessionManager,
			CSRFManager:    params.CSRFManager,
			Authenticator:  params.Authenticator,
			Metrics:        params.Metrics,
		}) {
			r.Use(mw)
		}
		r.Use(chimw.Logger)

		if params.AuthHandler != nil {
			r.Route("/auth", params.AuthHandler.MountRoutes)
		}
		if params.PermissionsHandler != nil {
			r.Route("/me", params.PermissionsHandler.MountMe)
			r.Route("/permissions", params.PermissionsHandler.MountRoutes)
		}
		if params.SitesHandler != nil {
			r.Route("/sites", params.SitesHandler.MountRoutes)
		}
		if params.BoreholesHandler != nil {
			r.Route("/boreholes", func(r chi.Router) {
				params.BoreholesHandler.MountRoutes(r)
				if params.ReadingsHandler != nil {
					r.Route("/{id}/readings", params.ReadingsHandler.MountBoreholeRoutes)
				}
			})
		}
		if params.ReadingsHandler != nil {
			r.Route("/readings", params.ReadingsHandler.MountRoutes)
		}
		if params.UsersHandler != nil {
			r.Route("/users", params.UsersHandler.MountRoutes)
		}
		if params.DashboardHandler != nil {
			r.Route("/dashboard", params.DashboardHandler.MountRoutes)
		}
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.RespondError(w, httpx.ErrNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httpx.Problem(w, http.StatusMethodNotAllowed, "Method Not Allowed", "The method is not supported for this resource.")
	})

	return r
}
