package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/programmistyigit/blessing-antigravity-sub002/internal/attendance"
	"github.com/programmistyigit/blessing-antigravity-sub002/internal/auth"
	"github.com/programmistyigit/blessing-antigravity-sub002/internal/batches"
	"github.com/programmistyigit/blessing-antigravity-sub002/internal/delegations"
	"github.com/programmistyigit/blessing-antigravity-sub002/internal/observability"
	"github.com/programmistyigit/blessing-antigravity-sub002/internal/prices"
	"github.com/programmistyigit/blessing-antigravity-sub002/internal/rbac"
	"github.com/programmistyigit/blessing-antigravity-sub002/internal/roles"
	"github.com/programmistyigit/blessing-antigravity-sub002/internal/sections"
	"github.com/programmistyigit/blessing-antigravity-sub002/internal/users"
	"github.com/programmistyigit/blessing-antigravity-sub002/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger *slog.Logger
	Config *Config

	Authenticator auth.Authenticator

	AuthHandler        *auth.Handler
	RolesHandler       *roles.Handler
	UsersHandler       *users.Handler
	DelegationsHandler *delegations.Handler
	SectionsHandler    *sections.Handler
	BatchesHandler     *batches.Handler
	AttendanceHandler  *attendance.Handler
	PricesHandler      *prices.Handler
	PermissionsHandler *rbac.PermissionsHandler
	JobsHandler        *jobs.Handler

	Metrics *observability.Metrics
}

// NewRouter constructs the chi.Router. Everything under /api/v1 except the
// auth login endpoint requires a bearer token.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", params.AuthHandler.MountRoutes)

		r.Group(func(r chi.Router) {
			r.Use(params.Authenticator.Middleware)

			r.Route("/roles", params.RolesHandler.MountRoutes)
			r.Route("/users", params.UsersHandler.MountRoutes)
			r.Route("/delegations", params.DelegationsHandler.MountRoutes)
			r.Route("/sections", params.SectionsHandler.MountRoutes)
			r.Route("/batches", params.BatchesHandler.MountRoutes)
			r.Route("/attendance", params.AttendanceHandler.MountRoutes)
			r.Route("/prices", params.PricesHandler.MountRoutes)
			if params.PermissionsHandler != nil {
				r.Route("/permissions", params.PermissionsHandler.MountRoutes)
			}
			if params.JobsHandler != nil {
				r.Route("/jobs", params.JobsHandler.MountRoutes)
			}
		})
	})

	return r
}
