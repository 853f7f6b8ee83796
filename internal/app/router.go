package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/tenderdesk/tenderdesk/internal/auth"
	"github.com/tenderdesk/tenderdesk/internal/invoices"
	"github.com/tenderdesk/tenderdesk/internal/notifications"
	"github.com/tenderdesk/tenderdesk/internal/observability"
	"github.com/tenderdesk/tenderdesk/internal/projects"
	"github.com/tenderdesk/tenderdesk/internal/reports"
	"github.com/tenderdesk/tenderdesk/internal/shared"
	"github.com/tenderdesk/tenderdesk/internal/suppliers"
	"github.com/tenderdesk/tenderdesk/internal/tenders"
	"github.com/tenderdesk/tenderdesk/internal/users"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger      *slog.Logger
	Config      *Config
	CSRFManager *shared.CSRFManager

	AuthMiddleware auth.Middleware

	AuthHandler          *auth.Handler
	UsersHandler         *users.Handler
	TendersHandler       *tenders.Handler
	SuppliersHandler     *suppliers.Handler
	ProjectsHandler      *projects.Handler
	InvoicesHandler      *invoices.Handler
	ReportsHandler       *reports.Handler
	NotificationsHandler *notifications.Handler

	Metrics *observability.Metrics
}

// NewRouter constructs the chi.Router with portal defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:      params.Logger,
		Config:      params.Config,
		CSRFManager: params.CSRFManager,
		Metrics:     params.Metrics,
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

	r.Route("/api", func(r chi.Router) {
		params.AuthHandler.MountRoutes(r)

		r.Group(func(r chi.Router) {
			r.Use(params.AuthMiddleware.RequireUser)

			r.Get("/me", params.AuthHandler.HandleMe)

			if params.UsersHandler != nil {
				r.Route("/users", params.UsersHandler.MountRoutes)
			}
			if params.TendersHandler != nil {
				r.Route("/tenders", params.TendersHandler.MountRoutes)
			}
			if params.SuppliersHandler != nil {
				r.Route("/suppliers", params.SuppliersHandler.MountRoutes)
			}
			if params.ProjectsHandler != nil {
				r.Route("/projects", func(r chi.Router) {
					params.ProjectsHandler.MountRoutes(r)
					if params.InvoicesHandler != nil {
						params.InvoicesHandler.MountProjectRoutes(r)
					}
				})
			}
			if params.InvoicesHandler != nil {
				r.Route("/invoices", params.InvoicesHandler.MountRoutes)
			}
			if params.ReportsHandler != nil {
				r.Route("/reports", params.ReportsHandler.MountRoutes)
			}
			if params.NotificationsHandler != nil {
				r.Route("/notifications", params.NotificationsHandler.MountRoutes)
			}
		})
	})

	return r
}
