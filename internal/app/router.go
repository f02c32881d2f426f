package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/animecon/volunteer-manager/internal/applications"
	"github.com/animecon/volunteer-manager/internal/audit"
	"github.com/animecon/volunteer-manager/internal/auth"
	"github.com/animecon/volunteer-manager/internal/events"
	"github.com/animecon/volunteer-manager/internal/hotel"
	"github.com/animecon/volunteer-manager/internal/observability"
	"github.com/animecon/volunteer-manager/internal/shared"
	"github.com/animecon/volunteer-manager/internal/volunteers"
	"github.com/animecon/volunteer-manager/jobs"
	"github.com/animecon/volunteer-manager/report"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager

	AuthHandler         *auth.Handler
	VolunteersHandler   *volunteers.Handler
	EventsHandler       *events.Handler
	ApplicationsHandler *applications.Handler
	HotelHandler        *hotel.Handler
	AuditHandler        *audit.Handler
	ReportHandler       *report.Handler
	JobHandler          *jobs.Handler
	Metrics             *observability.Metrics
}

// NewRouter constructs the chi.Router for the volunteer manager API.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)
	r.Route("/volunteers", params.VolunteersHandler.MountRoutes)
	r.Route("/events", func(r chi.Router) {
		params.EventsHandler.MountRoutes(r)
		if params.ApplicationsHandler != nil {
			r.Route("/{slug}/applications", params.ApplicationsHandler.MountRoutes)
		}
		if params.HotelHandler != nil {
			r.Route("/{slug}/hotel", params.HotelHandler.MountRoutes)
		}
	})
	if params.AuditHandler != nil {
		r.Route("/admin/audit", params.AuditHandler.MountRoutes)
	}
	if params.ReportHandler != nil {
		r.Route("/report", params.ReportHandler.MountRoutes)
	}
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
