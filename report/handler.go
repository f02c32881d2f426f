package report

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/animecon/volunteer-manager/internal/access"
	"github.com/animecon/volunteer-manager/internal/applications"
	"github.com/animecon/volunteer-manager/internal/events"
	"github.com/animecon/volunteer-manager/internal/platform/httpx"
	"github.com/animecon/volunteer-manager/internal/shared"
	"github.com/animecon/volunteer-manager/internal/volunteers"
)

// EventProvider resolves events by slug. Implemented by events.Service.
type EventProvider interface {
	Get(ctx context.Context, slug string, includeHidden bool) (events.Event, error)
}

// ApplicationLister reads applications for the roster. Implemented by
// applications.Service.
type ApplicationLister interface {
	List(ctx context.Context, filter applications.ListFilter) ([]applications.Application, shared.Pagination, error)
}

// VolunteerDirectory resolves volunteer details. Implemented by
// volunteers.Service.
type VolunteerDirectory interface {
	Get(ctx context.Context, id int64) (volunteers.Volunteer, error)
}

// Handler manages report endpoints.
type Handler struct {
	client       *Client
	logger       *slog.Logger
	guard        access.Middleware
	events       EventProvider
	applications ApplicationLister
	directory    VolunteerDirectory
}

// NewHandler creates a report handler.
func NewHandler(client *Client, logger *slog.Logger, guard access.Middleware,
	provider EventProvider, lister ApplicationLister, directory VolunteerDirectory) *Handler {
	return &Handler{
		client: client, logger: logger, guard: guard,
		events: provider, applications: lister, directory: directory,
	}
}

// MountRoutes registers report routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/ping", h.ping)
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireOperation(access.PermEventSchedules, access.OperationRead))
		r.Get("/{slug}/roster.pdf", h.roster)
	})
}

func (h *Handler) ping(w http.ResponseWriter, r *http.Request) {
	if err := h.client.Ping(r.Context()); err != nil {
		h.logger.Warn("gotenberg ping failed", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// roster renders the accepted-volunteer roster of an event as PDF.
func (h *Handler) roster(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	event, err := h.events.Get(ctx, chi.URLParam(r, "slug"), true)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "event not found")
			return
		}
		h.logger.Error("roster event", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}

	accepted, _, err := h.applications.List(ctx, applications.ListFilter{
		EventID: event.ID,
		Status:  applications.StatusAccepted,
		PerPage: 1000,
	})
	if err != nil {
		h.logger.Error("roster applications", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}

	entries := make([]RosterEntry, 0, len(accepted))
	for _, application := range accepted {
		entry := RosterEntry{
			TShirtSize:     application.TShirtSize,
			PreferredHours: application.PreferredHours,
		}
		if volunteer, err := h.directory.Get(ctx, application.VolunteerID); err == nil {
			entry.Name = volunteer.Name
			entry.Email = volunteer.Email
		}
		entries = append(entries, entry)
	}

	html, err := RenderRosterHTML(RosterData{
		EventName:   event.Name,
		GeneratedAt: time.Now(),
		Entries:     entries,
	})
	if err != nil {
		h.logger.Error("roster template", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}

	pdf, err := h.client.RenderHTML(ctx, html, RenderOptions{Landscape: true, MarginInches: 0.5})
	if err != nil {
		h.logger.Error("render roster pdf", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusBadGateway), http.StatusBadGateway)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `inline; filename="roster.pdf"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}
