package audit

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/animecon/volunteer-manager/internal/access"
	"github.com/animecon/volunteer-manager/internal/platform/httpx"
)

// Handler exposes the admin audit timeline.
type Handler struct {
	logger  *slog.Logger
	service *Service
	guard   access.Middleware
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service, guard access.Middleware) *Handler {
	return &Handler{logger: logger, service: service, guard: guard}
}

// MountRoutes registers audit routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireOperation(access.PermSystemLogs, access.OperationRead))
		r.Get("/", h.timeline)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require(access.PermVolunteerExport))
		r.Get("/export", h.export)
	})
}

func parseFilters(r *http.Request) TimelineFilters {
	query := r.URL.Query()
	page, _ := strconv.Atoi(query.Get("page"))
	pageSize, _ := strconv.Atoi(query.Get("page_size"))
	actorID, _ := strconv.ParseInt(query.Get("actor"), 10, 64)
	filters := TimelineFilters{
		ActorID:  actorID,
		Entity:   query.Get("entity"),
		Action:   query.Get("action"),
		Page:     page,
		PageSize: pageSize,
	}
	if from, err := time.Parse(time.RFC3339, query.Get("from")); err == nil {
		filters.From = from
	}
	if to, err := time.Parse(time.RFC3339, query.Get("to")); err == nil {
		filters.To = to
	}
	return filters
}

func (h *Handler) timeline(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Timeline(r.Context(), parseFilters(r))
	if err != nil {
		h.logger.Error("audit timeline", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) export(w http.ResponseWriter, r *http.Request) {
	data, err := h.service.Export(r.Context(), parseFilters(r))
	if err != nil {
		h.logger.Error("audit export", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="audit-timeline.csv"`)
	_, _ = w.Write(data)
}
