package applications

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/animecon/volunteer-manager/internal/access"
	"github.com/animecon/volunteer-manager/internal/platform/httpx"
	"github.com/animecon/volunteer-manager/internal/shared"
)

// Handler exposes application endpoints, mounted under an event slug.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	events    EventProvider
	guard     access.Middleware
	validator *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service, provider EventProvider, guard access.Middleware) *Handler {
	return &Handler{logger: logger, service: service, events: provider, guard: guard, validator: validator.New()}
}

// MountRoutes registers application routes. The parent router provides the
// {slug} URL parameter.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Authenticated)
		r.Post("/", h.submit)
		r.Get("/own", h.own)
		r.Delete("/own", h.cancel)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireOperation(access.PermEventApplications, access.OperationRead))
		r.Get("/", h.list)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireOperation(access.PermEventApplications, access.OperationUpdate))
		r.Post("/{id}/accept", h.accept)
		r.Post("/{id}/reject", h.reject)
	})
}

type applicationResponse struct {
	ID             int64      `json:"id"`
	EventID        int64      `json:"eventId"`
	VolunteerID    int64      `json:"volunteerId"`
	Status         Status     `json:"status"`
	Motivation     string     `json:"motivation,omitempty"`
	TShirtSize     string     `json:"tshirtSize,omitempty"`
	PreferredHours int        `json:"preferredHours,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	DecidedAt      *time.Time `json:"decidedAt,omitempty"`
}

func toResponse(a Application) applicationResponse {
	resp := applicationResponse{
		ID:             a.ID,
		EventID:        a.EventID,
		VolunteerID:    a.VolunteerID,
		Status:         a.Status,
		Motivation:     a.Motivation,
		TShirtSize:     a.TShirtSize,
		PreferredHours: a.PreferredHours,
		CreatedAt:      a.CreatedAt,
	}
	if !a.DecidedAt.IsZero() {
		decided := a.DecidedAt
		resp.DecidedAt = &decided
	}
	return resp
}

type submitRequest struct {
	Motivation     string `json:"motivation" validate:"max=2000"`
	TShirtSize     string `json:"tshirtSize" validate:"omitempty,oneof=XS S M L XL XXL"`
	PreferredHours int    `json:"preferredHours" validate:"omitempty,min=2,max=16"`
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	application, err := h.service.Submit(r.Context(), currentUserID(r), SubmitInput{
		EventSlug:      chi.URLParam(r, "slug"),
		IdempotencyKey: r.Header.Get("Idempotency-Key"),
		Motivation:     req.Motivation,
		TShirtSize:     req.TShirtSize,
		PreferredHours: req.PreferredHours,
	})
	if err != nil {
		switch {
		case errors.Is(err, shared.ErrNotFound):
			httpx.Problem(w, http.StatusNotFound, "Not Found", "event not found")
		case errors.Is(err, ErrApplicationsClosed):
			httpx.Problem(w, http.StatusConflict, "Applications Closed", err.Error())
		case errors.Is(err, ErrAlreadyApplied):
			httpx.Problem(w, http.StatusConflict, "Already Applied", err.Error())
		default:
			h.logger.Error("submit application", slog.Any("error", err))
			httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		}
		return
	}
	httpx.JSON(w, http.StatusCreated, toResponse(application))
}

func (h *Handler) own(w http.ResponseWriter, r *http.Request) {
	eventID, ok := h.resolveEvent(w, r)
	if !ok {
		return
	}
	application, err := h.service.Own(r.Context(), currentUserID(r), eventID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "no application for this event")
			return
		}
		h.logger.Error("own application", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(application))
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	eventID, ok := h.resolveEvent(w, r)
	if !ok {
		return
	}
	application, err := h.service.Cancel(r.Context(), currentUserID(r), eventID)
	if err != nil {
		switch {
		case errors.Is(err, shared.ErrNotFound):
			httpx.Problem(w, http.StatusNotFound, "Not Found", "no application for this event")
		case errors.Is(err, ErrInvalidTransition):
			httpx.Problem(w, http.StatusConflict, "Conflict", "only pending applications can be withdrawn")
		default:
			h.logger.Error("cancel application", slog.Any("error", err))
			httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		}
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(application))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	eventID, ok := h.resolveEvent(w, r)
	if !ok {
		return
	}
	query := r.URL.Query()
	page, _ := strconv.Atoi(query.Get("page"))
	perPage, _ := strconv.Atoi(query.Get("per_page"))
	filter := ListFilter{
		EventID: eventID,
		Status:  Status(query.Get("status")),
		Page:    page,
		PerPage: perPage,
	}
	if filter.Status != "" && !filter.Status.Valid() {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "unknown status filter")
		return
	}

	result, pagination, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("list applications", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	items := make([]applicationResponse, 0, len(result))
	for _, application := range result {
		items = append(items, toResponse(application))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"applications": items,
		"pagination":   pagination,
	})
}

func (h *Handler) accept(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, StatusAccepted)
}

func (h *Handler) reject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, StatusRejected)
}

func (h *Handler) decide(w http.ResponseWriter, r *http.Request, to Status) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid application id")
		return
	}
	application, err := h.service.Decide(r.Context(), currentUserID(r), id, to)
	if err != nil {
		switch {
		case errors.Is(err, shared.ErrNotFound):
			httpx.Problem(w, http.StatusNotFound, "Not Found", "application not found")
		case errors.Is(err, ErrInvalidTransition):
			httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
		default:
			h.logger.Error("decide application", slog.Any("error", err))
			httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		}
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(application))
}

// resolveEvent loads the event for the slug in the URL and writes the error
// response itself when that fails.
func (h *Handler) resolveEvent(w http.ResponseWriter, r *http.Request) (int64, bool) {
	event, err := h.events.Get(r.Context(), chi.URLParam(r, "slug"), true)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "event not found")
			return 0, false
		}
		h.logger.Error("resolve event", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return 0, false
	}
	return event.ID, true
}

func currentUserID(r *http.Request) int64 {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		return 0
	}
	id, _ := strconv.ParseInt(sess.User(), 10, 64)
	return id
}
