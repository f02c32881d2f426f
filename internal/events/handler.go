package events

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

// Handler exposes event endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	guard     access.Middleware
	validator *validator.Validate
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service, guard access.Middleware) *Handler {
	return &Handler{logger: logger, service: service, guard: guard, validator: validator.New()}
}

// MountRoutes registers event routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/{slug}", h.get)
	r.Get("/{slug}/availability", h.availability)
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require(access.PermEventSettings))
		r.Post("/", h.create)
		r.Put("/{slug}", h.update)
		r.Get("/{slug}/stats", h.stats)
	})
}

func seesHidden(r *http.Request) bool {
	list := access.CurrentList(r)
	return list.Can(access.PermRoot) || list.Can(access.PermEventVisible)
}

type eventResponse struct {
	ID           int64        `json:"id"`
	Slug         string       `json:"slug"`
	Name         string       `json:"name"`
	Location     string       `json:"location,omitempty"`
	StartTime    time.Time    `json:"startTime"`
	EndTime      time.Time    `json:"endTime"`
	Hidden       bool         `json:"hidden"`
	Availability Availability `json:"availability"`
}

func (h *Handler) toResponse(event Event) eventResponse {
	return eventResponse{
		ID:           event.ID,
		Slug:         event.Slug,
		Name:         event.Name,
		Location:     event.Location,
		StartTime:    event.StartTime,
		EndTime:      event.EndTime,
		Hidden:       event.Hidden,
		Availability: event.AvailabilityAt(h.service.now()),
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.List(r.Context(), seesHidden(r))
	if err != nil {
		h.logger.Error("list events", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	items := make([]eventResponse, 0, len(result))
	for _, event := range result {
		items = append(items, h.toResponse(event))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"events": items})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	event, err := h.service.Get(r.Context(), chi.URLParam(r, "slug"), seesHidden(r))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "event not found")
			return
		}
		h.logger.Error("get event", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, h.toResponse(event))
}

func (h *Handler) availability(w http.ResponseWriter, r *http.Request) {
	availability, err := h.service.Availability(r.Context(), chi.URLParam(r, "slug"), seesHidden(r))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "event not found")
			return
		}
		h.logger.Error("event availability", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, availability)
}

type eventRequest struct {
	Slug                 string    `json:"slug" validate:"required,lowercase,min=2,max=64"`
	Name                 string    `json:"name" validate:"required,min=2"`
	Location             string    `json:"location"`
	StartTime            time.Time `json:"startTime" validate:"required"`
	EndTime              time.Time `json:"endTime" validate:"required"`
	Hidden               bool      `json:"hidden"`
	ApplicationsStart    time.Time `json:"applicationsStart"`
	ApplicationsEnd      time.Time `json:"applicationsEnd"`
	ApplicationsOverride bool      `json:"applicationsOverride"`
	ScheduleStart        time.Time `json:"scheduleStart"`
	ScheduleEnd          time.Time `json:"scheduleEnd"`
	ScheduleOverride     bool      `json:"scheduleOverride"`
}

func (req eventRequest) toEvent() Event {
	return Event{
		Slug:                 req.Slug,
		Name:                 req.Name,
		Location:             req.Location,
		StartTime:            req.StartTime,
		EndTime:              req.EndTime,
		Hidden:               req.Hidden,
		ApplicationsStart:    req.ApplicationsStart,
		ApplicationsEnd:      req.ApplicationsEnd,
		ApplicationsOverride: req.ApplicationsOverride,
		ScheduleStart:        req.ScheduleStart,
		ScheduleEnd:          req.ScheduleEnd,
		ScheduleOverride:     req.ScheduleOverride,
	}
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	event, err := h.service.Create(r.Context(), currentUserID(r), req.toEvent())
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	httpx.JSON(w, http.StatusCreated, h.toResponse(event))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var req eventRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	req.Slug = chi.URLParam(r, "slug")
	if err := h.validator.StructExcept(req, "Slug"); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	event, err := h.service.Update(r.Context(), currentUserID(r), req.toEvent())
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "event not found")
			return
		}
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	httpx.JSON(w, http.StatusOK, h.toResponse(event))
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	event, err := h.service.Get(r.Context(), chi.URLParam(r, "slug"), true)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "event not found")
			return
		}
		h.logger.Error("event stats", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	stats, err := h.service.Stats(r.Context(), event.ID)
	if err != nil {
		h.logger.Error("event stats", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, stats)
}

func currentUserID(r *http.Request) int64 {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		return 0
	}
	id, _ := strconv.ParseInt(sess.User(), 10, 64)
	return id
}
