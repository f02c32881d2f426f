package hotel

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/animecon/volunteer-manager/internal/access"
	"github.com/animecon/volunteer-manager/internal/events"
	"github.com/animecon/volunteer-manager/internal/platform/httpx"
	"github.com/animecon/volunteer-manager/internal/shared"
)

// EventProvider resolves the event a room belongs to. Implemented by
// events.Service.
type EventProvider interface {
	Get(ctx context.Context, slug string, includeHidden bool) (events.Event, error)
}

// Handler exposes hotel endpoints, mounted under an event slug.
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

// MountRoutes registers hotel routes. The parent router provides the {slug}
// URL parameter.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Authenticated)
		r.Get("/rooms", h.listRooms)
		r.Post("/bookings", h.book)
		r.Delete("/bookings/{id}", h.cancel)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireOperation(access.PermEventHotels, access.OperationCreate))
		r.Post("/rooms", h.createRoom)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireOperation(access.PermEventHotels, access.OperationDelete))
		r.Delete("/rooms/{id}", h.deleteRoom)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireOperation(access.PermEventHotels, access.OperationRead))
		r.Get("/bookings", h.listBookings)
	})
}

type roomResponse struct {
	ID         int64  `json:"id"`
	Hotel      string `json:"hotel"`
	Name       string `json:"name"`
	Capacity   int    `json:"capacity"`
	PriceCents int    `json:"priceCents"`
}

type bookingResponse struct {
	ID          int64     `json:"id"`
	RoomID      int64     `json:"roomId"`
	VolunteerID int64     `json:"volunteerId"`
	CheckIn     time.Time `json:"checkIn"`
	CheckOut    time.Time `json:"checkOut"`
	Confirmed   bool      `json:"confirmed"`
}

func (h *Handler) listRooms(w http.ResponseWriter, r *http.Request) {
	eventID, ok := h.resolveEvent(w, r)
	if !ok {
		return
	}
	rooms, err := h.service.ListRooms(r.Context(), eventID)
	if err != nil {
		h.logger.Error("list rooms", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	items := make([]roomResponse, 0, len(rooms))
	for _, room := range rooms {
		items = append(items, roomResponse{
			ID: room.ID, Hotel: room.Hotel, Name: room.Name,
			Capacity: room.Capacity, PriceCents: room.PriceCents,
		})
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"rooms": items})
}

type createRoomRequest struct {
	Hotel      string `json:"hotel" validate:"required"`
	Name       string `json:"name" validate:"required"`
	Capacity   int    `json:"capacity" validate:"required,min=1,max=8"`
	PriceCents int    `json:"priceCents" validate:"min=0"`
}

func (h *Handler) createRoom(w http.ResponseWriter, r *http.Request) {
	eventID, ok := h.resolveEvent(w, r)
	if !ok {
		return
	}
	var req createRoomRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	room, err := h.service.CreateRoom(r.Context(), currentUserID(r), Room{
		EventID: eventID, Hotel: req.Hotel, Name: req.Name,
		Capacity: req.Capacity, PriceCents: req.PriceCents,
	})
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	httpx.JSON(w, http.StatusCreated, roomResponse{
		ID: room.ID, Hotel: room.Hotel, Name: room.Name,
		Capacity: room.Capacity, PriceCents: room.PriceCents,
	})
}

func (h *Handler) deleteRoom(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid room id")
		return
	}
	if err := h.service.DeleteRoom(r.Context(), currentUserID(r), id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "room not found or still booked")
			return
		}
		h.logger.Error("delete room", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type bookRequest struct {
	RoomID   int64     `json:"roomId" validate:"required"`
	CheckIn  time.Time `json:"checkIn" validate:"required"`
	CheckOut time.Time `json:"checkOut" validate:"required"`
}

func (h *Handler) book(w http.ResponseWriter, r *http.Request) {
	var req bookRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	booking, err := h.service.Book(r.Context(), currentUserID(r), Booking{
		RoomID: req.RoomID, CheckIn: req.CheckIn, CheckOut: req.CheckOut,
	})
	if err != nil {
		switch {
		case errors.Is(err, shared.ErrNotFound):
			httpx.Problem(w, http.StatusNotFound, "Not Found", "room not found")
		case errors.Is(err, ErrInvalidStay):
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
		case errors.Is(err, ErrRoomFull), errors.Is(err, ErrRoomUnavailable):
			httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
		default:
			h.logger.Error("book room", slog.Any("error", err))
			httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		}
		return
	}
	httpx.JSON(w, http.StatusCreated, bookingResponse{
		ID: booking.ID, RoomID: booking.RoomID, VolunteerID: booking.VolunteerID,
		CheckIn: booking.CheckIn, CheckOut: booking.CheckOut, Confirmed: booking.Confirmed,
	})
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid booking id")
		return
	}
	if err := h.service.Cancel(r.Context(), currentUserID(r), id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "booking not found")
			return
		}
		h.logger.Error("cancel booking", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listBookings(w http.ResponseWriter, r *http.Request) {
	eventID, ok := h.resolveEvent(w, r)
	if !ok {
		return
	}
	bookings, err := h.service.Bookings(r.Context(), eventID)
	if err != nil {
		h.logger.Error("list bookings", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	items := make([]bookingResponse, 0, len(bookings))
	for _, booking := range bookings {
		items = append(items, bookingResponse{
			ID: booking.ID, RoomID: booking.RoomID, VolunteerID: booking.VolunteerID,
			CheckIn: booking.CheckIn, CheckOut: booking.CheckOut, Confirmed: booking.Confirmed,
		})
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"bookings": items})
}

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
