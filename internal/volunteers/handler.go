package volunteers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/animecon/volunteer-manager/internal/access"
	"github.com/animecon/volunteer-manager/internal/platform/httpx"
	"github.com/animecon/volunteer-manager/internal/shared"
)

// Handler exposes volunteer administration endpoints.
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

// MountRoutes registers volunteer administration routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireOperation(access.PermVolunteerAccounts, access.OperationRead))
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireOperation(access.PermVolunteerAccounts, access.OperationUpdate))
		r.Put("/{id}", h.updateProfile)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.Require(access.PermVolunteerPermissions))
		r.Put("/{id}/permissions", h.updatePermissions)
	})
}

type volunteerResponse struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Phone    string `json:"phone,omitempty"`
	Grants   string `json:"grants,omitempty"`
	IsActive bool   `json:"isActive"`
}

func toResponse(v Volunteer) volunteerResponse {
	return volunteerResponse{
		ID:       v.ID,
		Email:    v.Email,
		Name:     v.Name,
		Phone:    v.Phone,
		Grants:   v.Grants,
		IsActive: v.IsActive,
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page, _ := strconv.Atoi(query.Get("page"))
	perPage, _ := strconv.Atoi(query.Get("per_page"))
	filter := ListFilter{Search: query.Get("q"), Page: page, PerPage: perPage}

	result, pagination, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("list volunteers", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	items := make([]volunteerResponse, 0, len(result))
	for _, v := range result {
		items = append(items, toResponse(v))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"volunteers": items,
		"pagination": pagination,
	})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid volunteer id")
		return
	}
	volunteer, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "volunteer not found")
			return
		}
		h.logger.Error("get volunteer", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(volunteer))
}

type updateProfileRequest struct {
	Name  string `json:"name" validate:"required,min=2"`
	Phone string `json:"phone" validate:"omitempty,min=6"`
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid volunteer id")
		return
	}
	var req updateProfileRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	volunteer, err := h.service.UpdateProfile(r.Context(), currentUserID(r), id, req.Name, req.Phone)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "volunteer not found")
			return
		}
		h.logger.Error("update volunteer", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(volunteer))
}

func (h *Handler) updatePermissions(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid volunteer id")
		return
	}
	var tree access.Tree
	if err := httpx.DecodeJSON(r, &tree); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "permissions must be a nested object of booleans")
		return
	}
	grants, err := h.service.UpdatePermissions(r.Context(), currentUserID(r), id, &tree)
	if err != nil {
		switch {
		case errors.Is(err, access.ErrMalformedTree):
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
		case errors.Is(err, access.ErrRestricted):
			httpx.Problem(w, http.StatusForbidden, "Forbidden", err.Error())
		case errors.Is(err, shared.ErrNotFound):
			httpx.Problem(w, http.StatusNotFound, "Not Found", "volunteer not found")
		default:
			h.logger.Error("update permissions", slog.Any("error", err))
			httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		}
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"grants": grants})
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func currentUserID(r *http.Request) int64 {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		return 0
	}
	id, _ := strconv.ParseInt(sess.User(), 10, 64)
	return id
}
