package admin

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/celulas/celulas-api/internal/domain/user"
	"github.com/celulas/celulas-api/internal/middleware"
	"github.com/celulas/celulas-api/internal/pkg/errorhandler"
	"github.com/celulas/celulas-api/internal/pkg/response"
	"github.com/celulas/celulas-api/internal/pkg/validator"
)

// Handler handles admin console HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates admin handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Dashboard handles GET /admin/dashboard
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.GetDashboardStats(r.Context())
	if err != nil {
		errorhandler.Internal(r.Context(), w, "admin.dashboard", err)
		return
	}
	response.OK(w, stats)
}

// ListUsers handles GET /admin/users?role=&igreja_id=&q=&page=&limit=
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit < 1 || limit > 100 {
		limit = 20
	}

	filter := UserFilter{Search: q.Get("q"), Limit: limit, Offset: (page - 1) * limit}
	if role := q.Get("role"); role != "" {
		if _, ok := user.ParseRole(role); !ok {
			response.ValidationError(w, map[string]string{"role": "Invalid role"})
			return
		}
		filter.Role = role
	}
	if raw := q.Get("igreja_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.ValidationError(w, map[string]string{"igreja_id": "Invalid identifier"})
			return
		}
		filter.IgrejaID = &id
	}

	users, total, err := h.service.ListUsers(r.Context(), filter)
	if err != nil {
		errorhandler.Internal(r.Context(), w, "admin.users.list", err)
		return
	}

	items := make([]*UserResponse, len(users))
	for i, u := range users {
		items[i] = userResponse(u)
	}
	pages := (total + limit - 1) / limit
	response.WithMeta(w, items, response.Meta{
		Total:   total,
		Page:    page,
		Limit:   limit,
		Pages:   pages,
		HasNext: page < pages,
		HasPrev: page > 1,
	})
}

// UpdateUser handles PATCH /admin/users/{id}
func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid user ID")
		return
	}

	var req UpdateUserRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(req); errs != nil {
		errorhandler.LogValidationError(r.Context(), errs)
		response.ValidationError(w, errs)
		return
	}

	upd := UserUpdate{IsAdmin: req.IsAdmin}
	if req.Role != nil {
		role := user.Role(*req.Role)
		upd.Role = &role
	}
	if req.IgrejaID != nil {
		id := uuid.MustParse(*req.IgrejaID)
		upd.IgrejaID = &id
	}

	var adminID uuid.UUID
	if actor := middleware.GetUser(r.Context()); actor != nil {
		adminID = actor.ID
	}

	u, err := h.service.UpdateUser(r.Context(), adminID, userID, upd)
	if err != nil {
		switch {
		case errors.Is(err, ErrNothingToApply):
			response.BadRequest(w, "Nothing to update")
		case errors.Is(err, ErrIgrejaNotFound):
			response.ValidationError(w, map[string]string{"igreja_id": "Unknown church"})
		case errors.Is(err, ErrUserNotFound), errors.Is(err, user.ErrUserNotFound):
			response.NotFound(w, "User not found")
		default:
			errorhandler.Internal(r.Context(), w, "admin.users.update", err)
		}
		return
	}
	response.OK(w, userResponse(u))
}

func userResponse(u *user.User) *UserResponse {
	resp := &UserResponse{
		ID:         u.ID.String(),
		ExternalID: u.ExternalID,
		Email:      u.Email,
		Name:       u.Name,
		Role:       string(u.Role),
		IsAdmin:    u.IsAdmin,
		CreatedAt:  u.CreatedAt.Format(time.RFC3339),
	}
	if id, ok := u.ChurchID(); ok {
		s := id.String()
		resp.IgrejaID = &s
	}
	return resp
}

// RegisterAdminRoutes mounts the console endpoints on an admin-only router
func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.With(middleware.Label("admin.dashboard")).Get("/dashboard", h.Dashboard)

	r.Route("/users", func(r chi.Router) {
		r.With(middleware.Label("admin.users.list")).Get("/", h.ListUsers)
		r.With(middleware.Label("admin.users.update")).Patch("/{id}", h.UpdateUser)
	})
}
