package convite

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/celulas/celulas-api/internal/middleware"
	"github.com/celulas/celulas-api/internal/pkg/errorhandler"
	"github.com/celulas/celulas-api/internal/pkg/response"
	"github.com/celulas/celulas-api/internal/pkg/validator"
)

// Handler handles invitation HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates convite handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Create handles POST /convites
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(req); errs != nil {
		errorhandler.LogValidationError(r.Context(), errs)
		response.ValidationError(w, errs)
		return
	}

	in := CreateInput{
		Email: req.Email,
		TTL:   time.Duration(req.ExpiraEmHoras) * time.Hour,
	}
	if req.CelulaID != "" {
		id := uuid.MustParse(req.CelulaID)
		in.CelulaID = &id
	}

	c, err := h.service.Create(r.Context(), middleware.GetUser(r.Context()), in)
	if err != nil {
		h.writeError(w, r, "convites.create", err)
		return
	}
	response.Created(w, ConviteResponseFromEntity(c))
}

// ListMine handles GET /convites
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListMine(r.Context(), middleware.GetUser(r.Context()))
	if err != nil {
		errorhandler.Internal(r.Context(), w, "convites.list", err)
		return
	}

	resp := make([]*ConviteResponse, len(items))
	for i, c := range items {
		resp[i] = ConviteResponseFromEntity(c)
	}
	response.OK(w, resp)
}

// Open handles the public GET /convites/{token}
func (h *Handler) Open(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.Open(r.Context(), chi.URLParam(r, "token"))
	if err != nil {
		h.writeError(w, r, "convites.open", err)
		return
	}
	response.OK(w, PublicConviteResponseFromEntity(c))
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, ErrConviteNotFound):
		response.NotFound(w, "Invitation not found")
	case errors.Is(err, ErrConviteExpirado):
		response.Gone(w, "Invitation expired")
	case errors.Is(err, ErrForbidden):
		response.Forbidden(w, "Insufficient permissions")
	case errors.Is(err, ErrSemIgreja):
		response.Forbidden(w, "User is not linked to a church")
	case errors.Is(err, ErrCelulaNotFound):
		response.ValidationError(w, map[string]string{"celula_id": "Unknown cell"})
	default:
		errorhandler.Internal(r.Context(), w, op, err)
	}
}

// Routes returns the authenticated convite router; creation goes through gate
func (h *Handler) Routes(gate func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.With(middleware.Label("convites.list")).Get("/", h.ListMine)
	r.With(middleware.Label("convites.create"), middleware.RequireLeader(), gate).Post("/", h.Create)

	return r
}

// PublicRoutes registers the unauthenticated invitation lookup on r
func (h *Handler) PublicRoutes(r chi.Router) {
	r.With(middleware.Label("convites.open")).Get("/convites/{token}", h.Open)
}
