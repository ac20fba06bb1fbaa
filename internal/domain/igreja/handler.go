package igreja

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/celulas/celulas-api/internal/middleware"
	"github.com/celulas/celulas-api/internal/pkg/errorhandler"
	"github.com/celulas/celulas-api/internal/pkg/response"
	"github.com/celulas/celulas-api/internal/pkg/validator"
)

// Handler handles church HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates igreja handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Minha returns the caller's church
// GET /igrejas/me
func (h *Handler) Minha(w http.ResponseWriter, r *http.Request) {
	ig, err := h.service.Minha(r.Context(), middleware.GetUser(r.Context()))
	if err != nil {
		h.writeError(w, r, "igrejas.me", err)
		return
	}
	response.OK(w, ToIgrejaResponse(ig))
}

// ListCelulas returns the caller's church cells
// GET /igrejas/me/celulas
func (h *Handler) ListCelulas(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListCelulas(r.Context(), middleware.GetUser(r.Context()))
	if err != nil {
		h.writeError(w, r, "igrejas.celulas.list", err)
		return
	}

	resp := make([]*CelulaResponse, len(items))
	for i, c := range items {
		resp[i] = ToCelulaResponse(c)
	}
	response.OK(w, resp)
}

// CreateCelula opens a cell
// POST /igrejas/me/celulas
func (h *Handler) CreateCelula(w http.ResponseWriter, r *http.Request) {
	var req CreateCelulaRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(req); errs != nil {
		errorhandler.LogValidationError(r.Context(), errs)
		response.ValidationError(w, errs)
		return
	}

	in := CreateCelulaInput{
		Nome:      req.Nome,
		DiaSemana: DiaSemana(req.DiaSemana),
		Horario:   req.Horario,
	}
	if req.AreaID != "" {
		id := uuid.MustParse(req.AreaID)
		in.AreaID = &id
	}
	if req.LiderID != "" {
		id := uuid.MustParse(req.LiderID)
		in.LiderID = &id
	}

	c, err := h.service.CreateCelula(r.Context(), middleware.GetUser(r.Context()), in)
	if err != nil {
		h.writeError(w, r, "igrejas.celulas.create", err)
		return
	}
	response.Created(w, ToCelulaResponse(c))
}

// ListMembros returns a page of the caller's church members
// GET /igrejas/me/membros?page=&limit=
func (h *Handler) ListMembros(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > 100 {
		limit = 20
	}

	items, total, err := h.service.ListMembros(r.Context(), middleware.GetUser(r.Context()), limit, (page-1)*limit)
	if err != nil {
		h.writeError(w, r, "igrejas.membros.list", err)
		return
	}

	resp := make([]*MembroResponse, len(items))
	for i, m := range items {
		resp[i] = ToMembroResponse(m)
	}
	pages := (total + limit - 1) / limit
	response.WithMeta(w, resp, response.Meta{
		Total:   total,
		Page:    page,
		Limit:   limit,
		Pages:   pages,
		HasNext: page < pages,
		HasPrev: page > 1,
	})
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, ErrSemIgreja):
		response.NotFound(w, "User is not linked to a church")
	case errors.Is(err, ErrIgrejaNotFound):
		response.NotFound(w, "Church not found")
	case errors.Is(err, ErrForbidden):
		response.Forbidden(w, "Insufficient permissions")
	case errors.Is(err, ErrAreaNotFound):
		response.ValidationError(w, map[string]string{"area_id": "Unknown area"})
	case errors.Is(err, ErrLiderNotFound):
		response.ValidationError(w, map[string]string{"lider_id": "Unknown leader"})
	default:
		errorhandler.Internal(r.Context(), w, op, err)
	}
}
