package trilha

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/celulas/celulas-api/internal/domain/user"
	"github.com/celulas/celulas-api/internal/middleware"
	"github.com/celulas/celulas-api/internal/pkg/errorhandler"
	"github.com/celulas/celulas-api/internal/pkg/response"
	"github.com/celulas/celulas-api/internal/pkg/validator"
)

// Handler handles trilha HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates trilha handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// List handles GET /trilhas
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	trilhas, err := h.service.ListTrilhas(r.Context(), middleware.GetUser(r.Context()))
	if err != nil {
		errorhandler.Internal(r.Context(), w, "trilha.list", err)
		return
	}

	items := make([]*TrilhaResponse, len(trilhas))
	for i, t := range trilhas {
		items[i] = TrilhaResponseFromEntity(t)
	}
	response.OK(w, items)
}

// ListSolicitacoes handles GET /trilhas/{id}/solicitacoes?status=
func (h *Handler) ListSolicitacoes(w http.ResponseWriter, r *http.Request) {
	trilhaID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid trilha ID")
		return
	}

	var status Status
	if raw := r.URL.Query().Get("status"); raw != "" {
		parsed, ok := ParseStatus(raw)
		if !ok {
			response.ValidationError(w, map[string]string{"status": "Invalid status. Must be: PENDENTE, APROVADA, or REJEITADA"})
			return
		}
		status = parsed
	}

	items, err := h.service.ListSolicitacoes(r.Context(), middleware.GetUser(r.Context()), trilhaID, status)
	if err != nil {
		h.writeError(w, r, "trilha.solicitacoes.list", err)
		return
	}

	resp := make([]*SolicitacaoResponse, len(items))
	for i, s := range items {
		resp[i] = SolicitacaoResponseFromEntity(s)
	}
	response.OK(w, resp)
}

// CreateSolicitacao handles POST /trilhas/{id}/solicitacoes
func (h *Handler) CreateSolicitacao(w http.ResponseWriter, r *http.Request) {
	trilhaID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid trilha ID")
		return
	}

	var req CreateSolicitacaoRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	in := CreateInput{
		TrilhaID:   trilhaID,
		AreaID:     uuid.MustParse(req.AreaID),
		Observacao: req.Observacao,
	}
	if req.UsuarioID != "" {
		in.UsuarioID = uuid.MustParse(req.UsuarioID)
	}

	sol, err := h.service.Create(r.Context(), middleware.GetUser(r.Context()), in)
	if err != nil {
		h.writeError(w, r, "trilha.solicitacoes.create", err)
		return
	}

	response.Created(w, SolicitacaoResponseFromEntity(sol))
}

// UpdateStatus handles PATCH /trilhas/{id}/solicitacoes/{solicitacaoID}
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	trilhaID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid trilha ID")
		return
	}
	solicitacaoID, err := uuid.Parse(chi.URLParam(r, "solicitacaoID"))
	if err != nil {
		response.BadRequest(w, "Invalid solicitacao ID")
		return
	}

	var req UpdateStatusRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	sol, err := h.service.UpdateStatus(r.Context(), middleware.GetUser(r.Context()), UpdateStatusInput{
		TrilhaID:      trilhaID,
		SolicitacaoID: solicitacaoID,
		Status:        Status(req.Status),
		Observacao:    req.Observacao,
	})
	if err != nil {
		h.writeError(w, r, "trilha.solicitacoes.update_status", err)
		return
	}

	response.OK(w, SolicitacaoResponseFromEntity(sol))
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, ErrForbidden):
		response.Forbidden(w, "Insufficient permissions")
	case errors.Is(err, ErrTrilhaNotFound):
		response.NotFound(w, "Trilha not found")
	case errors.Is(err, ErrSolicitacaoNotFound):
		response.NotFound(w, "Solicitacao not found")
	case errors.Is(err, ErrAreaNotFound):
		response.ValidationError(w, map[string]string{"area_id": "Unknown area"})
	case errors.Is(err, ErrUsuarioNotFound):
		response.ValidationError(w, map[string]string{"usuario_id": "Unknown member"})
	case errors.Is(err, ErrInvalidStatus):
		response.ValidationError(w, map[string]string{"status": "Invalid status"})
	default:
		errorhandler.Internal(r.Context(), w, op, err)
	}
}

// Routes returns trilha router; writes go through gate
func (h *Handler) Routes(gate func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.With(middleware.Label("trilhas.list")).Get("/", h.List)
	r.With(middleware.Label("trilhas.solicitacoes.list")).Get("/{id}/solicitacoes", h.ListSolicitacoes)

	r.Group(func(r chi.Router) {
		r.Use(gate)
		r.With(middleware.Label("trilhas.solicitacoes.create")).Post("/{id}/solicitacoes", h.CreateSolicitacao)
		r.With(middleware.Label("trilhas.solicitacoes.update_status"), middleware.RequireRoles(user.RoleSupervisor, user.RolePastor)).
			Patch("/{id}/solicitacoes/{solicitacaoID}", h.UpdateStatus)
	})

	return r
}
