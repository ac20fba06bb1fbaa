package leitura

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/celulas/celulas-api/internal/middleware"
	"github.com/celulas/celulas-api/internal/pkg/errorhandler"
	"github.com/celulas/celulas-api/internal/pkg/response"
	"github.com/celulas/celulas-api/internal/pkg/validator"
)

// Handler handles reading plan HTTP requests
type Handler struct {
	service *Service
}

// NewHandler creates leitura handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// ListPlanos handles GET /leitura/planos
func (h *Handler) ListPlanos(w http.ResponseWriter, r *http.Request) {
	planos, err := h.service.ListPlanos(r.Context())
	if err != nil {
		errorhandler.Internal(r.Context(), w, "leitura.planos.list", err)
		return
	}

	items := make([]*PlanoResponse, len(planos))
	for i, p := range planos {
		items[i] = PlanoResponseFromEntity(p)
	}
	response.OK(w, items)
}

// ListMetas handles GET /leitura/metas
func (h *Handler) ListMetas(w http.ResponseWriter, r *http.Request) {
	metas, err := h.service.ListMetas(r.Context(), middleware.GetUser(r.Context()))
	if err != nil {
		errorhandler.Internal(r.Context(), w, "leitura.metas.list", err)
		return
	}

	items := make([]*MetaResponse, len(metas))
	for i, m := range metas {
		items[i] = MetaResponseFromEntity(m)
	}
	response.OK(w, items)
}

// IniciarMeta handles POST /leitura/metas
func (h *Handler) IniciarMeta(w http.ResponseWriter, r *http.Request) {
	var req IniciarMetaRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(req); errs != nil {
		errorhandler.LogValidationError(r.Context(), errs)
		response.ValidationError(w, errs)
		return
	}

	meta, err := h.service.IniciarMeta(r.Context(), middleware.GetUser(r.Context()), uuid.MustParse(req.PlanoID))
	if err != nil {
		h.writeError(w, r, "leitura.metas.create", err)
		return
	}
	response.Created(w, MetaResponseFromEntity(meta))
}

// RegistrarLeitura handles POST /leitura/metas/{id}/registros
func (h *Handler) RegistrarLeitura(w http.ResponseWriter, r *http.Request) {
	metaID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid meta ID")
		return
	}

	var req RegistroRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(req); errs != nil {
		errorhandler.LogValidationError(r.Context(), errs)
		response.ValidationError(w, errs)
		return
	}

	meta, err := h.service.RegistrarLeitura(r.Context(), middleware.GetUser(r.Context()), metaID, RegistroInput{
		Livro:    req.Livro,
		Capitulo: req.Capitulo,
		LidoEm:   req.LidoEm,
	})
	if err != nil {
		h.writeError(w, r, "leitura.registros.create", err)
		return
	}
	response.Created(w, MetaResponseFromEntity(meta))
}

// ListRegistros handles GET /leitura/metas/{id}/registros?limit=
func (h *Handler) ListRegistros(w http.ResponseWriter, r *http.Request) {
	metaID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid meta ID")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit > 200 {
		limit = 200
	}

	regs, err := h.service.ListRegistros(r.Context(), middleware.GetUser(r.Context()), metaID, limit)
	if err != nil {
		h.writeError(w, r, "leitura.registros.list", err)
		return
	}

	items := make([]*RegistroResponse, len(regs))
	for i, reg := range regs {
		items[i] = RegistroResponseFromEntity(reg)
	}
	response.OK(w, items)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, ErrPlanoNotFound):
		response.NotFound(w, "Reading plan not found")
	case errors.Is(err, ErrMetaNotFound):
		response.NotFound(w, "Reading goal not found")
	case errors.Is(err, ErrMetaExists):
		response.Conflict(w, "Reading goal already started for this plan")
	case errors.Is(err, ErrMetaConcluida):
		response.Conflict(w, "Reading goal already completed")
	case errors.Is(err, ErrLidoNoFuturo):
		response.ValidationError(w, map[string]string{"lido_em": "Must not be in the future"})
	default:
		errorhandler.Internal(r.Context(), w, op, err)
	}
}

// Routes returns leitura router; writes go through gate
func (h *Handler) Routes(gate func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.With(middleware.Label("leitura.planos.list")).Get("/planos", h.ListPlanos)
	r.With(middleware.Label("leitura.metas.list")).Get("/metas", h.ListMetas)
	r.With(middleware.Label("leitura.registros.list")).Get("/metas/{id}/registros", h.ListRegistros)

	r.Group(func(r chi.Router) {
		r.Use(gate)
		r.With(middleware.Label("leitura.metas.create")).Post("/metas", h.IniciarMeta)
		r.With(middleware.Label("leitura.registros.create")).Post("/metas/{id}/registros", h.RegistrarLeitura)
	})

	return r
}
