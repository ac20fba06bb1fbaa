package featureflag

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/celulas/celulas-api/internal/middleware"
	"github.com/celulas/celulas-api/internal/pkg/errorhandler"
	"github.com/celulas/celulas-api/internal/pkg/response"
	"github.com/celulas/celulas-api/internal/pkg/validator"
)

// Handler handles admin flag and config requests
type Handler struct {
	service *Service
}

// NewHandler creates feature flag handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// ListFlags handles GET /admin/feature-flags
func (h *Handler) ListFlags(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	if category == "" {
		category = CategoryFeatureFlag
	}

	flags, err := h.service.ListFlags(r.Context(), category)
	if err != nil {
		errorhandler.Internal(r.Context(), w, "featureflag.list", err)
		return
	}

	response.OK(w, flags)
}

// SetFlag handles PUT /admin/feature-flags/{key}
func (h *Handler) SetFlag(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	var req SetFlagRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	if err := h.service.SetFlag(r.Context(), key, *req.Enabled, req.Description, actorID(r)); err != nil {
		if errors.Is(err, ErrInvalidKey) {
			response.BadRequest(w, "Flag key is required")
			return
		}
		errorhandler.Internal(r.Context(), w, "featureflag.set", err)
		return
	}

	response.OK(w, map[string]interface{}{"key": key, "enabled": *req.Enabled})
}

// ListConfigs handles GET /admin/configs?category=
func (h *Handler) ListConfigs(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	if category == "" {
		response.ValidationError(w, map[string]string{"category": "This field is required"})
		return
	}

	entries, err := h.service.ListConfigs(r.Context(), category)
	if err != nil {
		errorhandler.Internal(r.Context(), w, "config.list", err)
		return
	}

	items := make([]*ConfigResponse, len(entries))
	for i, e := range entries {
		items[i] = ConfigResponseFromEntity(e)
	}
	response.OK(w, items)
}

// UpsertConfig handles PUT /admin/configs
func (h *Handler) UpsertConfig(w http.ResponseWriter, r *http.Request) {
	var req UpsertConfigRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	entry := &ConfigEntry{
		Category:  req.Category,
		Key:       req.Key,
		Value:     req.Value,
		ValueType: ValueType(req.ValueType),
	}
	if req.Description != nil {
		entry.Description = sql.NullString{String: *req.Description, Valid: true}
	}
	if id := actorID(r); id != uuid.Nil {
		entry.UpdatedBy = uuid.NullUUID{UUID: id, Valid: true}
	}

	if err := h.service.UpsertConfig(r.Context(), entry); err != nil {
		if errors.Is(err, ErrInvalidKey) {
			response.BadRequest(w, "Category and key are required")
			return
		}
		errorhandler.Internal(r.Context(), w, "config.upsert", err)
		return
	}

	response.OK(w, ConfigResponseFromEntity(entry))
}

// DeleteConfig handles DELETE /admin/configs/{category}/{key}
func (h *Handler) DeleteConfig(w http.ResponseWriter, r *http.Request) {
	err := h.service.DeleteConfig(r.Context(), chi.URLParam(r, "category"), chi.URLParam(r, "key"))
	if err != nil {
		if errors.Is(err, ErrConfigNotFound) {
			response.NotFound(w, "Config entry not found")
			return
		}
		errorhandler.Internal(r.Context(), w, "config.delete", err)
		return
	}

	response.NoContent(w)
}

// RegisterAdminRoutes adds the flag and config endpoints to an admin-gated router
func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Route("/feature-flags", func(r chi.Router) {
		r.With(middleware.Label("admin.flags.list")).Get("/", h.ListFlags)
		r.With(middleware.Label("admin.flags.set")).Put("/{key}", h.SetFlag)
	})

	r.Route("/configs", func(r chi.Router) {
		r.With(middleware.Label("admin.configs.list")).Get("/", h.ListConfigs)
		r.With(middleware.Label("admin.configs.upsert")).Put("/", h.UpsertConfig)
		r.With(middleware.Label("admin.configs.delete")).Delete("/{category}/{key}", h.DeleteConfig)
	})
}

func actorID(r *http.Request) uuid.UUID {
	if u := middleware.GetUser(r.Context()); u != nil {
		return u.ID
	}
	return uuid.Nil
}
