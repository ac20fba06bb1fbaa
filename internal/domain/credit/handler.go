package credit

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/celulas/celulas-api/internal/domain/user"
	"github.com/celulas/celulas-api/internal/middleware"
	"github.com/celulas/celulas-api/internal/pkg/errorhandler"
	"github.com/celulas/celulas-api/internal/pkg/response"
	"github.com/celulas/celulas-api/internal/pkg/validator"
)

// UserLookup loads the target of an admin balance operation
type UserLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
}

// Handler handles credit HTTP requests
type Handler struct {
	service *Service
	users   UserLookup
}

// NewHandler creates credit handler
func NewHandler(service *Service, users UserLookup) *Handler {
	return &Handler{service: service, users: users}
}

// Me handles GET /credits/me
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	u := middleware.GetUser(r.Context())

	balance, err := h.service.GetOrCreateBalance(r.Context(), u.ID)
	if err != nil {
		errorhandler.Internal(r.Context(), w, "credit.me", err)
		return
	}

	response.OK(w, MyCreditsResponse{
		Enabled: h.service.AreCreditsEnabled(),
		Balance: BalanceResponseFromEntity(balance),
	})
}

// History handles GET /credits/me/history?limit=&offset=
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	u := middleware.GetUser(r.Context())
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if limit > 100 {
		limit = 100
	}

	entries, err := h.service.ListHistory(r.Context(), u.ID, limit, offset)
	if err != nil {
		errorhandler.Internal(r.Context(), w, "credit.history", err)
		return
	}

	items := make([]*UsageEntryResponse, len(entries))
	for i, e := range entries {
		items[i] = UsageEntryResponseFromEntity(e)
	}
	response.OK(w, items)
}

// Costs handles GET /credits/costs
func (h *Handler) Costs(w http.ResponseWriter, r *http.Request) {
	costs, err := h.service.ListFeatureCosts(r.Context())
	if err != nil {
		errorhandler.Internal(r.Context(), w, "credit.costs", err)
		return
	}

	response.OK(w, map[string]interface{}{
		"enabled": h.service.AreCreditsEnabled(),
		"costs":   costs,
	})
}

// Validate handles POST /credits/validate
func (h *Handler) Validate(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeFeature(w, r)
	if !ok {
		return
	}

	validation, err := h.service.ValidateCredits(r.Context(), middleware.GetUser(r.Context()).ID, req.Feature)
	if err != nil {
		h.writeChargeError(w, r, "credit.validate", err)
		return
	}

	response.OK(w, validation)
}

// Consume handles POST /credits/consume
func (h *Handler) Consume(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeFeature(w, r)
	if !ok {
		return
	}
	u := middleware.GetUser(r.Context())

	validation, balance, err := h.service.ConsumeFeature(r.Context(), u.ID, req.Feature)
	if err != nil {
		h.writeChargeError(w, r, "credit.consume", err)
		return
	}

	resp := ConsumeResponse{Feature: req.Feature, Enabled: validation.Enabled}
	if balance != nil {
		resp.CreditsCharged = validation.CreditsRequired
		resp.CreditsRemaining = balance.CreditsRemaining
		resp.MetadataSynced = h.service.SyncBalance(r.Context(), u.ExternalID, balance)
	}
	response.OK(w, resp)
}

func decodeFeature(w http.ResponseWriter, r *http.Request) (*FeatureRequest, bool) {
	var req FeatureRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return nil, false
	}
	if errs := validator.Validate(req); errs != nil {
		errorhandler.LogValidationError(r.Context(), errs)
		response.ValidationError(w, errs)
		return nil, false
	}
	return &req, true
}

func (h *Handler) writeChargeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	var insufficient *InsufficientCreditsError
	switch {
	case errors.As(err, &insufficient):
		response.PaymentRequired(w, "Insufficient credits", map[string]string{
			"feature":           insufficient.Feature,
			"credits_remaining": strconv.Itoa(insufficient.CreditsRemaining),
			"credits_required":  strconv.Itoa(insufficient.CreditsRequired),
		})
	case errors.Is(err, ErrUnknownFeature):
		response.NotFound(w, "Unknown feature")
	default:
		errorhandler.Internal(r.Context(), w, op, err)
	}
}

// AdminGetBalance handles GET /admin/credits/{id}
func (h *Handler) AdminGetBalance(w http.ResponseWriter, r *http.Request) {
	target, ok := h.targetUser(w, r)
	if !ok {
		return
	}

	balance, err := h.service.GetOrCreateBalance(r.Context(), target.ID)
	if err != nil {
		errorhandler.Internal(r.Context(), w, "credit.admin.get", err)
		return
	}

	response.OK(w, BalanceResponseFromEntity(balance))
}

// AdminAdjust handles PATCH /admin/credits/{id}
func (h *Handler) AdminAdjust(w http.ResponseWriter, r *http.Request) {
	target, ok := h.targetUser(w, r)
	if !ok {
		return
	}

	var req AdminAdjustRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(req); errs != nil {
		response.ValidationError(w, errs)
		return
	}
	if (req.Delta == nil) == (req.SetTo == nil) {
		response.ValidationError(w, map[string]string{"delta": "Provide exactly one of delta or set_to"})
		return
	}
	if req.SetTo != nil && (math.IsNaN(*req.SetTo) || math.IsInf(*req.SetTo, 0)) {
		response.ValidationError(w, map[string]string{"set_to": "Must be a finite number"})
		return
	}

	ctx := r.Context()
	adminID := actorID(r)

	balance, err := h.service.GetOrCreateBalance(ctx, target.ID)
	if err != nil {
		errorhandler.Internal(ctx, w, "credit.admin.adjust", err)
		return
	}

	if req.Delta != nil {
		balance, err = h.service.Adjust(ctx, balance.ID, *req.Delta, AdminAdjustment{
			Delta:   *req.Delta,
			AdminID: adminID,
			Reason:  req.Reason,
		})
	} else {
		balance, err = h.service.SetAbsolute(ctx, balance.ID, *req.SetTo, AbsoluteSet{
			AdminID: adminID,
			Reason:  req.Reason,
		})
	}
	if err != nil {
		if errors.Is(err, ErrDeltaOutOfRange) {
			response.ValidationError(w, map[string]string{"delta": "Out of range"})
			return
		}
		errorhandler.Internal(ctx, w, "credit.admin.adjust", err)
		return
	}

	response.OK(w, AdjustResponse{
		Balance:        BalanceResponseFromEntity(balance),
		MetadataSynced: h.service.SyncBalance(ctx, target.ExternalID, balance),
	})
}

// AdminGetCosts handles GET /admin/credits/costs
func (h *Handler) AdminGetCosts(w http.ResponseWriter, r *http.Request) {
	h.Costs(w, r)
}

// AdminUpdateCosts handles PUT /admin/credits/costs
func (h *Handler) AdminUpdateCosts(w http.ResponseWriter, r *http.Request) {
	var req UpdateCostsRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	costs, err := h.service.UpdateFeatureCosts(r.Context(), req.Costs, actorID(r))
	if err != nil {
		if errors.Is(err, ErrInvalidCost) {
			response.BadRequest(w, err.Error())
			return
		}
		errorhandler.Internal(r.Context(), w, "credit.admin.costs", err)
		return
	}

	response.OK(w, costs)
}

// AdminUpdatePlans handles PUT /admin/credits/plans
func (h *Handler) AdminUpdatePlans(w http.ResponseWriter, r *http.Request) {
	var req UpdatePlansRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	plans, err := h.service.UpdatePlanCredits(r.Context(), req.Plans, actorID(r))
	if err != nil {
		if errors.Is(err, ErrInvalidCost) {
			response.BadRequest(w, err.Error())
			return
		}
		errorhandler.Internal(r.Context(), w, "credit.admin.plans", err)
		return
	}

	response.OK(w, plans)
}

func (h *Handler) targetUser(w http.ResponseWriter, r *http.Request) (*user.User, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid user ID")
		return nil, false
	}

	target, err := h.users.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			response.NotFound(w, "User not found")
			return nil, false
		}
		errorhandler.Internal(r.Context(), w, "credit.admin.user", err)
		return nil, false
	}
	return target, true
}

// Routes returns the member-facing credit router; expects ResolveUser upstream.
// gate guards the charging endpoint only.
func (h *Handler) Routes(gate func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.With(middleware.Label("credits.me")).Get("/me", h.Me)
	r.With(middleware.Label("credits.history")).Get("/me/history", h.History)
	r.With(middleware.Label("credits.costs")).Get("/costs", h.Costs)
	r.With(middleware.Label("credits.validate")).Post("/validate", h.Validate)
	r.With(middleware.Label("credits.consume"), gate).Post("/consume", h.Consume)

	return r
}

// RegisterAdminRoutes adds the credit console endpoints to an admin-gated router
func (h *Handler) RegisterAdminRoutes(r chi.Router) {
	r.Route("/credits", func(r chi.Router) {
		r.With(middleware.Label("admin.credits.costs")).Get("/costs", h.AdminGetCosts)
		r.With(middleware.Label("admin.credits.costs.update")).Put("/costs", h.AdminUpdateCosts)
		r.With(middleware.Label("admin.credits.plans.update")).Put("/plans", h.AdminUpdatePlans)
		r.With(middleware.Label("admin.credits.get")).Get("/{id}", h.AdminGetBalance)
		r.With(middleware.Label("admin.credits.adjust")).Patch("/{id}", h.AdminAdjust)
	})
}

func actorID(r *http.Request) uuid.UUID {
	if u := middleware.GetUser(r.Context()); u != nil {
		return u.ID
	}
	return uuid.Nil
}
