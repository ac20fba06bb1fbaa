package credit

import (
	"time"
)

// FeatureRequest is the body of POST /credits/validate and /credits/consume
type FeatureRequest struct {
	Feature string `json:"feature" validate:"required,feature_key"`
}

// AdminAdjustRequest is the body of PATCH /admin/credits/{id}.
// Exactly one of Delta and SetTo must be present.
type AdminAdjustRequest struct {
	Delta  *int     `json:"delta,omitempty" validate:"omitempty,min=-2147483647,max=2147483647"`
	SetTo  *float64 `json:"set_to,omitempty"`
	Reason string   `json:"reason" validate:"required,max=500"`
}

// UpdateCostsRequest is the body of PUT /admin/credits/costs
type UpdateCostsRequest struct {
	Costs map[string]float64 `json:"costs" validate:"required,min=1,dive,keys,feature_key,endkeys,gte=0"`
}

// UpdatePlansRequest is the body of PUT /admin/credits/plans
type UpdatePlansRequest struct {
	Plans map[string]int `json:"plans" validate:"required,min=1,dive,keys,required,max=100,endkeys,gte=0"`
}

// BalanceResponse for API
type BalanceResponse struct {
	ID               string  `json:"id"`
	UserID           string  `json:"user_id"`
	CreditsRemaining int     `json:"credits_remaining"`
	CreditsTotal     int     `json:"credits_total"`
	PlanID           *string `json:"plan_id,omitempty"`
	LastSyncedAt     *string `json:"last_synced_at,omitempty"`
	UpdatedAt        string  `json:"updated_at"`
}

// BalanceResponseFromEntity converts entity to response
func BalanceResponseFromEntity(b *Balance) *BalanceResponse {
	resp := &BalanceResponse{
		ID:               b.ID.String(),
		UserID:           b.UserID.String(),
		CreditsRemaining: b.CreditsRemaining,
		CreditsTotal:     b.CreditsTotal,
		UpdatedAt:        b.UpdatedAt.Format(time.RFC3339),
	}
	if b.PlanID.Valid {
		resp.PlanID = &b.PlanID.String
	}
	if b.LastSyncedAt.Valid {
		synced := b.LastSyncedAt.Time.Format(time.RFC3339)
		resp.LastSyncedAt = &synced
	}
	return resp
}

// MyCreditsResponse is returned by GET /credits/me
type MyCreditsResponse struct {
	Enabled bool             `json:"enabled"`
	Balance *BalanceResponse `json:"balance"`
}

// AdjustResponse is returned by admin balance changes
type AdjustResponse struct {
	Balance        *BalanceResponse `json:"balance"`
	MetadataSynced bool             `json:"metadata_synced"`
}

// ConsumeResponse is returned by POST /credits/consume
type ConsumeResponse struct {
	Feature          string `json:"feature"`
	CreditsCharged   int    `json:"credits_charged"`
	CreditsRemaining int    `json:"credits_remaining"`
	Enabled          bool   `json:"enabled"`
	MetadataSynced   bool   `json:"metadata_synced"`
}

// UsageEntryResponse for API
type UsageEntryResponse struct {
	ID          string        `json:"id"`
	Operation   string        `json:"operation"`
	CreditsUsed int           `json:"credits_used"`
	Details     DetailsColumn `json:"details"`
	CreatedAt   string        `json:"created_at"`
}

// UsageEntryResponseFromEntity converts entity to response
func UsageEntryResponseFromEntity(e *UsageEntry) *UsageEntryResponse {
	return &UsageEntryResponse{
		ID:          e.ID.String(),
		Operation:   string(e.Operation),
		CreditsUsed: e.CreditsUsed,
		Details:     e.Details,
		CreatedAt:   e.CreatedAt.Format(time.RFC3339),
	}
}
