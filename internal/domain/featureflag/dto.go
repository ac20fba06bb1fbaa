package featureflag

import (
	"time"
)

// SetFlagRequest is the body of PUT /admin/feature-flags/{key}
type SetFlagRequest struct {
	Enabled     *bool   `json:"enabled" validate:"required"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
}

// UpsertConfigRequest is the body of PUT /admin/configs
type UpsertConfigRequest struct {
	Category    string  `json:"category" validate:"required,max=100"`
	Key         string  `json:"key" validate:"required,max=100"`
	Value       string  `json:"value" validate:"max=10000"`
	ValueType   string  `json:"value_type" validate:"omitempty,oneof=string boolean number json"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
}

// ConfigResponse for API
type ConfigResponse struct {
	Category    string  `json:"category"`
	Key         string  `json:"key"`
	Value       string  `json:"value"`
	ValueType   string  `json:"value_type"`
	Description *string `json:"description,omitempty"`
	UpdatedBy   *string `json:"updated_by,omitempty"`
	UpdatedAt   string  `json:"updated_at"`
}

// ConfigResponseFromEntity converts entity to response
func ConfigResponseFromEntity(e *ConfigEntry) *ConfigResponse {
	resp := &ConfigResponse{
		Category:  e.Category,
		Key:       e.Key,
		Value:     e.Value,
		ValueType: string(e.ValueType),
		UpdatedAt: e.UpdatedAt.Format(time.RFC3339),
	}
	if e.Description.Valid {
		resp.Description = &e.Description.String
	}
	if e.UpdatedBy.Valid {
		id := e.UpdatedBy.UUID.String()
		resp.UpdatedBy = &id
	}
	return resp
}
