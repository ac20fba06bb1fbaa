package featureflag

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

const (
	// CategoryFeatureFlag marks config rows that act as boolean flags
	CategoryFeatureFlag = "feature_flag"

	// KeyDomainMutations is the global kill switch for domain writes
	KeyDomainMutations = "ENABLE_DOMAIN_MUTATIONS"
)

// ValueType hints how config_value should be read by clients
type ValueType string

const (
	ValueTypeString  ValueType = "string"
	ValueTypeBoolean ValueType = "boolean"
	ValueTypeNumber  ValueType = "number"
	ValueTypeJSON    ValueType = "json"
)

// ConfigEntry is one row of system_configs
type ConfigEntry struct {
	Category    string         `db:"category"`
	Key         string         `db:"config_key"`
	Value       string         `db:"config_value"`
	ValueType   ValueType      `db:"value_type"`
	Description sql.NullString `db:"description"`
	UpdatedBy   uuid.NullUUID  `db:"updated_by"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

// Enabled decodes a flag value. Only the exact string "true" enables.
func (e *ConfigEntry) Enabled() bool {
	return e.Value == "true"
}

func flagValue(enabled bool) string {
	if enabled {
		return "true"
	}
	return "false"
}
