package credit

import (
	"database/sql"
	"math"
	"time"

	"github.com/google/uuid"
)

// Operation names the kind of ledger event
type Operation string

const (
	OperationAdminAdjustment Operation = "admin_adjustment"
	OperationFeatureUsage    Operation = "feature_usage"
	OperationAbsoluteSet     Operation = "admin_set"
)

// MaxCredits is the ceiling for balances and single adjustments. The balance
// columns are 32-bit integers on Postgres.
const MaxCredits = math.MaxInt32

// Balance is the per-user credit counter. CreditsRemaining stays within
// [0, MaxCredits] and CreditsTotal saturates at MaxCredits.
type Balance struct {
	ID               uuid.UUID      `db:"id"`
	UserID           uuid.UUID      `db:"user_id"`
	CreditsRemaining int            `db:"credits_remaining"`
	CreditsTotal     int            `db:"credits_total"`
	PlanID           sql.NullString `db:"plan_id"`
	LastSyncedAt     sql.NullTime   `db:"last_synced_at"`
	CreatedAt        time.Time      `db:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at"`
}

// UsageEntry is an append-only ledger row. CreditsUsed is always |delta|.
type UsageEntry struct {
	ID          uuid.UUID     `db:"id"`
	UserID      uuid.UUID     `db:"user_id"`
	BalanceID   uuid.UUID     `db:"balance_id"`
	Operation   Operation     `db:"operation"`
	CreditsUsed int           `db:"credits_used"`
	Details     DetailsColumn `db:"details"`
	CreatedAt   time.Time     `db:"created_at"`
}

// Validation is the outcome of a successful credit check
type Validation struct {
	Feature          string `json:"feature"`
	CreditsRemaining int    `json:"credits_remaining"`
	CreditsRequired  int    `json:"credits_required"`
	Enabled          bool   `json:"enabled"`
}

// MirrorOptions carries the optional fields mirrored next to the balance
type MirrorOptions struct {
	CreditsTotal *int
	PlanID       *string
	LastSyncedAt *time.Time
}

// MetadataSnapshot is the provider-side view after a mirror
type MetadataSnapshot struct {
	CreditsRemaining int        `json:"creditsRemaining"`
	CreditsTotal     *int       `json:"creditsTotal,omitempty"`
	PlanID           *string    `json:"planId,omitempty"`
	LastSyncedAt     *time.Time `json:"lastSyncedAt,omitempty"`
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func clamp(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
