package credit

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/celulas/celulas-api/internal/pkg/database"
)

const queryTimeout = 3 * time.Second

const balanceColumns = `id, user_id, credits_remaining, credits_total, plan_id, last_synced_at, created_at, updated_at`

// Repository defines balance, ledger and price-list persistence
type Repository interface {
	GetOrCreate(ctx context.Context, userID uuid.UUID) (*Balance, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Balance, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*Balance, error)
	// ApplyDelta adds delta clamped at zero and appends entry when non-nil
	ApplyDelta(ctx context.Context, balanceID uuid.UUID, delta int, entry *UsageEntry) (*Balance, error)
	// SetRemaining overwrites the balance; entryFor sees the previous value and may return nil
	SetRemaining(ctx context.Context, balanceID uuid.UUID, value int, planID *string, entryFor func(previous int) *UsageEntry) (*Balance, error)
	MarkSynced(ctx context.Context, balanceID uuid.UUID, at time.Time) error
	ListHistory(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*UsageEntry, error)

	GetSettings(ctx context.Context) (*Settings, error)
	UpdateFeatureCosts(ctx context.Context, costs map[string]interface{}, adminID uuid.UUID) error
	UpdatePlanCredits(ctx context.Context, plans map[string]int, adminID uuid.UUID) error
}

// Settings is the admin_settings singleton
type Settings struct {
	FeatureCosts map[string]interface{}
	PlanCredits  map[string]int
}

// CreditRepository provides credit ledger and balance operations.
type CreditRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *CreditRepository {
	return &CreditRepository{db: db}
}

func (r *CreditRepository) GetOrCreate(ctx context.Context, userID uuid.UUID) (*Balance, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	now := database.Now()
	_, err := r.db.ExecContext(ctx2, r.db.Rebind(`
		INSERT INTO credit_balances (id, user_id, credits_remaining, credits_total, created_at, updated_at)
		VALUES (?, ?, 0, 0, ?, ?)
		ON CONFLICT (user_id) DO NOTHING
	`), uuid.New(), userID, now, now)
	if err != nil {
		return nil, fmt.Errorf("credit balance create: %w", err)
	}

	return r.GetByUserID(ctx2, userID)
}

func (r *CreditRepository) GetByID(ctx context.Context, id uuid.UUID) (*Balance, error) {
	return r.getOne(ctx, r.db, `SELECT `+balanceColumns+` FROM credit_balances WHERE id = ?`, id)
}

func (r *CreditRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*Balance, error) {
	return r.getOne(ctx, r.db, `SELECT `+balanceColumns+` FROM credit_balances WHERE user_id = ?`, userID)
}

func (r *CreditRepository) ApplyDelta(ctx context.Context, balanceID uuid.UUID, delta int, entry *UsageEntry) (*Balance, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tx, err := r.db.BeginTxx(ctx2, &sql.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("credit apply delta: begin tx: %w", err)
	}
	defer tx.Rollback()

	// Single statement so concurrent adjustments cannot lose updates.
	// Sums are widened to BIGINT before the MaxCredits comparison.
	result, err := tx.ExecContext(ctx2, tx.Rebind(`
		UPDATE credit_balances
		SET credits_remaining = CASE
		        WHEN CAST(credits_remaining AS BIGINT) + ? < 0 THEN 0
		        WHEN CAST(credits_remaining AS BIGINT) + ? > ? THEN ?
		        ELSE credits_remaining + ? END,
		    credits_total     = CASE
		        WHEN ? <= 0 THEN credits_total
		        WHEN CAST(credits_total AS BIGINT) + ? > ? THEN ?
		        ELSE credits_total + ? END,
		    updated_at        = ?
		WHERE id = ?
	`),
		delta, delta, MaxCredits, MaxCredits, delta,
		delta, delta, MaxCredits, MaxCredits, delta,
		database.Now(), balanceID)
	if err != nil {
		return nil, fmt.Errorf("credit apply delta: update: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return nil, ErrBalanceNotFound
	}

	balance, err := r.getOne(ctx2, tx, `SELECT `+balanceColumns+` FROM credit_balances WHERE id = ?`, balanceID)
	if err != nil {
		return nil, err
	}

	if entry != nil {
		entry.UserID = balance.UserID
		entry.BalanceID = balance.ID
		if err := insertUsage(ctx2, tx, entry); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("credit apply delta: commit: %w", err)
	}
	return balance, nil
}

func (r *CreditRepository) SetRemaining(ctx context.Context, balanceID uuid.UUID, value int, planID *string, entryFor func(previous int) *UsageEntry) (*Balance, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tx, err := r.db.BeginTxx(ctx2, &sql.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("credit set remaining: begin tx: %w", err)
	}
	defer tx.Rollback()

	lock := ""
	if r.db.DriverName() == "postgres" {
		lock = " FOR UPDATE"
	}
	current, err := r.getOne(ctx2, tx, `SELECT `+balanceColumns+` FROM credit_balances WHERE id = ?`+lock, balanceID)
	if err != nil {
		return nil, err
	}

	gained := value - current.CreditsRemaining
	if gained < 0 {
		gained = 0
	}
	plan := current.PlanID
	if planID != nil {
		plan = sql.NullString{String: *planID, Valid: true}
	}
	now := database.Now()

	_, err = tx.ExecContext(ctx2, tx.Rebind(`
		UPDATE credit_balances
		SET credits_remaining = ?, credits_total = credits_total + ?, plan_id = ?, updated_at = ?
		WHERE id = ?
	`), value, gained, plan, now, balanceID)
	if err != nil {
		return nil, fmt.Errorf("credit set remaining: update: %w", err)
	}

	if entry := entryFor(current.CreditsRemaining); entry != nil {
		entry.UserID = current.UserID
		entry.BalanceID = current.ID
		if err := insertUsage(ctx2, tx, entry); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("credit set remaining: commit: %w", err)
	}

	current.CreditsRemaining = value
	current.CreditsTotal += gained
	current.PlanID = plan
	current.UpdatedAt = now
	return current, nil
}

func (r *CreditRepository) MarkSynced(ctx context.Context, balanceID uuid.UUID, at time.Time) error {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx2, r.db.Rebind(`UPDATE credit_balances SET last_synced_at = ? WHERE id = ?`), at, balanceID)
	if err != nil {
		return fmt.Errorf("credit mark synced: %w", err)
	}
	return nil
}

func (r *CreditRepository) ListHistory(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*UsageEntry, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := r.db.Rebind(`
		SELECT id, user_id, balance_id, operation, credits_used, details, created_at
		FROM usage_history
		WHERE user_id = ?
		ORDER BY created_at DESC, id
		LIMIT ? OFFSET ?
	`)

	var entries []*UsageEntry
	if err := r.db.SelectContext(ctx2, &entries, query, userID, limit, offset); err != nil {
		return nil, fmt.Errorf("credit list history: %w", err)
	}
	return entries, nil
}

func (r *CreditRepository) GetSettings(ctx context.Context) (*Settings, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var row struct {
		FeatureCosts string `db:"feature_costs"`
		PlanCredits  string `db:"plan_credits"`
	}
	err := r.db.GetContext(ctx2, &row, r.db.Rebind(`SELECT feature_costs, plan_credits FROM admin_settings WHERE id = ?`), settingsRowID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("credit settings get: %w", err)
	}

	settings := &Settings{
		FeatureCosts: map[string]interface{}{},
		PlanCredits:  map[string]int{},
	}
	// Malformed JSON degrades to "no overrides" rather than breaking every charge.
	if row.FeatureCosts != "" {
		_ = json.Unmarshal([]byte(row.FeatureCosts), &settings.FeatureCosts)
	}
	if row.PlanCredits != "" {
		_ = json.Unmarshal([]byte(row.PlanCredits), &settings.PlanCredits)
	}
	return settings, nil
}

func (r *CreditRepository) UpdateFeatureCosts(ctx context.Context, costs map[string]interface{}, adminID uuid.UUID) error {
	return r.updateSettingsColumn(ctx, "feature_costs", costs, adminID)
}

func (r *CreditRepository) UpdatePlanCredits(ctx context.Context, plans map[string]int, adminID uuid.UUID) error {
	return r.updateSettingsColumn(ctx, "plan_credits", plans, adminID)
}

const settingsRowID = "global"

func (r *CreditRepository) updateSettingsColumn(ctx context.Context, column string, value interface{}, adminID uuid.UUID) error {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("credit settings encode: %w", err)
	}

	// column is one of two constants above, never user input
	query := r.db.Rebind(`
		INSERT INTO admin_settings (id, ` + column + `, updated_by, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			` + column + ` = excluded.` + column + `,
			updated_by = excluded.updated_by,
			updated_at = excluded.updated_at
	`)
	if _, err := r.db.ExecContext(ctx2, query, settingsRowID, string(encoded), uuid.NullUUID{UUID: adminID, Valid: adminID != uuid.Nil}, database.Now()); err != nil {
		return fmt.Errorf("credit settings update %s: %w", column, err)
	}
	return nil
}

func (r *CreditRepository) getOne(ctx context.Context, q sqlx.QueryerContext, query string, arg interface{}) (*Balance, error) {
	var b Balance
	if err := sqlx.GetContext(ctx, q, &b, sqlx.Rebind(sqlx.BindType(r.db.DriverName()), query), arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBalanceNotFound
		}
		return nil, fmt.Errorf("credit balance get: %w", err)
	}
	return &b, nil
}

func insertUsage(ctx context.Context, tx *sqlx.Tx, entry *UsageEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = database.Now()
	}

	_, err := tx.ExecContext(ctx, tx.Rebind(`
		INSERT INTO usage_history (id, user_id, balance_id, operation, credits_used, details, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`), entry.ID, entry.UserID, entry.BalanceID, entry.Operation, entry.CreditsUsed, entry.Details, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("credit usage insert: %w", err)
	}
	return nil
}
