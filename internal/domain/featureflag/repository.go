package featureflag

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

const configColumns = `category, config_key, config_value, value_type, description, updated_by, updated_at`

// Repository defines system config data access
type Repository interface {
	Get(ctx context.Context, category, key string) (*ConfigEntry, error)
	ListByCategory(ctx context.Context, category string) ([]*ConfigEntry, error)
	Upsert(ctx context.Context, entry *ConfigEntry) error
	Delete(ctx context.Context, category, key string) error
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates system config repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Get(ctx context.Context, category, key string) (*ConfigEntry, error) {
	query := r.db.Rebind(`SELECT ` + configColumns + ` FROM system_configs WHERE category = ? AND config_key = ?`)

	var entry ConfigEntry
	if err := r.db.GetContext(ctx, &entry, query, category, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrConfigNotFound
		}
		return nil, fmt.Errorf("system config get: %w", err)
	}
	return &entry, nil
}

func (r *repository) ListByCategory(ctx context.Context, category string) ([]*ConfigEntry, error) {
	query := r.db.Rebind(`SELECT ` + configColumns + ` FROM system_configs WHERE category = ? ORDER BY config_key`)

	var entries []*ConfigEntry
	if err := r.db.SelectContext(ctx, &entries, query, category); err != nil {
		return nil, fmt.Errorf("system config list: %w", err)
	}
	return entries, nil
}

// Upsert overwrites the row unconditionally; a nil description keeps the stored one.
func (r *repository) Upsert(ctx context.Context, entry *ConfigEntry) error {
	query := r.db.Rebind(`
		INSERT INTO system_configs (category, config_key, config_value, value_type, description, updated_by, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (category, config_key) DO UPDATE SET
			config_value = excluded.config_value,
			value_type   = excluded.value_type,
			description  = COALESCE(excluded.description, system_configs.description),
			updated_by   = excluded.updated_by,
			updated_at   = excluded.updated_at
	`)

	_, err := r.db.ExecContext(ctx, query,
		entry.Category,
		entry.Key,
		entry.Value,
		entry.ValueType,
		entry.Description,
		entry.UpdatedBy,
		entry.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("system config upsert: %w", err)
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, category, key string) error {
	query := r.db.Rebind(`DELETE FROM system_configs WHERE category = ? AND config_key = ?`)

	result, err := r.db.ExecContext(ctx, query, category, key)
	if err != nil {
		return fmt.Errorf("system config delete: %w", err)
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return ErrConfigNotFound
	}
	return nil
}
