package featureflag

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/celulas/celulas-api/internal/pkg/database"
	"github.com/celulas/celulas-api/internal/pkg/logger"
)

// Service reads and writes flags and generic system configuration.
// Nothing is cached: every check goes to the store.
type Service struct {
	repo Repository
}

// NewService creates feature flag service
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// ListFlags decodes every row of category as a boolean
func (s *Service) ListFlags(ctx context.Context, category string) (map[string]bool, error) {
	entries, err := s.repo.ListByCategory(ctx, category)
	if err != nil {
		return nil, err
	}

	flags := make(map[string]bool, len(entries))
	for _, e := range entries {
		flags[e.Key] = e.Enabled()
	}
	return flags, nil
}

// SetFlag upserts a flag under the feature_flag category. Last writer wins.
func (s *Service) SetFlag(ctx context.Context, key string, enabled bool, description *string, updatedBy uuid.UUID) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return ErrInvalidKey
	}

	entry := &ConfigEntry{
		Category:  CategoryFeatureFlag,
		Key:       key,
		Value:     flagValue(enabled),
		ValueType: ValueTypeBoolean,
		UpdatedBy: uuid.NullUUID{UUID: updatedBy, Valid: updatedBy != uuid.Nil},
		UpdatedAt: database.Now(),
	}
	if description != nil {
		entry.Description = sql.NullString{String: *description, Valid: true}
	}

	if err := s.repo.Upsert(ctx, entry); err != nil {
		return err
	}

	logger.LogInfo(ctx, "Feature flag updated", "key", key, "enabled", enabled, "updated_by", updatedBy.String())
	return nil
}

// IsDomainMutationEnabled is fail-open: only a stored "false" disables writes
func (s *Service) IsDomainMutationEnabled(ctx context.Context) bool {
	entry, err := s.repo.Get(ctx, CategoryFeatureFlag, KeyDomainMutations)
	if err != nil {
		if !errors.Is(err, ErrConfigNotFound) {
			logger.LogError(ctx, err, "Domain mutation flag read failed, allowing writes")
		}
		return true
	}
	return entry.Value != "false"
}

// ListConfigs returns every config row of a category
func (s *Service) ListConfigs(ctx context.Context, category string) ([]*ConfigEntry, error) {
	return s.repo.ListByCategory(ctx, category)
}

// UpsertConfig writes a generic config row
func (s *Service) UpsertConfig(ctx context.Context, entry *ConfigEntry) error {
	if strings.TrimSpace(entry.Category) == "" || strings.TrimSpace(entry.Key) == "" {
		return ErrInvalidKey
	}
	if entry.ValueType == "" {
		entry.ValueType = ValueTypeString
	}
	entry.UpdatedAt = database.Now()
	return s.repo.Upsert(ctx, entry)
}

// DeleteConfig removes a config row
func (s *Service) DeleteConfig(ctx context.Context, category, key string) error {
	return s.repo.Delete(ctx, category, key)
}
