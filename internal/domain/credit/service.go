package credit

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/celulas/celulas-api/internal/config"
	"github.com/celulas/celulas-api/internal/pkg/clerk"
	"github.com/celulas/celulas-api/internal/pkg/database"
	"github.com/celulas/celulas-api/internal/pkg/errorhandler"
	"github.com/celulas/celulas-api/internal/pkg/logger"
)

// MetadataClient writes the identity provider's public user metadata
type MetadataClient interface {
	UpdatePublicMetadata(ctx context.Context, userID string, patch map[string]interface{}) (*clerk.User, error)
}

// Service implements the credit ledger.
// Balances, costs and the kill switch are re-read on every call.
type Service struct {
	repo    Repository
	mirror  MetadataClient
	enabled func() bool
}

// NewService creates a new credit service; mirror may be nil
func NewService(repo Repository, mirror MetadataClient) *Service {
	return &Service{
		repo:    repo,
		mirror:  mirror,
		enabled: config.CreditsEnabled,
	}
}

// AreCreditsEnabled reports the CREDITS_ENABLED kill switch
func (s *Service) AreCreditsEnabled() bool {
	return s.enabled()
}

// GetOrCreateBalance returns the user's balance, creating a zero row if absent
func (s *Service) GetOrCreateBalance(ctx context.Context, userID uuid.UUID) (*Balance, error) {
	return s.repo.GetOrCreate(ctx, userID)
}

// Adjust applies delta with a floor of zero and a ceiling of MaxCredits.
// A ledger row recording |delta| is written only when delta is non-zero.
func (s *Service) Adjust(ctx context.Context, balanceID uuid.UUID, delta int, details Details) (*Balance, error) {
	if delta < -MaxCredits || delta > MaxCredits {
		return nil, fmt.Errorf("%w: %d", ErrDeltaOutOfRange, delta)
	}
	if delta == 0 {
		return s.repo.GetByID(ctx, balanceID)
	}

	entry := &UsageEntry{
		Operation:   details.operation(),
		CreditsUsed: abs(delta),
		Details:     DetailsColumn{details},
	}
	return s.repo.ApplyDelta(ctx, balanceID, delta, entry)
}

// SetAbsolute overwrites the balance with max(0, floor(target)).
// The ledger row, if any, records the size of the resulting change.
func (s *Service) SetAbsolute(ctx context.Context, balanceID uuid.UUID, target float64, details AbsoluteSet) (*Balance, error) {
	value, err := absoluteValue(target)
	if err != nil {
		return nil, err
	}
	details.Target = target

	return s.repo.SetRemaining(ctx, balanceID, value, nil, func(previous int) *UsageEntry {
		return absoluteEntry(details, previous, value)
	})
}

// AssignPlan moves a user onto a plan and resets the balance to the plan's credits
func (s *Service) AssignPlan(ctx context.Context, userID uuid.UUID, planID string, adminID uuid.UUID) (*Balance, error) {
	credits, ok, err := s.PlanCredits(ctx, planID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPlan, planID)
	}

	balance, err := s.repo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	details := AbsoluteSet{Target: float64(credits), AdminID: adminID, Reason: "plan " + planID}
	return s.repo.SetRemaining(ctx, balance.ID, credits, &planID, func(previous int) *UsageEntry {
		return absoluteEntry(details, previous, credits)
	})
}

func absoluteValue(target float64) (int, error) {
	if math.IsNaN(target) || math.IsInf(target, 0) {
		return 0, fmt.Errorf("%w: target must be finite", ErrInvalidCost)
	}
	floored := math.Floor(target)
	if floored > MaxCredits {
		floored = MaxCredits
	}
	return clamp(int(floored)), nil
}

func absoluteEntry(details AbsoluteSet, previous, value int) *UsageEntry {
	delta := value - previous
	if delta == 0 {
		return nil
	}
	details.Previous = previous
	return &UsageEntry{
		Operation:   details.operation(),
		CreditsUsed: abs(delta),
		Details:     DetailsColumn{details},
	}
}

// ListFeatureCosts returns the effective price list; all zeros when credits are off
func (s *Service) ListFeatureCosts(ctx context.Context) (map[string]int, error) {
	settings, err := s.repo.GetSettings(ctx)
	if err != nil {
		return nil, err
	}

	costs := resolveCosts(settings.FeatureCosts)
	if !s.AreCreditsEnabled() {
		return zeroCosts(costs), nil
	}
	return costs, nil
}

// FeatureCost returns the effective cost of one feature
func (s *Service) FeatureCost(ctx context.Context, feature string) (int, error) {
	costs, err := s.ListFeatureCosts(ctx)
	if err != nil {
		return 0, err
	}

	cost, ok := costs[feature]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownFeature, feature)
	}
	return cost, nil
}

// UpdateFeatureCosts merges admin overrides into the stored price list
func (s *Service) UpdateFeatureCosts(ctx context.Context, overrides map[string]float64, adminID uuid.UUID) (map[string]int, error) {
	settings, err := s.repo.GetSettings(ctx)
	if err != nil {
		return nil, err
	}

	if settings.FeatureCosts == nil {
		settings.FeatureCosts = map[string]interface{}{}
	}
	for feature, cost := range overrides {
		if _, ok := validCost(cost); !ok {
			return nil, fmt.Errorf("%w: %s", ErrInvalidCost, feature)
		}
		settings.FeatureCosts[feature] = cost
	}

	if err := s.repo.UpdateFeatureCosts(ctx, settings.FeatureCosts, adminID); err != nil {
		return nil, err
	}
	return resolveCosts(settings.FeatureCosts), nil
}

// PlanCredits returns the credits granted by a plan; nothing when credits are off
func (s *Service) PlanCredits(ctx context.Context, planID string) (int, bool, error) {
	plans, err := s.ListPlanCredits(ctx)
	if err != nil {
		return 0, false, err
	}
	credits, ok := plans[planID]
	return credits, ok, nil
}

// ListPlanCredits returns every plan's credits; empty when credits are off
func (s *Service) ListPlanCredits(ctx context.Context) (map[string]int, error) {
	if !s.AreCreditsEnabled() {
		return map[string]int{}, nil
	}

	settings, err := s.repo.GetSettings(ctx)
	if err != nil {
		return nil, err
	}
	return settings.PlanCredits, nil
}

// UpdatePlanCredits merges plan definitions
func (s *Service) UpdatePlanCredits(ctx context.Context, plans map[string]int, adminID uuid.UUID) (map[string]int, error) {
	settings, err := s.repo.GetSettings(ctx)
	if err != nil {
		return nil, err
	}

	if settings.PlanCredits == nil {
		settings.PlanCredits = map[string]int{}
	}
	for plan, credits := range plans {
		if credits < 0 {
			return nil, fmt.Errorf("%w: plan %s", ErrInvalidCost, plan)
		}
		settings.PlanCredits[plan] = credits
	}

	if err := s.repo.UpdatePlanCredits(ctx, settings.PlanCredits, adminID); err != nil {
		return nil, err
	}
	return settings.PlanCredits, nil
}

// ValidateCredits checks the user can afford feature without charging.
// Returns *InsufficientCreditsError when remaining < required.
func (s *Service) ValidateCredits(ctx context.Context, userID uuid.UUID, feature string) (*Validation, error) {
	if !s.AreCreditsEnabled() {
		return &Validation{Feature: feature}, nil
	}

	required, err := s.FeatureCost(ctx, feature)
	if err != nil {
		return nil, err
	}

	balance, err := s.repo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	if balance.CreditsRemaining < required {
		return nil, &InsufficientCreditsError{
			Feature:          feature,
			CreditsRemaining: balance.CreditsRemaining,
			CreditsRequired:  required,
		}
	}

	return &Validation{
		Feature:          feature,
		CreditsRemaining: balance.CreditsRemaining,
		CreditsRequired:  required,
		Enabled:          true,
	}, nil
}

// DeductCredits charges feature's cost through the clamp rule. It does not
// validate first. Returns a nil balance when credits are off and nothing was charged.
func (s *Service) DeductCredits(ctx context.Context, userID uuid.UUID, feature string) (*Balance, error) {
	if !s.AreCreditsEnabled() {
		logger.LogInfo(ctx, "Credits disabled, skipping deduction", "user_id", userID.String(), "feature", feature)
		return nil, nil
	}

	cost, err := s.FeatureCost(ctx, feature)
	if err != nil {
		return nil, err
	}

	balance, err := s.repo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	return s.Adjust(ctx, balance.ID, -cost, FeatureUsage{Feature: feature, Cost: cost})
}

// ConsumeFeature validates then deducts.
// The two steps are separate round trips; concurrent calls for one user can both pass validation.
func (s *Service) ConsumeFeature(ctx context.Context, userID uuid.UUID, feature string) (*Validation, *Balance, error) {
	validation, err := s.ValidateCredits(ctx, userID, feature)
	if err != nil {
		return nil, nil, err
	}

	balance, err := s.DeductCredits(ctx, userID, feature)
	if err != nil {
		return nil, nil, err
	}
	return validation, balance, nil
}

// ListHistory returns the user's ledger, newest first
func (s *Service) ListHistory(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*UsageEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.ListHistory(ctx, userID, limit, offset)
}

// MirrorToExternalMetadata pushes the balance to the identity provider.
// Callers treat failure as advisory: the local balance is authoritative.
func (s *Service) MirrorToExternalMetadata(ctx context.Context, externalUserID string, creditsRemaining int, opts MirrorOptions) (*MetadataSnapshot, error) {
	if s.mirror == nil {
		return nil, clerk.ErrNotConfigured
	}

	patch := map[string]interface{}{"creditsRemaining": creditsRemaining}
	if opts.CreditsTotal != nil {
		patch["creditsTotal"] = *opts.CreditsTotal
	}
	if opts.PlanID != nil {
		patch["planId"] = *opts.PlanID
	}
	if opts.LastSyncedAt != nil {
		patch["lastSyncedAt"] = opts.LastSyncedAt.UTC().Format(time.RFC3339)
	}

	u, err := s.mirror.UpdatePublicMetadata(ctx, externalUserID, patch)
	if err != nil {
		return nil, err
	}
	return snapshotFromMetadata(u.PublicMetadata, creditsRemaining), nil
}

// SyncBalance mirrors b and stamps last_synced_at on success. Failures are
// logged and reported as false; nothing is rolled back.
func (s *Service) SyncBalance(ctx context.Context, externalUserID string, b *Balance) bool {
	now := database.Now()
	opts := MirrorOptions{CreditsTotal: &b.CreditsTotal, LastSyncedAt: &now}
	if b.PlanID.Valid {
		opts.PlanID = &b.PlanID.String
	}

	if _, err := s.MirrorToExternalMetadata(ctx, externalUserID, b.CreditsRemaining, opts); err != nil {
		if errors.Is(err, clerk.ErrNotConfigured) {
			logger.LogDebug(ctx, "Metadata mirror not configured", "balance_id", b.ID.String())
		} else {
			errorhandler.LogExternalServiceError(ctx, "clerk", "users.metadata", err)
		}
		return false
	}

	if err := s.repo.MarkSynced(ctx, b.ID, now); err != nil {
		logger.LogError(ctx, err, "Failed to stamp credit sync time", "balance_id", b.ID.String())
	} else {
		b.LastSyncedAt.Time, b.LastSyncedAt.Valid = now, true
	}
	return true
}

func snapshotFromMetadata(meta map[string]interface{}, fallback int) *MetadataSnapshot {
	snap := &MetadataSnapshot{CreditsRemaining: fallback}
	if v, ok := meta["creditsRemaining"].(float64); ok {
		snap.CreditsRemaining = int(v)
	}
	if v, ok := meta["creditsTotal"].(float64); ok {
		total := int(v)
		snap.CreditsTotal = &total
	}
	if v, ok := meta["planId"].(string); ok {
		snap.PlanID = &v
	}
	if v, ok := meta["lastSyncedAt"].(string); ok {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			snap.LastSyncedAt = &t
		}
	}
	return snap
}
