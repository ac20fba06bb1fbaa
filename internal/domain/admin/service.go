package admin

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/celulas/celulas-api/internal/domain/user"
	"github.com/celulas/celulas-api/internal/pkg/database"
	"github.com/celulas/celulas-api/internal/pkg/logger"
)

const dashboardWindow = 7 * 24 * time.Hour

// UserLookup reloads a user after an update
type UserLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
}

// Service handles the admin console
type Service struct {
	repo  Repository
	users UserLookup
	now   func() time.Time
}

// NewService creates admin service
func NewService(repo Repository, users UserLookup) *Service {
	return &Service{repo: repo, users: users, now: database.Now}
}

// GetDashboardStats returns platform-wide counts; weekly figures cover the last 7 days
func (s *Service) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	now := s.now()
	stats, err := s.repo.GetDashboardStats(ctx, now.Add(-dashboardWindow))
	if err != nil {
		return nil, err
	}
	stats.GeneratedAt = now
	return stats, nil
}

// ListUsers pages through users
func (s *Service) ListUsers(ctx context.Context, filter UserFilter) ([]*user.User, int, error) {
	filter.Search = strings.ToLower(strings.TrimSpace(filter.Search))
	return s.repo.ListUsers(ctx, filter)
}

// UpdateUser changes a user's role, church or operator flag
func (s *Service) UpdateUser(ctx context.Context, adminID, userID uuid.UUID, upd UserUpdate) (*user.User, error) {
	if upd.Role == nil && upd.IgrejaID == nil && upd.IsAdmin == nil {
		return nil, ErrNothingToApply
	}
	if upd.IgrejaID != nil {
		ok, err := s.repo.IgrejaExists(ctx, *upd.IgrejaID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrIgrejaNotFound
		}
	}

	if err := s.repo.UpdateUser(ctx, userID, upd, s.now()); err != nil {
		return nil, err
	}

	logger.LogInfo(ctx, "User membership updated by admin",
		"admin_id", adminID.String(),
		"user_id", userID.String(),
	)
	return s.users.GetByID(ctx, userID)
}
