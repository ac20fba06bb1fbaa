package notification

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/celulas/celulas-api/internal/pkg/database"
	"github.com/celulas/celulas-api/internal/pkg/logger"
)

// Service handles notification logic
type Service struct {
	repo     Repository
	realtime RealtimePublisher
}

// NewService creates notification service; realtime may be nil
func NewService(repo Repository, realtime RealtimePublisher) *Service {
	return &Service{repo: repo, realtime: realtime}
}

// Create stores a notice and pushes it to connected sessions.
// A failed push is logged; the stored notice is still returned.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Notification, error) {
	if in.UserID == uuid.Nil {
		return nil, ErrRecipientRequired
	}
	if in.Priority == "" {
		in.Priority = PriorityNormal
	}

	now := database.Now()
	n := &Notification{
		ID:        uuid.New(),
		UserID:    in.UserID,
		Type:      in.Type,
		Title:     in.Title,
		Priority:  in.Priority,
		CreatedAt: now,
	}
	if in.Body != "" {
		n.Body = sql.NullString{String: in.Body, Valid: true}
	}
	if in.TTL > 0 {
		n.ExpiresAt = sql.NullTime{Time: now.Add(in.TTL), Valid: true}
	}
	n.SetData(in.Data)

	if err := s.repo.Create(ctx, n); err != nil {
		return nil, err
	}

	s.push(ctx, n)
	return n, nil
}

func (s *Service) push(ctx context.Context, n *Notification) {
	if s.realtime == nil {
		return
	}

	unread, err := s.repo.CountUnreadByUser(ctx, n.UserID, database.Now())
	if err != nil {
		logger.LogWarn(ctx, "Failed to count unread notifications", "user_id", n.UserID.String(), "error", err.Error())
	}
	if err := s.realtime.NotifyNew(ctx, n.UserID, NotificationResponseFromEntity(n), unread); err != nil {
		logger.LogWarn(ctx, "Realtime notification push failed", "notification_id", n.ID.String(), "error", err.Error())
	}
}

// List returns the user's unexpired notifications, newest first
func (s *Service) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Notification, error) {
	return s.repo.ListByUser(ctx, userID, database.Now(), limit, offset)
}

// GetUnreadCount returns unread count
func (s *Service) GetUnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.repo.CountUnreadByUser(ctx, userID, database.Now())
}

// MarkAsRead marks one of the user's notifications as read
func (s *Service) MarkAsRead(ctx context.Context, userID, id uuid.UUID) error {
	return s.repo.MarkAsRead(ctx, userID, id)
}

// MarkAllAsRead marks all notifications as read
func (s *Service) MarkAllAsRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.MarkAllAsRead(ctx, userID)
}
