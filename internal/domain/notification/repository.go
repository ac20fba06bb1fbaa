package notification

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/celulas/celulas-api/internal/pkg/database"
)

const notificationColumns = `id, user_id, type, title, body, data, priority, is_read, read_at, expires_at, created_at`

// Repository defines notification data access
type Repository interface {
	Create(ctx context.Context, n *Notification) error
	GetByID(ctx context.Context, id uuid.UUID) (*Notification, error)
	// ListByUser and CountUnreadByUser skip notices expired at now
	ListByUser(ctx context.Context, userID uuid.UUID, now time.Time, limit, offset int) ([]*Notification, error)
	CountUnreadByUser(ctx context.Context, userID uuid.UUID, now time.Time) (int, error)
	MarkAsRead(ctx context.Context, userID, id uuid.UUID) error
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) (int64, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
	DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error)
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates notification repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, n *Notification) error {
	query := r.db.Rebind(`
		INSERT INTO notifications (id, user_id, type, title, body, data, priority, is_read, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)

	var data interface{}
	if len(n.Data) > 0 {
		data = string(n.Data)
	}

	_, err := r.db.ExecContext(ctx, query,
		n.ID,
		n.UserID,
		n.Type,
		n.Title,
		n.Body,
		data,
		n.Priority,
		n.IsRead,
		n.ExpiresAt,
		n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("notification create: %w", err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Notification, error) {
	query := r.db.Rebind(`SELECT ` + notificationColumns + ` FROM notifications WHERE id = ?`)
	var n Notification
	err := r.db.GetContext(ctx, &n, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotificationNotFound
		}
		return nil, err
	}
	return &n, nil
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID, now time.Time, limit, offset int) ([]*Notification, error) {
	query := r.db.Rebind(`
		SELECT ` + notificationColumns + ` FROM notifications
		WHERE user_id = ? AND (expires_at IS NULL OR expires_at > ?)
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`)
	var notifications []*Notification
	err := r.db.SelectContext(ctx, &notifications, query, userID, now, limit, offset)
	return notifications, err
}

func (r *repository) CountUnreadByUser(ctx context.Context, userID uuid.UUID, now time.Time) (int, error) {
	query := r.db.Rebind(`
		SELECT COUNT(*) FROM notifications
		WHERE user_id = ? AND NOT is_read AND (expires_at IS NULL OR expires_at > ?)
	`)
	var count int
	err := r.db.GetContext(ctx, &count, query, userID, now)
	return count, err
}

func (r *repository) MarkAsRead(ctx context.Context, userID, id uuid.UUID) error {
	query := r.db.Rebind(`UPDATE notifications SET is_read = ?, read_at = ? WHERE id = ? AND user_id = ?`)
	result, err := r.db.ExecContext(ctx, query, true, database.Now(), id, userID)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

func (r *repository) MarkAllAsRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	query := r.db.Rebind(`UPDATE notifications SET is_read = ?, read_at = ? WHERE user_id = ? AND NOT is_read`)
	return r.exec(ctx, query, true, database.Now(), userID)
}

// DeleteExpired removes notices whose expiry has passed
func (r *repository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return r.exec(ctx, r.db.Rebind(`DELETE FROM notifications WHERE expires_at IS NOT NULL AND expires_at <= ?`), now)
}

// DeleteReadBefore removes read notices created before cutoff
func (r *repository) DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return r.exec(ctx, r.db.Rebind(`DELETE FROM notifications WHERE created_at < ? AND is_read`), cutoff)
}

// DeleteBefore removes every notice created before cutoff
func (r *repository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return r.exec(ctx, r.db.Rebind(`DELETE FROM notifications WHERE created_at < ?`), cutoff)
}

func (r *repository) exec(ctx context.Context, query string, args ...interface{}) (int64, error) {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
