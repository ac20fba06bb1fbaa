package admin

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/celulas/celulas-api/internal/domain/user"
)

// UserFilter narrows the admin user list
type UserFilter struct {
	Role     string
	IgrejaID *uuid.UUID
	Search   string
	Limit    int
	Offset   int
}

// UserUpdate carries the membership fields an operator may change
type UserUpdate struct {
	Role     *user.Role
	IgrejaID *uuid.UUID
	IsAdmin  *bool
}

// Repository defines admin console data access
type Repository interface {
	GetDashboardStats(ctx context.Context, since time.Time) (*DashboardStats, error)
	ListUsers(ctx context.Context, filter UserFilter) ([]*user.User, int, error)
	IgrejaExists(ctx context.Context, id uuid.UUID) (bool, error)
	UpdateUser(ctx context.Context, id uuid.UUID, upd UserUpdate, at time.Time) error
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates admin repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

type counter struct {
	db  *sqlx.DB
	ctx context.Context
	err error
}

func (c *counter) get(dest *int, query string, args ...interface{}) {
	if c.err != nil {
		return
	}
	if err := c.db.GetContext(c.ctx, dest, c.db.Rebind(query), args...); err != nil {
		c.err = fmt.Errorf("dashboard %q: %w", query, err)
	}
}

func (r *repository) GetDashboardStats(ctx context.Context, since time.Time) (*DashboardStats, error) {
	stats := &DashboardStats{Users: UserStats{ByRole: map[string]int{}}}
	c := &counter{db: r.db, ctx: ctx}

	// Users
	c.get(&stats.Users.Total, `SELECT COUNT(*) FROM users`)
	c.get(&stats.Users.Admins, `SELECT COUNT(*) FROM users WHERE is_admin = ?`, true)
	c.get(&stats.Users.NewThisWeek, `SELECT COUNT(*) FROM users WHERE created_at >= ?`, since)

	// Churches and cells
	c.get(&stats.Igrejas, `SELECT COUNT(*) FROM igrejas`)
	c.get(&stats.Celulas, `SELECT COUNT(*) FROM celulas`)

	// Advancement requests
	c.get(&stats.Solicitacoes.Pendentes, `SELECT COUNT(*) FROM solicitacoes_avanco_trilha WHERE status = ?`, "PENDENTE")
	c.get(&stats.Solicitacoes.Aprovadas, `SELECT COUNT(*) FROM solicitacoes_avanco_trilha WHERE status = ?`, "APROVADA")
	c.get(&stats.Solicitacoes.Rejeitadas, `SELECT COUNT(*) FROM solicitacoes_avanco_trilha WHERE status = ?`, "REJEITADA")

	// Credits
	c.get(&stats.Credits.InCirculation, `SELECT COALESCE(SUM(credits_remaining), 0) FROM credit_balances`)
	c.get(&stats.Credits.Balances, `SELECT COUNT(*) FROM credit_balances`)
	c.get(&stats.Credits.UsageEventsWeek, `SELECT COUNT(*) FROM usage_history WHERE created_at >= ?`, since)
	c.get(&stats.Credits.ConsumedLastWeek, `SELECT COALESCE(SUM(credits_used), 0) FROM usage_history WHERE operation = ? AND created_at >= ?`, "feature_usage", since)

	// Notifications
	c.get(&stats.Notifications.Unread, `SELECT COUNT(*) FROM notifications WHERE is_read = ?`, false)

	if c.err != nil {
		return nil, c.err
	}

	var rows []struct {
		Role  string `db:"role"`
		Total int    `db:"total"`
	}
	if err := r.db.SelectContext(ctx, &rows, `SELECT role, COUNT(*) AS total FROM users GROUP BY role`); err != nil {
		return nil, fmt.Errorf("dashboard users by role: %w", err)
	}
	for _, row := range rows {
		stats.Users.ByRole[row.Role] = row.Total
	}

	return stats, nil
}

func (r *repository) ListUsers(ctx context.Context, filter UserFilter) ([]*user.User, int, error) {
	where := ` WHERE 1=1`
	var args []interface{}
	if filter.Role != "" {
		where += ` AND role = ?`
		args = append(args, filter.Role)
	}
	if filter.IgrejaID != nil {
		where += ` AND igreja_id = ?`
		args = append(args, *filter.IgrejaID)
	}
	if filter.Search != "" {
		where += ` AND (LOWER(email) LIKE ? OR LOWER(name) LIKE ?)`
		pattern := "%" + filter.Search + "%"
		args = append(args, pattern, pattern)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, r.db.Rebind(`SELECT COUNT(*) FROM users`+where), args...); err != nil {
		return nil, 0, fmt.Errorf("admin count users: %w", err)
	}

	var users []*user.User
	query := `SELECT id, external_id, email, name, role, igreja_id, is_admin, created_at, updated_at FROM users` +
		where + ` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	args = append(args, filter.Limit, filter.Offset)
	if err := r.db.SelectContext(ctx, &users, r.db.Rebind(query), args...); err != nil {
		return nil, 0, fmt.Errorf("admin list users: %w", err)
	}
	if users == nil {
		users = []*user.User{}
	}
	return users, total, nil
}

func (r *repository) IgrejaExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var found uuid.UUID
	err := r.db.GetContext(ctx, &found, r.db.Rebind(`SELECT id FROM igrejas WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("admin igreja lookup: %w", err)
	}
	return true, nil
}

func (r *repository) UpdateUser(ctx context.Context, id uuid.UUID, upd UserUpdate, at time.Time) error {
	set := `updated_at = ?`
	args := []interface{}{at}
	if upd.Role != nil {
		set += `, role = ?`
		args = append(args, *upd.Role)
	}
	if upd.IgrejaID != nil {
		set += `, igreja_id = ?`
		args = append(args, *upd.IgrejaID)
	}
	if upd.IsAdmin != nil {
		set += `, is_admin = ?`
		args = append(args, *upd.IsAdmin)
	}
	args = append(args, id)

	result, err := r.db.ExecContext(ctx, r.db.Rebind(`UPDATE users SET `+set+` WHERE id = ?`), args...)
	if err != nil {
		return fmt.Errorf("admin update user: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrUserNotFound
	}
	return nil
}
