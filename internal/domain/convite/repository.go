package convite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const conviteColumns = `c.id, c.token, c.igreja_id, c.celula_id, c.criado_por, c.email, c.visualizacoes, c.expires_at, c.created_at,
	i.nome AS igreja_nome, ce.nome AS celula_nome`

const conviteFrom = ` FROM convites c
	LEFT JOIN igrejas i ON i.id = c.igreja_id
	LEFT JOIN celulas ce ON ce.id = c.celula_id`

// Repository defines invitation persistence
type Repository interface {
	Create(ctx context.Context, c *Convite) error
	GetByToken(ctx context.Context, token string) (*Convite, error)
	// RegisterView bumps the view counter of an unexpired invitation; false when none matched
	RegisterView(ctx context.Context, token string, now time.Time) (bool, error)
	ListByCreator(ctx context.Context, userID uuid.UUID) ([]*Convite, error)
	CelulaIgreja(ctx context.Context, celulaID uuid.UUID) (uuid.UUID, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates convite repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, c *Convite) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO convites (id, token, igreja_id, celula_id, criado_por, email, visualizacoes, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, 0, ?, ?)
	`), c.ID, c.Token, c.IgrejaID, c.CelulaID, c.CriadoPor, c.Email, c.ExpiresAt, c.CreatedAt)
	if err != nil {
		return fmt.Errorf("convite create: %w", err)
	}
	return nil
}

func (r *repository) GetByToken(ctx context.Context, token string) (*Convite, error) {
	var c Convite
	err := r.db.GetContext(ctx, &c, r.db.Rebind(`SELECT `+conviteColumns+conviteFrom+` WHERE c.token = ?`), token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrConviteNotFound
		}
		return nil, fmt.Errorf("convite get: %w", err)
	}
	return &c, nil
}

func (r *repository) RegisterView(ctx context.Context, token string, now time.Time) (bool, error) {
	result, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE convites SET visualizacoes = visualizacoes + 1
		WHERE token = ? AND expires_at > ?
	`), token, now)
	if err != nil {
		return false, fmt.Errorf("convite register view: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func (r *repository) ListByCreator(ctx context.Context, userID uuid.UUID) ([]*Convite, error) {
	var items []*Convite
	err := r.db.SelectContext(ctx, &items, r.db.Rebind(`SELECT `+conviteColumns+conviteFrom+`
		WHERE c.criado_por = ? ORDER BY c.created_at DESC`), userID)
	if err != nil {
		return nil, fmt.Errorf("convite list: %w", err)
	}
	if items == nil {
		items = []*Convite{}
	}
	return items, nil
}

func (r *repository) CelulaIgreja(ctx context.Context, celulaID uuid.UUID) (uuid.UUID, error) {
	var igrejaID uuid.UUID
	err := r.db.GetContext(ctx, &igrejaID, r.db.Rebind(`SELECT igreja_id FROM celulas WHERE id = ?`), celulaID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return uuid.Nil, ErrCelulaNotFound
		}
		return uuid.Nil, fmt.Errorf("convite celula lookup: %w", err)
	}
	return igrejaID, nil
}
