package igreja

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository defines church and cell data access
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Igreja, error)
	ListCelulas(ctx context.Context, igrejaID uuid.UUID) ([]*Celula, error)
	CreateCelula(ctx context.Context, c *Celula) error
	ListMembros(ctx context.Context, igrejaID uuid.UUID, limit, offset int) ([]*Membro, int, error)
	// AreaIgreja and UserIgreja resolve tenancy; uuid.Nil means no church
	AreaIgreja(ctx context.Context, areaID uuid.UUID) (uuid.UUID, error)
	UserIgreja(ctx context.Context, userID uuid.UUID) (uuid.UUID, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates igreja repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Igreja, error) {
	query := `
		SELECT i.id, i.nome, i.cidade, i.created_at,
		       (SELECT COUNT(*) FROM users u WHERE u.igreja_id = i.id) AS total_membros,
		       (SELECT COUNT(*) FROM celulas c WHERE c.igreja_id = i.id) AS total_celulas
		FROM igrejas i
		WHERE i.id = ?
	`
	var ig Igreja
	if err := r.db.GetContext(ctx, &ig, r.db.Rebind(query), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrIgrejaNotFound
		}
		return nil, fmt.Errorf("igreja get: %w", err)
	}
	return &ig, nil
}

func (r *repository) ListCelulas(ctx context.Context, igrejaID uuid.UUID) ([]*Celula, error) {
	query := `
		SELECT c.id, c.igreja_id, c.area_id, c.lider_id, c.nome, c.dia_semana, c.horario, c.created_at,
		       u.name AS lider_nome
		FROM celulas c
		LEFT JOIN users u ON u.id = c.lider_id
		WHERE c.igreja_id = ?
		ORDER BY c.nome
	`
	var items []*Celula
	if err := r.db.SelectContext(ctx, &items, r.db.Rebind(query), igrejaID); err != nil {
		return nil, fmt.Errorf("igreja list celulas: %w", err)
	}
	if items == nil {
		items = []*Celula{}
	}
	return items, nil
}

func (r *repository) CreateCelula(ctx context.Context, c *Celula) error {
	query := `
		INSERT INTO celulas (id, igreja_id, area_id, lider_id, nome, dia_semana, horario, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, r.db.Rebind(query),
		c.ID, c.IgrejaID, c.AreaID, c.LiderID, c.Nome, c.DiaSemana, c.Horario, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("igreja create celula: %w", err)
	}
	return nil
}

func (r *repository) ListMembros(ctx context.Context, igrejaID uuid.UUID, limit, offset int) ([]*Membro, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, r.db.Rebind(`SELECT COUNT(*) FROM users WHERE igreja_id = ?`), igrejaID); err != nil {
		return nil, 0, fmt.Errorf("igreja count membros: %w", err)
	}

	var items []*Membro
	err := r.db.SelectContext(ctx, &items, r.db.Rebind(`
		SELECT id, name, email, role FROM users
		WHERE igreja_id = ?
		ORDER BY name
		LIMIT ? OFFSET ?
	`), igrejaID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("igreja list membros: %w", err)
	}
	if items == nil {
		items = []*Membro{}
	}
	return items, total, nil
}

func (r *repository) AreaIgreja(ctx context.Context, areaID uuid.UUID) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.db.GetContext(ctx, &id, r.db.Rebind(`SELECT igreja_id FROM areas_supervisao WHERE id = ?`), areaID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return uuid.Nil, ErrAreaNotFound
		}
		return uuid.Nil, fmt.Errorf("igreja area lookup: %w", err)
	}
	return id, nil
}

func (r *repository) UserIgreja(ctx context.Context, userID uuid.UUID) (uuid.UUID, error) {
	var id uuid.NullUUID
	err := r.db.GetContext(ctx, &id, r.db.Rebind(`SELECT igreja_id FROM users WHERE id = ?`), userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return uuid.Nil, ErrLiderNotFound
		}
		return uuid.Nil, fmt.Errorf("igreja user lookup: %w", err)
	}
	return id.UUID, nil
}
