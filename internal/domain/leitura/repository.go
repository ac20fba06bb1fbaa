package leitura

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

const queryTimeout = 3 * time.Second

const metaColumns = `m.id, m.usuario_id, m.plano_id, m.capitulos_lidos, m.concluida, m.created_at, m.updated_at, p.total_capitulos`

// Repository defines reading plan persistence
type Repository interface {
	ListPlanos(ctx context.Context) ([]*Plano, error)
	GetPlano(ctx context.Context, id uuid.UUID) (*Plano, error)
	CreateMeta(ctx context.Context, meta *Meta) error
	GetMeta(ctx context.Context, id uuid.UUID) (*Meta, error)
	ListMetas(ctx context.Context, usuarioID uuid.UUID) ([]*Meta, error)
	// RegistrarLeitura appends reg and advances its goal in one transaction
	RegistrarLeitura(ctx context.Context, reg *Registro) (*Meta, error)
	ListRegistros(ctx context.Context, metaID uuid.UUID, limit int) ([]*Registro, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates leitura repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) ListPlanos(ctx context.Context) ([]*Plano, error) {
	var planos []*Plano
	err := r.db.SelectContext(ctx, &planos, `
		SELECT id, nome, descricao, total_capitulos, created_at
		FROM planos_leitura ORDER BY nome
	`)
	if err != nil {
		return nil, fmt.Errorf("leitura list planos: %w", err)
	}
	if planos == nil {
		planos = []*Plano{}
	}
	return planos, nil
}

func (r *repository) GetPlano(ctx context.Context, id uuid.UUID) (*Plano, error) {
	var p Plano
	err := r.db.GetContext(ctx, &p, r.db.Rebind(`
		SELECT id, nome, descricao, total_capitulos, created_at
		FROM planos_leitura WHERE id = ?
	`), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlanoNotFound
		}
		return nil, fmt.Errorf("leitura get plano: %w", err)
	}
	return &p, nil
}

func (r *repository) CreateMeta(ctx context.Context, meta *Meta) error {
	result, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO metas_leitura (id, usuario_id, plano_id, capitulos_lidos, concluida, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (usuario_id, plano_id) DO NOTHING
	`), meta.ID, meta.UsuarioID, meta.PlanoID, meta.CapitulosLidos, meta.Concluida, meta.CreatedAt, meta.UpdatedAt)
	if err != nil {
		return fmt.Errorf("leitura create meta: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrMetaExists
	}
	return nil
}

func (r *repository) GetMeta(ctx context.Context, id uuid.UUID) (*Meta, error) {
	return r.getMeta(ctx, r.db, `SELECT `+metaColumns+`
		FROM metas_leitura m JOIN planos_leitura p ON p.id = m.plano_id
		WHERE m.id = ?`, id)
}

func (r *repository) ListMetas(ctx context.Context, usuarioID uuid.UUID) ([]*Meta, error) {
	var metas []*Meta
	err := r.db.SelectContext(ctx, &metas, r.db.Rebind(`SELECT `+metaColumns+`
		FROM metas_leitura m JOIN planos_leitura p ON p.id = m.plano_id
		WHERE m.usuario_id = ?
		ORDER BY m.created_at DESC`), usuarioID)
	if err != nil {
		return nil, fmt.Errorf("leitura list metas: %w", err)
	}
	if metas == nil {
		metas = []*Meta{}
	}
	return metas, nil
}

func (r *repository) RegistrarLeitura(ctx context.Context, reg *Registro) (*Meta, error) {
	ctx2, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	tx, err := r.db.BeginTxx(ctx2, &sql.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("leitura registrar: begin tx: %w", err)
	}
	defer tx.Rollback()

	lock := ""
	if r.db.DriverName() == "postgres" {
		lock = " FOR UPDATE OF m"
	}
	meta, err := r.getMeta(ctx2, tx, `SELECT `+metaColumns+`
		FROM metas_leitura m JOIN planos_leitura p ON p.id = m.plano_id
		WHERE m.id = ?`+lock, reg.MetaID)
	if err != nil {
		return nil, err
	}
	if meta.Concluida {
		return nil, ErrMetaConcluida
	}

	_, err = tx.ExecContext(ctx2, tx.Rebind(`
		INSERT INTO leitura_registros (id, meta_id, usuario_id, livro, capitulo, lido_em, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`), reg.ID, reg.MetaID, reg.UsuarioID, reg.Livro, reg.Capitulo, reg.LidoEm, reg.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("leitura registrar: insert registro: %w", err)
	}

	meta.CapitulosLidos++
	if meta.CapitulosLidos >= meta.TotalCapitulos {
		meta.CapitulosLidos = meta.TotalCapitulos
		meta.Concluida = true
	}
	meta.UpdatedAt = database.Now()

	_, err = tx.ExecContext(ctx2, tx.Rebind(`
		UPDATE metas_leitura SET capitulos_lidos = ?, concluida = ?, updated_at = ? WHERE id = ?
	`), meta.CapitulosLidos, meta.Concluida, meta.UpdatedAt, meta.ID)
	if err != nil {
		return nil, fmt.Errorf("leitura registrar: update meta: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("leitura registrar: commit: %w", err)
	}
	return meta, nil
}

func (r *repository) ListRegistros(ctx context.Context, metaID uuid.UUID, limit int) ([]*Registro, error) {
	var regs []*Registro
	err := r.db.SelectContext(ctx, &regs, r.db.Rebind(`
		SELECT id, meta_id, usuario_id, livro, capitulo, lido_em, created_at
		FROM leitura_registros WHERE meta_id = ?
		ORDER BY lido_em DESC, created_at DESC
		LIMIT ?
	`), metaID, limit)
	if err != nil {
		return nil, fmt.Errorf("leitura list registros: %w", err)
	}
	if regs == nil {
		regs = []*Registro{}
	}
	return regs, nil
}

func (r *repository) getMeta(ctx context.Context, q sqlx.QueryerContext, query string, args ...interface{}) (*Meta, error) {
	var m Meta
	if err := sqlx.GetContext(ctx, q, &m, r.db.Rebind(query), args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMetaNotFound
		}
		return nil, fmt.Errorf("leitura get meta: %w", err)
	}
	return &m, nil
}
