package trilha

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

const solicitacaoColumns = `id, trilha_id, usuario_id, lider_id, area_id, status, observacao, supervisor_id, data_resposta, created_at, updated_at`

// Repository defines track and advancement request persistence
type Repository interface {
	ListTrilhas(ctx context.Context, igrejaID uuid.UUID) ([]*Trilha, error)
	GetTrilha(ctx context.Context, id uuid.UUID) (*Trilha, error)
	GetArea(ctx context.Context, id uuid.UUID) (*Area, error)
	CreateSolicitacao(ctx context.Context, s *Solicitacao) error
	GetSolicitacao(ctx context.Context, id uuid.UUID) (*Solicitacao, error)
	ListSolicitacoes(ctx context.Context, trilhaID uuid.UUID, status Status) ([]*Solicitacao, error)
	UpdateStatus(ctx context.Context, s *Solicitacao) error
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates trilha repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) ListTrilhas(ctx context.Context, igrejaID uuid.UUID) ([]*Trilha, error) {
	query := r.db.Rebind(`
		SELECT id, igreja_id, nome, descricao, ordem, created_at
		FROM trilhas WHERE igreja_id = ?
		ORDER BY ordem, nome
	`)
	var trilhas []*Trilha
	if err := r.db.SelectContext(ctx, &trilhas, query, igrejaID); err != nil {
		return nil, fmt.Errorf("trilha list: %w", err)
	}
	return trilhas, nil
}

func (r *repository) GetTrilha(ctx context.Context, id uuid.UUID) (*Trilha, error) {
	query := r.db.Rebind(`SELECT id, igreja_id, nome, descricao, ordem, created_at FROM trilhas WHERE id = ?`)
	var t Trilha
	if err := r.db.GetContext(ctx, &t, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTrilhaNotFound
		}
		return nil, fmt.Errorf("trilha get: %w", err)
	}
	return &t, nil
}

func (r *repository) GetArea(ctx context.Context, id uuid.UUID) (*Area, error) {
	query := r.db.Rebind(`SELECT id, igreja_id, nome, supervisor_id, created_at FROM areas_supervisao WHERE id = ?`)
	var a Area
	if err := r.db.GetContext(ctx, &a, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAreaNotFound
		}
		return nil, fmt.Errorf("area get: %w", err)
	}
	return &a, nil
}

func (r *repository) CreateSolicitacao(ctx context.Context, s *Solicitacao) error {
	query := r.db.Rebind(`
		INSERT INTO solicitacoes_avanco_trilha
			(id, trilha_id, usuario_id, lider_id, area_id, status, observacao, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	_, err := r.db.ExecContext(ctx, query,
		s.ID, s.TrilhaID, s.UsuarioID, s.LiderID, s.AreaID, s.Status, s.Observacao, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("solicitacao create: %w", err)
	}
	return nil
}

func (r *repository) GetSolicitacao(ctx context.Context, id uuid.UUID) (*Solicitacao, error) {
	query := r.db.Rebind(`SELECT ` + solicitacaoColumns + ` FROM solicitacoes_avanco_trilha WHERE id = ?`)
	var s Solicitacao
	if err := r.db.GetContext(ctx, &s, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSolicitacaoNotFound
		}
		return nil, fmt.Errorf("solicitacao get: %w", err)
	}
	return &s, nil
}

// ListSolicitacoes returns a track's requests, newest first; an empty status matches all
func (r *repository) ListSolicitacoes(ctx context.Context, trilhaID uuid.UUID, status Status) ([]*Solicitacao, error) {
	query := `SELECT ` + solicitacaoColumns + ` FROM solicitacoes_avanco_trilha WHERE trilha_id = ?`
	args := []interface{}{trilhaID}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	var items []*Solicitacao
	if err := r.db.SelectContext(ctx, &items, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("solicitacao list: %w", err)
	}
	return items, nil
}

func (r *repository) UpdateStatus(ctx context.Context, s *Solicitacao) error {
	query := r.db.Rebind(`
		UPDATE solicitacoes_avanco_trilha
		SET status = ?, observacao = ?, supervisor_id = ?, data_resposta = ?, updated_at = ?
		WHERE id = ?
	`)
	result, err := r.db.ExecContext(ctx, query,
		s.Status, s.Observacao, s.SupervisorID, s.DataResposta, s.UpdatedAt, s.ID)
	if err != nil {
		return fmt.Errorf("solicitacao update status: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrSolicitacaoNotFound
	}
	return nil
}

