package leitura

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/celulas/celulas-api/internal/domain/user"
	"github.com/celulas/celulas-api/internal/pkg/database"
	"github.com/celulas/celulas-api/internal/pkg/logger"
)

const defaultRegistrosLimit = 50

// RegistroInput is one chapter read
type RegistroInput struct {
	Livro    string
	Capitulo int
	// LidoEm defaults to now
	LidoEm *time.Time
}

// Service handles reading plans and goals
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService creates leitura service
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: database.Now}
}

// ListPlanos returns every reading plan
func (s *Service) ListPlanos(ctx context.Context) ([]*Plano, error) {
	return s.repo.ListPlanos(ctx)
}

// IniciarMeta starts the actor's goal on a plan
func (s *Service) IniciarMeta(ctx context.Context, actor *user.User, planoID uuid.UUID) (*Meta, error) {
	plano, err := s.repo.GetPlano(ctx, planoID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	meta := &Meta{
		ID:             uuid.New(),
		UsuarioID:      actor.ID,
		PlanoID:        plano.ID,
		CreatedAt:      now,
		UpdatedAt:      now,
		TotalCapitulos: plano.TotalCapitulos,
	}
	if err := s.repo.CreateMeta(ctx, meta); err != nil {
		return nil, err
	}

	logger.LogInfo(ctx, "Reading goal started", "meta_id", meta.ID.String(), "plano_id", plano.ID.String())
	return meta, nil
}

// ListMetas returns the actor's goals, newest first
func (s *Service) ListMetas(ctx context.Context, actor *user.User) ([]*Meta, error) {
	return s.repo.ListMetas(ctx, actor.ID)
}

// RegistrarLeitura logs a chapter on the actor's goal and advances it.
// Goals of other members are reported as not found.
func (s *Service) RegistrarLeitura(ctx context.Context, actor *user.User, metaID uuid.UUID, in RegistroInput) (*Meta, error) {
	if _, err := s.ownMeta(ctx, actor, metaID); err != nil {
		return nil, err
	}

	now := s.now()
	lidoEm := now
	if in.LidoEm != nil {
		if in.LidoEm.After(now) {
			return nil, ErrLidoNoFuturo
		}
		lidoEm = in.LidoEm.UTC().Truncate(time.Microsecond)
	}

	meta, err := s.repo.RegistrarLeitura(ctx, &Registro{
		ID:        uuid.New(),
		MetaID:    metaID,
		UsuarioID: actor.ID,
		Livro:     in.Livro,
		Capitulo:  in.Capitulo,
		LidoEm:    lidoEm,
		CreatedAt: now,
	})
	if err != nil {
		return nil, err
	}

	if meta.Concluida {
		logger.LogInfo(ctx, "Reading goal completed", "meta_id", meta.ID.String())
	}
	return meta, nil
}

// ListRegistros returns the latest chapters logged on the actor's goal
func (s *Service) ListRegistros(ctx context.Context, actor *user.User, metaID uuid.UUID, limit int) ([]*Registro, error) {
	if _, err := s.ownMeta(ctx, actor, metaID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultRegistrosLimit
	}
	return s.repo.ListRegistros(ctx, metaID, limit)
}

func (s *Service) ownMeta(ctx context.Context, actor *user.User, metaID uuid.UUID) (*Meta, error) {
	meta, err := s.repo.GetMeta(ctx, metaID)
	if err != nil {
		return nil, err
	}
	if meta.UsuarioID != actor.ID {
		return nil, ErrMetaNotFound
	}
	return meta, nil
}
