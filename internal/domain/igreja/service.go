package igreja

import (
	"context"

	"github.com/google/uuid"

	"github.com/celulas/celulas-api/internal/domain/user"
	"github.com/celulas/celulas-api/internal/pkg/database"
	"github.com/celulas/celulas-api/internal/pkg/logger"
)

// CreateCelulaInput describes a new cell. LiderID defaults to the actor.
type CreateCelulaInput struct {
	Nome      string
	DiaSemana DiaSemana
	Horario   string
	AreaID    *uuid.UUID
	LiderID   *uuid.UUID
}

// Service handles church and cell read models
type Service struct {
	repo Repository
}

// NewService creates igreja service
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Minha returns the actor's church
func (s *Service) Minha(ctx context.Context, actor *user.User) (*Igreja, error) {
	igrejaID, ok := actor.ChurchID()
	if !ok {
		return nil, ErrSemIgreja
	}
	return s.repo.GetByID(ctx, igrejaID)
}

// ListCelulas returns the cells of the actor's church
func (s *Service) ListCelulas(ctx context.Context, actor *user.User) ([]*Celula, error) {
	igrejaID, ok := actor.ChurchID()
	if !ok {
		return nil, ErrSemIgreja
	}
	return s.repo.ListCelulas(ctx, igrejaID)
}

// ListMembros pages through the actor's church members; leaders and above only
func (s *Service) ListMembros(ctx context.Context, actor *user.User, limit, offset int) ([]*Membro, int, error) {
	if !actor.IsLeaderOrAbove() {
		return nil, 0, ErrForbidden
	}
	igrejaID, ok := actor.ChurchID()
	if !ok {
		return nil, 0, ErrSemIgreja
	}
	return s.repo.ListMembros(ctx, igrejaID, limit, offset)
}

// CreateCelula opens a cell in the actor's church. Area and leader must
// belong to the same church.
func (s *Service) CreateCelula(ctx context.Context, actor *user.User, in CreateCelulaInput) (*Celula, error) {
	if !actor.IsLeaderOrAbove() {
		return nil, ErrForbidden
	}
	igrejaID, ok := actor.ChurchID()
	if !ok {
		return nil, ErrSemIgreja
	}

	c := &Celula{
		ID:        uuid.New(),
		IgrejaID:  igrejaID,
		Nome:      in.Nome,
		DiaSemana: in.DiaSemana,
		Horario:   in.Horario,
		LiderID:   uuid.NullUUID{UUID: actor.ID, Valid: true},
		CreatedAt: database.Now(),
	}

	if in.AreaID != nil {
		areaIgreja, err := s.repo.AreaIgreja(ctx, *in.AreaID)
		if err != nil {
			return nil, err
		}
		if areaIgreja != igrejaID {
			return nil, ErrAreaNotFound
		}
		c.AreaID = uuid.NullUUID{UUID: *in.AreaID, Valid: true}
	}

	if in.LiderID != nil && *in.LiderID != actor.ID {
		liderIgreja, err := s.repo.UserIgreja(ctx, *in.LiderID)
		if err != nil {
			return nil, err
		}
		if liderIgreja != igrejaID {
			return nil, ErrLiderNotFound
		}
		c.LiderID = uuid.NullUUID{UUID: *in.LiderID, Valid: true}
	}

	if err := s.repo.CreateCelula(ctx, c); err != nil {
		return nil, err
	}

	logger.LogInfo(ctx, "Cell created", "celula_id", c.ID.String(), "igreja_id", igrejaID.String())
	return c, nil
}
