package trilha

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/celulas/celulas-api/internal/domain/user"
	"github.com/celulas/celulas-api/internal/pkg/database"
	"github.com/celulas/celulas-api/internal/pkg/logger"
)

// UserLookup loads the subject of a request
type UserLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
}

// CreateInput is a new advancement request
type CreateInput struct {
	TrilhaID   uuid.UUID
	UsuarioID  uuid.UUID
	AreaID     uuid.UUID
	Observacao string
}

// UpdateStatusInput moves a request to Status
type UpdateStatusInput struct {
	TrilhaID      uuid.UUID
	SolicitacaoID uuid.UUID
	Status        Status
	Observacao    *string
}

// Service handles growth tracks and advancement requests
type Service struct {
	repo     Repository
	users    UserLookup
	notifier *Notifier

	// in-flight notice fan-outs
	wg sync.WaitGroup
}

// NewService creates trilha service; notifier may be nil
func NewService(repo Repository, users UserLookup, notifier *Notifier) *Service {
	return &Service{repo: repo, users: users, notifier: notifier}
}

// ListTrilhas returns the tracks of the actor's church
func (s *Service) ListTrilhas(ctx context.Context, actor *user.User) ([]*Trilha, error) {
	igrejaID, ok := actor.ChurchID()
	if !ok {
		return []*Trilha{}, nil
	}
	return s.repo.ListTrilhas(ctx, igrejaID)
}

// ListSolicitacoes returns a track's requests; leaders and above only
func (s *Service) ListSolicitacoes(ctx context.Context, actor *user.User, trilhaID uuid.UUID, status Status) ([]*Solicitacao, error) {
	if !actor.IsLeaderOrAbove() {
		return nil, ErrForbidden
	}
	if _, err := s.trilhaInChurch(ctx, actor, trilhaID); err != nil {
		return nil, err
	}
	return s.repo.ListSolicitacoes(ctx, trilhaID, status)
}

// Create files an advancement request. Leaders and above may file for anyone
// in their church; a member may only file for themself. Requests start PENDENTE.
func (s *Service) Create(ctx context.Context, actor *user.User, in CreateInput) (*Solicitacao, error) {
	if in.UsuarioID == uuid.Nil {
		in.UsuarioID = actor.ID
	}
	if !actor.IsLeaderOrAbove() && in.UsuarioID != actor.ID {
		return nil, ErrForbidden
	}

	t, err := s.trilhaInChurch(ctx, actor, in.TrilhaID)
	if err != nil {
		return nil, err
	}

	area, err := s.repo.GetArea(ctx, in.AreaID)
	if err != nil {
		return nil, err
	}
	if area.IgrejaID != t.IgrejaID {
		return nil, ErrAreaNotFound
	}

	subject, err := s.users.GetByID(ctx, in.UsuarioID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, ErrUsuarioNotFound
		}
		return nil, err
	}
	if church, ok := subject.ChurchID(); !ok || church != t.IgrejaID {
		return nil, ErrUsuarioNotFound
	}

	now := database.Now()
	sol := &Solicitacao{
		ID:         uuid.New(),
		TrilhaID:   t.ID,
		UsuarioID:  subject.ID,
		LiderID:    actor.ID,
		AreaID:     area.ID,
		Status:     StatusPendente,
		Observacao: in.Observacao,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.CreateSolicitacao(ctx, sol); err != nil {
		return nil, err
	}

	logger.LogInfo(ctx, "Advancement request created",
		"solicitacao_id", sol.ID.String(),
		"trilha_id", t.ID.String(),
	)

	created := *sol
	s.emit(ctx, func(ctx context.Context) {
		s.notifier.SolicitacaoCriada(ctx, &created, t, area)
	})
	return sol, nil
}

// UpdateStatus resolves (or reopens) a request. Only supervisors and pastors
// may do so; any status may move to any other.
func (s *Service) UpdateStatus(ctx context.Context, actor *user.User, in UpdateStatusInput) (*Solicitacao, error) {
	if !actor.CanResolveAdvancement() {
		return nil, ErrForbidden
	}
	if _, ok := ParseStatus(string(in.Status)); !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, in.Status)
	}

	t, err := s.trilhaInChurch(ctx, actor, in.TrilhaID)
	if err != nil {
		return nil, err
	}

	sol, err := s.repo.GetSolicitacao(ctx, in.SolicitacaoID)
	if err != nil {
		return nil, err
	}
	if sol.TrilhaID != t.ID {
		return nil, ErrSolicitacaoNotFound
	}

	now := database.Now()
	sol.Status = in.Status
	if in.Observacao != nil {
		sol.Observacao = *in.Observacao
	}
	sol.SupervisorID = uuid.NullUUID{UUID: actor.ID, Valid: true}
	sol.DataResposta = sql.NullTime{Time: now, Valid: true}
	sol.UpdatedAt = now

	if err := s.repo.UpdateStatus(ctx, sol); err != nil {
		return nil, err
	}

	logger.LogInfo(ctx, "Advancement request status changed",
		"solicitacao_id", sol.ID.String(),
		"status", string(sol.Status),
	)

	updated := *sol
	s.emit(ctx, func(ctx context.Context) {
		s.notifier.StatusAlterado(ctx, &updated, t)
	})
	return sol, nil
}

// Wait blocks until every notice fan-out started so far has finished
func (s *Service) Wait() {
	s.wg.Wait()
}

// emit runs fn in the background on a context that outlives the request
func (s *Service) emit(ctx context.Context, fn func(ctx context.Context)) {
	if s.notifier == nil {
		return
	}

	detached := context.WithoutCancel(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			if rec := recover(); rec != nil {
				logger.FromContext(detached).Error().Interface("panic", rec).Msg("Notice fan-out panicked")
			}
		}()
		fn(detached)
	}()
}

func (s *Service) trilhaInChurch(ctx context.Context, actor *user.User, trilhaID uuid.UUID) (*Trilha, error) {
	t, err := s.repo.GetTrilha(ctx, trilhaID)
	if err != nil {
		return nil, err
	}
	if church, ok := actor.ChurchID(); !ok || church != t.IgrejaID {
		return nil, ErrTrilhaNotFound
	}
	return t, nil
}
