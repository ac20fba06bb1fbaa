package convite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/celulas/celulas-api/internal/domain/user"
	"github.com/celulas/celulas-api/internal/pkg/database"
	"github.com/celulas/celulas-api/internal/pkg/logger"
)

const (
	DefaultTTL = 7 * 24 * time.Hour
	MaxTTL     = 30 * 24 * time.Hour
)

// CreateInput describes a new invitation
type CreateInput struct {
	CelulaID *uuid.UUID
	Email    string
	TTL      time.Duration
}

// InviteMailer delivers the invitation link to the invitee's inbox
type InviteMailer interface {
	SendConviteInvitation(to, igrejaNome, celulaNome, link string, expiresAt time.Time)
}

// Service handles invitations
type Service struct {
	repo     Repository
	mailer   InviteMailer
	linkBase string
	now      func() time.Time
}

// NewService creates convite service
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: database.Now}
}

// SetMailer enables invitation emails; links are linkBase + "/convite/" + token
func (s *Service) SetMailer(mailer InviteMailer, linkBase string) {
	s.mailer = mailer
	s.linkBase = strings.TrimRight(linkBase, "/")
}

// Create issues an invitation to the actor's church. Leaders and above only.
func (s *Service) Create(ctx context.Context, actor *user.User, in CreateInput) (*Convite, error) {
	if !actor.IsLeaderOrAbove() {
		return nil, ErrForbidden
	}
	igrejaID, ok := actor.ChurchID()
	if !ok {
		return nil, ErrSemIgreja
	}

	c := &Convite{
		ID:        uuid.New(),
		IgrejaID:  igrejaID,
		CriadoPor: actor.ID,
		Email:     in.Email,
	}

	if in.CelulaID != nil {
		celulaIgreja, err := s.repo.CelulaIgreja(ctx, *in.CelulaID)
		if err != nil {
			return nil, err
		}
		if celulaIgreja != igrejaID {
			return nil, ErrCelulaNotFound
		}
		c.CelulaID = uuid.NullUUID{UUID: *in.CelulaID, Valid: true}
	}

	ttl := in.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if ttl > MaxTTL {
		ttl = MaxTTL
	}

	token, err := generateToken()
	if err != nil {
		return nil, fmt.Errorf("convite token: %w", err)
	}
	c.Token = token
	c.CreatedAt = s.now()
	c.ExpiresAt = c.CreatedAt.Add(ttl)

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}

	logger.LogInfo(ctx, "Invitation created", "convite_id", c.ID.String(), "igreja_id", igrejaID.String())

	if c.Email != "" && s.mailer != nil {
		s.mail(ctx, c)
	}
	return c, nil
}

// mail failures never undo the invitation
func (s *Service) mail(ctx context.Context, c *Convite) {
	full, err := s.repo.GetByToken(ctx, c.Token)
	if err != nil {
		logger.LogError(ctx, err, "Invitation email skipped", "convite_id", c.ID.String())
		return
	}
	s.mailer.SendConviteInvitation(c.Email, full.IgrejaNome.String, full.CelulaNome.String, s.linkBase+"/convite/"+c.Token, c.ExpiresAt)
}

// Open resolves a public invitation link and counts the view
func (s *Service) Open(ctx context.Context, token string) (*Convite, error) {
	counted, err := s.repo.RegisterView(ctx, token, s.now())
	if err != nil {
		return nil, err
	}

	c, err := s.repo.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if !counted {
		return nil, ErrConviteExpirado
	}
	return c, nil
}

// ListMine returns the invitations the actor created
func (s *Service) ListMine(ctx context.Context, actor *user.User) ([]*Convite, error) {
	return s.repo.ListByCreator(ctx, actor.ID)
}
