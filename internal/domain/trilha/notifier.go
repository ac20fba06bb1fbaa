package trilha

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/celulas/celulas-api/internal/domain/notification"
	"github.com/celulas/celulas-api/internal/pkg/logger"
)

// supervisorNoticeTTL bounds how long a review request stays in the supervisor's inbox
const supervisorNoticeTTL = 7 * 24 * time.Hour

// NoticeCreator stores a single notice
type NoticeCreator interface {
	Create(ctx context.Context, in notification.CreateInput) (*notification.Notification, error)
}

type statusMessage struct {
	title string
	body  string
}

var statusMessages = map[Status]statusMessage{
	StatusPendente:  {title: "Solicitação reaberta", body: "A solicitação de avanço em %q voltou para análise."},
	StatusAprovada:  {title: "Solicitação aprovada", body: "A solicitação de avanço em %q foi aprovada."},
	StatusRejeitada: {title: "Solicitação rejeitada", body: "A solicitação de avanço em %q foi rejeitada."},
}

// Notifier fans advancement events out as notices. Every notice is sent on
// its own: a failure is logged and the rest still go out.
type Notifier struct {
	notices NoticeCreator
}

// NewNotifier creates the advancement notifier
func NewNotifier(notices NoticeCreator) *Notifier {
	return &Notifier{notices: notices}
}

// SolicitacaoCriada alerts the area supervisor, if there is one, and confirms to the leader
func (n *Notifier) SolicitacaoCriada(ctx context.Context, s *Solicitacao, t *Trilha, area *Area) {
	data := &notification.NotificationData{
		TrilhaID:      &s.TrilhaID,
		SolicitacaoID: &s.ID,
		AreaID:        &s.AreaID,
		Status:        string(s.Status),
	}

	if area != nil && area.SupervisorID.Valid {
		n.send(ctx, notification.CreateInput{
			UserID:   area.SupervisorID.UUID,
			Type:     notification.TypeSolicitacaoPendente,
			Title:    "Nova solicitação de avanço",
			Body:     fmt.Sprintf("Há uma solicitação de avanço em %q aguardando sua análise.", t.Nome),
			Data:     data,
			Priority: notification.PriorityHigh,
			TTL:      supervisorNoticeTTL,
		})
	} else {
		logger.LogDebug(ctx, "Area has no supervisor, skipping review notice", "area_id", s.AreaID.String())
	}

	n.send(ctx, notification.CreateInput{
		UserID:   s.LiderID,
		Type:     notification.TypeSolicitacaoEnviada,
		Title:    "Solicitação enviada",
		Body:     fmt.Sprintf("Sua solicitação de avanço em %q foi enviada.", t.Nome),
		Data:     data,
		Priority: notification.PriorityNormal,
	})
}

// StatusAlterado tells the subject and the requesting leader about the new status
func (n *Notifier) StatusAlterado(ctx context.Context, s *Solicitacao, t *Trilha) {
	msg, ok := statusMessages[s.Status]
	if !ok {
		logger.LogWarn(ctx, "No notice template for status", "status", string(s.Status))
		return
	}

	priority := notification.PriorityNormal
	if s.Status == StatusRejeitada {
		priority = notification.PriorityHigh
	}

	data := &notification.NotificationData{
		TrilhaID:      &s.TrilhaID,
		SolicitacaoID: &s.ID,
		Status:        string(s.Status),
	}
	body := fmt.Sprintf(msg.body, t.Nome)
	if s.Observacao != "" {
		body += " " + s.Observacao
	}

	for _, recipient := range uniqueRecipients(s.UsuarioID, s.LiderID) {
		n.send(ctx, notification.CreateInput{
			UserID:   recipient,
			Type:     notification.TypeSolicitacaoStatus,
			Title:    msg.title,
			Body:     body,
			Data:     data,
			Priority: priority,
		})
	}
}

func (n *Notifier) send(ctx context.Context, in notification.CreateInput) {
	if _, err := n.notices.Create(ctx, in); err != nil {
		logger.LogError(ctx, err, "Failed to create notice",
			"recipient_id", in.UserID.String(),
			"type", string(in.Type),
		)
	}
}

func uniqueRecipients(ids ...uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
