package email

import (
	"bytes"
	"context"
	"html/template"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const sendTimeout = 15 * time.Second

// Sender delivers a rendered message
type Sender interface {
	Send(ctx context.Context, msg *EmailMessage) error
}

// Service renders templates and delivers them from a background queue
type Service struct {
	sender    Sender
	templates map[string]*template.Template
	base      *template.Template
	queue     chan *QueuedEmail
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// QueuedEmail represents an email in the send queue
type QueuedEmail struct {
	To           string
	ToName       string
	Subject      string
	TemplateName string
	Data         interface{}
}

// NewService starts a queue worker in front of sender
func NewService(sender Sender) *Service {
	s := &Service{
		sender:    sender,
		templates: make(map[string]*template.Template),
		base:      template.Must(template.New("base").Parse(BaseTemplate)),
		queue:     make(chan *QueuedEmail, 100),
	}
	for name, content := range templates {
		s.templates[name] = template.Must(template.New(name).Parse(content))
	}

	s.wg.Add(1)
	go s.worker()

	return s
}

func (s *Service) worker() {
	defer s.wg.Done()

	for email := range s.queue {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		if err := s.send(ctx, email); err != nil {
			log.Error().Err(err).
				Str("template", email.TemplateName).
				Msg("Failed to send email")
		}
		cancel()
	}
}

func (s *Service) send(ctx context.Context, email *QueuedEmail) error {
	tmpl, ok := s.templates[email.TemplateName]
	if !ok {
		log.Warn().Str("template", email.TemplateName).Msg("Template not found")
		return nil
	}

	var content bytes.Buffer
	if err := tmpl.Execute(&content, email.Data); err != nil {
		return err
	}

	var html bytes.Buffer
	if err := s.base.Execute(&html, map[string]interface{}{
		"Title":   email.Subject,
		"Content": template.HTML(content.String()),
	}); err != nil {
		return err
	}

	return s.sender.Send(ctx, &EmailMessage{
		To:          email.To,
		ToName:      email.ToName,
		Subject:     email.Subject,
		HTMLContent: html.String(),
	})
}

// Queue adds an email to the async send queue; a full queue drops it
func (s *Service) Queue(to, toName, templateName, subject string, data interface{}) {
	select {
	case s.queue <- &QueuedEmail{
		To:           to,
		ToName:       toName,
		Subject:      subject,
		TemplateName: templateName,
		Data:         data,
	}:
	default:
		log.Warn().Str("template", templateName).Msg("Email queue full, dropping email")
	}
}

// Close drains the queue and stops the worker
func (s *Service) Close() {
	s.closeOnce.Do(func() {
		close(s.queue)
		s.wg.Wait()
	})
}

// SendConviteInvitation queues the invitation link for a prospective member
func (s *Service) SendConviteInvitation(to, igrejaNome, celulaNome, link string, expiresAt time.Time) {
	subject := "Você foi convidado para " + igrejaNome
	s.Queue(to, "", "convite", subject, map[string]string{
		"IgrejaNome": igrejaNome,
		"CelulaNome": celulaNome,
		"Link":       link,
		"ExpiraEm":   expiresAt.Format("02/01/2006"),
	})
}
