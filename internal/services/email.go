package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"birthdayclub/internal/domain"
)

type emailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
	logger   *slog.Logger
}

// NewEmailService returns an EmailService that uses the given Mailer and template renderer.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer, logger *slog.Logger) domain.EmailService {
	return &emailService{mailer: mailer, renderer: renderer, logger: logger}
}

func (s *emailService) SendTicketIssued(ctx context.Context, data *domain.TicketIssuedEmailData) error {
	if data == nil {
		return errors.New("ticket issued email data is nil")
	}
	return s.send(ctx, "ticket_issued", data.Email, data)
}

func (s *emailService) SendPaymentConfirmed(ctx context.Context, data *domain.PaymentConfirmedEmailData) error {
	if data == nil {
		return errors.New("payment confirmed email data is nil")
	}
	return s.send(ctx, "payment_confirmed", data.Email, data)
}

func (s *emailService) SendEventInvitation(ctx context.Context, data *domain.EventInvitationEmailData) error {
	if data == nil {
		return errors.New("event invitation email data is nil")
	}
	return s.send(ctx, "event_invitation", data.Email, data)
}

func (s *emailService) send(ctx context.Context, template, to string, data any) error {
	if to == "" {
		return fmt.Errorf("%s email: empty recipient", template)
	}
	subject, htmlBody, textBody, err := s.renderer.Render(template, data)
	if err != nil {
		return fmt.Errorf("render %s template: %w", template, err)
	}
	if err := s.mailer.Send(ctx, to, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("send %s email: %w", template, err)
	}
	s.logger.DebugContext(ctx, "email sent", "template", template, "to", to)
	return nil
}
