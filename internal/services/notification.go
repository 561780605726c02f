package services

import (
	"context"
	"fmt"
	"log"

	"eventboard/internal/domain"
)

type notificationService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
}

// NewNotificationService returns a NotificationService that uses the given Mailer and template renderer.
func NewNotificationService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer) domain.NotificationService {
	return &notificationService{mailer: mailer, renderer: renderer}
}

// SendRequestDecision emails a requester the outcome of their participation
// request, using the "request_confirmed" or "request_rejected" template.
func (s *notificationService) SendRequestDecision(ctx context.Context, data *domain.RequestDecisionEmailData) error {
	if data == nil {
		return fmt.Errorf("request decision data is nil")
	}
	templateName := "request_rejected"
	if data.Status == domain.RequestConfirmed {
		templateName = "request_confirmed"
	}
	subject, htmlBody, textBody, err := s.renderer.Render(templateName, data)
	if err != nil {
		return fmt.Errorf("failed to render %s template: %w", templateName, err)
	}
	if err := s.mailer.Send(data.Email, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send decision email: %w", err)
	}
	log.Printf("[EMAIL] Request decision (%s) sent to %s", data.Status, data.Email)
	return nil
}
