package domain

import "context"

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// RequestDecisionEmailData holds data for the moderation-outcome email sent to
// a requester after their participation request is confirmed or rejected.
type RequestDecisionEmailData struct {
	Email      string
	EventTitle string
	Status     RequestStatus
}

// NotificationService sends domain-level notifications. All sends are
// best-effort: failures are logged by callers and never fail the operation
// that triggered them.
type NotificationService interface {
	SendRequestDecision(ctx context.Context, data *RequestDecisionEmailData) error
}
