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

// RSVPConfirmationEmailData holds data for the guest confirmation email.
type RSVPConfirmationEmailData struct {
	Email      string
	GuestName  string
	EventName  string
	Selections []SelectedItem
}

// EmailService defines the contract for sending domain-level emails.
type EmailService interface {
	SendRSVPConfirmation(ctx context.Context, data *RSVPConfirmationEmailData) error
}

// Routing keys for messages published on the events exchange.
const (
	RoutingKeyGuestSubmitted = "guest.submitted"
	RoutingKeyEventDeleted   = "event.deleted"
)

// MessagePublisher publishes domain messages to a broker.
type MessagePublisher interface {
	Publish(routingKey string, payload any) error
}
