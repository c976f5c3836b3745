package domain

import (
	"context"
	"time"
)

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(ctx context.Context, to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// TicketIssuedEmailData holds data for the email sent after a successful join.
type TicketIssuedEmailData struct {
	Email        string
	GuestName    string
	EventTitle   string
	EventDate    time.Time
	Location     string
	TicketNumber string
	TicketPrice  Money
}

// PaymentConfirmedEmailData holds data for the email sent when a ticket is paid.
type PaymentConfirmedEmailData struct {
	Email        string
	GuestName    string
	EventTitle   string
	EventDate    time.Time
	TicketNumber string
	Reference    string
}

// EventInvitationEmailData holds data for a host's invitation email.
type EventInvitationEmailData struct {
	Email      string
	HostName   string
	EventTitle string
	EventDate  time.Time
	Location   string
	InviteCode string
	InviteURL  string
}

// EmailService defines the contract for sending domain-level emails.
type EmailService interface {
	SendTicketIssued(ctx context.Context, data *TicketIssuedEmailData) error
	SendPaymentConfirmed(ctx context.Context, data *PaymentConfirmedEmailData) error
	SendEventInvitation(ctx context.Context, data *EventInvitationEmailData) error
}
