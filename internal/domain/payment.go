package domain

import "context"

// Gateway notification types understood by the lifecycle manager.
const (
	PaymentEventSucceeded = "payment.succeeded"
	PaymentEventCanceled  = "payment.canceled"
)

// PaymentRequest describes the ticket fee a guest is asked to pay.
type PaymentRequest struct {
	GuestID       string
	EventID       string
	TicketNumber  string
	Description   string
	Amount        Money
	Currency      string
	CustomerName  string
	CustomerEmail string
}

// PaymentHandle is what the gateway returns for a newly created payment.
type PaymentHandle struct {
	PaymentID       string
	ConfirmationURL string
	ClientToken     string
}

// PaymentOutcome is a verified, parsed gateway notification.
type PaymentOutcome struct {
	EventType string
	GuestID   string
	Reference string
}

// PaymentGateway is the port to an external payment provider. VerifyNotification
// must authenticate the notification before parsing it and return an error for
// any unsigned, mis-signed or malformed payload.
type PaymentGateway interface {
	Name() string
	CreatePayment(ctx context.Context, req PaymentRequest) (*PaymentHandle, error)
	VerifyNotification(ctx context.Context, headers map[string][]string, body []byte) (*PaymentOutcome, error)
}

// PaymentIntent is returned to a guest who wants to pay for a ticket.
// swagger:model PaymentIntent
type PaymentIntent struct {
	Provider        string `json:"provider"`
	GuestID         string `json:"guest_id"`
	EventID         string `json:"event_id"`
	PaymentID       string `json:"payment_id"`
	ConfirmationURL string `json:"confirmation_url,omitempty"`
	ClientToken     string `json:"client_token,omitempty"`
	Amount          Money  `json:"amount" swaggertype:"string" example:"1500.00"`
	Currency        string `json:"currency"`
}

// PaymentService drives guest payment status from the gateway.
type PaymentService interface {
	CreatePaymentIntent(ctx context.Context, callerID, eventID string) (*PaymentIntent, error)
	ApplyPaymentOutcome(ctx context.Context, outcome PaymentOutcome) error
	// HandleNotification verifies and applies a webhook body. It never fails;
	// every problem is logged so the gateway always gets an acknowledgement.
	HandleNotification(ctx context.Context, headers map[string][]string, body []byte)
}
