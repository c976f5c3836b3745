package domain

import (
	"context"
	"time"
)

// PaymentStatus is the payment state of a guest record.
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusCanceled PaymentStatus = "canceled"
)

// EventGuest links a guest user to an event.
// swagger:model EventGuest
type EventGuest struct {
	ID            string        `json:"id"`
	EventID       string        `json:"event_id"`
	UserID        string        `json:"user_id"`
	TicketNumber  string        `json:"ticket_number"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	QRCodeData    *string       `json:"qr_code_data,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// GuestDetails is a guest record with the guest's public profile.
type GuestDetails struct {
	Guest *EventGuest
	User  UserSummary
}

// GuestTicket is returned to a guest after a successful join.
// swagger:model GuestTicket
type GuestTicket struct {
	GuestID       string        `json:"guest_id"`
	EventID       string        `json:"event_id"`
	UserID        string        `json:"user_id"`
	TicketNumber  string        `json:"ticket_number"`
	PaymentStatus PaymentStatus `json:"payment_status"`
}

// UserTicket is one event the user joined, with their own guest record.
type UserTicket struct {
	Guest *EventGuest
	Event *EventDetails
}

// GuestRepository defines the interface for guest storage.
type GuestRepository interface {
	// Join inserts g unless the user already joined (ErrAlreadyJoined) or the event
	// reached max_guests (ErrEventFull). Both checks and the insert are atomic.
	Join(ctx context.Context, g *EventGuest) error
	GetByID(ctx context.Context, id string) (*EventGuest, error)
	GetByEventAndUser(ctx context.Context, eventID, userID string) (*EventGuest, error)
	// TransitionPayment moves a guest from one status to another and reports whether
	// a row changed. A nil qrCodeData keeps the stored value.
	TransitionPayment(ctx context.Context, id string, from, to PaymentStatus, qrCodeData *string, at time.Time) (bool, error)
	ListTicketsByUser(ctx context.Context, userID string) ([]*UserTicket, error)
}

// GuestService is the guest side of the lifecycle manager.
type GuestService interface {
	JoinEvent(ctx context.Context, eventID, callerID, inviteCode string) (*GuestTicket, error)
	ListTickets(ctx context.Context, userID string) ([]*UserTicket, error)
}
