package domain

import (
	"context"
	"time"
)

// EventStatus is the lifecycle status of an event.
type EventStatus string

const EventStatusPlanned EventStatus = "planned"

// Event is a monthly birthday-club gathering hosted by one user.
// swagger:model Event
type Event struct {
	ID          string      `json:"id"`
	HostUserID  string      `json:"host_user_id"`
	InterestID  string      `json:"interest_id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	EventDate   time.Time   `json:"event_date"`
	Location    string      `json:"location"`
	TicketPrice Money       `json:"ticket_price" swaggertype:"string" example:"1500.00"`
	MaxGuests   int         `json:"max_guests"`
	InviteCode  string      `json:"invite_code"`
	Status      EventStatus `json:"status"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// CreateEventInput holds the host-supplied fields of a new event.
// EventDate is parsed by the service so that zone-less values use the club time zone.
type CreateEventInput struct {
	InterestID  string `json:"interest_id" validate:"required"`
	Title       string `json:"title" validate:"min=3,max=255"`
	Description string `json:"description" validate:"max=2000"`
	EventDate   string `json:"event_date" validate:"required"`
	Location    string `json:"location" validate:"min=3,max=255"`
	TicketPrice Money  `json:"ticket_price" validate:"gte=0,lte=9999999999"`
	MaxGuests   int    `json:"max_guests" validate:"min=1,max=100"`
}

// UpdateEventInput holds the fields a host may change. Nil fields are left unchanged.
type UpdateEventInput struct {
	Title       *string `json:"title" validate:"omitempty,min=3,max=255"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	EventDate   *string `json:"event_date" validate:"omitempty,min=1"`
	Location    *string `json:"location" validate:"omitempty,min=3,max=255"`
	TicketPrice *Money  `json:"ticket_price" validate:"omitempty,gte=0,lte=9999999999"`
	MaxGuests   *int    `json:"max_guests" validate:"omitempty,min=1,max=100"`
}

// EventDetails is an event together with the records shown next to it.
// Guests is nil when the listing does not load guest rows.
type EventDetails struct {
	Event         *Event
	Host          *UserSummary
	Interest      *Interest
	CurrentGuests int
	Guests        []*GuestDetails
}

// FeedFilter selects upcoming events for the feed.
type FeedFilter struct {
	From       time.Time
	City       string
	InterestID string
	Pagination PaginationParams
}

// EventRepository defines the interface for event storage.
type EventRepository interface {
	// CreateInMonth inserts e unless its host already has an event dated within
	// [monthStart, monthEnd]. The check and the insert are one atomic operation.
	// Returns ErrMonthlyLimitReached or ErrDuplicateInviteCode on conflict.
	CreateInMonth(ctx context.Context, e *Event, monthStart, monthEnd time.Time) error
	// UpdateInMonth persists e with the same monthly rule, ignoring e itself, and
	// rejects a MaxGuests below the current guest count with ErrCapacityBelowGuests.
	UpdateInMonth(ctx context.Context, e *Event, monthStart, monthEnd time.Time) error
	GetByID(ctx context.Context, id string) (*Event, error)
	GetByInviteCode(ctx context.Context, code string) (*Event, error)
	GetDetails(ctx context.Context, id string) (*EventDetails, error)
	Feed(ctx context.Context, filter FeedFilter) ([]*EventDetails, int, error)
	ListByHost(ctx context.Context, hostID string) ([]*EventDetails, error)
}

// EventService is the event side of the lifecycle manager.
type EventService interface {
	CreateEvent(ctx context.Context, hostID string, in CreateEventInput) (*Event, error)
	UpdateEvent(ctx context.Context, eventID, callerID string, in UpdateEventInput) (*Event, error)
	GetEvent(ctx context.Context, eventID string) (*EventDetails, error)
	GetByInviteCode(ctx context.Context, code string) (*EventDetails, error)
	Feed(ctx context.Context, city, interestID string, params PaginationParams) ([]*EventDetails, int, error)
	ListHosted(ctx context.Context, hostID string) ([]*EventDetails, error)
	SendInvitations(ctx context.Context, eventID, callerID string, emails []string) (sent int, failed []string, err error)
}
