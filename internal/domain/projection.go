package domain

import "time"

// EventView is the JSON shape of an event as seen by one caller.
// InviteCode and guest ticket numbers are set only for the host.
// swagger:model EventView
type EventView struct {
	ID            string       `json:"id"`
	HostUserID    string       `json:"host_user_id"`
	InterestID    string       `json:"interest_id"`
	Title         string       `json:"title"`
	Description   string       `json:"description"`
	EventDate     time.Time    `json:"event_date"`
	Location      string       `json:"location"`
	TicketPrice   Money        `json:"ticket_price" swaggertype:"string" example:"1500.00"`
	MaxGuests     int          `json:"max_guests"`
	CurrentGuests int          `json:"current_guests"`
	Status        EventStatus  `json:"status"`
	InviteCode    *string      `json:"invite_code,omitempty"`
	Host          *UserSummary `json:"host,omitempty"`
	Interest      *Interest    `json:"interest,omitempty"`
	Guests        []GuestView  `json:"guests,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// GuestView is one guest row inside an EventView.
// swagger:model GuestView
type GuestView struct {
	ID            string        `json:"id"`
	UserID        string        `json:"user_id"`
	Name          string        `json:"name"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	TicketNumber  *string       `json:"ticket_number,omitempty"`
	JoinedAt      time.Time     `json:"joined_at"`
}

// ProjectEvent renders d for callerID. Only the host sees the invite code and
// guests' ticket numbers; every other caller, including an empty one, does not.
func ProjectEvent(d *EventDetails, callerID string) EventView {
	e := d.Event
	isHost := callerID != "" && callerID == e.HostUserID
	v := EventView{
		ID:            e.ID,
		HostUserID:    e.HostUserID,
		InterestID:    e.InterestID,
		Title:         e.Title,
		Description:   e.Description,
		EventDate:     e.EventDate,
		Location:      e.Location,
		TicketPrice:   e.TicketPrice,
		MaxGuests:     e.MaxGuests,
		CurrentGuests: d.CurrentGuests,
		Status:        e.Status,
		Host:          d.Host,
		Interest:      d.Interest,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
	if isHost {
		code := e.InviteCode
		v.InviteCode = &code
	}
	if d.Guests != nil {
		v.Guests = make([]GuestView, 0, len(d.Guests))
		for _, g := range d.Guests {
			gv := GuestView{
				ID:            g.Guest.ID,
				UserID:        g.Guest.UserID,
				Name:          g.User.Name,
				PaymentStatus: g.Guest.PaymentStatus,
				JoinedAt:      g.Guest.CreatedAt,
			}
			if isHost {
				ticket := g.Guest.TicketNumber
				gv.TicketNumber = &ticket
			}
			v.Guests = append(v.Guests, gv)
		}
	}
	return v
}

// ProjectEvents applies ProjectEvent to each item.
func ProjectEvents(items []*EventDetails, callerID string) []EventView {
	out := make([]EventView, 0, len(items))
	for _, d := range items {
		out = append(out, ProjectEvent(d, callerID))
	}
	return out
}
