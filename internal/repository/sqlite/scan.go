package sqlite

import (
	"database/sql"

	"birthdayclub/internal/domain"
)

type rowScanner interface {
	Scan(dest ...any) error
}

const eventColumns = `e.id, e.host_user_id, e.interest_id, e.title, e.description, e.event_date,
		e.location, e.ticket_price, e.max_guests, e.invite_code, e.status, e.created_at, e.updated_at`

const detailColumns = `u.name, u.city, i.name, i.created_at,
		(SELECT COUNT(*) FROM event_guests cg WHERE cg.event_id = e.id)`

const detailJoins = `FROM events e
		JOIN users u ON u.id = e.host_user_id
		JOIN interests i ON i.id = e.interest_id`

const guestColumns = `g.id, g.event_id, g.user_id, g.ticket_number, g.payment_status, g.qr_code_data,
		g.created_at, g.updated_at`

func scanEvent(s rowScanner, extra ...any) (*domain.Event, error) {
	e := &domain.Event{}
	var desc sql.NullString
	dest := append([]any{
		&e.ID, &e.HostUserID, &e.InterestID, &e.Title, &desc, timeValue{&e.EventDate},
		&e.Location, &e.TicketPrice, &e.MaxGuests, &e.InviteCode, &e.Status,
		timeValue{&e.CreatedAt}, timeValue{&e.UpdatedAt},
	}, extra...)
	if err := s.Scan(dest...); err != nil {
		return nil, err
	}
	e.Description = desc.String
	return e, nil
}

func scanDetails(s rowScanner, extra ...any) (*domain.EventDetails, error) {
	host := &domain.UserSummary{}
	interest := &domain.Interest{}
	var city sql.NullString
	d := &domain.EventDetails{}
	dest := append([]any{&host.Name, &city, &interest.Name, timeValue{&interest.CreatedAt}, &d.CurrentGuests}, extra...)
	e, err := scanEvent(s, dest...)
	if err != nil {
		return nil, err
	}
	host.ID = e.HostUserID
	if city.Valid {
		host.City = &city.String
	}
	interest.ID = e.InterestID
	d.Event, d.Host, d.Interest = e, host, interest
	return d, nil
}

func guestDest(g *domain.EventGuest, qr *sql.NullString) []any {
	return []any{&g.ID, &g.EventID, &g.UserID, &g.TicketNumber, &g.PaymentStatus, qr,
		timeValue{&g.CreatedAt}, timeValue{&g.UpdatedAt}}
}

func scanGuest(s rowScanner, extra ...any) (*domain.EventGuest, error) {
	g := &domain.EventGuest{}
	var qr sql.NullString
	if err := s.Scan(append(guestDest(g, &qr), extra...)...); err != nil {
		return nil, err
	}
	if qr.Valid {
		g.QRCodeData = &qr.String
	}
	return g, nil
}
