package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"birthdayclub/internal/domain"
)

type guestRepository struct {
	DB *sql.DB
}

func NewGuestRepository(db *sql.DB) domain.GuestRepository {
	return &guestRepository{DB: db}
}

// Join inserts the guest row in one statement that re-counts the guests of the
// event as part of the write, so capacity can never be exceeded. When no row is
// written the reason is classified afterwards; duplicate wins over full.
func (r *guestRepository) Join(ctx context.Context, g *domain.EventGuest) error {
	query := `
		INSERT INTO event_guests (id, event_id, user_id, payment_status, ticket_number, created_at, updated_at)
		SELECT ?, e.id, ?, ?, ?, ?, ?
		FROM events e
		WHERE e.id = ?
			AND (SELECT COUNT(*) FROM event_guests c WHERE c.event_id = e.id) < e.max_guests
		ON CONFLICT (event_id, user_id) DO NOTHING
	`
	res, err := r.DB.ExecContext(ctx, query,
		g.ID, g.UserID, g.PaymentStatus, g.TicketNumber, ts(g.CreatedAt), ts(g.UpdatedAt), g.EventID,
	)
	if err != nil {
		if isColumnConflict(err, "event_guests.ticket_number") {
			return domain.ErrDuplicateTicket
		}
		if isUniqueViolation(err) {
			return domain.ErrAlreadyJoined
		}
		return fmt.Errorf("insert guest: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}

	var events, joined int
	err = r.DB.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM events WHERE id = ?),
			(SELECT COUNT(*) FROM event_guests WHERE event_id = ? AND user_id = ?)
	`, g.EventID, g.EventID, g.UserID).Scan(&events, &joined)
	if err != nil {
		return fmt.Errorf("classify join: %w", err)
	}
	switch {
	case events == 0:
		return domain.ErrEventNotFound
	case joined > 0:
		return domain.ErrAlreadyJoined
	default:
		return domain.ErrEventFull
	}
}

func (r *guestRepository) GetByID(ctx context.Context, id string) (*domain.EventGuest, error) {
	query := `SELECT ` + guestColumns + ` FROM event_guests g WHERE g.id = ?`
	g, err := scanGuest(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrGuestNotFound
		}
		return nil, err
	}
	return g, nil
}

func (r *guestRepository) GetByEventAndUser(ctx context.Context, eventID, userID string) (*domain.EventGuest, error) {
	query := `SELECT ` + guestColumns + ` FROM event_guests g WHERE g.event_id = ? AND g.user_id = ?`
	g, err := scanGuest(r.DB.QueryRowContext(ctx, query, eventID, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrGuestNotFound
		}
		return nil, err
	}
	return g, nil
}

func (r *guestRepository) TransitionPayment(ctx context.Context, id string, from, to domain.PaymentStatus, qrCodeData *string, at time.Time) (bool, error) {
	query := `
		UPDATE event_guests
		SET payment_status = ?, qr_code_data = COALESCE(?, qr_code_data), updated_at = ?
		WHERE id = ? AND payment_status = ?
	`
	var qr sql.NullString
	if qrCodeData != nil {
		qr = sql.NullString{String: *qrCodeData, Valid: true}
	}
	res, err := r.DB.ExecContext(ctx, query, to, qr, ts(at), id, from)
	if err != nil {
		return false, fmt.Errorf("update payment status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *guestRepository) ListTicketsByUser(ctx context.Context, userID string) ([]*domain.UserTicket, error) {
	query := `
		SELECT ` + eventColumns + `, ` + detailColumns + `, ` + guestColumns + `
		` + detailJoins + `
		JOIN event_guests g ON g.event_id = e.id
		WHERE g.user_id = ?
		ORDER BY e.event_date DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tickets := make([]*domain.UserTicket, 0)
	for rows.Next() {
		g := &domain.EventGuest{}
		var qr sql.NullString
		d, err := scanDetails(rows, guestDest(g, &qr)...)
		if err != nil {
			return nil, err
		}
		if qr.Valid {
			g.QRCodeData = &qr.String
		}
		tickets = append(tickets, &domain.UserTicket{Guest: g, Event: d})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tickets, nil
}
