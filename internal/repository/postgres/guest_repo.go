package postgres

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

// Join locks the event row so concurrent joins for the same event run one at a
// time; the (event_id, user_id) unique key backs up the duplicate check. A clash
// on ticket_number is reported as ErrDuplicateTicket so the caller can retry.
func (r *guestRepository) Join(ctx context.Context, g *domain.EventGuest) (err error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var maxGuests int
	err = tx.QueryRowContext(ctx, `SELECT max_guests FROM events WHERE id = $1 FOR UPDATE`, g.EventID).Scan(&maxGuests)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrEventNotFound
		}
		return fmt.Errorf("lock event: %w", err)
	}

	var joined bool
	var guests int
	err = tx.QueryRowContext(ctx, `
		SELECT
			EXISTS (SELECT 1 FROM event_guests WHERE event_id = $1 AND user_id = $2),
			(SELECT COUNT(*) FROM event_guests WHERE event_id = $1)
	`, g.EventID, g.UserID).Scan(&joined, &guests)
	if err != nil {
		return fmt.Errorf("count guests: %w", err)
	}
	if joined {
		return domain.ErrAlreadyJoined
	}
	if guests >= maxGuests {
		return domain.ErrEventFull
	}

	query := `
		INSERT INTO event_guests (id, event_id, user_id, payment_status, ticket_number, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = tx.ExecContext(ctx, query, g.ID, g.EventID, g.UserID, g.PaymentStatus, g.TicketNumber, g.CreatedAt, g.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			if violatedConstraint(err) == ticketNumberKey {
				return domain.ErrDuplicateTicket
			}
			return domain.ErrAlreadyJoined
		}
		return fmt.Errorf("insert guest: %w", err)
	}
	return tx.Commit()
}

func (r *guestRepository) GetByID(ctx context.Context, id string) (*domain.EventGuest, error) {
	query := `SELECT ` + guestColumns + ` FROM event_guests g WHERE g.id = $1`
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
	query := `SELECT ` + guestColumns + ` FROM event_guests g WHERE g.event_id = $1 AND g.user_id = $2`
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
		SET payment_status = $1, qr_code_data = COALESCE($2, qr_code_data), updated_at = $3
		WHERE id = $4 AND payment_status = $5
	`
	var qr sql.NullString
	if qrCodeData != nil {
		qr = sql.NullString{String: *qrCodeData, Valid: true}
	}
	res, err := r.DB.ExecContext(ctx, query, to, qr, at, id, from)
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
		WHERE g.user_id = $1
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
