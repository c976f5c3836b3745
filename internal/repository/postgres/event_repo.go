package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"birthdayclub/internal/domain"
)

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

// lockHost serializes event writes per host for the rest of tx.
func lockHost(ctx context.Context, tx *sql.Tx, hostID string) error {
	var id string
	err := tx.QueryRowContext(ctx, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, hostID).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("lock host: %w", err)
	}
	return nil
}

func hostHasEventInMonth(ctx context.Context, tx *sql.Tx, hostID, excludeID string, monthStart, monthEnd time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM events
			WHERE host_user_id = $1 AND event_date BETWEEN $2 AND $3 AND id <> $4
		)
	`
	var exists bool
	if err := tx.QueryRowContext(ctx, query, hostID, monthStart, monthEnd, excludeID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check monthly limit: %w", err)
	}
	return exists, nil
}

func (r *eventRepository) CreateInMonth(ctx context.Context, e *domain.Event, monthStart, monthEnd time.Time) (err error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = lockHost(ctx, tx, e.HostUserID); err != nil {
		return err
	}
	exists, err := hostHasEventInMonth(ctx, tx, e.HostUserID, e.ID, monthStart, monthEnd)
	if err != nil {
		return err
	}
	if exists {
		return domain.ErrMonthlyLimitReached
	}

	query := `
		INSERT INTO events (id, host_user_id, interest_id, title, description, event_date, location,
			ticket_price, max_guests, invite_code, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err = tx.ExecContext(ctx, query,
		e.ID, e.HostUserID, e.InterestID, e.Title, nullString(e.Description), e.EventDate, e.Location,
		e.TicketPrice, e.MaxGuests, e.InviteCode, e.Status, e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateInviteCode
		}
		return fmt.Errorf("insert event: %w", err)
	}
	return tx.Commit()
}

func (r *eventRepository) UpdateInMonth(ctx context.Context, e *domain.Event, monthStart, monthEnd time.Time) (err error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = lockHost(ctx, tx, e.HostUserID); err != nil {
		return err
	}
	exists, err := hostHasEventInMonth(ctx, tx, e.HostUserID, e.ID, monthStart, monthEnd)
	if err != nil {
		return err
	}
	if exists {
		return domain.ErrMonthlyLimitReached
	}

	// Joins lock the same event row, so the count cannot move under us.
	var guests int
	err = tx.QueryRowContext(ctx, `
		SELECT (SELECT COUNT(*) FROM event_guests WHERE event_id = e.id)
		FROM events e WHERE e.id = $1 FOR UPDATE
	`, e.ID).Scan(&guests)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrEventNotFound
		}
		return fmt.Errorf("count guests: %w", err)
	}
	if e.MaxGuests < guests {
		return domain.ErrCapacityBelowGuests
	}

	query := `
		UPDATE events
		SET title = $1, description = $2, event_date = $3, location = $4,
			ticket_price = $5, max_guests = $6, updated_at = $7
		WHERE id = $8
	`
	_, err = tx.ExecContext(ctx, query,
		e.Title, nullString(e.Description), e.EventDate, e.Location,
		e.TicketPrice, e.MaxGuests, e.UpdatedAt, e.ID,
	)
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	return tx.Commit()
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events e WHERE e.id = $1`
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrEventNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) GetByInviteCode(ctx context.Context, code string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events e WHERE e.invite_code = $1`
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, code))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrInviteNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) GetDetails(ctx context.Context, id string) (*domain.EventDetails, error) {
	query := `SELECT ` + eventColumns + `, ` + detailColumns + ` ` + detailJoins + ` WHERE e.id = $1`
	d, err := scanDetails(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrEventNotFound
		}
		return nil, err
	}
	if err := r.attachGuests(ctx, []*domain.EventDetails{d}); err != nil {
		return nil, err
	}
	return d, nil
}

func (r *eventRepository) Feed(ctx context.Context, f domain.FeedFilter) ([]*domain.EventDetails, int, error) {
	where := `
		WHERE e.event_date >= $1
			AND ($2 = '' OR e.location ILIKE '%' || $2 || '%')
			AND ($3 = '' OR e.interest_id = $3)
	`
	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM events e`+where, f.From, f.City, f.InterestID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count feed: %w", err)
	}

	query := `SELECT ` + eventColumns + `, ` + detailColumns + ` ` + detailJoins + where + `
		ORDER BY e.event_date ASC, e.id ASC
		LIMIT $4 OFFSET $5
	`
	rows, err := r.DB.QueryContext(ctx, query, f.From, f.City, f.InterestID, f.Pagination.PageSize, f.Pagination.Offset())
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	items := make([]*domain.EventDetails, 0)
	for rows.Next() {
		d, err := scanDetails(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *eventRepository) ListByHost(ctx context.Context, hostID string) ([]*domain.EventDetails, error) {
	query := `SELECT ` + eventColumns + `, ` + detailColumns + ` ` + detailJoins + `
		WHERE e.host_user_id = $1
		ORDER BY e.event_date DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, hostID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]*domain.EventDetails, 0)
	for rows.Next() {
		d, err := scanDetails(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.attachGuests(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

// attachGuests loads the guest rows of every listed event in one query.
func (r *eventRepository) attachGuests(ctx context.Context, items []*domain.EventDetails) error {
	if len(items) == 0 {
		return nil
	}
	byID := make(map[string]*domain.EventDetails, len(items))
	ids := make([]string, 0, len(items))
	for _, d := range items {
		d.Guests = []*domain.GuestDetails{}
		byID[d.Event.ID] = d
		ids = append(ids, d.Event.ID)
	}

	query := `
		SELECT ` + guestColumns + `, u.name, u.city
		FROM event_guests g
		JOIN users u ON u.id = g.user_id
		WHERE g.event_id = ANY($1)
		ORDER BY g.created_at ASC, g.id ASC
	`
	rows, err := r.DB.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("list guests: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		var city sql.NullString
		g, err := scanGuest(rows, &name, &city)
		if err != nil {
			return err
		}
		user := domain.UserSummary{ID: g.UserID, Name: name}
		if city.Valid {
			user.City = &city.String
		}
		if d, ok := byID[g.EventID]; ok {
			d.Guests = append(d.Guests, &domain.GuestDetails{Guest: g, User: user})
		}
	}
	return rows.Err()
}
