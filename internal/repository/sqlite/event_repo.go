package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"birthdayclub/internal/domain"
)

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{DB: db}
}

// CreateInMonth is a single guarded insert: the row is written only if the host
// has no other event in the month.
func (r *eventRepository) CreateInMonth(ctx context.Context, e *domain.Event, monthStart, monthEnd time.Time) error {
	query := `
		INSERT INTO events (id, host_user_id, interest_id, title, description, event_date, location,
			ticket_price, max_guests, invite_code, status, created_at, updated_at)
		SELECT ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?
		WHERE NOT EXISTS (
			SELECT 1 FROM events WHERE host_user_id = ? AND event_date BETWEEN ? AND ?
		)
	`
	res, err := r.DB.ExecContext(ctx, query,
		e.ID, e.HostUserID, e.InterestID, e.Title, nullString(e.Description), ts(e.EventDate), e.Location,
		e.TicketPrice, e.MaxGuests, e.InviteCode, e.Status, ts(e.CreatedAt), ts(e.UpdatedAt),
		e.HostUserID, ts(monthStart), ts(monthEnd),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateInviteCode
		}
		return fmt.Errorf("insert event: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrMonthlyLimitReached
	}
	return nil
}

func (r *eventRepository) UpdateInMonth(ctx context.Context, e *domain.Event, monthStart, monthEnd time.Time) error {
	query := `
		UPDATE events
		SET title = ?, description = ?, event_date = ?, location = ?, ticket_price = ?, max_guests = ?, updated_at = ?
		WHERE id = ?
			AND NOT EXISTS (
				SELECT 1 FROM events o
				WHERE o.host_user_id = ? AND o.event_date BETWEEN ? AND ? AND o.id <> ?
			)
			AND (SELECT COUNT(*) FROM event_guests g WHERE g.event_id = ?) <= ?
	`
	res, err := r.DB.ExecContext(ctx, query,
		e.Title, nullString(e.Description), ts(e.EventDate), e.Location, e.TicketPrice, e.MaxGuests, ts(e.UpdatedAt),
		e.ID,
		e.HostUserID, ts(monthStart), ts(monthEnd), e.ID,
		e.ID, e.MaxGuests,
	)
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}

	// Nothing changed; work out which guard rejected the update.
	var exists, busyMonth, guests int
	err = r.DB.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM events WHERE id = ?),
			(SELECT COUNT(*) FROM events WHERE host_user_id = ? AND event_date BETWEEN ? AND ? AND id <> ?),
			(SELECT COUNT(*) FROM event_guests WHERE event_id = ?)
	`, e.ID, e.HostUserID, ts(monthStart), ts(monthEnd), e.ID, e.ID).Scan(&exists, &busyMonth, &guests)
	if err != nil {
		return fmt.Errorf("classify update: %w", err)
	}
	switch {
	case exists == 0:
		return domain.ErrEventNotFound
	case busyMonth > 0:
		return domain.ErrMonthlyLimitReached
	default:
		return domain.ErrCapacityBelowGuests
	}
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events e WHERE e.id = ?`
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
	query := `SELECT ` + eventColumns + ` FROM events e WHERE e.invite_code = ?`
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
	query := `SELECT ` + eventColumns + `, ` + detailColumns + ` ` + detailJoins + ` WHERE e.id = ?`
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
		WHERE e.event_date >= ?
			AND (? = '' OR instr(unicode_lower(e.location), ?) > 0)
			AND (? = '' OR e.interest_id = ?)
	`
	city := strings.ToLower(f.City)
	args := []any{ts(f.From), city, city, f.InterestID, f.InterestID}

	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM events e`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count feed: %w", err)
	}

	query := `SELECT ` + eventColumns + `, ` + detailColumns + ` ` + detailJoins + where + `
		ORDER BY e.event_date ASC, e.id ASC
		LIMIT ? OFFSET ?
	`
	rows, err := r.DB.QueryContext(ctx, query, append(args, f.Pagination.PageSize, f.Pagination.Offset())...)
	if err != nil {
		return nil, 0, err
	}
	items, err := collectDetails(rows)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *eventRepository) ListByHost(ctx context.Context, hostID string) ([]*domain.EventDetails, error) {
	query := `SELECT ` + eventColumns + `, ` + detailColumns + ` ` + detailJoins + `
		WHERE e.host_user_id = ?
		ORDER BY e.event_date DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, hostID)
	if err != nil {
		return nil, err
	}
	items, err := collectDetails(rows)
	if err != nil {
		return nil, err
	}
	if err := r.attachGuests(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

func collectDetails(rows *sql.Rows) ([]*domain.EventDetails, error) {
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
	return items, nil
}

// attachGuests loads guest rows for the listed events. The connection is
// exclusive, so rows are fully read before the next query runs.
func (r *eventRepository) attachGuests(ctx context.Context, items []*domain.EventDetails) error {
	if len(items) == 0 {
		return nil
	}
	byID := make(map[string]*domain.EventDetails, len(items))
	args := make([]any, 0, len(items))
	for _, d := range items {
		d.Guests = []*domain.GuestDetails{}
		byID[d.Event.ID] = d
		args = append(args, d.Event.ID)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(args)), ", ")

	query := `
		SELECT ` + guestColumns + `, u.name, u.city
		FROM event_guests g
		JOIN users u ON u.id = g.user_id
		WHERE g.event_id IN (` + placeholders + `)
		ORDER BY g.created_at ASC, g.id ASC
	`
	rows, err := r.DB.QueryContext(ctx, query, args...)
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
