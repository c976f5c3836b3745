package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"birthdayclub/internal/domain"
)

type interestRepository struct {
	DB *sql.DB
}

func NewInterestRepository(db *sql.DB) domain.InterestRepository {
	return &interestRepository{DB: db}
}

func (r *interestRepository) GetByID(ctx context.Context, id string) (*domain.Interest, error) {
	query := `SELECT id, name, created_at FROM interests WHERE id = $1`
	i := &domain.Interest{}
	if err := r.DB.QueryRowContext(ctx, query, id).Scan(&i.ID, &i.Name, &i.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrInterestNotFound
		}
		return nil, err
	}
	return i, nil
}

func (r *interestRepository) List(ctx context.Context) ([]*domain.Interest, error) {
	return queryInterests(ctx, r.DB, `SELECT id, name, created_at FROM interests ORDER BY lower(name)`)
}

func (r *interestRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Interest, error) {
	query := `
		SELECT i.id, i.name, i.created_at
		FROM interests i
		JOIN user_interests ui ON ui.interest_id = i.id
		WHERE ui.user_id = $1
		ORDER BY lower(i.name)
	`
	return queryInterests(ctx, r.DB, query, userID)
}

func (r *interestRepository) ReplaceForUser(ctx context.Context, userID string, names []string) (out []*domain.Interest, err error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	lowered := make([]string, 0, len(names))
	for _, name := range names {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO interests (id, name, created_at) VALUES ($1, $2, $3)
			ON CONFLICT ((lower(name))) DO NOTHING
		`, uuid.NewString(), name, now)
		if err != nil {
			return nil, fmt.Errorf("create interest %q: %w", name, err)
		}
		lowered = append(lowered, strings.ToLower(name))
	}

	out, err = queryInterests(ctx, tx, `
		SELECT id, name, created_at FROM interests
		WHERE lower(name) = ANY($1)
		ORDER BY lower(name)
	`, pq.Array(lowered))
	if err != nil {
		return nil, err
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM user_interests WHERE user_id = $1`, userID); err != nil {
		return nil, fmt.Errorf("clear user interests: %w", err)
	}
	for _, i := range out {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO user_interests (user_id, interest_id, created_at) VALUES ($1, $2, $3)
		`, userID, i.ID, now)
		if err != nil {
			return nil, fmt.Errorf("link interest: %w", err)
		}
	}
	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return out, nil
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func queryInterests(ctx context.Context, q queryer, query string, args ...any) ([]*domain.Interest, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]*domain.Interest, 0)
	for rows.Next() {
		i := &domain.Interest{}
		if err := rows.Scan(&i.ID, &i.Name, &i.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
