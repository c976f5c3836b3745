package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"birthdayclub/internal/domain"
)

type userRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) domain.UserRepository {
	return &userRepository{DB: db}
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `
		SELECT id, name, email, phone, birth_date, biography, city, created_at, updated_at
		FROM users
		WHERE id = ?
	`
	u := &domain.User{}
	var phone, bio, city sql.NullString
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&u.ID, &u.Name, &u.Email, &phone, timeValue{&u.BirthDate}, &bio, &city,
		timeValue{&u.CreatedAt}, timeValue{&u.UpdatedAt},
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	if phone.Valid {
		u.Phone = &phone.String
	}
	if bio.Valid {
		u.Biography = &bio.String
	}
	if city.Valid {
		u.City = &city.String
	}
	return u, nil
}

// InsertUser writes a user row. The identity store owns registration; this
// exists for seeding local databases and tests.
func InsertUser(ctx context.Context, db *sql.DB, u *domain.User, passwordHash string) error {
	now := ts(time.Now())
	_, err := db.ExecContext(ctx, `
		INSERT INTO users (id, name, email, phone, password_hash, birth_date, biography, city, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, u.ID, u.Name, u.Email, u.Phone, passwordHash, u.BirthDate.Format("2006-01-02"), u.Biography, u.City, now, now)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}
