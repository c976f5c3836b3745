package postgres

import (
	"context"
	"database/sql"
	"errors"

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
		WHERE id = $1
	`
	u := &domain.User{}
	var phone, bio, city sql.NullString
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&u.ID, &u.Name, &u.Email, &phone, &u.BirthDate, &bio, &city, &u.CreatedAt, &u.UpdatedAt,
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
