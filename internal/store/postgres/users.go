package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/notekeeper/backend/internal/domain/user"
	"github.com/notekeeper/backend/internal/store"
)

func (s *Store) CreateUser(ctx context.Context, u user.User) (user.User, error) {
	err := s.pool.QueryRow(
		ctx,
		`INSERT INTO users (id, email, password_hash, created_at)
		 VALUES ($1, $2, $3, COALESCE($4, now()))
		 RETURNING id, email, password_hash, created_at`,
		u.ID,
		u.Email,
		u.PasswordHash,
		nullableTime(u.CreatedAt),
	).Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.CreatedAt,
	)

	if err != nil {
		return user.User{}, classify(err)
	}

	return u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	var u user.User

	err := s.pool.QueryRow(
		ctx,
		`SELECT id, email, password_hash, created_at
		 FROM users
		 WHERE LOWER(email) = LOWER($1)
		 LIMIT 1`,
		email,
	).Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, store.ErrNotFound
		}

		return user.User{}, classify(err)
	}

	return u, nil
}

// nullableTime lets COALESCE fall through to now() for zero timestamps.
func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}

	return &t
}
