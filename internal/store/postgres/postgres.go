package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/notekeeper/backend/internal/store"
)

const (
	maxConns       = 10
	connectTimeout = 5 * time.Second
	maxIdleTime    = 5 * time.Minute
)

// Store translates record store operations into parameterized statements
// against the users and notes tables.
type Store struct {
	pool *pgxpool.Pool
}

var _ store.Store = (*Store)(nil)

// Open establishes a bounded connection pool, verifies the server is
// reachable and bootstraps the schema. Any failure here means the backend
// is not usable and the caller should fall back.
func Open(ctx context.Context, dbURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dbURL)

	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	cfg.MaxConns = maxConns
	cfg.MaxConnIdleTime = maxIdleTime
	cfg.ConnConfig.ConnectTimeout = connectTimeout

	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)

	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	s := &Store{pool: pool}

	if err := s.initSchema(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return s, nil
}

// initSchema creates tables, indexes and the updated_at trigger if absent.
// Safe to run against a database that already has the schema.
func (s *Store) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id            VARCHAR(255) PRIMARY KEY,
			email         VARCHAR(255) UNIQUE NOT NULL,
			password_hash TEXT NOT NULL,
			created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		// uniqueness must hold for the normalized email, not raw bytes
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email_lower ON users (LOWER(email))`,
		`CREATE TABLE IF NOT EXISTS notes (
			id         VARCHAR(255) PRIMARY KEY,
			user_id    VARCHAR(255) NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			title      TEXT,
			content    TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_notes_user_id ON notes(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_notes_user_updated ON notes(user_id, updated_at DESC)`,
		// updated_at is refreshed by the engine itself, so the guarantee
		// holds even for SQL issued outside this adapter.
		`CREATE OR REPLACE FUNCTION set_updated_at()
		RETURNS TRIGGER AS $$
		BEGIN
			NEW.updated_at = now();
			RETURN NEW;
		END;
		$$ LANGUAGE plpgsql`,
		`DROP TRIGGER IF EXISTS trg_set_updated_at ON notes`,
		`CREATE TRIGGER trg_set_updated_at
		BEFORE UPDATE ON notes
		FOR EACH ROW
		EXECUTE FUNCTION set_updated_at()`,
	}

	for _, stmt := range statements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}

	return nil
}

// classify maps low-level pgx failures onto the store taxonomy. Everything
// that is not a constraint violation wraps ErrUnavailable: relational
// failures always propagate, they are never masked as an empty result.
func classify(err error) error {
	var pgErr *pgconn.PgError

	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			switch pgErr.ConstraintName {
			case "users_email_key", "idx_users_email_lower":
				return store.ErrEmailTaken
			}

			return store.ErrConflict
		case "23503": // foreign_key_violation: owner does not exist
			return store.ErrNotFound
		}
	}

	return fmt.Errorf("%w: %v", store.ErrUnavailable, err)
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close drains and closes the pool. Called once at shutdown.
func (s *Store) Close() {
	s.pool.Close()
}
