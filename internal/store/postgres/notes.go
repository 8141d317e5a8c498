package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/notekeeper/backend/internal/domain/note"
	"github.com/notekeeper/backend/internal/store"
)

func (s *Store) ListNotes(ctx context.Context, userID string) ([]note.Note, error) {
	rows, err := s.pool.Query(
		ctx,
		`SELECT id, user_id, title, content, created_at, updated_at
		 FROM notes
		 WHERE user_id = $1
		 ORDER BY updated_at DESC`,
		userID,
	)

	if err != nil {
		return nil, classify(err)
	}

	defer rows.Close()

	notes := make([]note.Note, 0)

	for rows.Next() {
		var n note.Note

		err = rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Content, &n.CreatedAt, &n.UpdatedAt)

		if err != nil {
			return nil, classify(err)
		}

		notes = append(notes, n)
	}

	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}

	return notes, nil
}

func (s *Store) GetNote(ctx context.Context, id, userID string) (note.Note, error) {
	var n note.Note

	err := s.pool.QueryRow(
		ctx,
		`SELECT id, user_id, title, content, created_at, updated_at
		 FROM notes
		 WHERE id = $1 AND user_id = $2
		 LIMIT 1`,
		id,
		userID,
	).Scan(&n.ID, &n.UserID, &n.Title, &n.Content, &n.CreatedAt, &n.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return note.Note{}, store.ErrNotFound
		}

		return note.Note{}, classify(err)
	}

	return n, nil
}

func (s *Store) CreateNote(ctx context.Context, n note.Note) (note.Note, error) {
	if err := n.Validate(); err != nil {
		return note.Note{}, err
	}

	err := s.pool.QueryRow(
		ctx,
		`INSERT INTO notes (id, user_id, title, content, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, COALESCE($5, now()), COALESCE($6, now()))
		 RETURNING id, user_id, title, content, created_at, updated_at`,
		n.ID,
		n.UserID,
		n.Title,
		n.Content,
		nullableTime(n.CreatedAt),
		nullableTime(n.UpdatedAt),
	).Scan(&n.ID, &n.UserID, &n.Title, &n.Content, &n.CreatedAt, &n.UpdatedAt)

	if err != nil {
		return note.Note{}, classify(err)
	}

	return n, nil
}

// UpdateNote coalesces absent fields with the current values in a single
// round-trip. updated_at is refreshed by the trigger, also when the supplied
// values match what is already stored.
func (s *Store) UpdateNote(ctx context.Context, id, userID string, req note.UpdateNoteRequest) (note.Note, error) {
	if err := req.Validate(); err != nil {
		return note.Note{}, err
	}

	var n note.Note

	err := s.pool.QueryRow(
		ctx,
		`UPDATE notes
		 SET title   = COALESCE($1, title),
		     content = COALESCE($2, content)
		 WHERE id = $3 AND user_id = $4
		 RETURNING id, user_id, title, content, created_at, updated_at`,
		req.Title,
		req.Content,
		id,
		userID,
	).Scan(&n.ID, &n.UserID, &n.Title, &n.Content, &n.CreatedAt, &n.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return note.Note{}, store.ErrNotFound
		}

		return note.Note{}, classify(err)
	}

	return n, nil
}

func (s *Store) DeleteNote(ctx context.Context, id, userID string) (bool, error) {
	tag, err := s.pool.Exec(
		ctx,
		`DELETE FROM notes WHERE id = $1 AND user_id = $2`,
		id,
		userID,
	)

	if err != nil {
		return false, classify(err)
	}

	return tag.RowsAffected() > 0, nil
}
