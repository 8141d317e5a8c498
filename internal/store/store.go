package store

import (
	"context"
	"errors"

	"github.com/notekeeper/backend/internal/domain/note"
	"github.com/notekeeper/backend/internal/domain/user"
)

// Shared error taxonomy across backends. A note belonging to another owner
// surfaces as ErrNotFound on purpose: cross-owner access must be
// indistinguishable from absence.
var (
	ErrNotFound    = errors.New("record not found")
	ErrEmailTaken  = errors.New("email already registered")
	ErrConflict    = errors.New("record already exists")
	ErrUnavailable = errors.New("store unavailable")
)

// Store is the durable record store over the users and notes collections.
// Which backend implements it is decided once at startup and never changes
// while the process runs.
type Store interface {
	CreateUser(ctx context.Context, u user.User) (user.User, error)
	GetUserByEmail(ctx context.Context, email string) (user.User, error)

	ListNotes(ctx context.Context, userID string) ([]note.Note, error)
	GetNote(ctx context.Context, id, userID string) (note.Note, error)
	CreateNote(ctx context.Context, n note.Note) (note.Note, error)
	UpdateNote(ctx context.Context, id, userID string, req note.UpdateNoteRequest) (note.Note, error)
	DeleteNote(ctx context.Context, id, userID string) (bool, error)

	Ping(ctx context.Context) error
	Close()
}
