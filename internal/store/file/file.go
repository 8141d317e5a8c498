package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/notekeeper/backend/internal/domain/note"
	"github.com/notekeeper/backend/internal/domain/user"
	"github.com/notekeeper/backend/internal/store"
)

const (
	usersCollection = "users"
	notesCollection = "notes"
)

// Store keeps each collection in a JSON array file. Every write refreshes a
// backup copy first, then lands through a temp file and an atomic rename, so
// an interrupted write never leaves a half-written main file behind.
//
// A single mutex serializes all operations: every write rewrites the whole
// collection, so there is no row-level concurrency to exploit anyway.
type Store struct {
	dir string
	log *slog.Logger
	mu  sync.Mutex
}

var _ store.Store = (*Store)(nil)

func Open(dir string, log *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o770); err != nil {
		return nil, fmt.Errorf("create data dir %s: %w", dir, err)
	}

	return &Store{dir: dir, log: log}, nil
}

type collectionPaths struct {
	main   string
	temp   string
	backup string
}

func (s *Store) paths(name string) collectionPaths {
	return collectionPaths{
		main:   filepath.Join(s.dir, name+".json"),
		temp:   filepath.Join(s.dir, name+".json.tmp"),
		backup: filepath.Join(s.dir, name+".backup.json"),
	}
}

// ensureFile creates the main file if it is missing, preferring a restore
// from the backup copy over starting empty.
func (s *Store) ensureFile(name string) error {
	p := s.paths(name)

	_, err := os.Stat(p.main)

	if err == nil {
		return nil
	}

	if !errors.Is(err, os.ErrNotExist) {
		return err
	}

	if _, err := os.Stat(p.backup); err == nil {
		s.log.Info("restoring collection from backup", "collection", name)
		return copyFile(p.backup, p.main)
	}

	return os.WriteFile(p.main, []byte("[]"), 0o660)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)

	if err != nil {
		return err
	}

	defer in.Close()

	out, err := os.Create(dst)

	if err != nil {
		return err
	}

	_, err = io.Copy(out, in)

	if closeErr := out.Close(); err == nil {
		err = closeErr
	}

	return err
}

// readCollection parses the main file. A corrupt main file falls back to the
// backup copy, and a successful recovery repairs the main file in place.
// When both are unreadable the collection degrades to empty rather than
// failing the caller: in file mode "no data" is the accepted degraded state.
func readCollection[T any](s *Store, name string) []T {
	p := s.paths(name)

	if err := s.ensureFile(name); err != nil {
		s.log.Error("ensure collection file", "collection", name, "err", err)
		return nil
	}

	raw, err := os.ReadFile(p.main)

	if err == nil {
		if strings.TrimSpace(string(raw)) == "" {
			return nil
		}

		var rows []T

		if jsonErr := json.Unmarshal(raw, &rows); jsonErr == nil {
			return rows
		} else {
			err = jsonErr
		}
	}

	s.log.Error("reading collection failed, trying backup", "collection", name, "err", err)

	rawBackup, err := os.ReadFile(p.backup)

	if err == nil {
		var rows []T

		if json.Unmarshal(rawBackup, &rows) == nil {
			// repair the main file so the next read does not need the backup
			if writeErr := os.WriteFile(p.main, rawBackup, 0o660); writeErr != nil {
				s.log.Warn("could not repair collection from backup", "collection", name, "err", writeErr)
			}

			s.log.Info("recovered collection from backup", "collection", name)
			return rows
		}
	}

	return nil
}

// writeCollection snapshots the current main file to the backup path (best
// effort), serializes the new contents to a temp file and renames it over
// the main file. The rename is the commit point.
func writeCollection[T any](s *Store, name string, rows []T) error {
	if err := s.ensureFile(name); err != nil {
		return err
	}

	p := s.paths(name)

	if err := copyFile(p.main, p.backup); err != nil {
		s.log.Warn("backup before write failed", "collection", name, "err", err)
	}

	if rows == nil {
		rows = []T{}
	}

	data, err := json.MarshalIndent(rows, "", "  ")

	if err != nil {
		return err
	}

	if err := os.WriteFile(p.temp, data, 0o660); err != nil {
		return err
	}

	return os.Rename(p.temp, p.main)
}

// User operations

func (s *Store) CreateUser(ctx context.Context, u user.User) (user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := readCollection[user.User](s, usersCollection)

	for _, existing := range users {
		if strings.EqualFold(existing.Email, u.Email) {
			return user.User{}, store.ErrEmailTaken
		}

		if existing.ID == u.ID {
			return user.User{}, store.ErrConflict
		}
	}

	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}

	users = append(users, u)

	if err := writeCollection(s, usersCollection, users); err != nil {
		return user.User{}, err
	}

	return u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range readCollection[user.User](s, usersCollection) {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}

	return user.User{}, store.ErrNotFound
}

// Note operations

func (s *Store) ListNotes(ctx context.Context, userID string) ([]note.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	owned := make([]note.Note, 0)

	for _, n := range readCollection[note.Note](s, notesCollection) {
		if n.UserID == userID {
			owned = append(owned, n)
		}
	}

	// newest first; the stable sort keeps insertion order for equal timestamps
	sort.SliceStable(owned, func(i, j int) bool {
		return owned[i].UpdatedAt.After(owned[j].UpdatedAt)
	})

	return owned, nil
}

func (s *Store) GetNote(ctx context.Context, id, userID string) (note.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, n := range readCollection[note.Note](s, notesCollection) {
		if n.ID == id && n.UserID == userID {
			return n, nil
		}
	}

	return note.Note{}, store.ErrNotFound
}

func (s *Store) CreateNote(ctx context.Context, n note.Note) (note.Note, error) {
	if err := n.Validate(); err != nil {
		return note.Note{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	notes := readCollection[note.Note](s, notesCollection)

	for _, existing := range notes {
		if existing.ID == n.ID {
			return note.Note{}, store.ErrConflict
		}
	}

	now := time.Now().UTC()

	if n.CreatedAt.IsZero() {
		n.CreatedAt = now
	}

	if n.UpdatedAt.IsZero() {
		n.UpdatedAt = now
	}

	notes = append(notes, n)

	if err := writeCollection(s, notesCollection, notes); err != nil {
		return note.Note{}, err
	}

	return n, nil
}

func (s *Store) UpdateNote(ctx context.Context, id, userID string, req note.UpdateNoteRequest) (note.Note, error) {
	if err := req.Validate(); err != nil {
		return note.Note{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	notes := readCollection[note.Note](s, notesCollection)

	idx := -1

	for i, n := range notes {
		if n.ID == id && n.UserID == userID {
			idx = i
			break
		}
	}

	if idx == -1 {
		return note.Note{}, store.ErrNotFound
	}

	if req.Title != nil {
		notes[idx].Title = strings.TrimSpace(*req.Title)
	}

	if req.Content != nil {
		notes[idx].Content = strings.TrimSpace(*req.Content)
	}

	// refreshed even when the supplied fields match the current values
	notes[idx].UpdatedAt = time.Now().UTC()

	if err := writeCollection(s, notesCollection, notes); err != nil {
		return note.Note{}, err
	}

	return notes[idx], nil
}

func (s *Store) DeleteNote(ctx context.Context, id, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	notes := readCollection[note.Note](s, notesCollection)

	kept := make([]note.Note, 0, len(notes))

	for _, n := range notes {
		if n.ID == id && n.UserID == userID {
			continue
		}

		kept = append(kept, n)
	}

	if len(kept) == len(notes) {
		return false, nil
	}

	if err := writeCollection(s, notesCollection, kept); err != nil {
		return false, err
	}

	return true, nil
}

// Ping always succeeds: local files have no liveness to probe.
func (s *Store) Ping(ctx context.Context) error {
	return nil
}

func (s *Store) Close() {}
