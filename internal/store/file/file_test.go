package file_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/notekeeper/backend/internal/domain/note"
	"github.com/notekeeper/backend/internal/domain/user"
	"github.com/notekeeper/backend/internal/store"
	"github.com/notekeeper/backend/internal/store/file"
)

func newStore(t *testing.T) (*file.Store, string) {
	t.Helper()

	dir := t.TempDir()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	st, err := file.Open(dir, log)
	require.NoError(t, err)

	return st, dir
}

func mustCreateNote(t *testing.T, st *file.Store, userID, title, content string) note.Note {
	t.Helper()

	n, err := note.New(userID, note.CreateNoteRequest{Title: title, Content: content})
	require.NoError(t, err)

	created, err := st.CreateNote(context.Background(), n)
	require.NoError(t, err)

	return created
}

func strptr(s string) *string {
	return &s
}

func TestNoteRoundTrip(t *testing.T) {
	st, _ := newStore(t)
	ctx := context.Background()

	created := mustCreateNote(t, st, "user-a", "groceries", "milk, eggs")

	got, err := st.GetNote(ctx, created.ID, "user-a")
	require.NoError(t, err)

	require.Equal(t, created.ID, got.ID)
	require.Equal(t, "user-a", got.UserID)
	require.Equal(t, "groceries", got.Title)
	require.Equal(t, "milk, eggs", got.Content)
	require.False(t, got.CreatedAt.IsZero())
	require.False(t, got.UpdatedAt.IsZero())
}

func TestListNotes_NewestFirst(t *testing.T) {
	st, _ := newStore(t)
	ctx := context.Background()

	first := mustCreateNote(t, st, "user-a", "first", "")
	time.Sleep(5 * time.Millisecond)
	second := mustCreateNote(t, st, "user-a", "second", "")
	time.Sleep(5 * time.Millisecond)

	// touching the oldest note moves it to the front
	_, err := st.UpdateNote(ctx, first.ID, "user-a", note.UpdateNoteRequest{Content: strptr("bumped")})
	require.NoError(t, err)

	notes, err := st.ListNotes(ctx, "user-a")
	require.NoError(t, err)
	require.Len(t, notes, 2)
	require.Equal(t, first.ID, notes[0].ID)
	require.Equal(t, second.ID, notes[1].ID)
}

func TestListNotes_EmptyForUnknownOwner(t *testing.T) {
	st, _ := newStore(t)

	notes, err := st.ListNotes(context.Background(), "nobody")
	require.NoError(t, err)
	require.Empty(t, notes)
}

func TestOwnerIsolation(t *testing.T) {
	st, _ := newStore(t)
	ctx := context.Background()

	n := mustCreateNote(t, st, "user-a", "private", "")

	// another owner sees absence, not an access error
	_, err := st.GetNote(ctx, n.ID, "user-b")
	require.ErrorIs(t, err, store.ErrNotFound)

	_, err = st.UpdateNote(ctx, n.ID, "user-b", note.UpdateNoteRequest{Title: strptr("stolen")})
	require.ErrorIs(t, err, store.ErrNotFound)

	deleted, err := st.DeleteNote(ctx, n.ID, "user-b")
	require.NoError(t, err)
	require.False(t, deleted)

	// the note is untouched for its owner
	got, err := st.GetNote(ctx, n.ID, "user-a")
	require.NoError(t, err)
	require.Equal(t, "private", got.Title)
}

func TestUpdateNote_PartialUpdate(t *testing.T) {
	st, _ := newStore(t)
	ctx := context.Background()

	n := mustCreateNote(t, st, "user-a", "title v1", "content v1")

	time.Sleep(5 * time.Millisecond)

	updated, err := st.UpdateNote(ctx, n.ID, "user-a", note.UpdateNoteRequest{Title: strptr("title v2")})
	require.NoError(t, err)

	require.Equal(t, "title v2", updated.Title)
	require.Equal(t, "content v1", updated.Content, "omitted field must stay unchanged")
	require.True(t, updated.UpdatedAt.After(n.UpdatedAt))
	require.Equal(t, n.CreatedAt, updated.CreatedAt)

	// a pointer to the empty string clears the field
	updated, err = st.UpdateNote(ctx, n.ID, "user-a", note.UpdateNoteRequest{Content: strptr("")})
	require.NoError(t, err)
	require.Equal(t, "title v2", updated.Title)
	require.Equal(t, "", updated.Content)
}

func TestUpdateNote_RejectsOverlongFields(t *testing.T) {
	st, _ := newStore(t)
	ctx := context.Background()

	n := mustCreateNote(t, st, "user-a", "short", "short")

	huge := strings.Repeat("x", note.MaxContentLen+1)

	_, err := st.UpdateNote(ctx, n.ID, "user-a", note.UpdateNoteRequest{Content: &huge})
	require.ErrorIs(t, err, note.ErrTooLong)

	// the stored record is untouched
	got, err := st.GetNote(ctx, n.ID, "user-a")
	require.NoError(t, err)
	require.Equal(t, "short", got.Content)
	require.Equal(t, n.UpdatedAt, got.UpdatedAt)
}

func TestUpdateNote_SameValuesStillRefreshUpdatedAt(t *testing.T) {
	st, _ := newStore(t)
	ctx := context.Background()

	n := mustCreateNote(t, st, "user-a", "same", "same")

	time.Sleep(5 * time.Millisecond)

	updated, err := st.UpdateNote(ctx, n.ID, "user-a", note.UpdateNoteRequest{
		Title:   strptr("same"),
		Content: strptr("same"),
	})
	require.NoError(t, err)
	require.True(t, updated.UpdatedAt.After(n.UpdatedAt))
}

func TestCreateNote_RejectsEmptyAtStoreBoundary(t *testing.T) {
	st, _ := newStore(t)

	_, err := st.CreateNote(context.Background(), note.Note{
		ID:     "n1",
		UserID: "user-a",
		Title:  "   ",
	})
	require.ErrorIs(t, err, note.ErrEmpty)
}

func TestCreateNote_ConflictOnDuplicateID(t *testing.T) {
	st, _ := newStore(t)
	ctx := context.Background()

	n := mustCreateNote(t, st, "user-a", "once", "")

	_, err := st.CreateNote(ctx, note.Note{ID: n.ID, UserID: "user-a", Title: "again"})
	require.ErrorIs(t, err, store.ErrConflict)
}

func TestDeleteNote_IsFinal(t *testing.T) {
	st, _ := newStore(t)
	ctx := context.Background()

	n := mustCreateNote(t, st, "user-a", "doomed", "")

	deleted, err := st.DeleteNote(ctx, n.ID, "user-a")
	require.NoError(t, err)
	require.True(t, deleted)

	_, err = st.GetNote(ctx, n.ID, "user-a")
	require.ErrorIs(t, err, store.ErrNotFound)

	deleted, err = st.DeleteNote(ctx, n.ID, "user-a")
	require.NoError(t, err)
	require.False(t, deleted)
}

func TestCreateUser_DuplicateEmailCaseInsensitive(t *testing.T) {
	st, _ := newStore(t)
	ctx := context.Background()

	_, err := st.CreateUser(ctx, user.User{ID: "u1", Email: "Sam@Example.com", PasswordHash: "x"})
	require.NoError(t, err)

	_, err = st.CreateUser(ctx, user.User{ID: "u2", Email: "sam@example.com", PasswordHash: "y"})
	require.ErrorIs(t, err, store.ErrEmailTaken)
}

func TestGetUserByEmail(t *testing.T) {
	st, _ := newStore(t)
	ctx := context.Background()

	created, err := st.CreateUser(ctx, user.User{ID: "u1", Email: "Sam@Example.com", PasswordHash: "x"})
	require.NoError(t, err)
	require.False(t, created.CreatedAt.IsZero())

	got, err := st.GetUserByEmail(ctx, "sam@EXAMPLE.com")
	require.NoError(t, err)
	require.Equal(t, "u1", got.ID)
	require.Equal(t, "x", got.PasswordHash)

	_, err = st.GetUserByEmail(ctx, "other@example.com")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestBackupRecovery_CorruptMainFile(t *testing.T) {
	st, dir := newStore(t)
	ctx := context.Background()

	// two writes so the backup holds the first note
	kept := mustCreateNote(t, st, "user-a", "kept", "")
	mustCreateNote(t, st, "user-a", "lost in the bad write", "")

	mainPath := filepath.Join(dir, "notes.json")
	require.NoError(t, os.WriteFile(mainPath, []byte("{ definitely not json"), 0o660))

	notes, err := st.ListNotes(ctx, "user-a")
	require.NoError(t, err)
	require.Len(t, notes, 1)
	require.Equal(t, kept.ID, notes[0].ID)

	// the main file was repaired from the backup
	raw, err := os.ReadFile(mainPath)
	require.NoError(t, err)

	var repaired []note.Note
	require.NoError(t, json.Unmarshal(raw, &repaired))
	require.Len(t, repaired, 1)
	require.Equal(t, kept.ID, repaired[0].ID)
}

func TestMissingMainRestoredFromBackup(t *testing.T) {
	st, dir := newStore(t)

	n, err := note.New("user-a", note.CreateNoteRequest{Title: "from backup"})
	require.NoError(t, err)

	data, err := json.Marshal([]note.Note{n})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.backup.json"), data, 0o660))

	notes, err := st.ListNotes(context.Background(), "user-a")
	require.NoError(t, err)
	require.Len(t, notes, 1)
	require.Equal(t, "from backup", notes[0].Title)

	// the restore materialized the main file
	_, err = os.Stat(filepath.Join(dir, "notes.json"))
	require.NoError(t, err)
}

func TestBothFilesUnreadable_DegradesToEmpty(t *testing.T) {
	st, dir := newStore(t)
	ctx := context.Background()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.json"), []byte("garbage"), 0o660))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.backup.json"), []byte("also garbage"), 0o660))

	notes, err := st.ListNotes(ctx, "user-a")
	require.NoError(t, err)
	require.Empty(t, notes)

	// the store still accepts new writes after degrading
	mustCreateNote(t, st, "user-a", "fresh start", "")

	notes, err = st.ListNotes(ctx, "user-a")
	require.NoError(t, err)
	require.Len(t, notes, 1)
}

func TestWrite_CommitsAtomically(t *testing.T) {
	st, dir := newStore(t)

	// a stale temp file from an interrupted write never shadows the main file
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.json.tmp"), []byte("{ half a write"), 0o660))

	n := mustCreateNote(t, st, "user-a", "durable", "")

	// the write consumed or replaced the temp file; main parses cleanly
	_, err := os.Stat(filepath.Join(dir, "notes.json.tmp"))
	require.True(t, os.IsNotExist(err))

	raw, err := os.ReadFile(filepath.Join(dir, "notes.json"))
	require.NoError(t, err)

	var rows []note.Note
	require.NoError(t, json.Unmarshal(raw, &rows))
	require.Len(t, rows, 1)
	require.Equal(t, n.ID, rows[0].ID)
}
