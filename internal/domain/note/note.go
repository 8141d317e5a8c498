package note

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	MaxTitleLen   = 200
	MaxContentLen = 10000
)

var (
	ErrEmpty   = errors.New("note needs a title or content")
	ErrTooLong = errors.New("note field too long")
)

type Note struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type CreateNoteRequest struct {
	Title   string `json:"title" binding:"omitempty,max=200"`
	Content string `json:"content" binding:"omitempty,max=10000"`
}

// Partial update: a nil field is left unchanged, a pointer to "" clears it.
type UpdateNoteRequest struct {
	Title   *string `json:"title" binding:"omitempty,max=200"`
	Content *string `json:"content" binding:"omitempty,max=10000"`
}

// Validate checks the supplied fields against the entity limits. Absent
// fields carry nothing to check.
func (r UpdateNoteRequest) Validate() error {
	if r.Title != nil && len(*r.Title) > MaxTitleLen {
		return fmt.Errorf("%w: title over %d characters", ErrTooLong, MaxTitleLen)
	}

	if r.Content != nil && len(*r.Content) > MaxContentLen {
		return fmt.Errorf("%w: content over %d characters", ErrTooLong, MaxContentLen)
	}

	return nil
}

// New builds a note owned by userID. Title and content are trimmed; a note
// with nothing in either is rejected.
func New(userID string, req CreateNoteRequest) (Note, error) {
	n := Note{
		ID:      uuid.NewString(),
		UserID:  userID,
		Title:   strings.TrimSpace(req.Title),
		Content: strings.TrimSpace(req.Content),
	}

	now := time.Now().UTC()
	n.CreatedAt = now
	n.UpdatedAt = now

	if err := n.Validate(); err != nil {
		return Note{}, err
	}

	return n, nil
}

// Validate enforces the entity schema at the store boundary, so both
// backends reject the same shapes regardless of what the medium would accept.
func (n Note) Validate() error {
	if strings.TrimSpace(n.Title) == "" && strings.TrimSpace(n.Content) == "" {
		return ErrEmpty
	}

	if len(n.Title) > MaxTitleLen {
		return fmt.Errorf("%w: title over %d characters", ErrTooLong, MaxTitleLen)
	}

	if len(n.Content) > MaxContentLen {
		return fmt.Errorf("%w: content over %d characters", ErrTooLong, MaxContentLen)
	}

	if n.UserID == "" {
		return errors.New("note requires an owner")
	}

	return nil
}
