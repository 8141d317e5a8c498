package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/notekeeper/backend/internal/config"
	"github.com/notekeeper/backend/internal/domain/note"
	"github.com/notekeeper/backend/internal/http/middlewares"
	"github.com/notekeeper/backend/internal/store"
)

type NotesStore interface {
	ListNotes(ctx context.Context, userID string) ([]note.Note, error)
	GetNote(ctx context.Context, id, userID string) (note.Note, error)
	CreateNote(ctx context.Context, n note.Note) (note.Note, error)
	UpdateNote(ctx context.Context, id, userID string, req note.UpdateNoteRequest) (note.Note, error)
	DeleteNote(ctx context.Context, id, userID string) (bool, error)
}

type NotesHandler struct {
	store NotesStore
}

func NewNotesHandler(store NotesStore) *NotesHandler {
	return &NotesHandler{store: store}
}

func (h *NotesHandler) ListNotes(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	notes, err := h.store.ListNotes(cctx, userID)

	if err != nil {
		if errors.Is(err, store.ErrUnavailable) {
			RespondStoreUnavailable(ctx)
			return
		}

		RespondInternal(ctx, "Could not list notes", err)
		return
	}

	if notes == nil {
		notes = []note.Note{}
	}

	// the client consumes a bare array
	ctx.JSON(http.StatusOK, notes)
}

func (h *NotesHandler) GetNote(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	n, err := h.store.GetNote(cctx, ctx.Param("id"), userID)

	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			RespondNotFound(ctx, "Note not found")
		case errors.Is(err, store.ErrUnavailable):
			RespondStoreUnavailable(ctx)
		default:
			RespondInternal(ctx, "Could not fetch note", err)
		}

		return
	}

	ctx.JSON(http.StatusOK, n)
}

func (h *NotesHandler) CreateNote(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	var req note.CreateNoteRequest

	if !BindJSON(ctx, &req) {
		return
	}

	n, err := note.New(userID, req)

	if err != nil {
		RespondBadRequest(ctx, "Title or content required", nil)
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	created, err := h.store.CreateNote(cctx, n)

	if err != nil {
		switch {
		case errors.Is(err, note.ErrEmpty), errors.Is(err, note.ErrTooLong):
			RespondBadRequest(ctx, err.Error(), nil)
		case errors.Is(err, store.ErrUnavailable):
			RespondStoreUnavailable(ctx)
		default:
			RespondInternal(ctx, "Could not create note", err)
		}

		return
	}

	ctx.JSON(http.StatusCreated, created)
}

func (h *NotesHandler) UpdateNote(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	var req note.UpdateNoteRequest

	if !BindJSON(ctx, &req) {
		return
	}

	// fields left out of the payload stay untouched; supplied ones are trimmed
	if req.Title != nil {
		trimmed := strings.TrimSpace(*req.Title)
		req.Title = &trimmed
	}

	if req.Content != nil {
		trimmed := strings.TrimSpace(*req.Content)
		req.Content = &trimmed
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	updated, err := h.store.UpdateNote(cctx, ctx.Param("id"), userID, req)

	if err != nil {
		switch {
		case errors.Is(err, note.ErrTooLong):
			RespondBadRequest(ctx, err.Error(), nil)
		case errors.Is(err, store.ErrNotFound):
			RespondNotFound(ctx, "Note not found")
		case errors.Is(err, store.ErrUnavailable):
			RespondStoreUnavailable(ctx)
		default:
			RespondInternal(ctx, "Could not update note", err)
		}

		return
	}

	ctx.JSON(http.StatusOK, updated)
}

func (h *NotesHandler) DeleteNote(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	deleted, err := h.store.DeleteNote(cctx, ctx.Param("id"), userID)

	if err != nil {
		if errors.Is(err, store.ErrUnavailable) {
			RespondStoreUnavailable(ctx)
			return
		}

		RespondInternal(ctx, "Could not delete note", err)
		return
	}

	if !deleted {
		RespondNotFound(ctx, "Note not found")
		return
	}

	ctx.Status(http.StatusNoContent)
}
