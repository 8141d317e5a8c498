package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/notekeeper/backend/internal/config"
	"github.com/notekeeper/backend/internal/domain/user"
	"github.com/notekeeper/backend/internal/security"
	"github.com/notekeeper/backend/internal/store"
)

type UserStore interface {
	CreateUser(ctx context.Context, u user.User) (user.User, error)
	GetUserByEmail(ctx context.Context, email string) (user.User, error)
}

type TokenIssuer interface {
	Issue(userID, email string) (string, error)
}

type AuthHandler struct {
	users UserStore
	jwt   TokenIssuer
}

func NewAuthHandler(users UserStore, jwt TokenIssuer) *AuthHandler {
	return &AuthHandler{
		users: users,
		jwt:   jwt,
	}
}

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Register(ctx *gin.Context) {
	var req RegisterRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	hash, err := security.HashPassword(req.Password)

	if err != nil {
		RespondInternal(ctx, "Could not create user", err)
		return
	}

	u := user.User{
		ID:           uuid.NewString(),
		Email:        strings.TrimSpace(req.Email),
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}

	created, err := h.users.CreateUser(cctx, u)

	if err != nil {
		switch {
		case errors.Is(err, store.ErrEmailTaken):
			RespondConflict(ctx, "email_taken", "Email already registered")
		case errors.Is(err, store.ErrUnavailable):
			RespondStoreUnavailable(ctx)
		default:
			RespondInternal(ctx, "Could not create user", err)
		}

		return
	}

	token, err := h.jwt.Issue(created.ID, created.Email)

	if err != nil {
		RespondInternal(ctx, "Could not create session token", err)
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"token": token,
		"user": gin.H{
			"id":    created.ID,
			"email": created.Email,
		},
	})
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	// short timeout for the lookup
	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	foundUser, err := h.users.GetUserByEmail(cctx, req.Email)

	if err != nil {
		if errors.Is(err, store.ErrUnavailable) {
			RespondStoreUnavailable(ctx)
			return
		}

		// unknown email and wrong password must be indistinguishable
		RespondUnAuthorized(ctx, "invalid_credentials", "Email or password is incorrect.")
		return
	}

	err = security.CheckPassword(foundUser.PasswordHash, req.Password)

	if err != nil {
		RespondUnAuthorized(ctx, "invalid_credentials", "Email or password is incorrect.")
		return
	}

	token, err := h.jwt.Issue(foundUser.ID, foundUser.Email)

	if err != nil {
		RespondInternal(ctx, "Could not create session token", err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"token": token,
		"user": gin.H{
			"id":    foundUser.ID,
			"email": foundUser.Email,
		},
	})
}
