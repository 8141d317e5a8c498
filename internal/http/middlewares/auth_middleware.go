package middlewares

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/notekeeper/backend/internal/auth"
)

// Keep this small interface so tests can fake it easily.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

type AuthMiddleware struct {
	jwt TokenVerifier
}

func NewAuthMiddleware(jwt TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwt}
}

// RequireAuth resolves the bearer credential to a user id or rejects the
// request. The response only ever discloses the rejection kind, nothing
// about why the credential failed.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")

		if !strings.HasPrefix(authHeader, "Bearer ") {
			abortUnauthorized(c, "Missing or invalid Authorization header")
			return
		}

		raw := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))

		claims, err := m.jwt.Verify(raw)

		if err != nil {
			switch {
			case errors.Is(err, auth.ErrTokenMissing):
				abortUnauthorized(c, "Missing token")
			case errors.Is(err, auth.ErrTokenExpired):
				abortUnauthorized(c, "Token expired")
			default:
				abortUnauthorized(c, "Invalid token")
			}

			return
		}

		SetIdentity(c, claims.UserID(), claims.Email)

		c.Next()
	}
}

// SetIdentity stashes the resolved identity on the context. Exposed so
// handler tests can fake an authenticated request.
func SetIdentity(c *gin.Context, userID, email string) {
	c.Set(ctxUserIDKey, userID)
	c.Set(ctxEmailKey, email)
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": gin.H{
			"code":    "unauthorized",
			"message": message,
		},
	})
}

// Helpers so handlers don't need to know the magic keys.

func UserIDFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxUserIDKey)

	if !ok {
		return "", false
	}

	id, ok := v.(string)

	return id, ok
}

func EmailFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxEmailKey)

	if !ok {
		return "", false
	}

	email, ok := v.(string)

	return email, ok
}
