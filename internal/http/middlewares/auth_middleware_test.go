package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/notekeeper/backend/internal/auth"
	"github.com/notekeeper/backend/internal/http/middlewares"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func protectedRouter(m *middlewares.AuthMiddleware) *gin.Engine {
	r := gin.New()

	r.GET("/protected", m.RequireAuth(), func(c *gin.Context) {
		userID, ok := middlewares.UserIDFromContext(c)

		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "identity missing after auth"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"userId": userID})
	})

	return r
}

func TestRequireAuth(t *testing.T) {
	manager := auth.NewManager("test-secret", time.Hour)

	validToken, err := manager.Issue("user-42", "sam@example.com")
	if err != nil {
		t.Fatalf("issue fixture token: %v", err)
	}

	expiredManager := auth.NewManager("test-secret", -time.Minute)

	expiredToken, err := expiredManager.Issue("user-42", "sam@example.com")
	if err != nil {
		t.Fatalf("issue expired fixture token: %v", err)
	}

	tests := []struct {
		name           string
		header         string
		wantStatusCode int
	}{
		{
			name:           "valid_token",
			header:         "Bearer " + validToken,
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "missing_header",
			header:         "",
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "wrong_scheme",
			header:         "Basic dXNlcjpwYXNz",
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "garbage_token",
			header:         "Bearer not.a.jwt",
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "expired_token",
			header:         "Bearer " + expiredToken,
			wantStatusCode: http.StatusUnauthorized,
		},
	}

	r := protectedRouter(middlewares.NewAuthMiddleware(manager))

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)

			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestRequireAuth_IdentityReachesHandler(t *testing.T) {
	manager := auth.NewManager("test-secret", time.Hour)

	token, err := manager.Issue("user-42", "sam@example.com")
	if err != nil {
		t.Fatalf("issue fixture token: %v", err)
	}

	r := protectedRouter(middlewares.NewAuthMiddleware(manager))

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
	}

	if body := w.Body.String(); !strings.Contains(body, `"userId":"user-42"`) {
		t.Fatalf("identity not visible to handler: %s", body)
	}
}
