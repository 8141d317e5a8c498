package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/notekeeper/backend/internal/http/middlewares"
)

type APIError struct {
	Code      string      `json:"code"`
	Message   string      `json:"message"`
	RequestID string      `json:"requestId,omitempty"`
	Details   interface{} `json:"details,omitempty"`
}

func requestIDFrom(ctx *gin.Context) string {
	v, ok := ctx.Get(middlewares.CtxRequestID)

	if ok {
		s, ok := v.(string)
		if ok && s != "" {
			return s
		}
	}

	// fallback header
	return ctx.GetHeader("X-Request-Id")
}

func RespondError(ctx *gin.Context, status int, code, message string, details interface{}) {
	ctx.JSON(status, gin.H{
		"error": APIError{
			Code:      code,
			Message:   message,
			RequestID: requestIDFrom(ctx),
			Details:   details,
		},
	})
}

func RespondBadRequest(ctx *gin.Context, message string, details interface{}) {
	RespondError(ctx, http.StatusBadRequest, "invalid_request", message, details)
}

func RespondNotFound(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusNotFound, "not_found", message, nil)
}

func RespondUnAuthorized(ctx *gin.Context, code, message string) {
	RespondError(ctx, http.StatusUnauthorized, code, message, nil)
}

func RespondConflict(ctx *gin.Context, code, message string) {
	RespondError(ctx, http.StatusConflict, code, message, nil)
}

// verboseErrors controls whether internal error responses carry the
// underlying failure. Enabled outside production only.
var verboseErrors bool

func SetVerboseErrors(enabled bool) {
	verboseErrors = enabled
}

func RespondInternal(ctx *gin.Context, message string, err error) {
	var details interface{}

	if verboseErrors && err != nil {
		details = gin.H{"reason": err.Error()}
	}

	RespondError(ctx, http.StatusInternalServerError, "internal_error", message, details)
}

// RespondStoreUnavailable is the 5xx surface of a relational backend that is
// unreachable or timing out. Never used for file-backend reads, those
// degrade inside the store.
func RespondStoreUnavailable(ctx *gin.Context) {
	RespondError(ctx, http.StatusServiceUnavailable, "store_unavailable", "Storage backend is temporarily unavailable.", nil)
}
