package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/winsznx/cookathon/internal/logger"
)

// ErrorCode identifies an error category in API responses.
type ErrorCode string

const (
	ErrCodeBadRequest     ErrorCode = "bad_request"
	ErrCodeNotFound       ErrorCode = "not_found"
	ErrCodeSessionExpired ErrorCode = "session_expired"
	ErrCodeMintDenied     ErrorCode = "mint_denied"
	ErrCodeConflict       ErrorCode = "conflict"
	ErrCodeInternal       ErrorCode = "internal_error"
)

// ErrorBody is the standard error payload.
type ErrorBody struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details any       `json:"details,omitempty"`
}

// ErrorResponse is the standard error envelope.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

func respondError(c *gin.Context, status int, code ErrorCode, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Error: ErrorBody{Code: code, Message: message}})
}

func respondBadRequest(c *gin.Context, message string) {
	respondError(c, http.StatusBadRequest, ErrCodeBadRequest, message)
}

func respondNotFound(c *gin.Context, message string) {
	respondError(c, http.StatusNotFound, ErrCodeNotFound, message)
}

func respondInternalError(c *gin.Context, err error) {
	logger.ErrorCtx(c.Request.Context(), err,
		zap.String("path", c.Request.URL.Path))
	respondError(c, http.StatusInternalServerError, ErrCodeInternal, "internal server error")
}
