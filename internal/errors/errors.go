package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error codes
const (
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeInvalidToken       = "INVALID_TOKEN"

	ErrCodeForbidden               = "FORBIDDEN"
	ErrCodeInsufficientPermissions = "INSUFFICIENT_PERMISSIONS"

	ErrCodeInvalidInput     = "INVALID_INPUT"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeAlreadyExists    = "ALREADY_EXISTS"
	ErrCodeInvalidOperation = "INVALID_OPERATION"
	ErrCodeTooManyRequests  = "TOO_MANY_REQUESTS"

	ErrCodeInternalError      = "INTERNAL_ERROR"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

const internalErrorMessage = "Internal server error"

// APIError is the JSON body of every error response
type APIError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return e.Message
}

// RespondWithError writes an error body with the given status and code
func RespondWithError(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, &APIError{Code: code, Message: message})
}

// respond falls back to fallback when message is empty.
func respond(c *gin.Context, statusCode int, code, message, fallback string) {
	if message == "" {
		message = fallback
	}
	RespondWithError(c, statusCode, code, message)
}

func Unauthorized(c *gin.Context, message string) {
	respond(c, http.StatusUnauthorized, ErrCodeUnauthorized, message, "Authentication required")
}

func Forbidden(c *gin.Context, message string) {
	respond(c, http.StatusForbidden, ErrCodeForbidden, message, "Access denied")
}

func NotFound(c *gin.Context, message string) {
	respond(c, http.StatusNotFound, ErrCodeNotFound, message, "Resource not found")
}

func BadRequest(c *gin.Context, message string) {
	respond(c, http.StatusBadRequest, ErrCodeInvalidInput, message, "Invalid request")
}

// BadRequestWithDetails points the client at the offending field or key
func BadRequestWithDetails(c *gin.Context, message string, details interface{}) {
	c.JSON(http.StatusBadRequest, &APIError{Code: ErrCodeInvalidInput, Message: message, Details: details})
}

// ConflictWithCode sends a 409. code tells duplicates apart from rejected state changes.
func ConflictWithCode(c *gin.Context, code, message string) {
	RespondWithError(c, http.StatusConflict, code, message)
}

func TooManyRequests(c *gin.Context, message string) {
	respond(c, http.StatusTooManyRequests, ErrCodeTooManyRequests, message, "Too many requests, please try again later")
}

// InternalError sends a 500. The cause is logged by the caller and never echoed.
func InternalError(c *gin.Context) {
	RespondWithError(c, http.StatusInternalServerError, ErrCodeInternalError, internalErrorMessage)
}

func ServiceUnavailable(c *gin.Context, message string) {
	respond(c, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, message, "Service temporarily unavailable")
}
