package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error codes
const (
	// Authentication errors
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeEmailExists        = "EMAIL_ALREADY_EXISTS"

	// Authorization errors
	ErrCodeForbidden         = "FORBIDDEN"
	ErrCodeTaskAccessDenied  = "TASK_ACCESS_DENIED"
	ErrCodeTaskEditDenied    = "TASK_EDIT_DENIED"
	ErrCodeTaskDeleteDenied  = "TASK_DELETE_DENIED"
	ErrCodeNotTeamMember     = "NOT_TEAM_MEMBER"
	ErrCodeNotTeamAdmin      = "NOT_TEAM_ADMIN"
	ErrCodeCannotRemoveOwner = "CANNOT_REMOVE_OWNER"
	ErrCodeCommentEditDenied = "COMMENT_EDIT_DENIED"

	// Validation errors
	ErrCodeInvalidInput = "INVALID_INPUT"

	// Resource errors
	ErrCodeNotFound        = "NOT_FOUND"
	ErrCodeTaskNotFound    = "TASK_NOT_FOUND"
	ErrCodeTeamNotFound    = "TEAM_NOT_FOUND"
	ErrCodeUserNotFound    = "USER_NOT_FOUND"
	ErrCodeCommentNotFound = "COMMENT_NOT_FOUND"
	ErrCodeConflict        = "CONFLICT"
	ErrCodeAlreadyMember   = "ALREADY_TEAM_MEMBER"

	// Service errors
	ErrCodeInternalError = "INTERNAL_ERROR"
)

// APIError is the error payload of the uniform error envelope.
type APIError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// NewAPIError creates a new APIError
func NewAPIError(code, message string, statusCode int) *APIError {
	return &APIError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
	}
}

// RespondWithError sends the uniform error envelope.
func RespondWithError(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error":   NewAPIError(code, message, statusCode),
	})
}

// Respond sends the uniform success envelope.
func Respond(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, gin.H{
		"success": true,
		"data":    data,
	})
}

// Helper functions for common error responses

// Unauthorized sends a 401 response
func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "Authentication required"
	}
	RespondWithError(c, http.StatusUnauthorized, ErrCodeUnauthorized, message)
}

// Forbidden sends a 403 response with an operation-specific code
func Forbidden(c *gin.Context, code, message string) {
	if message == "" {
		message = "You do not have permission to perform this action"
	}
	RespondWithError(c, http.StatusForbidden, code, message)
}

// NotFound sends a 404 response
func NotFound(c *gin.Context, code, message string) {
	if message == "" {
		message = "Resource not found"
	}
	RespondWithError(c, http.StatusNotFound, code, message)
}

// BadRequest sends a 400 response
func BadRequest(c *gin.Context, message string) {
	if message == "" {
		message = "Invalid request"
	}
	RespondWithError(c, http.StatusBadRequest, ErrCodeInvalidInput, message)
}

// Conflict sends a 409 response
func Conflict(c *gin.Context, code, message string) {
	if message == "" {
		message = "Resource conflict"
	}
	RespondWithError(c, http.StatusConflict, code, message)
}

// InternalError sends a 500 response
func InternalError(c *gin.Context, message string) {
	if message == "" {
		message = "Internal server error"
	}
	RespondWithError(c, http.StatusInternalServerError, ErrCodeInternalError, message)
}
