package errors

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"
)

// APIError represents a structured API error response
type APIError struct {
	StatusCode int         `json:"status_code"`
	ErrorCode  string      `json:"error_code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// Render implements the render.Renderer interface for chi/render
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

// New creates a new APIError with the given parameters
func New(statusCode int, errorCode, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
	}
}

// NewWithDetails creates a new APIError with additional details
func NewWithDetails(statusCode int, errorCode, message string, details interface{}) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
		Details:    details,
	}
}

// Predefined error types for common scenarios
var (
	ErrInvalidRequest = New(http.StatusBadRequest, "INVALID_REQUEST", "Invalid request format")
	ErrNotFound       = New(http.StatusNotFound, "NOT_FOUND", "Resource not found")
	ErrNoAnalysis     = New(http.StatusNotFound, "NO_ANALYSIS", "No analysis run is available yet")
	ErrInternalServer = New(http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "Internal server error")
)

// ToAPIError maps an application error to its HTTP representation.
// Input shape problems surface verbatim so the caller can see the exact
// missing columns; anything unrecognized becomes a 500.
func ToAPIError(err error) *APIError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		switch appErr.Type {
		case ErrTypeInputShape:
			return NewWithDetails(http.StatusUnprocessableEntity, "INPUT_SHAPE_ERROR", appErr.Message, appErr.Context)
		case ErrTypeTransport:
			return NewWithDetails(http.StatusBadGateway, "TRANSPORT_ERROR", appErr.Message, nil)
		case ErrTypeConfig:
			return NewWithDetails(http.StatusInternalServerError, "CONFIG_ERROR", appErr.Message, nil)
		}
	}
	if errors.Is(err, ErrNoRecords) {
		return NewWithDetails(http.StatusUnprocessableEntity, "EMPTY_RESULT", err.Error(), nil)
	}
	return NewWithDetails(http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", err.Error(), nil)
}

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Success bool      `json:"success"`
	Error   *APIError `json:"error"`
}

// NewErrorResponse creates a new error response
func NewErrorResponse(err *APIError) *ErrorResponse {
	return &ErrorResponse{
		Success: false,
		Error:   err,
	}
}

// Render implements the render.Renderer interface
func (e *ErrorResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return e.Error.Render(w, r)
}
