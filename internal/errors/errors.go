package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrTypeInputShape  ErrorType = "INPUT_SHAPE"
	ErrTypeDataQuality ErrorType = "DATA_QUALITY"
	ErrTypeTransport   ErrorType = "TRANSPORT"
	ErrTypeStorage     ErrorType = "STORAGE"
	ErrTypeConfig      ErrorType = "CONFIG"
)

// AppError represents an application-specific error
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// ErrNoRecords reports that an analysis run matched zero inventory rows
// after channel filtering. It is a distinguishable outcome, not a failure
// of the run itself.
var ErrNoRecords = errors.New("no inventory records matched the channel filter")

// NewInputShapeError creates an error for an input dataset that is
// missing required columns. The run aborts before aggregation.
func NewInputShapeError(dataset string, missing []string) *AppError {
	e := NewAppError(ErrTypeInputShape,
		fmt.Sprintf("%s is missing required columns: %s", dataset, strings.Join(missing, ", ")), nil)
	e.Context["dataset"] = dataset
	e.Context["missing_columns"] = missing
	return e
}

// NewDataQualityError describes cell values that degraded to safe
// defaults during ingestion. Data quality problems never abort a run.
func NewDataQualityError(message string) *AppError {
	return NewAppError(ErrTypeDataQuality, message, nil)
}

// NewTransportError creates an error for a failed publish handoff
func NewTransportError(message string, cause error) *AppError {
	return NewAppError(ErrTypeTransport, message, cause)
}

// NewStorageError creates an error for file system operations
func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, message, cause)
}

// NewConfigError creates an error for configuration problems
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}

// IsType checks whether err is an AppError of the given type
func IsType(err error, errType ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == errType
	}
	return false
}
