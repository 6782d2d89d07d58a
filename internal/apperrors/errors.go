package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType buckets application errors by how they are surfaced.
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeAuth       ErrorType = "auth"
	ErrorTypeForbidden  ErrorType = "forbidden"
	ErrorTypeNotFound   ErrorType = "not_found"
	ErrorTypeStorage    ErrorType = "storage"
	ErrorTypeNetwork    ErrorType = "network"
	ErrorTypeInternal   ErrorType = "internal"
)

// AppError is an application error with a type and an optional wrapped cause.
type AppError struct {
	Type     ErrorType
	Message  string
	Internal error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("%s: %s (internal: %v)", e.Type, e.Message, e.Internal)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the wrapped cause.
func (e *AppError) Unwrap() error {
	return e.Internal
}

// Is matches AppErrors by type so callers can test with sentinel values.
func (e *AppError) Is(target error) bool {
	if t, ok := target.(*AppError); ok {
		return e.Type == t.Type
	}
	return errors.Is(e.Internal, target)
}

// New creates a new AppError.
func New(errorType ErrorType, message string) *AppError {
	return &AppError{Type: errorType, Message: message}
}

// Wrap wraps an existing error into an AppError.
func Wrap(err error, errorType ErrorType, message string) *AppError {
	return &AppError{Type: errorType, Message: message, Internal: err}
}

// Sentinels for errors.Is checks against a whole type bucket.
var (
	ErrValidation = New(ErrorTypeValidation, "validation failed")
	ErrAuth       = New(ErrorTypeAuth, "invalid credentials")
	ErrForbidden  = New(ErrorTypeForbidden, "forbidden")
	ErrNotFound   = New(ErrorTypeNotFound, "not found")
	ErrStorage    = New(ErrorTypeStorage, "storage operation failed")
	ErrNetwork    = New(ErrorTypeNetwork, "upstream request failed")
)

// NewValidationError reports bad user input. Surfaced inline, never fatal.
func NewValidationError(message string) *AppError {
	return New(ErrorTypeValidation, message)
}

// NewAuthError reports bad credentials or a missing session.
func NewAuthError(message string) *AppError {
	return New(ErrorTypeAuth, message)
}

// NewStorageError wraps a persistence failure. Call sites log it and fall
// back to empty data rather than blocking the user.
func NewStorageError(err error) *AppError {
	return Wrap(err, ErrorTypeStorage, "storage operation failed")
}

// NewNetworkError wraps a chat transport or upstream failure.
func NewNetworkError(err error) *AppError {
	return Wrap(err, ErrorTypeNetwork, "upstream request failed")
}

// HTTPStatus maps an error to the status code handlers should respond with.
func HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		switch appErr.Type {
		case ErrorTypeValidation:
			return http.StatusBadRequest
		case ErrorTypeAuth:
			return http.StatusUnauthorized
		case ErrorTypeForbidden:
			return http.StatusForbidden
		case ErrorTypeNotFound:
			return http.StatusNotFound
		case ErrorTypeNetwork:
			return http.StatusBadGateway
		}
	}
	return http.StatusInternalServerError
}
