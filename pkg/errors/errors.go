package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Standard error types
var (
	ErrValidation   = errors.New("validation error")
	ErrConnectivity = errors.New("server unreachable")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("resource not found")
	ErrConflict     = errors.New("resource conflict")
	ErrBadRequest   = errors.New("bad request")
	ErrServer       = errors.New("server error")
)

// AppError represents an application error with context. StatusCode is the
// HTTP status returned by the API server; it is zero for errors raised on the
// client side (validation failures, unreachable server).
type AppError struct {
	Err        error             `json:"-"`
	Message    string            `json:"message"`
	Code       string            `json:"code"`
	StatusCode int               `json:"status_code,omitempty"`
	Details    map[string]string `json:"details,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil && e.Message == "" {
		return e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetails adds details to an AppError
func (e *AppError) WithDetails(details map[string]string) *AppError {
	e.Details = details
	return e
}

// New creates a new AppError
func New(code string, message string, statusCode int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
	}
}

// Wrap wraps an error with additional context
func Wrap(err error, code string, message string, statusCode int) *AppError {
	return &AppError{
		Err:        err,
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
	}
}

// Common error constructors

// Validation is raised before any network call is made.
func Validation(message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Code:    "VALIDATION_ERROR",
		Message: message,
	}
}

// Connectivity wraps a transport-level failure (DNS, refused connection,
// timeout). The underlying error is kept for diagnostics but the message
// shown to the user stays generic.
func Connectivity(err error) *AppError {
	return &AppError{
		Err:     fmt.Errorf("%w: %w", ErrConnectivity, err),
		Code:    "CONNECTIVITY_ERROR",
		Message: "cannot reach the inventory server",
	}
}

// FromStatus maps an HTTP status and the server-provided detail message to an
// AppError. The detail, when present, is carried verbatim.
func FromStatus(statusCode int, detail string) *AppError {
	var (
		sentinel error
		code     string
	)
	switch {
	case statusCode == http.StatusUnauthorized:
		sentinel, code = ErrUnauthorized, "UNAUTHORIZED"
	case statusCode == http.StatusForbidden:
		sentinel, code = ErrForbidden, "FORBIDDEN"
	case statusCode == http.StatusNotFound:
		sentinel, code = ErrNotFound, "NOT_FOUND"
	case statusCode == http.StatusConflict:
		sentinel, code = ErrConflict, "CONFLICT"
	case statusCode >= 400 && statusCode < 500:
		sentinel, code = ErrBadRequest, "BAD_REQUEST"
	default:
		sentinel, code = ErrServer, "SERVER_ERROR"
	}

	if detail == "" {
		detail = http.StatusText(statusCode)
	}

	return &AppError{
		Err:        sentinel,
		Code:       code,
		Message:    detail,
		StatusCode: statusCode,
	}
}

// Detail returns the server-provided message when err carries one, or the
// fallback otherwise. Convenience for user-facing output.
func Detail(err error, fallback string) string {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return fallback
}

// Is checks if the error matches a target error
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As attempts to convert an error to a specific type
func As(err error, target any) bool {
	return errors.As(err, target)
}
