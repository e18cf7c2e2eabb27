package errors

import (
	"errors"
	"fmt"
	"maps"
	"net/http"
	"slices"
	"strings"
)

// Sentinel errors. The HTTP adapter maps each to a status and code.
var (
	// Access
	ErrForbidden    = errors.New("action forbidden")
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidRole  = errors.New("invalid role")

	// Library validation
	ErrLibraryNotFound     = errors.New("library not found")
	ErrLibraryIDRequired   = errors.New("library ID is required")
	ErrLibraryNameRequired = errors.New("library name is required")
	ErrLibraryNameTooLong  = errors.New("library name exceeds maximum length of 200 characters")
	ErrOwnerIDRequired     = errors.New("owner ID is required")
	ErrInvalidSeatCount    = errors.New("total seats cannot be negative")
	ErrInvalidPricing      = errors.New("pricing rates cannot be negative")
	ErrInvalidCurrency     = errors.New("currency must be a 3-letter ISO code")

	// Booking validation
	ErrBookingNotFound          = errors.New("booking not found")
	ErrBookingIDRequired        = errors.New("booking ID is required")
	ErrSeatIDRequired           = errors.New("seat ID is required")
	ErrUserIDRequired           = errors.New("user ID is required")
	ErrInvalidTimeRange         = errors.New("booking end time must be after start time")
	ErrInvalidBookingTransition = errors.New("invalid booking status transition")

	// Notification validation
	ErrNotificationTitleRequired = errors.New("notification title is required")
	ErrNotificationTooLong       = errors.New("notification message exceeds maximum length")

	// Realtime
	ErrEventNameRequired   = errors.New("event name is required")
	ErrInvalidIdentifier   = errors.New("identifier must not contain ':'")
	ErrRealtimeUnavailable = errors.New("realtime server not registered")
	ErrBroadcastQueueFull  = errors.New("realtime broadcast queue full")

	// Generic
	ErrNotFound    = errors.New("resource not found")
	ErrBadRequest  = errors.New("bad request")
	ErrConflict    = errors.New("resource conflict")
	ErrRateLimited = errors.New("rate limit exceeded")
)

// AppError carries an explicit HTTP status and client message for an
// underlying error. It bypasses the sentinel mapping in the HTTP adapter.
type AppError struct {
	Err        error
	Message    string
	Code       string
	StatusCode int
	Details    map[string]any
}

func (e *AppError) Error() string {
	if e.Message != "" || e.Err == nil {
		return e.Message
	}
	return e.Err.Error()
}

func (e *AppError) Unwrap() error { return e.Err }

func newAppError(status int, code string, err error, message string) *AppError {
	return &AppError{Err: err, Message: message, Code: code, StatusCode: status}
}

// NewBadRequestError reports a malformed request body or query.
func NewBadRequestError(err error, message string) *AppError {
	return newAppError(http.StatusBadRequest, "BAD_REQUEST", err, message)
}

func NewUnauthorizedError(message string) *AppError {
	return newAppError(http.StatusUnauthorized, "UNAUTHORIZED", ErrUnauthorized, message)
}

func NewForbiddenError(message string) *AppError {
	return newAppError(http.StatusForbidden, "FORBIDDEN", ErrForbidden, message)
}

// ValidationErrors collects messages per request field.
type ValidationErrors struct {
	Errors map[string][]string `json:"errors"`
}

func NewValidationErrors() *ValidationErrors {
	return &ValidationErrors{Errors: map[string][]string{}}
}

func (v *ValidationErrors) Add(field, message string) {
	v.Errors[field] = append(v.Errors[field], message)
}

func (v *ValidationErrors) Error() string {
	fields := slices.Sorted(maps.Keys(v.Errors))
	return fmt.Sprintf("validation failed on %s", strings.Join(fields, ", "))
}
