package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/samber/lo"

	mw "github.com/lorrc/studyspace-backend/internal/adapters/primary/http/middleware"
	apperrors "github.com/lorrc/studyspace-backend/internal/core/errors"
)

// GetRequestID retrieves the request ID from context
func GetRequestID(ctx context.Context) string {
	return mw.GetRequestID(ctx)
}

// ErrorResponse is the standard JSON error response format
type ErrorResponse struct {
	Error   string                 `json:"error"`
	Code    string                 `json:"code,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// ValidationErrorResponse includes field-level validation errors
type ValidationErrorResponse struct {
	Error  string              `json:"error"`
	Code   string              `json:"code"`
	Fields map[string][]string `json:"fields,omitempty"`
}

// errorMapping turns any of its sentinels into one HTTP response.
// An empty message exposes the error text itself.
type errorMapping struct {
	sentinels []error
	status    int
	code      string
	message   string
}

// errorMappings is checked in order; the first match wins.
var errorMappings = []errorMapping{
	{[]error{apperrors.ErrUnauthorized}, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required"},
	{[]error{apperrors.ErrForbidden}, http.StatusForbidden, "FORBIDDEN", "You do not have permission to perform this action"},

	{[]error{apperrors.ErrLibraryNotFound}, http.StatusNotFound, "LIBRARY_NOT_FOUND", "Library not found"},
	{[]error{apperrors.ErrBookingNotFound}, http.StatusNotFound, "BOOKING_NOT_FOUND", "Booking not found"},
	{[]error{apperrors.ErrNotFound}, http.StatusNotFound, "NOT_FOUND", "Resource not found"},

	{[]error{
		apperrors.ErrLibraryIDRequired,
		apperrors.ErrLibraryNameRequired,
		apperrors.ErrLibraryNameTooLong,
		apperrors.ErrOwnerIDRequired,
		apperrors.ErrInvalidSeatCount,
		apperrors.ErrInvalidPricing,
		apperrors.ErrInvalidCurrency,
		apperrors.ErrBookingIDRequired,
		apperrors.ErrSeatIDRequired,
		apperrors.ErrUserIDRequired,
		apperrors.ErrInvalidTimeRange,
		apperrors.ErrNotificationTitleRequired,
		apperrors.ErrNotificationTooLong,
		apperrors.ErrEventNameRequired,
		apperrors.ErrInvalidIdentifier,
		apperrors.ErrInvalidRole,
		apperrors.ErrBadRequest,
	}, http.StatusBadRequest, "VALIDATION_ERROR", ""},

	{[]error{apperrors.ErrInvalidBookingTransition}, http.StatusConflict, "INVALID_BOOKING_TRANSITION", "Invalid booking status transition"},
	{[]error{apperrors.ErrConflict}, http.StatusConflict, "CONFLICT", "Resource conflict"},

	{[]error{apperrors.ErrRealtimeUnavailable}, http.StatusServiceUnavailable, "REALTIME_UNAVAILABLE", "Realtime server is not available"},
	{[]error{apperrors.ErrRateLimited}, http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests. Please try again later."},
}

// ErrorHandler provides centralized error handling with logging
type ErrorHandler struct {
	logger *slog.Logger
}

// NewErrorHandler creates a new error handler with the given logger
func NewErrorHandler(logger *slog.Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Handle processes an error and writes the appropriate HTTP response
func (h *ErrorHandler) Handle(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		h.logError(r, appErr.StatusCode, appErr.Err)
		WriteJSON(w, appErr.StatusCode, ErrorResponse{
			Error:   appErr.Message,
			Code:    appErr.Code,
			Details: appErr.Details,
		})
		return
	}

	var validationErrs *apperrors.ValidationErrors
	if errors.As(err, &validationErrs) {
		h.logError(r, http.StatusUnprocessableEntity, err)
		WriteJSON(w, http.StatusUnprocessableEntity, ValidationErrorResponse{
			Error:  "Validation failed",
			Code:   "VALIDATION_ERROR",
			Fields: validationErrs.Errors,
		})
		return
	}

	status, response := mapDomainError(err)
	h.logError(r, status, err)
	WriteJSON(w, status, response)
}

// mapDomainError converts domain errors to HTTP status codes and responses
func mapDomainError(err error) (int, ErrorResponse) {
	m, ok := lo.Find(errorMappings, func(m errorMapping) bool {
		return lo.SomeBy(m.sentinels, func(target error) bool {
			return errors.Is(err, target)
		})
	})
	if !ok {
		return http.StatusInternalServerError, ErrorResponse{
			Error: "An unexpected error occurred",
			Code:  "INTERNAL_ERROR",
		}
	}

	message := m.message
	if message == "" {
		message = err.Error()
	}
	return m.status, ErrorResponse{Error: message, Code: m.code}
}

// logError logs 5xx at error and 4xx at warn.
func (h *ErrorHandler) logError(r *http.Request, statusCode int, err error) {
	attrs := []any{
		"method", r.Method,
		"path", r.URL.Path,
		"status_code", statusCode,
		"error", err,
	}

	ctx := r.Context()
	switch {
	case statusCode >= 500:
		h.logger.ErrorContext(ctx, "server error", attrs...)
	case statusCode >= 400:
		h.logger.WarnContext(ctx, "client error", attrs...)
	default:
		h.logger.InfoContext(ctx, "request error", attrs...)
	}
}
