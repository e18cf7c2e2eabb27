package http

import (
	"errors"
	"fmt"
	stdhttp "net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/lorrc/studyspace-backend/internal/core/errors"
)

func TestErrorHandler_Handle(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"library not found", apperrors.ErrLibraryNotFound, stdhttp.StatusNotFound, "LIBRARY_NOT_FOUND"},
		{"wrapped booking not found", fmt.Errorf("load: %w", apperrors.ErrBookingNotFound), stdhttp.StatusNotFound, "BOOKING_NOT_FOUND"},
		{"invalid time range", apperrors.ErrInvalidTimeRange, stdhttp.StatusBadRequest, "VALIDATION_ERROR"},
		{"invalid currency", apperrors.ErrInvalidCurrency, stdhttp.StatusBadRequest, "VALIDATION_ERROR"},
		{"invalid identifier", apperrors.ErrInvalidIdentifier, stdhttp.StatusBadRequest, "VALIDATION_ERROR"},
		{"booking transition", apperrors.ErrInvalidBookingTransition, stdhttp.StatusConflict, "INVALID_BOOKING_TRANSITION"},
		{"realtime unavailable", apperrors.ErrRealtimeUnavailable, stdhttp.StatusServiceUnavailable, "REALTIME_UNAVAILABLE"},
		{"forbidden", apperrors.ErrForbidden, stdhttp.StatusForbidden, "FORBIDDEN"},
		{"rate limited", apperrors.ErrRateLimited, stdhttp.StatusTooManyRequests, "RATE_LIMITED"},
		{"app error", apperrors.NewForbiddenError("not yours"), stdhttp.StatusForbidden, "FORBIDDEN"},
		{"unknown", errors.New("disk on fire"), stdhttp.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	eh := newTestErrorHandler()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			eh.Handle(rec, httptest.NewRequest(stdhttp.MethodGet, "/", nil), tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			body := decodeBody[ErrorResponse](t, rec)
			assert.Equal(t, tt.wantCode, body.Code)
		})
	}
}

func TestErrorHandler_InternalErrorsAreNotLeaked(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestErrorHandler().Handle(rec, httptest.NewRequest(stdhttp.MethodGet, "/", nil), errors.New("pq: password authentication failed"))

	assert.NotContains(t, rec.Body.String(), "password")
}

func TestErrorHandler_ValidationErrors(t *testing.T) {
	errs := apperrors.NewValidationErrors()
	errs.Add("title", "This field is required")

	rec := httptest.NewRecorder()
	newTestErrorHandler().Handle(rec, httptest.NewRequest(stdhttp.MethodPost, "/", nil), errs)

	assert.Equal(t, stdhttp.StatusUnprocessableEntity, rec.Code)
	body := decodeBody[ValidationErrorResponse](t, rec)
	assert.Equal(t, map[string][]string{"title": {"This field is required"}}, body.Fields)
}
