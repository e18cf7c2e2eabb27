package validation

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/lorrc/studyspace-backend/internal/core/errors"
)

type sampleRequest struct {
	Name     string  `json:"name" validate:"required,max=5"`
	Role     string  `json:"role" validate:"required,oneof=staff student"`
	Currency string  `json:"currency" validate:"omitempty,len=3"`
	Seats    *int    `json:"seats" validate:"omitempty,min=0"`
	Nested   *nested `json:"nested" validate:"omitempty"`
}

type nested struct {
	ID string `json:"id" validate:"required,excludes=:"`
}

func decode(t *testing.T, body string) (*sampleRequest, error) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	return DecodeAndValidate[sampleRequest](req)
}

func TestDecodeAndValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		got, err := decode(t, `{"name":"Hall","role":"staff","seats":4}`)
		require.NoError(t, err)
		assert.Equal(t, "Hall", got.Name)
		assert.Equal(t, 4, *got.Seats)
	})

	t.Run("malformed body", func(t *testing.T) {
		_, err := decode(t, `{"name":`)

		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, http.StatusBadRequest, appErr.StatusCode)
	})

	t.Run("field errors use json names", func(t *testing.T) {
		_, err := decode(t, `{"name":"Too long name","role":"owner","currency":"EURO","seats":-1,"nested":{"id":"a:b"}}`)

		var errs *apperrors.ValidationErrors
		require.ErrorAs(t, err, &errs)
		assert.Equal(t, []string{"Must be at most 5 characters"}, errs.Errors["name"])
		assert.Equal(t, []string{"Must be one of: staff, student"}, errs.Errors["role"])
		assert.Equal(t, []string{"Must be exactly 3 characters"}, errs.Errors["currency"])
		assert.Equal(t, []string{"Must be at least 0"}, errs.Errors["seats"])
		assert.Contains(t, errs.Errors, "nested.id")
	})

	t.Run("missing required", func(t *testing.T) {
		_, err := decode(t, `{}`)

		var errs *apperrors.ValidationErrors
		require.ErrorAs(t, err, &errs)
		assert.Equal(t, []string{"This field is required"}, errs.Errors["name"])
		assert.Equal(t, []string{"This field is required"}, errs.Errors["role"])
	})
}

func TestParsePagination(t *testing.T) {
	tests := []struct {
		query  string
		limit  int
		offset int
	}{
		{"", 25, 0},
		{"limit=10&offset=5", 10, 5},
		{"limit=500", 100, 0},
		{"limit=-3&offset=-1", 25, 0},
		{"limit=abc", 25, 0},
		{"limit=0&offset=3", 25, 3},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/?"+tt.query, nil)
			got := ParsePagination(req, 100)
			assert.Equal(t, tt.limit, got.Limit)
			assert.Equal(t, tt.offset, got.Offset)
		})
	}
}

func TestParseIntQueryParam(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=7&bad=x&neg=-2", nil)

	assert.Equal(t, 7, ParseIntQueryParam(req, "limit", 20))
	assert.Equal(t, 20, ParseIntQueryParam(req, "bad", 20))
	assert.Equal(t, 20, ParseIntQueryParam(req, "neg", 20))
	assert.Equal(t, 20, ParseIntQueryParam(req, "missing", 20))
}
