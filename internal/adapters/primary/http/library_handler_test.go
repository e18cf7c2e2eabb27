package http

import (
	stdhttp "net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lorrc/studyspace-backend/internal/core/domain"
	apperrors "github.com/lorrc/studyspace-backend/internal/core/errors"
	"github.com/lorrc/studyspace-backend/internal/core/mocks"
	"github.com/lorrc/studyspace-backend/internal/core/ports"
)

func newLibraryRouter() (stdhttp.Handler, *mocks.MockLibraryService) {
	svc := mocks.NewMockLibraryService()
	handler := NewLibraryHandler(svc, nil, nil, newTestErrorHandler(), newTestLogger())
	return handler.Router(), svc
}

func sampleLibrary(id, ownerID string) *domain.Library {
	return &domain.Library{
		ID:         id,
		Name:       "Quiet Hall",
		OwnerID:    ownerID,
		TotalSeats: 40,
		Pricing:    domain.Pricing{HourlyRate: 5000, DailyRate: 30000, MonthlyRate: 500000, Currency: "INR"},
		CreatedAt:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

const createLibraryBody = `{
	"name": "Quiet Hall",
	"totalSeats": 40,
	"pricing": {"hourlyRate": 5000, "dailyRate": 30000, "monthlyRate": 500000, "currency": "INR"}
}`

func TestLibraryHandler_Create(t *testing.T) {
	router, svc := newLibraryRouter()

	want := ports.CreateLibraryParams{
		Name:       "Quiet Hall",
		OwnerID:    "owner-1",
		TotalSeats: 40,
		Pricing:    domain.Pricing{HourlyRate: 5000, DailyRate: 30000, MonthlyRate: 500000, Currency: "INR"},
	}
	svc.On("CreateLibrary", mock.Anything, want).Return(sampleLibrary("lib-1", "owner-1"), nil)

	rec := serve(router, claimsFor("owner-1", domain.RoleLibraryOwner), stdhttp.MethodPost, "/", createLibraryBody)

	require.Equal(t, stdhttp.StatusCreated, rec.Code)
	got := decodeBody[domain.Library](t, rec)
	assert.Equal(t, "lib-1", got.ID)
	assert.Equal(t, "INR", got.Pricing.Currency)
	svc.AssertExpectations(t)
}

func TestLibraryHandler_CreateOwnerOverride(t *testing.T) {
	body := `{"name":"Quiet Hall","ownerId":"owner-9","pricing":{"currency":"INR"}}`

	t.Run("admin may assign an owner", func(t *testing.T) {
		router, svc := newLibraryRouter()
		svc.On("CreateLibrary", mock.Anything, mock.MatchedBy(func(p ports.CreateLibraryParams) bool {
			return p.OwnerID == "owner-9"
		})).Return(sampleLibrary("lib-1", "owner-9"), nil)

		rec := serve(router, claimsFor("admin-1", domain.RoleAdmin), stdhttp.MethodPost, "/", body)

		assert.Equal(t, stdhttp.StatusCreated, rec.Code)
		svc.AssertExpectations(t)
	})

	t.Run("owner always owns what they create", func(t *testing.T) {
		router, svc := newLibraryRouter()
		svc.On("CreateLibrary", mock.Anything, mock.MatchedBy(func(p ports.CreateLibraryParams) bool {
			return p.OwnerID == "owner-1"
		})).Return(sampleLibrary("lib-1", "owner-1"), nil)

		rec := serve(router, claimsFor("owner-1", domain.RoleLibraryOwner), stdhttp.MethodPost, "/", body)

		assert.Equal(t, stdhttp.StatusCreated, rec.Code)
		svc.AssertExpectations(t)
	})
}

func TestLibraryHandler_CreateRejected(t *testing.T) {
	tests := []struct {
		name       string
		role       domain.Role
		body       string
		wantStatus int
	}{
		{"student", domain.RoleStudent, createLibraryBody, stdhttp.StatusForbidden},
		{"front desk", domain.RoleFrontDesk, createLibraryBody, stdhttp.StatusForbidden},
		{"malformed json", domain.RoleAdmin, `{"name":`, stdhttp.StatusBadRequest},
		{"lowercase currency", domain.RoleAdmin, `{"name":"Hall","pricing":{"currency":"inr"}}`, stdhttp.StatusUnprocessableEntity},
		{"negative rate", domain.RoleAdmin, `{"name":"Hall","pricing":{"hourlyRate":-1,"currency":"INR"}}`, stdhttp.StatusUnprocessableEntity},
		{"missing name", domain.RoleAdmin, `{"pricing":{"currency":"INR"}}`, stdhttp.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, svc := newLibraryRouter()

			rec := serve(router, claimsFor("u1", tt.role), stdhttp.MethodPost, "/", tt.body)

			assert.Equal(t, tt.wantStatus, rec.Code)
			svc.AssertNotCalled(t, "CreateLibrary", mock.Anything, mock.Anything)
		})
	}
}

func TestLibraryHandler_CreateValidationFields(t *testing.T) {
	router, _ := newLibraryRouter()

	rec := serve(router, claimsFor("u1", domain.RoleAdmin), stdhttp.MethodPost, "/", `{"name":"Hall","totalSeats":-2,"pricing":{"currency":"inr"}}`)

	require.Equal(t, stdhttp.StatusUnprocessableEntity, rec.Code)
	body := decodeBody[ValidationErrorResponse](t, rec)
	assert.Contains(t, body.Fields, "totalSeats")
	assert.Contains(t, body.Fields, "pricing.currency")
}

func TestLibraryHandler_Get(t *testing.T) {
	router, svc := newLibraryRouter()
	svc.On("GetLibrary", mock.Anything, "lib-1").Return(sampleLibrary("lib-1", "owner-1"), nil)
	svc.On("GetLibrary", mock.Anything, "missing").Return(nil, apperrors.ErrLibraryNotFound)

	rec := serve(router, claimsFor("u1", domain.RoleStudent), stdhttp.MethodGet, "/lib-1", "")
	assert.Equal(t, stdhttp.StatusOK, rec.Code)

	rec = serve(router, claimsFor("u1", domain.RoleStudent), stdhttp.MethodGet, "/missing", "")
	assert.Equal(t, stdhttp.StatusNotFound, rec.Code)
	assert.Equal(t, "LIBRARY_NOT_FOUND", decodeBody[ErrorResponse](t, rec).Code)

	rec = serve(router, claimsFor("u1", domain.RoleStudent), stdhttp.MethodGet, "/bad:id", "")
	assert.Equal(t, stdhttp.StatusBadRequest, rec.Code)
}

func TestLibraryHandler_UpdateOwnership(t *testing.T) {
	name := "Renamed"

	t.Run("owner updates own library", func(t *testing.T) {
		router, svc := newLibraryRouter()
		svc.On("GetLibrary", mock.Anything, "lib-1").Return(sampleLibrary("lib-1", "owner-1"), nil)
		svc.On("UpdateLibrary", mock.Anything, ports.UpdateLibraryParams{LibraryID: "lib-1", Name: &name}).
			Return(sampleLibrary("lib-1", "owner-1"), nil)

		rec := serve(router, claimsFor("owner-1", domain.RoleLibraryOwner), stdhttp.MethodPatch, "/lib-1", `{"name":"Renamed"}`)

		assert.Equal(t, stdhttp.StatusOK, rec.Code)
		svc.AssertExpectations(t)
	})

	t.Run("owner cannot update another owner's library", func(t *testing.T) {
		router, svc := newLibraryRouter()
		svc.On("GetLibrary", mock.Anything, "lib-1").Return(sampleLibrary("lib-1", "owner-2"), nil)

		rec := serve(router, claimsFor("owner-1", domain.RoleLibraryOwner), stdhttp.MethodPatch, "/lib-1", `{"name":"Renamed"}`)

		assert.Equal(t, stdhttp.StatusForbidden, rec.Code)
		svc.AssertNotCalled(t, "UpdateLibrary", mock.Anything, mock.Anything)
	})

	t.Run("staff cannot update", func(t *testing.T) {
		router, svc := newLibraryRouter()

		rec := serve(router, claimsFor("staff-1", domain.RoleStaff), stdhttp.MethodPatch, "/lib-1", `{"name":"Renamed"}`)

		assert.Equal(t, stdhttp.StatusForbidden, rec.Code)
		svc.AssertNotCalled(t, "GetLibrary", mock.Anything, mock.Anything)
	})
}

func TestLibraryHandler_Delete(t *testing.T) {
	router, svc := newLibraryRouter()
	svc.On("DeleteLibrary", mock.Anything, "lib-1").Return(nil)

	rec := serve(router, claimsFor("admin-1", domain.RoleAdmin), stdhttp.MethodDelete, "/lib-1", "")

	assert.Equal(t, stdhttp.StatusNoContent, rec.Code)
	svc.AssertExpectations(t)
	svc.AssertNotCalled(t, "GetLibrary", mock.Anything, mock.Anything)
}

func TestLibraryHandler_UpdatePricing(t *testing.T) {
	router, svc := newLibraryRouter()
	pricing := domain.Pricing{HourlyRate: 6000, DailyRate: 35000, MonthlyRate: 600000, Currency: "INR"}

	updated := sampleLibrary("lib-1", "owner-1")
	updated.Pricing = pricing

	svc.On("GetLibrary", mock.Anything, "lib-1").Return(sampleLibrary("lib-1", "owner-1"), nil)
	svc.On("UpdatePricing", mock.Anything, ports.UpdatePricingParams{LibraryID: "lib-1", Pricing: pricing}).Return(updated, nil)

	rec := serve(router, claimsFor("owner-1", domain.RoleLibraryOwner), stdhttp.MethodPut, "/lib-1/pricing",
		`{"hourlyRate":6000,"dailyRate":35000,"monthlyRate":600000,"currency":"INR"}`)

	require.Equal(t, stdhttp.StatusOK, rec.Code)
	assert.Equal(t, pricing, decodeBody[domain.Library](t, rec).Pricing)
	svc.AssertExpectations(t)
}
