package http

import (
	"errors"
	stdhttp "net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lorrc/studyspace-backend/internal/core/domain"
	"github.com/lorrc/studyspace-backend/internal/core/mocks"
)

func newRealtimeRouter() (stdhttp.Handler, *mocks.MockRealtimeRouter) {
	rt := mocks.NewMockRealtimeRouter()
	handler := NewRealtimeHandler(rt, newTestErrorHandler(), newTestLogger())

	r := chi.NewRouter()
	r.Route("/realtime", handler.RegisterRoutes)
	return r, rt
}

func TestRealtimeHandler_Broadcast(t *testing.T) {
	router, rt := newRealtimeRouter()
	rt.On("Server").Return(mocks.NewMockRealtimeServer())
	rt.On("BroadcastToRole", domain.RoleStudent, domain.EventType("maintenance"), map[string]any{"until": "18:00"}).Return()

	rec := serve(router, claimsFor("admin-1", domain.RoleAdmin), stdhttp.MethodPost, "/realtime/broadcast",
		`{"role":"student","event":"maintenance","data":{"until":"18:00"}}`)

	require.Equal(t, stdhttp.StatusAccepted, rec.Code)
	got := decodeBody[BroadcastResponse](t, rec)
	assert.Equal(t, "role:student", got.Room)
	assert.Equal(t, "maintenance", got.Event)
	rt.AssertExpectations(t)
}

func TestRealtimeHandler_BroadcastWithoutServer(t *testing.T) {
	router, rt := newRealtimeRouter()
	rt.On("Server").Return(nil)

	rec := serve(router, claimsFor("admin-1", domain.RoleAdmin), stdhttp.MethodPost, "/realtime/broadcast",
		`{"role":"staff","event":"shift:changed"}`)

	assert.Equal(t, stdhttp.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "REALTIME_UNAVAILABLE", decodeBody[map[string]any](t, rec)["code"])
	rt.AssertNotCalled(t, "BroadcastToRole", mock.Anything, mock.Anything, mock.Anything)
}

func TestRealtimeHandler_BroadcastRejected(t *testing.T) {
	tests := []struct {
		name       string
		role       domain.Role
		body       string
		wantStatus int
	}{
		{"staff is not a manager", domain.RoleStaff, `{"role":"student","event":"x"}`, stdhttp.StatusForbidden},
		{"unknown role", domain.RoleAdmin, `{"role":"janitor","event":"x"}`, stdhttp.StatusUnprocessableEntity},
		{"missing event", domain.RoleAdmin, `{"role":"student"}`, stdhttp.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, rt := newRealtimeRouter()

			rec := serve(router, claimsFor("u1", tt.role), stdhttp.MethodPost, "/realtime/broadcast", tt.body)

			assert.Equal(t, tt.wantStatus, rec.Code)
			rt.AssertNotCalled(t, "BroadcastToRole", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestRealtimeHandler_Stats(t *testing.T) {
	owner := claimsFor("owner-1", domain.RoleLibraryOwner)

	t.Run("registered server", func(t *testing.T) {
		router, rt := newRealtimeRouter()
		rt.On("ConnectionStats", mock.Anything).Return(&domain.ConnectionStats{
			TotalConnections: 2,
			ActiveRooms:      []string{"role:student", "user:u1"},
			Timestamp:        "2026-03-02T09:00:00.000Z",
		}, nil)

		rec := serve(router, owner, stdhttp.MethodGet, "/realtime/stats", "")

		require.Equal(t, stdhttp.StatusOK, rec.Code)
		assert.JSONEq(t, `{"totalConnections":2,"activeRooms":["role:student","user:u1"],"timestamp":"2026-03-02T09:00:00.000Z"}`, rec.Body.String())
	})

	t.Run("no server registered", func(t *testing.T) {
		router, rt := newRealtimeRouter()
		rt.On("ConnectionStats", mock.Anything).Return(nil, nil)

		rec := serve(router, owner, stdhttp.MethodGet, "/realtime/stats", "")

		assert.Equal(t, stdhttp.StatusServiceUnavailable, rec.Code)
		assert.JSONEq(t, `{"status":"unavailable"}`, rec.Body.String())
	})

	t.Run("fetch failure", func(t *testing.T) {
		router, rt := newRealtimeRouter()
		rt.On("ConnectionStats", mock.Anything).Return(nil, errors.New("hub stopped"))

		rec := serve(router, owner, stdhttp.MethodGet, "/realtime/stats", "")

		assert.Equal(t, stdhttp.StatusInternalServerError, rec.Code)
	})

	t.Run("anonymous", func(t *testing.T) {
		router, _ := newRealtimeRouter()

		rec := serve(router, nil, stdhttp.MethodGet, "/realtime/stats", "")

		assert.Equal(t, stdhttp.StatusUnauthorized, rec.Code)
	})
}
