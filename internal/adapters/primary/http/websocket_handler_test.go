package http

import (
	"context"
	"encoding/json"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	wsAdapter "github.com/lorrc/studyspace-backend/internal/adapters/primary/websocket"
	"github.com/lorrc/studyspace-backend/internal/auth"
	"github.com/lorrc/studyspace-backend/internal/config"
	"github.com/lorrc/studyspace-backend/internal/core/domain"
)

const wsTestSecret = "websocket-handler-test-secret-0123456789"

func newWSTestServer(t *testing.T, env string, origins ...string) (*httptest.Server, *wsAdapter.Hub, *auth.TokenManager) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	hub := wsAdapter.NewHub(16, newTestLogger())
	go hub.Run(ctx)

	cfg := &config.Config{
		App: config.AppConfig{Environment: env},
		WebSocket: config.WebSocketConfig{
			AllowedOrigins:   origins,
			ReadBufferSize:   1024,
			WriteBufferSize:  1024,
			ClientSendBuffer: 8,
			PongWait:         time.Minute,
			PingInterval:     50 * time.Second,
		},
	}
	tm := auth.NewTokenManager(wsTestSecret, time.Hour)

	srv := httptest.NewServer(NewWebSocketHandler(hub, tm, cfg, newTestLogger()))
	t.Cleanup(srv.Close)
	return srv, hub, tm
}

func wsURL(srv *httptest.Server, query string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/?" + query
}

func TestWebSocketHandler_RejectsMissingOrBadToken(t *testing.T) {
	srv, _, _ := newWSTestServer(t, "development")

	for _, query := range []string{"", "token=not-a-jwt"} {
		_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, query), nil)
		require.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, stdhttp.StatusUnauthorized, resp.StatusCode)
		_ = resp.Body.Close()
	}
}

func TestWebSocketHandler_JoinsRoomsAndReceivesEvents(t *testing.T) {
	srv, hub, tm := newWSTestServer(t, "development")

	token, err := tm.GenerateToken("student-9", domain.RoleStudent)
	require.NoError(t, err)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "token="+token+"&library=lib-1&library=bad:id"), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	sockets, err := hub.FetchConnectedSockets(context.Background())
	require.NoError(t, err)
	require.Len(t, sockets, 1)
	assert.ElementsMatch(t,
		[]string{sockets[0].ID, "user:student-9", "role:student", "library:lib-1"},
		sockets[0].Rooms,
	)

	require.NoError(t, hub.Emit("library:lib-1", domain.EventSeatAvailability, domain.SeatAvailability{
		LibraryID: "lib-1", SeatID: "A-1", Available: true,
	}))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var frame struct {
		Event string          `json:"event"`
		Room  string          `json:"room"`
		Data  json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(data, &frame))
	assert.Equal(t, "seat:availability", frame.Event)
	assert.Equal(t, "library:lib-1", frame.Room)
	assert.JSONEq(t, `{"libraryId":"lib-1","seatId":"A-1","available":true,"updatedAt":"0001-01-01T00:00:00Z"}`, string(frame.Data))
}

func TestWebSocketHandler_OriginCheck(t *testing.T) {
	srv, _, tm := newWSTestServer(t, "production", "*.studyspace.app", "console.example.org")

	token, err := tm.GenerateToken("owner-1", domain.RoleLibraryOwner)
	require.NoError(t, err)

	tests := []struct {
		origin string
		wantOK bool
	}{
		{"https://north.studyspace.app", true},
		{"https://studyspace.app", true},
		{"https://console.example.org", true},
		{"https://evil.example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.origin, func(t *testing.T) {
			header := stdhttp.Header{"Origin": []string{tt.origin}}
			conn, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, "token="+token), header)
			if tt.wantOK {
				require.NoError(t, err)
				_ = conn.Close()
				return
			}
			require.Error(t, err)
			require.NotNil(t, resp)
			assert.Equal(t, stdhttp.StatusForbidden, resp.StatusCode)
		})
	}
}

func TestRequestedLibraries(t *testing.T) {
	req := httptest.NewRequest(stdhttp.MethodGet, "/ws?library=a&library=b&library=a&library=&library=x:y", nil)

	assert.Equal(t, []string{"a", "b"}, requestedLibraries(req))
}

func TestOriginPolicy(t *testing.T) {
	policy := originPolicy{hosts: []string{"*.studyspace.app", "localhost:3000"}}

	tests := []struct {
		origin string
		want   bool
	}{
		{"", true},
		{"https://a.b.studyspace.app", true},
		{"https://studyspace.app", true},
		{"https://notstudyspace.app", false},
		{"http://localhost:3000", true},
		{"http://localhost:4000", false},
	}
	for _, tt := range tests {
		t.Run(tt.origin, func(t *testing.T) {
			ok, err := policy.allows(tt.origin)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}

	_, err := policy.allows("://bad")
	assert.Error(t, err)

	ok, err := originPolicy{allowAll: true}.allows("https://anything.test")
	require.NoError(t, err)
	assert.True(t, ok)
}
