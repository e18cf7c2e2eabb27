package http

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/samber/lo"

	wsAdapter "github.com/lorrc/studyspace-backend/internal/adapters/primary/websocket"
	"github.com/lorrc/studyspace-backend/internal/auth"
	"github.com/lorrc/studyspace-backend/internal/config"
	"github.com/lorrc/studyspace-backend/internal/core/domain"
)

// originPolicy decides which browser origins may open a socket.
// Entries are hosts; "*.example.com" also matches example.com itself.
type originPolicy struct {
	allowAll bool
	hosts    []string
}

func (p originPolicy) allows(origin string) (bool, error) {
	if p.allowAll || origin == "" {
		return true, nil
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false, err
	}
	return lo.SomeBy(p.hosts, func(allowed string) bool {
		if bare, ok := strings.CutPrefix(allowed, "*."); ok {
			return u.Host == bare || strings.HasSuffix(u.Host, "."+bare)
		}
		return u.Host == allowed
	}), nil
}

// WebSocketHandler authenticates a dial, upgrades it and hands the socket
// to the hub.
type WebSocketHandler struct {
	hub      *wsAdapter.Hub
	tm       *auth.TokenManager
	upgrader websocket.Upgrader
	opts     wsAdapter.ClientOptions
	logger   *slog.Logger
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(hub *wsAdapter.Hub, tm *auth.TokenManager, cfg *config.Config, logger *slog.Logger) *WebSocketHandler {
	h := &WebSocketHandler{
		hub: hub,
		tm:  tm,
		opts: wsAdapter.ClientOptions{
			SendBuffer: cfg.WebSocket.ClientSendBuffer,
			PongWait:   cfg.WebSocket.PongWait,
			PingPeriod: cfg.WebSocket.PingInterval,
		},
		logger: logger.With("handler", "websocket"),
	}

	policy := originPolicy{allowAll: cfg.IsDevelopment(), hosts: cfg.WebSocket.AllowedOrigins}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  cfg.WebSocket.ReadBufferSize,
		WriteBufferSize: cfg.WebSocket.WriteBufferSize,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			ok, err := policy.allows(origin)
			if !ok {
				h.logger.Warn("websocket origin rejected",
					"origin", origin,
					"remote_addr", r.RemoteAddr,
					"error", err,
				)
			}
			return ok
		},
	}

	return h
}

// ServeHTTP handles WebSocket connection requests
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := h.logger.With("request_id", GetRequestID(r.Context()), "remote_addr", r.RemoteAddr)

	// Browsers cannot set headers on a websocket dial.
	token := r.URL.Query().Get("token")
	if token == "" {
		log.Warn("websocket rejected: missing token")
		http.Error(w, "Missing authentication token", http.StatusUnauthorized)
		return
	}
	claims, err := h.tm.ValidateToken(token)
	if err != nil {
		log.Warn("websocket rejected: invalid token", "error", err)
		http.Error(w, "Invalid or expired token", http.StatusUnauthorized)
		return
	}
	log = log.With("user_id", claims.UserID)

	// Upgrade writes its own error response.
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("websocket upgrade failed", "error", err)
		return
	}

	client := wsAdapter.NewClient(h.hub, conn, wsAdapter.Identity{
		UserID:    claims.UserID,
		Role:      claims.Role,
		Libraries: requestedLibraries(r),
	}, h.opts, h.logger)

	if !client.Start() {
		log.Warn("websocket dropped: hub stopped")
		closeMsg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
		_ = conn.WriteMessage(websocket.CloseMessage, closeMsg)
		_ = conn.Close()
		return
	}

	log.Info("websocket connected", "socket_id", client.ID, "role", claims.Role)
}

// requestedLibraries returns the distinct valid ?library= values.
func requestedLibraries(r *http.Request) []string {
	return lo.Uniq(lo.Filter(r.URL.Query()["library"], func(id string, _ int) bool {
		return domain.ValidIdentifier(id)
	}))
}
