package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/samber/lo"

	"github.com/lorrc/studyspace-backend/internal/core/domain"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Maximum message size allowed from peer.
	maxMessageSize = 1024
)

// ClientOptions tunes the connection pumps.
type ClientOptions struct {
	// SendBuffer is the number of outbound events buffered per connection.
	SendBuffer int
	// PongWait is the time allowed to read the next pong message from the peer.
	PongWait time.Duration
	// PingPeriod must be less than PongWait.
	PingPeriod time.Duration
}

// DefaultClientOptions returns the pump settings used when none are configured.
func DefaultClientOptions() ClientOptions {
	return ClientOptions{
		SendBuffer: 256,
		PongWait:   60 * time.Second,
		PingPeriod: 54 * time.Second,
	}
}

// Identity is who a connection belongs to, taken from the access token.
type Identity struct {
	UserID string
	Role   domain.Role
	// Libraries are followed from the moment the connection registers.
	Libraries []string
}

// Client is a middleman between the websocket connection and the hub.
type Client struct {
	Hub *Hub

	// The websocket connection.
	Conn *websocket.Conn

	// Buffered channel of outbound events.
	Send chan domain.Event

	// ID is the connection id; it doubles as the client's self room.
	ID string

	UserID string
	Role   domain.Role

	// initialRooms are joined on registration
	initialRooms []string

	// rooms the client is currently in
	rooms map[string]bool

	// closed is set once Send is closed
	closed bool

	// mu protects rooms and closed
	mu sync.RWMutex

	opts   ClientOptions
	logger *slog.Logger
}

// NewClient creates a new WebSocket client
func NewClient(hub *Hub, conn *websocket.Conn, identity Identity, opts ClientOptions, logger *slog.Logger) *Client {
	defaults := DefaultClientOptions()
	if opts.SendBuffer <= 0 {
		opts.SendBuffer = defaults.SendBuffer
	}
	if opts.PongWait <= 0 {
		opts.PongWait = defaults.PongWait
	}
	if opts.PingPeriod <= 0 || opts.PingPeriod >= opts.PongWait {
		opts.PingPeriod = (opts.PongWait * 9) / 10
	}

	id := uuid.NewString()

	targets := []domain.Target{
		domain.UserTarget(identity.UserID),
		domain.RoleTarget(identity.Role),
	}
	for _, libraryID := range identity.Libraries {
		targets = append(targets, domain.LibraryTarget(libraryID))
	}
	initial := lo.Uniq(append([]string{id}, domain.RoomKeys(domain.CollectTargets(targets...))...))

	return &Client{
		Hub:          hub,
		Conn:         conn,
		Send:         make(chan domain.Event, opts.SendBuffer),
		ID:           id,
		UserID:       identity.UserID,
		Role:         identity.Role,
		initialRooms: initial,
		rooms:        make(map[string]bool),
		opts:         opts,
		logger:       logger.With("socket_id", id, "user_id", identity.UserID),
	}
}

// Start registers the client with the hub and launches its pumps.
// It returns false when the hub is no longer running.
func (c *Client) Start() bool {
	if !c.Hub.register(c) {
		return false
	}
	go c.WritePump()
	go c.ReadPump()
	return true
}

// CloseSend safely closes the Send channel exactly once
func (c *Client) CloseSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.Send)
	}
}

func (c *Client) addRoom(room string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rooms[room] = true
}

func (c *Client) removeRoom(room string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.rooms, room)
}

// InRoom checks if the client is in room
func (c *Client) InRoom(room string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.rooms[room]
}

// Rooms returns a copy of the rooms the client is in
func (c *Client) Rooms() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return lo.Keys(c.rooms)
}

// ReadPump pumps messages from the websocket connection to the hub.
// This method runs in its own goroutine.
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.unregister(c)
		_ = c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	if err := c.Conn.SetReadDeadline(time.Now().Add(c.opts.PongWait)); err != nil {
		c.logger.Error("failed to set read deadline", "error", err)
		return
	}

	c.Conn.SetPongHandler(func(string) error {
		if err := c.Conn.SetReadDeadline(time.Now().Add(c.opts.PongWait)); err != nil {
			c.logger.Error("failed to set read deadline in pong handler", "error", err)
		}
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				c.logger.Warn("websocket read error", "error", err)
			}
			break
		}

		c.handleIncomingMessage(message)
	}
}

// WritePump pumps events from the hub to the websocket connection.
// This method runs in its own goroutine.
func (c *Client) WritePump() {
	ticker := time.NewTicker(c.opts.PingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
	}()

	for {
		select {
		case event, ok := <-c.Send:
			if err := c.Conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error("failed to set write deadline", "error", err)
				return
			}

			if !ok {
				// The hub closed the channel.
				if err := c.Conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
					c.logger.Debug("failed to send close message", "error", err)
				}
				return
			}

			if err := c.writeJSON(event); err != nil {
				c.logger.Error("failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			if err := c.Conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				c.logger.Error("failed to set write deadline for ping", "error", err)
				return
			}

			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.Debug("failed to send ping", "error", err)
				return
			}
		}
	}
}

// writeJSON writes a JSON frame to the websocket connection
func (c *Client) writeJSON(event domain.Event) error {
	w, err := c.Conn.NextWriter(websocket.TextMessage)
	if err != nil {
		return err
	}

	if err := json.NewEncoder(w).Encode(event); err != nil {
		_ = w.Close()
		return err
	}

	return w.Close()
}

// --- Incoming Message Handling ---

// Client message types.
const (
	MessageJoinLibrary  = "JOIN_LIBRARY"
	MessageLeaveLibrary = "LEAVE_LIBRARY"
	MessagePing         = "PING"
)

// ClientMessage is the structure for messages sent from the client.
type ClientMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// LibraryPayload is the payload of join/leave messages
type LibraryPayload struct {
	LibraryID string `json:"libraryId"`
}

// handleIncomingMessage processes messages received from the client
func (c *Client) handleIncomingMessage(message []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		c.logger.Warn("failed to unmarshal client message", "error", err)
		return
	}

	switch msg.Type {
	case MessageJoinLibrary:
		if room, ok := c.libraryRoom(msg.Payload); ok {
			c.Hub.JoinRoom(c, room)
		}

	case MessageLeaveLibrary:
		if room, ok := c.libraryRoom(msg.Payload); ok {
			c.Hub.LeaveRoom(c, room)
		}

	case MessagePing:
		c.sendPong()

	default:
		c.logger.Debug("received unknown message type", "type", msg.Type)
	}
}

// libraryRoom decodes a join/leave payload into a library room key.
func (c *Client) libraryRoom(payload json.RawMessage) (string, bool) {
	var p LibraryPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		c.logger.Warn("failed to unmarshal library payload", "error", err)
		return "", false
	}

	target := domain.LibraryTarget(p.LibraryID)
	if !target.Valid() {
		c.logger.Warn("invalid library ID in room request", "library_id", p.LibraryID)
		return "", false
	}
	return target.RoomKey(), true
}

func (c *Client) sendPong() {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return
	}
	select {
	case c.Send <- domain.Event{Type: domain.EventPong}:
	default:
		// Channel full, skip pong response
	}
}
