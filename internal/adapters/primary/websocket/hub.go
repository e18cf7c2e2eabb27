package websocket

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/lorrc/studyspace-backend/internal/core/domain"
	apperrors "github.com/lorrc/studyspace-backend/internal/core/errors"
	"github.com/lorrc/studyspace-backend/internal/core/ports"
)

// roomEvent is an event queued for delivery to one room.
type roomEvent struct {
	room  string
	event domain.Event
}

// Hub maintains the set of active clients and the rooms they joined.
// It is the realtime server handle registered with the fan-out router.
type Hub struct {
	// clients is the set of registered connections
	clients map[*Client]bool

	// rooms maps room keys to the clients in them
	rooms map[string]map[*Client]bool

	// emits is the single ordered delivery queue
	emits chan roomEvent

	// Register requests from clients
	Register chan *Client

	// Unregister requests from clients
	Unregister chan *Client

	// done is closed when Run returns
	done chan struct{}

	// mu protects the clients and rooms maps
	mu sync.RWMutex

	logger *slog.Logger
}

var _ ports.RealtimeServer = (*Hub)(nil)

// NewHub creates a new WebSocket hub. queueSize bounds the number of
// emitted events waiting for delivery.
func NewHub(queueSize int, logger *slog.Logger) *Hub {
	if queueSize <= 0 {
		queueSize = 256
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		rooms:      make(map[string]map[*Client]bool),
		emits:      make(chan roomEvent, queueSize),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger.With("component", "websocket_hub"),
	}
}

// Emit queues event for every client in room. It never blocks: when the
// queue is full the event is dropped.
func (h *Hub) Emit(room string, event domain.EventType, payload any) error {
	if room == "" {
		return apperrors.ErrInvalidIdentifier
	}

	select {
	case h.emits <- roomEvent{room: room, event: domain.Event{Type: event, Room: room, Payload: payload}}:
		return nil
	default:
		h.logger.Warn("emit queue full, dropping event",
			"event", event,
			"room", room,
		)
		return apperrors.ErrBroadcastQueueFull
	}
}

// FetchConnectedSockets returns the id and joined rooms of every connection.
func (h *Hub) FetchConnectedSockets(ctx context.Context) ([]domain.SocketSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	sockets := make([]domain.SocketSnapshot, 0, len(h.clients))
	for client := range h.clients {
		sockets = append(sockets, domain.SocketSnapshot{
			ID:    client.ID,
			Rooms: client.Rooms(),
		})
	}
	slices.SortFunc(sockets, func(a, b domain.SocketSnapshot) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return sockets, nil
}

// Run starts the hub's event loop until ctx is cancelled. This MUST be run as a goroutine.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return

		case client := <-h.Register:
			h.registerClient(client)

		case client := <-h.Unregister:
			h.unregisterClient(client)

		case re := <-h.emits:
			h.deliver(re)
		}
	}
}

// register hands a client to the loop. It returns false once the hub stopped.
func (h *Hub) register(client *Client) bool {
	select {
	case h.Register <- client:
		return true
	case <-h.done:
		return false
	}
}

// unregister hands a client back to the loop, or does nothing once the hub stopped.
func (h *Hub) unregister(client *Client) {
	select {
	case h.Unregister <- client:
	case <-h.done:
	}
}

// registerClient adds a client to the hub and to its initial rooms
func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client] = true
	for _, room := range client.initialRooms {
		h.join(client, room)
	}

	h.logger.Info("client registered",
		"socket_id", client.ID,
		"user_id", client.UserID,
		"role", client.Role,
		"total_connections", len(h.clients),
	)
}

// unregisterClient removes a client from the hub and all rooms
func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.clients[client] {
		return
	}
	delete(h.clients, client)

	for _, room := range client.Rooms() {
		h.leave(client, room)
	}

	client.CloseSend()

	h.logger.Info("client unregistered",
		"socket_id", client.ID,
		"user_id", client.UserID,
	)
}

// deliver sends an event to all clients in its room
func (h *Hub) deliver(re roomEvent) {
	h.mu.RLock()
	room, ok := h.rooms[re.room]
	if !ok {
		h.mu.RUnlock()
		return
	}

	clients := make([]*Client, 0, len(room))
	for client := range room {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	h.logger.Debug("delivering event",
		"event", re.event.Type,
		"room", re.room,
		"client_count", len(clients),
	)

	for _, client := range clients {
		select {
		case client.Send <- re.event:
		default:
			h.logger.Warn("client send buffer full, unregistering",
				"socket_id", client.ID,
				"user_id", client.UserID,
			)
			h.unregisterClient(client)
		}
	}
}

// shutdown closes every client when the loop stops.
func (h *Hub) shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		client.CloseSend()
	}
	h.clients = make(map[*Client]bool)
	h.rooms = make(map[string]map[*Client]bool)

	h.logger.Info("hub stopped")
}

// JoinRoom adds a client to a room.
func (h *Hub) JoinRoom(client *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.clients[client] {
		return
	}
	h.join(client, room)

	h.logger.Debug("client joined room",
		"socket_id", client.ID,
		"room", room,
	)
}

// LeaveRoom removes a client from a room. The self room cannot be left.
func (h *Hub) LeaveRoom(client *Client, room string) {
	if room == client.ID {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.leave(client, room)

	h.logger.Debug("client left room",
		"socket_id", client.ID,
		"room", room,
	)
}

// join must be called with mu held.
func (h *Hub) join(client *Client, room string) {
	if h.rooms[room] == nil {
		h.rooms[room] = make(map[*Client]bool)
	}
	h.rooms[room][client] = true
	client.addRoom(room)
}

// leave must be called with mu held.
func (h *Hub) leave(client *Client, room string) {
	if members, ok := h.rooms[room]; ok {
		delete(members, client)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
	client.removeRoom(room)
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// RoomCount returns the number of rooms with at least one client
func (h *Hub) RoomCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms)
}

// ClientsInRoom returns the number of clients in room
func (h *Hub) ClientsInRoom(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}
