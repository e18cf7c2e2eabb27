package domain

// SocketSnapshot is one live connection and the rooms it belongs to,
// including its self-room (a room named after the connection ID).
type SocketSnapshot struct {
	ID    string
	Rooms []string
}

// ConnectionStats is a point-in-time view of the realtime server.
type ConnectionStats struct {
	TotalConnections int      `json:"totalConnections"`
	ActiveRooms      []string `json:"activeRooms"`
	Timestamp        string   `json:"timestamp"`
}
