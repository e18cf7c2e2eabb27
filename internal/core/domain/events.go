package domain

// EventType defines the type of real-time event.
type EventType string

const (
	EventBookingCreated   EventType = "booking:created"
	EventBookingUpdated   EventType = "booking:updated"
	EventBookingCancelled EventType = "booking:cancelled"
	EventBookingCheckIn   EventType = "booking:checkin"
	EventBookingCheckOut  EventType = "booking:checkout"
	EventLibraryCreated   EventType = "library:created"
	EventLibraryUpdated   EventType = "library:updated"
	EventLibraryDeleted   EventType = "library:deleted"
	EventPricingUpdated   EventType = "pricing:updated"
	EventSeatAvailability EventType = "seat:availability"
	EventNotification     EventType = "notification"

	// EventPong answers a client keep-alive; it is never fanned out.
	EventPong EventType = "pong"
)

// Event is the frame sent over WebSocket.
type Event struct {
	Type    EventType `json:"event"`
	Room    string    `json:"room,omitempty"`
	Payload any       `json:"data"`
}

// BookingCancelledPayload is the payload of booking:cancelled.
// Booking is nil when the caller only knew the booking ID.
type BookingCancelledPayload struct {
	ID      string   `json:"id"`
	Booking *Booking `json:"booking"`
}

// LibraryDeleted is the payload of library:deleted.
type LibraryDeleted struct {
	ID string `json:"id"`
}

// PricingUpdate is the payload of pricing:updated.
type PricingUpdate struct {
	LibraryID string  `json:"libraryId"`
	Pricing   Pricing `json:"pricing"`
}
