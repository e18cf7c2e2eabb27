package ports

import (
	"context"

	"github.com/lorrc/studyspace-backend/internal/core/domain"
)

// RealtimeServer is the handle of the live pub/sub server the router publishes to.
type RealtimeServer interface {
	// Emit publishes event with payload to every connection in room.
	// It must not block on delivery.
	Emit(room string, event domain.EventType, payload any) error
	// FetchConnectedSockets lists the live connections and their rooms.
	FetchConnectedSockets(ctx context.Context) ([]domain.SocketSnapshot, error)
}

// FanOut publishes domain events to the rooms derived from their payload.
// Every method is fire-and-forget: it never fails and never blocks the caller.
type FanOut interface {
	EmitBookingCreated(booking *domain.Booking)
	EmitBookingUpdated(booking *domain.Booking)
	EmitBookingCancelled(bookingID string, booking *domain.Booking)
	EmitBookingCheckIn(booking *domain.Booking)
	EmitBookingCheckOut(booking *domain.Booking)
	EmitLibraryCreated(library *domain.Library)
	EmitLibraryUpdated(library *domain.Library)
	EmitLibraryDeleted(libraryID string)
	EmitPricingUpdated(update domain.PricingUpdate)
	EmitSeatAvailability(seat domain.SeatAvailability)
	SendNotification(userID string, notification *domain.Notification)
	BroadcastToRole(role domain.Role, event domain.EventType, data any)
}

// RealtimeRegistry owns the process-wide realtime server handle.
type RealtimeRegistry interface {
	SetServer(server RealtimeServer)
	Server() RealtimeServer
	// ConnectionStats returns nil when no server is registered.
	ConnectionStats(ctx context.Context) (*domain.ConnectionStats, error)
}

// RealtimeRouter combines the fan-out functions with their handle registry.
type RealtimeRouter interface {
	FanOut
	RealtimeRegistry
}
