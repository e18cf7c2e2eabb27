package services

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sync/atomic"
	"time"

	"github.com/samber/lo"

	"github.com/lorrc/studyspace-backend/internal/core/domain"
	"github.com/lorrc/studyspace-backend/internal/core/ports"
	"github.com/lorrc/studyspace-backend/internal/infrastructure/logging"
)

// statsTimestampLayout renders UTC times as ISO-8601 with millisecond precision.
const statsTimestampLayout = "2006-01-02T15:04:05.000Z07:00"

type serverHandle struct {
	server ports.RealtimeServer
}

// RealtimeRouter holds the realtime server handle and encodes the fan-out
// policy of every domain event. The zero handle disables fan-out.
type RealtimeRouter struct {
	handle atomic.Pointer[serverHandle]
	logger *slog.Logger
}

var _ ports.RealtimeRouter = (*RealtimeRouter)(nil)

// NewRealtimeRouter creates a router with no server registered.
func NewRealtimeRouter(logger *slog.Logger) *RealtimeRouter {
	return &RealtimeRouter{
		logger: logger.With("component", "realtime_router"),
	}
}

// SetServer replaces the current handle. Passing nil, including a typed nil
// pointer, disables fan-out until a new server is set.
func (r *RealtimeRouter) SetServer(server ports.RealtimeServer) {
	if isNilServer(server) {
		r.handle.Store(nil)
		r.logger.Info("realtime server cleared")
		return
	}
	r.handle.Store(&serverHandle{server: server})
	r.logger.Info("realtime server registered")
}

// Server returns the current handle, or nil.
func (r *RealtimeRouter) Server() ports.RealtimeServer {
	h := r.handle.Load()
	if h == nil {
		return nil
	}
	return h.server
}

// EmitBookingCreated fans a new booking out to staff roles and its library.
func (r *RealtimeRouter) EmitBookingCreated(booking *domain.Booking) {
	r.emitBooking(domain.EventBookingCreated, booking)
}

// EmitBookingUpdated fans a changed booking out to staff roles and its library.
func (r *RealtimeRouter) EmitBookingUpdated(booking *domain.Booking) {
	r.emitBooking(domain.EventBookingUpdated, booking)
}

// EmitBookingCancelled publishes {id, booking}. booking may be nil when only
// the ID is known, in which case only the role rooms are reachable.
func (r *RealtimeRouter) EmitBookingCancelled(bookingID string, booking *domain.Booking) {
	if bookingID == "" && booking != nil {
		bookingID = booking.ID
	}
	payload := domain.BookingCancelledPayload{ID: bookingID, Booking: booking}
	r.publish(domain.EventBookingCancelled, bookingRef(booking), payload)
}

func (r *RealtimeRouter) EmitBookingCheckIn(booking *domain.Booking) {
	r.emitBooking(domain.EventBookingCheckIn, booking)
}

func (r *RealtimeRouter) EmitBookingCheckOut(booking *domain.Booking) {
	r.emitBooking(domain.EventBookingCheckOut, booking)
}

// EmitLibraryCreated announces a new library to browsing students.
func (r *RealtimeRouter) EmitLibraryCreated(library *domain.Library) {
	r.publish(domain.EventLibraryCreated, domain.RoutingRef{}, library)
}

// EmitLibraryUpdated announces changed library details to browsing students.
func (r *RealtimeRouter) EmitLibraryUpdated(library *domain.Library) {
	r.publish(domain.EventLibraryUpdated, domain.RoutingRef{}, library)
}

// EmitLibraryDeleted publishes {id} to browsing students.
func (r *RealtimeRouter) EmitLibraryDeleted(libraryID string) {
	r.publish(domain.EventLibraryDeleted, domain.RoutingRef{}, domain.LibraryDeleted{ID: libraryID})
}

// EmitPricingUpdated publishes new rates to students and the library room.
func (r *RealtimeRouter) EmitPricingUpdated(update domain.PricingUpdate) {
	r.publish(domain.EventPricingUpdated, domain.RoutingRef{LibraryID: update.LibraryID}, update)
}

// EmitSeatAvailability publishes a seat state change to the library room.
func (r *RealtimeRouter) EmitSeatAvailability(seat domain.SeatAvailability) {
	r.publish(domain.EventSeatAvailability, domain.RoutingRef{LibraryID: seat.LibraryID}, seat)
}

// SendNotification delivers a notification to the private room of userID only.
func (r *RealtimeRouter) SendNotification(userID string, notification *domain.Notification) {
	r.publish(domain.EventNotification, domain.RoutingRef{UserID: userID}, notification)
}

// BroadcastToRole publishes an ad hoc event verbatim to one role room.
func (r *RealtimeRouter) BroadcastToRole(role domain.Role, event domain.EventType, data any) {
	if event == "" {
		r.logger.Debug("broadcast skipped: empty event name", "role", role)
		return
	}
	r.send(event, domain.CollectTargets(domain.RoleTarget(role)), data)
}

// ConnectionStats snapshots the connected sockets. It returns nil when no
// server is registered. Self-rooms are excluded from ActiveRooms.
func (r *RealtimeRouter) ConnectionStats(ctx context.Context) (*domain.ConnectionStats, error) {
	server := r.Server()
	if server == nil {
		return nil, nil
	}

	sockets, err := server.FetchConnectedSockets(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch connected sockets: %w", err)
	}

	rooms := lo.Uniq(lo.FlatMap(sockets, func(s domain.SocketSnapshot, _ int) []string {
		return lo.Without(s.Rooms, s.ID)
	}))
	if rooms == nil {
		rooms = []string{}
	}

	return &domain.ConnectionStats{
		TotalConnections: len(sockets),
		ActiveRooms:      rooms,
		Timestamp:        time.Now().UTC().Format(statsTimestampLayout),
	}, nil
}

func (r *RealtimeRouter) emitBooking(event domain.EventType, booking *domain.Booking) {
	r.publish(event, bookingRef(booking), booking)
}

func (r *RealtimeRouter) publish(event domain.EventType, ref domain.RoutingRef, payload any) {
	r.send(event, domain.TargetsFor(event, ref), payload)
}

// send emits payload to every target. Failures are logged and swallowed.
func (r *RealtimeRouter) send(event domain.EventType, targets []domain.Target, payload any) {
	server := r.Server()
	if server == nil {
		r.logger.Debug("realtime server not registered, event skipped", "event", event)
		return
	}

	for _, target := range targets {
		r.emitTo(server, target.RoomKey(), event, payload)
	}
}

// emitTo delivers to one room. A panic in the transport is contained to
// that room.
func (r *RealtimeRouter) emitTo(server ports.RealtimeServer, room string, event domain.EventType, payload any) {
	defer func() {
		if p := recover(); p != nil {
			logging.LogPanic(context.Background(), r.logger.With("event", event, "room", room), p)
		}
	}()

	if err := server.Emit(room, event, payload); err != nil {
		r.logger.Debug("realtime emit failed",
			"event", event,
			"room", room,
			"error", err,
		)
	}
}

func isNilServer(server ports.RealtimeServer) bool {
	if server == nil {
		return true
	}
	v := reflect.ValueOf(server)
	return v.Kind() == reflect.Pointer && v.IsNil()
}

func bookingRef(booking *domain.Booking) domain.RoutingRef {
	if booking == nil {
		return domain.RoutingRef{}
	}
	return domain.RoutingRef{LibraryID: booking.LibraryID, UserID: booking.UserID}
}
