package ports

import (
	"context"
	"time"

	"github.com/lorrc/studyspace-backend/internal/core/domain"
)

// CreateLibraryParams defines the input for registering a library.
type CreateLibraryParams struct {
	Name       string
	Address    string
	OwnerID    string
	TotalSeats int
	Pricing    domain.Pricing
}

// UpdateLibraryParams defines the input for changing library details.
type UpdateLibraryParams struct {
	LibraryID  string
	Name       *string
	Address    *string
	TotalSeats *int
}

// UpdatePricingParams defines the input for replacing a library's rates.
type UpdatePricingParams struct {
	LibraryID string
	Pricing   domain.Pricing
}

// CreateBookingParams defines the input for booking a seat.
type CreateBookingParams struct {
	LibraryID string
	SeatID    string
	UserID    string
	StartTime time.Time
	EndTime   time.Time
}

// RescheduleBookingParams defines the input for moving a booking.
// Zero values keep the current seat or time.
type RescheduleBookingParams struct {
	BookingID string
	SeatID    string
	StartTime time.Time
	EndTime   time.Time
}

// ListBookingsParams defines the input for listing a library's bookings.
type ListBookingsParams struct {
	LibraryID string
	Limit     int
	Offset    int
}

// SetSeatAvailabilityParams defines the input for changing a seat's state.
type SetSeatAvailabilityParams struct {
	LibraryID string
	SeatID    string
	Available bool
}

// SendNotificationParams defines the input for a direct notification.
type SendNotificationParams struct {
	UserID  string
	Kind    domain.NotificationKind
	Title   string
	Message string
}

// LibraryService defines the business operations on libraries and their pricing.
type LibraryService interface {
	CreateLibrary(ctx context.Context, params CreateLibraryParams) (*domain.Library, error)
	GetLibrary(ctx context.Context, libraryID string) (*domain.Library, error)
	UpdateLibrary(ctx context.Context, params UpdateLibraryParams) (*domain.Library, error)
	DeleteLibrary(ctx context.Context, libraryID string) error
	UpdatePricing(ctx context.Context, params UpdatePricingParams) (*domain.Library, error)
}

// BookingService defines the business operations on seat bookings.
type BookingService interface {
	CreateBooking(ctx context.Context, params CreateBookingParams) (*domain.Booking, error)
	GetBooking(ctx context.Context, bookingID string) (*domain.Booking, error)
	RescheduleBooking(ctx context.Context, params RescheduleBookingParams) (*domain.Booking, error)
	CancelBooking(ctx context.Context, bookingID string) (*domain.Booking, error)
	CheckIn(ctx context.Context, bookingID string) (*domain.Booking, error)
	CheckOut(ctx context.Context, bookingID string) (*domain.Booking, error)
	ListLibraryBookings(ctx context.Context, params ListBookingsParams) ([]*domain.Booking, error)
}

// SeatService defines the business operations on seat availability.
type SeatService interface {
	SetAvailability(ctx context.Context, params SetSeatAvailabilityParams) (*domain.SeatAvailability, error)
	ListSeats(ctx context.Context, libraryID string) ([]*domain.SeatAvailability, error)
}

// NotificationService defines the port for direct user notifications.
type NotificationService interface {
	Send(ctx context.Context, params SendNotificationParams) (*domain.Notification, error)
	ListForUser(ctx context.Context, userID string, limit int) ([]*domain.Notification, error)
}
