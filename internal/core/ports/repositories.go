package ports

import (
	"context"

	"github.com/lorrc/studyspace-backend/internal/core/domain"
)

// LibraryRepository persists libraries.
type LibraryRepository interface {
	Create(ctx context.Context, library *domain.Library) (*domain.Library, error)
	GetByID(ctx context.Context, id string) (*domain.Library, error)
	Update(ctx context.Context, library *domain.Library) (*domain.Library, error)
	Delete(ctx context.Context, id string) error
}

// BookingRepository persists bookings.
type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
	GetByID(ctx context.Context, id string) (*domain.Booking, error)
	Update(ctx context.Context, booking *domain.Booking) (*domain.Booking, error)
	ListByLibrary(ctx context.Context, libraryID string, limit, offset int) ([]*domain.Booking, error)
}

// SeatRepository persists seat availability.
type SeatRepository interface {
	Upsert(ctx context.Context, seat domain.SeatAvailability) (*domain.SeatAvailability, error)
	ListByLibrary(ctx context.Context, libraryID string) ([]*domain.SeatAvailability, error)
}

// NotificationRepository persists direct notifications.
type NotificationRepository interface {
	Create(ctx context.Context, notification *domain.Notification) (*domain.Notification, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]*domain.Notification, error)
}

// Transactor runs fn as one unit of work. Repository calls made with the
// ctx passed to fn join the same transaction.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
