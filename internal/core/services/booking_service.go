package services

import (
	"context"

	"github.com/lorrc/studyspace-backend/internal/core/domain"
	apperrors "github.com/lorrc/studyspace-backend/internal/core/errors"
	"github.com/lorrc/studyspace-backend/internal/core/ports"
)

const (
	defaultBookingPageSize = 50
	maxBookingPageSize     = 200
)

// BookingService implements business logic for seat bookings
type BookingService struct {
	bookingRepo ports.BookingRepository
	libraryRepo ports.LibraryRepository
	fanOut      ports.FanOut
	tx          ports.Transactor
}

// BookingOption configures optional BookingService collaborators.
type BookingOption func(*BookingService)

// WithTransactor makes status changes and reschedules load and save the
// booking in a single transaction.
func WithTransactor(tx ports.Transactor) BookingOption {
	return func(s *BookingService) {
		s.tx = tx
	}
}

// directTx runs the unit of work without a transaction.
type directTx struct{}

func (directTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

var _ ports.BookingService = (*BookingService)(nil)

// NewBookingService creates a new booking service
func NewBookingService(
	bookingRepo ports.BookingRepository,
	libraryRepo ports.LibraryRepository,
	fanOut ports.FanOut,
	opts ...BookingOption,
) ports.BookingService {
	s := &BookingService{
		bookingRepo: bookingRepo,
		libraryRepo: libraryRepo,
		fanOut:      fanOut,
		tx:          directTx{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateBooking reserves a seat in an existing library.
func (s *BookingService) CreateBooking(ctx context.Context, params ports.CreateBookingParams) (*domain.Booking, error) {
	// 1. Validate and build the domain entity
	booking, err := domain.NewBooking(domain.BookingParams{
		LibraryID: params.LibraryID,
		SeatID:    params.SeatID,
		UserID:    params.UserID,
		StartTime: params.StartTime,
		EndTime:   params.EndTime,
	})
	if err != nil {
		return nil, err
	}

	// 2. The library must exist
	if _, err := s.libraryRepo.GetByID(ctx, booking.LibraryID); err != nil {
		return nil, err
	}

	// 3. Persist
	created, err := s.bookingRepo.Create(ctx, booking)
	if err != nil {
		return nil, err
	}

	// 4. Fan out (best effort)
	s.fanOut.EmitBookingCreated(created)
	return created, nil
}

// GetBooking retrieves a booking by ID.
func (s *BookingService) GetBooking(ctx context.Context, bookingID string) (*domain.Booking, error) {
	if bookingID == "" {
		return nil, apperrors.ErrBookingIDRequired
	}
	return s.bookingRepo.GetByID(ctx, bookingID)
}

// RescheduleBooking moves a confirmed booking to another seat or time.
func (s *BookingService) RescheduleBooking(ctx context.Context, params ports.RescheduleBookingParams) (*domain.Booking, error) {
	updated, err := s.transition(ctx, params.BookingID, func(b *domain.Booking) error {
		return b.Reschedule(params.SeatID, params.StartTime, params.EndTime)
	})
	if err != nil {
		return nil, err
	}

	s.fanOut.EmitBookingUpdated(updated)
	return updated, nil
}

// CancelBooking cancels a booking that has not been checked in.
func (s *BookingService) CancelBooking(ctx context.Context, bookingID string) (*domain.Booking, error) {
	updated, err := s.transition(ctx, bookingID, (*domain.Booking).Cancel)
	if err != nil {
		return nil, err
	}

	s.fanOut.EmitBookingCancelled(updated.ID, updated)
	return updated, nil
}

// CheckIn records the student's arrival.
func (s *BookingService) CheckIn(ctx context.Context, bookingID string) (*domain.Booking, error) {
	updated, err := s.transition(ctx, bookingID, (*domain.Booking).CheckIn)
	if err != nil {
		return nil, err
	}

	s.fanOut.EmitBookingCheckIn(updated)
	return updated, nil
}

// CheckOut records the student's departure.
func (s *BookingService) CheckOut(ctx context.Context, bookingID string) (*domain.Booking, error) {
	updated, err := s.transition(ctx, bookingID, (*domain.Booking).CheckOut)
	if err != nil {
		return nil, err
	}

	s.fanOut.EmitBookingCheckOut(updated)
	return updated, nil
}

// ListLibraryBookings lists a library's bookings, newest first.
func (s *BookingService) ListLibraryBookings(ctx context.Context, params ports.ListBookingsParams) ([]*domain.Booking, error) {
	if params.LibraryID == "" {
		return nil, apperrors.ErrLibraryIDRequired
	}

	limit := params.Limit
	if limit <= 0 {
		limit = defaultBookingPageSize
	}
	if limit > maxBookingPageSize {
		limit = maxBookingPageSize
	}
	offset := params.Offset
	if offset < 0 {
		offset = 0
	}

	return s.bookingRepo.ListByLibrary(ctx, params.LibraryID, limit, offset)
}

// transition loads a booking, applies a change and persists it in one
// unit of work. Events are emitted by the caller after it completes.
func (s *BookingService) transition(
	ctx context.Context,
	bookingID string,
	apply func(*domain.Booking) error,
) (*domain.Booking, error) {
	var updated *domain.Booking
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		booking, err := s.GetBooking(ctx, bookingID)
		if err != nil {
			return err
		}
		if err := apply(booking); err != nil {
			return err
		}
		updated, err = s.bookingRepo.Update(ctx, booking)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
