package domain

import (
	"time"

	"github.com/google/uuid"
	apperrors "github.com/lorrc/studyspace-backend/internal/core/errors"
)

// BookingStatus represents the lifecycle state of a seat booking.
type BookingStatus string

const (
	BookingConfirmed  BookingStatus = "CONFIRMED"
	BookingCheckedIn  BookingStatus = "CHECKED_IN"
	BookingCheckedOut BookingStatus = "CHECKED_OUT"
	BookingCancelled  BookingStatus = "CANCELLED"
)

// IsValid checks if the status is a known booking status.
func (s BookingStatus) IsValid() bool {
	switch s {
	case BookingConfirmed, BookingCheckedIn, BookingCheckedOut, BookingCancelled:
		return true
	default:
		return false
	}
}

// validBookingTransitions lists the statuses reachable from each status.
var validBookingTransitions = map[BookingStatus][]BookingStatus{
	BookingConfirmed:  {BookingCheckedIn, BookingCancelled},
	BookingCheckedIn:  {BookingCheckedOut},
	BookingCheckedOut: {},
	BookingCancelled:  {},
}

// Booking reserves one seat of a library for a time window.
type Booking struct {
	ID           string        `json:"id"`
	LibraryID    string        `json:"libraryId"`
	SeatID       string        `json:"seatId"`
	UserID       string        `json:"userId"`
	Status       BookingStatus `json:"status"`
	StartTime    time.Time     `json:"startTime"`
	EndTime      time.Time     `json:"endTime"`
	CheckedInAt  *time.Time    `json:"checkedInAt,omitempty"`
	CheckedOutAt *time.Time    `json:"checkedOutAt,omitempty"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    *time.Time    `json:"updatedAt,omitempty"`
}

// BookingParams holds the parameters for creating a new booking.
type BookingParams struct {
	LibraryID string
	SeatID    string
	UserID    string
	StartTime time.Time
	EndTime   time.Time
}

// NewBooking is a factory function to create a valid confirmed booking.
func NewBooking(params BookingParams) (*Booking, error) {
	if params.LibraryID == "" {
		return nil, apperrors.ErrLibraryIDRequired
	}
	if params.SeatID == "" {
		return nil, apperrors.ErrSeatIDRequired
	}
	if params.UserID == "" {
		return nil, apperrors.ErrUserIDRequired
	}
	if !ValidIdentifier(params.LibraryID) || !ValidIdentifier(params.UserID) {
		return nil, apperrors.ErrInvalidIdentifier
	}
	if !params.EndTime.After(params.StartTime) {
		return nil, apperrors.ErrInvalidTimeRange
	}

	return &Booking{
		ID:        uuid.NewString(),
		LibraryID: params.LibraryID,
		SeatID:    params.SeatID,
		UserID:    params.UserID,
		Status:    BookingConfirmed,
		StartTime: params.StartTime.UTC(),
		EndTime:   params.EndTime.UTC(),
		CreatedAt: time.Now().UTC(),
	}, nil
}

// CanTransitionTo checks if the booking can move to the given status.
func (b *Booking) CanTransitionTo(next BookingStatus) bool {
	for _, s := range validBookingTransitions[b.Status] {
		if s == next {
			return true
		}
	}
	return false
}

func (b *Booking) transition(next BookingStatus) (time.Time, error) {
	if !b.CanTransitionTo(next) {
		return time.Time{}, apperrors.ErrInvalidBookingTransition
	}
	now := time.Now().UTC()
	b.Status = next
	b.UpdatedAt = &now
	return now, nil
}

// Cancel releases a booking that has not started yet.
func (b *Booking) Cancel() error {
	_, err := b.transition(BookingCancelled)
	return err
}

// CheckIn marks the student as present at the seat.
func (b *Booking) CheckIn() error {
	now, err := b.transition(BookingCheckedIn)
	if err != nil {
		return err
	}
	b.CheckedInAt = &now
	return nil
}

// CheckOut closes a checked-in booking.
func (b *Booking) CheckOut() error {
	now, err := b.transition(BookingCheckedOut)
	if err != nil {
		return err
	}
	b.CheckedOutAt = &now
	return nil
}

// Reschedule moves a confirmed booking to another seat and/or time window.
// Zero values keep the current seat or time.
func (b *Booking) Reschedule(seatID string, start, end time.Time) error {
	if b.Status != BookingConfirmed {
		return apperrors.ErrInvalidBookingTransition
	}

	newStart, newEnd := b.StartTime, b.EndTime
	if !start.IsZero() {
		newStart = start.UTC()
	}
	if !end.IsZero() {
		newEnd = end.UTC()
	}
	if !newEnd.After(newStart) {
		return apperrors.ErrInvalidTimeRange
	}

	if seatID != "" {
		b.SeatID = seatID
	}
	b.StartTime = newStart
	b.EndTime = newEnd
	now := time.Now().UTC()
	b.UpdatedAt = &now
	return nil
}
