package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lorrc/studyspace-backend/internal/core/domain"
	apperrors "github.com/lorrc/studyspace-backend/internal/core/errors"
	"github.com/lorrc/studyspace-backend/internal/core/mocks"
	"github.com/lorrc/studyspace-backend/internal/core/ports"
	"github.com/lorrc/studyspace-backend/internal/core/services"
)

type bookingFixture struct {
	bookingRepo *mocks.MockBookingRepository
	libraryRepo *mocks.MockLibraryRepository
	fanOut      *mocks.MockRealtimeRouter
	svc         ports.BookingService
}

func newBookingFixture() bookingFixture {
	f := bookingFixture{
		bookingRepo: mocks.NewMockBookingRepository(),
		libraryRepo: mocks.NewMockLibraryRepository(),
		fanOut:      mocks.NewMockRealtimeRouter(),
	}
	f.svc = services.NewBookingService(f.bookingRepo, f.libraryRepo, f.fanOut)
	return f
}

func TestBookingService_CreateBooking(t *testing.T) {
	ctx := context.Background()
	start := time.Now().Add(time.Hour).UTC()
	end := start.Add(2 * time.Hour)

	t.Run("success persists then emits", func(t *testing.T) {
		f := newBookingFixture()
		params := ports.CreateBookingParams{
			LibraryID: "lib-1",
			SeatID:    "A-1",
			UserID:    "user-1",
			StartTime: start,
			EndTime:   end,
		}
		persisted := &domain.Booking{ID: "b1", LibraryID: "lib-1", SeatID: "A-1", UserID: "user-1", Status: domain.BookingConfirmed}

		f.libraryRepo.On("GetByID", ctx, "lib-1").Return(&domain.Library{ID: "lib-1"}, nil)
		f.bookingRepo.On("Create", ctx, mock.AnythingOfType("*domain.Booking")).Return(persisted, nil)
		f.fanOut.On("EmitBookingCreated", persisted).Return()

		booking, err := f.svc.CreateBooking(ctx, params)

		require.NoError(t, err)
		assert.Same(t, persisted, booking)
		f.bookingRepo.AssertExpectations(t)
		f.fanOut.AssertExpectations(t)
	})

	t.Run("invalid time range never persists", func(t *testing.T) {
		f := newBookingFixture()

		booking, err := f.svc.CreateBooking(ctx, ports.CreateBookingParams{
			LibraryID: "lib-1",
			SeatID:    "A-1",
			UserID:    "user-1",
			StartTime: end,
			EndTime:   start,
		})

		assert.Nil(t, booking)
		assert.ErrorIs(t, err, apperrors.ErrInvalidTimeRange)
		f.bookingRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		f.fanOut.AssertNotCalled(t, "EmitBookingCreated", mock.Anything)
	})

	t.Run("unknown library", func(t *testing.T) {
		f := newBookingFixture()
		f.libraryRepo.On("GetByID", ctx, "missing").Return(nil, apperrors.ErrLibraryNotFound)

		booking, err := f.svc.CreateBooking(ctx, ports.CreateBookingParams{
			LibraryID: "missing",
			SeatID:    "A-1",
			UserID:    "user-1",
			StartTime: start,
			EndTime:   end,
		})

		assert.Nil(t, booking)
		assert.ErrorIs(t, err, apperrors.ErrLibraryNotFound)
		f.fanOut.AssertNotCalled(t, "EmitBookingCreated", mock.Anything)
	})

	t.Run("persistence failure does not emit", func(t *testing.T) {
		f := newBookingFixture()
		f.libraryRepo.On("GetByID", ctx, "lib-1").Return(&domain.Library{ID: "lib-1"}, nil)
		f.bookingRepo.On("Create", ctx, mock.Anything).Return(nil, errors.New("db down"))

		_, err := f.svc.CreateBooking(ctx, ports.CreateBookingParams{
			LibraryID: "lib-1",
			SeatID:    "A-1",
			UserID:    "user-1",
			StartTime: start,
			EndTime:   end,
		})

		assert.Error(t, err)
		f.fanOut.AssertNotCalled(t, "EmitBookingCreated", mock.Anything)
	})
}

func TestBookingService_Transitions(t *testing.T) {
	ctx := context.Background()

	newConfirmed := func() *domain.Booking {
		return &domain.Booking{
			ID:        "b1",
			LibraryID: "lib-1",
			SeatID:    "A-1",
			UserID:    "user-1",
			Status:    domain.BookingConfirmed,
			StartTime: time.Now().Add(time.Hour),
			EndTime:   time.Now().Add(3 * time.Hour),
		}
	}

	t.Run("cancel emits wrapped payload", func(t *testing.T) {
		f := newBookingFixture()
		booking := newConfirmed()
		f.bookingRepo.On("GetByID", ctx, "b1").Return(booking, nil)
		f.bookingRepo.On("Update", ctx, booking).Return(booking, nil)
		f.fanOut.On("EmitBookingCancelled", "b1", booking).Return()

		updated, err := f.svc.CancelBooking(ctx, "b1")

		require.NoError(t, err)
		assert.Equal(t, domain.BookingCancelled, updated.Status)
		f.fanOut.AssertExpectations(t)
	})

	t.Run("check in then check out", func(t *testing.T) {
		f := newBookingFixture()
		booking := newConfirmed()
		f.bookingRepo.On("GetByID", ctx, "b1").Return(booking, nil)
		f.bookingRepo.On("Update", ctx, booking).Return(booking, nil)
		f.fanOut.On("EmitBookingCheckIn", booking).Return()
		f.fanOut.On("EmitBookingCheckOut", booking).Return()

		_, err := f.svc.CheckIn(ctx, "b1")
		require.NoError(t, err)
		assert.Equal(t, domain.BookingCheckedIn, booking.Status)
		assert.NotNil(t, booking.CheckedInAt)

		_, err = f.svc.CheckOut(ctx, "b1")
		require.NoError(t, err)
		assert.Equal(t, domain.BookingCheckedOut, booking.Status)
		assert.NotNil(t, booking.CheckedOutAt)

		f.fanOut.AssertExpectations(t)
	})

	t.Run("check out before check in is rejected", func(t *testing.T) {
		f := newBookingFixture()
		f.bookingRepo.On("GetByID", ctx, "b1").Return(newConfirmed(), nil)

		_, err := f.svc.CheckOut(ctx, "b1")

		assert.ErrorIs(t, err, apperrors.ErrInvalidBookingTransition)
		f.bookingRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		f.fanOut.AssertNotCalled(t, "EmitBookingCheckOut", mock.Anything)
	})

	t.Run("reschedule emits updated", func(t *testing.T) {
		f := newBookingFixture()
		booking := newConfirmed()
		newStart := time.Now().Add(24 * time.Hour)
		f.bookingRepo.On("GetByID", ctx, "b1").Return(booking, nil)
		f.bookingRepo.On("Update", ctx, booking).Return(booking, nil)
		f.fanOut.On("EmitBookingUpdated", booking).Return()

		updated, err := f.svc.RescheduleBooking(ctx, ports.RescheduleBookingParams{
			BookingID: "b1",
			SeatID:    "B-7",
			StartTime: newStart,
			EndTime:   newStart.Add(time.Hour),
		})

		require.NoError(t, err)
		assert.Equal(t, "B-7", updated.SeatID)
		f.fanOut.AssertExpectations(t)
	})

	t.Run("missing booking", func(t *testing.T) {
		f := newBookingFixture()
		f.bookingRepo.On("GetByID", ctx, "nope").Return(nil, apperrors.ErrBookingNotFound)

		_, err := f.svc.CancelBooking(ctx, "nope")

		assert.ErrorIs(t, err, apperrors.ErrBookingNotFound)
	})

	t.Run("empty booking ID", func(t *testing.T) {
		f := newBookingFixture()

		_, err := f.svc.CheckIn(ctx, "")

		assert.ErrorIs(t, err, apperrors.ErrBookingIDRequired)
	})
}

func TestBookingService_ListLibraryBookings(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		params     ports.ListBookingsParams
		wantLimit  int
		wantOffset int
	}{
		{"defaults", ports.ListBookingsParams{LibraryID: "lib-1"}, 50, 0},
		{"caps limit", ports.ListBookingsParams{LibraryID: "lib-1", Limit: 1000, Offset: 10}, 200, 10},
		{"negative offset", ports.ListBookingsParams{LibraryID: "lib-1", Limit: 5, Offset: -3}, 5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newBookingFixture()
			f.bookingRepo.On("ListByLibrary", ctx, "lib-1", tt.wantLimit, tt.wantOffset).
				Return([]*domain.Booking{}, nil)

			_, err := f.svc.ListLibraryBookings(ctx, tt.params)

			require.NoError(t, err)
			f.bookingRepo.AssertExpectations(t)
		})
	}
}

type txKey struct{}

// recordingTx marks the context it hands to fn so repository calls can be
// checked to run inside the unit of work.
type recordingTx struct {
	calls int
}

func (r *recordingTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	r.calls++
	return fn(context.WithValue(ctx, txKey{}, true))
}

func TestBookingService_TransitionRunsInTransaction(t *testing.T) {
	inTx := mock.MatchedBy(func(ctx context.Context) bool {
		v, _ := ctx.Value(txKey{}).(bool)
		return v
	})

	t.Run("commits then emits", func(t *testing.T) {
		tx := &recordingTx{}
		bookingRepo := mocks.NewMockBookingRepository()
		fanOut := mocks.NewMockRealtimeRouter()
		svc := services.NewBookingService(bookingRepo, mocks.NewMockLibraryRepository(), fanOut, services.WithTransactor(tx))

		booking := &domain.Booking{ID: "b1", LibraryID: "lib-1", UserID: "user-1", Status: domain.BookingConfirmed}
		bookingRepo.On("GetByID", inTx, "b1").Return(booking, nil)
		bookingRepo.On("Update", inTx, booking).Return(booking, nil)
		fanOut.On("EmitBookingCheckIn", booking).Return()

		_, err := svc.CheckIn(context.Background(), "b1")

		require.NoError(t, err)
		assert.Equal(t, 1, tx.calls)
		bookingRepo.AssertExpectations(t)
		fanOut.AssertExpectations(t)
	})

	t.Run("failed update emits nothing", func(t *testing.T) {
		tx := &recordingTx{}
		bookingRepo := mocks.NewMockBookingRepository()
		fanOut := mocks.NewMockRealtimeRouter()
		svc := services.NewBookingService(bookingRepo, mocks.NewMockLibraryRepository(), fanOut, services.WithTransactor(tx))

		booking := &domain.Booking{ID: "b1", LibraryID: "lib-1", UserID: "user-1", Status: domain.BookingConfirmed}
		bookingRepo.On("GetByID", inTx, "b1").Return(booking, nil)
		bookingRepo.On("Update", inTx, booking).Return(nil, errors.New("serialization failure"))

		_, err := svc.CancelBooking(context.Background(), "b1")

		require.Error(t, err)
		fanOut.AssertNotCalled(t, "EmitBookingCancelled", mock.Anything, mock.Anything)
	})
}
