package services

import (
	"context"
	"time"

	"github.com/lorrc/studyspace-backend/internal/core/domain"
	apperrors "github.com/lorrc/studyspace-backend/internal/core/errors"
	"github.com/lorrc/studyspace-backend/internal/core/ports"
)

// SeatService tracks which seats of a library are free.
type SeatService struct {
	seatRepo ports.SeatRepository
	fanOut   ports.FanOut
}

var _ ports.SeatService = (*SeatService)(nil)

// NewSeatService creates a new seat service.
func NewSeatService(seatRepo ports.SeatRepository, fanOut ports.FanOut) ports.SeatService {
	return &SeatService{
		seatRepo: seatRepo,
		fanOut:   fanOut,
	}
}

// SetAvailability stores the seat state and publishes it to the library room.
func (s *SeatService) SetAvailability(ctx context.Context, params ports.SetSeatAvailabilityParams) (*domain.SeatAvailability, error) {
	if params.LibraryID == "" {
		return nil, apperrors.ErrLibraryIDRequired
	}
	if params.SeatID == "" {
		return nil, apperrors.ErrSeatIDRequired
	}

	seat, err := s.seatRepo.Upsert(ctx, domain.SeatAvailability{
		LibraryID: params.LibraryID,
		SeatID:    params.SeatID,
		Available: params.Available,
		UpdatedAt: time.Now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	s.fanOut.EmitSeatAvailability(*seat)
	return seat, nil
}

// ListSeats returns the known seat states of a library.
func (s *SeatService) ListSeats(ctx context.Context, libraryID string) ([]*domain.SeatAvailability, error) {
	if libraryID == "" {
		return nil, apperrors.ErrLibraryIDRequired
	}
	return s.seatRepo.ListByLibrary(ctx, libraryID)
}
