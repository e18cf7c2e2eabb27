package services

import (
	"context"

	"github.com/lorrc/studyspace-backend/internal/core/domain"
	apperrors "github.com/lorrc/studyspace-backend/internal/core/errors"
	"github.com/lorrc/studyspace-backend/internal/core/ports"
)

// LibraryService implements business logic for libraries and their pricing.
type LibraryService struct {
	libraryRepo ports.LibraryRepository
	fanOut      ports.FanOut
	tx          ports.Transactor
}

// LibraryOption configures optional LibraryService collaborators.
type LibraryOption func(*LibraryService)

// WithLibraryTransactor makes detail and pricing updates lock the library
// row between load and save.
func WithLibraryTransactor(tx ports.Transactor) LibraryOption {
	return func(s *LibraryService) {
		s.tx = tx
	}
}

var _ ports.LibraryService = (*LibraryService)(nil)

// NewLibraryService creates a new library service
func NewLibraryService(libraryRepo ports.LibraryRepository, fanOut ports.FanOut, opts ...LibraryOption) ports.LibraryService {
	s := &LibraryService{
		libraryRepo: libraryRepo,
		fanOut:      fanOut,
		tx:          directTx{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateLibrary registers a new library and announces it to students.
func (s *LibraryService) CreateLibrary(ctx context.Context, params ports.CreateLibraryParams) (*domain.Library, error) {
	library, err := domain.NewLibrary(domain.LibraryParams{
		Name:       params.Name,
		Address:    params.Address,
		OwnerID:    params.OwnerID,
		TotalSeats: params.TotalSeats,
		Pricing:    params.Pricing,
	})
	if err != nil {
		return nil, err
	}

	created, err := s.libraryRepo.Create(ctx, library)
	if err != nil {
		return nil, err
	}

	s.fanOut.EmitLibraryCreated(created)
	return created, nil
}

// GetLibrary retrieves a library by ID.
func (s *LibraryService) GetLibrary(ctx context.Context, libraryID string) (*domain.Library, error) {
	if libraryID == "" {
		return nil, apperrors.ErrLibraryIDRequired
	}
	return s.libraryRepo.GetByID(ctx, libraryID)
}

// UpdateLibrary applies partial changes to a library.
func (s *LibraryService) UpdateLibrary(ctx context.Context, params ports.UpdateLibraryParams) (*domain.Library, error) {
	updated, err := s.modify(ctx, params.LibraryID, func(l *domain.Library) error {
		return l.Apply(domain.LibraryChanges{
			Name:       params.Name,
			Address:    params.Address,
			TotalSeats: params.TotalSeats,
		})
	})
	if err != nil {
		return nil, err
	}

	s.fanOut.EmitLibraryUpdated(updated)
	return updated, nil
}

// DeleteLibrary removes a library and tells students it is gone.
func (s *LibraryService) DeleteLibrary(ctx context.Context, libraryID string) error {
	if libraryID == "" {
		return apperrors.ErrLibraryIDRequired
	}

	if err := s.libraryRepo.Delete(ctx, libraryID); err != nil {
		return err
	}

	s.fanOut.EmitLibraryDeleted(libraryID)
	return nil
}

// UpdatePricing replaces the rates of a library.
func (s *LibraryService) UpdatePricing(ctx context.Context, params ports.UpdatePricingParams) (*domain.Library, error) {
	updated, err := s.modify(ctx, params.LibraryID, func(l *domain.Library) error {
		return l.SetPricing(params.Pricing)
	})
	if err != nil {
		return nil, err
	}

	s.fanOut.EmitPricingUpdated(domain.PricingUpdate{
		LibraryID: updated.ID,
		Pricing:   updated.Pricing,
	})
	return updated, nil
}

// modify loads, changes and saves a library in one unit of work so that
// concurrent partial updates cannot revert each other. Events are emitted
// by the caller once it returns.
func (s *LibraryService) modify(ctx context.Context, libraryID string, apply func(*domain.Library) error) (*domain.Library, error) {
	var updated *domain.Library
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		library, err := s.GetLibrary(ctx, libraryID)
		if err != nil {
			return err
		}
		if err := apply(library); err != nil {
			return err
		}
		updated, err = s.libraryRepo.Update(ctx, library)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
