package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/lorrc/studyspace-backend/internal/core/errors"
)

const maxLibraryNameLength = 200

// Pricing holds the rates of a library in minor currency units.
type Pricing struct {
	HourlyRate  int64  `json:"hourlyRate"`
	DailyRate   int64  `json:"dailyRate"`
	MonthlyRate int64  `json:"monthlyRate"`
	Currency    string `json:"currency"`
}

// Validate checks the rates are non-negative and the currency is an ISO code.
func (p Pricing) Validate() error {
	if p.HourlyRate < 0 || p.DailyRate < 0 || p.MonthlyRate < 0 {
		return apperrors.ErrInvalidPricing
	}
	if len(p.Currency) != 3 || strings.ToUpper(p.Currency) != p.Currency {
		return apperrors.ErrInvalidCurrency
	}
	return nil
}

// Library is a study space: the tenant that scopes bookings, pricing and seats.
type Library struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Address    string     `json:"address"`
	OwnerID    string     `json:"ownerId"`
	TotalSeats int        `json:"totalSeats"`
	Pricing    Pricing    `json:"pricing"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  *time.Time `json:"updatedAt,omitempty"`
}

// LibraryParams holds the parameters for creating a new library.
type LibraryParams struct {
	Name       string
	Address    string
	OwnerID    string
	TotalSeats int
	Pricing    Pricing
}

// NewLibrary is a factory function to create a valid library.
func NewLibrary(params LibraryParams) (*Library, error) {
	name := strings.TrimSpace(params.Name)
	if err := validateLibraryName(name); err != nil {
		return nil, err
	}
	if params.OwnerID == "" {
		return nil, apperrors.ErrOwnerIDRequired
	}
	if params.TotalSeats < 0 {
		return nil, apperrors.ErrInvalidSeatCount
	}
	if err := params.Pricing.Validate(); err != nil {
		return nil, err
	}

	return &Library{
		ID:         uuid.NewString(),
		Name:       name,
		Address:    strings.TrimSpace(params.Address),
		OwnerID:    params.OwnerID,
		TotalSeats: params.TotalSeats,
		Pricing:    params.Pricing,
		CreatedAt:  time.Now().UTC(),
	}, nil
}

// LibraryChanges holds optional field updates. Nil fields are left untouched.
type LibraryChanges struct {
	Name       *string
	Address    *string
	TotalSeats *int
}

// Apply updates the library with the non-nil changes.
func (l *Library) Apply(changes LibraryChanges) error {
	if changes.Name != nil {
		name := strings.TrimSpace(*changes.Name)
		if err := validateLibraryName(name); err != nil {
			return err
		}
		l.Name = name
	}
	if changes.Address != nil {
		l.Address = strings.TrimSpace(*changes.Address)
	}
	if changes.TotalSeats != nil {
		if *changes.TotalSeats < 0 {
			return apperrors.ErrInvalidSeatCount
		}
		l.TotalSeats = *changes.TotalSeats
	}
	l.touch()
	return nil
}

// SetPricing replaces the library's rates.
func (l *Library) SetPricing(p Pricing) error {
	if err := p.Validate(); err != nil {
		return err
	}
	l.Pricing = p
	l.touch()
	return nil
}

func (l *Library) touch() {
	now := time.Now().UTC()
	l.UpdatedAt = &now
}

func validateLibraryName(name string) error {
	if name == "" {
		return apperrors.ErrLibraryNameRequired
	}
	if len(name) > maxLibraryNameLength {
		return apperrors.ErrLibraryNameTooLong
	}
	return nil
}
