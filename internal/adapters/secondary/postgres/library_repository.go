package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lorrc/studyspace-backend/internal/core/domain"
	apperrors "github.com/lorrc/studyspace-backend/internal/core/errors"
	"github.com/lorrc/studyspace-backend/internal/core/ports"
)

const libraryColumns = `id, name, address, owner_id, total_seats, pricing, created_at, updated_at`

// LibraryRepository is the secondary adapter for library persistence.
type LibraryRepository struct {
	pool *pgxpool.Pool
}

var _ ports.LibraryRepository = (*LibraryRepository)(nil)

// NewLibraryRepository creates a new library repository.
func NewLibraryRepository(pool *pgxpool.Pool) ports.LibraryRepository {
	return &LibraryRepository{pool: pool}
}

func scanLibrary(row pgx.Row) (*domain.Library, error) {
	var (
		library   domain.Library
		address   pgtype.Text
		pricing   []byte
		updatedAt pgtype.Timestamptz
	)

	if err := row.Scan(
		&library.ID,
		&library.Name,
		&address,
		&library.OwnerID,
		&library.TotalSeats,
		&pricing,
		&library.CreatedAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(pricing, &library.Pricing); err != nil {
		return nil, fmt.Errorf("decode pricing of library %s: %w", library.ID, err)
	}

	library.Address = fromText(address)
	library.CreatedAt = library.CreatedAt.UTC()
	library.UpdatedAt = fromTimestamptz(updatedAt)
	return &library, nil
}

// Create persists a new library.
func (r *LibraryRepository) Create(ctx context.Context, library *domain.Library) (*domain.Library, error) {
	const query = `
INSERT INTO libraries (id, name, address, owner_id, total_seats, pricing, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + libraryColumns

	pricing, err := json.Marshal(library.Pricing)
	if err != nil {
		return nil, fmt.Errorf("encode pricing: %w", err)
	}

	created, err := scanLibrary(GetDBTX(ctx, r.pool).QueryRow(ctx, query,
		library.ID,
		library.Name,
		toText(library.Address),
		library.OwnerID,
		library.TotalSeats,
		pricing,
		library.CreatedAt,
	))
	if err != nil {
		return nil, err
	}
	return created, nil
}

// GetByID retrieves a single library by its ID. Inside a transaction the
// row stays locked until the transaction ends.
func (r *LibraryRepository) GetByID(ctx context.Context, id string) (*domain.Library, error) {
	query := `SELECT ` + libraryColumns + ` FROM libraries WHERE id = $1`
	if _, ok := TxFromContext(ctx); ok {
		query += ` FOR UPDATE`
	}

	library, err := scanLibrary(GetDBTX(ctx, r.pool).QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrLibraryNotFound
		}
		return nil, err
	}
	return library, nil
}

// Update persists changes to an existing library.
func (r *LibraryRepository) Update(ctx context.Context, library *domain.Library) (*domain.Library, error) {
	const query = `
UPDATE libraries
SET name = $2, address = $3, total_seats = $4, pricing = $5, updated_at = $6
WHERE id = $1
RETURNING ` + libraryColumns

	pricing, err := json.Marshal(library.Pricing)
	if err != nil {
		return nil, fmt.Errorf("encode pricing: %w", err)
	}

	updated, err := scanLibrary(GetDBTX(ctx, r.pool).QueryRow(ctx, query,
		library.ID,
		library.Name,
		toText(library.Address),
		library.TotalSeats,
		pricing,
		toTimestamptz(library.UpdatedAt),
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrLibraryNotFound
		}
		return nil, err
	}
	return updated, nil
}

// Delete removes a library together with its seats and bookings.
func (r *LibraryRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM libraries WHERE id = $1`

	tag, err := GetDBTX(ctx, r.pool).Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrLibraryNotFound
	}
	return nil
}
