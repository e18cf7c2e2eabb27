package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lorrc/studyspace-backend/internal/core/domain"
	apperrors "github.com/lorrc/studyspace-backend/internal/core/errors"
	"github.com/lorrc/studyspace-backend/internal/core/ports"
)

// SeatRepository is the secondary adapter for seat availability.
type SeatRepository struct {
	pool *pgxpool.Pool
}

var _ ports.SeatRepository = (*SeatRepository)(nil)

// NewSeatRepository creates a new seat repository.
func NewSeatRepository(pool *pgxpool.Pool) ports.SeatRepository {
	return &SeatRepository{pool: pool}
}

func scanSeat(row pgx.Row) (*domain.SeatAvailability, error) {
	var seat domain.SeatAvailability
	if err := row.Scan(&seat.LibraryID, &seat.SeatID, &seat.Available, &seat.UpdatedAt); err != nil {
		return nil, err
	}
	seat.UpdatedAt = seat.UpdatedAt.UTC()
	return &seat, nil
}

// Upsert stores the state of a seat, creating the row on first use.
func (r *SeatRepository) Upsert(ctx context.Context, seat domain.SeatAvailability) (*domain.SeatAvailability, error) {
	const query = `
INSERT INTO seats (library_id, seat_id, available, updated_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (library_id, seat_id)
DO UPDATE SET available = EXCLUDED.available, updated_at = EXCLUDED.updated_at
RETURNING library_id, seat_id, available, updated_at`

	stored, err := scanSeat(GetDBTX(ctx, r.pool).QueryRow(ctx, query,
		seat.LibraryID,
		seat.SeatID,
		seat.Available,
		seat.UpdatedAt,
	))
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, apperrors.ErrLibraryNotFound
		}
		return nil, err
	}
	return stored, nil
}

// ListByLibrary returns every known seat of a library ordered by seat ID.
func (r *SeatRepository) ListByLibrary(ctx context.Context, libraryID string) ([]*domain.SeatAvailability, error) {
	const query = `
SELECT library_id, seat_id, available, updated_at
FROM seats
WHERE library_id = $1
ORDER BY seat_id`

	rows, err := GetDBTX(ctx, r.pool).Query(ctx, query, libraryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seats := []*domain.SeatAvailability{}
	for rows.Next() {
		seat, err := scanSeat(rows)
		if err != nil {
			return nil, err
		}
		seats = append(seats, seat)
	}
	return seats, rows.Err()
}
