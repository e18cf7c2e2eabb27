package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lorrc/studyspace-backend/internal/core/domain"
	apperrors "github.com/lorrc/studyspace-backend/internal/core/errors"
	"github.com/lorrc/studyspace-backend/internal/core/ports"
)

const bookingColumns = `id, library_id, seat_id, user_id, status, start_time, end_time,
	checked_in_at, checked_out_at, created_at, updated_at`

// BookingRepository is the secondary adapter for booking persistence.
type BookingRepository struct {
	pool *pgxpool.Pool
}

var _ ports.BookingRepository = (*BookingRepository)(nil)

// NewBookingRepository creates a new booking repository.
func NewBookingRepository(pool *pgxpool.Pool) ports.BookingRepository {
	return &BookingRepository{pool: pool}
}

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var (
		b                                domain.Booking
		checkedIn, checkedOut, updatedAt pgtype.Timestamptz
	)

	if err := row.Scan(
		&b.ID,
		&b.LibraryID,
		&b.SeatID,
		&b.UserID,
		&b.Status,
		&b.StartTime,
		&b.EndTime,
		&checkedIn,
		&checkedOut,
		&b.CreatedAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}

	b.StartTime = b.StartTime.UTC()
	b.EndTime = b.EndTime.UTC()
	b.CreatedAt = b.CreatedAt.UTC()
	b.CheckedInAt = fromTimestamptz(checkedIn)
	b.CheckedOutAt = fromTimestamptz(checkedOut)
	b.UpdatedAt = fromTimestamptz(updatedAt)
	return &b, nil
}

// Create persists a new booking. A missing library yields ErrLibraryNotFound.
func (r *BookingRepository) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	const query = `
INSERT INTO bookings (id, library_id, seat_id, user_id, status, start_time, end_time, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING ` + bookingColumns

	created, err := scanBooking(GetDBTX(ctx, r.pool).QueryRow(ctx, query,
		booking.ID,
		booking.LibraryID,
		booking.SeatID,
		booking.UserID,
		booking.Status,
		booking.StartTime,
		booking.EndTime,
		booking.CreatedAt,
	))
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, apperrors.ErrLibraryNotFound
		}
		return nil, err
	}
	return created, nil
}

// GetByID retrieves a booking. Inside a transaction the row is locked
// until the transaction ends.
func (r *BookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	if _, ok := TxFromContext(ctx); ok {
		query += ` FOR UPDATE`
	}

	booking, err := scanBooking(GetDBTX(ctx, r.pool).QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrBookingNotFound
		}
		return nil, err
	}
	return booking, nil
}

// Update persists the mutable fields of a booking.
func (r *BookingRepository) Update(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	const query = `
UPDATE bookings
SET seat_id = $2, status = $3, start_time = $4, end_time = $5,
	checked_in_at = $6, checked_out_at = $7, updated_at = $8
WHERE id = $1
RETURNING ` + bookingColumns

	updated, err := scanBooking(GetDBTX(ctx, r.pool).QueryRow(ctx, query,
		booking.ID,
		booking.SeatID,
		booking.Status,
		booking.StartTime,
		booking.EndTime,
		toTimestamptz(booking.CheckedInAt),
		toTimestamptz(booking.CheckedOutAt),
		toTimestamptz(booking.UpdatedAt),
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrBookingNotFound
		}
		return nil, err
	}
	return updated, nil
}

// ListByLibrary returns a page of a library's bookings, newest first.
func (r *BookingRepository) ListByLibrary(ctx context.Context, libraryID string, limit, offset int) ([]*domain.Booking, error) {
	const query = `
SELECT ` + bookingColumns + `
FROM bookings
WHERE library_id = $1
ORDER BY created_at DESC, id
LIMIT $2 OFFSET $3`

	rows, err := GetDBTX(ctx, r.pool).Query(ctx, query, libraryID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := make([]*domain.Booking, 0, limit)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}
