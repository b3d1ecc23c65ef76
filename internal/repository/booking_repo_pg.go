package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/Domenick1991/flightescrow/internal/domain"
	"github.com/jackc/pgx/v5"
)

const bookingColumns = `id, token, customer, flight_number, seat_category, amount_cents, state, penalty_cents, refund_cents, created_at, updated_at`

type PGBookingRepository struct {
	db Querier
}

func NewBookingRepository(db Querier) BookingRepository {
	return &PGBookingRepository{db: db}
}

func (r *PGBookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	return r.db.QueryRow(ctx, `INSERT INTO bookings (token, customer, flight_number, seat_category, amount_cents, state, penalty_cents, refund_cents, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)
		RETURNING id`,
		b.Token, string(b.Customer), b.FlightNumber, b.SeatCategory, b.AmountCents, string(b.State), b.PenaltyCents, b.RefundCents, b.CreatedAt).
		Scan(&b.ID)
}

func (r *PGBookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id=$1`, id)
	b, err := scanBooking(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: booking %d", domain.ErrNotFound, id)
	}
	return b, err
}

func (r *PGBookingRepository) CurrentForCustomer(ctx context.Context, customer domain.AccountID) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE customer=$1 ORDER BY id DESC LIMIT 1`, string(customer))
	b, err := scanBooking(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: no booking for %s", domain.ErrNotFound, customer)
	}
	return b, err
}

func (r *PGBookingRepository) ListByCustomer(ctx context.Context, customer domain.AccountID) ([]domain.Booking, error) {
	return r.list(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE customer=$1 ORDER BY id`, string(customer))
}

// ListByFlight locks the rows so a sweep sees a stable set.
func (r *PGBookingRepository) ListByFlight(ctx context.Context, flightNumber string) ([]domain.Booking, error) {
	return r.list(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE flight_number=$1 ORDER BY id FOR UPDATE`, flightNumber)
}

func (r *PGBookingRepository) list(ctx context.Context, query string, args ...any) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := make([]domain.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

func (r *PGBookingRepository) Update(ctx context.Context, b *domain.Booking) error {
	res, err := r.db.Exec(ctx, `UPDATE bookings SET state=$2, penalty_cents=$3, refund_cents=$4, updated_at=$5 WHERE id=$1`,
		b.ID, string(b.State), b.PenaltyCents, b.RefundCents, b.UpdatedAt)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return fmt.Errorf("%w: booking %d", domain.ErrNotFound, b.ID)
	}
	return nil
}

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var (
		b        domain.Booking
		customer string
		state    string
	)
	if err := row.Scan(&b.ID, &b.Token, &customer, &b.FlightNumber, &b.SeatCategory, &b.AmountCents, &state, &b.PenaltyCents, &b.RefundCents, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	b.Customer = domain.AccountID(customer)
	b.State = domain.BookingState(state)
	return &b, nil
}

var _ BookingRepository = (*PGBookingRepository)(nil)
