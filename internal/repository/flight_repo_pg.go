package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/flightescrow/internal/domain"
	"github.com/jackc/pgx/v5"
)

const flightColumns = `number, departure_time, fare_cents, status, delay_seconds, reported_status, reported_at, created_at, updated_at`

type PGFlightRepository struct {
	db Querier
}

func NewFlightRepository(db Querier) FlightRepository {
	return &PGFlightRepository{db: db}
}

func (r *PGFlightRepository) List(ctx context.Context) ([]domain.Flight, error) {
	rows, err := r.db.Query(ctx, `SELECT `+flightColumns+` FROM flights ORDER BY departure_time, number`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	flights := make([]domain.Flight, 0)
	for rows.Next() {
		f, err := scanFlight(rows)
		if err != nil {
			return nil, err
		}
		flights = append(flights, *f)
	}
	return flights, rows.Err()
}

func (r *PGFlightRepository) GetByNumber(ctx context.Context, number string) (*domain.Flight, error) {
	row := r.db.QueryRow(ctx, `SELECT `+flightColumns+` FROM flights WHERE number=$1`, number)
	f, err := scanFlight(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: flight %q", domain.ErrNotFound, number)
	}
	return f, err
}

func (r *PGFlightRepository) Create(ctx context.Context, f *domain.Flight) error {
	err := r.db.QueryRow(ctx, `INSERT INTO flights (number, departure_time, fare_cents, status, delay_seconds)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (number) DO NOTHING
		RETURNING created_at, updated_at`,
		f.Number, f.DepartureTime, f.FareCents, string(f.Status), int64(f.Delay/time.Second)).
		Scan(&f.CreatedAt, &f.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: flight %q already exists", domain.ErrConflict, f.Number)
	}
	return err
}

func (r *PGFlightRepository) UpdateStatus(ctx context.Context, f *domain.Flight) error {
	var reported *string
	if f.ReportedStatus != nil {
		s := string(*f.ReportedStatus)
		reported = &s
	}
	res, err := r.db.Exec(ctx, `UPDATE flights SET status=$2, delay_seconds=$3, reported_status=$4, reported_at=$5, updated_at=now() WHERE number=$1`,
		f.Number, string(f.Status), int64(f.Delay/time.Second), reported, f.ReportedAt)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return fmt.Errorf("%w: flight %q", domain.ErrNotFound, f.Number)
	}
	return nil
}

func scanFlight(row pgx.Row) (*domain.Flight, error) {
	var (
		f        domain.Flight
		status   string
		delay    int64
		reported *string
	)
	if err := row.Scan(&f.Number, &f.DepartureTime, &f.FareCents, &status, &delay, &reported, &f.ReportedAt, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return nil, err
	}
	f.Status = domain.FlightStatus(status)
	f.Delay = time.Duration(delay) * time.Second
	if reported != nil {
		rs := domain.FlightStatus(*reported)
		f.ReportedStatus = &rs
	}
	return &f, nil
}

var _ FlightRepository = (*PGFlightRepository)(nil)
