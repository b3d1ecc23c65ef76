package repository

import (
	"context"
	"time"

	"github.com/Domenick1991/flightescrow/internal/domain"
	"github.com/google/uuid"
)

type FlightRepository interface {
	List(ctx context.Context) ([]domain.Flight, error)
	GetByNumber(ctx context.Context, number string) (*domain.Flight, error)
	Create(ctx context.Context, flight *domain.Flight) error
	UpdateStatus(ctx context.Context, flight *domain.Flight) error
}

type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) error
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	CurrentForCustomer(ctx context.Context, customer domain.AccountID) (*domain.Booking, error)
	ListByCustomer(ctx context.Context, customer domain.AccountID) ([]domain.Booking, error)
	ListByFlight(ctx context.Context, flightNumber string) ([]domain.Booking, error)
	Update(ctx context.Context, booking *domain.Booking) error
}

type LedgerRepository interface {
	Balance(ctx context.Context, account domain.AccountID) (int64, error)
	// Transfer moves funds atomically; it fails with domain.ErrFunds when the source
	// cannot cover the amount. Deposits use domain.MintAccount as the source.
	Transfer(ctx context.Context, transfer *domain.Transfer) error
	History(ctx context.Context, account domain.AccountID) ([]domain.Transfer, error)
}

type EventRepository interface {
	Append(ctx context.Context, event *domain.Event) error
	ListUnpublished(ctx context.Context, limit int) ([]domain.Event, error)
	MarkPublished(ctx context.Context, ids []uuid.UUID, at time.Time) error
}

// Repositories is the set of repositories bound to one transaction.
type Repositories interface {
	Flights() FlightRepository
	Bookings() BookingRepository
	Ledger() LedgerRepository
	Events() EventRepository
}

// Store runs fn as one serialized, all-or-nothing unit. Any error returned by fn
// discards every write made through repos.
type Store interface {
	Do(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}
