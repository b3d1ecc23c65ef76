package flights

import (
	"context"
	"fmt"
	"time"

	"github.com/Domenick1991/flightescrow/internal/domain"
	"github.com/Domenick1991/flightescrow/internal/repository"
	"go.uber.org/zap"
)

type FlightUseCase interface {
	List(ctx context.Context) ([]domain.Flight, error)
	GetByNumber(ctx context.Context, number string) (*domain.Flight, error)
	CreateFlight(ctx context.Context, input CreateFlightInput) (*domain.Flight, error)
}

type FlightCache interface {
	GetFlights(ctx context.Context) ([]domain.Flight, error)
	SetFlights(ctx context.Context, flights []domain.Flight) error
	InvalidateFlights(ctx context.Context) error
}

type CreateFlightInput struct {
	Caller        domain.AccountID `json:"-"`
	Number        string           `json:"number"`
	DepartureTime time.Time        `json:"departure_time"`
	FareCents     int64            `json:"fare_cents"`
}

type FlightService struct {
	log     *zap.Logger
	store   repository.Store
	cache   FlightCache
	airline domain.AccountID
}

func NewFlightService(log *zap.Logger, store repository.Store, cache FlightCache, airline domain.AccountID) *FlightService {
	if log == nil {
		log = zap.NewNop()
	}
	return &FlightService{log: log, store: store, cache: cache, airline: airline}
}

func (s *FlightService) List(ctx context.Context) ([]domain.Flight, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetFlights(ctx); err == nil && cached != nil {
			return cached, nil
		} else if err != nil {
			s.log.Warn("flights cache read failed", zap.Error(err))
		}
	}

	var flights []domain.Flight
	err := s.store.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		var err error
		flights, err = repos.Flights().List(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetFlights(ctx, flights); err != nil {
			s.log.Warn("flights cache write failed", zap.Error(err))
		}
	}
	return flights, nil
}

func (s *FlightService) GetByNumber(ctx context.Context, number string) (*domain.Flight, error) {
	var flight *domain.Flight
	err := s.store.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		var err error
		flight, err = repos.Flights().GetByNumber(ctx, number)
		return err
	})
	return flight, err
}

// CreateFlight registers a new scheduled flight. Airline only.
func (s *FlightService) CreateFlight(ctx context.Context, input CreateFlightInput) (*domain.Flight, error) {
	if input.Caller == "" || input.Caller != s.airline {
		return nil, fmt.Errorf("%w: only the airline may add flights", domain.ErrAuthorization)
	}
	if input.Number == "" {
		return nil, fmt.Errorf("%w: flight number is required", domain.ErrArgument)
	}
	if input.FareCents <= 0 {
		return nil, fmt.Errorf("%w: fare must be positive", domain.ErrArgument)
	}
	if input.DepartureTime.IsZero() {
		return nil, fmt.Errorf("%w: departure time is required", domain.ErrArgument)
	}

	now := time.Now().UTC()
	flight := &domain.Flight{
		Number:        input.Number,
		DepartureTime: input.DepartureTime.UTC(),
		FareCents:     input.FareCents,
		Status:        domain.FlightStatusOnTime,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	err := s.store.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		return repos.Flights().Create(ctx, flight)
	})
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.InvalidateFlights(ctx); err != nil {
			s.log.Warn("flights cache invalidation failed", zap.Error(err))
		}
	}
	s.log.Info("flight created", zap.String("flight", flight.Number), zap.Time("departure", flight.DepartureTime))
	return flight, nil
}

var _ FlightUseCase = (*FlightService)(nil)
