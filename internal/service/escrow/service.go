// Package escrow implements the booking orchestrator: it holds customer funds in
// custody and settles them between the customer and the airline according to the
// penalty tables and the flight's status.
package escrow

import (
	"context"
	"errors"
	"time"

	"github.com/Domenick1991/flightescrow/internal/domain"
	"github.com/Domenick1991/flightescrow/internal/metrics"
	"github.com/Domenick1991/flightescrow/internal/policy"
	"github.com/Domenick1991/flightescrow/internal/repository"
	"go.opentelemetry.io/otel"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type EscrowUseCase interface {
	InitiateBooking(ctx context.Context, input InitiateBookingInput) (*Confirmation, error)
	CancelBooking(ctx context.Context, caller domain.AccountID, bookingID int64) (*domain.Booking, error)
	ClaimRefund(ctx context.Context, caller domain.AccountID, bookingID int64) (*domain.Booking, error)
	CancelFlight(ctx context.Context, caller domain.AccountID, flightNumber string) (*SweepResult, error)
	UpdateFlightStatus(ctx context.Context, input UpdateFlightStatusInput) (*SweepResult, error)
	GetBookingData(ctx context.Context, caller, customer domain.AccountID) (*domain.Booking, error)
	GetFlightData(ctx context.Context, flightNumber string) (*domain.Flight, error)
	CustomerBookings(ctx context.Context, caller domain.AccountID) ([]domain.Booking, error)
	Balance(ctx context.Context, caller domain.AccountID) (int64, error)
}

// Cache is the subset of the redis cache the orchestrator needs.
type Cache interface {
	AcquireRequestLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	ReleaseRequestLock(ctx context.Context, key string) error
	InvalidateFlights(ctx context.Context) error
}

// Clock is read once per operation.
type Clock interface {
	Now() time.Time
}

type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

type InitiateBookingInput struct {
	Caller         domain.AccountID `json:"-"`
	FlightNumber   string           `json:"flight_number"`
	SeatCategory   string           `json:"seat_category"`
	AmountCents    int64            `json:"amount_cents"`
	IdempotencyKey string           `json:"-"`
}

type UpdateFlightStatusInput struct {
	Caller       domain.AccountID    `json:"-"`
	FlightNumber string              `json:"-"`
	Status       domain.FlightStatus `json:"status"`
	DelayHours   int                 `json:"delay_hours"`
}

type Confirmation struct {
	Booking domain.Booking
	Message string
}

type Payout struct {
	BookingID   int64
	Customer    domain.AccountID
	AmountCents int64
	Reason      string
}

// SweepResult describes the flight after an airline operation and every payout the
// operation made.
type SweepResult struct {
	Flight  domain.Flight
	Payouts []Payout
}

type Service struct {
	log                   *zap.Logger
	store                 repository.Store
	cache                 Cache
	clock                 Clock
	tracer                trace.Tracer
	airline               domain.AccountID
	cancellation          *policy.Table
	delay                 *policy.Table
	forwardFare           bool
	repayCancelledPenalty bool
	idempotencyTTL        time.Duration
}

type ServiceOption func(*Service)

func WithCache(cache Cache) ServiceOption {
	return func(s *Service) {
		s.cache = cache
	}
}

func WithClock(clock Clock) ServiceOption {
	return func(s *Service) {
		s.clock = clock
	}
}

func WithPolicies(cancellation, delay *policy.Table) ServiceOption {
	return func(s *Service) {
		if cancellation != nil {
			s.cancellation = cancellation
		}
		if delay != nil {
			s.delay = delay
		}
	}
}

// WithForwardFare controls whether the fare is paid to the airline at booking time
// (true) or held in the booking's custody account until settlement (false).
func WithForwardFare(forward bool) ServiceOption {
	return func(s *Service) {
		s.forwardFare = forward
	}
}

// WithRepayCancelledPenalty controls whether an airline cancellation pays back the
// penalty of bookings the customer had already cancelled.
func WithRepayCancelledPenalty(repay bool) ServiceOption {
	return func(s *Service) {
		s.repayCancelledPenalty = repay
	}
}

func WithIdempotencyTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) {
		s.idempotencyTTL = ttl
	}
}

func NewService(log *zap.Logger, store repository.Store, airline domain.AccountID, opts ...ServiceOption) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Service{
		log:                   log,
		store:                 store,
		clock:                 ClockFunc(time.Now),
		tracer:                otel.Tracer("flightescrow/escrow"),
		airline:               airline,
		cancellation:          policy.DefaultCancellation(),
		delay:                 policy.DefaultDelay(),
		forwardFare:           true,
		repayCancelledPenalty: true,
		idempotencyTTL:        10 * time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Airline() domain.AccountID {
	return s.airline
}

func (s *Service) start(ctx context.Context, op string, fields ...zap.Field) (context.Context, trace.Span, *zap.Logger) {
	ctx, span := s.tracer.Start(ctx, op)
	return ctx, span, s.log.With(append([]zap.Field{zap.String("op", op)}, fields...)...)
}

// fail records a rejected or failed operation. Guard rejections are expected traffic
// and log at warn; anything else is an infrastructure failure.
func (s *Service) fail(span trace.Span, logger *zap.Logger, op string, err error) error {
	metrics.OperationErrorsTotal.WithLabelValues(op).Inc()
	span.RecordError(err)
	span.SetStatus(otelcodes.Error, err.Error())
	if IsRejection(err) {
		logger.Warn("operation rejected", zap.Error(err))
	} else {
		logger.Error("operation failed", zap.Error(err))
	}
	return err
}

// IsRejection reports whether err is one of the typed domain failures.
func IsRejection(err error) bool {
	for _, kind := range []error{
		domain.ErrAuthorization,
		domain.ErrNotFound,
		domain.ErrInvalidState,
		domain.ErrTiming,
		domain.ErrFunds,
		domain.ErrArgument,
		domain.ErrConflict,
	} {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}

func (s *Service) invalidateFlights(ctx context.Context, logger *zap.Logger) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateFlights(ctx); err != nil {
		logger.Warn("failed to invalidate flights cache", zap.Error(err))
	}
}

var _ EscrowUseCase = (*Service)(nil)
