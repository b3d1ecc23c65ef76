package escrow

import (
	"context"
	"fmt"

	"github.com/Domenick1991/flightescrow/internal/domain"
	"github.com/Domenick1991/flightescrow/internal/metrics"
	"github.com/Domenick1991/flightescrow/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func (s *Service) InitiateBooking(ctx context.Context, input InitiateBookingInput) (*Confirmation, error) {
	const op = "escrow.InitiateBooking"
	ctx, span, logger := s.start(ctx, op,
		zap.String("caller", string(input.Caller)),
		zap.String("flight", input.FlightNumber),
	)
	defer span.End()

	lockKey, err := s.acquireRequest(ctx, input.Caller, input.IdempotencyKey)
	if err != nil {
		return nil, s.fail(span, logger, op, err)
	}

	now := s.clock.Now()
	var confirmation *Confirmation
	var disbursed map[string]int64
	err = s.store.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if err := runChecks(
			s.callerIsCustomer(input.Caller),
			seatCategoryGiven(input.SeatCategory),
			balanceExceeds(ctx, repos.Ledger(), input.Caller, input.AmountCents),
		); err != nil {
			return err
		}

		flight, err := repos.Flights().GetByNumber(ctx, input.FlightNumber)
		if err != nil {
			return err
		}
		if err := runChecks(flightOpen(flight), amountMatchesFare(input.AmountCents, flight.FareCents)); err != nil {
			return err
		}

		booking := &domain.Booking{
			Token:        uuid.NewString(),
			Customer:     input.Caller,
			FlightNumber: flight.Number,
			SeatCategory: input.SeatCategory,
			AmountCents:  input.AmountCents,
			State:        domain.BookingStateConfirmed,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := repos.Bookings().Create(ctx, booking); err != nil {
			return err
		}

		f := newFunds(repos, now)
		if _, err := f.transferEvent(ctx, domain.EventAmountTransferred, booking,
			booking.Customer, booking.CustodyAccount(), booking.AmountCents, "booking payment", ""); err != nil {
			return err
		}
		if s.forwardFare {
			if _, err := f.move(ctx, booking.CustodyAccount(), s.airline, flight.FareCents, "fare forwarded to airline", "fare"); err != nil {
				return err
			}
		}
		if err := f.emit(ctx, &domain.Event{
			Type:         domain.EventBookingComplete,
			BookingID:    booking.ID,
			Customer:     booking.Customer,
			FlightNumber: booking.FlightNumber,
			AmountCents:  booking.AmountCents,
			Reason:       booking.SeatCategory,
		}); err != nil {
			return err
		}

		confirmation = &Confirmation{
			Booking: *booking,
			Message: confirmationMessage(booking),
		}
		disbursed = f.disbursed
		return nil
	})
	if err != nil {
		s.releaseRequest(ctx, logger, lockKey)
		return nil, s.fail(span, logger, op, err)
	}

	metrics.BookingsCreatedTotal.Inc()
	recordDisbursed(disbursed)
	logger.Info("booking confirmed",
		zap.Int64("booking_id", confirmation.Booking.ID),
		zap.String("token", confirmation.Booking.Token),
		zap.Int64("amount_cents", confirmation.Booking.AmountCents),
	)
	return confirmation, nil
}

func confirmationMessage(b *domain.Booking) string {
	return fmt.Sprintf("booking %s confirmed: flight %s, seat %s", b.Token, b.FlightNumber, b.SeatCategory)
}

// CancelBooking cancels the caller's booking. A zero bookingID selects the caller's
// most recent booking.
func (s *Service) CancelBooking(ctx context.Context, caller domain.AccountID, bookingID int64) (*domain.Booking, error) {
	const op = "escrow.CancelBooking"
	ctx, span, logger := s.start(ctx, op, zap.String("caller", string(caller)), zap.Int64("booking_id", bookingID))
	defer span.End()

	now := s.clock.Now()
	var result *domain.Booking
	var disbursed map[string]int64
	err := s.store.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if err := runChecks(s.callerIsCustomer(caller)); err != nil {
			return err
		}
		booking, err := loadOwnBooking(ctx, repos, caller, bookingID)
		if err != nil {
			return err
		}
		flight, err := repos.Flights().GetByNumber(ctx, booking.FlightNumber)
		if err != nil {
			return err
		}
		if err := runChecks(
			bookingIn(booking, domain.BookingStateConfirmed),
			flightAcceptsCancellation(flight),
			strictlyBefore(now, flight.DepartureTime.Add(-s.cancellation.Floor()), "cancellation"),
		); err != nil {
			return err
		}

		penalty, refund := split(s.cancellation.Lookup(flight.DepartureTime.Sub(now)), booking.AmountCents)
		f := newFunds(repos, now)
		if err := s.settleSplit(ctx, f, domain.EventCancelTransferred, booking, penalty, refund, "cancellation"); err != nil {
			return err
		}
		if err := booking.Cancel(penalty, refund, now); err != nil {
			return err
		}
		if err := repos.Bookings().Update(ctx, booking); err != nil {
			return err
		}
		result = booking
		disbursed = f.disbursed
		return nil
	})
	if err != nil {
		return nil, s.fail(span, logger, op, err)
	}

	metrics.BookingsCancelledTotal.Inc()
	recordDisbursed(disbursed)
	logger.Info("booking cancelled",
		zap.Int64("booking_id", result.ID),
		zap.Int64("penalty_cents", result.PenaltyCents),
		zap.Int64("refund_cents", result.RefundCents),
	)
	return result, nil
}

// ClaimRefund settles the caller's booking against the flight's reported status.
// A zero bookingID selects the caller's most recent booking.
func (s *Service) ClaimRefund(ctx context.Context, caller domain.AccountID, bookingID int64) (*domain.Booking, error) {
	const op = "escrow.ClaimRefund"
	ctx, span, logger := s.start(ctx, op, zap.String("caller", string(caller)), zap.Int64("booking_id", bookingID))
	defer span.End()

	now := s.clock.Now()
	var result *domain.Booking
	var disbursed map[string]int64
	err := s.store.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if err := runChecks(s.callerIsCustomer(caller)); err != nil {
			return err
		}
		booking, err := loadOwnBooking(ctx, repos, caller, bookingID)
		if err != nil {
			return err
		}
		flight, err := repos.Flights().GetByNumber(ctx, booking.FlightNumber)
		if err != nil {
			return err
		}
		if err := runChecks(bookingIn(booking, domain.BookingStateConfirmed)); err != nil {
			return err
		}

		penalty, refund := s.claimSplit(flight, booking.AmountCents)
		if err := booking.ClaimRefund(penalty, refund, now); err != nil {
			return err
		}
		if err := repos.Bookings().Update(ctx, booking); err != nil {
			return err
		}

		f := newFunds(repos, now)
		src := s.source(booking)
		if _, err := f.move(ctx, src, s.airline, penalty, "delay penalty", "penalty"); err != nil {
			return err
		}
		if _, err := f.move(ctx, src, booking.Customer, refund, "refund claim", "refund"); err != nil {
			return err
		}
		if err := f.emit(ctx, &domain.Event{
			Type:         domain.EventAmountTransferred,
			BookingID:    booking.ID,
			Customer:     booking.Customer,
			FlightNumber: booking.FlightNumber,
			From:         src,
			To:           booking.Customer,
			AmountCents:  refund,
			Reason:       "refund claim",
			Status:       flight.Status,
		}); err != nil {
			return err
		}
		if err := s.releaseCustody(ctx, f, booking); err != nil {
			return err
		}
		result = booking
		disbursed = f.disbursed
		return nil
	})
	if err != nil {
		return nil, s.fail(span, logger, op, err)
	}

	metrics.RefundClaimsTotal.Inc()
	recordDisbursed(disbursed)
	logger.Info("refund claimed",
		zap.Int64("booking_id", result.ID),
		zap.Int64("penalty_cents", result.PenaltyCents),
		zap.Int64("refund_cents", result.RefundCents),
	)
	return result, nil
}

// claimSplit decides the split for a refund claim. A cancelled flight, or one the
// airline never reported on, refunds in full. A delayed flight uses the delay table;
// a delay below its first bucket, or any other status, moves nothing.
func (s *Service) claimSplit(flight *domain.Flight, amount int64) (penalty, refund int64) {
	switch {
	case flight.Status == domain.FlightStatusCancelled || !flight.StatusReported():
		return 0, amount
	case flight.Status == domain.FlightStatusDelayed:
		return split(s.delay.Lookup(flight.ActualDeparture().Sub(flight.DepartureTime)), amount)
	default:
		return 0, 0
	}
}

func loadOwnBooking(ctx context.Context, repos repository.Repositories, caller domain.AccountID, bookingID int64) (*domain.Booking, error) {
	if bookingID == 0 {
		return repos.Bookings().CurrentForCustomer(ctx, caller)
	}
	booking, err := repos.Bookings().GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	// someone else's booking is reported as missing
	if booking.Customer != caller {
		return nil, fmt.Errorf("%w: booking %d", domain.ErrNotFound, bookingID)
	}
	return booking, nil
}

// GetBookingData returns the customer's most recent booking. Airline only.
func (s *Service) GetBookingData(ctx context.Context, caller, customer domain.AccountID) (*domain.Booking, error) {
	const op = "escrow.GetBookingData"
	ctx, span, logger := s.start(ctx, op, zap.String("caller", string(caller)), zap.String("customer", string(customer)))
	defer span.End()

	var booking *domain.Booking
	err := s.store.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if err := runChecks(s.callerIsAirline(caller)); err != nil {
			return err
		}
		var err error
		booking, err = repos.Bookings().CurrentForCustomer(ctx, customer)
		return err
	})
	if err != nil {
		return nil, s.fail(span, logger, op, err)
	}
	return booking, nil
}

func (s *Service) GetFlightData(ctx context.Context, flightNumber string) (*domain.Flight, error) {
	const op = "escrow.GetFlightData"
	ctx, span, logger := s.start(ctx, op, zap.String("flight", flightNumber))
	defer span.End()

	var flight *domain.Flight
	err := s.store.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		var err error
		flight, err = repos.Flights().GetByNumber(ctx, flightNumber)
		return err
	})
	if err != nil {
		return nil, s.fail(span, logger, op, err)
	}
	return flight, nil
}

func (s *Service) CustomerBookings(ctx context.Context, caller domain.AccountID) ([]domain.Booking, error) {
	const op = "escrow.CustomerBookings"
	ctx, span, logger := s.start(ctx, op, zap.String("caller", string(caller)))
	defer span.End()

	var bookings []domain.Booking
	err := s.store.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if err := runChecks(s.callerIsCustomer(caller)); err != nil {
			return err
		}
		var err error
		bookings, err = repos.Bookings().ListByCustomer(ctx, caller)
		return err
	})
	if err != nil {
		return nil, s.fail(span, logger, op, err)
	}
	return bookings, nil
}

func (s *Service) Balance(ctx context.Context, caller domain.AccountID) (int64, error) {
	const op = "escrow.Balance"
	ctx, span, logger := s.start(ctx, op, zap.String("caller", string(caller)))
	defer span.End()

	var balance int64
	err := s.store.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if err := runChecks(callerGiven(caller)); err != nil {
			return err
		}
		var err error
		balance, err = repos.Ledger().Balance(ctx, caller)
		return err
	})
	if err != nil {
		return 0, s.fail(span, logger, op, err)
	}
	return balance, nil
}

func (s *Service) acquireRequest(ctx context.Context, caller domain.AccountID, key string) (string, error) {
	if key == "" || s.cache == nil {
		return "", nil
	}
	lockKey := string(caller) + ":" + key
	ok, err := s.cache.AcquireRequestLock(ctx, lockKey, s.idempotencyTTL)
	if err != nil {
		return "", fmt.Errorf("acquire request lock: %w", err)
	}
	if !ok {
		return "", fmt.Errorf("%w: request %q is already being processed", domain.ErrConflict, key)
	}
	return lockKey, nil
}

func (s *Service) releaseRequest(ctx context.Context, logger *zap.Logger, lockKey string) {
	if lockKey == "" {
		return
	}
	if err := s.cache.ReleaseRequestLock(ctx, lockKey); err != nil {
		logger.Warn("failed to release request lock", zap.String("key", lockKey), zap.Error(err))
	}
}

func recordDisbursed(disbursed map[string]int64) {
	for kind, cents := range disbursed {
		metrics.DisbursedCentsTotal.WithLabelValues(kind).Add(float64(cents))
	}
}
