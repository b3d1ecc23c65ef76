package escrow

import (
	"context"
	"time"

	"github.com/Domenick1991/flightescrow/internal/domain"
	"github.com/Domenick1991/flightescrow/internal/metrics"
	"github.com/Domenick1991/flightescrow/internal/repository"
	"go.uber.org/zap"
)

// flightCancelWindow is how long before departure the airline may still cancel, and
// how long before departure status updates begin.
const flightCancelWindow = 24 * time.Hour

// CancelFlight cancels the flight and settles every booking on it: confirmed bookings
// are refunded in full, and bookings the customers had already cancelled get their
// recorded penalty back when that is enabled.
func (s *Service) CancelFlight(ctx context.Context, caller domain.AccountID, flightNumber string) (*SweepResult, error) {
	const op = "escrow.CancelFlight"
	ctx, span, logger := s.start(ctx, op, zap.String("caller", string(caller)), zap.String("flight", flightNumber))
	defer span.End()

	now := s.clock.Now()
	var result *SweepResult
	var disbursed map[string]int64
	err := s.store.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if err := runChecks(s.callerIsAirline(caller)); err != nil {
			return err
		}
		flight, err := repos.Flights().GetByNumber(ctx, flightNumber)
		if err != nil {
			return err
		}
		if err := runChecks(
			flightOpen(flight),
			notAfter(now, flight.DepartureTime.Add(-flightCancelWindow), "flight cancellation"),
		); err != nil {
			return err
		}

		flight.Delay = 0
		markStatus(flight, domain.FlightStatusCancelled, now)
		if err := repos.Flights().UpdateStatus(ctx, flight); err != nil {
			return err
		}

		f := newFunds(repos, now)
		if err := f.emit(ctx, &domain.Event{
			Type:         domain.EventFlightCancelled,
			FlightNumber: flight.Number,
			From:         s.airline,
			Status:       domain.FlightStatusCancelled,
		}); err != nil {
			return err
		}

		bookings, err := repos.Bookings().ListByFlight(ctx, flight.Number)
		if err != nil {
			return err
		}
		result = &SweepResult{Flight: *flight}
		for i := range bookings {
			b := &bookings[i]
			var paid int64
			var reason string
			switch b.State {
			case domain.BookingStateConfirmed:
				reason = "flight cancelled refund"
				paid = b.AmountCents
				if _, err := f.transferEvent(ctx, domain.EventAmountTransferred, b, s.source(b), b.Customer, paid, reason, "refund"); err != nil {
					return err
				}
			case domain.BookingStateCancelled:
				if !s.repayCancelledPenalty {
					continue
				}
				reason = "cancellation penalty repaid"
				paid = b.PenaltyCents
				if _, err := f.transferEvent(ctx, domain.EventAmountTransferred, b, s.airline, b.Customer, paid, reason, "refund"); err != nil {
					return err
				}
			default:
				continue
			}
			if err := b.FlightCancelled(now); err != nil {
				return err
			}
			if err := repos.Bookings().Update(ctx, b); err != nil {
				return err
			}
			if paid > 0 {
				result.Payouts = append(result.Payouts, Payout{
					BookingID:   b.ID,
					Customer:    b.Customer,
					AmountCents: paid,
					Reason:      reason,
				})
			}
		}
		disbursed = f.disbursed
		return nil
	})
	if err != nil {
		return nil, s.fail(span, logger, op, err)
	}

	metrics.FlightsCancelledTotal.Inc()
	recordDisbursed(disbursed)
	s.invalidateFlights(ctx, logger)
	logger.Info("flight cancelled", zap.Int("payouts", len(result.Payouts)))
	return result, nil
}

// UpdateFlightStatus records an airline status report. A DEPARTED report settles
// every confirmed booking: any amount paid above the fare is returned from custody
// and the rest of custody is released to the airline.
func (s *Service) UpdateFlightStatus(ctx context.Context, input UpdateFlightStatusInput) (*SweepResult, error) {
	const op = "escrow.UpdateFlightStatus"
	ctx, span, logger := s.start(ctx, op,
		zap.String("caller", string(input.Caller)),
		zap.String("flight", input.FlightNumber),
		zap.String("status", string(input.Status)),
	)
	defer span.End()

	now := s.clock.Now()
	var result *SweepResult
	var disbursed map[string]int64
	err := s.store.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if err := runChecks(s.callerIsAirline(input.Caller)); err != nil {
			return err
		}
		flight, err := repos.Flights().GetByNumber(ctx, input.FlightNumber)
		if err != nil {
			return err
		}
		if err := runChecks(
			flightOpen(flight),
			statusNotCancelled(input.Status),
			statusKnown(input.Status),
			strictlyAfter(now, flight.DepartureTime.Add(-flightCancelWindow), "status updates"),
			delayGiven(input.Status, input.DelayHours),
		); err != nil {
			return err
		}

		switch input.Status {
		case domain.FlightStatusDelayed:
			flight.Delay = time.Duration(input.DelayHours) * time.Hour
		case domain.FlightStatusOnTime:
			flight.Delay = 0
		}
		markStatus(flight, input.Status, now)
		if err := repos.Flights().UpdateStatus(ctx, flight); err != nil {
			return err
		}

		f := newFunds(repos, now)
		if err := f.emit(ctx, &domain.Event{
			Type:         domain.EventFlightStatusUpdated,
			FlightNumber: flight.Number,
			From:         s.airline,
			Status:       flight.Status,
			Reason:       flight.Delay.String(),
		}); err != nil {
			return err
		}

		result = &SweepResult{Flight: *flight}
		if input.Status == domain.FlightStatusDeparted {
			payouts, err := s.settleDeparture(ctx, f, repos, flight)
			if err != nil {
				return err
			}
			result.Payouts = payouts
		}
		disbursed = f.disbursed
		return nil
	})
	if err != nil {
		return nil, s.fail(span, logger, op, err)
	}

	recordDisbursed(disbursed)
	s.invalidateFlights(ctx, logger)
	logger.Info("flight status updated",
		zap.Duration("delay", result.Flight.Delay),
		zap.Int("payouts", len(result.Payouts)),
	)
	return result, nil
}

func (s *Service) settleDeparture(ctx context.Context, f *funds, repos repository.Repositories, flight *domain.Flight) ([]Payout, error) {
	bookings, err := repos.Bookings().ListByFlight(ctx, flight.Number)
	if err != nil {
		return nil, err
	}
	var payouts []Payout
	for i := range bookings {
		b := &bookings[i]
		if b.State != domain.BookingStateConfirmed {
			continue
		}
		excess := b.AmountCents - flight.FareCents
		moved, err := f.transferEvent(ctx, domain.EventAmountTransferred, b, b.CustodyAccount(), b.Customer, excess, "excess payment returned", "refund")
		if err != nil {
			return nil, err
		}
		if moved {
			payouts = append(payouts, Payout{
				BookingID:   b.ID,
				Customer:    b.Customer,
				AmountCents: excess,
				Reason:      "excess payment returned",
			})
		}
		if err := s.releaseCustody(ctx, f, b); err != nil {
			return nil, err
		}
	}
	return payouts, nil
}

func markStatus(flight *domain.Flight, status domain.FlightStatus, at time.Time) {
	reported := status
	reportedAt := at
	flight.Status = status
	flight.ReportedStatus = &reported
	flight.ReportedAt = &reportedAt
	flight.UpdatedAt = at
}
