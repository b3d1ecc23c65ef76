package escrow

import (
	"context"
	"fmt"
	"time"

	"github.com/Domenick1991/flightescrow/internal/domain"
	"github.com/Domenick1991/flightescrow/internal/repository"
)

// check is a single precondition. Checks run in order and the first failure wins, so
// callers list them in the order rejections should be reported.
type check func() error

func runChecks(checks ...check) error {
	for _, c := range checks {
		if err := c(); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) callerIsAirline(caller domain.AccountID) check {
	return func() error {
		if caller == "" || caller != s.airline {
			return fmt.Errorf("%w: only the airline may do this", domain.ErrAuthorization)
		}
		return nil
	}
}

func (s *Service) callerIsCustomer(caller domain.AccountID) check {
	return func() error {
		if caller == "" {
			return fmt.Errorf("%w: caller account is required", domain.ErrAuthorization)
		}
		if caller == s.airline {
			return fmt.Errorf("%w: the airline cannot act as a customer", domain.ErrAuthorization)
		}
		return nil
	}
}

func callerGiven(caller domain.AccountID) check {
	return func() error {
		if caller == "" {
			return fmt.Errorf("%w: caller account is required", domain.ErrAuthorization)
		}
		return nil
	}
}

func seatCategoryGiven(category string) check {
	return func() error {
		if category == "" {
			return fmt.Errorf("%w: seat category is required", domain.ErrArgument)
		}
		return nil
	}
}

func balanceExceeds(ctx context.Context, ledger repository.LedgerRepository, account domain.AccountID, amount int64) check {
	return func() error {
		balance, err := ledger.Balance(ctx, account)
		if err != nil {
			return err
		}
		if balance <= amount {
			return fmt.Errorf("%w: balance %d does not exceed amount %d", domain.ErrFunds, balance, amount)
		}
		return nil
	}
}

func amountMatchesFare(amount, fare int64) check {
	return func() error {
		if amount != fare {
			return fmt.Errorf("%w: amount %d does not match fare %d", domain.ErrFunds, amount, fare)
		}
		return nil
	}
}

func flightOpen(f *domain.Flight) check {
	return func() error {
		if f.Status.Terminal() {
			return fmt.Errorf("%w: flight %s is %s", domain.ErrInvalidState, f.Number, f.Status)
		}
		return nil
	}
}

func flightAcceptsCancellation(f *domain.Flight) check {
	return func() error {
		if f.Status != domain.FlightStatusOnTime && f.Status != domain.FlightStatusDelayed {
			return fmt.Errorf("%w: flight %s is %s", domain.ErrInvalidState, f.Number, f.Status)
		}
		return nil
	}
}

func bookingIn(b *domain.Booking, state domain.BookingState) check {
	return func() error {
		if b.State != state {
			return fmt.Errorf("%w: booking %d is %s, expected %s", domain.ErrInvalidState, b.ID, b.State, state)
		}
		return nil
	}
}

func statusKnown(status domain.FlightStatus) check {
	return func() error {
		if !status.Valid() {
			return fmt.Errorf("%w: unknown flight status %q", domain.ErrArgument, status)
		}
		return nil
	}
}

func statusNotCancelled(status domain.FlightStatus) check {
	return func() error {
		if status == domain.FlightStatusCancelled {
			return fmt.Errorf("%w: flights are cancelled through the cancel operation", domain.ErrInvalidState)
		}
		return nil
	}
}

// maxDelayHours caps a reported delay at one year.
const maxDelayHours = 24 * 366

func delayGiven(status domain.FlightStatus, hours int) check {
	return func() error {
		if status == domain.FlightStatusDelayed && hours <= 0 {
			return fmt.Errorf("%w: a delay of at least one hour is required", domain.ErrArgument)
		}
		if hours < 0 {
			return fmt.Errorf("%w: negative delay", domain.ErrArgument)
		}
		if hours > maxDelayHours {
			return fmt.Errorf("%w: delay of %dh exceeds the %dh limit", domain.ErrArgument, hours, maxDelayHours)
		}
		return nil
	}
}

// strictlyBefore requires now < deadline.
func strictlyBefore(now, deadline time.Time, what string) check {
	return func() error {
		if !now.Before(deadline) {
			return fmt.Errorf("%w: %s closed at %s", domain.ErrTiming, what, deadline.Format(time.RFC3339))
		}
		return nil
	}
}

// notAfter requires now <= deadline.
func notAfter(now, deadline time.Time, what string) check {
	return func() error {
		if now.After(deadline) {
			return fmt.Errorf("%w: %s closed at %s", domain.ErrTiming, what, deadline.Format(time.RFC3339))
		}
		return nil
	}
}

// strictlyAfter requires now > opens.
func strictlyAfter(now, opens time.Time, what string) check {
	return func() error {
		if !now.After(opens) {
			return fmt.Errorf("%w: %s opens after %s", domain.ErrTiming, what, opens.Format(time.RFC3339))
		}
		return nil
	}
}
