package escrow

import (
	"context"
	"time"

	"github.com/Domenick1991/flightescrow/internal/domain"
	"github.com/Domenick1991/flightescrow/internal/policy"
	"github.com/Domenick1991/flightescrow/internal/repository"
)

// funds moves money and writes events for one operation inside one transaction.
// It also tallies disbursements so metrics are recorded only after commit.
type funds struct {
	repos     repository.Repositories
	now       time.Time
	disbursed map[string]int64
}

func newFunds(repos repository.Repositories, now time.Time) *funds {
	return &funds{repos: repos, now: now, disbursed: make(map[string]int64)}
}

// move transfers amount and reports whether anything moved. Zero amounts and
// self-transfers are no-ops.
func (f *funds) move(ctx context.Context, from, to domain.AccountID, amount int64, reason, kind string) (bool, error) {
	if amount <= 0 || from == to {
		return false, nil
	}
	err := f.repos.Ledger().Transfer(ctx, &domain.Transfer{
		From:        from,
		To:          to,
		AmountCents: amount,
		Reason:      reason,
		CreatedAt:   f.now,
	})
	if err != nil {
		return false, err
	}
	if kind != "" {
		f.disbursed[kind] += amount
	}
	return true, nil
}

// transferEvent moves amount and records it as an event of type typ when it moved.
func (f *funds) transferEvent(ctx context.Context, typ domain.EventType, b *domain.Booking, from, to domain.AccountID, amount int64, reason, kind string) (bool, error) {
	moved, err := f.move(ctx, from, to, amount, reason, kind)
	if err != nil || !moved {
		return moved, err
	}
	return true, f.emit(ctx, &domain.Event{
		Type:         typ,
		BookingID:    b.ID,
		Customer:     b.Customer,
		FlightNumber: b.FlightNumber,
		From:         from,
		To:           to,
		AmountCents:  amount,
		Reason:       reason,
	})
}

func (f *funds) emit(ctx context.Context, e *domain.Event) error {
	if e.OccurredAt.IsZero() {
		e.OccurredAt = f.now
	}
	return f.repos.Events().Append(ctx, e)
}

// source is where a booking's settlement is paid from. When fares are forwarded at
// booking time the airline already holds the money.
func (s *Service) source(b *domain.Booking) domain.AccountID {
	if s.forwardFare {
		return s.airline
	}
	return b.CustodyAccount()
}

// releaseCustody pays whatever remains in the booking's custody account to the airline.
func (s *Service) releaseCustody(ctx context.Context, f *funds, b *domain.Booking) error {
	rest, err := f.repos.Ledger().Balance(ctx, b.CustodyAccount())
	if err != nil {
		return err
	}
	_, err = f.move(ctx, b.CustodyAccount(), s.airline, rest, "fare released to airline", "fare")
	return err
}

// settleSplit pays a penalty to the airline and a refund to the customer from the
// booking's settlement source, then releases any custody remainder.
func (s *Service) settleSplit(ctx context.Context, f *funds, typ domain.EventType, b *domain.Booking, penalty, refund int64, reason string) error {
	src := s.source(b)
	if _, err := f.transferEvent(ctx, typ, b, src, s.airline, penalty, reason+" penalty", "penalty"); err != nil {
		return err
	}
	if _, err := f.transferEvent(ctx, typ, b, src, b.Customer, refund, reason+" refund", "refund"); err != nil {
		return err
	}
	return s.releaseCustody(ctx, f, b)
}

// split applies a table result to amount.
func split(res policy.Result, amount int64) (penalty, refund int64) {
	switch {
	case res.FullRefund:
		return 0, amount
	case res.Matched:
		return policy.Split(amount, res.Percent)
	default:
		return 0, 0
	}
}
