package domain

import (
	"fmt"
	"time"
)

type BookingState string

const (
	BookingStateConfirmed BookingState = "CONFIRMED"
	BookingStateCancelled BookingState = "CANCELLED"
	BookingStateRefunded  BookingState = "REFUNDED"
)

// bookingTransitions lists the states reachable from each state. REFUNDED is terminal.
var bookingTransitions = map[BookingState][]BookingState{
	BookingStateConfirmed: {BookingStateCancelled, BookingStateRefunded},
	BookingStateCancelled: {BookingStateRefunded},
	BookingStateRefunded:  {},
}

func CanTransition(from, to BookingState) bool {
	for _, s := range bookingTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

type Booking struct {
	ID           int64
	Token        string
	Customer     AccountID
	FlightNumber string
	SeatCategory string
	AmountCents  int64
	State        BookingState
	PenaltyCents int64
	RefundCents  int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CustodyAccount is the ledger account holding funds on behalf of the booking.
func (b *Booking) CustodyAccount() AccountID {
	return AccountID("custody:" + b.Token)
}

// Cancel records a customer cancellation with the computed split.
func (b *Booking) Cancel(penalty, refund int64, at time.Time) error {
	return b.settle(BookingStateCancelled, penalty, refund, at)
}

// ClaimRefund records a refund claim and settles the booking.
func (b *Booking) ClaimRefund(penalty, refund int64, at time.Time) error {
	return b.settle(BookingStateRefunded, penalty, refund, at)
}

// FlightCancelled settles the booking after an airline cancellation. A confirmed
// booking is refunded in full; a booking cancelled earlier keeps its recorded split.
func (b *Booking) FlightCancelled(at time.Time) error {
	if b.State == BookingStateConfirmed {
		return b.settle(BookingStateRefunded, 0, b.AmountCents, at)
	}
	return b.settle(BookingStateRefunded, b.PenaltyCents, b.RefundCents, at)
}

func (b *Booking) settle(to BookingState, penalty, refund int64, at time.Time) error {
	if !CanTransition(b.State, to) {
		return fmt.Errorf("%w: booking %d is %s, cannot move to %s", ErrInvalidState, b.ID, b.State, to)
	}
	if penalty < 0 || refund < 0 {
		return fmt.Errorf("%w: negative settlement amounts", ErrArgument)
	}
	b.State = to
	b.PenaltyCents = penalty
	b.RefundCents = refund
	b.UpdatedAt = at
	return nil
}
