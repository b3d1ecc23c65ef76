package escrow

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Domenick1991/flightescrow/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestInitiateBooking_ForwardsFare(t *testing.T) {
	e := newTestEnv(t)
	e.addFlight("SU100", 30000)
	e.deposit(alice, 50000)

	c := e.book(alice, "SU100", 30000)

	assert.Equal(t, int64(1), c.Booking.ID)
	assert.Equal(t, domain.BookingStateConfirmed, c.Booking.State)
	assert.NotEmpty(t, c.Booking.Token)
	assert.Equal(t, "booking "+c.Booking.Token+" confirmed: flight SU100, seat economy", c.Message)

	assert.Equal(t, int64(20000), e.balance(alice))
	assert.Equal(t, int64(30000), e.balance(airline))
	assert.Equal(t, int64(0), e.balance(c.Booking.CustodyAccount()))
	assert.Equal(t, []domain.EventType{domain.EventAmountTransferred, domain.EventBookingComplete}, e.eventTypes())

	first := e.events()[0]
	assert.Equal(t, alice, first.From)
	assert.Equal(t, c.Booking.CustodyAccount(), first.To)
	assert.Equal(t, int64(30000), first.AmountCents)
}

func TestInitiateBooking_CustodyMode(t *testing.T) {
	e := newTestEnv(t, WithForwardFare(false))
	e.addFlight("SU100", 30000)
	e.deposit(alice, 50000)

	c := e.book(alice, "SU100", 30000)

	assert.Equal(t, int64(20000), e.balance(alice))
	assert.Equal(t, int64(0), e.balance(airline))
	assert.Equal(t, int64(30000), e.balance(c.Booking.CustodyAccount()))
}

func TestInitiateBooking_Guards(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(e *testEnv)
		input   InitiateBookingInput
		wantErr error
	}{
		{
			name:    "airline cannot book",
			input:   InitiateBookingInput{Caller: airline, FlightNumber: "SU100", SeatCategory: "economy", AmountCents: 30000},
			wantErr: domain.ErrAuthorization,
		},
		{
			name:    "anonymous caller",
			input:   InitiateBookingInput{FlightNumber: "SU100", SeatCategory: "economy", AmountCents: 30000},
			wantErr: domain.ErrAuthorization,
		},
		{
			name:    "seat category required before funds",
			input:   InitiateBookingInput{Caller: bob, FlightNumber: "SU100", AmountCents: 30000},
			wantErr: domain.ErrArgument,
		},
		{
			name:    "balance must exceed amount",
			setup:   func(e *testEnv) { e.deposit(bob, 30000) },
			input:   InitiateBookingInput{Caller: bob, FlightNumber: "SU100", SeatCategory: "economy", AmountCents: 30000},
			wantErr: domain.ErrFunds,
		},
		{
			name:    "balance checked before flight lookup",
			input:   InitiateBookingInput{Caller: bob, FlightNumber: "XX000", SeatCategory: "economy", AmountCents: 30000},
			wantErr: domain.ErrFunds,
		},
		{
			name:    "unknown flight",
			input:   InitiateBookingInput{Caller: alice, FlightNumber: "XX000", SeatCategory: "economy", AmountCents: 30000},
			wantErr: domain.ErrNotFound,
		},
		{
			name: "cancelled flight",
			setup: func(e *testEnv) {
				_, err := e.svc.CancelFlight(context.Background(), airline, "SU100")
				require.NoError(t, err)
			},
			input:   InitiateBookingInput{Caller: alice, FlightNumber: "SU100", SeatCategory: "economy", AmountCents: 30000},
			wantErr: domain.ErrInvalidState,
		},
		{
			name:    "amount must equal fare",
			input:   InitiateBookingInput{Caller: alice, FlightNumber: "SU100", SeatCategory: "economy", AmountCents: 35000},
			wantErr: domain.ErrFunds,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEnv(t)
			e.addFlight("SU100", 30000)
			e.deposit(alice, 50000)
			if tt.setup != nil {
				tt.setup(e)
			}
			before := e.balance(alice)
			eventsBefore := len(e.events())

			_, err := e.svc.InitiateBooking(context.Background(), tt.input)

			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
			assert.Equal(t, before, e.balance(alice))
			assert.Len(t, e.events(), eventsBefore)
		})
	}
}

func TestInitiateBooking_IdempotencyKey(t *testing.T) {
	t.Run("duplicate key is rejected", func(t *testing.T) {
		mockCache := &MockCache{}
		e := newTestEnv(t, WithCache(mockCache), WithIdempotencyTTL(time.Minute))
		e.addFlight("SU100", 30000)
		e.deposit(alice, 50000)
		mockCache.On("AcquireRequestLock", mock.Anything, "alice:req-1", time.Minute).Return(false, nil)

		_, err := e.svc.InitiateBooking(context.Background(), InitiateBookingInput{
			Caller: alice, FlightNumber: "SU100", SeatCategory: "economy", AmountCents: 30000, IdempotencyKey: "req-1",
		})

		assert.ErrorIs(t, err, domain.ErrConflict)
		assert.Equal(t, int64(50000), e.balance(alice))
		mockCache.AssertExpectations(t)
	})

	t.Run("lock released when booking fails", func(t *testing.T) {
		mockCache := &MockCache{}
		e := newTestEnv(t, WithCache(mockCache), WithIdempotencyTTL(time.Minute))
		e.addFlight("SU100", 30000)
		e.deposit(alice, 50000)
		mockCache.On("AcquireRequestLock", mock.Anything, "alice:req-2", time.Minute).Return(true, nil)
		mockCache.On("ReleaseRequestLock", mock.Anything, "alice:req-2").Return(nil)

		_, err := e.svc.InitiateBooking(context.Background(), InitiateBookingInput{
			Caller: alice, FlightNumber: "SU100", SeatCategory: "economy", AmountCents: 1, IdempotencyKey: "req-2",
		})

		assert.ErrorIs(t, err, domain.ErrFunds)
		mockCache.AssertExpectations(t)
	})

	t.Run("lock kept after success", func(t *testing.T) {
		mockCache := &MockCache{}
		e := newTestEnv(t, WithCache(mockCache), WithIdempotencyTTL(time.Minute))
		e.addFlight("SU100", 30000)
		e.deposit(alice, 50000)
		mockCache.On("AcquireRequestLock", mock.Anything, "alice:req-3", time.Minute).Return(true, nil)

		_, err := e.svc.InitiateBooking(context.Background(), InitiateBookingInput{
			Caller: alice, FlightNumber: "SU100", SeatCategory: "economy", AmountCents: 30000, IdempotencyKey: "req-3",
		})

		require.NoError(t, err)
		mockCache.AssertNotCalled(t, "ReleaseRequestLock", mock.Anything, mock.Anything)
	})
}

func TestCancelBooking_PenaltyBuckets(t *testing.T) {
	tests := []struct {
		hoursBefore float64
		penalty     int64
		refund      int64
		wantErr     error
	}{
		{hoursBefore: 72, penalty: 0, refund: 100000},
		{hoursBefore: 48.5, penalty: 0, refund: 100000},
		{hoursBefore: 48, penalty: 40000, refund: 60000},
		{hoursBefore: 30, penalty: 40000, refund: 60000},
		{hoursBefore: 24, penalty: 60000, refund: 40000},
		{hoursBefore: 12.5, penalty: 60000, refund: 40000},
		{hoursBefore: 12, penalty: 80000, refund: 20000},
		{hoursBefore: 3, penalty: 80000, refund: 20000},
		{hoursBefore: 2, wantErr: domain.ErrTiming},
		{hoursBefore: 1, wantErr: domain.ErrTiming},
	}

	for _, tt := range tests {
		t.Run(time.Duration(tt.hoursBefore*float64(time.Hour)).String(), func(t *testing.T) {
			e := newTestEnv(t)
			e.addFlight("SU100", 100000)
			e.deposit(alice, 150000)
			c := e.book(alice, "SU100", 100000)
			e.clock.hoursBefore(tt.hoursBefore)

			b, err := e.svc.CancelBooking(context.Background(), alice, 0)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, domain.BookingStateConfirmed, e.booking(c.Booking.ID).State)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, domain.BookingStateCancelled, b.State)
			assert.Equal(t, tt.penalty, b.PenaltyCents)
			assert.Equal(t, tt.refund, b.RefundCents)
			assert.Equal(t, b.PenaltyCents+b.RefundCents, b.AmountCents)
			assert.Equal(t, 50000+tt.refund, e.balance(alice))
			assert.Equal(t, tt.penalty, e.balance(airline))
		})
	}
}

func TestCancelBooking_CustodyModeSettlesFromCustody(t *testing.T) {
	e := newTestEnv(t, WithForwardFare(false))
	e.addFlight("SU100", 100000)
	e.deposit(alice, 150000)
	c := e.book(alice, "SU100", 100000)
	e.clock.hoursBefore(30)

	_, err := e.svc.CancelBooking(context.Background(), alice, c.Booking.ID)

	require.NoError(t, err)
	assert.Equal(t, int64(110000), e.balance(alice))
	assert.Equal(t, int64(40000), e.balance(airline))
	assert.Equal(t, int64(0), e.balance(c.Booking.CustodyAccount()))

	var cancelEvents int
	for _, ev := range e.events() {
		if ev.Type == domain.EventCancelTransferred {
			cancelEvents++
		}
	}
	assert.Equal(t, 2, cancelEvents)
}

func TestCancelBooking_Rejections(t *testing.T) {
	t.Run("only once", func(t *testing.T) {
		e := newTestEnv(t)
		e.addFlight("SU100", 100000)
		e.deposit(alice, 150000)
		e.book(alice, "SU100", 100000)

		_, err := e.svc.CancelBooking(context.Background(), alice, 0)
		require.NoError(t, err)
		_, err = e.svc.CancelBooking(context.Background(), alice, 0)
		assert.ErrorIs(t, err, domain.ErrInvalidState)
	})

	t.Run("someone else's booking", func(t *testing.T) {
		e := newTestEnv(t)
		e.addFlight("SU100", 100000)
		e.deposit(alice, 150000)
		c := e.book(alice, "SU100", 100000)

		_, err := e.svc.CancelBooking(context.Background(), bob, c.Booking.ID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("no booking", func(t *testing.T) {
		e := newTestEnv(t)
		_, err := e.svc.CancelBooking(context.Background(), bob, 0)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("departed flight", func(t *testing.T) {
		e := newTestEnv(t)
		e.addFlight("SU100", 100000)
		e.deposit(alice, 150000)
		e.book(alice, "SU100", 100000)
		e.clock.hoursBefore(10)
		_, err := e.svc.UpdateFlightStatus(context.Background(), UpdateFlightStatusInput{
			Caller: airline, FlightNumber: "SU100", Status: domain.FlightStatusDeparted,
		})
		require.NoError(t, err)

		_, err = e.svc.CancelBooking(context.Background(), alice, 0)
		assert.ErrorIs(t, err, domain.ErrInvalidState)
	})

	t.Run("delayed flight can still be cancelled", func(t *testing.T) {
		e := newTestEnv(t)
		e.addFlight("SU100", 100000)
		e.deposit(alice, 150000)
		e.book(alice, "SU100", 100000)
		e.clock.hoursBefore(20)
		_, err := e.svc.UpdateFlightStatus(context.Background(), UpdateFlightStatusInput{
			Caller: airline, FlightNumber: "SU100", Status: domain.FlightStatusDelayed, DelayHours: 3,
		})
		require.NoError(t, err)

		b, err := e.svc.CancelBooking(context.Background(), alice, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(60000), b.PenaltyCents)
	})
}

func TestClaimRefund_Splits(t *testing.T) {
	tests := []struct {
		name       string
		status     domain.FlightStatus
		delayHours int
		penalty    int64
		refund     int64
	}{
		{name: "no status reported", penalty: 0, refund: 100000},
		{name: "short delay", status: domain.FlightStatusDelayed, delayHours: 1, penalty: 0, refund: 0},
		{name: "delay at first threshold", status: domain.FlightStatusDelayed, delayHours: 2, penalty: 0, refund: 0},
		{name: "three hour delay", status: domain.FlightStatusDelayed, delayHours: 3, penalty: 20000, refund: 80000},
		{name: "five hour delay", status: domain.FlightStatusDelayed, delayHours: 5, penalty: 40000, refund: 60000},
		{name: "eight hour delay", status: domain.FlightStatusDelayed, delayHours: 8, penalty: 60000, refund: 40000},
		{name: "nine hour delay", status: domain.FlightStatusDelayed, delayHours: 9, penalty: 0, refund: 100000},
		{name: "on time", status: domain.FlightStatusOnTime, penalty: 0, refund: 0},
		{name: "departed", status: domain.FlightStatusDeparted, penalty: 0, refund: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEnv(t)
			e.addFlight("SU100", 100000)
			e.deposit(alice, 150000)
			e.book(alice, "SU100", 100000)
			e.clock.hoursBefore(10)
			if tt.status != "" {
				_, err := e.svc.UpdateFlightStatus(context.Background(), UpdateFlightStatusInput{
					Caller: airline, FlightNumber: "SU100", Status: tt.status, DelayHours: tt.delayHours,
				})
				require.NoError(t, err)
			}
			before := len(e.events())

			b, err := e.svc.ClaimRefund(context.Background(), alice, 0)

			require.NoError(t, err)
			assert.Equal(t, domain.BookingStateRefunded, b.State)
			assert.Equal(t, tt.penalty, b.PenaltyCents)
			assert.Equal(t, tt.refund, b.RefundCents)
			assert.Equal(t, 50000+tt.refund, e.balance(alice))
			assert.Equal(t, 100000-tt.refund, e.balance(airline))

			added := e.events()[before:]
			require.Len(t, added, 1)
			assert.Equal(t, domain.EventAmountTransferred, added[0].Type)
			assert.Equal(t, tt.refund, added[0].AmountCents)
		})
	}
}

func TestClaimRefund_CustodyModeReleasesRemainder(t *testing.T) {
	e := newTestEnv(t, WithForwardFare(false))
	e.addFlight("SU100", 100000)
	e.deposit(alice, 150000)
	c := e.book(alice, "SU100", 100000)
	e.clock.hoursBefore(10)
	_, err := e.svc.UpdateFlightStatus(context.Background(), UpdateFlightStatusInput{
		Caller: airline, FlightNumber: "SU100", Status: domain.FlightStatusOnTime,
	})
	require.NoError(t, err)

	_, err = e.svc.ClaimRefund(context.Background(), alice, 0)

	require.NoError(t, err)
	assert.Equal(t, int64(0), e.balance(c.Booking.CustodyAccount()))
	assert.Equal(t, int64(100000), e.balance(airline))
	assert.Equal(t, int64(150000), e.total(alice, airline, c.Booking.CustodyAccount()))
}

func TestClaimRefund_OnlyConfirmed(t *testing.T) {
	e := newTestEnv(t)
	e.addFlight("SU100", 100000)
	e.deposit(alice, 150000)
	e.book(alice, "SU100", 100000)

	_, err := e.svc.ClaimRefund(context.Background(), alice, 0)
	require.NoError(t, err)
	_, err = e.svc.ClaimRefund(context.Background(), alice, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	_, err = e.svc.ClaimRefund(context.Background(), airline, 0)
	assert.ErrorIs(t, err, domain.ErrAuthorization)
}

func TestReads(t *testing.T) {
	e := newTestEnv(t)
	e.addFlight("SU100", 100000)
	e.addFlight("SU200", 50000)
	e.deposit(alice, 300000)
	e.book(alice, "SU100", 100000)
	second := e.book(alice, "SU200", 50000)

	b, err := e.svc.GetBookingData(context.Background(), airline, alice)
	require.NoError(t, err)
	assert.Equal(t, second.Booking.ID, b.ID)

	_, err = e.svc.GetBookingData(context.Background(), alice, alice)
	assert.ErrorIs(t, err, domain.ErrAuthorization)

	_, err = e.svc.GetBookingData(context.Background(), airline, bob)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	list, err := e.svc.CustomerBookings(context.Background(), alice)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	f, err := e.svc.GetFlightData(context.Background(), "SU200")
	require.NoError(t, err)
	assert.Equal(t, int64(50000), f.FareCents)

	_, err = e.svc.GetFlightData(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	balance, err := e.svc.Balance(context.Background(), alice)
	require.NoError(t, err)
	assert.Equal(t, int64(150000), balance)

	_, err = e.svc.Balance(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrAuthorization)
}
