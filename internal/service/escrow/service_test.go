package escrow

import (
	"context"
	"testing"
	"time"

	"github.com/Domenick1991/flightescrow/internal/domain"
	"github.com/Domenick1991/flightescrow/internal/repository"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	airline domain.AccountID = "airline"
	alice   domain.AccountID = "alice"
	bob     domain.AccountID = "bob"
)

var departure = time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time { return c.now }

func (c *fixedClock) hoursBefore(h float64) {
	c.now = departure.Add(-time.Duration(h * float64(time.Hour)))
}

type testEnv struct {
	t     *testing.T
	store *repository.MemoryStore
	clock *fixedClock
	svc   *Service
}

func newTestEnv(t *testing.T, opts ...ServiceOption) *testEnv {
	t.Helper()
	e := &testEnv{
		t:     t,
		store: repository.NewMemoryStore(),
		clock: &fixedClock{now: departure.Add(-100 * time.Hour)},
	}
	e.svc = NewService(nil, e.store, airline, append([]ServiceOption{WithClock(e.clock)}, opts...)...)
	return e
}

func (e *testEnv) do(fn func(ctx context.Context, repos repository.Repositories) error) {
	e.t.Helper()
	require.NoError(e.t, e.store.Do(context.Background(), fn))
}

func (e *testEnv) addFlight(number string, fare int64) {
	e.do(func(ctx context.Context, repos repository.Repositories) error {
		return repos.Flights().Create(ctx, &domain.Flight{
			Number:        number,
			DepartureTime: departure,
			FareCents:     fare,
			Status:        domain.FlightStatusOnTime,
		})
	})
}

func (e *testEnv) deposit(account domain.AccountID, cents int64) {
	e.do(func(ctx context.Context, repos repository.Repositories) error {
		return repos.Ledger().Transfer(ctx, &domain.Transfer{From: domain.MintAccount, To: account, AmountCents: cents, Reason: "deposit"})
	})
}

func (e *testEnv) balance(account domain.AccountID) int64 {
	var b int64
	e.do(func(ctx context.Context, repos repository.Repositories) error {
		var err error
		b, err = repos.Ledger().Balance(ctx, account)
		return err
	})
	return b
}

func (e *testEnv) booking(id int64) domain.Booking {
	var b *domain.Booking
	e.do(func(ctx context.Context, repos repository.Repositories) error {
		var err error
		b, err = repos.Bookings().GetByID(ctx, id)
		return err
	})
	return *b
}

func (e *testEnv) flight(number string) *domain.Flight {
	var f *domain.Flight
	e.do(func(ctx context.Context, repos repository.Repositories) error {
		var err error
		f, err = repos.Flights().GetByNumber(ctx, number)
		return err
	})
	return f
}

func (e *testEnv) bookingsOn(flight string) []domain.Booking {
	var list []domain.Booking
	e.do(func(ctx context.Context, repos repository.Repositories) error {
		var err error
		list, err = repos.Bookings().ListByFlight(ctx, flight)
		return err
	})
	return list
}

func (e *testEnv) events() []domain.Event {
	var events []domain.Event
	e.do(func(ctx context.Context, repos repository.Repositories) error {
		var err error
		events, err = repos.Events().ListUnpublished(ctx, 0)
		return err
	})
	return events
}

func (e *testEnv) eventTypes() []domain.EventType {
	var types []domain.EventType
	for _, ev := range e.events() {
		types = append(types, ev.Type)
	}
	return types
}

func (e *testEnv) book(customer domain.AccountID, flight string, amount int64) *Confirmation {
	e.t.Helper()
	c, err := e.svc.InitiateBooking(context.Background(), InitiateBookingInput{
		Caller:       customer,
		FlightNumber: flight,
		SeatCategory: "economy",
		AmountCents:  amount,
	})
	require.NoError(e.t, err)
	return c
}

// total sums every balance the scenario can touch. Deposits are the only way money
// enters, so it must stay equal to what was deposited.
func (e *testEnv) total(accounts ...domain.AccountID) int64 {
	var sum int64
	for _, a := range accounts {
		sum += e.balance(a)
	}
	return sum
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) AcquireRequestLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockCache) ReleaseRequestLock(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCache) InvalidateFlights(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
