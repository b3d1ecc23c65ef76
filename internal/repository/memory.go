package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Domenick1991/flightescrow/internal/domain"
	"github.com/google/uuid"
)

// MemoryStore keeps all state in process. Each Do runs against a copy that replaces
// the live state only when fn succeeds.
type MemoryStore struct {
	mu    sync.Mutex
	state *memState
}

type memState struct {
	flights   map[string]domain.Flight
	bookings  map[int64]domain.Booking
	nextID    int64
	balances  map[domain.AccountID]int64
	transfers []domain.Transfer
	events    []domain.Event
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: &memState{
		flights:  make(map[string]domain.Flight),
		bookings: make(map[int64]domain.Booking),
		balances: make(map[domain.AccountID]int64),
	}}
}

func (s *MemoryStore) Do(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	staged := s.state.clone()
	if err := fn(ctx, memRepos{st: staged}); err != nil {
		return err
	}
	s.state = staged
	return nil
}

func (st *memState) clone() *memState {
	c := &memState{
		flights:   make(map[string]domain.Flight, len(st.flights)),
		bookings:  make(map[int64]domain.Booking, len(st.bookings)),
		nextID:    st.nextID,
		balances:  make(map[domain.AccountID]int64, len(st.balances)),
		transfers: append([]domain.Transfer(nil), st.transfers...),
		events:    append([]domain.Event(nil), st.events...),
	}
	for k, v := range st.flights {
		c.flights[k] = copyFlight(v)
	}
	for k, v := range st.bookings {
		c.bookings[k] = v
	}
	for k, v := range st.balances {
		c.balances[k] = v
	}
	return c
}

func copyFlight(f domain.Flight) domain.Flight {
	if f.ReportedStatus != nil {
		s := *f.ReportedStatus
		f.ReportedStatus = &s
	}
	if f.ReportedAt != nil {
		t := *f.ReportedAt
		f.ReportedAt = &t
	}
	return f
}

type memRepos struct{ st *memState }

func (r memRepos) Flights() FlightRepository   { return memFlights(r) }
func (r memRepos) Bookings() BookingRepository { return memBookings(r) }
func (r memRepos) Ledger() LedgerRepository    { return memLedger(r) }
func (r memRepos) Events() EventRepository     { return memEvents(r) }

type memFlights memRepos

func (r memFlights) List(ctx context.Context) ([]domain.Flight, error) {
	flights := make([]domain.Flight, 0, len(r.st.flights))
	for _, f := range r.st.flights {
		flights = append(flights, copyFlight(f))
	}
	sort.Slice(flights, func(i, j int) bool {
		if flights[i].DepartureTime.Equal(flights[j].DepartureTime) {
			return flights[i].Number < flights[j].Number
		}
		return flights[i].DepartureTime.Before(flights[j].DepartureTime)
	})
	return flights, nil
}

func (r memFlights) GetByNumber(ctx context.Context, number string) (*domain.Flight, error) {
	f, ok := r.st.flights[number]
	if !ok || number == "" {
		return nil, fmt.Errorf("%w: flight %q", domain.ErrNotFound, number)
	}
	f = copyFlight(f)
	return &f, nil
}

func (r memFlights) Create(ctx context.Context, flight *domain.Flight) error {
	if _, ok := r.st.flights[flight.Number]; ok {
		return fmt.Errorf("%w: flight %q already exists", domain.ErrConflict, flight.Number)
	}
	r.st.flights[flight.Number] = copyFlight(*flight)
	return nil
}

func (r memFlights) UpdateStatus(ctx context.Context, flight *domain.Flight) error {
	if _, ok := r.st.flights[flight.Number]; !ok {
		return fmt.Errorf("%w: flight %q", domain.ErrNotFound, flight.Number)
	}
	r.st.flights[flight.Number] = copyFlight(*flight)
	return nil
}

type memBookings memRepos

func (r memBookings) Create(ctx context.Context, booking *domain.Booking) error {
	r.st.nextID++
	booking.ID = r.st.nextID
	r.st.bookings[booking.ID] = *booking
	return nil
}

func (r memBookings) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	b, ok := r.st.bookings[id]
	if !ok {
		return nil, fmt.Errorf("%w: booking %d", domain.ErrNotFound, id)
	}
	return &b, nil
}

func (r memBookings) CurrentForCustomer(ctx context.Context, customer domain.AccountID) (*domain.Booking, error) {
	list, _ := r.ListByCustomer(ctx, customer)
	if len(list) == 0 {
		return nil, fmt.Errorf("%w: no booking for %s", domain.ErrNotFound, customer)
	}
	return &list[len(list)-1], nil
}

func (r memBookings) ListByCustomer(ctx context.Context, customer domain.AccountID) ([]domain.Booking, error) {
	return r.filter(func(b domain.Booking) bool { return b.Customer == customer }), nil
}

func (r memBookings) ListByFlight(ctx context.Context, flightNumber string) ([]domain.Booking, error) {
	return r.filter(func(b domain.Booking) bool { return b.FlightNumber == flightNumber }), nil
}

func (r memBookings) filter(keep func(domain.Booking) bool) []domain.Booking {
	out := make([]domain.Booking, 0)
	for _, b := range r.st.bookings {
		if keep(b) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r memBookings) Update(ctx context.Context, booking *domain.Booking) error {
	if _, ok := r.st.bookings[booking.ID]; !ok {
		return fmt.Errorf("%w: booking %d", domain.ErrNotFound, booking.ID)
	}
	r.st.bookings[booking.ID] = *booking
	return nil
}

type memLedger memRepos

func (r memLedger) Balance(ctx context.Context, account domain.AccountID) (int64, error) {
	return r.st.balances[account], nil
}

func (r memLedger) Transfer(ctx context.Context, t *domain.Transfer) error {
	if t.AmountCents <= 0 {
		return fmt.Errorf("%w: transfer amount must be positive", domain.ErrArgument)
	}
	if t.From == t.To {
		return fmt.Errorf("%w: transfer to the same account", domain.ErrArgument)
	}
	if t.From != domain.MintAccount {
		if r.st.balances[t.From] < t.AmountCents {
			return fmt.Errorf("%w: insufficient balance on %s", domain.ErrFunds, t.From)
		}
		r.st.balances[t.From] -= t.AmountCents
	}
	r.st.balances[t.To] += t.AmountCents
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	r.st.transfers = append(r.st.transfers, *t)
	return nil
}

func (r memLedger) History(ctx context.Context, account domain.AccountID) ([]domain.Transfer, error) {
	out := make([]domain.Transfer, 0)
	for _, t := range r.st.transfers {
		if t.From == account || t.To == account {
			out = append(out, t)
		}
	}
	return out, nil
}

type memEvents memRepos

func (r memEvents) Append(ctx context.Context, event *domain.Event) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	r.st.events = append(r.st.events, *event)
	return nil
}

func (r memEvents) ListUnpublished(ctx context.Context, limit int) ([]domain.Event, error) {
	out := make([]domain.Event, 0)
	for _, e := range r.st.events {
		if e.PublishedAt != nil {
			continue
		}
		out = append(out, e)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r memEvents) MarkPublished(ctx context.Context, ids []uuid.UUID, at time.Time) error {
	set := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	for i := range r.st.events {
		if _, ok := set[r.st.events[i].ID]; ok {
			published := at
			r.st.events[i].PublishedAt = &published
		}
	}
	return nil
}

var (
	_ Store        = (*MemoryStore)(nil)
	_ Repositories = memRepos{}
)
