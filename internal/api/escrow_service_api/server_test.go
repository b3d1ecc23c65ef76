package escrow_service_api

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/Domenick1991/flightescrow/internal/domain"
	"github.com/Domenick1991/flightescrow/internal/grpcapp"
	"github.com/Domenick1991/flightescrow/internal/repository"
	"github.com/Domenick1991/flightescrow/internal/service/accounts"
	"github.com/Domenick1991/flightescrow/internal/service/escrow"
	"github.com/Domenick1991/flightescrow/internal/service/flights"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

const airline = "airline"

type grpcEnv struct {
	client    *Client
	accounts  *accounts.AccountService
	flights   *flights.FlightService
	departure time.Time
}

func newGrpcEnv(t *testing.T) *grpcEnv {
	t.Helper()

	store := repository.NewMemoryStore()
	escrowSvc := escrow.NewService(nil, store, airline)
	flightSvc := flights.NewFlightService(nil, store, nil, airline)

	lis := bufconn.Listen(1 << 20)
	srv := grpcapp.NewServer(nil)
	RegisterEscrowServiceServer(srv, NewServer(escrowSvc, flightSvc))
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return &grpcEnv{
		client:    NewClient(conn),
		accounts:  accounts.NewAccountService(nil, store),
		flights:   flightSvc,
		departure: time.Now().Add(100 * time.Hour).UTC().Truncate(time.Second),
	}
}

func (e *grpcEnv) seed(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	_, err := e.flights.CreateFlight(ctx, flights.CreateFlightInput{
		Caller:        airline,
		Number:        "SU100",
		DepartureTime: e.departure,
		FareCents:     10000,
	})
	require.NoError(t, err)
	_, err = e.accounts.Deposit(ctx, "alice", 50000)
	require.NoError(t, err)
}

func TestServer_BookingRoundTrip(t *testing.T) {
	env := newGrpcEnv(t)
	env.seed(t)
	ctx := WithCaller(context.Background(), "alice")

	list, err := env.client.ListFlights(ctx, &Empty{})
	require.NoError(t, err)
	require.Len(t, list.Flights, 1)
	assert.Equal(t, "SU100", list.Flights[0].Number)
	assert.Equal(t, env.departure.Format(time.RFC3339), list.Flights[0].DepartureTime)

	confirmation, err := env.client.InitiateBooking(ctx, &InitiateBookingRequest{
		FlightNumber: "SU100",
		SeatCategory: "economy",
		AmountCents:  10000,
	})
	require.NoError(t, err)
	assert.Equal(t, "alice", confirmation.Booking.Customer)
	assert.Equal(t, string(domain.BookingStateConfirmed), confirmation.Booking.State)
	assert.Contains(t, confirmation.Message, "SU100")

	balance, err := env.client.Balance(ctx, &Empty{})
	require.NoError(t, err)
	assert.Equal(t, int64(40000), balance.BalanceCents)

	// 100h before departure: full refund
	cancelled, err := env.client.CancelBooking(ctx, &BookingRefRequest{})
	require.NoError(t, err)
	assert.Equal(t, string(domain.BookingStateCancelled), cancelled.State)
	assert.Equal(t, int64(10000), cancelled.RefundCents)
	assert.Zero(t, cancelled.PenaltyCents)

	bookings, err := env.client.CustomerBookings(ctx, &Empty{})
	require.NoError(t, err)
	require.Len(t, bookings.Bookings, 1)

	airlineCtx := WithCaller(context.Background(), airline)
	got, err := env.client.GetBookingData(airlineCtx, &CustomerRequest{Customer: "alice"})
	require.NoError(t, err)
	assert.Equal(t, cancelled.ID, got.ID)
}

func TestServer_CancelFlight(t *testing.T) {
	env := newGrpcEnv(t)
	env.seed(t)
	ctx := WithCaller(context.Background(), "alice")

	_, err := env.client.InitiateBooking(ctx, &InitiateBookingRequest{FlightNumber: "SU100", SeatCategory: "business", AmountCents: 10000})
	require.NoError(t, err)

	sweep, err := env.client.CancelFlight(WithCaller(context.Background(), airline), &FlightRequest{FlightNumber: "SU100"})
	require.NoError(t, err)
	assert.Equal(t, string(domain.FlightStatusCancelled), sweep.Flight.Status)
	require.Len(t, sweep.Payouts, 1)
	assert.Equal(t, "alice", sweep.Payouts[0].Customer)
	assert.Equal(t, int64(10000), sweep.Payouts[0].AmountCents)

	flight, err := env.client.GetFlightData(ctx, &FlightRequest{FlightNumber: "SU100"})
	require.NoError(t, err)
	assert.True(t, flight.StatusReported)
}

func TestServer_RejectionCodes(t *testing.T) {
	env := newGrpcEnv(t)
	env.seed(t)

	tests := []struct {
		name string
		call func() error
		code codes.Code
	}{
		{
			name: "customer cancels flight",
			call: func() error {
				_, err := env.client.CancelFlight(WithCaller(context.Background(), "alice"), &FlightRequest{FlightNumber: "SU100"})
				return err
			},
			code: codes.PermissionDenied,
		},
		{
			name: "unknown flight",
			call: func() error {
				_, err := env.client.GetFlightData(context.Background(), &FlightRequest{FlightNumber: "XX000"})
				return err
			},
			code: codes.NotFound,
		},
		{
			name: "missing flight number",
			call: func() error {
				_, err := env.client.GetFlightData(context.Background(), &FlightRequest{})
				return err
			},
			code: codes.InvalidArgument,
		},
		{
			name: "amount differs from fare",
			call: func() error {
				_, err := env.client.InitiateBooking(WithCaller(context.Background(), "alice"), &InitiateBookingRequest{
					FlightNumber: "SU100", SeatCategory: "economy", AmountCents: 9000,
				})
				return err
			},
			code: codes.FailedPrecondition,
		},
		{
			name: "status update too early",
			call: func() error {
				_, err := env.client.UpdateFlightStatus(WithCaller(context.Background(), airline), &UpdateFlightStatusRequest{
					FlightNumber: "SU100", Status: string(domain.FlightStatusDelayed), DelayHours: 3,
				})
				return err
			},
			code: codes.OutOfRange,
		},
		{
			name: "no booking to claim",
			call: func() error {
				_, err := env.client.ClaimRefund(WithCaller(context.Background(), "alice"), &BookingRefRequest{})
				return err
			},
			code: codes.NotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			require.Error(t, err)
			assert.Equal(t, tt.code, status.Code(err))
		})
	}
}

func TestToStatus(t *testing.T) {
	tests := []struct {
		err  error
		code codes.Code
	}{
		{domain.ErrAuthorization, codes.PermissionDenied},
		{domain.ErrNotFound, codes.NotFound},
		{domain.ErrInvalidState, codes.FailedPrecondition},
		{domain.ErrFunds, codes.FailedPrecondition},
		{domain.ErrTiming, codes.OutOfRange},
		{domain.ErrArgument, codes.InvalidArgument},
		{domain.ErrConflict, codes.AlreadyExists},
		{context.Canceled, codes.Canceled},
		{context.DeadlineExceeded, codes.DeadlineExceeded},
		{errors.New("pg: connection reset"), codes.Internal},
	}
	for _, tt := range tests {
		t.Run(tt.code.String(), func(t *testing.T) {
			assert.Equal(t, tt.code, status.Code(toStatus(tt.err)))
		})
	}

	st, _ := status.FromError(toStatus(errors.New("pg: connection reset")))
	assert.Equal(t, "internal error", st.Message())
}
