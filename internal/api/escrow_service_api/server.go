package escrow_service_api

import (
	"context"
	"errors"
	"strings"

	"github.com/Domenick1991/flightescrow/internal/domain"
	"github.com/Domenick1991/flightescrow/internal/service/escrow"
	"github.com/Domenick1991/flightescrow/internal/service/flights"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// CallerMetadataKey carries the already-authenticated caller account.
const CallerMetadataKey = "x-account-id"

// Server implements EscrowServiceServer on top of the escrow and flights services.
type Server struct {
	escrow  escrow.EscrowUseCase
	flights flights.FlightUseCase
}

func NewServer(escrowService escrow.EscrowUseCase, flightService flights.FlightUseCase) *Server {
	return &Server{escrow: escrowService, flights: flightService}
}

func callerFrom(ctx context.Context) domain.AccountID {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	values := md.Get(CallerMetadataKey)
	if len(values) == 0 {
		return ""
	}
	return domain.AccountID(strings.TrimSpace(values[0]))
}

func (s *Server) ListFlights(ctx context.Context, _ *Empty) (*FlightsReply, error) {
	list, err := s.flights.List(ctx)
	if err != nil {
		return nil, toStatus(err)
	}
	reply := &FlightsReply{Flights: make([]Flight, 0, len(list))}
	for i := range list {
		reply.Flights = append(reply.Flights, toFlight(&list[i]))
	}
	return reply, nil
}

func (s *Server) GetFlightData(ctx context.Context, req *FlightRequest) (*Flight, error) {
	if req.FlightNumber == "" {
		return nil, status.Error(codes.InvalidArgument, "flight_number is required")
	}
	flight, err := s.escrow.GetFlightData(ctx, req.FlightNumber)
	if err != nil {
		return nil, toStatus(err)
	}
	reply := toFlight(flight)
	return &reply, nil
}

func (s *Server) InitiateBooking(ctx context.Context, req *InitiateBookingRequest) (*ConfirmationReply, error) {
	confirmation, err := s.escrow.InitiateBooking(ctx, escrow.InitiateBookingInput{
		Caller:         callerFrom(ctx),
		FlightNumber:   req.FlightNumber,
		SeatCategory:   req.SeatCategory,
		AmountCents:    req.AmountCents,
		IdempotencyKey: req.IdempotencyKey,
	})
	if err != nil {
		return nil, toStatus(err)
	}
	return &ConfirmationReply{Message: confirmation.Message, Booking: toBooking(&confirmation.Booking)}, nil
}

func (s *Server) CancelBooking(ctx context.Context, req *BookingRefRequest) (*Booking, error) {
	booking, err := s.escrow.CancelBooking(ctx, callerFrom(ctx), req.BookingID)
	if err != nil {
		return nil, toStatus(err)
	}
	reply := toBooking(booking)
	return &reply, nil
}

func (s *Server) ClaimRefund(ctx context.Context, req *BookingRefRequest) (*Booking, error) {
	booking, err := s.escrow.ClaimRefund(ctx, callerFrom(ctx), req.BookingID)
	if err != nil {
		return nil, toStatus(err)
	}
	reply := toBooking(booking)
	return &reply, nil
}

func (s *Server) CustomerBookings(ctx context.Context, _ *Empty) (*BookingsReply, error) {
	bookings, err := s.escrow.CustomerBookings(ctx, callerFrom(ctx))
	if err != nil {
		return nil, toStatus(err)
	}
	reply := &BookingsReply{Bookings: make([]Booking, 0, len(bookings))}
	for i := range bookings {
		reply.Bookings = append(reply.Bookings, toBooking(&bookings[i]))
	}
	return reply, nil
}

func (s *Server) GetBookingData(ctx context.Context, req *CustomerRequest) (*Booking, error) {
	booking, err := s.escrow.GetBookingData(ctx, callerFrom(ctx), domain.AccountID(req.Customer))
	if err != nil {
		return nil, toStatus(err)
	}
	reply := toBooking(booking)
	return &reply, nil
}

func (s *Server) CancelFlight(ctx context.Context, req *FlightRequest) (*SweepReply, error) {
	result, err := s.escrow.CancelFlight(ctx, callerFrom(ctx), req.FlightNumber)
	if err != nil {
		return nil, toStatus(err)
	}
	return toSweep(result), nil
}

func (s *Server) UpdateFlightStatus(ctx context.Context, req *UpdateFlightStatusRequest) (*SweepReply, error) {
	result, err := s.escrow.UpdateFlightStatus(ctx, escrow.UpdateFlightStatusInput{
		Caller:       callerFrom(ctx),
		FlightNumber: req.FlightNumber,
		Status:       domain.FlightStatus(req.Status),
		DelayHours:   req.DelayHours,
	})
	if err != nil {
		return nil, toStatus(err)
	}
	return toSweep(result), nil
}

func (s *Server) Balance(ctx context.Context, _ *Empty) (*BalanceReply, error) {
	caller := callerFrom(ctx)
	balance, err := s.escrow.Balance(ctx, caller)
	if err != nil {
		return nil, toStatus(err)
	}
	return &BalanceReply{Account: string(caller), BalanceCents: balance}, nil
}

func toStatus(err error) error {
	var code codes.Code
	switch {
	case errors.Is(err, domain.ErrAuthorization):
		code = codes.PermissionDenied
	case errors.Is(err, domain.ErrNotFound):
		code = codes.NotFound
	case errors.Is(err, domain.ErrInvalidState), errors.Is(err, domain.ErrFunds):
		code = codes.FailedPrecondition
	case errors.Is(err, domain.ErrTiming):
		code = codes.OutOfRange
	case errors.Is(err, domain.ErrArgument):
		code = codes.InvalidArgument
	case errors.Is(err, domain.ErrConflict):
		code = codes.AlreadyExists
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "deadline exceeded")
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "request canceled")
	default:
		return status.Error(codes.Internal, "internal error")
	}
	return status.Error(code, err.Error())
}

var _ EscrowServiceServer = (*Server)(nil)
