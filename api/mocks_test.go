package api

import (
	"context"

	"github.com/Domenick1991/flightescrow/internal/domain"
	"github.com/Domenick1991/flightescrow/internal/service/escrow"
	"github.com/Domenick1991/flightescrow/internal/service/flights"
	"github.com/stretchr/testify/mock"
)

// MockFlightUseCase is a mock implementation of flights.FlightUseCase
type MockFlightUseCase struct {
	mock.Mock
}

func (m *MockFlightUseCase) List(ctx context.Context) ([]domain.Flight, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockFlightUseCase) GetByNumber(ctx context.Context, number string) (*domain.Flight, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockFlightUseCase) CreateFlight(ctx context.Context, input flights.CreateFlightInput) (*domain.Flight, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

// MockEscrowUseCase is a mock implementation of escrow.EscrowUseCase
type MockEscrowUseCase struct {
	mock.Mock
}

func (m *MockEscrowUseCase) InitiateBooking(ctx context.Context, input escrow.InitiateBookingInput) (*escrow.Confirmation, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*escrow.Confirmation), args.Error(1)
}

func (m *MockEscrowUseCase) CancelBooking(ctx context.Context, caller domain.AccountID, bookingID int64) (*domain.Booking, error) {
	args := m.Called(ctx, caller, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockEscrowUseCase) ClaimRefund(ctx context.Context, caller domain.AccountID, bookingID int64) (*domain.Booking, error) {
	args := m.Called(ctx, caller, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockEscrowUseCase) CancelFlight(ctx context.Context, caller domain.AccountID, flightNumber string) (*escrow.SweepResult, error) {
	args := m.Called(ctx, caller, flightNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*escrow.SweepResult), args.Error(1)
}

func (m *MockEscrowUseCase) UpdateFlightStatus(ctx context.Context, input escrow.UpdateFlightStatusInput) (*escrow.SweepResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*escrow.SweepResult), args.Error(1)
}

func (m *MockEscrowUseCase) GetBookingData(ctx context.Context, caller, customer domain.AccountID) (*domain.Booking, error) {
	args := m.Called(ctx, caller, customer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockEscrowUseCase) GetFlightData(ctx context.Context, flightNumber string) (*domain.Flight, error) {
	args := m.Called(ctx, flightNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockEscrowUseCase) CustomerBookings(ctx context.Context, caller domain.AccountID) ([]domain.Booking, error) {
	args := m.Called(ctx, caller)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockEscrowUseCase) Balance(ctx context.Context, caller domain.AccountID) (int64, error) {
	args := m.Called(ctx, caller)
	return args.Get(0).(int64), args.Error(1)
}
