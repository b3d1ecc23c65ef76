package escrow_service_api

import (
	"context"

	"google.golang.org/grpc"
)

const ServiceName = "escrow.v1.EscrowService"

type EscrowServiceServer interface {
	ListFlights(ctx context.Context, req *Empty) (*FlightsReply, error)
	GetFlightData(ctx context.Context, req *FlightRequest) (*Flight, error)
	InitiateBooking(ctx context.Context, req *InitiateBookingRequest) (*ConfirmationReply, error)
	CancelBooking(ctx context.Context, req *BookingRefRequest) (*Booking, error)
	ClaimRefund(ctx context.Context, req *BookingRefRequest) (*Booking, error)
	CustomerBookings(ctx context.Context, req *Empty) (*BookingsReply, error)
	GetBookingData(ctx context.Context, req *CustomerRequest) (*Booking, error)
	CancelFlight(ctx context.Context, req *FlightRequest) (*SweepReply, error)
	UpdateFlightStatus(ctx context.Context, req *UpdateFlightStatusRequest) (*SweepReply, error)
	Balance(ctx context.Context, req *Empty) (*BalanceReply, error)
}

// ServiceDesc is written by hand in the shape protoc-gen-go-grpc emits.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*EscrowServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("ListFlights", EscrowServiceServer.ListFlights),
		unary("GetFlightData", EscrowServiceServer.GetFlightData),
		unary("InitiateBooking", EscrowServiceServer.InitiateBooking),
		unary("CancelBooking", EscrowServiceServer.CancelBooking),
		unary("ClaimRefund", EscrowServiceServer.ClaimRefund),
		unary("CustomerBookings", EscrowServiceServer.CustomerBookings),
		unary("GetBookingData", EscrowServiceServer.GetBookingData),
		unary("CancelFlight", EscrowServiceServer.CancelFlight),
		unary("UpdateFlightStatus", EscrowServiceServer.UpdateFlightStatus),
		unary("Balance", EscrowServiceServer.Balance),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "escrow_service_api/service_desc.go",
}

func RegisterEscrowServiceServer(s grpc.ServiceRegistrar, srv EscrowServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func fullMethod(name string) string {
	return "/" + ServiceName + "/" + name
}

func unary[Req, Resp any](name string, call func(EscrowServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(EscrowServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod(name)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(EscrowServiceServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}
