package escrow_service_api

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

// Client calls EscrowService with the JSON codec.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// WithCaller attaches the caller account to outgoing calls made with ctx.
func WithCaller(ctx context.Context, account string) context.Context {
	return metadata.AppendToOutgoingContext(ctx, CallerMetadataKey, account)
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, fullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListFlights(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*FlightsReply, error) {
	return invoke[FlightsReply](ctx, c.cc, "ListFlights", in, opts)
}

func (c *Client) GetFlightData(ctx context.Context, in *FlightRequest, opts ...grpc.CallOption) (*Flight, error) {
	return invoke[Flight](ctx, c.cc, "GetFlightData", in, opts)
}

func (c *Client) InitiateBooking(ctx context.Context, in *InitiateBookingRequest, opts ...grpc.CallOption) (*ConfirmationReply, error) {
	return invoke[ConfirmationReply](ctx, c.cc, "InitiateBooking", in, opts)
}

func (c *Client) CancelBooking(ctx context.Context, in *BookingRefRequest, opts ...grpc.CallOption) (*Booking, error) {
	return invoke[Booking](ctx, c.cc, "CancelBooking", in, opts)
}

func (c *Client) ClaimRefund(ctx context.Context, in *BookingRefRequest, opts ...grpc.CallOption) (*Booking, error) {
	return invoke[Booking](ctx, c.cc, "ClaimRefund", in, opts)
}

func (c *Client) CustomerBookings(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*BookingsReply, error) {
	return invoke[BookingsReply](ctx, c.cc, "CustomerBookings", in, opts)
}

func (c *Client) GetBookingData(ctx context.Context, in *CustomerRequest, opts ...grpc.CallOption) (*Booking, error) {
	return invoke[Booking](ctx, c.cc, "GetBookingData", in, opts)
}

func (c *Client) CancelFlight(ctx context.Context, in *FlightRequest, opts ...grpc.CallOption) (*SweepReply, error) {
	return invoke[SweepReply](ctx, c.cc, "CancelFlight", in, opts)
}

func (c *Client) UpdateFlightStatus(ctx context.Context, in *UpdateFlightStatusRequest, opts ...grpc.CallOption) (*SweepReply, error) {
	return invoke[SweepReply](ctx, c.cc, "UpdateFlightStatus", in, opts)
}

func (c *Client) Balance(ctx context.Context, in *Empty, opts ...grpc.CallOption) (*BalanceReply, error) {
	return invoke[BalanceReply](ctx, c.cc, "Balance", in, opts)
}
