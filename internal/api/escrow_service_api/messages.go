package escrow_service_api

import (
	"time"

	"github.com/Domenick1991/flightescrow/internal/domain"
	"github.com/Domenick1991/flightescrow/internal/service/escrow"
)

type Empty struct{}

type InitiateBookingRequest struct {
	FlightNumber   string `json:"flight_number"`
	SeatCategory   string `json:"seat_category"`
	AmountCents    int64  `json:"amount_cents"`
	IdempotencyKey string `json:"idempotency_key,omitempty"`
}

type BookingRefRequest struct {
	BookingID int64 `json:"booking_id,omitempty"`
}

type FlightRequest struct {
	FlightNumber string `json:"flight_number"`
}

type UpdateFlightStatusRequest struct {
	FlightNumber string `json:"flight_number"`
	Status       string `json:"status"`
	DelayHours   int    `json:"delay_hours,omitempty"`
}

type CustomerRequest struct {
	Customer string `json:"customer"`
}

type Flight struct {
	Number          string `json:"number"`
	DepartureTime   string `json:"departure_time"`
	ActualDeparture string `json:"actual_departure"`
	FareCents       int64  `json:"fare_cents"`
	Status          string `json:"status"`
	DelaySeconds    int64  `json:"delay_seconds"`
	StatusReported  bool   `json:"status_reported"`
}

type Booking struct {
	ID           int64  `json:"id"`
	Token        string `json:"token"`
	Customer     string `json:"customer"`
	FlightNumber string `json:"flight_number"`
	SeatCategory string `json:"seat_category"`
	AmountCents  int64  `json:"amount_cents"`
	State        string `json:"state"`
	PenaltyCents int64  `json:"penalty_cents"`
	RefundCents  int64  `json:"refund_cents"`
}

type Payout struct {
	BookingID   int64  `json:"booking_id"`
	Customer    string `json:"customer"`
	AmountCents int64  `json:"amount_cents"`
	Reason      string `json:"reason"`
}

type ConfirmationReply struct {
	Message string  `json:"message"`
	Booking Booking `json:"booking"`
}

type SweepReply struct {
	Flight  Flight   `json:"flight"`
	Payouts []Payout `json:"payouts"`
}

type BookingsReply struct {
	Bookings []Booking `json:"bookings"`
}

type FlightsReply struct {
	Flights []Flight `json:"flights"`
}

type BalanceReply struct {
	Account      string `json:"account"`
	BalanceCents int64  `json:"balance_cents"`
}

func toFlight(f *domain.Flight) Flight {
	return Flight{
		Number:          f.Number,
		DepartureTime:   f.DepartureTime.Format(time.RFC3339),
		ActualDeparture: f.ActualDeparture().Format(time.RFC3339),
		FareCents:       f.FareCents,
		Status:          string(f.Status),
		DelaySeconds:    int64(f.Delay / time.Second),
		StatusReported:  f.StatusReported(),
	}
}

func toBooking(b *domain.Booking) Booking {
	return Booking{
		ID:           b.ID,
		Token:        b.Token,
		Customer:     string(b.Customer),
		FlightNumber: b.FlightNumber,
		SeatCategory: b.SeatCategory,
		AmountCents:  b.AmountCents,
		State:        string(b.State),
		PenaltyCents: b.PenaltyCents,
		RefundCents:  b.RefundCents,
	}
}

func toSweep(r *escrow.SweepResult) *SweepReply {
	reply := &SweepReply{Flight: toFlight(&r.Flight), Payouts: make([]Payout, 0, len(r.Payouts))}
	for _, p := range r.Payouts {
		reply.Payouts = append(reply.Payouts, Payout{
			BookingID:   p.BookingID,
			Customer:    string(p.Customer),
			AmountCents: p.AmountCents,
			Reason:      p.Reason,
		})
	}
	return reply
}
