package api

import (
	"time"

	"github.com/Domenick1991/flightescrow/internal/domain"
	"github.com/Domenick1991/flightescrow/internal/service/escrow"
)

type flightResponse struct {
	Number          string  `json:"number"`
	DepartureTime   string  `json:"departure_time"`
	ActualDeparture string  `json:"actual_departure"`
	FareCents       int64   `json:"fare_cents"`
	Status          string  `json:"status"`
	DelayHours      float64 `json:"delay_hours"`
	StatusReported  bool    `json:"status_reported"`
	ReportedAt      string  `json:"reported_at,omitempty"`
}

func toFlightResponse(f *domain.Flight) flightResponse {
	resp := flightResponse{
		Number:          f.Number,
		DepartureTime:   f.DepartureTime.Format(time.RFC3339),
		ActualDeparture: f.ActualDeparture().Format(time.RFC3339),
		FareCents:       f.FareCents,
		Status:          string(f.Status),
		DelayHours:      f.Delay.Hours(),
		StatusReported:  f.StatusReported(),
	}
	if f.ReportedAt != nil {
		resp.ReportedAt = f.ReportedAt.Format(time.RFC3339)
	}
	return resp
}

type bookingResponse struct {
	ID           int64  `json:"id"`
	Token        string `json:"token"`
	Customer     string `json:"customer"`
	FlightNumber string `json:"flight_number"`
	SeatCategory string `json:"seat_category"`
	AmountCents  int64  `json:"amount_cents"`
	State        string `json:"state"`
	PenaltyCents int64  `json:"penalty_cents"`
	RefundCents  int64  `json:"refund_cents"`
	UpdatedAt    string `json:"updated_at"`
}

func toBookingResponse(b *domain.Booking) bookingResponse {
	return bookingResponse{
		ID:           b.ID,
		Token:        b.Token,
		Customer:     string(b.Customer),
		FlightNumber: b.FlightNumber,
		SeatCategory: b.SeatCategory,
		AmountCents:  b.AmountCents,
		State:        string(b.State),
		PenaltyCents: b.PenaltyCents,
		RefundCents:  b.RefundCents,
		UpdatedAt:    b.UpdatedAt.Format(time.RFC3339),
	}
}

type confirmationResponse struct {
	Message string          `json:"message"`
	Booking bookingResponse `json:"booking"`
}

type payoutResponse struct {
	BookingID   int64  `json:"booking_id"`
	Customer    string `json:"customer"`
	AmountCents int64  `json:"amount_cents"`
	Reason      string `json:"reason"`
}

type sweepResponse struct {
	Flight  flightResponse   `json:"flight"`
	Payouts []payoutResponse `json:"payouts"`
}

func toSweepResponse(r *escrow.SweepResult) sweepResponse {
	resp := sweepResponse{
		Flight:  toFlightResponse(&r.Flight),
		Payouts: make([]payoutResponse, 0, len(r.Payouts)),
	}
	for _, p := range r.Payouts {
		resp.Payouts = append(resp.Payouts, payoutResponse{
			BookingID:   p.BookingID,
			Customer:    string(p.Customer),
			AmountCents: p.AmountCents,
			Reason:      p.Reason,
		})
	}
	return resp
}

type balanceResponse struct {
	Account      string `json:"account"`
	BalanceCents int64  `json:"balance_cents"`
}
