package domain

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventAmountTransferred   EventType = "amount_transferred"
	EventCancelTransferred   EventType = "cancel_transferred"
	EventBookingComplete     EventType = "booking_complete"
	EventFlightCancelled     EventType = "flight_cancelled"
	EventFlightStatusUpdated EventType = "flight_status_updated"
)

// Event is an append-only audit record written in the same transaction as the
// state change it describes.
type Event struct {
	ID           uuid.UUID    `json:"id"`
	Type         EventType    `json:"type"`
	BookingID    int64        `json:"booking_id,omitempty"`
	Customer     AccountID    `json:"customer,omitempty"`
	FlightNumber string       `json:"flight_number,omitempty"`
	From         AccountID    `json:"from,omitempty"`
	To           AccountID    `json:"to,omitempty"`
	AmountCents  int64        `json:"amount_cents,omitempty"`
	Reason       string       `json:"reason,omitempty"`
	Status       FlightStatus `json:"status,omitempty"`
	OccurredAt   time.Time    `json:"occurred_at"`
	PublishedAt  *time.Time   `json:"-"`
}
