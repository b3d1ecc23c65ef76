package notify

import (
	"context"
	"testing"

	"github.com/Domenick1991/flightescrow/internal/domain"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestCompose(t *testing.T) {
	tests := []struct {
		name    string
		event   domain.Event
		ok      bool
		subject string
		body    string
	}{
		{
			name:    "booking complete",
			event:   domain.Event{Type: domain.EventBookingComplete, BookingID: 4, Customer: "alice", FlightNumber: "SU100", AmountCents: 1250050, Reason: "business"},
			ok:      true,
			subject: "Booking 4 confirmed",
			body:    "Your business seat on flight SU100 is confirmed. Paid 12500.50.",
		},
		{
			name:    "refund credited",
			event:   domain.Event{Type: domain.EventAmountTransferred, BookingID: 4, Customer: "alice", To: "alice", AmountCents: 905, Reason: "refund claim"},
			ok:      true,
			subject: "Payment for booking 4",
			body:    "9.05 credited to your account: refund claim.",
		},
		{
			name:    "cancellation leg",
			event:   domain.Event{Type: domain.EventCancelTransferred, BookingID: 4, Customer: "alice", FlightNumber: "SU100", AmountCents: 6000, Reason: "cancellation refund"},
			ok:      true,
			subject: "Booking 4 cancelled",
			body:    "cancellation refund of 60.00 for flight SU100.",
		},
		{
			name:  "payment out of the customer's account",
			event: domain.Event{Type: domain.EventAmountTransferred, Customer: "alice", From: "alice", To: "custody:x", AmountCents: 100},
		},
		{
			name:  "flight event without customer",
			event: domain.Event{Type: domain.EventFlightStatusUpdated, FlightNumber: "SU100"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, ok := Compose(tt.event)

			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.event.Customer, msg.To)
				assert.Equal(t, tt.subject, msg.Subject)
				assert.Equal(t, tt.body, msg.Body)
			}
		})
	}
}

func TestSender_Send(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	sender := NewSender(zap.New(core))

	err := sender.Send(context.Background(), domain.Event{Type: domain.EventBookingComplete, BookingID: 1, Customer: "bob", FlightNumber: "SU1", Reason: "economy"})
	assert.NoError(t, err)
	err = sender.Send(context.Background(), domain.Event{Type: domain.EventFlightCancelled, FlightNumber: "SU1"})
	assert.NoError(t, err)

	entries := logs.FilterMessage("notification sent").All()
	assert.Len(t, entries, 1)
	assert.Equal(t, "bob", entries[0].ContextMap()["to"])
}
