// Package notify turns escrow events into customer notifications.
package notify

import (
	"context"
	"fmt"

	"github.com/Domenick1991/flightescrow/internal/domain"
	"go.uber.org/zap"
)

type Message struct {
	To      domain.AccountID
	Subject string
	Body    string
}

// Sender delivers notifications. Delivery is a structured log line; a mail or push
// gateway would replace the logger here.
type Sender struct {
	log *zap.Logger
}

func NewSender(log *zap.Logger) *Sender {
	if log == nil {
		log = zap.NewNop()
	}
	return &Sender{log: log}
}

func (s *Sender) Send(ctx context.Context, event domain.Event) error {
	msg, ok := Compose(event)
	if !ok {
		return nil
	}
	s.log.Info("notification sent",
		zap.String("to", string(msg.To)),
		zap.String("subject", msg.Subject),
		zap.String("body", msg.Body),
		zap.String("event_id", event.ID.String()),
	)
	return nil
}

// Compose builds the notification for event. Events with no customer to notify
// report false.
func Compose(event domain.Event) (Message, bool) {
	if event.Customer == "" {
		return Message{}, false
	}
	msg := Message{To: event.Customer}
	switch event.Type {
	case domain.EventBookingComplete:
		msg.Subject = fmt.Sprintf("Booking %d confirmed", event.BookingID)
		msg.Body = fmt.Sprintf("Your %s seat on flight %s is confirmed. Paid %s.", event.Reason, event.FlightNumber, formatCents(event.AmountCents))
	case domain.EventCancelTransferred:
		msg.Subject = fmt.Sprintf("Booking %d cancelled", event.BookingID)
		msg.Body = fmt.Sprintf("%s of %s for flight %s.", event.Reason, formatCents(event.AmountCents), event.FlightNumber)
	case domain.EventAmountTransferred:
		if event.To != event.Customer {
			return Message{}, false
		}
		msg.Subject = fmt.Sprintf("Payment for booking %d", event.BookingID)
		msg.Body = fmt.Sprintf("%s credited to your account: %s.", formatCents(event.AmountCents), event.Reason)
	default:
		return Message{}, false
	}
	return msg, true
}

func formatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
