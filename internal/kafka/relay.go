package kafka

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/Domenick1991/flightescrow/internal/domain"
	"github.com/Domenick1991/flightescrow/internal/metrics"
	"github.com/Domenick1991/flightescrow/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

//go:generate mockgen -source=relay.go -destination=mocks/mock_relay.go -package=mocks

type Publisher interface {
	Publish(ctx context.Context, topic, key string, payload any) error
}

type RelayConfig struct {
	EventsTopic        string
	NotificationsTopic string
	PollInterval       time.Duration
	BatchSize          int
	// PublishAttempts is how many times one publish is tried before the batch stops.
	PublishAttempts    int
	RetryBackoff       time.Duration
}

// Relay publishes outbox events to Kafka in the order they were written and marks
// them published. Delivery is at least once: an event is marked only after every
// publish for it succeeded.
type Relay struct {
	log       *zap.Logger
	store     repository.Store
	publisher Publisher
	config    RelayConfig
}

func NewRelay(log *zap.Logger, store repository.Store, publisher Publisher, config RelayConfig) *Relay {
	if log == nil {
		log = zap.NewNop()
	}
	if config.PollInterval <= 0 {
		config.PollInterval = time.Second
	}
	if config.BatchSize <= 0 {
		config.BatchSize = 100
	}
	if config.PublishAttempts <= 0 {
		config.PublishAttempts = 1
	}
	if config.RetryBackoff <= 0 {
		config.RetryBackoff = 500 * time.Millisecond
	}
	return &Relay{log: log, store: store, publisher: publisher, config: config}
}

func (r *Relay) Run(ctx context.Context) error {
	r.log.Info("starting outbox relay", zap.Duration("interval", r.config.PollInterval))

	ticker := time.NewTicker(r.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := r.RunOnce(ctx); err != nil {
				r.log.Error("outbox relay batch failed", zap.Error(err))
			}
		case <-ctx.Done():
			r.log.Info("outbox relay stopped")
			return nil
		}
	}
}

// RunOnce relays one batch and returns how many events were marked published.
func (r *Relay) RunOnce(ctx context.Context) (int, error) {
	var events []domain.Event
	err := r.store.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		var err error
		events, err = repos.Events().ListUnpublished(ctx, r.config.BatchSize)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("failed to list unpublished events: %w", err)
	}
	if len(events) == 0 {
		return 0, nil
	}

	published := make([]uuid.UUID, 0, len(events))
	var sendErr error
	for _, event := range events {
		if err := r.publish(ctx, event); err != nil {
			// later events wait so the topic keeps the outbox order
			sendErr = fmt.Errorf("failed to publish event %s: %w", event.ID, err)
			break
		}
		published = append(published, event.ID)
	}

	if len(published) > 0 {
		err := r.store.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
			return repos.Events().MarkPublished(ctx, published, time.Now().UTC())
		})
		if err != nil {
			return 0, fmt.Errorf("failed to mark events published: %w", err)
		}
		metrics.EventsRelayedTotal.Add(float64(len(published)))
		r.log.Debug("relayed outbox events", zap.Int("count", len(published)))
	}
	return len(published), sendErr
}

func (r *Relay) publish(ctx context.Context, event domain.Event) error {
	key := eventKey(event)
	if err := r.send(ctx, r.config.EventsTopic, key, event); err != nil {
		return err
	}
	if r.config.NotificationsTopic != "" && notifiable(event) {
		return r.send(ctx, r.config.NotificationsTopic, key, event)
	}
	return nil
}

func (r *Relay) send(ctx context.Context, topic, key string, event domain.Event) error {
	return PublishWithRetry(ctx, r.log, r.publisher, topic, key, event, r.config.PublishAttempts, r.config.RetryBackoff)
}

// eventKey groups a booking's events on one partition, and a flight's events when
// there is no booking.
func eventKey(event domain.Event) string {
	if event.BookingID != 0 {
		return "booking-" + strconv.FormatInt(event.BookingID, 10)
	}
	return "flight-" + event.FlightNumber
}

func notifiable(event domain.Event) bool {
	return event.Customer != "" || event.Type == domain.EventFlightCancelled
}
