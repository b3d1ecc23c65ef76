package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Domenick1991/flightescrow/internal/domain"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type Consumer struct {
	log    *zap.Logger
	reader *kafka.Reader
}

func NewConsumer(log *zap.Logger, brokers []string, groupID, topic string) *Consumer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Consumer{
		log: log,
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:           brokers,
			GroupID:           groupID,
			Topic:             topic,
			HeartbeatInterval: 3 * time.Second,
			SessionTimeout:    30 * time.Second,
		}),
	}
}

func (c *Consumer) Close() error {
	if c == nil || c.reader == nil {
		return nil
	}
	return c.reader.Close()
}

func (c *Consumer) Consume(ctx context.Context, handler func(context.Context, kafka.Message) error) error {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			return err
		}

		if err := handler(ctx, msg); err != nil {
			return err
		}
	}
}

// ConsumeEvents decodes each message as a domain.Event. Undecodable messages are
// logged and skipped.
func (c *Consumer) ConsumeEvents(ctx context.Context, handler func(context.Context, domain.Event) error) error {
	return c.Consume(ctx, DecodeEvents(c.log, handler))
}

func DecodeEvents(log *zap.Logger, handler func(context.Context, domain.Event) error) func(context.Context, kafka.Message) error {
	return func(ctx context.Context, msg kafka.Message) error {
		var event domain.Event
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Warn("skipping undecodable event",
				zap.String("topic", msg.Topic),
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
			return nil
		}
		return handler(ctx, event)
	}
}
