package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/Domenick1991/bookit/config"
	"github.com/segmentio/kafka-go"
)

type EventHandler func(ctx context.Context, event BookingEvent) error

// Deduper remembers messages whose handler already succeeded.
type Deduper interface {
	Processed(ctx context.Context, key string) (bool, error)
	MarkProcessed(ctx context.Context, key string) error
}

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// NotificationConsumer reads booking events from the notifications topic.
// Delivery is at least once; the deduper suppresses redelivered offsets.
type NotificationConsumer struct {
	log    *slog.Logger
	reader messageReader
	dedup  Deduper
}

func NewNotificationConsumer(log *slog.Logger, cfg config.KafkaConfig, dedup Deduper) *NotificationConsumer {
	return &NotificationConsumer{
		log: log,
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:           cfg.Brokers,
			GroupID:           cfg.GroupID,
			Topic:             cfg.NotificationsTopic,
			HeartbeatInterval: 3 * time.Second,
			SessionTimeout:    30 * time.Second,
		}),
		dedup: dedup,
	}
}

func (c *NotificationConsumer) Close() error {
	if c == nil || c.reader == nil {
		return nil
	}
	return c.reader.Close()
}

// Run blocks until ctx is canceled or the reader fails. A canceled ctx returns nil.
func (c *NotificationConsumer) Run(ctx context.Context, handle EventHandler) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return nil
			}
			return err
		}

		c.process(ctx, msg, handle)

		if err := c.reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			c.log.WarnContext(ctx, "commit offset", "topic", msg.Topic, "offset", msg.Offset, "err", err)
		}
	}
}

// process never fails the loop: undecodable and undeliverable events are logged and skipped.
// A message is marked processed only after its handler returns nil, so a crash
// mid-delivery leads to a redelivery instead of a lost notification.
func (c *NotificationConsumer) process(ctx context.Context, msg kafka.Message, handle EventHandler) {
	key := MessageKey(msg.Topic, msg.Partition, msg.Offset)
	if c.dedup != nil {
		done, err := c.dedup.Processed(ctx, key)
		if err != nil {
			c.log.WarnContext(ctx, "dedup check failed", "topic", msg.Topic, "offset", msg.Offset, "err", err)
		} else if done {
			c.log.DebugContext(ctx, "skip duplicate message", "topic", msg.Topic, "offset", msg.Offset)
			return
		}
	}

	var event BookingEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		c.log.ErrorContext(ctx, "decode booking event", "topic", msg.Topic, "offset", msg.Offset, "err", err)
		return
	}
	if err := handle(ctx, event); err != nil {
		c.log.ErrorContext(ctx, "handle booking event", "type", event.Type, "booking_id", event.BookingID, "err", err)
		return
	}

	if c.dedup != nil {
		if err := c.dedup.MarkProcessed(ctx, key); err != nil {
			c.log.WarnContext(ctx, "mark message processed", "topic", msg.Topic, "offset", msg.Offset, "err", err)
		}
	}
}
