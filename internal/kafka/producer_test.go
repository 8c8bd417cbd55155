package kafka

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookingEvent_JSON(t *testing.T) {
	event := BookingEvent{
		Type:         EventSlotOrphaned,
		ExperienceID: "e",
		SlotID:       "s",
		OccurredAt:   time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	data, err := json.Marshal(event)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(data, &fields))
	assert.Equal(t, "slot_orphaned", fields["type"])
	assert.NotContains(t, fields, "booking_id")
	assert.NotContains(t, fields, "customer_email")
}

func TestProducer_CheckConnectionWithoutBrokers(t *testing.T) {
	p := NewProducer(slog.New(slog.NewTextHandler(io.Discard, nil)), nil)
	err := p.CheckConnection(context.Background())
	assert.ErrorContains(t, err, "no kafka brokers")
	assert.NoError(t, p.Close())
}

func TestProducer_PublishRejectsUnmarshalablePayload(t *testing.T) {
	p := NewProducer(slog.New(slog.NewTextHandler(io.Discard, nil)), []string{"localhost:0"})
	err := p.Publish(context.Background(), "topic", "key", make(chan int))
	assert.ErrorContains(t, err, "failed to marshal payload")
}
