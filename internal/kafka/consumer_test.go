package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockDeduper struct {
	mock.Mock
}

func (m *MockDeduper) Processed(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockDeduper) MarkProcessed(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

// fakeReader replays msgs and then blocks until ctx is canceled.
type fakeReader struct {
	msgs      []kafka.Message
	committed []int64
	cancel    context.CancelFunc
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	if len(r.msgs) == 0 {
		r.cancel()
		<-ctx.Done()
		return kafka.Message{}, ctx.Err()
	}
	msg := r.msgs[0]
	r.msgs = r.msgs[1:]
	return msg, nil
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *fakeReader) Close() error { return nil }

func eventMessage(t *testing.T, offset int64, event BookingEvent) kafka.Message {
	t.Helper()
	data, err := json.Marshal(event)
	require.NoError(t, err)
	return kafka.Message{Topic: "booking-notifications", Partition: 0, Offset: offset, Value: data}
}

func TestNotificationConsumer_Run(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reader := &fakeReader{cancel: cancel, msgs: []kafka.Message{
		eventMessage(t, 1, BookingEvent{Type: EventBookingConfirmed, BookingID: "b1"}),
		eventMessage(t, 2, BookingEvent{Type: EventBookingConfirmed, BookingID: "b2"}),
		{Topic: "booking-notifications", Offset: 3, Value: []byte("not json")},
		eventMessage(t, 4, BookingEvent{Type: EventBookingConfirmed, BookingID: "b4"}),
	}}

	dedup := &MockDeduper{}
	dedup.On("Processed", mock.Anything, "booking-notifications:0:1").Return(false, nil)
	dedup.On("Processed", mock.Anything, "booking-notifications:0:2").Return(true, nil)
	dedup.On("Processed", mock.Anything, "booking-notifications:0:3").Return(false, nil)
	dedup.On("Processed", mock.Anything, "booking-notifications:0:4").Return(false, errors.New("redis down"))
	dedup.On("MarkProcessed", mock.Anything, "booking-notifications:0:1").Return(nil).Once()

	c := &NotificationConsumer{log: slog.New(slog.NewTextHandler(io.Discard, nil)), reader: reader, dedup: dedup}

	var handled []string
	err := c.Run(ctx, func(_ context.Context, event BookingEvent) error {
		handled = append(handled, event.BookingID)
		if event.BookingID == "b4" {
			return errors.New("smtp timeout")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"b1", "b4"}, handled)
	assert.Equal(t, []int64{1, 2, 3, 4}, reader.committed)
	dedup.AssertExpectations(t)
	dedup.AssertNotCalled(t, "MarkProcessed", mock.Anything, "booking-notifications:0:3")
	dedup.AssertNotCalled(t, "MarkProcessed", mock.Anything, "booking-notifications:0:4")
}

func TestNotificationConsumer_FailedDeliveryIsRetriedOnRedelivery(t *testing.T) {
	msg := eventMessage(t, 9, BookingEvent{Type: EventBookingConfirmed, BookingID: "b9"})
	dedup := &MockDeduper{}
	dedup.On("Processed", mock.Anything, "booking-notifications:0:9").Return(false, nil).Twice()
	dedup.On("MarkProcessed", mock.Anything, "booking-notifications:0:9").Return(nil).Once()
	c := &NotificationConsumer{log: slog.New(slog.NewTextHandler(io.Discard, nil)), dedup: dedup}

	attempts := 0
	handle := func(context.Context, BookingEvent) error {
		attempts++
		if attempts == 1 {
			return errors.New("smtp timeout")
		}
		return nil
	}

	c.process(context.Background(), msg, handle)
	dedup.AssertNotCalled(t, "MarkProcessed", mock.Anything, mock.Anything)

	c.process(context.Background(), msg, handle)
	assert.Equal(t, 2, attempts)
	dedup.AssertExpectations(t)
}

func TestNotificationConsumer_NoDeduper(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reader := &fakeReader{cancel: cancel, msgs: []kafka.Message{
		eventMessage(t, 7, BookingEvent{Type: EventBookingConfirmed, BookingID: "b7"}),
	}}
	c := &NotificationConsumer{log: slog.New(slog.NewTextHandler(io.Discard, nil)), reader: reader}

	count := 0
	require.NoError(t, c.Run(ctx, func(context.Context, BookingEvent) error {
		count++
		return nil
	}))
	assert.Equal(t, 1, count)
}

func TestMessageKey(t *testing.T) {
	assert.Equal(t, "bookings:2:15", MessageKey("bookings", 2, 15))
}
