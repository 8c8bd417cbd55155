package email

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Domenick1991/bookit/internal/kafka"
)

// Sender delivers booking notifications. Delivery is a structured log line for now.
type Sender struct {
	log *slog.Logger
}

func NewSender(log *slog.Logger) *Sender {
	return &Sender{log: log}
}

func (s *Sender) Send(ctx context.Context, event kafka.BookingEvent) error {
	if event.CustomerEmail == "" {
		return fmt.Errorf("event %s for booking %s has no recipient", event.Type, event.BookingID)
	}
	s.log.InfoContext(ctx, "send email",
		"to", event.CustomerEmail,
		"subject", Subject(event),
		"booking_id", event.BookingID,
		"experience_id", event.ExperienceID,
		"slot_id", event.SlotID,
	)
	return nil
}

func Subject(event kafka.BookingEvent) string {
	switch event.Type {
	case kafka.EventBookingConfirmed:
		return fmt.Sprintf("Booking %s confirmed", event.BookingID)
	default:
		return fmt.Sprintf("Update on booking %s", event.BookingID)
	}
}
