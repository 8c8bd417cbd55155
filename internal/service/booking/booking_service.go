package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Domenick1991/bookit/internal/domain"
	"github.com/Domenick1991/bookit/internal/kafka"
	"github.com/Domenick1991/bookit/internal/repository"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

type BookingUseCase interface {
	ReserveSlot(ctx context.Context, input ReserveSlotInput) (*domain.Booking, error)
	GetBooking(ctx context.Context, id string) (*domain.Booking, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type ReserveSlotInput struct {
	ExperienceID  string   `json:"experience_id" validate:"required,uuid"`
	SlotID        string   `json:"slot_id" validate:"required,uuid"`
	CustomerName  string   `json:"customer_name" validate:"required"`
	CustomerEmail string   `json:"customer_email" validate:"required,email"`
	PromoCode     string   `json:"promo_code,omitempty"`
	FinalPrice    *float64 `json:"final_price" validate:"required,gte=0"`
}

type BookingService struct {
	log                *slog.Logger
	experiences        repository.ExperienceRepository
	bookings           repository.BookingRepository
	producer           Producer
	validate           *validator.Validate
	bookingTopic       string
	notificationsTopic string
	now                func() time.Time
}

type BookingServiceOption func(*BookingService)

func WithProducer(producer Producer, bookingTopic, notificationsTopic string) BookingServiceOption {
	return func(s *BookingService) {
		s.producer = producer
		s.bookingTopic = bookingTopic
		s.notificationsTopic = notificationsTopic
	}
}

func WithClock(now func() time.Time) BookingServiceOption {
	return func(s *BookingService) {
		s.now = now
	}
}

func NewBookingService(
	log *slog.Logger,
	experiences repository.ExperienceRepository,
	bookings repository.BookingRepository,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		log:         log,
		experiences: experiences,
		bookings:    bookings,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// ReserveSlot books the slot for one customer. Concurrent calls for the same
// slot race on the store's conditional update and only one of them wins.
func (s *BookingService) ReserveSlot(ctx context.Context, input ReserveSlotInput) (*domain.Booking, error) {
	input.CustomerName = strings.TrimSpace(input.CustomerName)
	input.CustomerEmail = strings.TrimSpace(input.CustomerEmail)
	input.PromoCode = strings.ToUpper(strings.TrimSpace(input.PromoCode))

	if err := s.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidInput, describeValidation(err))
	}

	if err := s.experiences.ReserveSlot(ctx, input.ExperienceID, input.SlotID); err != nil {
		if errors.Is(err, domain.ErrSlotUnavailable) {
			return nil, err
		}
		s.log.ErrorContext(ctx, "reserve slot failed", "experience_id", input.ExperienceID, "slot_id", input.SlotID, "err", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreFault, err)
	}

	booking := &domain.Booking{
		ID:            uuid.NewString(),
		ExperienceID:  input.ExperienceID,
		SlotID:        input.SlotID,
		CustomerName:  input.CustomerName,
		CustomerEmail: input.CustomerEmail,
		PromoCode:     input.PromoCode,
		FinalPrice:    *input.FinalPrice,
		Status:        domain.BookingStatusConfirmed,
		CreatedAt:     s.now().UTC(),
	}

	if err := s.bookings.Append(ctx, booking); err != nil {
		if errors.Is(err, domain.ErrSlotUnavailable) {
			// The sweep released the flip before the ledger caught up.
			s.log.WarnContext(ctx, "reservation lost before booking append",
				"experience_id", booking.ExperienceID,
				"slot_id", booking.SlotID,
				"booking_id", booking.ID,
			)
			return nil, err
		}
		// The slot stays booked with no ledger entry; the reconcile sweep picks it up.
		s.log.ErrorContext(ctx, "orphaned reservation: booking append failed",
			"experience_id", booking.ExperienceID,
			"slot_id", booking.SlotID,
			"booking_id", booking.ID,
			"err", err,
		)
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreFault, err)
	}

	s.log.InfoContext(ctx, "slot reserved", "experience_id", booking.ExperienceID, "slot_id", booking.SlotID, "booking_id", booking.ID)

	if err := s.publish(ctx, booking); err != nil {
		s.log.WarnContext(ctx, "failed to publish booking event", "booking_id", booking.ID, "err", err)
	}
	return booking, nil
}

func (s *BookingService) GetBooking(ctx context.Context, id string) (*domain.Booking, error) {
	if err := uuid.Validate(id); err != nil {
		return nil, fmt.Errorf("%w: booking id must be a UUID", domain.ErrInvalidInput)
	}
	b, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrBookingNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreFault, err)
	}
	return b, nil
}

func (s *BookingService) publish(ctx context.Context, booking *domain.Booking) error {
	if s.producer == nil || s.bookingTopic == "" {
		return nil
	}
	event := kafka.BookingEvent{
		Type:          kafka.EventBookingConfirmed,
		BookingID:     booking.ID,
		ExperienceID:  booking.ExperienceID,
		SlotID:        booking.SlotID,
		CustomerName:  booking.CustomerName,
		CustomerEmail: booking.CustomerEmail,
		FinalPrice:    booking.FinalPrice,
		Status:        string(booking.Status),
		OccurredAt:    booking.CreatedAt,
	}
	if err := s.producer.Publish(ctx, s.bookingTopic, booking.ID, event); err != nil {
		return err
	}
	if s.notificationsTopic != "" {
		return s.producer.Publish(ctx, s.notificationsTopic, booking.ID, event)
	}
	return nil
}

var fieldNames = map[string]string{
	"ExperienceID":  "experience_id",
	"SlotID":        "slot_id",
	"CustomerName":  "customer_name",
	"CustomerEmail": "customer_email",
	"FinalPrice":    "final_price",
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		name := fieldNames[fe.Field()]
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, name+" is required")
		case "uuid":
			msgs = append(msgs, name+" must be a UUID")
		case "email":
			msgs = append(msgs, name+" must be a valid email address")
		case "gte":
			msgs = append(msgs, name+" must not be negative")
		default:
			msgs = append(msgs, name+" is invalid")
		}
	}
	return strings.Join(msgs, "; ")
}

var _ BookingUseCase = (*BookingService)(nil)
