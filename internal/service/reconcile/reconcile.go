// Package reconcile finds reservations whose slot was flipped to booked but
// whose booking never reached the ledger.
package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Domenick1991/bookit/internal/kafka"
	"github.com/Domenick1991/bookit/internal/repository"
)

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type Report struct {
	Found    int
	Released int
}

type Sweeper struct {
	log         *slog.Logger
	experiences repository.ExperienceRepository
	producer    Producer
	topic       string
	gracePeriod time.Duration
	release     bool
	now         func() time.Time
}

type Option func(*Sweeper)

func WithProducer(producer Producer, topic string) Option {
	return func(s *Sweeper) {
		s.producer = producer
		s.topic = topic
	}
}

// WithRelease makes the sweep put orphaned slots back on sale.
func WithRelease(release bool) Option {
	return func(s *Sweeper) {
		s.release = release
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Sweeper) {
		s.now = now
	}
}

func NewSweeper(log *slog.Logger, experiences repository.ExperienceRepository, gracePeriod time.Duration, opts ...Option) *Sweeper {
	s := &Sweeper{
		log:         log,
		experiences: experiences,
		gracePeriod: gracePeriod,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Sweep only considers slots booked longer than the grace period ago, so a
// reservation still between its slot flip and its ledger append is left alone.
func (s *Sweeper) Sweep(ctx context.Context) (Report, error) {
	var report Report

	orphans, err := s.experiences.ListOrphanedSlots(ctx, s.now().Add(-s.gracePeriod))
	if err != nil {
		return report, fmt.Errorf("list orphaned slots: %w", err)
	}
	report.Found = len(orphans)

	for _, o := range orphans {
		s.log.WarnContext(ctx, "orphaned reservation", "experience_id", o.ExperienceID, "slot_id", o.SlotID, "booked_at", o.BookedAt)
		eventType := kafka.EventSlotOrphaned

		if s.release {
			released, err := s.experiences.ReleaseOrphanedSlot(ctx, o.ExperienceID, o.SlotID)
			if err != nil {
				return report, fmt.Errorf("release slot %s: %w", o.SlotID, err)
			}
			if released {
				report.Released++
				eventType = kafka.EventSlotReleased
				s.log.InfoContext(ctx, "orphaned slot released", "experience_id", o.ExperienceID, "slot_id", o.SlotID)
			}
		}

		s.notify(ctx, eventType, o.ExperienceID, o.SlotID)
	}
	return report, nil
}

func (s *Sweeper) notify(ctx context.Context, eventType, experienceID, slotID string) {
	if s.producer == nil || s.topic == "" {
		return
	}
	event := kafka.BookingEvent{
		Type:         eventType,
		ExperienceID: experienceID,
		SlotID:       slotID,
		OccurredAt:   s.now().UTC(),
	}
	if err := s.producer.Publish(ctx, s.topic, experienceID+":"+slotID, event); err != nil {
		s.log.WarnContext(ctx, "failed to publish orphan event", "slot_id", slotID, "err", err)
	}
}
