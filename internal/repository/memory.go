package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Domenick1991/bookit/internal/domain"
)

// MemoryStore keeps the catalog and the ledger in process memory. Every write
// happens under one mutex, which gives the same single-document atomicity the
// Postgres store provides for ReserveSlot. Experiences and Bookings expose the
// two repository views over the shared state.
type MemoryStore struct {
	mu          sync.Mutex
	experiences map[string]*domain.Experience
	bookings    map[string]domain.Booking
	order       []string
	now         func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		experiences: make(map[string]*domain.Experience),
		bookings:    make(map[string]domain.Booking),
		now:         time.Now,
	}
}

func (m *MemoryStore) Experiences() *MemoryExperienceRepository {
	return &MemoryExperienceRepository{m}
}

func (m *MemoryStore) Bookings() *MemoryBookingRepository {
	return &MemoryBookingRepository{m}
}

type MemoryExperienceRepository struct{ *MemoryStore }

type MemoryBookingRepository struct{ *MemoryStore }

func (m *MemoryExperienceRepository) List(_ context.Context) ([]domain.Experience, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	experiences := make([]domain.Experience, 0, len(m.experiences))
	for _, e := range m.experiences {
		summary := *e
		summary.Slots = nil
		experiences = append(experiences, summary)
	}
	sort.Slice(experiences, func(i, j int) bool { return experiences[i].Title < experiences[j].Title })
	return experiences, nil
}

func (m *MemoryExperienceRepository) GetByID(_ context.Context, id string) (*domain.Experience, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.experiences[id]
	if !ok {
		return nil, domain.ErrExperienceNotFound
	}
	return cloneExperience(e), nil
}

func (m *MemoryExperienceRepository) ReserveSlot(_ context.Context, experienceID, slotID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.experiences[experienceID]
	if !ok {
		return domain.ErrSlotUnavailable
	}
	slot, ok := e.FindSlot(slotID)
	if !ok || slot.IsBooked {
		return domain.ErrSlotUnavailable
	}
	now := m.now()
	slot.IsBooked = true
	slot.BookedAt = &now
	return nil
}

func (m *MemoryExperienceRepository) ListOrphanedSlots(_ context.Context, bookedBefore time.Time) ([]domain.OrphanedSlot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var orphans []domain.OrphanedSlot
	for _, e := range m.experiences {
		for _, s := range e.Slots {
			if m.isOrphanLocked(e.ID, s) && !s.BookedAt.After(bookedBefore) {
				orphans = append(orphans, domain.OrphanedSlot{ExperienceID: e.ID, SlotID: s.ID, BookedAt: *s.BookedAt})
			}
		}
	}
	sort.Slice(orphans, func(i, j int) bool { return orphans[i].BookedAt.Before(orphans[j].BookedAt) })
	return orphans, nil
}

func (m *MemoryExperienceRepository) ReleaseOrphanedSlot(_ context.Context, experienceID, slotID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.experiences[experienceID]
	if !ok {
		return false, nil
	}
	slot, ok := e.FindSlot(slotID)
	if !ok || !m.isOrphanLocked(experienceID, *slot) {
		return false, nil
	}
	slot.IsBooked = false
	slot.BookedAt = nil
	return true, nil
}

// isOrphanLocked reports whether a slot was flipped by ReserveSlot and no booking references it.
func (m *MemoryStore) isOrphanLocked(experienceID string, s domain.Slot) bool {
	if !s.IsBooked || s.BookedAt == nil {
		return false
	}
	return !m.isReferencedLocked(experienceID, s.ID)
}

func (m *MemoryStore) isReferencedLocked(experienceID, slotID string) bool {
	for _, b := range m.bookings {
		if b.ExperienceID == experienceID && b.SlotID == slotID {
			return true
		}
	}
	return false
}

// validateSlots mirrors the slots table constraints.
func validateSlots(slots []domain.Slot) error {
	seen := make(map[string]bool, len(slots))
	for _, s := range slots {
		if seen[s.ID] {
			return fmt.Errorf("%w: duplicate slot id %q", domain.ErrInvalidInput, s.ID)
		}
		seen[s.ID] = true
		if !s.StartTime.Before(s.EndTime) {
			return fmt.Errorf("%w: slot %q must start before it ends", domain.ErrInvalidInput, s.ID)
		}
	}
	return nil
}

func (m *MemoryExperienceRepository) Create(_ context.Context, experience *domain.Experience) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.experiences[experience.ID]; ok {
		return fmt.Errorf("create experience %s: %w", experience.ID, domain.ErrExperienceExists)
	}
	if err := validateSlots(experience.Slots); err != nil {
		return fmt.Errorf("create experience %s: %w", experience.ID, err)
	}
	if experience.CreatedAt.IsZero() {
		experience.CreatedAt = m.now().UTC()
	}
	m.experiences[experience.ID] = cloneExperience(experience)
	return nil
}

func (m *MemoryExperienceRepository) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.experiences = make(map[string]*domain.Experience)
	m.bookings = make(map[string]domain.Booking)
	m.order = nil
	return nil
}

// Append records the booking only while its slot is still booked and no other
// booking references it, the same rule the Postgres ledger enforces.
func (m *MemoryBookingRepository) Append(_ context.Context, booking *domain.Booking) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.experiences[booking.ExperienceID]
	if !ok {
		return domain.ErrSlotUnavailable
	}
	slot, ok := e.FindSlot(booking.SlotID)
	if !ok || !slot.IsBooked || m.isReferencedLocked(booking.ExperienceID, booking.SlotID) {
		return domain.ErrSlotUnavailable
	}
	m.bookings[booking.ID] = *booking
	m.order = append(m.order, booking.ID)
	return nil
}

func (m *MemoryBookingRepository) GetByID(_ context.Context, id string) (*domain.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.bookings[id]
	if !ok {
		return nil, domain.ErrBookingNotFound
	}
	return &b, nil
}

func (m *MemoryBookingRepository) ListBySlot(_ context.Context, experienceID, slotID string) ([]domain.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var bookings []domain.Booking
	for _, id := range m.order {
		b := m.bookings[id]
		if b.ExperienceID == experienceID && b.SlotID == slotID {
			bookings = append(bookings, b)
		}
	}
	return bookings, nil
}

func cloneExperience(e *domain.Experience) *domain.Experience {
	c := *e
	c.Slots = make([]domain.Slot, len(e.Slots))
	copy(c.Slots, e.Slots)
	return &c
}

var (
	_ ExperienceRepository = (*MemoryExperienceRepository)(nil)
	_ BookingRepository    = (*MemoryBookingRepository)(nil)
)
