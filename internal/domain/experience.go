package domain

import "time"

type Experience struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	Price       float64   `json:"price"`
	ImageURL    string    `json:"image_url"`
	Slots       []Slot    `json:"slots,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Slot is owned by its Experience. Its ID is unique only within that experience.
type Slot struct {
	ID        string     `json:"id"`
	StartTime time.Time  `json:"start_time"`
	EndTime   time.Time  `json:"end_time"`
	IsBooked  bool       `json:"is_booked"`
	BookedAt  *time.Time `json:"-"`
}

// FindSlot returns the slot with the given id, if the experience owns one.
func (e *Experience) FindSlot(slotID string) (*Slot, bool) {
	for i := range e.Slots {
		if e.Slots[i].ID == slotID {
			return &e.Slots[i], true
		}
	}
	return nil, false
}

// OrphanedSlot is a slot flipped to booked by a reservation that never reached the ledger.
type OrphanedSlot struct {
	ExperienceID string
	SlotID       string
	BookedAt     time.Time
}
