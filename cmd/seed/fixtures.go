package main

import (
	"time"

	"github.com/Domenick1991/bookit/internal/domain"
	"github.com/google/uuid"
)

func slot(start, end string, booked bool) domain.Slot {
	return domain.Slot{
		ID:        uuid.NewString(),
		StartTime: mustParse(start),
		EndTime:   mustParse(end),
		IsBooked:  booked,
	}
}

func mustParse(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func fixtures() []domain.Experience {
	return []domain.Experience{
		{
			ID:          uuid.NewString(),
			Title:       "Scuba Diving in Bali",
			Description: "Explore the vibrant coral reefs of Tulamben.",
			Location:    "Bali, Indonesia",
			Price:       1200,
			ImageURL:    "https://images.unsplash.com/photo-1577717903315-1691ae25ab3f?q=80&w=2070",
			Slots: []domain.Slot{
				slot("2025-12-01T09:00:00Z", "2025-12-01T11:00:00Z", false),
				slot("2025-12-01T12:00:00Z", "2025-12-01T14:00:00Z", false),
			},
		},
		{
			ID:          uuid.NewString(),
			Title:       "Kyoto Temple Walk",
			Description: "A guided historical walk through Kyoto.",
			Location:    "Kyoto, Japan",
			Price:       800,
			ImageURL:    "https://images.unsplash.com/photo-1542051841857-5f90071e7989",
			Slots: []domain.Slot{
				slot("2025-11-22T10:00:00Z", "2025-11-22T13:00:00Z", false),
				slot("2025-11-22T14:00:00Z", "2025-11-22T17:00:00Z", false),
				// pre-booked, never reported by the orphan sweep since booked_at stays empty
				slot("2025-11-22T18:00:00Z", "2025-11-22T21:00:00Z", true),
			},
		},
	}
}
