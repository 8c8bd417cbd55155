package domain

import "time"

type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "confirmed"
)

type Booking struct {
	ID            string        `json:"id"`
	ExperienceID  string        `json:"experience_id"`
	SlotID        string        `json:"slot_id"`
	CustomerName  string        `json:"customer_name"`
	CustomerEmail string        `json:"customer_email"`
	PromoCode     string        `json:"promo_code,omitempty"`
	FinalPrice    float64       `json:"final_price"`
	Status        BookingStatus `json:"status"`
	CreatedAt     time.Time     `json:"created_at"`
}
