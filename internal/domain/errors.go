package domain

import "errors"

var (
	// ErrInvalidInput marks a request rejected before any store access.
	ErrInvalidInput = errors.New("invalid input")
	// ErrSlotUnavailable covers both a missing slot and an already booked one.
	ErrSlotUnavailable = errors.New("slot unavailable")
	// ErrStoreFault wraps unexpected failures of the catalog store or the ledger.
	ErrStoreFault = errors.New("store fault")

	ErrExperienceNotFound = errors.New("experience not found")
	ErrExperienceExists   = errors.New("experience already exists")
	ErrBookingNotFound    = errors.New("booking not found")
)
