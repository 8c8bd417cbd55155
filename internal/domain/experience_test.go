package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExperience_FindSlot(t *testing.T) {
	exp := &Experience{Slots: []Slot{{ID: "a"}, {ID: "b", IsBooked: true}}}

	slot, ok := exp.FindSlot("b")
	assert.True(t, ok)
	assert.True(t, slot.IsBooked)

	slot.IsBooked = false
	assert.False(t, exp.Slots[1].IsBooked, "FindSlot must return a pointer into the experience")

	_, ok = exp.FindSlot("missing")
	assert.False(t, ok)
}
