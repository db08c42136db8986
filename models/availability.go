package models

import "time"

// AvailabilityResult is the outcome of a slot availability check.
type AvailabilityResult struct {
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

// HourSlot is the canonical one-hour bucket [Start, End) a viewing instant falls into.
type HourSlot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls inside the slot.
func (s HourSlot) Contains(t time.Time) bool {
	return !t.Before(s.Start) && t.Before(s.End)
}

// SlotQuery selects active reservations of one property inside one hour slot.
type SlotQuery struct {
	Property        string
	Slot            HourSlot
	ExcludeRecordID string
}
