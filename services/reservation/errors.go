package reservation

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is returned before any store call when a required field is missing or malformed.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound is returned when no matching (active) reservation exists.
	ErrNotFound = errors.New("reservation not found")
	// ErrStoreFailure wraps every infrastructure failure of the record store.
	ErrStoreFailure = errors.New("record store unavailable")
)

// RuleKind identifies which business rule rejected a slot.
type RuleKind string

const (
	RuleOutsideHours RuleKind = "outside_hours"
	RuleClosedDay    RuleKind = "closed_day"
	RuleSlotBooked   RuleKind = "slot_booked"
	RuleSlotBusy     RuleKind = "slot_busy"
)

// RuleViolation is a business decision, not a failure: the slot cannot be used.
type RuleViolation struct {
	Kind   RuleKind
	Reason string
}

func (e *RuleViolation) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

func invalidInput(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, msg)
}
