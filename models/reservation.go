package models

import "time"

// ReservationStatus is the lifecycle state of a viewing reservation.
type ReservationStatus string

const (
	StatusActive    ReservationStatus = "active"
	StatusCancelled ReservationStatus = "cancelled"
)

// Reservation is a viewing reservation as held by the record store.
type Reservation struct {
	RecordID      string            `json:"recordId"`
	ReceptionCode string            `json:"receptionCode"` // human-facing booking reference
	Name          string            `json:"name"`
	Phone         string            `json:"phone"`
	Email         string            `json:"email"`
	Property      string            `json:"property"`
	ViewingAt     time.Time         `json:"viewingAt"` // requested viewing instant
	Status        ReservationStatus `json:"status"`
}

// IsActive reports whether the reservation still blocks its hour slot.
func (r Reservation) IsActive() bool {
	return r.Status == StatusActive
}

// ReservationChanges carries only the fields being modified by an update.
type ReservationChanges struct {
	Phone     *string    `json:"phone,omitempty"`
	Property  *string    `json:"property,omitempty"`
	ViewingAt *time.Time `json:"viewingAt,omitempty"`
}

// Empty reports whether no field is being changed.
func (c ReservationChanges) Empty() bool {
	return c.Phone == nil && c.Property == nil && c.ViewingAt == nil
}

// TouchesSlot reports whether the change moves the reservation to another (property, hour) pair.
func (c ReservationChanges) TouchesSlot() bool {
	return c.Property != nil || c.ViewingAt != nil
}

// ApplyTo overlays the changed fields onto r and returns the result.
func (c ReservationChanges) ApplyTo(r Reservation) Reservation {
	if c.Phone != nil {
		r.Phone = *c.Phone
	}
	if c.Property != nil {
		r.Property = *c.Property
	}
	if c.ViewingAt != nil {
		r.ViewingAt = *c.ViewingAt
	}
	return r
}
