// Package domain contains the core booking entities and rules.
// This package has no external dependencies (only stdlib).
package domain

import (
	"math"
	"time"
)

// ReservationStatus is the lifecycle state of a reservation.
type ReservationStatus string

const (
	StatusPending   ReservationStatus = "pending"
	StatusConfirmed ReservationStatus = "confirmed"
	StatusCancelled ReservationStatus = "cancelled"
	StatusCompleted ReservationStatus = "completed"
)

// ActiveStatuses are the statuses that block a room.
var ActiveStatuses = []ReservationStatus{StatusPending, StatusConfirmed}

// IsActive reports whether the status blocks availability.
func (s ReservationStatus) IsActive() bool {
	return s == StatusPending || s == StatusConfirmed
}

// IsTerminal reports whether no further transition is allowed.
func (s ReservationStatus) IsTerminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

// CanTransitionTo reports whether s -> next is an allowed lifecycle change.
//
//	pending   -> confirmed | cancelled
//	confirmed -> cancelled | completed
func (s ReservationStatus) CanTransitionTo(next ReservationStatus) bool {
	switch next {
	case StatusConfirmed:
		return s == StatusPending
	case StatusCancelled:
		return s.IsActive()
	case StatusCompleted:
		return s == StatusConfirmed
	default:
		return false
	}
}

// Stay is a half-open date interval [CheckIn, CheckOut).
type Stay struct {
	CheckIn  time.Time
	CheckOut time.Time
}

// NewStay normalizes both bounds to UTC.
func NewStay(checkIn, checkOut time.Time) Stay {
	return Stay{CheckIn: checkIn.UTC(), CheckOut: checkOut.UTC()}
}

// Nights returns the number of started 24h periods in the stay, 0 if the stay is empty.
func (s Stay) Nights() int {
	d := s.CheckOut.Sub(s.CheckIn)
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Hours() / 24))
}

// Overlaps reports whether two stays intersect. Touching bounds do not overlap:
// a stay ending on the 5th and one starting on the 5th can share a room.
func (s Stay) Overlaps(other Stay) bool {
	return s.CheckIn.Before(other.CheckOut) && s.CheckOut.After(other.CheckIn)
}

// Reservation is a booking of one room for one stay.
type Reservation struct {
	ID             string            `json:"id"`
	RoomID         string            `json:"room_id"`
	OwnerID        string            `json:"owner_id"`
	CheckIn        time.Time         `json:"check_in"`
	CheckOut       time.Time         `json:"check_out"`
	Guests         int               `json:"guests"`
	TotalAmount    float64           `json:"total_amount"`
	Status         ReservationStatus `json:"status"`
	SpecialRequest string            `json:"special_request,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// Stay returns the reserved interval.
func (r *Reservation) Stay() Stay {
	return Stay{CheckIn: r.CheckIn, CheckOut: r.CheckOut}
}

// IsActive reports whether the reservation blocks its room.
func (r *Reservation) IsActive() bool {
	return r.Status.IsActive()
}

// ReservationFilter selects reservations in the store of record.
// Zero-valued fields are ignored.
type ReservationFilter struct {
	RoomID    string
	Statuses  []ReservationStatus
	Overlaps  *Stay  // existing.CheckIn < Overlaps.CheckOut AND existing.CheckOut > Overlaps.CheckIn
	ExcludeID string // skip this reservation, used when re-validating an update in place

	CheckOutBefore time.Time
	CreatedBefore  time.Time
	Limit          int
}
