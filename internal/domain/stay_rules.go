package domain

import (
	"fmt"
	"time"
)

// DefaultMaxNights bounds a single stay when no rule is configured.
const DefaultMaxNights = 30

// StayRules holds the configurable limits applied to a booking request.
type StayRules struct {
	MaxNights int
}

// ValidationResult aggregates every violated rule. The caller decides whether a
// violation blocks the operation.
type ValidationResult struct {
	Violations []string
}

// OK reports whether no rule was violated.
func (r ValidationResult) OK() bool {
	return len(r.Violations) == 0
}

// Err returns a *BookingInvalidError carrying the violations, or nil.
func (r ValidationResult) Err() error {
	if r.OK() {
		return nil
	}
	return &BookingInvalidError{Violations: r.Violations}
}

func (r *ValidationResult) add(format string, args ...any) {
	r.Violations = append(r.Violations, fmt.Sprintf(format, args...))
}

// ValidateDates checks the date sanity rules that do not depend on a room:
// check-out after check-in, check-in not in the past, and the stay length limit.
//
// "Not in the past" is evaluated at day granularity: a check-in at any time of the
// current UTC day is accepted.
func ValidateDates(stay Stay, now time.Time, rules StayRules) ValidationResult {
	var res ValidationResult

	if !stay.CheckIn.Before(stay.CheckOut) {
		res.add("check-out date must be after check-in date")
	}

	today := now.UTC().Truncate(24 * time.Hour)
	if stay.CheckIn.Before(today) {
		res.add("check-in date cannot be in the past")
	}

	maxNights := rules.MaxNights
	if maxNights <= 0 {
		maxNights = DefaultMaxNights
	}
	if nights := stay.Nights(); nights > maxNights {
		res.add("stay cannot exceed %d nights", maxNights)
	}

	return res
}

// ValidateStay runs every pure booking rule for a room: the date rules plus room
// availability and guest count against the room's occupancy.
func ValidateStay(room *Room, stay Stay, guests int, now time.Time, rules StayRules) ValidationResult {
	res := ValidateDates(stay, now, rules)

	if !room.Active {
		res.add("room %s is not open for booking", room.ID)
	}

	switch {
	case guests < 1:
		res.add("at least 1 guest is required")
	case guests > room.MaxOccupancy:
		res.add("guest count %d exceeds room capacity of %d", guests, room.MaxOccupancy)
	}

	return res
}

// ConflictingIDs returns the IDs of active reservations in existing that overlap stay,
// skipping excludeID. It is the in-memory form of the store's overlap query.
func ConflictingIDs(existing []*Reservation, stay Stay, excludeID string) []string {
	var ids []string
	for _, r := range existing {
		if r.ID == excludeID && excludeID != "" {
			continue
		}
		if r.IsActive() && r.Stay().Overlaps(stay) {
			ids = append(ids, r.ID)
		}
	}
	return ids
}
