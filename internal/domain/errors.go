package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when a room or reservation does not exist.
	ErrNotFound = errors.New("not found")

	// ErrLockAcquisitionFailed means the room lock could not be taken in time.
	// Safe to retry the whole operation later.
	ErrLockAcquisitionFailed = errors.New("room is busy, try again")

	// ErrInvalidTransition is returned for a status change the lifecycle forbids.
	ErrInvalidTransition = errors.New("invalid reservation status transition")

	// ErrConcurrentUpdate means the reservation changed between read and write.
	ErrConcurrentUpdate = errors.New("reservation was modified concurrently")
)

// BookingConflictError reports overlapping active reservations.
type BookingConflictError struct {
	RoomID         string
	ConflictingIDs []string
}

func (e *BookingConflictError) Error() string {
	if len(e.ConflictingIDs) == 0 {
		return fmt.Sprintf("room %s is already booked for the requested dates", e.RoomID)
	}
	return fmt.Sprintf("room %s is already booked for the requested dates (%d conflicting reservations)",
		e.RoomID, len(e.ConflictingIDs))
}

// Messages returns the violated rules in user-facing form.
func (e *BookingConflictError) Messages() []string {
	return []string{"room is already booked for the requested dates"}
}

// BookingInvalidError aggregates violated stay rules.
type BookingInvalidError struct {
	Violations []string
}

func (e *BookingInvalidError) Error() string {
	return "invalid booking: " + strings.Join(e.Violations, "; ")
}

// Messages returns the violated rules in user-facing form.
func (e *BookingInvalidError) Messages() []string {
	return e.Violations
}

// IsConflict reports whether err is a BookingConflictError.
func IsConflict(err error) bool {
	var target *BookingConflictError
	return errors.As(err, &target)
}

// IsInvalid reports whether err is a BookingInvalidError.
func IsInvalid(err error) bool {
	var target *BookingInvalidError
	return errors.As(err, &target)
}
