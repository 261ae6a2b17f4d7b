// Package service provides application use cases.
package service

import (
	"context"
	"fmt"

	"hotel-booking-service/internal/domain"
)

// ConflictValidator finds active reservations that overlap a candidate stay
// in the store of record.
type ConflictValidator struct {
	repo domain.ReservationRepository
}

// NewConflictValidator creates a new ConflictValidator.
func NewConflictValidator(repo domain.ReservationRepository) *ConflictValidator {
	return &ConflictValidator{repo: repo}
}

// FindConflicts returns the IDs of active reservations of roomID whose stay intersects
// stay under half-open semantics. excludeID, when set, is never reported.
func (v *ConflictValidator) FindConflicts(ctx context.Context, roomID string, stay domain.Stay, excludeID string) ([]string, error) {
	existing, err := v.repo.Find(ctx, domain.ReservationFilter{
		RoomID:    roomID,
		Statuses:  domain.ActiveStatuses,
		Overlaps:  &stay,
		ExcludeID: excludeID,
	})
	if err != nil {
		return nil, fmt.Errorf("finding reservations of room %s: %w", roomID, err)
	}

	// The store filter is re-checked in memory so every repository gets the same semantics.
	return domain.ConflictingIDs(existing, stay, excludeID), nil
}
