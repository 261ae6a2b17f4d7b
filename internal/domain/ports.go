package domain

import (
	"context"
	"time"
)

// ReservationRepository is the store of record for reservations.
// Implementations: internal/infra/postgres/reservation_repository.go
type ReservationRepository interface {
	// Create persists a new reservation and fills its ID and timestamps.
	Create(ctx context.Context, r *Reservation) error

	// GetByID returns ErrNotFound when the reservation does not exist.
	GetByID(ctx context.Context, id string) (*Reservation, error)

	// Find returns reservations matching filter, ordered by check-in.
	Find(ctx context.Context, filter ReservationFilter) ([]*Reservation, error)

	// Update saves status, stay and total of r, but only if the stored status still
	// equals expected. Returns ErrConcurrentUpdate otherwise.
	Update(ctx context.Context, r *Reservation, expected ReservationStatus) error

	// Delete removes a reservation. Returns ErrNotFound when nothing was deleted.
	Delete(ctx context.Context, id string) error
}

// RoomCatalog gives read-only access to room attributes.
// Implementations: internal/infra/postgres/room_repository.go, internal/infra/catalog/client.go
type RoomCatalog interface {
	// GetByID returns ErrNotFound when the room does not exist.
	GetByID(ctx context.Context, id string) (*Room, error)

	// ListActive returns every room open for booking.
	ListActive(ctx context.Context) ([]*Room, error)
}

// CacheVersion is the invalidation generation a cache lookup observed.
// A value computed after the lookup is written under that generation, so an
// Invalidate in between leaves it unreachable.
type CacheVersion int64

// NoCacheVersion is returned when the generation could not be read. Writes under it are skipped.
const NoCacheVersion CacheVersion = -1

// AvailabilityCache is a disposable cache of availability verdicts.
// A miss or a store failure both read as "unknown"; the store of record decides then.
// Implementations: internal/infra/redis/availability_cache.go
type AvailabilityCache interface {
	// Get returns the cached verdict, whether one was found, and the version to
	// pass to Set when it was not.
	Get(ctx context.Context, roomID string, stay Stay) (available bool, version CacheVersion, found bool)

	// Set caches a verdict computed after a Get that returned version. ttl <= 0 uses the cache default.
	Set(ctx context.Context, roomID string, version CacheVersion, stay Stay, available bool, ttl time.Duration) error

	// Invalidate drops every verdict for roomID and every broad search result,
	// including the ones still being computed.
	Invalidate(ctx context.Context, roomID string) error

	// GetSearch returns the cached room IDs of a broad availability search.
	GetSearch(ctx context.Context, filter AvailabilityFilter) (roomIDs []string, version CacheVersion, found bool)

	// SetSearch caches the room IDs of a broad availability search computed after a GetSearch.
	SetSearch(ctx context.Context, filter AvailabilityFilter, version CacheVersion, roomIDs []string, ttl time.Duration) error
}

// EventPublisher emits reservation lifecycle events.
// Implementations: internal/infra/events/kafka_publisher.go
type EventPublisher interface {
	Publish(ctx context.Context, event ReservationEvent) error
}
