package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"hotel-booking-service/internal/domain"
)

// AvailabilityService answers availability queries cache-aside: the cache is read first
// and the store of record is only queried on a miss.
type AvailabilityService struct {
	rooms     domain.RoomCatalog
	validator *ConflictValidator
	cache     domain.AvailabilityCache
	cacheTTL  time.Duration
	logger    *zap.Logger
}

// NewAvailabilityService creates a new AvailabilityService. cache may be nil.
func NewAvailabilityService(
	repo domain.ReservationRepository,
	rooms domain.RoomCatalog,
	cache domain.AvailabilityCache,
	cacheTTL time.Duration,
	logger *zap.Logger,
) *AvailabilityService {
	return &AvailabilityService{
		rooms:     rooms,
		validator: NewConflictValidator(repo),
		cache:     cache,
		cacheTTL:  cacheTTL,
		logger:    logger,
	}
}

// CheckRoom reports whether roomID is free for the whole stay.
// Conflicts are only listed when the verdict came from the store of record.
func (s *AvailabilityService) CheckRoom(ctx context.Context, roomID string, stay domain.Stay) (*domain.RoomAvailability, error) {
	if err := validateQueryStay(stay); err != nil {
		return nil, err
	}

	room, err := s.rooms.GetByID(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("loading room %s: %w", roomID, err)
	}

	return s.evaluate(ctx, room, stay)
}

// Search returns the active rooms that can host filter.Guests and are free for the stay.
func (s *AvailabilityService) Search(ctx context.Context, filter domain.AvailabilityFilter) (*domain.SearchResult, error) {
	if err := validateQueryStay(filter.Stay); err != nil {
		return nil, err
	}
	if filter.Guests < 1 {
		return nil, &domain.BookingInvalidError{Violations: []string{"at least 1 guest is required"}}
	}

	rooms, err := s.rooms.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing rooms: %w", err)
	}

	ids, version, found := s.getSearch(ctx, filter)
	if found {
		return &domain.SearchResult{Rooms: pickRooms(rooms, ids, filter.Guests), Cached: true}, nil
	}

	available := make([]*domain.Room, 0, len(rooms))
	ids = make([]string, 0, len(rooms))
	for _, room := range rooms {
		if !room.CanHost(filter.Guests) {
			continue
		}

		verdict, err := s.evaluate(ctx, room, filter.Stay)
		if err != nil {
			return nil, err
		}
		if verdict.Available {
			available = append(available, room)
			ids = append(ids, room.ID)
		}
	}

	if s.cache != nil {
		if err := s.cache.SetSearch(ctx, filter, version, ids, s.cacheTTL); err != nil {
			s.logger.Warn("cache degraded", zap.String("op", "set_search"), zap.Error(err))
		}
	}

	s.logger.Debug("availability search completed",
		zap.Time("check_in", filter.Stay.CheckIn),
		zap.Time("check_out", filter.Stay.CheckOut),
		zap.Int("guests", filter.Guests),
		zap.Int("available", len(available)),
	)

	return &domain.SearchResult{Rooms: available, Cached: false}, nil
}

func (s *AvailabilityService) evaluate(ctx context.Context, room *domain.Room, stay domain.Stay) (*domain.RoomAvailability, error) {
	if !room.Active {
		return &domain.RoomAvailability{RoomID: room.ID, Available: false}, nil
	}

	// The version is read before the store so a booking committed meanwhile
	// invalidates the verdict computed below.
	version := domain.NoCacheVersion
	if s.cache != nil {
		var (
			available bool
			found     bool
		)
		available, version, found = s.cache.Get(ctx, room.ID, stay)
		if found {
			return &domain.RoomAvailability{RoomID: room.ID, Available: available, Cached: true}, nil
		}
	}

	conflicts, err := s.validator.FindConflicts(ctx, room.ID, stay, "")
	if err != nil {
		return nil, err
	}
	available := len(conflicts) == 0

	if s.cache != nil {
		if err := s.cache.Set(ctx, room.ID, version, stay, available, s.cacheTTL); err != nil {
			s.logger.Warn("cache degraded",
				zap.String("op", "set"),
				zap.String("room_id", room.ID),
				zap.Error(err),
			)
		}
	}

	return &domain.RoomAvailability{RoomID: room.ID, Available: available, Conflicts: conflicts}, nil
}

func (s *AvailabilityService) getSearch(ctx context.Context, filter domain.AvailabilityFilter) ([]string, domain.CacheVersion, bool) {
	if s.cache == nil {
		return nil, domain.NoCacheVersion, false
	}
	return s.cache.GetSearch(ctx, filter)
}

// pickRooms keeps the rooms of ids that are still listed and can still host guests, in listing order.
func pickRooms(rooms []*domain.Room, ids []string, guests int) []*domain.Room {
	wanted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}

	picked := make([]*domain.Room, 0, len(ids))
	for _, room := range rooms {
		if _, ok := wanted[room.ID]; ok && room.CanHost(guests) {
			picked = append(picked, room)
		}
	}
	return picked
}

func validateQueryStay(stay domain.Stay) error {
	if !stay.CheckIn.Before(stay.CheckOut) {
		return &domain.BookingInvalidError{Violations: []string{"check-out date must be after check-in date"}}
	}
	return nil
}
