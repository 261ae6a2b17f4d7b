package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"hotel-booking-service/internal/domain"
	"hotel-booking-service/pkg/locker"
	"hotel-booking-service/pkg/retry"
)

// RoomLockKey returns the distributed lock key that serializes every booking write on a room.
// The key does not include the dates, so overlapping but different stays contend too.
func RoomLockKey(roomID string) string {
	return "lock:booking:room:" + roomID
}

// BookingConfig holds the orchestration settings.
type BookingConfig struct {
	LockTTL   time.Duration
	LockRetry retry.Policy
	CacheTTL  time.Duration
	Rules     domain.StayRules
}

// CreateReservationInput is a request to book a room.
type CreateReservationInput struct {
	OwnerID        string
	RoomID         string
	CheckIn        time.Time
	CheckOut       time.Time
	Guests         int
	SpecialRequest string
}

// BookingOption configures a BookingService.
type BookingOption func(*BookingService)

// WithClock replaces time.Now, used by the stay rules and timestamps.
func WithClock(now func() time.Time) BookingOption {
	return func(s *BookingService) { s.now = now }
}

// BookingService orchestrates reservation writes: lock, re-validate, persist, invalidate.
type BookingService struct {
	repo      domain.ReservationRepository
	rooms     domain.RoomCatalog
	cache     domain.AvailabilityCache
	events    domain.EventPublisher
	locker    locker.DistributedLocker
	validator *ConflictValidator
	cfg       BookingConfig
	logger    *zap.Logger
	now       func() time.Time
}

// NewBookingService creates a new BookingService. cache and events may be nil.
func NewBookingService(
	repo domain.ReservationRepository,
	rooms domain.RoomCatalog,
	cache domain.AvailabilityCache,
	events domain.EventPublisher,
	distLocker locker.DistributedLocker,
	cfg BookingConfig,
	logger *zap.Logger,
	opts ...BookingOption,
) *BookingService {
	s := &BookingService{
		repo:      repo,
		rooms:     rooms,
		cache:     cache,
		events:    events,
		locker:    distLocker,
		validator: NewConflictValidator(repo),
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Create books a room. The stay rules are checked once before taking the room lock
// and again inside it, together with the conflict search against the store of record.
func (s *BookingService) Create(ctx context.Context, in CreateReservationInput) (*domain.Reservation, error) {
	room, err := s.rooms.GetByID(ctx, in.RoomID)
	if err != nil {
		return nil, fmt.Errorf("loading room %s: %w", in.RoomID, err)
	}

	stay := domain.NewStay(in.CheckIn, in.CheckOut)
	if err := domain.ValidateStay(room, stay, in.Guests, s.now(), s.cfg.Rules).Err(); err != nil {
		return nil, err
	}

	r, err := locker.WithCriticalSection(ctx, s.locker, RoomLockKey(room.ID), s.cfg.LockTTL, s.cfg.LockRetry,
		func(ctx context.Context) (*domain.Reservation, error) {
			now := s.now()
			if err := domain.ValidateStay(room, stay, in.Guests, now, s.cfg.Rules).Err(); err != nil {
				return nil, err
			}

			if err := s.ensureNoConflicts(ctx, room.ID, stay, ""); err != nil {
				return nil, err
			}

			r := &domain.Reservation{
				RoomID:         room.ID,
				OwnerID:        in.OwnerID,
				CheckIn:        stay.CheckIn,
				CheckOut:       stay.CheckOut,
				Guests:         in.Guests,
				TotalAmount:    room.PriceFor(stay),
				Status:         domain.StatusPending,
				SpecialRequest: in.SpecialRequest,
				CreatedAt:      now,
				UpdatedAt:      now,
			}
			if err := s.repo.Create(ctx, r); err != nil {
				return nil, fmt.Errorf("creating reservation: %w", err)
			}

			s.invalidate(ctx, room.ID)
			return r, nil
		})
	if err != nil {
		return nil, s.lockError(room.ID, err)
	}

	s.logger.Info("reservation created",
		zap.String("reservation_id", r.ID),
		zap.String("room_id", r.RoomID),
		zap.Time("check_in", r.CheckIn),
		zap.Time("check_out", r.CheckOut),
		zap.Float64("total_amount", r.TotalAmount),
	)
	s.publish(ctx, domain.EventReservationCreated, r)

	return r, nil
}

// Get returns a reservation by ID.
func (s *BookingService) Get(ctx context.Context, id string) (*domain.Reservation, error) {
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading reservation %s: %w", id, err)
	}
	return r, nil
}

// Confirm moves a pending reservation to confirmed.
func (s *BookingService) Confirm(ctx context.Context, id string) (*domain.Reservation, error) {
	return s.transition(ctx, id, domain.StatusConfirmed, domain.EventReservationConfirmed)
}

// Cancel moves an active reservation to cancelled, freeing the room.
func (s *BookingService) Cancel(ctx context.Context, id string) (*domain.Reservation, error) {
	return s.transition(ctx, id, domain.StatusCancelled, domain.EventReservationCancelled)
}

// Complete moves a confirmed reservation to completed after check-out.
func (s *BookingService) Complete(ctx context.Context, id string) (*domain.Reservation, error) {
	return s.transition(ctx, id, domain.StatusCompleted, domain.EventReservationCompleted)
}

// Reschedule moves an active reservation to a new stay on the same room.
// It runs under the room lock and ignores the reservation itself when searching for conflicts.
func (s *BookingService) Reschedule(ctx context.Context, id string, checkIn, checkOut time.Time) (*domain.Reservation, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading reservation %s: %w", id, err)
	}
	if !current.IsActive() {
		return nil, fmt.Errorf("%w: cannot reschedule a %s reservation", domain.ErrInvalidTransition, current.Status)
	}

	room, err := s.rooms.GetByID(ctx, current.RoomID)
	if err != nil {
		return nil, fmt.Errorf("loading room %s: %w", current.RoomID, err)
	}

	stay := domain.NewStay(checkIn, checkOut)
	if err := domain.ValidateStay(room, stay, current.Guests, s.now(), s.cfg.Rules).Err(); err != nil {
		return nil, err
	}

	r, err := locker.WithCriticalSection(ctx, s.locker, RoomLockKey(room.ID), s.cfg.LockTTL, s.cfg.LockRetry,
		func(ctx context.Context) (*domain.Reservation, error) {
			r, err := s.repo.GetByID(ctx, id)
			if err != nil {
				return nil, fmt.Errorf("reloading reservation %s: %w", id, err)
			}
			if !r.IsActive() {
				return nil, fmt.Errorf("%w: cannot reschedule a %s reservation", domain.ErrInvalidTransition, r.Status)
			}

			if err := s.ensureNoConflicts(ctx, room.ID, stay, r.ID); err != nil {
				return nil, err
			}

			r.CheckIn = stay.CheckIn
			r.CheckOut = stay.CheckOut
			r.TotalAmount = room.PriceFor(stay)
			r.UpdatedAt = s.now()
			if err := s.repo.Update(ctx, r, r.Status); err != nil {
				return nil, fmt.Errorf("updating reservation %s: %w", id, err)
			}

			s.invalidate(ctx, room.ID)
			return r, nil
		})
	if err != nil {
		return nil, s.lockError(room.ID, err)
	}

	s.logger.Info("reservation rescheduled",
		zap.String("reservation_id", r.ID),
		zap.Time("check_in", r.CheckIn),
		zap.Time("check_out", r.CheckOut),
	)
	s.publish(ctx, domain.EventReservationRescheduled, r)

	return r, nil
}

// Delete removes a reservation from the store of record.
func (s *BookingService) Delete(ctx context.Context, id string) error {
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("loading reservation %s: %w", id, err)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting reservation %s: %w", id, err)
	}

	s.invalidate(ctx, r.RoomID)
	s.logger.Info("reservation deleted", zap.String("reservation_id", id), zap.String("room_id", r.RoomID))
	s.publish(ctx, domain.EventReservationDeleted, r)

	return nil
}

// transition applies a status change guarded by the status read just before.
// A concurrent change in between makes the update fail with ErrConcurrentUpdate.
func (s *BookingService) transition(ctx context.Context, id string, to domain.ReservationStatus, event domain.EventType) (*domain.Reservation, error) {
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading reservation %s: %w", id, err)
	}

	from := r.Status
	if !from.CanTransitionTo(to) {
		return nil, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, from, to)
	}

	r.Status = to
	r.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, r, from); err != nil {
		return nil, fmt.Errorf("updating reservation %s: %w", id, err)
	}

	s.invalidate(ctx, r.RoomID)

	s.logger.Info("reservation status changed",
		zap.String("reservation_id", r.ID),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
	)
	s.publish(ctx, event, r)

	return r, nil
}

func (s *BookingService) ensureNoConflicts(ctx context.Context, roomID string, stay domain.Stay, excludeID string) error {
	ids, err := s.validator.FindConflicts(ctx, roomID, stay, excludeID)
	if err != nil {
		return err
	}
	if len(ids) > 0 {
		return &domain.BookingConflictError{RoomID: roomID, ConflictingIDs: ids}
	}
	return nil
}

// lockError hides lock internals behind ErrLockAcquisitionFailed and passes other errors through.
func (s *BookingService) lockError(roomID string, err error) error {
	if !errors.Is(err, locker.ErrNotAcquired) {
		return err
	}

	s.logger.Warn("room lock not acquired",
		zap.String("room_id", roomID),
		zap.Error(err),
	)
	return domain.ErrLockAcquisitionFailed
}

func (s *BookingService) invalidate(ctx context.Context, roomID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, roomID); err != nil {
		s.logger.Warn("cache degraded",
			zap.String("op", "invalidate"),
			zap.String("room_id", roomID),
			zap.Error(err),
		)
	}
}

func (s *BookingService) publish(ctx context.Context, eventType domain.EventType, r *domain.Reservation) {
	if s.events == nil {
		return
	}

	event := domain.ReservationEvent{Type: eventType, Reservation: r, OccurredAt: s.now().UTC()}
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Warn("publishing reservation event failed",
			zap.String("type", string(eventType)),
			zap.String("reservation_id", r.ID),
			zap.Error(err),
		)
	}
}
