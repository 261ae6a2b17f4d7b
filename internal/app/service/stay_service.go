package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"hotel-booking-service/internal/domain"
)

// StayConfig holds the housekeeping settings.
type StayConfig struct {
	// PendingTTL is how long a reservation may stay pending. 0 disables expiry.
	PendingTTL time.Duration
	// BatchSize bounds how many reservations one sweep handles per task.
	BatchSize int
}

// StayService closes reservations whose time has passed.
type StayService struct {
	repo     domain.ReservationRepository
	bookings *BookingService
	cfg      StayConfig
	logger   *zap.Logger
	now      func() time.Time
}

// NewStayService creates a new StayService. Status changes go through bookings
// so the availability cache is invalidated and events are published.
func NewStayService(repo domain.ReservationRepository, bookings *BookingService, cfg StayConfig, logger *zap.Logger) *StayService {
	return &StayService{
		repo:     repo,
		bookings: bookings,
		cfg:      cfg,
		logger:   logger,
		now:      bookings.now,
	}
}

// SweepResult holds the outcome of one housekeeping task.
type SweepResult struct {
	Task     string
	Count    int
	Failed   int
	Duration time.Duration
	Error    error
}

type sweepTask struct {
	name   string
	filter func(now time.Time) (domain.ReservationFilter, bool)
	apply  func(ctx context.Context, id string) (*domain.Reservation, error)
}

// Sweep completes confirmed stays whose check-out has passed and cancels pending
// reservations older than PendingTTL. Both tasks run concurrently; partial failures are allowed.
func (s *StayService) Sweep(ctx context.Context) []SweepResult {
	tasks := []sweepTask{
		{
			name: "complete",
			filter: func(now time.Time) (domain.ReservationFilter, bool) {
				return domain.ReservationFilter{
					Statuses:       []domain.ReservationStatus{domain.StatusConfirmed},
					CheckOutBefore: now,
					Limit:          s.cfg.BatchSize,
				}, true
			},
			apply: s.bookings.Complete,
		},
		{
			name: "expire_pending",
			filter: func(now time.Time) (domain.ReservationFilter, bool) {
				if s.cfg.PendingTTL <= 0 {
					return domain.ReservationFilter{}, false
				}
				return domain.ReservationFilter{
					Statuses:      []domain.ReservationStatus{domain.StatusPending},
					CreatedBefore: now.Add(-s.cfg.PendingTTL),
					Limit:         s.cfg.BatchSize,
				}, true
			},
			apply: s.bookings.Cancel,
		},
	}

	now := s.now()
	results := make([]SweepResult, len(tasks))
	var wg sync.WaitGroup

	for i, task := range tasks {
		wg.Add(1)
		go func(idx int, t sweepTask) {
			defer wg.Done()
			results[idx] = s.runTask(ctx, t, now)
		}(i, task)
	}

	wg.Wait()

	total := 0
	for _, r := range results {
		total += r.Count
	}
	s.logger.Info("stay sweep completed", zap.Int("total_closed", total))

	return results
}

func (s *StayService) runTask(ctx context.Context, task sweepTask, now time.Time) SweepResult {
	start := time.Now()
	result := SweepResult{Task: task.name}

	filter, enabled := task.filter(now)
	if !enabled {
		return result
	}

	due, err := s.repo.Find(ctx, filter)
	if err != nil {
		result.Error = err
		result.Duration = time.Since(start)
		s.logger.Error("finding due reservations failed",
			zap.String("task", task.name),
			zap.Error(err),
		)
		return result
	}

	for _, r := range due {
		if _, err := task.apply(ctx, r.ID); err != nil {
			// Another instance or a user may have changed it since the query.
			result.Failed++
			s.logger.Warn("closing reservation failed",
				zap.String("task", task.name),
				zap.String("reservation_id", r.ID),
				zap.Error(err),
			)
			continue
		}
		result.Count++
	}

	result.Duration = time.Since(start)

	s.logger.Debug("sweep task completed",
		zap.String("task", task.name),
		zap.Int("count", result.Count),
		zap.Int("failed", result.Failed),
		zap.Duration("duration", result.Duration),
	)

	return result
}
