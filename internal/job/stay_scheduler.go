// Package job provides background job schedulers.
package job

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"hotel-booking-service/internal/app/service"
	"hotel-booking-service/pkg/locker"
	"hotel-booking-service/pkg/retry"
)

// SchedulerLockKey guards the sweep across instances.
const SchedulerLockKey = "lock:scheduler:stay-sweep"

// Sweeper runs one housekeeping pass.
type Sweeper interface {
	Sweep(ctx context.Context) []service.SweepResult
}

// StayScheduler runs periodic stay sweeps with distributed locking
// so that only one instance sweeps per interval.
type StayScheduler struct {
	sweeper   Sweeper
	interval  time.Duration
	timeout   time.Duration
	onStartup bool
	logger    *zap.Logger
	locker    locker.DistributedLocker

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// SchedulerConfig holds stay scheduler configuration.
type SchedulerConfig struct {
	Interval  time.Duration
	Timeout   time.Duration
	OnStartup bool
}

// NewStayScheduler creates a new StayScheduler.
func NewStayScheduler(
	sweeper Sweeper,
	cfg SchedulerConfig,
	logger *zap.Logger,
	locker locker.DistributedLocker,
) *StayScheduler {
	return &StayScheduler{
		sweeper:   sweeper,
		interval:  cfg.Interval,
		timeout:   cfg.Timeout,
		onStartup: cfg.OnStartup,
		logger:    logger,
		locker:    locker,
	}
}

// Start begins the background sweep loop. With OnStartup set, the first sweep
// runs immediately instead of after one interval.
func (s *StayScheduler) Start() {
	s.ctx, s.cancel = context.WithCancel(context.Background())

	s.logger.Info("starting stay scheduler",
		zap.Duration("interval", s.interval),
		zap.Bool("run_on_startup", s.onStartup),
	)

	s.wg.Add(1)
	go s.run()
}

// Stop gracefully stops the scheduler and waits for a running sweep.
func (s *StayScheduler) Stop() {
	s.logger.Info("stopping stay scheduler")
	s.cancel()
	s.wg.Wait()
	s.logger.Info("stay scheduler stopped")
}

func (s *StayScheduler) run() {
	defer s.wg.Done()

	if s.onStartup {
		s.executeSweep()
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.executeSweep()
		}
	}
}

// executeSweep runs one sweep if this instance wins the lock.
//
// The lock TTL equals the interval (cooldown model): after a clean sweep the lock is left
// to expire so no other instance sweeps again in the same interval. After a failed task
// the lock is released at once so another instance can retry.
func (s *StayScheduler) executeSweep() {
	lock, acquired, err := s.locker.Acquire(s.ctx, SchedulerLockKey, s.interval, retry.Policy{})
	if err != nil {
		s.logger.Error("failed to acquire distributed lock", zap.Error(err))
		return
	}
	if !acquired {
		s.logger.Debug("another instance is sweeping, skipping execution")
		return
	}

	ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()

	results := s.sweeper.Sweep(ctx)

	closed := 0
	hasError := false
	for _, r := range results {
		if r.Error != nil {
			hasError = true
			s.logger.Warn("sweep task failed",
				zap.String("task", r.Task),
				zap.Error(r.Error),
			)
			continue
		}
		closed += r.Count
	}

	if hasError {
		if !lock.Release(context.WithoutCancel(s.ctx)) {
			s.logger.Warn("lock already gone after sweep error")
		}
		s.logger.Info("sweep completed with errors, lock released for retry",
			zap.Int("closed", closed),
		)
		return
	}

	s.logger.Info("sweep completed, lock held for cooldown",
		zap.Int("closed", closed),
		zap.Duration("cooldown", s.interval),
	)
}
