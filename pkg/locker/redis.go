package locker

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"hotel-booking-service/pkg/retry"
)

// RedisLocker implements DistributedLocker on a single Redis node using Redsync.
//
// Each attempt is one SET key value NX PX ttl. Release runs Redsync's compare-and-delete
// script, so a holder whose lock expired and was taken over cannot delete the new owner's key.
type RedisLocker struct {
	client   redis.UniversalClient
	rs       *redsync.Redsync
	logger   *zap.Logger
	retryOpt []retry.Option
}

// RedisLockerOption configures a RedisLocker.
type RedisLockerOption func(*RedisLocker)

// WithRetryOptions passes options to the retry loop, e.g. a fake timer in tests.
func WithRetryOptions(opts ...retry.Option) RedisLockerOption {
	return func(r *RedisLocker) { r.retryOpt = append(r.retryOpt, opts...) }
}

// NewRedisLocker creates a new Redis-based distributed locker.
func NewRedisLocker(client redis.UniversalClient, logger *zap.Logger, opts ...RedisLockerOption) *RedisLocker {
	r := &RedisLocker{
		client: client,
		rs:     redsync.New(goredis.NewPool(client)),
		logger: logger,
	}
	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Acquire implements DistributedLocker.
func (r *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration, policy retry.Policy) (Lock, bool, error) {
	var held *redisLock

	opts := append([]retry.Option{
		retry.WithNotify(func(attempt int, err error, wait time.Duration) {
			r.logger.Debug("lock busy, retrying",
				zap.String("key", key),
				zap.Int("attempt", attempt),
				zap.Duration("wait", wait),
				zap.Error(err),
			)
		}),
	}, r.retryOpt...)

	acquired, err := retry.Do(ctx, policy, func(ctx context.Context, _ int) (bool, error) {
		lock, ok, err := r.tryAcquire(ctx, key, ttl)
		if ok {
			held = lock
		}
		return ok, err
	}, opts...)
	if err != nil {
		r.logger.Warn("lock acquisition failed",
			zap.String("key", key),
			zap.Int("attempts", policy.Attempts()),
			zap.Error(err),
		)
		return nil, false, fmt.Errorf("acquire lock %s: %w", key, err)
	}
	if !acquired {
		r.logger.Debug("lock still held after retries",
			zap.String("key", key),
			zap.Int("attempts", policy.Attempts()),
		)
		return nil, false, nil
	}

	r.logger.Debug("lock acquired",
		zap.String("key", key),
		zap.Duration("ttl", ttl),
	)

	return held, true, nil
}

// tryAcquire makes a single, non-blocking acquisition attempt.
func (r *RedisLocker) tryAcquire(ctx context.Context, key string, ttl time.Duration) (*redisLock, bool, error) {
	mutex := r.rs.NewMutex(
		key,
		redsync.WithExpiry(ttl),
		redsync.WithTries(1),
		redsync.WithGenValueFunc(newOwnerValue),
	)

	err := mutex.TryLockContext(ctx)
	if err != nil {
		if isTaken(err) {
			return nil, false, nil
		}
		return nil, false, err
	}

	return &redisLock{mutex: mutex, logger: r.logger}, true, nil
}

// TTL implements DistributedLocker.
func (r *RedisLocker) TTL(ctx context.Context, key string) (time.Duration, bool, error) {
	d, err := r.client.PTTL(ctx, key).Result()
	if err != nil {
		return 0, false, fmt.Errorf("ttl of lock %s: %w", key, err)
	}

	// -2: key missing, -1: key without expiry
	switch {
	case d == -2*time.Nanosecond || d == -2*time.Millisecond:
		return 0, false, nil
	case d < 0:
		return 0, true, nil
	}

	return d, true, nil
}

// isTaken tells contention apart from store failures.
// Redsync reports contention as ErrFailed, *ErrTaken, or wrapped errors whose message
// says the lock is already taken.
func isTaken(err error) bool {
	var taken *redsync.ErrTaken
	var nodeTaken *redsync.ErrNodeTaken

	return errors.Is(err, redsync.ErrFailed) ||
		errors.As(err, &taken) ||
		errors.As(err, &nodeTaken) ||
		strings.Contains(err.Error(), "lock already taken")
}

// newOwnerValue generates an unguessable owner value: unix nanos plus a random UUID.
func newOwnerValue() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}

	return strconv.FormatInt(time.Now().UnixNano(), 10) + "-" + id.String(), nil
}

type redisLock struct {
	mutex  *redsync.Mutex
	logger *zap.Logger
}

func (l *redisLock) Key() string   { return l.mutex.Name() }
func (l *redisLock) Token() string { return l.mutex.Value() }

// Release implements Lock.
func (l *redisLock) Release(ctx context.Context) bool {
	ok, err := l.mutex.UnlockContext(ctx)
	if err != nil {
		if errors.Is(err, redsync.ErrLockAlreadyExpired) || isTaken(err) {
			l.logger.Warn("lock expired or taken over before release",
				zap.String("key", l.Key()),
			)
			return false
		}
		l.logger.Warn("lock release failed, relying on ttl",
			zap.String("key", l.Key()),
			zap.Error(err),
		)
		return false
	}

	if ok {
		l.logger.Debug("lock released", zap.String("key", l.Key()))
	} else {
		l.logger.Warn("lock not owned by this holder anymore", zap.String("key", l.Key()))
	}

	return ok
}
