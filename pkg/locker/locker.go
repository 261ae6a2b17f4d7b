// Package locker provides distributed locking capabilities for coordinating
// critical sections across multiple service instances.
package locker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hotel-booking-service/pkg/retry"
)

// ErrNotAcquired is returned by WithCriticalSection when the lock could not be
// taken within the retry budget, or the store failed on the last attempt.
var ErrNotAcquired = errors.New("lock acquisition failed")

// DistributedLocker provides distributed lock capabilities across multiple instances.
// Implementations must be safe for concurrent use.
//
// Typical usage:
//
//	lock, acquired, err := locker.Acquire(ctx, "my-lock", 10*time.Second, retry.Policy{
//	    Delay:      100 * time.Millisecond,
//	    MaxRetries: 5,
//	})
//	if err != nil {
//	    return err
//	}
//	if !acquired {
//	    // Another instance holds the lock
//	    return nil
//	}
//	defer lock.Release(ctx)
type DistributedLocker interface {
	// Acquire attempts to take the lock identified by key with a fresh owner value.
	// On contention it waits policy.Delay and retries up to policy.MaxRetries times.
	// It returns acquired=false with a nil error when every attempt found the lock held.
	// A store failure is only returned when it happens on the final attempt.
	// The lock expires after ttl if never released.
	Acquire(ctx context.Context, key string, ttl time.Duration, policy retry.Policy) (Lock, bool, error)

	// TTL reports the remaining lifetime of key. exists is false when no lock is held.
	// Diagnostic only.
	TTL(ctx context.Context, key string) (ttl time.Duration, exists bool, err error)
}

// Lock is a single successful acquisition.
type Lock interface {
	// Key returns the locked resource key.
	Key() string

	// Token returns the owner value written for this acquisition.
	Token() string

	// Release deletes the lock only if it still carries this acquisition's token.
	// It reports whether the delete happened. Store failures are logged, never returned:
	// the TTL eventually frees the key.
	Release(ctx context.Context) bool
}

// WithCriticalSection runs fn while holding key.
//
// fn only runs if the lock was acquired and the lock is released whatever fn returns.
// fn receives a context that is not cancelled with ctx: once entered, the section runs
// to completion and the lock TTL is the only bound on it.
func WithCriticalSection[T any](
	ctx context.Context,
	l DistributedLocker,
	key string,
	ttl time.Duration,
	policy retry.Policy,
	fn func(ctx context.Context) (T, error),
) (T, error) {
	var zero T

	lock, acquired, err := l.Acquire(ctx, key, ttl, policy)
	if err != nil {
		return zero, fmt.Errorf("%w: %s: %w", ErrNotAcquired, key, err)
	}
	if !acquired {
		return zero, fmt.Errorf("%w: %s", ErrNotAcquired, key)
	}

	sectionCtx := context.WithoutCancel(ctx)
	defer lock.Release(sectionCtx)

	return fn(sectionCtx)
}
