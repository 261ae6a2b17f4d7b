// Package retry provides a bounded retry combinator with constant backoff.
//
// It is independent of what is being retried: the operation reports whether it is
// done and, optionally, an error. The waiting between attempts goes through a
// backoff.Timer so tests can replace real sleeps.
package retry

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Policy bounds how often and how fast an operation is retried.
type Policy struct {
	// Delay is the wait between two attempts.
	Delay time.Duration
	// MaxRetries is the number of attempts after the first one.
	MaxRetries int
}

// Attempts returns the total number of attempts the policy allows.
func (p Policy) Attempts() int {
	if p.MaxRetries < 0 {
		return 1
	}
	return p.MaxRetries + 1
}

// Operation is one attempt. attempt starts at 1.
// Returning done=true stops the loop. A non-nil error marks the attempt as failed
// but still retryable; it is only reported if it happened on the last attempt.
type Operation func(ctx context.Context, attempt int) (done bool, err error)

// Option configures Do.
type Option func(*options)

type options struct {
	timer  backoff.Timer
	notify func(attempt int, err error, wait time.Duration)
}

// WithTimer replaces the timer used to wait between attempts.
func WithTimer(t backoff.Timer) Option {
	return func(o *options) { o.timer = t }
}

// WithNotify registers a callback invoked before each wait.
func WithNotify(fn func(attempt int, err error, wait time.Duration)) Option {
	return func(o *options) { o.notify = fn }
}

// errNotDone keeps the backoff loop going when an attempt neither succeeded nor failed.
var errNotDone = errors.New("retry: attempt not done")

// Do runs op until it reports done or the policy is exhausted.
//
// It returns (true, nil) on success, (false, nil) when every attempt finished without
// being done, and (false, err) when the final attempt returned err or ctx was cancelled
// while waiting.
func Do(ctx context.Context, p Policy, op Operation, opts ...Option) (bool, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	var (
		attempt int
		lastErr error
		done    bool
	)

	b := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(p.Delay), uint64(p.Attempts()-1)),
		ctx,
	)

	wrapped := func() error {
		attempt++
		ok, err := op(ctx, attempt)
		lastErr = err
		if ok {
			done = true
			return nil
		}
		if err != nil {
			return err
		}
		return errNotDone
	}

	notify := func(err error, wait time.Duration) {
		if o.notify != nil {
			if errors.Is(err, errNotDone) {
				err = nil
			}
			o.notify(attempt, err, wait)
		}
	}

	err := backoff.RetryNotifyWithTimer(wrapped, b, notify, o.timer)
	if done {
		return true, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil && attempt < p.Attempts() {
		return false, ctxErr
	}
	if errors.Is(err, errNotDone) {
		return false, nil
	}

	return false, lastErr
}
