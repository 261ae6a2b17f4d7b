package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// instantTimer fires immediately and records requested waits.
type instantTimer struct {
	waits []time.Duration
	c     chan time.Time
}

func newInstantTimer() *instantTimer {
	return &instantTimer{c: make(chan time.Time, 1)}
}

func (t *instantTimer) Start(d time.Duration) {
	t.waits = append(t.waits, d)
	t.c <- time.Now()
}

func (t *instantTimer) Stop() {}

func (t *instantTimer) C() <-chan time.Time { return t.c }

func TestDo_SucceedsFirstAttempt(t *testing.T) {
	timer := newInstantTimer()
	calls := 0

	ok, err := Do(context.Background(), Policy{Delay: time.Second, MaxRetries: 3},
		func(_ context.Context, _ int) (bool, error) {
			calls++
			return true, nil
		}, WithTimer(timer))

	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, calls)
	assert.Empty(t, timer.waits)
}

func TestDo_RetriesUntilDone(t *testing.T) {
	timer := newInstantTimer()

	ok, err := Do(context.Background(), Policy{Delay: 50 * time.Millisecond, MaxRetries: 5},
		func(_ context.Context, attempt int) (bool, error) {
			return attempt == 3, nil
		}, WithTimer(timer))

	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []time.Duration{50 * time.Millisecond, 50 * time.Millisecond}, timer.waits)
}

func TestDo_ExhaustedWithoutError(t *testing.T) {
	timer := newInstantTimer()
	calls := 0

	ok, err := Do(context.Background(), Policy{Delay: 10 * time.Millisecond, MaxRetries: 2},
		func(_ context.Context, _ int) (bool, error) {
			calls++
			return false, nil
		}, WithTimer(timer))

	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 3, calls, "first attempt plus two retries")
}

func TestDo_ErrorOnEarlierAttemptIsRetried(t *testing.T) {
	timer := newInstantTimer()
	storeErr := errors.New("connection refused")

	ok, err := Do(context.Background(), Policy{Delay: time.Millisecond, MaxRetries: 2},
		func(_ context.Context, attempt int) (bool, error) {
			if attempt == 1 {
				return false, storeErr
			}
			return attempt == 2, nil
		}, WithTimer(timer))

	require.NoError(t, err)
	assert.True(t, ok)
}

func TestDo_ErrorOnFinalAttemptIsReturned(t *testing.T) {
	timer := newInstantTimer()
	storeErr := errors.New("connection refused")

	ok, err := Do(context.Background(), Policy{Delay: time.Millisecond, MaxRetries: 1},
		func(_ context.Context, attempt int) (bool, error) {
			if attempt == 2 {
				return false, storeErr
			}
			return false, nil
		}, WithTimer(timer))

	assert.False(t, ok)
	assert.ErrorIs(t, err, storeErr)
}

func TestDo_ContentionOnFinalAttemptHidesEarlierError(t *testing.T) {
	timer := newInstantTimer()

	ok, err := Do(context.Background(), Policy{Delay: time.Millisecond, MaxRetries: 1},
		func(_ context.Context, attempt int) (bool, error) {
			if attempt == 1 {
				return false, errors.New("timeout")
			}
			return false, nil
		}, WithTimer(timer))

	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDo_NotifyReportsAttempts(t *testing.T) {
	timer := newInstantTimer()
	var notified []int

	_, _ = Do(context.Background(), Policy{Delay: time.Millisecond, MaxRetries: 2},
		func(_ context.Context, _ int) (bool, error) {
			return false, nil
		},
		WithTimer(timer),
		WithNotify(func(attempt int, err error, _ time.Duration) {
			assert.NoError(t, err)
			notified = append(notified, attempt)
		}),
	)

	assert.Equal(t, []int{1, 2}, notified)
}

func TestDo_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ok, err := Do(ctx, Policy{Delay: time.Hour, MaxRetries: 3},
		func(_ context.Context, _ int) (bool, error) {
			return false, nil
		})

	assert.False(t, ok)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPolicy_Attempts(t *testing.T) {
	assert.Equal(t, 1, Policy{}.Attempts())
	assert.Equal(t, 4, Policy{MaxRetries: 3}.Attempts())
	assert.Equal(t, 1, Policy{MaxRetries: -2}.Attempts())
}
