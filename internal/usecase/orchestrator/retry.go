package orchestrator

import (
	"context"
	"errors"
	"time"

	"github.com/UOR-Foundation/stone/internal/domain/workflow"
)

const (
	defaultMaxAttempts  = 3
	defaultInitialDelay = 1000 * time.Millisecond
)

// RetryPolicy bounds the exponential backoff applied to rate-limited
// collaborator calls. The zero value falls back to 3 attempts starting at 1s.
type RetryPolicy struct {
	MaxAttempts  int
	InitialDelay time.Duration

	// sleep is swapped by tests to observe delays without waiting.
	sleep func(ctx context.Context, d time.Duration) error
}

func (p RetryPolicy) normalized() RetryPolicy {
	out := p
	if out.MaxAttempts <= 0 {
		out.MaxAttempts = defaultMaxAttempts
	}
	if out.InitialDelay <= 0 {
		out.InitialDelay = defaultInitialDelay
	}
	if out.sleep == nil {
		out.sleep = sleepContext
	}
	return out
}

// Retry invokes op up to policy.MaxAttempts times. Only rate-limit classified
// failures are retried; everything else propagates immediately. The delay
// doubles after each retryable failure, and after the final attempt the last
// error is returned verbatim. Retry keeps no state across calls.
func Retry[T any](ctx context.Context, policy RetryPolicy, op func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if ctx == nil {
		return zero, errors.New("context is required")
	}

	p := policy.normalized()
	delay := p.InitialDelay

	for attempt := 1; ; attempt++ {
		out, err := op(ctx)
		if err == nil {
			return out, nil
		}
		if !workflow.IsRateLimit(err) {
			return zero, err
		}
		if attempt >= p.MaxAttempts {
			return zero, err
		}

		if sleepErr := p.sleep(ctx, delay); sleepErr != nil {
			return zero, sleepErr
		}
		delay *= 2
	}
}

// sleepContext waits for d or until the context is done, whichever is first.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
