// Package resilience wraps database operations with transient-error
// classification and exponential backoff, so that connection drops from a
// managed Postgres provider do not surface as request failures.
package resilience

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/workloadhq/insights/internal/insights/metrics"
)

// ExhaustedError reports that every permitted attempt failed with a
// transient error. It unwraps to the last underlying error so callers can
// distinguish "gave up after N tries" from "the operation itself is invalid".
type ExhaustedError struct {
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("gave up after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error { return e.Err }

// Executor runs operations under a retry policy. It holds no shared state
// across calls; concurrent invocations are fully independent.
type Executor struct {
	log   *slog.Logger
	sleep func(ctx context.Context, d time.Duration) error
}

// NewExecutor creates an Executor that logs retry attempts to log.
func NewExecutor(log *slog.Logger) *Executor {
	if log == nil {
		log = slog.Default()
	}
	return &Executor{log: log, sleep: sleepCtx}
}

// Do executes op under the given policy.
//
// Success on any attempt returns immediately; a permanent error propagates
// unchanged on first occurrence; transient errors are retried with
// exponential backoff until the budget is spent, after which an
// *ExhaustedError wrapping the last transient error is returned.
//
// op must be safe to invoke more than once: the executor does not
// deduplicate side effects across retries. Callers needing a hard deadline
// across the whole sequence bound ctx themselves.
func (e *Executor) Do(ctx context.Context, policy Policy, op func(ctx context.Context) error) error {
	_, err := DoValue(ctx, e, policy, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}

// DoValue is Do for operations that produce a value.
func DoValue[T any](ctx context.Context, e *Executor, policy Policy, op func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error

	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}

	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		result, err := runAttempt(ctx, policy.ConnTimeout, op)
		if err == nil {
			return result, nil
		}

		lastErr = err

		class := Classify(err)
		if class == ClassPermanent {
			return zero, err
		}

		metrics.DBTransientErrors.Inc()

		if attempt == policy.MaxAttempts {
			break
		}

		delay := policy.Delay(attempt)
		e.log.Warn("retrying database operation",
			"attempt", attempt,
			"max_attempts", policy.MaxAttempts,
			"delay", delay,
			"error_class", class.String(),
			"error", err)
		metrics.DBRetryAttempts.Inc()

		if serr := e.sleep(ctx, delay); serr != nil {
			return zero, serr
		}
	}

	metrics.DBRetriesExhausted.Inc()
	return zero, &ExhaustedError{Attempts: policy.MaxAttempts, Err: lastErr}
}

// runAttempt invokes op once, bounded by the policy's per-attempt timeout
// when one is set. An attempt that ran out its own budget is reported as
// ErrAttemptTimeout so it does not masquerade as caller cancellation.
func runAttempt[T any](ctx context.Context, timeout time.Duration, op func(ctx context.Context) (T, error)) (T, error) {
	if timeout <= 0 {
		return op(ctx)
	}
	actx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	result, err := op(actx)
	if err != nil && actx.Err() != nil && ctx.Err() == nil {
		return result, fmt.Errorf("%w after %s: %v", ErrAttemptTimeout, timeout, err)
	}
	return result, err
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
