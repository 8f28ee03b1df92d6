package resilience

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"
)

// recordingSleeper captures backoff delays instead of waiting.
type recordingSleeper struct {
	delays []time.Duration
}

func (r *recordingSleeper) sleep(_ context.Context, d time.Duration) error {
	r.delays = append(r.delays, d)
	return nil
}

func newTestExecutor() (*Executor, *recordingSleeper) {
	rec := &recordingSleeper{}
	e := NewExecutor(slog.New(slog.DiscardHandler))
	e.sleep = rec.sleep
	return e, rec
}

var errConnClosed = errors.New("server closed the connection unexpectedly")

func TestDo_SuccessFirstAttempt(t *testing.T) {
	e, rec := newTestExecutor()

	calls := 0
	got, err := DoValue(context.Background(), e, DefaultPolicy, func(ctx context.Context) (int, error) {
		calls++
		return 42, nil
	})
	if err != nil {
		t.Fatalf("DoValue returned error: %v", err)
	}
	if got != 42 {
		t.Errorf("got %d, want 42", got)
	}
	if calls != 1 {
		t.Errorf("op called %d times, want 1", calls)
	}
	if len(rec.delays) != 0 {
		t.Errorf("expected zero delays, got %v", rec.delays)
	}
}

func TestDo_TransientThenSuccess(t *testing.T) {
	e, rec := newTestExecutor()

	calls := 0
	got, err := DoValue(context.Background(), e, DefaultPolicy, func(ctx context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", errConnClosed
		}
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("DoValue returned error: %v", err)
	}
	if got != "ok" {
		t.Errorf("got %q, want %q", got, "ok")
	}
	if calls != 3 {
		t.Errorf("op called %d times, want 3", calls)
	}

	want := []time.Duration{1 * time.Second, 2 * time.Second}
	if len(rec.delays) != len(want) {
		t.Fatalf("got delays %v, want %v", rec.delays, want)
	}
	for i := range want {
		if rec.delays[i] != want[i] {
			t.Errorf("delay[%d] = %v, want %v", i, rec.delays[i], want[i])
		}
	}
}

func TestDo_Exhaustion(t *testing.T) {
	e, rec := newTestExecutor()

	calls := 0
	err := e.Do(context.Background(), DefaultPolicy, func(ctx context.Context) error {
		calls++
		return errConnClosed
	})
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var exhausted *ExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("expected *ExhaustedError, got %T: %v", err, err)
	}
	if exhausted.Attempts != 3 {
		t.Errorf("Attempts = %d, want 3", exhausted.Attempts)
	}
	if !errors.Is(err, errConnClosed) {
		t.Errorf("exhaustion error should wrap the last underlying error")
	}
	if calls != 3 {
		t.Errorf("op called %d times, want 3", calls)
	}
	if len(rec.delays) != 2 {
		t.Errorf("expected 2 delays (none after the final attempt), got %v", rec.delays)
	}
}

func TestDo_PermanentFailsImmediately(t *testing.T) {
	e, rec := newTestExecutor()

	errValidation := errors.New("value too long for type character varying(64)")
	calls := 0
	err := e.Do(context.Background(), DefaultPolicy, func(ctx context.Context) error {
		calls++
		return errValidation
	})
	if !errors.Is(err, errValidation) {
		t.Fatalf("expected the original error, got %v", err)
	}
	var exhausted *ExhaustedError
	if errors.As(err, &exhausted) {
		t.Error("permanent errors must not be wrapped in ExhaustedError")
	}
	if calls != 1 {
		t.Errorf("op called %d times, want 1", calls)
	}
	if len(rec.delays) != 0 {
		t.Errorf("expected zero delays, got %v", rec.delays)
	}
}

func TestDo_CriticalPolicyBudget(t *testing.T) {
	e, rec := newTestExecutor()

	calls := 0
	err := e.Do(context.Background(), CriticalPolicy, func(ctx context.Context) error {
		calls++
		return errConnClosed
	})

	var exhausted *ExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("expected *ExhaustedError, got %v", err)
	}
	if calls != 5 {
		t.Errorf("op called %d times, want 5", calls)
	}

	want := []time.Duration{2 * time.Second, 4 * time.Second, 8 * time.Second, 16 * time.Second}
	if len(rec.delays) != len(want) {
		t.Fatalf("got delays %v, want %v", rec.delays, want)
	}
	for i := range want {
		if rec.delays[i] != want[i] {
			t.Errorf("delay[%d] = %v, want %v", i, rec.delays[i], want[i])
		}
	}
}

func TestDo_ContextCanceledDuringBackoff(t *testing.T) {
	e := NewExecutor(slog.New(slog.DiscardHandler))
	e.sleep = func(ctx context.Context, d time.Duration) error {
		return context.Canceled
	}

	calls := 0
	err := e.Do(context.Background(), DefaultPolicy, func(ctx context.Context) error {
		calls++
		return errConnClosed
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Errorf("op called %d times, want 1", calls)
	}
}

func TestDo_AttemptTimeoutIsRetried(t *testing.T) {
	e, rec := newTestExecutor()

	policy := Policy{MaxAttempts: 2, BaseDelay: time.Second, MaxDelay: time.Second, BackoffMultiple: 2.0, ConnTimeout: 10 * time.Millisecond}

	calls := 0
	err := e.Do(context.Background(), policy, func(ctx context.Context) error {
		calls++
		if calls == 1 {
			<-ctx.Done() // blow the per-attempt budget
			return ctx.Err()
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected retry after attempt timeout, got %v", err)
	}
	if calls != 2 {
		t.Errorf("op called %d times, want 2", calls)
	}
	if len(rec.delays) != 1 {
		t.Errorf("expected 1 delay, got %v", rec.delays)
	}
}

func TestDo_CallerDeadlineNotRetried(t *testing.T) {
	e, rec := newTestExecutor()

	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	err := e.Do(ctx, DefaultPolicy, func(ctx context.Context) error {
		calls++
		cancel()
		return ctx.Err()
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Errorf("op called %d times, want 1", calls)
	}
	if len(rec.delays) != 0 {
		t.Errorf("expected zero delays, got %v", rec.delays)
	}
}

func TestPolicy_DelayCappedAtMax(t *testing.T) {
	p := Policy{MaxAttempts: 10, BaseDelay: 1 * time.Second, MaxDelay: 5 * time.Second, BackoffMultiple: 2.0}

	if d := p.Delay(1); d != 1*time.Second {
		t.Errorf("Delay(1) = %v, want 1s", d)
	}
	if d := p.Delay(3); d != 4*time.Second {
		t.Errorf("Delay(3) = %v, want 4s", d)
	}
	if d := p.Delay(5); d != 5*time.Second {
		t.Errorf("Delay(5) = %v, want cap 5s", d)
	}
}
