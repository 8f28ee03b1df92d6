package resilience

import (
	"math"
	"time"
)

// Policy defines retry behavior for database operations. A non-zero
// ConnTimeout bounds each individual attempt; it does not bound the whole
// retry sequence, which only the caller's context limits.
type Policy struct {
	MaxAttempts     int
	BaseDelay       time.Duration
	MaxDelay        time.Duration
	BackoffMultiple float64
	ConnTimeout     time.Duration
}

// DefaultPolicy covers routine reads and writes.
var DefaultPolicy = Policy{
	MaxAttempts:     3,
	BaseDelay:       1 * time.Second,
	MaxDelay:        30 * time.Second,
	BackoffMultiple: 2.0,
	ConnTimeout:     10 * time.Second,
}

// CriticalPolicy carries a larger budget for operations whose failure is
// costlier than a routine one's (webhook persistence, message records).
var CriticalPolicy = Policy{
	MaxAttempts:     5,
	BaseDelay:       2 * time.Second,
	MaxDelay:        30 * time.Second,
	BackoffMultiple: 2.0,
	ConnTimeout:     10 * time.Second,
}

// Delay returns the backoff delay applied after the given 1-based attempt.
// The sequence is deterministic: base × multiple^(attempt-1), capped at MaxDelay.
func (p Policy) Delay(attempt int) time.Duration {
	delay := float64(p.BaseDelay) * math.Pow(p.BackoffMultiple, float64(attempt-1))
	if delay > float64(p.MaxDelay) {
		delay = float64(p.MaxDelay)
	}
	return time.Duration(delay)
}
