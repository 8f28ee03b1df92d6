package health

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeProber struct {
	latency time.Duration
	err     error
}

func (f *fakeProber) Probe(ctx context.Context) (time.Duration, error) {
	return f.latency, f.err
}

type fakePinger struct {
	err error
}

func (f *fakePinger) Ping(ctx context.Context) error { return f.err }

func TestCheck_AllHealthy(t *testing.T) {
	m := NewMonitor(&fakeProber{latency: 12 * time.Millisecond}, &fakePinger{})

	report := m.Check(context.Background())
	if report.SystemStatus != StatusHealthy {
		t.Errorf("SystemStatus = %s, want healthy", report.SystemStatus)
	}
	if report.Components["database"].LatencyMS != 12 {
		t.Errorf("database latency = %d, want 12", report.Components["database"].LatencyMS)
	}
}

func TestCheck_DatabaseDownIsCritical(t *testing.T) {
	m := NewMonitor(&fakeProber{err: errors.New("database unreachable: dial timeout")}, &fakePinger{})

	report := m.Check(context.Background())
	if report.SystemStatus != StatusCritical {
		t.Errorf("SystemStatus = %s, want critical", report.SystemStatus)
	}
	if report.Components["database"].Error == "" {
		t.Error("expected database error to be reported")
	}
}

func TestCheck_RedisDownIsDegraded(t *testing.T) {
	m := NewMonitor(&fakeProber{}, &fakePinger{err: errors.New("connection refused")})

	report := m.Check(context.Background())
	if report.SystemStatus != StatusDegraded {
		t.Errorf("SystemStatus = %s, want degraded", report.SystemStatus)
	}
}

func TestCheck_NoRedisConfigured(t *testing.T) {
	m := NewMonitor(&fakeProber{}, nil)

	report := m.Check(context.Background())
	if report.SystemStatus != StatusHealthy {
		t.Errorf("SystemStatus = %s, want healthy", report.SystemStatus)
	}
	if _, ok := report.Components["redis"]; ok {
		t.Error("redis component should be absent when not configured")
	}
}

func TestCheck_ReportIsCached(t *testing.T) {
	prober := &fakeProber{}
	m := NewMonitor(prober, nil)

	first := m.Check(context.Background())
	prober.err = errors.New("down")
	second := m.Check(context.Background())

	if first != second {
		t.Error("expected the cached report within the rate-limit window")
	}
}
