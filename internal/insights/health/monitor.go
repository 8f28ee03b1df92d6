package health

import (
	"context"
	"sync"
	"time"
)

// DatabaseProber answers whether the database is reachable right now.
type DatabaseProber interface {
	Probe(ctx context.Context) (time.Duration, error)
}

// RedisPinger answers whether redis is reachable.
type RedisPinger interface {
	Ping(ctx context.Context) error
}

// Monitor aggregates health status from the service's dependencies.
type Monitor struct {
	db    DatabaseProber
	redis RedisPinger // nil when redis is not configured

	mu         sync.Mutex
	lastCheck  time.Time
	lastReport *Report
}

// NewMonitor creates a new health monitor.
func NewMonitor(db DatabaseProber, redis RedisPinger) *Monitor {
	return &Monitor{db: db, redis: redis}
}

// Check probes all dependencies and aggregates a report. Results are cached
// briefly so a polling load balancer cannot hammer the database.
func (m *Monitor) Check(ctx context.Context) *Report {
	m.mu.Lock()
	defer m.mu.Unlock()

	if time.Since(m.lastCheck) < 10*time.Second && m.lastReport != nil {
		return m.lastReport
	}

	report := &Report{
		SystemStatus: StatusHealthy,
		Components:   make(map[string]ComponentHealth),
	}

	dbHealth := ComponentHealth{Name: "database", Status: StatusHealthy}
	latency, err := m.db.Probe(ctx)
	dbHealth.LatencyMS = latency.Milliseconds()
	if err != nil {
		// No database means no dashboard at all
		dbHealth.Status = StatusCritical
		dbHealth.Error = err.Error()
	}
	report.Components["database"] = dbHealth

	if m.redis != nil {
		redisHealth := ComponentHealth{Name: "redis", Status: StatusHealthy}
		start := time.Now()
		if err := m.redis.Ping(ctx); err != nil {
			// Losing dedup only risks duplicate webhook processing
			redisHealth.Status = StatusDegraded
			redisHealth.Error = err.Error()
		}
		redisHealth.LatencyMS = time.Since(start).Milliseconds()
		report.Components["redis"] = redisHealth
	}

	// Worst case wins
	for _, c := range report.Components {
		if c.Status == StatusCritical {
			report.SystemStatus = StatusCritical
			break
		}
		if c.Status == StatusDegraded {
			report.SystemStatus = StatusDegraded
		}
	}

	m.lastCheck = time.Now()
	m.lastReport = report
	return report
}
