package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx via database/sql
	"github.com/jmoiron/sqlx"

	"github.com/workloadhq/insights/internal/infra/storage/resilience"
	"github.com/workloadhq/insights/internal/insights/metrics"
)

// ProbeTimeout bounds the connectivity probe used by the health endpoint.
// It is independent of the retry policies that wrap business operations.
const ProbeTimeout = 5 * time.Second

// Config holds PostgreSQL connection configuration.
type Config struct {
	URL         string        `yaml:"url"`
	MaxConns    int           `yaml:"max_conns"`
	MinConns    int           `yaml:"min_conns"`
	ConnTimeout time.Duration `yaml:"conn_timeout"` // per-attempt dial/statement budget
}

// DB wraps the PostgreSQL connection pool together with the retry executor
// all repositories run through. The pool is the only shared resource;
// repositories hold no state of their own.
type DB struct {
	*sqlx.DB
	retry *resilience.Executor
}

// NewDB creates a new database connection pool.
func NewDB(ctx context.Context, cfg Config, log *slog.Logger) (*DB, error) {
	dsn := cfg.URL
	if cfg.ConnTimeout > 0 {
		var err error
		if dsn, err = withConnectTimeout(dsn, cfg.ConnTimeout); err != nil {
			return nil, err
		}
	}

	db, err := sqlx.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if cfg.MaxConns > 0 {
		db.SetMaxOpenConns(cfg.MaxConns)
	} else {
		db.SetMaxOpenConns(10)
	}

	if cfg.MinConns > 0 {
		db.SetMaxIdleConns(cfg.MinConns)
	} else {
		db.SetMaxIdleConns(2)
	}

	db.SetConnMaxLifetime(time.Hour)
	db.SetConnMaxIdleTime(30 * time.Minute)

	// Test connection
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{
		DB:    db,
		retry: resilience.NewExecutor(log),
	}, nil
}

// Retry exposes the executor so callers outside this package can wrap
// multi-statement work in a policy.
func (db *DB) Retry() *resilience.Executor {
	return db.retry
}

// Probe answers "is the database reachable right now" for the health
// endpoint, reporting the observed round-trip latency.
func (db *DB) Probe(ctx context.Context) (time.Duration, error) {
	ctx, cancel := context.WithTimeout(ctx, ProbeTimeout)
	defer cancel()

	start := time.Now()
	err := db.PingContext(ctx)
	latency := time.Since(start)

	metrics.DBProbeLatency.Observe(latency.Seconds())
	if err != nil {
		return latency, fmt.Errorf("database unreachable: %w", err)
	}
	return latency, nil
}

// withConnectTimeout sets the per-attempt dial budget on the DSN. Postgres
// only accepts whole seconds here.
func withConnectTimeout(dsn string, timeout time.Duration) (string, error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return "", fmt.Errorf("failed to parse database URL: %w", err)
	}
	q := u.Query()
	secs := int(timeout / time.Second)
	if secs < 1 {
		secs = 1
	}
	q.Set("connect_timeout", strconv.Itoa(secs))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// StartMetricsCollector starts a background goroutine to collect pool metrics.
func (db *DB) StartMetricsCollector(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				stats := db.Stats()
				if stats.MaxOpenConnections > 0 {
					usage := float64(stats.OpenConnections) / float64(stats.MaxOpenConnections) * 100
					metrics.DBConnectionPoolUsage.Set(usage)
				}
			}
		}
	}()
}
