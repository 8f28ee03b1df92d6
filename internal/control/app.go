// Package control wires the application together and manages its lifecycle.
package control

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/pressly/goose/v3"

	"github.com/workloadhq/insights/internal/api"
	"github.com/workloadhq/insights/internal/core/config"
	redisclient "github.com/workloadhq/insights/internal/infra/redis"
	"github.com/workloadhq/insights/internal/infra/storage/memory"
	"github.com/workloadhq/insights/internal/infra/storage/postgres"
	"github.com/workloadhq/insights/internal/infra/twilio"
	"github.com/workloadhq/insights/internal/insights/health"
)

// App is the main application struct that manages the service lifecycle.
type App struct {
	cfg    *config.AppConfig
	log    *slog.Logger
	db     *postgres.DB
	redis  *redisclient.Client
	server *api.Server
}

// ackSender adapts the Twilio client to the webhook's acknowledgment hook.
type ackSender struct {
	client *twilio.Client
}

func (a *ackSender) SendWhatsApp(ctx context.Context, to, body string) error {
	_, err := a.client.SendWhatsApp(ctx, to, body)
	return err
}

// NewApp creates a new App instance with all dependencies initialized.
func NewApp(ctx context.Context, cfg *config.AppConfig, log *slog.Logger) (*App, error) {
	// 1. Storage
	var db *postgres.DB
	var prober health.DatabaseProber
	var repos api.Repos
	var err error

	if cfg.Database.URL != "" {
		db, err = postgres.NewDB(ctx, cfg.Database, log)
		if err != nil {
			return nil, fmt.Errorf("failed to init db: %w", err)
		}

		if err := goose.SetDialect("postgres"); err != nil {
			return nil, err
		}
		if err := goose.Up(db.DB.DB, "migrations"); err != nil {
			return nil, fmt.Errorf("failed to migrate db: %w", err)
		}

		prober = db
		repos = api.Repos{
			Users:        postgres.NewUserRepo(db),
			Activities:   postgres.NewActivityRepo(db),
			Categories:   postgres.NewCategoryRepo(db),
			Geofences:    postgres.NewGeofenceRepo(db),
			LLMProviders: postgres.NewLLMProviderRepo(db),
			Messages:     postgres.NewMessageRepo(db),
			Reports:      postgres.NewReportRepo(db),
		}
		log.Info("Using PostgreSQL storage")
	} else {
		store := memory.NewMemoryStorage()
		prober = store
		repos = api.Repos{
			Users:        memory.NewUserRepo(store),
			Activities:   memory.NewActivityRepo(store),
			Categories:   memory.NewCategoryRepo(store),
			Geofences:    memory.NewGeofenceRepo(store),
			LLMProviders: memory.NewLLMProviderRepo(store),
			Messages:     memory.NewMessageRepo(store),
			Reports:      memory.NewReportRepo(store),
		}
		log.Warn("No database configured, using in-memory storage")
	}

	// 2. Redis (optional; webhook dedup degrades gracefully without it)
	var rdb *redisclient.Client
	var dedup api.Deduper
	if cfg.Redis.URL != "" {
		rdb, err = redisclient.NewClient(cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("failed to init redis: %w", err)
		}
		dedup = rdb
		log.Info("Webhook dedup enabled")
	} else {
		log.Warn("Redis not configured, webhook dedup disabled")
	}

	// 3. Twilio (optional; without it inbound messages are stored but not acked)
	var sender api.AckSender
	if cfg.Twilio.AccountSID != "" {
		sender = &ackSender{client: twilio.NewClient(cfg.Twilio)}
	}

	// 4. Health monitor
	var redisPinger health.RedisPinger
	if rdb != nil {
		redisPinger = rdb
	}
	monitor := health.NewMonitor(prober, redisPinger)

	// 5. HTTP server
	server := api.NewServer(log, cfg.Server.Port, repos, monitor, dedup, sender, api.WebhookOptions{
		DedupTTL: cfg.Webhook.DedupTTL,
		AutoAck:  cfg.Webhook.AutoAck,
	})

	return &App{
		cfg:    cfg,
		log:    log,
		db:     db,
		redis:  rdb,
		server: server,
	}, nil
}

// Start starts the HTTP server and background collectors.
func (a *App) Start(ctx context.Context) error {
	if a.db != nil {
		a.db.StartMetricsCollector(ctx)
	}

	go func() {
		a.log.Info("API server listening", "port", a.cfg.Server.Port)
		if err := a.server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("API server stopped", "error", err)
		}
	}()

	return nil
}

// Stop gracefully shuts the service down.
func (a *App) Stop(ctx context.Context) error {
	if err := a.server.Stop(ctx); err != nil {
		a.log.Error("Error stopping API server", "error", err)
	}

	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.Error("Error closing redis", "error", err)
		}
	}

	if a.db != nil {
		if err := a.db.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
	}

	a.log.Info("Shutdown complete")
	return nil
}
