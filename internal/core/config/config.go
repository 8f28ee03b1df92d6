package config

import (
	"time"

	redisclient "github.com/workloadhq/insights/internal/infra/redis"
	"github.com/workloadhq/insights/internal/infra/storage/postgres"
	"github.com/workloadhq/insights/internal/infra/twilio"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server   ServerConfig       `yaml:"server"`
	Logging  LoggingConfig      `yaml:"logging"`
	Database postgres.Config    `yaml:"database"`
	Redis    redisclient.Config `yaml:"redis"`
	Twilio   twilio.Config      `yaml:"twilio"`
	Webhook  WebhookConfig      `yaml:"webhook"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// WebhookConfig holds settings for the Twilio webhook receiver.
type WebhookConfig struct {
	DedupTTL time.Duration `yaml:"dedup_ttl"` // how long a MessageSid is remembered
	AutoAck  bool          `yaml:"auto_ack"`  // reply to inbound messages with a confirmation
}
