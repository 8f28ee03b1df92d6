package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client wraps Redis operations for webhook idempotency. Twilio redelivers
// a webhook when it does not get a timely 2xx, so every delivery carries a
// MessageSid we remember for a while.
type Client struct {
	rdb *redis.Client
}

// Config holds Redis connection configuration.
type Config struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
}

// NewClient creates a new Redis client.
func NewClient(cfg Config) (*Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}

	rdb := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Ping checks connectivity for the health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func dedupKey(sid string) string {
	return fmt.Sprintf("webhook_seen:%s", sid)
}

// MarkDelivery records a MessageSid and reports whether this is the first
// time it was seen. Subsequent deliveries within ttl return false.
func (c *Client) MarkDelivery(ctx context.Context, sid string, ttl time.Duration) (bool, error) {
	first, err := c.rdb.SetNX(ctx, dedupKey(sid), 1, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("setnx failed: %w", err)
	}
	return first, nil
}

// ClearDelivery forgets a MessageSid so a redelivery can be processed again.
// Called when handling a delivery failed after it was marked.
func (c *Client) ClearDelivery(ctx context.Context, sid string) error {
	if err := c.rdb.Del(ctx, dedupKey(sid)).Err(); err != nil {
		return fmt.Errorf("del failed: %w", err)
	}
	return nil
}
