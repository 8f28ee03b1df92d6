package storage

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/workloadhq/insights/internal/core/domain"
)

// UserRepository handles user storage operations
type UserRepository interface {
	// Save inserts or updates a user
	Save(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by ID, nil if not found
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByPhone retrieves a user by phone number, nil if not found
	GetByPhone(ctx context.Context, phone string) (*domain.User, error)

	// List retrieves all users
	List(ctx context.Context) ([]*domain.User, error)

	// Delete removes a user
	Delete(ctx context.Context, id uuid.UUID) error
}

// ActivityRepository handles activity storage operations
type ActivityRepository interface {
	// Save inserts an activity
	Save(ctx context.Context, activity *domain.Activity) error

	// GetByID retrieves an activity by ID, nil if not found
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Activity, error)

	// ListByUser retrieves activities for a user within a time window
	ListByUser(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*domain.Activity, error)

	// ListRecent retrieves the most recent activities across all users
	ListRecent(ctx context.Context, limit int) ([]*domain.Activity, error)

	// Delete removes an activity
	Delete(ctx context.Context, id uuid.UUID) error
}

// CategoryRepository handles category storage operations
type CategoryRepository interface {
	Save(ctx context.Context, category *domain.Category) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Category, error)
	// GetByName retrieves a category by its (case-insensitive) name, nil if not found
	GetByName(ctx context.Context, name string) (*domain.Category, error)
	List(ctx context.Context) ([]*domain.Category, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// GeofenceRepository handles geofence storage operations
type GeofenceRepository interface {
	Save(ctx context.Context, fence *domain.Geofence) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Geofence, error)
	List(ctx context.Context) ([]*domain.Geofence, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// LLMProviderRepository handles LLM provider configuration storage
type LLMProviderRepository interface {
	Save(ctx context.Context, provider *domain.LLMProvider) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.LLMProvider, error)
	List(ctx context.Context) ([]*domain.LLMProvider, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// MessageRepository handles WhatsApp message storage
type MessageRepository interface {
	// Save inserts a message record
	Save(ctx context.Context, msg *domain.Message) error

	// GetBySID retrieves a message by Twilio MessageSid, nil if not found
	GetBySID(ctx context.Context, sid string) (*domain.Message, error)

	// ListRecent retrieves the most recent messages
	ListRecent(ctx context.Context, limit int) ([]*domain.Message, error)
}

// WorkloadEntry is one row of the workload report.
type WorkloadEntry struct {
	UserID       uuid.UUID `json:"user_id"`
	UserName     string    `json:"user_name"`
	CategoryID   uuid.UUID `json:"category_id"`
	CategoryName string    `json:"category_name"`
	Count        int       `json:"count"`
}

// ReportRepository runs the aggregation queries behind the dashboard.
type ReportRepository interface {
	// Workload aggregates activity counts per user and category in a window
	Workload(ctx context.Context, from, to time.Time) ([]WorkloadEntry, error)
}
