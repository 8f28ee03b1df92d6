package domain

import (
	"time"

	"github.com/google/uuid"
)

// Category groups activities for reporting (e.g. "maintenance", "delivery").
type Category struct {
	ID        uuid.UUID
	Name      string
	Color     string // hex color used by the dashboard
	CreatedAt time.Time
}
