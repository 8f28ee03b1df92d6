package domain

import (
	"time"

	"github.com/google/uuid"
)

// LLMProvider holds the configuration for an LLM backend used to summarize
// activity reports. The API key is referenced by environment variable name,
// never stored in the database.
type LLMProvider struct {
	ID        uuid.UUID
	Name      string
	Model     string
	APIKeyEnv string
	Enabled   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
