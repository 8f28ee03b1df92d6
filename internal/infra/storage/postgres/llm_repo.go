package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/workloadhq/insights/internal/core/domain"
	"github.com/workloadhq/insights/internal/infra/storage/resilience"
)

// LLMProviderRepo implements storage.LLMProviderRepository using PostgreSQL.
type LLMProviderRepo struct {
	db *DB
}

// NewLLMProviderRepo creates a new PostgreSQL LLM provider repository.
func NewLLMProviderRepo(db *DB) *LLMProviderRepo {
	return &LLMProviderRepo{db: db}
}

type llmProviderRow struct {
	ID        uuid.UUID `db:"id"`
	Name      string    `db:"name"`
	Model     string    `db:"model"`
	APIKeyEnv string    `db:"api_key_env"`
	Enabled   bool      `db:"enabled"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r llmProviderRow) toDomain() *domain.LLMProvider {
	return &domain.LLMProvider{
		ID:        r.ID,
		Name:      r.Name,
		Model:     r.Model,
		APIKeyEnv: r.APIKeyEnv,
		Enabled:   r.Enabled,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// Save inserts or updates a provider configuration.
func (r *LLMProviderRepo) Save(ctx context.Context, provider *domain.LLMProvider) error {
	err := r.db.retry.Do(ctx, resilience.DefaultPolicy, func(ctx context.Context) error {
		_, err := r.db.ExecContext(ctx, `
			INSERT INTO llm_providers (id, name, model, api_key_env, enabled, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
			ON CONFLICT (id) DO UPDATE
			SET name = EXCLUDED.name, model = EXCLUDED.model,
			    api_key_env = EXCLUDED.api_key_env, enabled = EXCLUDED.enabled, updated_at = NOW()`,
			provider.ID, provider.Name, provider.Model, provider.APIKeyEnv, provider.Enabled)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to save llm provider: %w", err)
	}
	return nil
}

// GetByID retrieves a provider configuration by ID.
func (r *LLMProviderRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.LLMProvider, error) {
	row, err := resilience.DoValue(ctx, r.db.retry, resilience.DefaultPolicy,
		func(ctx context.Context) (llmProviderRow, error) {
			var row llmProviderRow
			err := r.db.GetContext(ctx, &row, `
				SELECT id, name, model, api_key_env, enabled, created_at, updated_at
				FROM llm_providers WHERE id = $1`, id)
			return row, err
		})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get llm provider: %w", err)
	}
	return row.toDomain(), nil
}

// List retrieves all provider configurations.
func (r *LLMProviderRepo) List(ctx context.Context) ([]*domain.LLMProvider, error) {
	rows, err := resilience.DoValue(ctx, r.db.retry, resilience.DefaultPolicy,
		func(ctx context.Context) ([]llmProviderRow, error) {
			var rows []llmProviderRow
			err := r.db.SelectContext(ctx, &rows, `
				SELECT id, name, model, api_key_env, enabled, created_at, updated_at
				FROM llm_providers ORDER BY name`)
			return rows, err
		})
	if err != nil {
		return nil, fmt.Errorf("failed to list llm providers: %w", err)
	}

	providers := make([]*domain.LLMProvider, 0, len(rows))
	for _, row := range rows {
		providers = append(providers, row.toDomain())
	}
	return providers, nil
}

// Delete removes a provider configuration.
func (r *LLMProviderRepo) Delete(ctx context.Context, id uuid.UUID) error {
	err := r.db.retry.Do(ctx, resilience.DefaultPolicy, func(ctx context.Context) error {
		_, err := r.db.ExecContext(ctx, `DELETE FROM llm_providers WHERE id = $1`, id)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to delete llm provider: %w", err)
	}
	return nil
}
