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

// CategoryRepo implements storage.CategoryRepository using PostgreSQL.
type CategoryRepo struct {
	db *DB
}

// NewCategoryRepo creates a new PostgreSQL category repository.
func NewCategoryRepo(db *DB) *CategoryRepo {
	return &CategoryRepo{db: db}
}

type categoryRow struct {
	ID        uuid.UUID `db:"id"`
	Name      string    `db:"name"`
	Color     string    `db:"color"`
	CreatedAt time.Time `db:"created_at"`
}

func (r categoryRow) toDomain() *domain.Category {
	return &domain.Category{
		ID:        r.ID,
		Name:      r.Name,
		Color:     r.Color,
		CreatedAt: r.CreatedAt,
	}
}

// Save inserts or updates a category.
func (r *CategoryRepo) Save(ctx context.Context, category *domain.Category) error {
	err := r.db.retry.Do(ctx, resilience.DefaultPolicy, func(ctx context.Context) error {
		_, err := r.db.ExecContext(ctx, `
			INSERT INTO categories (id, name, color, created_at)
			VALUES ($1, $2, $3, NOW())
			ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, color = EXCLUDED.color`,
			category.ID, category.Name, category.Color)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to save category: %w", err)
	}
	return nil
}

// GetByID retrieves a category by ID.
func (r *CategoryRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Category, error) {
	row, err := resilience.DoValue(ctx, r.db.retry, resilience.DefaultPolicy,
		func(ctx context.Context) (categoryRow, error) {
			var row categoryRow
			err := r.db.GetContext(ctx, &row,
				`SELECT id, name, color, created_at FROM categories WHERE id = $1`, id)
			return row, err
		})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return row.toDomain(), nil
}

// GetByName retrieves a category by its name, case-insensitively.
func (r *CategoryRepo) GetByName(ctx context.Context, name string) (*domain.Category, error) {
	row, err := resilience.DoValue(ctx, r.db.retry, resilience.DefaultPolicy,
		func(ctx context.Context) (categoryRow, error) {
			var row categoryRow
			err := r.db.GetContext(ctx, &row,
				`SELECT id, name, color, created_at FROM categories WHERE LOWER(name) = LOWER($1)`, name)
			return row, err
		})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category by name: %w", err)
	}
	return row.toDomain(), nil
}

// List retrieves all categories.
func (r *CategoryRepo) List(ctx context.Context) ([]*domain.Category, error) {
	rows, err := resilience.DoValue(ctx, r.db.retry, resilience.DefaultPolicy,
		func(ctx context.Context) ([]categoryRow, error) {
			var rows []categoryRow
			err := r.db.SelectContext(ctx, &rows,
				`SELECT id, name, color, created_at FROM categories ORDER BY name`)
			return rows, err
		})
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	categories := make([]*domain.Category, 0, len(rows))
	for _, row := range rows {
		categories = append(categories, row.toDomain())
	}
	return categories, nil
}

// Delete removes a category.
func (r *CategoryRepo) Delete(ctx context.Context, id uuid.UUID) error {
	err := r.db.retry.Do(ctx, resilience.DefaultPolicy, func(ctx context.Context) error {
		_, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return nil
}
