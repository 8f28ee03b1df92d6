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

// UserRepo implements storage.UserRepository using PostgreSQL.
type UserRepo struct {
	db *DB
}

// NewUserRepo creates a new PostgreSQL user repository.
func NewUserRepo(db *DB) *UserRepo {
	return &UserRepo{db: db}
}

type userRow struct {
	ID        uuid.UUID `db:"id"`
	Name      string    `db:"name"`
	Phone     string    `db:"phone"`
	Role      string    `db:"role"`
	Active    bool      `db:"active"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r userRow) toDomain() *domain.User {
	return &domain.User{
		ID:        r.ID,
		Name:      r.Name,
		Phone:     r.Phone,
		Role:      domain.UserRole(r.Role),
		Active:    r.Active,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// Save inserts or updates a user.
func (r *UserRepo) Save(ctx context.Context, user *domain.User) error {
	err := r.db.retry.Do(ctx, resilience.DefaultPolicy, func(ctx context.Context) error {
		_, err := r.db.ExecContext(ctx, `
			INSERT INTO users (id, name, phone, role, active, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
			ON CONFLICT (id) DO UPDATE
			SET name = EXCLUDED.name, phone = EXCLUDED.phone,
			    role = EXCLUDED.role, active = EXCLUDED.active, updated_at = NOW()`,
			user.ID, user.Name, user.Phone, string(user.Role), user.Active)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by ID.
func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	row, err := resilience.DoValue(ctx, r.db.retry, resilience.DefaultPolicy,
		func(ctx context.Context) (userRow, error) {
			var row userRow
			err := r.db.GetContext(ctx, &row, `
				SELECT id, name, phone, role, active, created_at, updated_at
				FROM users WHERE id = $1`, id)
			return row, err
		})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return row.toDomain(), nil
}

// GetByPhone retrieves a user by phone number.
func (r *UserRepo) GetByPhone(ctx context.Context, phone string) (*domain.User, error) {
	row, err := resilience.DoValue(ctx, r.db.retry, resilience.DefaultPolicy,
		func(ctx context.Context) (userRow, error) {
			var row userRow
			err := r.db.GetContext(ctx, &row, `
				SELECT id, name, phone, role, active, created_at, updated_at
				FROM users WHERE phone = $1`, phone)
			return row, err
		})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by phone: %w", err)
	}
	return row.toDomain(), nil
}

// List retrieves all users.
func (r *UserRepo) List(ctx context.Context) ([]*domain.User, error) {
	rows, err := resilience.DoValue(ctx, r.db.retry, resilience.DefaultPolicy,
		func(ctx context.Context) ([]userRow, error) {
			var rows []userRow
			err := r.db.SelectContext(ctx, &rows, `
				SELECT id, name, phone, role, active, created_at, updated_at
				FROM users ORDER BY name`)
			return rows, err
		})
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	users := make([]*domain.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, row.toDomain())
	}
	return users, nil
}

// Delete removes a user.
func (r *UserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	err := r.db.retry.Do(ctx, resilience.DefaultPolicy, func(ctx context.Context) error {
		_, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}
