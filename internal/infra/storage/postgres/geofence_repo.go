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

// GeofenceRepo implements storage.GeofenceRepository using PostgreSQL.
type GeofenceRepo struct {
	db *DB
}

// NewGeofenceRepo creates a new PostgreSQL geofence repository.
func NewGeofenceRepo(db *DB) *GeofenceRepo {
	return &GeofenceRepo{db: db}
}

type geofenceRow struct {
	ID           uuid.UUID `db:"id"`
	Name         string    `db:"name"`
	Latitude     float64   `db:"latitude"`
	Longitude    float64   `db:"longitude"`
	RadiusMeters float64   `db:"radius_meters"`
	CreatedAt    time.Time `db:"created_at"`
}

func (r geofenceRow) toDomain() *domain.Geofence {
	return &domain.Geofence{
		ID:           r.ID,
		Name:         r.Name,
		Latitude:     r.Latitude,
		Longitude:    r.Longitude,
		RadiusMeters: r.RadiusMeters,
		CreatedAt:    r.CreatedAt,
	}
}

// Save inserts or updates a geofence.
func (r *GeofenceRepo) Save(ctx context.Context, fence *domain.Geofence) error {
	err := r.db.retry.Do(ctx, resilience.DefaultPolicy, func(ctx context.Context) error {
		_, err := r.db.ExecContext(ctx, `
			INSERT INTO geofences (id, name, latitude, longitude, radius_meters, created_at)
			VALUES ($1, $2, $3, $4, $5, NOW())
			ON CONFLICT (id) DO UPDATE
			SET name = EXCLUDED.name, latitude = EXCLUDED.latitude,
			    longitude = EXCLUDED.longitude, radius_meters = EXCLUDED.radius_meters`,
			fence.ID, fence.Name, fence.Latitude, fence.Longitude, fence.RadiusMeters)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to save geofence: %w", err)
	}
	return nil
}

// GetByID retrieves a geofence by ID.
func (r *GeofenceRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Geofence, error) {
	row, err := resilience.DoValue(ctx, r.db.retry, resilience.DefaultPolicy,
		func(ctx context.Context) (geofenceRow, error) {
			var row geofenceRow
			err := r.db.GetContext(ctx, &row, `
				SELECT id, name, latitude, longitude, radius_meters, created_at
				FROM geofences WHERE id = $1`, id)
			return row, err
		})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get geofence: %w", err)
	}
	return row.toDomain(), nil
}

// List retrieves all geofences.
func (r *GeofenceRepo) List(ctx context.Context) ([]*domain.Geofence, error) {
	rows, err := resilience.DoValue(ctx, r.db.retry, resilience.DefaultPolicy,
		func(ctx context.Context) ([]geofenceRow, error) {
			var rows []geofenceRow
			err := r.db.SelectContext(ctx, &rows, `
				SELECT id, name, latitude, longitude, radius_meters, created_at
				FROM geofences ORDER BY name`)
			return rows, err
		})
	if err != nil {
		return nil, fmt.Errorf("failed to list geofences: %w", err)
	}

	fences := make([]*domain.Geofence, 0, len(rows))
	for _, row := range rows {
		fences = append(fences, row.toDomain())
	}
	return fences, nil
}

// Delete removes a geofence.
func (r *GeofenceRepo) Delete(ctx context.Context, id uuid.UUID) error {
	err := r.db.retry.Do(ctx, resilience.DefaultPolicy, func(ctx context.Context) error {
		_, err := r.db.ExecContext(ctx, `DELETE FROM geofences WHERE id = $1`, id)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to delete geofence: %w", err)
	}
	return nil
}
