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

// ActivityRepo implements storage.ActivityRepository using PostgreSQL.
type ActivityRepo struct {
	db *DB
}

// NewActivityRepo creates a new PostgreSQL activity repository.
func NewActivityRepo(db *DB) *ActivityRepo {
	return &ActivityRepo{db: db}
}

type activityRow struct {
	ID          uuid.UUID     `db:"id"`
	UserID      uuid.UUID     `db:"user_id"`
	CategoryID  uuid.UUID     `db:"category_id"`
	Description string        `db:"description"`
	Source      string        `db:"source"`
	GeofenceID  uuid.NullUUID `db:"geofence_id"`
	OccurredAt  time.Time     `db:"occurred_at"`
	CreatedAt   time.Time     `db:"created_at"`
}

func (r activityRow) toDomain() *domain.Activity {
	a := &domain.Activity{
		ID:          r.ID,
		UserID:      r.UserID,
		CategoryID:  r.CategoryID,
		Description: r.Description,
		Source:      domain.ActivitySource(r.Source),
		OccurredAt:  r.OccurredAt,
		CreatedAt:   r.CreatedAt,
	}
	if r.GeofenceID.Valid {
		id := r.GeofenceID.UUID
		a.GeofenceID = &id
	}
	return a
}

const activityColumns = `id, user_id, category_id, description, source, geofence_id, occurred_at, created_at`

// Save inserts an activity. Activities recorded from webhooks feed the
// dashboard directly, so the critical retry budget applies.
func (r *ActivityRepo) Save(ctx context.Context, activity *domain.Activity) error {
	var geofenceID uuid.NullUUID
	if activity.GeofenceID != nil {
		geofenceID = uuid.NullUUID{UUID: *activity.GeofenceID, Valid: true}
	}

	err := r.db.retry.Do(ctx, resilience.CriticalPolicy, func(ctx context.Context) error {
		_, err := r.db.ExecContext(ctx, `
			INSERT INTO activities (id, user_id, category_id, description, source, geofence_id, occurred_at, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())`,
			activity.ID, activity.UserID, activity.CategoryID, activity.Description,
			string(activity.Source), geofenceID, activity.OccurredAt)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to save activity: %w", err)
	}
	return nil
}

// GetByID retrieves an activity by ID.
func (r *ActivityRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Activity, error) {
	row, err := resilience.DoValue(ctx, r.db.retry, resilience.DefaultPolicy,
		func(ctx context.Context) (activityRow, error) {
			var row activityRow
			err := r.db.GetContext(ctx, &row,
				`SELECT `+activityColumns+` FROM activities WHERE id = $1`, id)
			return row, err
		})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get activity: %w", err)
	}
	return row.toDomain(), nil
}

// ListByUser retrieves activities for a user within a time window.
func (r *ActivityRepo) ListByUser(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*domain.Activity, error) {
	rows, err := resilience.DoValue(ctx, r.db.retry, resilience.DefaultPolicy,
		func(ctx context.Context) ([]activityRow, error) {
			var rows []activityRow
			err := r.db.SelectContext(ctx, &rows, `
				SELECT `+activityColumns+` FROM activities
				WHERE user_id = $1 AND occurred_at >= $2 AND occurred_at < $3
				ORDER BY occurred_at DESC`, userID, from, to)
			return rows, err
		})
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	return toActivities(rows), nil
}

// ListRecent retrieves the most recent activities across all users.
func (r *ActivityRepo) ListRecent(ctx context.Context, limit int) ([]*domain.Activity, error) {
	rows, err := resilience.DoValue(ctx, r.db.retry, resilience.DefaultPolicy,
		func(ctx context.Context) ([]activityRow, error) {
			var rows []activityRow
			err := r.db.SelectContext(ctx, &rows, `
				SELECT `+activityColumns+` FROM activities
				ORDER BY occurred_at DESC LIMIT $1`, limit)
			return rows, err
		})
	if err != nil {
		return nil, fmt.Errorf("failed to list recent activities: %w", err)
	}
	return toActivities(rows), nil
}

// Delete removes an activity.
func (r *ActivityRepo) Delete(ctx context.Context, id uuid.UUID) error {
	err := r.db.retry.Do(ctx, resilience.DefaultPolicy, func(ctx context.Context) error {
		_, err := r.db.ExecContext(ctx, `DELETE FROM activities WHERE id = $1`, id)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to delete activity: %w", err)
	}
	return nil
}

func toActivities(rows []activityRow) []*domain.Activity {
	activities := make([]*domain.Activity, 0, len(rows))
	for _, row := range rows {
		activities = append(activities, row.toDomain())
	}
	return activities
}
