package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/workloadhq/insights/internal/infra/storage"
	"github.com/workloadhq/insights/internal/infra/storage/resilience"
)

// ReportRepo implements storage.ReportRepository using PostgreSQL.
type ReportRepo struct {
	db *DB
}

// NewReportRepo creates a new PostgreSQL report repository.
func NewReportRepo(db *DB) *ReportRepo {
	return &ReportRepo{db: db}
}

type workloadRow struct {
	UserID       uuid.UUID `db:"user_id"`
	UserName     string    `db:"user_name"`
	CategoryID   uuid.UUID `db:"category_id"`
	CategoryName string    `db:"category_name"`
	Count        int       `db:"count"`
}

// Workload aggregates activity counts per user and category in a window.
func (r *ReportRepo) Workload(ctx context.Context, from, to time.Time) ([]storage.WorkloadEntry, error) {
	rows, err := resilience.DoValue(ctx, r.db.retry, resilience.DefaultPolicy,
		func(ctx context.Context) ([]workloadRow, error) {
			var rows []workloadRow
			err := r.db.SelectContext(ctx, &rows, `
				SELECT a.user_id, u.name AS user_name,
				       a.category_id, c.name AS category_name,
				       COUNT(*) AS count
				FROM activities a
				JOIN users u ON u.id = a.user_id
				JOIN categories c ON c.id = a.category_id
				WHERE a.occurred_at >= $1 AND a.occurred_at < $2
				GROUP BY a.user_id, u.name, a.category_id, c.name
				ORDER BY u.name, c.name`, from, to)
			return rows, err
		})
	if err != nil {
		return nil, fmt.Errorf("failed to build workload report: %w", err)
	}

	entries := make([]storage.WorkloadEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, storage.WorkloadEntry{
			UserID:       row.UserID,
			UserName:     row.UserName,
			CategoryID:   row.CategoryID,
			CategoryName: row.CategoryName,
			Count:        row.Count,
		})
	}
	return entries, nil
}
