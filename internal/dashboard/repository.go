package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rediwater/rediwater/internal/shared"
)

// Repository reads the aggregates behind the dashboard.
type Repository interface {
	Snapshots(ctx context.Context) ([]Snapshot, error)
	CountReadingsSince(ctx context.Context, since time.Time) (int, error)
	RecentActivity(ctx context.Context, limit int) ([]shared.Activity, error)
}

type repository struct {
	pool     *pgxpool.Pool
	activity *shared.ActivityLog
}

func NewRepository(pool *pgxpool.Pool, activity *shared.ActivityLog) Repository {
	return &repository{pool: pool, activity: activity}
}

func (r *repository) Snapshots(ctx context.Context) ([]Snapshot, error) {
	rows, err := r.pool.Query(ctx, `SELECT b.status, lr.water_level, lr.date
FROM boreholes b
LEFT JOIN LATERAL (
	SELECT water_level, date FROM water_level_readings
	WHERE borehole_id = b.id ORDER BY date DESC, created_at DESC LIMIT 1
) lr ON TRUE`)
	if err != nil {
		return nil, fmt.Errorf("dashboard: snapshots: %w", err)
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		var s Snapshot
		var level pgtype.Float8
		var date pgtype.Date
		if err := rows.Scan(&s.Status, &level, &date); err != nil {
			return nil, fmt.Errorf("dashboard: scan snapshot: %w", err)
		}
		if level.Valid {
			v := level.Float64
			s.LatestLevel = &v
		}
		if date.Valid {
			d := date.Time
			s.LatestDate = &d
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *repository) CountReadingsSince(ctx context.Context, since time.Time) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM water_level_readings WHERE date >= $1`,
		pgtype.Date{Time: since, Valid: true}).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("dashboard: count readings: %w", err)
	}
	return n, nil
}

func (r *repository) RecentActivity(ctx context.Context, limit int) ([]shared.Activity, error) {
	return r.activity.Recent(ctx, limit)
}
