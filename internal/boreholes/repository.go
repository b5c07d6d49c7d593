package boreholes

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rediwater/rediwater/internal/format"
	"github.com/rediwater/rediwater/internal/platform/db"
	"github.com/rediwater/rediwater/internal/platform/httpx"
	"github.com/rediwater/rediwater/internal/shared"
)

type Repository interface {
	List(ctx context.Context, params shared.ListParams, filters ListFilters) ([]BoreholeWithLatestReading, int, error)
	Get(ctx context.Context, id uuid.UUID) (Borehole, error)
	Create(ctx context.Context, b Borehole) (Borehole, error)
	Update(ctx context.Context, id uuid.UUID, b Borehole) (Borehole, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool, now: time.Now}
}

const boreholeColumns = `b.id, b.name, b.latitude, b.longitude, b.site_id, s.name,
b.equipment, b.drilling_depth, b.casing, b.status, b.yield_test_completed,
b.steps_hrs, b.constant_hrs, b.recovery_hrs, b.static_water_level_2019, b.static_water_level_2024,
b.depth_measured, b.max_yield, b.current_status_and_planned, b.water_strike_depths,
b.recommended_pump_depth, b.construction_yield, b.daily_abstraction, b.date_tested,
b.water_sample_analysis, b.created_at, b.updated_at`

const latestReadingJoin = `
LEFT JOIN LATERAL (
	SELECT r.water_level, r.date
	FROM water_level_readings r
	WHERE r.borehole_id = b.id
	ORDER BY r.date DESC, r.created_at DESC
	LIMIT 1
) lr ON TRUE`

// List uses a dynamic query because of the optional filters.
func (r *repository) List(ctx context.Context, params shared.ListParams, filters ListFilters) ([]BoreholeWithLatestReading, int, error) {
	where := ` WHERE 1=1`
	args := []any{}

	if params.Search != "" {
		args = append(args, "%"+params.Search+"%")
		n := strconv.Itoa(len(args))
		where += ` AND (b.name ILIKE $` + n + ` OR s.name ILIKE $` + n + `)`
	}
	if filters.SiteID != nil {
		args = append(args, *filters.SiteID)
		where += ` AND b.site_id = $` + strconv.Itoa(len(args))
	}
	if filters.Status != "" {
		args = append(args, filters.Status)
		where += ` AND b.status = $` + strconv.Itoa(len(args))
	}
	if filters.HasRecentReadings != nil {
		args = append(args, r.now().AddDate(0, 0, -format.RecentReadingDays))
		n := strconv.Itoa(len(args))
		if *filters.HasRecentReadings {
			where += ` AND lr.date >= $` + n
		} else {
			where += ` AND (lr.date IS NULL OR lr.date < $` + n + `)`
		}
	}

	from := ` FROM boreholes b JOIN sites s ON s.id = b.site_id` + latestReadingJoin

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*)`+from+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("boreholes: count: %w", err)
	}

	query := `SELECT ` + boreholeColumns + `, lr.water_level, lr.date` + from + where +
		` ORDER BY ` + sortOrder(params.SortBy, params.SortDesc)
	if params.PageSize > 0 {
		args = append(args, params.PageSize, params.Offset())
		query += ` LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("boreholes: list: %w", err)
	}
	defer rows.Close()

	now := r.now()
	var out []BoreholeWithLatestReading
	for rows.Next() {
		var item BoreholeWithLatestReading
		var level pgtype.Float8
		var readAt pgtype.Date
		dest := append(scanTargets(&item.Borehole), &level, &readAt)
		if err := rows.Scan(dest...); err != nil {
			return nil, 0, fmt.Errorf("boreholes: scan: %w", err)
		}
		if level.Valid {
			item.LatestWaterLevel = &level.Float64
		}
		if readAt.Valid {
			item.setLatestReading(readAt.Time, now)
		}
		out = append(out, item)
	}
	return out, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id uuid.UUID) (Borehole, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+boreholeColumns+` FROM boreholes b JOIN sites s ON s.id = b.site_id WHERE b.id = $1`, id)
	var b Borehole
	if err := row.Scan(scanTargets(&b)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Borehole{}, httpx.ErrNotFound
		}
		return Borehole{}, fmt.Errorf("boreholes: get: %w", err)
	}
	return b, nil
}

func (r *repository) Create(ctx context.Context, b Borehole) (Borehole, error) {
	var id uuid.UUID
	err := r.pool.QueryRow(ctx, `INSERT INTO boreholes (
	name, latitude, longitude, site_id, equipment, drilling_depth, casing, status, yield_test_completed,
	steps_hrs, constant_hrs, recovery_hrs, static_water_level_2019, static_water_level_2024,
	depth_measured, max_yield, current_status_and_planned, water_strike_depths,
	recommended_pump_depth, construction_yield, daily_abstraction, date_tested, water_sample_analysis
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)
RETURNING id`, writeArgs(b)...).Scan(&id)
	if err != nil {
		return Borehole{}, translateWriteError(err, b.Name)
	}
	return r.Get(ctx, id)
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, b Borehole) (Borehole, error) {
	args := append(writeArgs(b), id)
	tag, err := r.pool.Exec(ctx, `UPDATE boreholes SET
	name = $1, latitude = $2, longitude = $3, site_id = $4, equipment = $5, drilling_depth = $6, casing = $7,
	status = $8, yield_test_completed = $9, steps_hrs = $10, constant_hrs = $11, recovery_hrs = $12,
	static_water_level_2019 = $13, static_water_level_2024 = $14, depth_measured = $15, max_yield = $16,
	current_status_and_planned = $17, water_strike_depths = $18, recommended_pump_depth = $19,
	construction_yield = $20, daily_abstraction = $21, date_tested = $22, water_sample_analysis = $23,
	updated_at = NOW()
WHERE id = $24`, args...)
	if err != nil {
		return Borehole{}, translateWriteError(err, b.Name)
	}
	if tag.RowsAffected() == 0 {
		return Borehole{}, httpx.ErrNotFound
	}
	return r.Get(ctx, id)
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM boreholes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("boreholes: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func scanTargets(b *Borehole) []any {
	return []any{
		&b.ID, &b.Name, &b.Latitude, &b.Longitude, &b.SiteID, &b.SiteName,
		&b.Equipment, &b.DrillingDepth, &b.Casing, &b.Status, &b.YieldTestCompleted,
		&b.StepsHrs, &b.ConstantHrs, &b.RecoveryHrs, &b.StaticWaterLevel2019, &b.StaticWaterLevel2024,
		&b.DepthMeasured, &b.MaxYield, &b.CurrentStatusAndPlanned, &b.WaterStrikeDepths,
		&b.RecommendedPumpDepth, &b.ConstructionYield, &b.DailyAbstraction, &b.DateTested,
		&b.WaterSampleAnalysis, &b.CreatedAt, &b.UpdatedAt,
	}
}

func writeArgs(b Borehole) []any {
	return []any{
		b.Name, b.Latitude, b.Longitude, b.SiteID, b.Equipment, b.DrillingDepth, b.Casing, b.Status, b.YieldTestCompleted,
		b.StepsHrs, b.ConstantHrs, b.RecoveryHrs, b.StaticWaterLevel2019, b.StaticWaterLevel2024,
		b.DepthMeasured, b.MaxYield, b.CurrentStatusAndPlanned, b.WaterStrikeDepths,
		b.RecommendedPumpDepth, b.ConstructionYield, b.DailyAbstraction, b.DateTested, b.WaterSampleAnalysis,
	}
}

func translateWriteError(err error, name string) error {
	switch {
	case db.IsForeignKeyViolation(err):
		return httpx.NewValidationError("site_id", "Site does not exist")
	case db.IsUniqueViolation(err):
		return fmt.Errorf("%w: borehole %q already exists at this site", httpx.ErrDuplicate, name)
	default:
		return fmt.Errorf("boreholes: write: %w", err)
	}
}

func sortOrder(sortBy string, desc bool) string {
	dir := "ASC"
	if desc {
		dir = "DESC"
	}
	switch sortBy {
	case "status":
		return "b.status " + dir + ", b.name ASC"
	case "site":
		return "s.name " + dir + ", b.name ASC"
	case "created_at":
		return "b.created_at " + dir
	case "latest_water_level":
		return "lr.water_level " + dir + " NULLS LAST, b.name ASC"
	case "last_reading":
		return "lr.date " + dir + " NULLS LAST, b.name ASC"
	default:
		return "b.name " + dir
	}
}
