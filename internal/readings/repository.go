package readings

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
	List(ctx context.Context, boreholeID uuid.UUID, dates Range, params shared.ListParams) ([]Reading, int, error)
	Get(ctx context.Context, id uuid.UUID) (Reading, error)
	Create(ctx context.Context, boreholeID uuid.UUID, date time.Time, level float64) (Reading, error)
	Update(ctx context.Context, id uuid.UUID, date time.Time, level float64) (Reading, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const readingColumns = `r.id, r.borehole_id, b.name, r.date, r.water_level, r.created_at, r.updated_at`

func (r *repository) List(ctx context.Context, boreholeID uuid.UUID, dates Range, params shared.ListParams) ([]Reading, int, error) {
	args := []any{boreholeID}
	where := ` WHERE r.borehole_id = $1`
	if dates.From != nil {
		args = append(args, pgtype.Date{Time: *dates.From, Valid: true})
		where += ` AND r.date >= $` + strconv.Itoa(len(args))
	}
	if dates.To != nil {
		args = append(args, pgtype.Date{Time: *dates.To, Valid: true})
		where += ` AND r.date <= $` + strconv.Itoa(len(args))
	}

	from := ` FROM water_level_readings r JOIN boreholes b ON b.id = r.borehole_id`

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*)`+from+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("readings: count: %w", err)
	}

	dir := "DESC"
	if params.SortBy == "date" && !params.SortDesc {
		dir = "ASC"
	}
	query := `SELECT ` + readingColumns + from + where + ` ORDER BY r.date ` + dir + `, r.created_at ` + dir
	if params.PageSize > 0 {
		args = append(args, params.PageSize, params.Offset())
		query += ` LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("readings: list: %w", err)
	}
	defer rows.Close()

	var out []Reading
	for rows.Next() {
		reading, err := scanReading(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, reading)
	}
	return out, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id uuid.UUID) (Reading, error) {
	return scanReading(r.pool.QueryRow(ctx, `SELECT `+readingColumns+`
FROM water_level_readings r JOIN boreholes b ON b.id = r.borehole_id WHERE r.id = $1`, id))
}

func (r *repository) Create(ctx context.Context, boreholeID uuid.UUID, date time.Time, level float64) (Reading, error) {
	var id uuid.UUID
	err := r.pool.QueryRow(ctx, `INSERT INTO water_level_readings (borehole_id, date, water_level) VALUES ($1, $2, $3) RETURNING id`,
		boreholeID, pgtype.Date{Time: date, Valid: true}, level).Scan(&id)
	if err != nil {
		return Reading{}, translateWriteError(err)
	}
	return r.Get(ctx, id)
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, date time.Time, level float64) (Reading, error) {
	tag, err := r.pool.Exec(ctx, `UPDATE water_level_readings SET date = $2, water_level = $3, updated_at = NOW() WHERE id = $1`,
		id, pgtype.Date{Time: date, Valid: true}, level)
	if err != nil {
		return Reading{}, translateWriteError(err)
	}
	if tag.RowsAffected() == 0 {
		return Reading{}, httpx.ErrNotFound
	}
	return r.Get(ctx, id)
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM water_level_readings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("readings: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func scanReading(row pgx.Row) (Reading, error) {
	var rd Reading
	var date pgtype.Date
	if err := row.Scan(&rd.ID, &rd.BoreholeID, &rd.BoreholeName, &date, &rd.WaterLevel, &rd.CreatedAt, &rd.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Reading{}, httpx.ErrNotFound
		}
		return Reading{}, fmt.Errorf("readings: scan: %w", err)
	}
	if date.Valid {
		rd.Date = date.Time.Format(format.InputLayout)
	}
	return rd, nil
}

func translateWriteError(err error) error {
	switch {
	case db.IsForeignKeyViolation(err):
		return httpx.ErrNotFound
	case db.IsUniqueViolation(err):
		return fmt.Errorf("%w: a reading already exists for this borehole on that date", httpx.ErrDuplicate)
	default:
		return fmt.Errorf("readings: write: %w", err)
	}
}
