package sites

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rediwater/rediwater/internal/platform/db"
	"github.com/rediwater/rediwater/internal/platform/httpx"
	"github.com/rediwater/rediwater/internal/shared"
)

type Repository interface {
	List(ctx context.Context, params shared.ListParams) ([]SiteWithBoreholeCount, int, error)
	Get(ctx context.Context, id uuid.UUID) (Site, error)
	Create(ctx context.Context, in SiteInput) (Site, error)
	Update(ctx context.Context, id uuid.UUID, in SiteInput) (Site, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

// List uses a dynamic query for search and sort.
func (r *repository) List(ctx context.Context, params shared.ListParams) ([]SiteWithBoreholeCount, int, error) {
	where := ` WHERE 1=1`
	args := []any{}
	if params.Search != "" {
		args = append(args, "%"+params.Search+"%")
		where += ` AND s.name ILIKE $` + strconv.Itoa(len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM sites s`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("sites: count: %w", err)
	}

	query := `SELECT s.id, s.name, s.created_at, s.updated_at, COUNT(b.id)
FROM sites s
LEFT JOIN boreholes b ON b.site_id = s.id` + where + `
GROUP BY s.id
ORDER BY ` + sortOrder(params.SortBy, params.SortDesc)
	if params.PageSize > 0 {
		args = append(args, params.PageSize, params.Offset())
		query += ` LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("sites: list: %w", err)
	}
	defer rows.Close()

	var out []SiteWithBoreholeCount
	for rows.Next() {
		var s SiteWithBoreholeCount
		if err := rows.Scan(&s.ID, &s.Name, &s.CreatedAt, &s.UpdatedAt, &s.BoreholeCount); err != nil {
			return nil, 0, err
		}
		out = append(out, s)
	}
	return out, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id uuid.UUID) (Site, error) {
	return scanSite(r.pool.QueryRow(ctx, `SELECT id, name, created_at, updated_at FROM sites WHERE id = $1`, id))
}

func (r *repository) Create(ctx context.Context, in SiteInput) (Site, error) {
	site, err := scanSite(r.pool.QueryRow(ctx, `INSERT INTO sites (name) VALUES ($1) RETURNING id, name, created_at, updated_at`, in.Name))
	if db.IsUniqueViolation(err) {
		return Site{}, fmt.Errorf("%w: site %q already exists", httpx.ErrDuplicate, in.Name)
	}
	return site, err
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, in SiteInput) (Site, error) {
	site, err := scanSite(r.pool.QueryRow(ctx, `UPDATE sites SET name = $2, updated_at = NOW() WHERE id = $1 RETURNING id, name, created_at, updated_at`, id, in.Name))
	if db.IsUniqueViolation(err) {
		return Site{}, fmt.Errorf("%w: site %q already exists", httpx.ErrDuplicate, in.Name)
	}
	return site, err
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM sites WHERE id = $1`, id)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: site still has boreholes", httpx.ErrConflict)
		}
		return fmt.Errorf("sites: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func scanSite(row pgx.Row) (Site, error) {
	var s Site
	if err := row.Scan(&s.ID, &s.Name, &s.CreatedAt, &s.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Site{}, httpx.ErrNotFound
		}
		return Site{}, err
	}
	return s, nil
}

func sortOrder(sortBy string, desc bool) string {
	dir := "ASC"
	if desc {
		dir = "DESC"
	}
	switch sortBy {
	case "created_at":
		return "s.created_at " + dir
	case "borehole_count":
		return "COUNT(b.id) " + dir + ", s.name ASC"
	default:
		return "s.name " + dir
	}
}
