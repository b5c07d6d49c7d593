package users

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rediwater/rediwater/internal/platform/db"
	"github.com/rediwater/rediwater/internal/platform/httpx"
	"github.com/rediwater/rediwater/internal/rbac"
	"github.com/rediwater/rediwater/internal/shared"
)

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	List(ctx context.Context, params shared.ListParams) ([]User, int, error)
	Get(ctx context.Context, id uuid.UUID) (User, error)
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// TxRepository exposes the mutations that must observe a consistent admin count.
type TxRepository interface {
	Create(ctx context.Context, user User, passwordHash string) (User, error)
	GetForUpdate(ctx context.Context, id uuid.UUID) (User, error)
	CountActiveAdmins(ctx context.Context) (int, error)
	UpdateRole(ctx context.Context, id uuid.UUID, role rbac.Role) (User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const profileColumns = `id, email, role, is_active, created_at, updated_at`

// List returns one page of profiles, newest first by default.
func (r *Repository) List(ctx context.Context, params shared.ListParams) ([]User, int, error) {
	where := ` WHERE 1=1`
	args := []any{}
	if params.Search != "" {
		args = append(args, "%"+params.Search+"%")
		where += ` AND email ILIKE $` + strconv.Itoa(len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM profiles`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("users: count: %w", err)
	}

	query := `SELECT ` + profileColumns + ` FROM profiles` + where + ` ORDER BY ` + sortOrder(params.SortBy, params.SortDesc)
	args = append(args, params.PageSize, params.Offset())
	query += ` LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("users: list: %w", err)
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, u)
	}
	return out, total, rows.Err()
}

// Get returns a single profile.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id))
}

// RoleOf reads the current role of a user. Inactive or missing profiles and
// unrecognised role strings all resolve to RoleNone.
func (r *Repository) RoleOf(ctx context.Context, userID uuid.UUID) (rbac.Role, error) {
	var role string
	err := r.pool.QueryRow(ctx, `SELECT role FROM profiles WHERE id = $1 AND is_active`, userID).Scan(&role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return rbac.RoleNone, nil
		}
		return rbac.RoleNone, fmt.Errorf("users: role of %s: %w", userID, err)
	}
	return rbac.ParseRole(role), nil
}

// WithTx wraps callback in repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepo{q: tx})
	})
}

type txRepo struct {
	q db.DBTX
}

func (t *txRepo) Create(ctx context.Context, user User, passwordHash string) (User, error) {
	row := t.q.QueryRow(ctx, `INSERT INTO profiles (email, password_hash, role, is_active)
VALUES ($1, $2, $3, TRUE)
RETURNING `+profileColumns, user.Email, passwordHash, user.Role.String())
	created, err := scanUser(row)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return User{}, fmt.Errorf("%w: email %s is already registered", httpx.ErrDuplicate, user.Email)
		}
		return User{}, err
	}
	return created, nil
}

func (t *txRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (User, error) {
	return scanUser(t.q.QueryRow(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = $1 FOR UPDATE`, id))
}

func (t *txRepo) CountActiveAdmins(ctx context.Context) (int, error) {
	rows, err := t.q.Query(ctx, `SELECT id FROM profiles WHERE role = 'admin' AND is_active FOR UPDATE`)
	if err != nil {
		return 0, fmt.Errorf("users: count admins: %w", err)
	}
	defer rows.Close()
	n := 0
	for rows.Next() {
		n++
	}
	return n, rows.Err()
}

func (t *txRepo) UpdateRole(ctx context.Context, id uuid.UUID, role rbac.Role) (User, error) {
	return scanUser(t.q.QueryRow(ctx, `UPDATE profiles SET role = $2, updated_at = NOW() WHERE id = $1 RETURNING `+profileColumns, id, role.String()))
}

func (t *txRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := t.q.Exec(ctx, `DELETE FROM profiles WHERE id = $1`, id)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return fmt.Errorf("%w: user still owns records", httpx.ErrConflict)
		}
		return fmt.Errorf("users: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (User, error) {
	var u User
	var role string
	if err := row.Scan(&u.ID, &u.Email, &role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, httpx.ErrNotFound
		}
		return User{}, fmt.Errorf("users: scan: %w", err)
	}
	u.Role = rbac.ParseRole(role)
	return u, nil
}

func sortOrder(sortBy string, desc bool) string {
	dir := "ASC"
	if desc {
		dir = "DESC"
	}
	switch strings.ToLower(sortBy) {
	case "email":
		return "email " + dir
	case "role":
		return "role " + dir + ", email ASC"
	case "created_at":
		return "created_at " + dir
	default:
		return "created_at DESC"
	}
}

var (
	_ RepositoryPort  = (*Repository)(nil)
	_ rbac.RoleSource = (*Repository)(nil)
)
