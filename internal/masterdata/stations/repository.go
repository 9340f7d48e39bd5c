package stations

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bps-logistics/backoffice/internal/platform/db"
)

// Repository defines data access for stations.
type Repository interface {
	Get(ctx context.Context, id int64) (*Station, error)
	GetByCode(ctx context.Context, code string) (*Station, error)
	ExistsCode(ctx context.Context, code string) (bool, error)
	List(ctx context.Context, req ListRequest) ([]Station, int, error)
	Create(ctx context.Context, station Station) (int64, error)
	Update(ctx context.Context, id int64, updates map[string]interface{}) error
}

type dbtx interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

type repository struct {
	db dbtx
}

// NewRepository constructs a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

const stationColumns = `id, code, name, address, phone, is_active, created_at, updated_at`

func scanStation(row pgx.Row) (*Station, error) {
	var st Station
	err := row.Scan(&st.ID, &st.Code, &st.Name, &st.Address, &st.Phone, &st.IsActive, &st.CreatedAt, &st.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &st, nil
}

func (r *repository) Get(ctx context.Context, id int64) (*Station, error) {
	query := fmt.Sprintf("SELECT %s FROM stations WHERE id = $1", stationColumns)
	st, err := scanStation(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return st, err
}

func (r *repository) GetByCode(ctx context.Context, code string) (*Station, error) {
	query := fmt.Sprintf("SELECT %s FROM stations WHERE code = $1", stationColumns)
	st, err := scanStation(r.db.QueryRow(ctx, query, code))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return st, err
}

func (r *repository) ExistsCode(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM stations WHERE code = $1 AND is_active)", code).Scan(&exists)
	return exists, err
}

func (r *repository) List(ctx context.Context, req ListRequest) ([]Station, int, error) {
	conditions := []string{"TRUE"}
	var args []interface{}
	argPos := 1

	if req.ActiveOnly {
		conditions = append(conditions, "is_active")
	}
	if req.Search != nil {
		conditions = append(conditions, fmt.Sprintf("(code ILIKE $%d OR name ILIKE $%d)", argPos, argPos))
		args = append(args, "%"+*req.Search+"%")
		argPos++
	}

	whereClause := "WHERE " + strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM stations %s", whereClause)
	var total int
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM stations
		%s
		ORDER BY code
		LIMIT $%d OFFSET $%d
	`, stationColumns, whereClause, argPos, argPos+1)
	args = append(args, req.Limit, req.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []Station
	for rows.Next() {
		st, err := scanStation(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *st)
	}
	return out, total, rows.Err()
}

func (r *repository) Create(ctx context.Context, station Station) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO stations (code, name, address, phone, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING id
	`, station.Code, station.Name, station.Address, station.Phone, station.IsActive).Scan(&id)
	if db.IsUniqueViolation(err) {
		return 0, fmt.Errorf("%w: %s", ErrCodeTaken, station.Code)
	}
	return id, err
}

func (r *repository) Update(ctx context.Context, id int64, updates map[string]interface{}) error {
	query := "UPDATE stations SET updated_at = NOW()"
	var args []interface{}
	argPos := 1

	for _, col := range []string{"name", "address", "phone", "is_active"} {
		if v, ok := updates[col]; ok {
			query += fmt.Sprintf(", %s = $%d", col, argPos)
			args = append(args, v)
			argPos++
		}
	}

	query += fmt.Sprintf(" WHERE id = $%d", argPos)
	args = append(args, id)

	_, err := r.db.Exec(ctx, query, args...)
	return err
}
