package delivery

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bps-logistics/backoffice/internal/platform/db"
)

// Repository defines data access for delivery runs.
type Repository interface {
	Get(ctx context.Context, id int64) (*Run, error)
	ExistsRunNo(ctx context.Context, runNo string) (bool, error)
	List(ctx context.Context, req ListRequest) ([]Run, int, error)
	Create(ctx context.Context, run Run) (int64, error)
	UpdateStatus(ctx context.Context, id int64, status Status, at time.Time) error
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

const runColumns = `
	id, run_no, station_code, status, driver_name, driver_phone, vehicle_no, notes,
	dispatched_at, completed_at, cancelled_at, created_at, updated_at`

func scanRun(row pgx.Row) (*Run, error) {
	var run Run
	var notes pgtype.Text
	var dispatchedAt, completedAt, cancelledAt pgtype.Timestamptz

	err := row.Scan(
		&run.ID, &run.RunNo, &run.StationCode, &run.Status,
		&run.DriverName, &run.DriverPhone, &run.VehicleNo, &notes,
		&dispatchedAt, &completedAt, &cancelledAt, &run.CreatedAt, &run.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if notes.Valid {
		run.Notes = &notes.String
	}
	if dispatchedAt.Valid {
		run.DispatchedAt = &dispatchedAt.Time
	}
	if completedAt.Valid {
		run.CompletedAt = &completedAt.Time
	}
	if cancelledAt.Valid {
		run.CancelledAt = &cancelledAt.Time
	}
	return &run, nil
}

func (r *repository) Get(ctx context.Context, id int64) (*Run, error) {
	query := fmt.Sprintf("SELECT %s FROM delivery_runs WHERE id = $1", runColumns)
	run, err := scanRun(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

func (r *repository) ExistsRunNo(ctx context.Context, runNo string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM delivery_runs WHERE run_no = $1)", runNo).Scan(&exists)
	return exists, err
}

func (r *repository) List(ctx context.Context, req ListRequest) ([]Run, int, error) {
	conditions := []string{"TRUE"}
	var args []interface{}
	argPos := 1

	if req.StationCode != nil {
		conditions = append(conditions, fmt.Sprintf("station_code = $%d", argPos))
		args = append(args, *req.StationCode)
		argPos++
	}
	if req.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argPos))
		args = append(args, *req.Status)
		argPos++
	}
	if req.DateFrom != nil {
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d", argPos))
		args = append(args, *req.DateFrom)
		argPos++
	}
	if req.DateTo != nil {
		conditions = append(conditions, fmt.Sprintf("created_at <= $%d", argPos))
		args = append(args, *req.DateTo)
		argPos++
	}

	whereClause := "WHERE " + strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM delivery_runs %s", whereClause)
	var total int
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM delivery_runs
		%s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d
	`, runColumns, whereClause, argPos, argPos+1)
	args = append(args, req.Limit, req.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, 0, err
		}
		runs = append(runs, *run)
	}
	return runs, total, rows.Err()
}

func (r *repository) Create(ctx context.Context, run Run) (int64, error) {
	var notes pgtype.Text
	if run.Notes != nil {
		notes = pgtype.Text{String: *run.Notes, Valid: true}
	}

	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO delivery_runs (
			run_no, station_code, status, driver_name, driver_phone, vehicle_no, notes,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING id
	`,
		run.RunNo, run.StationCode, run.Status, run.DriverName, run.DriverPhone, run.VehicleNo, notes,
	).Scan(&id)
	if db.IsUniqueViolation(err) {
		return 0, fmt.Errorf("%w: %s", ErrIdentifierExhausted, run.RunNo)
	}
	return id, err
}

func (r *repository) UpdateStatus(ctx context.Context, id int64, status Status, at time.Time) error {
	var col string
	switch status {
	case StatusDispatched:
		col = "dispatched_at"
	case StatusCompleted:
		col = "completed_at"
	case StatusCancelled:
		col = "cancelled_at"
	}

	query := "UPDATE delivery_runs SET status = $1, updated_at = NOW()"
	args := []interface{}{status}
	argPos := 2
	if col != "" {
		query += fmt.Sprintf(", %s = $%d", col, argPos)
		args = append(args, at)
		argPos++
	}
	query += fmt.Sprintf(" WHERE id = $%d", argPos)
	args = append(args, id)

	_, err := r.db.Exec(ctx, query, args...)
	return err
}
