package invoice

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

	"github.com/bps-logistics/backoffice/internal/payments"
	"github.com/bps-logistics/backoffice/internal/platform/db"
)

// Repository defines data access for invoices.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	Get(ctx context.Context, id int64) (*Invoice, error)
	ExistsForBooking(ctx context.Context, bookingID int64) (bool, error)
	List(ctx context.Context, req ListRequest) ([]Invoice, int, error)
	ListOutstanding(ctx context.Context, stationCode *string) ([]Invoice, error)
	Create(ctx context.Context, inv Invoice) (int64, error)
	InsertPayment(ctx context.Context, p Payment) (int64, error)
	SetPaidState(ctx context.Context, id int64, paid float64, status payments.Status, paidAt *time.Time) error
}

type dbtx interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

type repository struct {
	db   dbtx
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx, pool: r.pool})
	})
}

const invoiceColumns = `
	id, invoice_no, booking_id, station_code, party_name, total, paid_amount, status,
	notes, issued_at, paid_at, created_at, updated_at`

func scanInvoice(row pgx.Row) (*Invoice, error) {
	var inv Invoice
	var notes pgtype.Text
	var paidAt pgtype.Timestamptz

	err := row.Scan(
		&inv.ID, &inv.InvoiceNo, &inv.BookingID, &inv.StationCode, &inv.PartyName,
		&inv.Total, &inv.PaidAmount, &inv.Status,
		&notes, &inv.IssuedAt, &paidAt, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if notes.Valid {
		inv.Notes = &notes.String
	}
	if paidAt.Valid {
		inv.PaidAt = &paidAt.Time
	}
	return &inv, nil
}

func (r *repository) loadPayments(ctx context.Context, inv *Invoice) error {
	rows, err := r.db.Query(ctx, `
		SELECT id, invoice_id, amount, method, reference, received_at, created_at
		FROM invoice_payments
		WHERE invoice_id = $1
		ORDER BY id
	`, inv.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var p Payment
		if err := rows.Scan(&p.ID, &p.InvoiceID, &p.Amount, &p.Method, &p.Reference, &p.ReceivedAt, &p.CreatedAt); err != nil {
			return err
		}
		inv.Payments = append(inv.Payments, p)
	}
	return rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (*Invoice, error) {
	query := fmt.Sprintf("SELECT %s FROM invoices WHERE id = $1", invoiceColumns)
	inv, err := scanInvoice(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := r.loadPayments(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

func (r *repository) ExistsForBooking(ctx context.Context, bookingID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM invoices WHERE booking_id = $1)", bookingID).Scan(&exists)
	return exists, err
}

func (r *repository) List(ctx context.Context, req ListRequest) ([]Invoice, int, error) {
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
		conditions = append(conditions, fmt.Sprintf("issued_at >= $%d", argPos))
		args = append(args, *req.DateFrom)
		argPos++
	}
	if req.DateTo != nil {
		conditions = append(conditions, fmt.Sprintf("issued_at <= $%d", argPos))
		args = append(args, *req.DateTo)
		argPos++
	}

	whereClause := "WHERE " + strings.Join(conditions, " AND ")

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM invoices %s", whereClause)
	var total int
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM invoices
		%s
		ORDER BY issued_at DESC, id DESC
		LIMIT $%d OFFSET $%d
	`, invoiceColumns, whereClause, argPos, argPos+1)
	args = append(args, req.Limit, req.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var invoices []Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, 0, err
		}
		invoices = append(invoices, *inv)
	}
	return invoices, total, rows.Err()
}

func (r *repository) ListOutstanding(ctx context.Context, stationCode *string) ([]Invoice, error) {
	query := fmt.Sprintf("SELECT %s FROM invoices WHERE status <> $1", invoiceColumns)
	args := []interface{}{payments.StatusPaid}
	if stationCode != nil {
		query += " AND station_code = $2"
		args = append(args, *stationCode)
	}
	query += " ORDER BY issued_at, id"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invoices []Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, *inv)
	}
	return invoices, rows.Err()
}

func (r *repository) Create(ctx context.Context, inv Invoice) (int64, error) {
	var notes pgtype.Text
	if inv.Notes != nil {
		notes = pgtype.Text{String: *inv.Notes, Valid: true}
	}

	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO invoices (
			invoice_no, booking_id, station_code, party_name, total, paid_amount, status,
			notes, issued_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		RETURNING id
	`,
		inv.InvoiceNo, inv.BookingID, inv.StationCode, inv.PartyName, inv.Total, inv.PaidAmount, inv.Status,
		notes, inv.IssuedAt,
	).Scan(&id)
	if db.IsUniqueViolation(err) {
		return 0, fmt.Errorf("%w: booking %d", ErrAlreadyInvoiced, inv.BookingID)
	}
	return id, err
}

func (r *repository) InsertPayment(ctx context.Context, p Payment) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO invoice_payments (invoice_id, amount, method, reference, received_at, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id
	`, p.InvoiceID, p.Amount, p.Method, p.Reference, p.ReceivedAt).Scan(&id)
	return id, err
}

func (r *repository) SetPaidState(ctx context.Context, id int64, paid float64, status payments.Status, paidAt *time.Time) error {
	var at pgtype.Timestamptz
	if paidAt != nil {
		at = pgtype.Timestamptz{Time: *paidAt, Valid: true}
	}
	_, err := r.db.Exec(ctx, `
		UPDATE invoices SET paid_amount = $1, status = $2, paid_at = $3, updated_at = NOW() WHERE id = $4
	`, paid, status, at, id)
	return err
}
