package quotation

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

// Repository defines data access for quotations.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	Get(ctx context.Context, id int64) (*Quotation, error)
	ExistsQuotationNo(ctx context.Context, quotationNo string) (bool, error)
	List(ctx context.Context, req ListRequest) ([]Quotation, int, error)
	Create(ctx context.Context, q Quotation) (int64, error)
	InsertItem(ctx context.Context, item Item) (int64, error)
	DeleteItems(ctx context.Context, quotationID int64) error
	Update(ctx context.Context, id int64, updates map[string]interface{}) error
	UpdateStatus(ctx context.Context, id int64, status Status, at time.Time, reason *string) error
	MarkConverted(ctx context.Context, id, bookingID int64) error
	SoftDelete(ctx context.Context, id int64, at time.Time) error
	PurgeDeletedBefore(ctx context.Context, cutoff time.Time) (int64, error)
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

const quotationColumns = `
	id, quotation_no, receipt_no, station_code, to_station_code, status,
	customer_id, sender_name, sender_phone, sender_email, receiver_name, receiver_phone,
	freight, ins_vpp, cgst_rate, sgst_rate, igst_rate, cgst_amount, sgst_amount, igst_amount,
	bill_total, round_off, grand_total, paid_amount, delivery_pending_amount, payment_status,
	approved_at, rejected_at, reject_reason, booking_id,
	is_deleted, deleted_at, created_at, updated_at`

// qualify prefixes every column in a comma-separated list with a table alias.
func qualify(columns, alias string) string {
	parts := strings.Split(columns, ",")
	for i, part := range parts {
		parts[i] = alias + "." + strings.TrimSpace(part)
	}
	return strings.Join(parts, ", ")
}

func scanQuotation(row pgx.Row) (*Quotation, error) {
	var q Quotation
	var customerID, bookingID pgtype.Int8
	var senderEmail, rejectReason pgtype.Text
	var approvedAt, rejectedAt, deletedAt pgtype.Timestamptz

	err := row.Scan(
		&q.ID, &q.QuotationNo, &q.ReceiptNo, &q.StationCode, &q.ToStationCode, &q.Status,
		&customerID, &q.SenderName, &q.SenderPhone, &senderEmail, &q.ReceiverName, &q.ReceiverPhone,
		&q.Freight, &q.InsVpp, &q.CGSTRate, &q.SGSTRate, &q.IGSTRate, &q.CGSTAmount, &q.SGSTAmount, &q.IGSTAmount,
		&q.BillTotal, &q.RoundOff, &q.GrandTotal, &q.PaidAmount, &q.DeliveryPendingAmount, &q.PaymentStatus,
		&approvedAt, &rejectedAt, &rejectReason, &bookingID,
		&q.IsDeleted, &deletedAt, &q.CreatedAt, &q.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if customerID.Valid {
		q.CustomerID = &customerID.Int64
	}
	if bookingID.Valid {
		q.BookingID = &bookingID.Int64
	}
	if senderEmail.Valid {
		q.SenderEmail = &senderEmail.String
	}
	if rejectReason.Valid {
		q.RejectReason = &rejectReason.String
	}
	if approvedAt.Valid {
		q.ApprovedAt = &approvedAt.Time
	}
	if rejectedAt.Valid {
		q.RejectedAt = &rejectedAt.Time
	}
	if deletedAt.Valid {
		q.DeletedAt = &deletedAt.Time
	}
	return &q, nil
}

func (r *repository) loadItems(ctx context.Context, q *Quotation) error {
	rows, err := r.db.Query(ctx, `
		SELECT id, quotation_id, description, quantity, weight, unit_amount, amount,
		       insurance, vpp_amount, payment_tag, receipt_no, ref_no, created_at, updated_at
		FROM quotation_items
		WHERE quotation_id = $1
		ORDER BY id
	`, q.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var item Item
		if err := rows.Scan(
			&item.ID, &item.QuotationID, &item.Description, &item.Quantity, &item.Weight, &item.UnitAmount, &item.Amount,
			&item.Insurance, &item.VPPAmount, &item.PaymentTag, &item.ReceiptNo, &item.RefNo, &item.CreatedAt, &item.UpdatedAt,
		); err != nil {
			return err
		}
		q.Items = append(q.Items, item)
	}
	return rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (*Quotation, error) {
	query := fmt.Sprintf("SELECT %s FROM quotations WHERE id = $1", quotationColumns)
	q, err := scanQuotation(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := r.loadItems(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

func (r *repository) ExistsQuotationNo(ctx context.Context, quotationNo string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM quotations WHERE quotation_no = $1)", quotationNo).Scan(&exists)
	return exists, err
}

func (r *repository) List(ctx context.Context, req ListRequest) ([]Quotation, int, error) {
	conditions := []string{"NOT q.is_deleted"}
	var args []interface{}
	argPos := 1

	if req.StationCode != nil {
		conditions = append(conditions, fmt.Sprintf("q.station_code = $%d", argPos))
		args = append(args, *req.StationCode)
		argPos++
	}
	if req.Status != nil {
		conditions = append(conditions, fmt.Sprintf("q.status = $%d", argPos))
		args = append(args, *req.Status)
		argPos++
	}
	if req.DateFrom != nil {
		conditions = append(conditions, fmt.Sprintf("q.created_at >= $%d", argPos))
		args = append(args, *req.DateFrom)
		argPos++
	}
	if req.DateTo != nil {
		conditions = append(conditions, fmt.Sprintf("q.created_at <= $%d", argPos))
		args = append(args, *req.DateTo)
		argPos++
	}

	whereClause := "WHERE " + conditions[0]
	for i := 1; i < len(conditions); i++ {
		whereClause += " AND " + conditions[i]
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM quotations q %s", whereClause)
	var total int
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM quotations q
		%s
		ORDER BY q.created_at DESC, q.id DESC
		LIMIT $%d OFFSET $%d
	`, qualify(quotationColumns, "q"), whereClause, argPos, argPos+1)
	args = append(args, req.Limit, req.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var quotations []Quotation
	for rows.Next() {
		q, err := scanQuotation(rows)
		if err != nil {
			return nil, 0, err
		}
		quotations = append(quotations, *q)
	}
	return quotations, total, rows.Err()
}

func (r *repository) Create(ctx context.Context, q Quotation) (int64, error) {
	var customerID pgtype.Int8
	if q.CustomerID != nil {
		customerID = pgtype.Int8{Int64: *q.CustomerID, Valid: true}
	}
	var senderEmail pgtype.Text
	if q.SenderEmail != nil {
		senderEmail = pgtype.Text{String: *q.SenderEmail, Valid: true}
	}

	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO quotations (
			quotation_no, receipt_no, station_code, to_station_code, status,
			customer_id, sender_name, sender_phone, sender_email, receiver_name, receiver_phone,
			freight, ins_vpp, cgst_rate, sgst_rate, igst_rate, cgst_amount, sgst_amount, igst_amount,
			bill_total, round_off, grand_total, paid_amount, delivery_pending_amount, payment_status,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9, $10, $11,
			$12, $13, $14, $15, $16, $17, $18, $19,
			$20, $21, $22, $23, $24, $25,
			NOW(), NOW()
		)
		RETURNING id
	`,
		q.QuotationNo, q.ReceiptNo, q.StationCode, q.ToStationCode, q.Status,
		customerID, q.SenderName, q.SenderPhone, senderEmail, q.ReceiverName, q.ReceiverPhone,
		q.Freight, q.InsVpp, q.CGSTRate, q.SGSTRate, q.IGSTRate, q.CGSTAmount, q.SGSTAmount, q.IGSTAmount,
		q.BillTotal, q.RoundOff, q.GrandTotal, q.PaidAmount, q.DeliveryPendingAmount, q.PaymentStatus,
	).Scan(&id)
	if db.IsUniqueViolation(err) {
		return 0, fmt.Errorf("%w: %s", ErrIdentifierExhausted, q.QuotationNo)
	}
	return id, err
}

func (r *repository) InsertItem(ctx context.Context, item Item) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO quotation_items (
			quotation_id, description, quantity, weight, unit_amount, amount,
			insurance, vpp_amount, payment_tag, receipt_no, ref_no, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
		RETURNING id
	`,
		item.QuotationID, item.Description, item.Quantity, item.Weight, item.UnitAmount, item.Amount,
		item.Insurance, item.VPPAmount, item.PaymentTag, item.ReceiptNo, item.RefNo,
	).Scan(&id)
	return id, err
}

func (r *repository) DeleteItems(ctx context.Context, quotationID int64) error {
	_, err := r.db.Exec(ctx, "DELETE FROM quotation_items WHERE quotation_id = $1", quotationID)
	return err
}

func (r *repository) Update(ctx context.Context, id int64, updates map[string]interface{}) error {
	query := "UPDATE quotations SET updated_at = NOW()"
	var args []interface{}
	argPos := 1

	for _, col := range []string{
		"to_station_code", "sender_name", "sender_phone", "receiver_name", "receiver_phone",
		"freight", "ins_vpp", "cgst_rate", "sgst_rate", "igst_rate",
		"cgst_amount", "sgst_amount", "igst_amount",
		"bill_total", "round_off", "grand_total",
		"paid_amount", "delivery_pending_amount", "payment_status",
	} {
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

func (r *repository) UpdateStatus(ctx context.Context, id int64, status Status, at time.Time, reason *string) error {
	var col string
	switch status {
	case StatusApproved:
		col = "approved_at"
	case StatusRejected:
		col = "rejected_at"
	}

	query := "UPDATE quotations SET status = $1, updated_at = NOW()"
	args := []interface{}{status}
	argPos := 2
	if col != "" {
		query += fmt.Sprintf(", %s = $%d", col, argPos)
		args = append(args, at)
		argPos++
	}
	if reason != nil {
		query += fmt.Sprintf(", reject_reason = $%d", argPos)
		args = append(args, *reason)
		argPos++
	}
	query += fmt.Sprintf(" WHERE id = $%d", argPos)
	args = append(args, id)

	_, err := r.db.Exec(ctx, query, args...)
	return err
}

func (r *repository) MarkConverted(ctx context.Context, id, bookingID int64) error {
	_, err := r.db.Exec(ctx, `
		UPDATE quotations SET status = $1, booking_id = $2, updated_at = NOW() WHERE id = $3
	`, StatusConverted, bookingID, id)
	return err
}

func (r *repository) SoftDelete(ctx context.Context, id int64, at time.Time) error {
	_, err := r.db.Exec(ctx, `
		UPDATE quotations SET is_deleted = TRUE, deleted_at = $1, updated_at = NOW() WHERE id = $2
	`, at, id)
	return err
}

func (r *repository) PurgeDeletedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM quotations WHERE is_deleted AND deleted_at < $1
	`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
