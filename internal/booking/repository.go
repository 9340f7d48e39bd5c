package booking

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

// Repository defines data access for bookings.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	Get(ctx context.Context, id int64) (*Booking, error)
	GetByBookingNo(ctx context.Context, bookingNo string) (*Booking, error)
	ExistsBookingNo(ctx context.Context, bookingNo string) (bool, error)
	List(ctx context.Context, req ListRequest) ([]Booking, int, error)
	ListByRun(ctx context.Context, runID int64) ([]Booking, error)
	Create(ctx context.Context, b Booking) (int64, error)
	InsertParcel(ctx context.Context, p Parcel) (int64, error)
	DeleteParcels(ctx context.Context, bookingID int64) error
	Update(ctx context.Context, id int64, updates map[string]interface{}) error
	UpdateStatus(ctx context.Context, id int64, status Status, at time.Time, reason *string) error
	SetDeliveryRun(ctx context.Context, id int64, runID *int64, status Status) error
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

const bookingColumns = `
	id, booking_no, receipt_no, station_code, to_station_code, source, status,
	customer_id, sender_name, sender_phone, sender_email, receiver_name, receiver_phone,
	freight, ins_vpp, cgst_rate, sgst_rate, igst_rate, cgst_amount, sgst_amount, igst_amount,
	bill_total, round_off, grand_total, paid_amount, delivery_pending_amount, payment_status,
	delivery_run_id, approved_at, rejected_at, cancelled_at, delivered_at, cancel_reason,
	is_deleted, deleted_at, created_at, updated_at`

// qualify prefixes every column in a comma-separated list with a table alias.
func qualify(columns, alias string) string {
	parts := strings.Split(columns, ",")
	for i, part := range parts {
		parts[i] = alias + "." + strings.TrimSpace(part)
	}
	return strings.Join(parts, ", ")
}

func scanBooking(row pgx.Row) (*Booking, error) {
	var b Booking
	var customerID, runID pgtype.Int8
	var senderEmail, cancelReason pgtype.Text
	var approvedAt, rejectedAt, cancelledAt, deliveredAt, deletedAt pgtype.Timestamptz

	err := row.Scan(
		&b.ID, &b.BookingNo, &b.ReceiptNo, &b.StationCode, &b.ToStationCode, &b.Source, &b.Status,
		&customerID, &b.SenderName, &b.SenderPhone, &senderEmail, &b.ReceiverName, &b.ReceiverPhone,
		&b.Freight, &b.InsVpp, &b.CGSTRate, &b.SGSTRate, &b.IGSTRate, &b.CGSTAmount, &b.SGSTAmount, &b.IGSTAmount,
		&b.BillTotal, &b.RoundOff, &b.GrandTotal, &b.PaidAmount, &b.DeliveryPendingAmount, &b.PaymentStatus,
		&runID, &approvedAt, &rejectedAt, &cancelledAt, &deliveredAt, &cancelReason,
		&b.IsDeleted, &deletedAt, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if customerID.Valid {
		b.CustomerID = &customerID.Int64
	}
	if runID.Valid {
		b.DeliveryRunID = &runID.Int64
	}
	if senderEmail.Valid {
		b.SenderEmail = &senderEmail.String
	}
	if cancelReason.Valid {
		b.CancelReason = &cancelReason.String
	}
	if approvedAt.Valid {
		b.ApprovedAt = &approvedAt.Time
	}
	if rejectedAt.Valid {
		b.RejectedAt = &rejectedAt.Time
	}
	if cancelledAt.Valid {
		b.CancelledAt = &cancelledAt.Time
	}
	if deliveredAt.Valid {
		b.DeliveredAt = &deliveredAt.Time
	}
	if deletedAt.Valid {
		b.DeletedAt = &deletedAt.Time
	}
	return &b, nil
}

func (r *repository) loadParcels(ctx context.Context, b *Booking) error {
	rows, err := r.db.Query(ctx, `
		SELECT id, booking_id, description, quantity, weight, unit_amount, amount,
		       insurance, vpp_amount, payment_tag, receipt_no, ref_no, created_at, updated_at
		FROM booking_parcels
		WHERE booking_id = $1
		ORDER BY id
	`, b.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var p Parcel
		if err := rows.Scan(
			&p.ID, &p.BookingID, &p.Description, &p.Quantity, &p.Weight, &p.UnitAmount, &p.Amount,
			&p.Insurance, &p.VPPAmount, &p.PaymentTag, &p.ReceiptNo, &p.RefNo, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return err
		}
		b.Parcels = append(b.Parcels, p)
	}
	return rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (*Booking, error) {
	query := fmt.Sprintf("SELECT %s FROM bookings WHERE id = $1", bookingColumns)
	b, err := scanBooking(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := r.loadParcels(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (r *repository) GetByBookingNo(ctx context.Context, bookingNo string) (*Booking, error) {
	query := fmt.Sprintf("SELECT %s FROM bookings WHERE booking_no = $1", bookingColumns)
	b, err := scanBooking(r.db.QueryRow(ctx, query, bookingNo))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := r.loadParcels(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (r *repository) ExistsBookingNo(ctx context.Context, bookingNo string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM bookings WHERE booking_no = $1)", bookingNo).Scan(&exists)
	return exists, err
}

func (r *repository) List(ctx context.Context, req ListRequest) ([]Booking, int, error) {
	conditions := []string{"NOT b.is_deleted"}
	var args []interface{}
	argPos := 1

	if req.StationCode != nil {
		conditions = append(conditions, fmt.Sprintf("b.station_code = $%d", argPos))
		args = append(args, *req.StationCode)
		argPos++
	}
	if req.Status != nil {
		conditions = append(conditions, fmt.Sprintf("b.status = $%d", argPos))
		args = append(args, *req.Status)
		argPos++
	}
	if req.PaymentStatus != nil {
		conditions = append(conditions, fmt.Sprintf("b.payment_status = $%d", argPos))
		args = append(args, *req.PaymentStatus)
		argPos++
	}
	if req.DateFrom != nil {
		conditions = append(conditions, fmt.Sprintf("b.created_at >= $%d", argPos))
		args = append(args, *req.DateFrom)
		argPos++
	}
	if req.DateTo != nil {
		conditions = append(conditions, fmt.Sprintf("b.created_at <= $%d", argPos))
		args = append(args, *req.DateTo)
		argPos++
	}
	if req.Search != nil {
		conditions = append(conditions, fmt.Sprintf(
			"(b.booking_no ILIKE $%d OR b.receipt_no ILIKE $%d OR b.sender_name ILIKE $%d OR b.receiver_name ILIKE $%d)",
			argPos, argPos, argPos, argPos))
		args = append(args, "%"+*req.Search+"%")
		argPos++
	}

	whereClause := "WHERE " + conditions[0]
	for i := 1; i < len(conditions); i++ {
		whereClause += " AND " + conditions[i]
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM bookings b %s", whereClause)
	var total int
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM bookings b
		%s
		ORDER BY b.created_at DESC, b.id DESC
		LIMIT $%d OFFSET $%d
	`, qualify(bookingColumns, "b"), whereClause, argPos, argPos+1)
	args = append(args, req.Limit, req.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var bookings []Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, 0, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, total, rows.Err()
}

func (r *repository) ListByRun(ctx context.Context, runID int64) ([]Booking, error) {
	query := fmt.Sprintf("SELECT %s FROM bookings WHERE delivery_run_id = $1 ORDER BY id", bookingColumns)
	rows, err := r.db.Query(ctx, query, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

func (r *repository) Create(ctx context.Context, b Booking) (int64, error) {
	var customerID pgtype.Int8
	if b.CustomerID != nil {
		customerID = pgtype.Int8{Int64: *b.CustomerID, Valid: true}
	}
	var senderEmail pgtype.Text
	if b.SenderEmail != nil {
		senderEmail = pgtype.Text{String: *b.SenderEmail, Valid: true}
	}

	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO bookings (
			booking_no, receipt_no, station_code, to_station_code, source, status,
			customer_id, sender_name, sender_phone, sender_email, receiver_name, receiver_phone,
			freight, ins_vpp, cgst_rate, sgst_rate, igst_rate, cgst_amount, sgst_amount, igst_amount,
			bill_total, round_off, grand_total, paid_amount, delivery_pending_amount, payment_status,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10, $11, $12,
			$13, $14, $15, $16, $17, $18, $19, $20,
			$21, $22, $23, $24, $25, $26,
			NOW(), NOW()
		)
		RETURNING id
	`,
		b.BookingNo, b.ReceiptNo, b.StationCode, b.ToStationCode, b.Source, b.Status,
		customerID, b.SenderName, b.SenderPhone, senderEmail, b.ReceiverName, b.ReceiverPhone,
		b.Freight, b.InsVpp, b.CGSTRate, b.SGSTRate, b.IGSTRate, b.CGSTAmount, b.SGSTAmount, b.IGSTAmount,
		b.BillTotal, b.RoundOff, b.GrandTotal, b.PaidAmount, b.DeliveryPendingAmount, b.PaymentStatus,
	).Scan(&id)
	if db.IsUniqueViolation(err) {
		return 0, fmt.Errorf("%w: %s", ErrIdentifierExhausted, b.BookingNo)
	}
	return id, err
}

func (r *repository) InsertParcel(ctx context.Context, p Parcel) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO booking_parcels (
			booking_id, description, quantity, weight, unit_amount, amount,
			insurance, vpp_amount, payment_tag, receipt_no, ref_no, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
		RETURNING id
	`,
		p.BookingID, p.Description, p.Quantity, p.Weight, p.UnitAmount, p.Amount,
		p.Insurance, p.VPPAmount, p.PaymentTag, p.ReceiptNo, p.RefNo,
	).Scan(&id)
	return id, err
}

func (r *repository) DeleteParcels(ctx context.Context, bookingID int64) error {
	_, err := r.db.Exec(ctx, "DELETE FROM booking_parcels WHERE booking_id = $1", bookingID)
	return err
}

func (r *repository) Update(ctx context.Context, id int64, updates map[string]interface{}) error {
	query := "UPDATE bookings SET updated_at = NOW()"
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
	case StatusCancelled:
		col = "cancelled_at"
	case StatusDelivered:
		col = "delivered_at"
	}

	query := "UPDATE bookings SET status = $1, updated_at = NOW()"
	args := []interface{}{status}
	argPos := 2
	if col != "" {
		query += fmt.Sprintf(", %s = $%d", col, argPos)
		args = append(args, at)
		argPos++
	}
	if reason != nil {
		query += fmt.Sprintf(", cancel_reason = $%d", argPos)
		args = append(args, *reason)
		argPos++
	}
	query += fmt.Sprintf(" WHERE id = $%d", argPos)
	args = append(args, id)

	_, err := r.db.Exec(ctx, query, args...)
	return err
}

func (r *repository) SetDeliveryRun(ctx context.Context, id int64, runID *int64, status Status) error {
	var run pgtype.Int8
	if runID != nil {
		run = pgtype.Int8{Int64: *runID, Valid: true}
	}
	_, err := r.db.Exec(ctx, `
		UPDATE bookings SET delivery_run_id = $1, status = $2, updated_at = NOW() WHERE id = $3
	`, run, status, id)
	return err
}

func (r *repository) SoftDelete(ctx context.Context, id int64, at time.Time) error {
	_, err := r.db.Exec(ctx, `
		UPDATE bookings SET is_deleted = TRUE, deleted_at = $1, updated_at = NOW() WHERE id = $2
	`, at, id)
	return err
}

func (r *repository) PurgeDeletedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		DELETE FROM bookings WHERE is_deleted AND deleted_at < $1
	`, cutoff)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
