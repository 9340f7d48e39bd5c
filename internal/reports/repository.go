package reports

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) StationDaySummaries(ctx context.Context, day time.Time) ([]StationDaySummary, error) {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.Add(24 * time.Hour)

	rows, err := r.pool.Query(ctx, `
		SELECT b.station_code,
		       COUNT(*)                                  AS bookings,
		       COALESCE(SUM(pc.parcels), 0)              AS parcels,
		       COALESCE(SUM(b.bill_total), 0)            AS bill_total,
		       COALESCE(SUM(b.grand_total), 0)           AS grand_total,
		       COALESCE(SUM(b.paid_amount), 0)           AS paid,
		       COALESCE(SUM(b.delivery_pending_amount), 0) AS pending
		FROM bookings b
		LEFT JOIN (
			SELECT booking_id, SUM(quantity) AS parcels
			FROM booking_parcels
			GROUP BY booking_id
		) pc ON pc.booking_id = b.id
		WHERE NOT b.is_deleted
		  AND b.created_at >= $1 AND b.created_at < $2
		GROUP BY b.station_code
		ORDER BY b.station_code
	`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	date := start.Format("2006-01-02")
	var out []StationDaySummary
	for rows.Next() {
		var s StationDaySummary
		if err := rows.Scan(&s.StationCode, &s.Bookings, &s.Parcels, &s.BillTotal, &s.GrandTotal, &s.Paid, &s.Pending); err != nil {
			return nil, err
		}
		s.Date = date
		out = append(out, s)
	}
	return out, rows.Err()
}
