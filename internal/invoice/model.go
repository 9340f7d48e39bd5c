// Package invoice raises invoices for delivered bookings and tracks the
// payments collected against them.
package invoice

import (
	"time"

	"github.com/bps-logistics/backoffice/internal/payments"
)

// Invoice represents one receivable raised against a delivered booking.
type Invoice struct {
	ID          int64           `json:"id" db:"id"`
	InvoiceNo   string          `json:"invoice_no" db:"invoice_no"`
	BookingID   int64           `json:"booking_id" db:"booking_id"`
	StationCode string          `json:"station_code" db:"station_code"`
	PartyName   string          `json:"party_name" db:"party_name"`
	Total       float64         `json:"total" db:"total"`
	PaidAmount  float64         `json:"paid_amount" db:"paid_amount"`
	Status      payments.Status `json:"status" db:"status"`
	Notes       *string         `json:"notes,omitempty" db:"notes"`

	IssuedAt time.Time  `json:"issued_at" db:"issued_at"`
	PaidAt   *time.Time `json:"paid_at,omitempty" db:"paid_at"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
	Payments  []Payment `json:"payments,omitempty" db:"-"`
}

// Outstanding returns the unpaid balance.
func (inv *Invoice) Outstanding() float64 {
	return payments.Round2(inv.Total - inv.PaidAmount)
}

// Payment is one amount collected against an invoice.
type Payment struct {
	ID         int64     `json:"id" db:"id"`
	InvoiceID  int64     `json:"invoice_id" db:"invoice_id"`
	Amount     float64   `json:"amount" db:"amount"`
	Method     string    `json:"method" db:"method"`
	Reference  string    `json:"reference" db:"reference"`
	ReceivedAt time.Time `json:"received_at" db:"received_at"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// Aging groups outstanding balances by how long they have been open.
type Aging struct {
	Current     float64 `json:"current"`
	Days30      float64 `json:"days_30"`
	Days60      float64 `json:"days_60"`
	Days90      float64 `json:"days_90"`
	Days120Plus float64 `json:"days_120_plus"`
}
