// Package quotation provides the quotation aggregate: a priced shipment
// offer that can be approved and converted into a booking.
package quotation

import (
	"time"

	"github.com/bps-logistics/backoffice/internal/payments"
)

// Status represents the lifecycle of a quotation.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusApproved  Status = "APPROVED"
	StatusRejected  Status = "REJECTED"
	StatusConverted Status = "CONVERTED"
)

// CanEdit reports whether the quotation can still be edited.
func (s Status) CanEdit() bool {
	return s == StatusPending
}

// Quotation represents one quoted shipment.
type Quotation struct {
	ID            int64   `json:"id" db:"id"`
	QuotationNo   string  `json:"quotation_no" db:"quotation_no"`
	ReceiptNo     string  `json:"receipt_no" db:"receipt_no"`
	StationCode   string  `json:"station_code" db:"station_code"`
	ToStationCode string  `json:"to_station_code" db:"to_station_code"`
	Status        Status  `json:"status" db:"status"`
	CustomerID    *int64  `json:"customer_id,omitempty" db:"customer_id"`
	SenderName    string  `json:"sender_name" db:"sender_name"`
	SenderPhone   string  `json:"sender_phone" db:"sender_phone"`
	SenderEmail   *string `json:"sender_email,omitempty" db:"sender_email"`
	ReceiverName  string  `json:"receiver_name" db:"receiver_name"`
	ReceiverPhone string  `json:"receiver_phone" db:"receiver_phone"`

	Freight    float64 `json:"freight" db:"freight"`
	InsVpp     float64 `json:"ins_vpp" db:"ins_vpp"`
	CGSTRate   float64 `json:"cgst_rate" db:"cgst_rate"`
	SGSTRate   float64 `json:"sgst_rate" db:"sgst_rate"`
	IGSTRate   float64 `json:"igst_rate" db:"igst_rate"`
	CGSTAmount float64 `json:"cgst_amount" db:"cgst_amount"`
	SGSTAmount float64 `json:"sgst_amount" db:"sgst_amount"`
	IGSTAmount float64 `json:"igst_amount" db:"igst_amount"`
	BillTotal  float64 `json:"bill_total" db:"bill_total"`
	RoundOff   float64 `json:"round_off" db:"round_off"`
	GrandTotal float64 `json:"grand_total" db:"grand_total"`

	PaidAmount            float64         `json:"paid_amount" db:"paid_amount"`
	DeliveryPendingAmount float64         `json:"delivery_pending_amount" db:"delivery_pending_amount"`
	PaymentStatus         payments.Status `json:"payment_status" db:"payment_status"`

	ApprovedAt   *time.Time `json:"approved_at,omitempty" db:"approved_at"`
	RejectedAt   *time.Time `json:"rejected_at,omitempty" db:"rejected_at"`
	RejectReason *string    `json:"reject_reason,omitempty" db:"reject_reason"`
	BookingID    *int64     `json:"booking_id,omitempty" db:"booking_id"`

	IsDeleted bool       `json:"is_deleted" db:"is_deleted"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
	Items     []Item    `json:"items,omitempty" db:"-"`
}

// Item is one quoted article. Items carry the quotation's receipt number
// once it is saved, the same way booking parcels do.
type Item struct {
	ID          int64        `json:"id" db:"id"`
	QuotationID int64        `json:"quotation_id" db:"quotation_id"`
	Description string       `json:"description" db:"description"`
	Quantity    int          `json:"quantity" db:"quantity"`
	Weight      float64      `json:"weight" db:"weight"`
	UnitAmount  float64      `json:"unit_amount" db:"unit_amount"`
	Amount      float64      `json:"amount" db:"amount"`
	Insurance   float64      `json:"insurance" db:"insurance"`
	VPPAmount   float64      `json:"vpp_amount" db:"vpp_amount"`
	PaymentTag  payments.Tag `json:"payment_tag" db:"payment_tag"`
	ReceiptNo   string       `json:"receipt_no" db:"receipt_no"`
	RefNo       string       `json:"ref_no" db:"ref_no"`
	CreatedAt   time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at" db:"updated_at"`
}
