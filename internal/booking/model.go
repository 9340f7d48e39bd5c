// Package booking provides the booking aggregate: the shipment record that
// owns parcels, totals, payment split and receipt number.
package booking

import (
	"time"

	"github.com/bps-logistics/backoffice/internal/payments"
)

// Status represents the lifecycle of a booking.
type Status string

const (
	StatusBooked    Status = "BOOKED"    // Persisted with totals and receipt number
	StatusApproved  Status = "APPROVED"  // Public booking accepted by the station
	StatusRejected  Status = "REJECTED"  // Public booking turned down
	StatusAssigned  Status = "ASSIGNED"  // On an active delivery run
	StatusDelivered Status = "DELIVERED" // Terminal success
	StatusCancelled Status = "CANCELLED" // Terminal, explicit cancellation
)

// Source distinguishes counter bookings from ones submitted on the website.
// Only public bookings go through approval.
type Source string

const (
	SourceCounter Source = "COUNTER"
	SourcePublic  Source = "PUBLIC"
)

// IsValid checks if the status is valid.
func (s Status) IsValid() bool {
	switch s {
	case StatusBooked, StatusApproved, StatusRejected, StatusAssigned, StatusDelivered, StatusCancelled:
		return true
	default:
		return false
	}
}

// CanEdit reports whether the booking can still be edited.
func (s Status) CanEdit() bool {
	return s == StatusBooked || s == StatusApproved
}

// CanCancel reports whether the booking can be cancelled.
func (s Status) CanCancel() bool {
	return s == StatusBooked || s == StatusApproved || s == StatusAssigned
}

// CanAssign reports whether the booking can join a delivery run.
func (s Status) CanAssign() bool {
	return s == StatusBooked || s == StatusApproved
}

// Booking represents one shipment from a station.
type Booking struct {
	ID            int64   `json:"id" db:"id"`
	BookingNo     string  `json:"booking_no" db:"booking_no"`
	ReceiptNo     string  `json:"receipt_no" db:"receipt_no"`
	StationCode   string  `json:"station_code" db:"station_code"`
	ToStationCode string  `json:"to_station_code" db:"to_station_code"`
	Source        Source  `json:"source" db:"source"`
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

	PaidAmount             float64         `json:"paid_amount" db:"paid_amount"`
	DeliveryPendingAmount  float64         `json:"delivery_pending_amount" db:"delivery_pending_amount"`
	PaymentStatus          payments.Status `json:"payment_status" db:"payment_status"`

	DeliveryRunID *int64     `json:"delivery_run_id,omitempty" db:"delivery_run_id"`
	ApprovedAt    *time.Time `json:"approved_at,omitempty" db:"approved_at"`
	RejectedAt    *time.Time `json:"rejected_at,omitempty" db:"rejected_at"`
	CancelledAt   *time.Time `json:"cancelled_at,omitempty" db:"cancelled_at"`
	DeliveredAt   *time.Time `json:"delivered_at,omitempty" db:"delivered_at"`
	CancelReason  *string    `json:"cancel_reason,omitempty" db:"cancel_reason"`

	IsDeleted bool       `json:"is_deleted" db:"is_deleted"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
	Parcels   []Parcel  `json:"parcels,omitempty" db:"-"`
}

// ActiveDelivery reports whether the booking currently sits on a run.
func (b *Booking) ActiveDelivery() bool {
	return b.Status == StatusAssigned && b.DeliveryRunID != nil
}

// Parcel is one shipped article within a booking. Every parcel of a booking
// carries the same receipt number once the booking is saved.
type Parcel struct {
	ID          int64        `json:"id" db:"id"`
	BookingID   int64        `json:"booking_id" db:"booking_id"`
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

// PaymentLines projects the parcels into allocator input.
func PaymentLines(parcels []Parcel) []payments.Line {
	lines := make([]payments.Line, 0, len(parcels))
	for _, p := range parcels {
		lines = append(lines, payments.Line{Amount: p.Amount, Tag: p.PaymentTag})
	}
	return lines
}
