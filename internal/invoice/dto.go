package invoice

import "time"

// CreateRequest raises an invoice for a delivered booking. Total defaults
// to the booking's collect-on-delivery balance when zero.
type CreateRequest struct {
	BookingID int64   `json:"booking_id" validate:"required,gt=0"`
	Total     float64 `json:"total" validate:"gte=0"`
	Notes     *string `json:"notes,omitempty" validate:"omitempty,max=500"`
}

// PaymentRequest records a collected amount.
type PaymentRequest struct {
	Amount    float64 `json:"amount" validate:"required,gt=0"`
	Method    string  `json:"method" validate:"required,oneof=CASH UPI CARD BANK_TRANSFER CHEQUE"`
	Reference string  `json:"reference" validate:"max=100"`
}

// ListRequest filters invoice listings.
type ListRequest struct {
	StationCode *string    `json:"station_code,omitempty"`
	Status      *string    `json:"status,omitempty"`
	DateFrom    *time.Time `json:"date_from,omitempty"`
	DateTo      *time.Time `json:"date_to,omitempty"`
	Limit       int        `json:"limit"`
	Offset      int        `json:"offset"`
}
