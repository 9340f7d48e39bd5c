package quotation

import (
	"time"

	"github.com/bps-logistics/backoffice/internal/payments"
)

// CreateRequest carries the input for quoting a shipment.
type CreateRequest struct {
	StationCode   string          `json:"station_code" validate:"required,max=10"`
	ToStationCode string          `json:"to_station_code" validate:"required,max=10"`
	CustomerID    *int64          `json:"customer_id,omitempty" validate:"omitempty,gt=0"`
	SenderName    string          `json:"sender_name" validate:"required,max=120"`
	SenderPhone   string          `json:"sender_phone" validate:"required,max=20"`
	SenderEmail   *string         `json:"sender_email,omitempty" validate:"omitempty,email"`
	ReceiverName  string          `json:"receiver_name" validate:"required,max=120"`
	ReceiverPhone string          `json:"receiver_phone" validate:"required,max=20"`
	Freight       float64         `json:"freight" validate:"gte=0"`
	InsVpp        float64         `json:"ins_vpp" validate:"gte=0"`
	BillTotal     float64         `json:"bill_total" validate:"gte=0"`
	Items         []CreateItemReq `json:"items" validate:"required,min=1,dive"`
}

// CreateItemReq is one item in a create request.
type CreateItemReq struct {
	Description string       `json:"description" validate:"max=200"`
	Quantity    int          `json:"quantity" validate:"required,gte=1"`
	Weight      float64      `json:"weight" validate:"gte=0"`
	UnitAmount  float64      `json:"unit_amount" validate:"gte=0"`
	Amount      float64      `json:"amount" validate:"gte=0"`
	Insurance   float64      `json:"insurance" validate:"gte=0"`
	VPPAmount   float64      `json:"vpp_amount" validate:"gte=0"`
	PaymentTag  payments.Tag `json:"payment_tag" validate:"omitempty,oneof=PAID TO_PAY NONE"`
	RefNo       string       `json:"ref_no" validate:"max=50"`
}

// UpdateRequest carries editable fields; items, when present, replace the
// full item list and inherit the allocated receipt number.
type UpdateRequest struct {
	ToStationCode *string          `json:"to_station_code,omitempty"`
	SenderName    *string          `json:"sender_name,omitempty"`
	SenderPhone   *string          `json:"sender_phone,omitempty"`
	ReceiverName  *string          `json:"receiver_name,omitempty"`
	ReceiverPhone *string          `json:"receiver_phone,omitempty"`
	Freight       *float64         `json:"freight,omitempty" validate:"omitempty,gte=0"`
	InsVpp        *float64         `json:"ins_vpp,omitempty" validate:"omitempty,gte=0"`
	Items         *[]CreateItemReq `json:"items,omitempty" validate:"omitempty,min=1,dive"`
}

// RejectRequest carries the rejection reason.
type RejectRequest struct {
	Reason string `json:"reason"`
}

// ListRequest filters quotation listings.
type ListRequest struct {
	StationCode *string    `json:"station_code,omitempty"`
	Status      *Status    `json:"status,omitempty"`
	DateFrom    *time.Time `json:"date_from,omitempty"`
	DateTo      *time.Time `json:"date_to,omitempty"`
	Limit       int        `json:"limit"`
	Offset      int        `json:"offset"`
}
