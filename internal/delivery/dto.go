package delivery

import "time"

// CreateRequest carries the input for opening a delivery run.
type CreateRequest struct {
	StationCode string  `json:"station_code" validate:"required,max=10"`
	DriverName  string  `json:"driver_name" validate:"required,max=120"`
	DriverPhone string  `json:"driver_phone" validate:"required,max=20"`
	VehicleNo   string  `json:"vehicle_no" validate:"required,max=20"`
	Notes       *string `json:"notes,omitempty" validate:"omitempty,max=500"`
}

// AssignRequest lists bookings to place on a run.
type AssignRequest struct {
	BookingIDs []int64 `json:"booking_ids" validate:"required,min=1,dive,gt=0"`
}

// ListRequest filters run listings.
type ListRequest struct {
	StationCode *string    `json:"station_code,omitempty"`
	Status      *Status    `json:"status,omitempty"`
	DateFrom    *time.Time `json:"date_from,omitempty"`
	DateTo      *time.Time `json:"date_to,omitempty"`
	Limit       int        `json:"limit"`
	Offset      int        `json:"offset"`
}
