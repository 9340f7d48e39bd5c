// Package delivery provides delivery runs: a driver and vehicle taking a
// batch of bookings out for delivery.
package delivery

import (
	"time"

	"github.com/bps-logistics/backoffice/internal/booking"
)

// Status represents the lifecycle of a delivery run.
type Status string

const (
	StatusOpen       Status = "OPEN"       // Accepting bookings
	StatusDispatched Status = "DISPATCHED" // Out for delivery
	StatusCompleted  Status = "COMPLETED"  // All bookings finalized
	StatusCancelled  Status = "CANCELLED"  // Aborted, bookings released
)

// CanModify reports whether bookings can still be added or removed.
func (s Status) CanModify() bool {
	return s == StatusOpen
}

// CanCancel reports whether the run can still be aborted.
func (s Status) CanCancel() bool {
	return s == StatusOpen || s == StatusDispatched
}

// Run represents one delivery trip.
type Run struct {
	ID          int64   `json:"id" db:"id"`
	RunNo       string  `json:"run_no" db:"run_no"`
	StationCode string  `json:"station_code" db:"station_code"`
	Status      Status  `json:"status" db:"status"`
	DriverName  string  `json:"driver_name" db:"driver_name"`
	DriverPhone string  `json:"driver_phone" db:"driver_phone"`
	VehicleNo   string  `json:"vehicle_no" db:"vehicle_no"`
	Notes       *string `json:"notes,omitempty" db:"notes"`

	DispatchedAt *time.Time `json:"dispatched_at,omitempty" db:"dispatched_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty" db:"completed_at"`
	CancelledAt  *time.Time `json:"cancelled_at,omitempty" db:"cancelled_at"`

	CreatedAt time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt time.Time         `json:"updated_at" db:"updated_at"`
	Bookings  []booking.Booking `json:"bookings,omitempty" db:"-"`
}
