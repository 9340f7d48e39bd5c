package invoice

import "errors"

// Domain errors for invoices.
var (
	// ErrNotFound indicates the requested invoice was not found.
	ErrNotFound = errors.New("invoice not found")

	ErrBookingNotDelivered = errors.New("only delivered bookings can be invoiced")
	ErrAlreadyInvoiced     = errors.New("booking already has an invoice")
	ErrNothingOutstanding  = errors.New("booking has no outstanding balance")
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrAlreadySettled      = errors.New("invoice is already fully paid")
)
