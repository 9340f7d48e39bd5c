package booking

import "errors"

// Domain errors for bookings.
var (
	// ErrNotFound indicates the requested booking was not found.
	ErrNotFound = errors.New("booking not found")

	// Status transition errors.
	ErrCannotEdit      = errors.New("cannot edit booking in current status")
	ErrCannotApprove   = errors.New("only pending public bookings can be approved")
	ErrCannotReject    = errors.New("cannot reject booking in current status")
	ErrAlreadyApproved = errors.New("booking already approved")
	ErrCannotCancel    = errors.New("cannot cancel booking in current status")
	ErrCannotAssign    = errors.New("cannot assign booking in current status")
	ErrCannotDeliver   = errors.New("cannot finalize booking in current status")
	ErrNotAssigned     = errors.New("booking is not on a delivery run")
	ErrAlreadyDeleted  = errors.New("booking already deleted")

	// Validation errors.
	ErrEmptyParcels    = errors.New("at least one parcel is required")
	ErrInvalidQuantity = errors.New("quantity must be at least one")
	ErrNegativeAmount  = errors.New("amounts cannot be negative")
	ErrInvalidTag      = errors.New("payment tag must be PAID, TO_PAY or NONE")
	ErrReasonTooShort  = errors.New("cancellation reason must be at least 10 characters")

	// ErrStationNotFound indicates the booking references an unknown station.
	ErrStationNotFound = errors.New("station not found")

	// ErrIdentifierExhausted indicates the bounded identifier retry ran out
	// of attempts without finding an unused booking number.
	ErrIdentifierExhausted = errors.New("could not allocate a unique booking number")
)
