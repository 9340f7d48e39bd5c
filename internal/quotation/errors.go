package quotation

import "errors"

// Domain errors for quotations.
var (
	// ErrNotFound indicates the requested quotation was not found.
	ErrNotFound = errors.New("quotation not found")

	// ErrStationNotFound indicates the quotation references an unknown station.
	ErrStationNotFound = errors.New("station not found")

	ErrCannotEdit      = errors.New("only pending quotations can be edited")
	ErrCannotApprove   = errors.New("only pending quotations can be approved")
	ErrCannotReject    = errors.New("cannot reject quotation in current status")
	ErrAlreadyApproved = errors.New("quotation already approved")
	ErrNotApproved     = errors.New("only approved quotations can be converted")
	ErrAlreadyDeleted  = errors.New("quotation already deleted")

	ErrEmptyItems      = errors.New("at least one item is required")
	ErrInvalidQuantity = errors.New("quantity must be at least one")
	ErrNegativeAmount  = errors.New("amounts cannot be negative")

	// ErrIdentifierExhausted indicates the bounded identifier retry ran out
	// of attempts without finding an unused quotation number.
	ErrIdentifierExhausted = errors.New("could not allocate a unique quotation number")
)
