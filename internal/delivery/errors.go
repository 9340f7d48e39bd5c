package delivery

import "errors"

// Domain errors for delivery runs.
var (
	// ErrNotFound indicates the requested delivery run was not found.
	ErrNotFound = errors.New("delivery run not found")

	ErrCannotModify   = errors.New("only open runs accept booking changes")
	ErrCannotDispatch = errors.New("only open runs can be dispatched")
	ErrCannotComplete = errors.New("only dispatched runs can be completed")
	ErrCannotCancel   = errors.New("cannot cancel run in current status")
	ErrEmptyRun       = errors.New("run has no bookings")
	ErrNoBookings     = errors.New("at least one booking is required")

	// ErrIdentifierExhausted indicates the bounded identifier retry ran out
	// of attempts without finding an unused run number.
	ErrIdentifierExhausted = errors.New("could not allocate a unique run number")
)
