package customers

import "errors"

// Domain errors for customers.
var (
	// ErrNotFound indicates the requested customer was not found.
	ErrNotFound = errors.New("customer not found")

	ErrPhoneTaken = errors.New("phone number already registered")
)
