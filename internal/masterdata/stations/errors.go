package stations

import "errors"

// Domain errors for stations.
var (
	// ErrNotFound indicates the requested station was not found.
	ErrNotFound = errors.New("station not found")

	ErrCodeTaken = errors.New("station code already in use")
)
