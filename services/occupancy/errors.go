package occupancy

import "errors"

var (
	// ErrSpotNotFound is returned when the spot reference does not resolve.
	ErrSpotNotFound = errors.New("spot not found")
	// ErrStoreUnavailable wraps transient persistence failures. Callers must
	// treat it as "not available" and offer a retry.
	ErrStoreUnavailable = errors.New("occupancy store unavailable")
	// ErrInvalidInterval is returned for queries with start >= end.
	ErrInvalidInterval = errors.New("invalid interval: start must be before end")
	// ErrOccupancyChanged is returned by guarded updates whose precondition
	// no longer holds.
	ErrOccupancyChanged = errors.New("spot occupancy changed concurrently")
	// ErrClaimBusy is returned when another request holds the spot claim.
	ErrClaimBusy = errors.New("spot is being claimed by another request")
)
