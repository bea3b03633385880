package errors

import "errors"

var (
	// ErrNotFound is a generic sentinel for missing resources.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized is a generic sentinel for auth failures.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidArgument is a generic sentinel for invalid input.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrProfileUnavailable marks missing or empty underlying booking data.
	// Callers resolve it with neutral defaults instead of surfacing it.
	ErrProfileUnavailable = errors.New("profile unavailable")
	// ErrStrategyFailed marks any error inside a single recommendation
	// strategy. It contributes zero recommendations and never aborts the
	// aggregation.
	ErrStrategyFailed = errors.New("strategy failed")
	// ErrDataAccessTimeout marks a timed-out data-access call; treated the
	// same as ErrStrategyFailed at the aggregation boundary.
	ErrDataAccessTimeout = errors.New("data access timeout")
)
