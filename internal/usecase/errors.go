package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("not found")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
	ErrSnapshotUnavailable   = errors.New("snapshot unavailable")
)

// ErrRefreshInFlight is returned by Refresh when another cycle still owns the snapshot.
var ErrRefreshInFlight = errors.New("snapshot refresh already in flight")
