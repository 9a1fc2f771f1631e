package service

import "errors"

var (
	// ErrNoVehicles means no pool matched and no vehicle was free to start a
	// new one. The request is rejected without creating anything.
	ErrNoVehicles = errors.New("no vehicles available")

	// ErrAlreadyCancelled guards the terminal state: a second cancel is a
	// conflict, never a repeat of the unwind.
	ErrAlreadyCancelled = errors.New("ride already cancelled")

	// ErrNotPooled means a matched ride has no membership record. This is a
	// store inconsistency and should never happen.
	ErrNotPooled = errors.New("ride has no pool membership")
)
