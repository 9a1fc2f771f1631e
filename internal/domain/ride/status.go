package ride

import (
	"errors"
	"strings"
)

// Status is a ride request status as stored in the `ride_requests` table.
//
// PENDING exists only inside the create transaction: creation and matching
// commit together, so the only externally observable statuses are MATCHED
// and CANCELLED.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusMatched   Status = "MATCHED"
	StatusCancelled Status = "CANCELLED"
)

var ErrInvalidStatus = errors.New("invalid ride status")

// ParseStatus normalizes (uppercases+trims) and validates a status string.
func ParseStatus(in string) (Status, error) {
	status := Status(strings.ToUpper(strings.TrimSpace(in)))
	if status.Valid() {
		return status, nil
	}
	return "", ErrInvalidStatus
}

// Valid reports whether status is one of the allowed ride status constants.
func (status Status) Valid() bool {
	switch status {
	case StatusPending, StatusMatched, StatusCancelled:
		return true
	default:
		return false
	}
}

// String returns the string representation of the Status.
func (status Status) String() string {
	return string(status)
}

// Terminal reports whether the status admits no further transitions.
func (status Status) Terminal() bool {
	return status == StatusCancelled
}
