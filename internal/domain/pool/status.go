package pool

import (
	"errors"
	"strings"
)

// Status is a pool lifecycle status as stored in the `pools` table.
type Status string

const (
	StatusActive Status = "ACTIVE"
	StatusClosed Status = "CLOSED"
)

var ErrInvalidStatus = errors.New("invalid pool status")

// ParseStatus normalizes (uppercases+trims) and validates a status string.
func ParseStatus(in string) (Status, error) {
	status := Status(strings.ToUpper(strings.TrimSpace(in)))
	if status.Valid() {
		return status, nil
	}
	return "", ErrInvalidStatus
}

// Valid reports whether status is one of the allowed pool status constants.
func (status Status) Valid() bool {
	switch status {
	case StatusActive, StatusClosed:
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
// CLOSED pools never reopen.
func (status Status) Terminal() bool {
	return status == StatusClosed
}
