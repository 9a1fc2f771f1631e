package vehicle

import (
	"errors"
	"time"
)

// Vehicle is the domain entity corresponding to the `vehicles` table.
// Vehicles are seeded administratively and are immutable afterwards.
type Vehicle struct {
	ID              string
	TotalSeats      int
	LuggageCapacity int
	IsActive        bool
	CreatedAt       time.Time
}

var (
	ErrSeatsNotPositive = errors.New("total seats must be a positive integer")
	ErrLuggageNegative  = errors.New("luggage capacity must be a non-negative integer")
)

// New validates capacities and returns an active vehicle.
func New(totalSeats, luggageCapacity int) (*Vehicle, error) {
	if totalSeats <= 0 {
		return nil, ErrSeatsNotPositive
	}
	if luggageCapacity < 0 {
		return nil, ErrLuggageNegative
	}
	return &Vehicle{
		TotalSeats:      totalSeats,
		LuggageCapacity: luggageCapacity,
		IsActive:        true,
	}, nil
}

// Fits reports whether the vehicle's total capacity can hold the request.
func (v *Vehicle) Fits(seats, luggage int) bool {
	return v.IsActive && v.TotalSeats >= seats && v.LuggageCapacity >= luggage
}
