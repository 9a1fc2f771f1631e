package pool

import (
	"errors"
	"time"

	"ridepool/internal/domain/vehicle"
)

// Pool is a vehicle instance plus the accounting for the rides sharing it.
// UsedSeats, UsedLuggage, and RouteDistanceKM are derived solely from the
// pool's current member set and are adjusted only through the ledger.
type Pool struct {
	ID              string
	VehicleID       string
	Status          Status
	UsedSeats       int
	UsedLuggage     int
	RouteDistanceKM float64
	CreatedAt       time.Time
	ClosedAt        *time.Time

	// Vehicle is populated by queries that join the vehicles table.
	Vehicle *vehicle.Vehicle
}

// Member associates exactly one ride request with exactly one pool.
type Member struct {
	RideID    string
	PoolID    string
	CreatedAt time.Time
}

var (
	ErrVehicleRequired = errors.New("vehicle id is required")
	ErrPoolClosed      = errors.New("pool is closed")
	ErrOverCapacity    = errors.New("pool usage would exceed vehicle capacity")
	ErrNegativeUsage   = errors.New("pool usage would become negative")
)

// New returns a fresh ACTIVE pool with zero usage and zero route distance.
func New(vehicleID string) (*Pool, error) {
	if vehicleID == "" {
		return nil, ErrVehicleRequired
	}
	return &Pool{
		VehicleID: vehicleID,
		Status:    StatusActive,
	}, nil
}

// RemainingSeats returns the seat headroom against the joined vehicle.
func (p *Pool) RemainingSeats() int {
	if p.Vehicle == nil {
		return 0
	}
	return p.Vehicle.TotalSeats - p.UsedSeats
}

// RemainingLuggage returns the luggage headroom against the joined vehicle.
func (p *Pool) RemainingLuggage() int {
	if p.Vehicle == nil {
		return 0
	}
	return p.Vehicle.LuggageCapacity - p.UsedLuggage
}

// CanAccommodate reports whether the pool is ACTIVE and has room for the
// requested seats and luggage.
func (p *Pool) CanAccommodate(seats, luggage int) bool {
	return p.Status == StatusActive &&
		p.RemainingSeats() >= seats &&
		p.RemainingLuggage() >= luggage
}

// CheckAdjust verifies that applying the signed deltas keeps the capacity
// invariant: 0 <= used <= vehicle capacity for both seats and luggage.
func (p *Pool) CheckAdjust(seatsDelta, luggageDelta int) error {
	if p.Status.Terminal() {
		return ErrPoolClosed
	}
	newSeats := p.UsedSeats + seatsDelta
	newLuggage := p.UsedLuggage + luggageDelta
	if newSeats < 0 || newLuggage < 0 {
		return ErrNegativeUsage
	}
	if p.Vehicle != nil && (newSeats > p.Vehicle.TotalSeats || newLuggage > p.Vehicle.LuggageCapacity) {
		return ErrOverCapacity
	}
	return nil
}
