package ports

import (
	"context"

	"ridepool/internal/domain/ride"
	"ridepool/internal/domain/vehicle"
)

// CreateRideInput carries the validated-at-the-service create request.
type CreateRideInput struct {
	UserID                 string
	PickupLat              float64
	PickupLng              float64
	DropLat                float64
	DropLng                float64
	SeatsRequired          int
	LuggageUnits           int
	DetourTolerancePercent float64
}

// CreateRideResult reports the committed assignment.
type CreateRideResult struct {
	RideID  string  `json:"ride_id"`
	PoolID  string  `json:"pool_id"`
	Price   float64 `json:"price"`
	Message string  `json:"message"`
}

// CancelRideResult reports a committed cancellation.
type CancelRideResult struct {
	RideID  string `json:"ride_id"`
	Message string `json:"message"`
}

// RideService is the transactional orchestrator for the ride lifecycle.
type RideService interface {
	// CreateRide validates, matches, prices, and books the ride in one
	// transaction: the ride is either fully created-and-matched or not
	// created at all.
	CreateRide(ctx context.Context, in CreateRideInput) (CreateRideResult, error)

	// CancelRide unwinds the ride's pool booking and marks it CANCELLED,
	// closing the pool when its last member leaves.
	CancelRide(ctx context.Context, rideID string) (CancelRideResult, error)

	GetRideByID(ctx context.Context, rideID string) (*ride.Request, error)
}

// PoolService exposes read-only pool queries.
type PoolService interface {
	GetActivePools(ctx context.Context) ([]*PoolDetail, error)
	GetPoolByID(ctx context.Context, poolID string) (*PoolDetail, error)
}

// FleetService manages the administratively seeded vehicle fleet.
type FleetService interface {
	SeedVehicles(ctx context.Context) (int, error)
}

// VehicleSelector picks a vehicle for a new pool given required seats and
// luggage. Pluggable so first-match can be swapped for best-fit or
// least-idle-capacity without touching the orchestrator.
type VehicleSelector interface {
	SelectVehicle(ctx context.Context, seats, luggage int) (*vehicle.Vehicle, error)
}
