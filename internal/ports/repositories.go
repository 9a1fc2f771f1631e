package ports

import (
	"context"
	"errors"
	"time"

	"ridepool/internal/domain/pool"
	"ridepool/internal/domain/ride"
	"ridepool/internal/domain/vehicle"
)

// Contract errors shared by every repository implementation. Services match
// on these with errors.Is and never inspect driver-specific errors.
var (
	ErrNotFound            = errors.New("record not found")
	ErrDuplicateMembership = errors.New("ride already belongs to a pool")
	ErrMemberNotFound      = errors.New("ride has no pool membership")
	ErrCapacityConflict    = errors.New("pool capacity changed concurrently")
)

// UnitOfWork runs fn inside one store transaction. Every repository method
// below requires the transaction handle fn receives in its context; all
// writes become visible together on commit or not at all.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// VehicleRepository persists the administratively seeded fleet.
type VehicleRepository interface {
	CreateBatch(ctx context.Context, vehicles []*vehicle.Vehicle) error

	// FindAvailable returns the first active vehicle whose total capacity
	// covers the request, or ErrNotFound. First-match, no optimization.
	FindAvailable(ctx context.Context, seats, luggage int) (*vehicle.Vehicle, error)
}

// RideRepository persists ride requests.
type RideRepository interface {
	Create(ctx context.Context, req *ride.Request) error

	// GetByID loads the ride together with its pool membership (if any).
	GetByID(ctx context.Context, id string) (*ride.Request, error)

	// GetByIDForUpdate is GetByID with the ride row locked until commit.
	// Lifecycle transitions read through this so concurrent cancels of the
	// same ride serialize and the loser observes the committed status.
	GetByIDForUpdate(ctx context.Context, id string) (*ride.Request, error)

	MarkMatched(ctx context.Context, id string, price float64, at time.Time) error
	Cancel(ctx context.Context, id string, at time.Time) error
}

// PoolRepository is the pool capacity ledger. All mutations are
// transaction-scoped and atomic; none of their effects is visible until the
// enclosing transaction commits.
type PoolRepository interface {
	// CreatePool inserts a new ACTIVE pool with zero usage and zero route
	// distance on the given vehicle.
	CreatePool(ctx context.Context, vehicleID string) (*pool.Pool, error)

	// FindEligibleForUpdate returns ACTIVE pools with enough remaining
	// seat/luggage capacity, with their rows locked until commit so that
	// concurrent joins serialize on the capacity they both saw.
	FindEligibleForUpdate(ctx context.Context, seats, luggage int) ([]*pool.Pool, error)

	// GetForUpdate loads one pool (with its vehicle) and locks its row.
	GetForUpdate(ctx context.Context, poolID string) (*pool.Pool, error)

	// AdjustUsage applies signed seat/luggage deltas. The update is guarded:
	// it fails with ErrCapacityConflict if the post-adjustment usage would
	// fall outside [0, vehicle capacity].
	AdjustUsage(ctx context.Context, poolID string, seatsDelta, luggageDelta int) error

	// AddMember fails with ErrDuplicateMembership if the ride already has a
	// member record anywhere.
	AddMember(ctx context.Context, poolID, rideID string) error

	// RemoveMember fails with ErrMemberNotFound if no record exists.
	RemoveMember(ctx context.Context, rideID string) error

	// AddRouteDistance accumulates the pool's route distance by deltaKM
	// (negative deltas decrement, clamped at zero).
	AddRouteDistance(ctx context.Context, poolID string, deltaKM float64) error

	// CloseIfEmpty transitions ACTIVE -> CLOSED iff the member count is
	// zero. Idempotent; a CLOSED pool is never touched. Reports whether the
	// pool is closed after the call.
	CloseIfEmpty(ctx context.Context, poolID string) (bool, error)

	// GetDetail loads one pool with its vehicle and member rides.
	GetDetail(ctx context.Context, poolID string) (*PoolDetail, error)

	// ListActiveDetails loads every ACTIVE pool with nested data.
	ListActiveDetails(ctx context.Context) ([]*PoolDetail, error)
}

// PoolDetail is the read model for pool queries: the pool row, its vehicle,
// and the ride requests currently sharing it.
type PoolDetail struct {
	Pool        *pool.Pool
	MemberRides []*ride.Request
}
