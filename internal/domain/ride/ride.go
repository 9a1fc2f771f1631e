package ride

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"ridepool/internal/domain/geo"
	"ridepool/internal/domain/pool"
)

// Request is the domain entity corresponding to the `ride_requests` table.
type Request struct {
	// Identity & audit
	ID        string
	CreatedAt time.Time
	UpdatedAt time.Time

	// Requester
	UserID string

	// Trip
	Pickup geo.Point
	Drop   geo.Point

	// Admission constraints
	SeatsRequired          int
	LuggageUnits           int
	DetourTolerancePercent float64

	// Outcome
	Status      Status
	Price       *float64 // set at match time, immutable after
	MatchedAt   *time.Time
	CancelledAt *time.Time

	// Membership is populated by queries that join pool_members.
	Membership *pool.Member
}

// MaxDetourTolerancePercent bounds the accepted tolerance input.
const MaxDetourTolerancePercent = 500

// ErrValidation is the kind all input validation failures wrap.
var ErrValidation = errors.New("invalid ride request")

var (
	ErrAlreadyMatched          = errors.New("ride already matched")
	ErrInvalidStatusTransition = errors.New("invalid ride status transition")
)

func validationError(msg string) error {
	return fmt.Errorf("%w: %s", ErrValidation, msg)
}

// NewRequest validates all inputs and returns a PENDING ride request.
// Any violation is reported before the request touches the store.
func NewRequest(userID string, pickupLat, pickupLng, dropLat, dropLng float64, seats, luggage int, detourTolerancePercent float64) (*Request, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, validationError("User ID is required")
	}
	if seats <= 0 {
		return nil, validationError("Seats must be a positive integer")
	}
	if luggage < 0 {
		return nil, validationError("Luggage units must be a non-negative integer")
	}
	if math.IsNaN(detourTolerancePercent) || detourTolerancePercent < 0 || detourTolerancePercent > MaxDetourTolerancePercent {
		return nil, validationError("Invalid detour tolerance value")
	}

	pickup, err := geo.NewPoint(pickupLat, pickupLng)
	if err != nil {
		return nil, validationError("Invalid coordinates")
	}
	drop, err := geo.NewPoint(dropLat, dropLng)
	if err != nil {
		return nil, validationError("Invalid coordinates")
	}

	return &Request{
		UserID:                 strings.TrimSpace(userID),
		Pickup:                 pickup,
		Drop:                   drop,
		SeatsRequired:          seats,
		LuggageUnits:           luggage,
		DetourTolerancePercent: detourTolerancePercent,
		Status:                 StatusPending,
	}, nil
}

// DirectDistanceKM is the ride's own pickup-to-drop great-circle distance.
func (r *Request) DirectDistanceKM() float64 {
	return geo.HaversineKM(r.Pickup, r.Drop)
}

// MarkMatched transitions PENDING -> MATCHED and fixes the price.
func (r *Request) MarkMatched(price float64) error {
	if r.Status == StatusMatched {
		return ErrAlreadyMatched
	}
	if r.Status != StatusPending {
		return ErrInvalidStatusTransition
	}
	now := time.Now().UTC()
	r.Price = &price
	r.MatchedAt = &now
	r.Status = StatusMatched
	return nil
}

// Cancel transitions MATCHED -> CANCELLED. CANCELLED is terminal.
func (r *Request) Cancel() error {
	if r.Status.Terminal() {
		return ErrInvalidStatusTransition
	}
	now := time.Now().UTC()
	r.CancelledAt = &now
	r.Status = StatusCancelled
	return nil
}
