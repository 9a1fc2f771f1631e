package service

import (
	"context"

	"ridepool/internal/domain/vehicle"
	"ridepool/internal/ports"
)

// firstFitSelector picks the first active vehicle whose total capacity covers
// the request. No optimization, no load balancing.
type firstFitSelector struct {
	vehicleRepo ports.VehicleRepository
}

// NewFirstFitSelector creates the default vehicle selection strategy.
func NewFirstFitSelector(vehicleRepo ports.VehicleRepository) ports.VehicleSelector {
	return &firstFitSelector{vehicleRepo: vehicleRepo}
}

func (s *firstFitSelector) SelectVehicle(ctx context.Context, seats, luggage int) (*vehicle.Vehicle, error) {
	return s.vehicleRepo.FindAvailable(ctx, seats, luggage)
}
