package service

import (
	"context"

	"ridepool/internal/domain/vehicle"
	"ridepool/internal/general/logger"
	"ridepool/internal/ports"
)

// seedSpec is the default fleet provisioned by SeedVehicles.
type seedSpec struct {
	seats   int
	luggage int
}

var defaultFleet = []seedSpec{
	{seats: 4, luggage: 4},
	{seats: 6, luggage: 6},
	{seats: 4, luggage: 3},
}

// fleetService manages the administratively seeded vehicle fleet.
type fleetService struct {
	logger      *logger.Logger
	uow         ports.UnitOfWork
	vehicleRepo ports.VehicleRepository
}

// NewFleetService creates a new instance of the FleetService.
func NewFleetService(logger *logger.Logger, uow ports.UnitOfWork, vehicleRepo ports.VehicleRepository) ports.FleetService {
	return &fleetService{
		logger:      logger,
		uow:         uow,
		vehicleRepo: vehicleRepo,
	}
}

// SeedVehicles provisions the default fleet and reports how many vehicles
// were created.
func (service *fleetService) SeedVehicles(ctx context.Context) (int, error) {
	vehicles := make([]*vehicle.Vehicle, 0, len(defaultFleet))
	for _, spec := range defaultFleet {
		v, err := vehicle.New(spec.seats, spec.luggage)
		if err != nil {
			return 0, err
		}
		vehicles = append(vehicles, v)
	}

	err := service.uow.WithinTx(ctx, func(txCtx context.Context) error {
		return service.vehicleRepo.CreateBatch(txCtx, vehicles)
	})
	if err != nil {
		service.logger.Error(ctx, "fleet_seed_failed", "Failed to seed vehicle fleet", err, nil)
		return 0, err
	}

	service.logger.Info(ctx, "fleet_seeded", "Vehicle fleet seeded", map[string]any{
		"count": len(vehicles),
	})

	return len(vehicles), nil
}
