package service

import (
	"ridepool/internal/domain/pricing"
	"ridepool/internal/general/logger"
	"ridepool/internal/ports"
)

// rideService is the transactional orchestrator for the ride lifecycle.
type rideService struct {
	logger   *logger.Logger
	uow      ports.UnitOfWork
	rideRepo ports.RideRepository
	poolRepo ports.PoolRepository
	selector ports.VehicleSelector
	pricing  *pricing.Calculator
	pub      ports.EventPublisher
}

// NewRideService creates a new instance of the RideService with the provided dependencies.
func NewRideService(
	logger *logger.Logger,
	uow ports.UnitOfWork,
	rideRepo ports.RideRepository,
	poolRepo ports.PoolRepository,
	selector ports.VehicleSelector,
	pricing *pricing.Calculator,
	pub ports.EventPublisher,
) ports.RideService {
	return &rideService{
		logger:   logger,
		uow:      uow,
		rideRepo: rideRepo,
		poolRepo: poolRepo,
		selector: selector,
		pricing:  pricing,
		pub:      pub,
	}
}
