package service

import (
	"context"
	"strings"

	"ridepool/internal/domain/ride"
	"ridepool/internal/ports"
)

// GetRideByID loads one ride together with its pool membership.
func (service *rideService) GetRideByID(ctx context.Context, rideID string) (*ride.Request, error) {
	rideID = strings.TrimSpace(rideID)
	if rideID == "" {
		return nil, ports.ErrNotFound
	}

	var out *ride.Request
	err := service.uow.WithinTx(ctx, func(txCtx context.Context) error {
		r, err := service.rideRepo.GetByID(txCtx, rideID)
		if err != nil {
			return err
		}
		out = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}
