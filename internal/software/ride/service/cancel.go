package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ridepool/internal/domain/ride"
	"ridepool/internal/general/contracts"
	"ridepool/internal/observability"
	"ridepool/internal/ports"
)

// CancelRide unwinds the ride's pool booking and marks it CANCELLED in one
// transaction: capacity is released, the pool's route shrinks, and a pool
// losing its last member closes. CANCELLED is terminal.
func (service *rideService) CancelRide(ctx context.Context, rideID string) (ports.CancelRideResult, error) {
	rideID = strings.TrimSpace(rideID)
	if rideID == "" {
		return ports.CancelRideResult{}, ports.ErrNotFound
	}

	corrID := generateCorrelationID()
	ctx = service.logger.WithRequestID(ctx, corrID)
	ctx = service.logger.WithRideID(ctx, rideID)

	var (
		userID     string
		poolID     string
		vehicleID  string
		poolClosed bool
		cancelTime = time.Now().UTC()
	)

	err := service.uow.WithinTx(ctx, func(txCtx context.Context) error {
		// lock the ride row first: a concurrent cancel of the same ride
		// blocks here and then sees the winner's CANCELLED status
		r, err := service.rideRepo.GetByIDForUpdate(txCtx, rideID)
		if err != nil {
			return err
		}
		if r.Status == ride.StatusCancelled {
			return ErrAlreadyCancelled
		}
		if r.Membership == nil {
			return ErrNotPooled
		}
		userID = r.UserID
		poolID = r.Membership.PoolID

		// lock the pool row so the unwind serializes with concurrent joins
		p, err := service.poolRepo.GetForUpdate(txCtx, poolID)
		if err != nil {
			return err
		}
		vehicleID = p.VehicleID

		if err := service.poolRepo.RemoveMember(txCtx, rideID); err != nil {
			return err
		}
		if err := service.poolRepo.AdjustUsage(txCtx, poolID, -r.SeatsRequired, -r.LuggageUnits); err != nil {
			return err
		}
		if err := service.poolRepo.AddRouteDistance(txCtx, poolID, -r.DirectDistanceKM()); err != nil {
			return err
		}

		poolClosed, err = service.poolRepo.CloseIfEmpty(txCtx, poolID)
		if err != nil {
			return err
		}

		return service.rideRepo.Cancel(txCtx, rideID, cancelTime)
	})
	if err != nil {
		if errors.Is(err, ErrAlreadyCancelled) || errors.Is(err, ports.ErrNotFound) {
			return ports.CancelRideResult{}, err
		}
		service.logger.Error(ctx, "ride_cancel_failed", "Failed to cancel ride", err, nil)
		return ports.CancelRideResult{}, err
	}

	observability.RidesCancelledTotal.Inc()
	if poolClosed {
		observability.PoolsClosedTotal.Inc()
	}

	ctx = service.logger.WithPoolID(ctx, poolID)

	// fan-out: publish the committed cancellation (best-effort, outside tx)
	if service.pub != nil {
		ev := contracts.RideCancelledEvent{
			RideID:      rideID,
			UserID:      userID,
			PoolID:      poolID,
			PoolClosed:  poolClosed,
			CancelledAt: cancelTime,
			Envelope:    newEnvelope(corrID),
		}
		if err := service.pub.RideCancelled(ctx, ev); err != nil {
			service.logger.Error(ctx, "ride_cancelled_publish_failed", "Failed to publish ride.cancelled event", err, nil)
		}

		if poolClosed {
			closedEv := contracts.PoolClosedEvent{
				PoolID:    poolID,
				VehicleID: vehicleID,
				ClosedAt:  cancelTime,
				Envelope:  newEnvelope(corrID),
			}
			if err := service.pub.PoolClosed(ctx, closedEv); err != nil {
				service.logger.Error(ctx, "pool_closed_publish_failed", "Failed to publish pool.closed event", err, nil)
			}
		}
	}

	service.logger.Info(ctx, "ride_cancelled", fmt.Sprintf("Ride %s cancelled", rideID), map[string]any{
		"pool_closed": poolClosed,
	})

	return ports.CancelRideResult{
		RideID:  rideID,
		Message: "Ride cancelled successfully",
	}, nil
}
