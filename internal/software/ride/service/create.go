package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ridepool/internal/domain/pool"
	"ridepool/internal/domain/ride"
	"ridepool/internal/general/contracts"
	"ridepool/internal/matching"
	"ridepool/internal/observability"
	"ridepool/internal/ports"
)

// createAttempts bounds the retries when a guarded capacity update loses a
// concurrent race. Row locks make that rare; the retry is a backstop.
const createAttempts = 3

// CreateRide validates, matches, prices, and books the ride in one
// transaction. On commit the ride is MATCHED and its pool's capacity ledger
// reflects it; on any failure nothing is created.
func (service *rideService) CreateRide(ctx context.Context, in ports.CreateRideInput) (ports.CreateRideResult, error) {
	req, err := ride.NewRequest(
		in.UserID,
		in.PickupLat, in.PickupLng,
		in.DropLat, in.DropLng,
		in.SeatsRequired, in.LuggageUnits,
		in.DetourTolerancePercent,
	)
	if err != nil {
		return ports.CreateRideResult{}, err
	}

	corrID := generateCorrelationID()
	ctx = service.logger.WithRequestID(ctx, corrID)
	start := time.Now()

	var (
		assigned      *pool.Pool
		joined        bool
		detourPercent float64
		price         float64
		matchedAt     time.Time
	)

	for attempt := 1; ; attempt++ {
		err = service.uow.WithinTx(ctx, func(txCtx context.Context) error {
			// persist the request first; it stays PENDING and invisible
			// until this transaction commits
			if err := service.rideRepo.Create(txCtx, req); err != nil {
				return err
			}

			// lock every pool the ride could join so concurrent joins
			// serialize on the capacity they both saw
			candidates, err := service.poolRepo.FindEligibleForUpdate(txCtx, req.SeatsRequired, req.LuggageUnits)
			if err != nil {
				return err
			}

			match, ok := matching.FindBestPool(req, candidates)
			if ok {
				assigned = match.Pool
				detourPercent = match.DetourPercent
				joined = true
			} else {
				veh, err := service.selector.SelectVehicle(txCtx, req.SeatsRequired, req.LuggageUnits)
				if err != nil {
					if errors.Is(err, ports.ErrNotFound) {
						return ErrNoVehicles
					}
					return err
				}

				assigned, err = service.poolRepo.CreatePool(txCtx, veh.ID)
				if err != nil {
					return err
				}
				detourPercent = 0
				joined = false
			}

			if err := service.poolRepo.AdjustUsage(txCtx, assigned.ID, req.SeatsRequired, req.LuggageUnits); err != nil {
				return err
			}
			if err := service.poolRepo.AddMember(txCtx, assigned.ID, req.ID); err != nil {
				return err
			}
			if err := service.poolRepo.AddRouteDistance(txCtx, assigned.ID, req.DirectDistanceKM()); err != nil {
				return err
			}

			price = service.pricing.Price(req.DirectDistanceKM(), detourPercent)
			matchedAt = time.Now().UTC()

			return service.rideRepo.MarkMatched(txCtx, req.ID, price, matchedAt)
		})
		if err == nil {
			break
		}

		if errors.Is(err, ports.ErrCapacityConflict) && attempt < createAttempts {
			observability.CapacityConflictsTotal.Inc()
			service.logger.Info(ctx, "retry_attempted", "Capacity changed concurrently, retrying ride placement", map[string]any{
				"attempt": attempt,
				"user_id": req.UserID,
			})
			continue
		}

		if errors.Is(err, ErrNoVehicles) {
			observability.NoVehiclesTotal.Inc()
			service.logger.Info(ctx, "ride_rejected", "No vehicle available for ride request", map[string]any{
				"user_id":        req.UserID,
				"seats_required": req.SeatsRequired,
				"luggage_units":  req.LuggageUnits,
			})
			return ports.CreateRideResult{}, err
		}

		service.logger.Error(ctx, "ride_create_failed", "Failed to create ride", err, map[string]any{
			"user_id": req.UserID,
		})
		return ports.CreateRideResult{}, err
	}

	observability.CreateRideDuration.Observe(time.Since(start).Seconds())
	if joined {
		observability.RidesMatchedTotal.Inc()
	} else {
		observability.PoolsCreatedTotal.Inc()
	}

	ctx = service.logger.WithRideID(ctx, req.ID)
	ctx = service.logger.WithPoolID(ctx, assigned.ID)

	// fan-out: publish the committed match (best-effort, outside tx)
	if service.pub != nil {
		ev := contracts.RideMatchedEvent{
			RideID:        req.ID,
			UserID:        req.UserID,
			PoolID:        assigned.ID,
			Pickup:        contracts.GeoPoint{Lat: req.Pickup.Lat, Lng: req.Pickup.Lng},
			Drop:          contracts.GeoPoint{Lat: req.Drop.Lat, Lng: req.Drop.Lng},
			Price:         price,
			DetourPercent: detourPercent,
			NewPool:       !joined,
			MatchedAt:     matchedAt,
			Envelope:      newEnvelope(corrID),
		}
		if err := service.pub.RideMatched(ctx, ev); err != nil {
			service.logger.Error(ctx, "ride_matched_publish_failed", "Failed to publish ride.matched event", err, nil)
		}
	}

	message := "Joined existing pool"
	if !joined {
		message = "New pool created"
	}

	service.logger.Info(ctx, "ride_matched", fmt.Sprintf("Ride %s assigned to pool %s", req.ID, assigned.ID), map[string]any{
		"user_id":        req.UserID,
		"new_pool":       !joined,
		"price":          price,
		"detour_percent": detourPercent,
	})

	return ports.CreateRideResult{
		RideID:  req.ID,
		PoolID:  assigned.ID,
		Price:   price,
		Message: message,
	}, nil
}
