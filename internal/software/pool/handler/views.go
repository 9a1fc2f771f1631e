package handler

import (
	"time"

	"ridepool/internal/ports"
)

// --- Response DTOs (HTTP boundary) ---

type vehicleView struct {
	VehicleID       string `json:"vehicle_id"`
	TotalSeats      int    `json:"total_seats"`
	LuggageCapacity int    `json:"luggage_capacity"`
}

type memberRideView struct {
	RideID        string   `json:"ride_id"`
	UserID        string   `json:"user_id"`
	SeatsRequired int      `json:"seats_required"`
	LuggageUnits  int      `json:"luggage_units"`
	Status        string   `json:"status"`
	Price         *float64 `json:"price,omitempty"`
}

type poolView struct {
	PoolID           string           `json:"pool_id"`
	Status           string           `json:"status"`
	Vehicle          *vehicleView     `json:"vehicle,omitempty"`
	UsedSeats        int              `json:"used_seats"`
	UsedLuggage      int              `json:"used_luggage"`
	RemainingSeats   int              `json:"remaining_seats"`
	RemainingLuggage int              `json:"remaining_luggage"`
	RouteDistanceKM  float64          `json:"route_distance_km"`
	Rides            []memberRideView `json:"rides"`
	CreatedAt        time.Time        `json:"created_at"`
	ClosedAt         *time.Time       `json:"closed_at,omitempty"`
}

func newPoolView(d *ports.PoolDetail) poolView {
	p := d.Pool

	view := poolView{
		PoolID:          p.ID,
		Status:          p.Status.String(),
		UsedSeats:       p.UsedSeats,
		UsedLuggage:     p.UsedLuggage,
		RouteDistanceKM: p.RouteDistanceKM,
		Rides:           make([]memberRideView, 0, len(d.MemberRides)),
		CreatedAt:       p.CreatedAt,
		ClosedAt:        p.ClosedAt,
	}

	if p.Vehicle != nil {
		view.Vehicle = &vehicleView{
			VehicleID:       p.Vehicle.ID,
			TotalSeats:      p.Vehicle.TotalSeats,
			LuggageCapacity: p.Vehicle.LuggageCapacity,
		}
		view.RemainingSeats = p.RemainingSeats()
		view.RemainingLuggage = p.RemainingLuggage()
	}

	for _, r := range d.MemberRides {
		view.Rides = append(view.Rides, memberRideView{
			RideID:        r.ID,
			UserID:        r.UserID,
			SeatsRequired: r.SeatsRequired,
			LuggageUnits:  r.LuggageUnits,
			Status:        r.Status.String(),
			Price:         r.Price,
		})
	}

	return view
}
