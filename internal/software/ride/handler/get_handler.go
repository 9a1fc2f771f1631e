package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"ridepool/internal/domain/ride"
)

// --- Response DTO (HTTP boundary) ---

type geoPointView struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type rideView struct {
	RideID                 string       `json:"ride_id"`
	UserID                 string       `json:"user_id"`
	Pickup                 geoPointView `json:"pickup"`
	Drop                   geoPointView `json:"drop"`
	SeatsRequired          int          `json:"seats_required"`
	LuggageUnits           int          `json:"luggage_units"`
	DetourTolerancePercent float64      `json:"detour_tolerance_percent"`
	Status                 string       `json:"status"`
	Price                  *float64     `json:"price,omitempty"`
	PoolID                 string       `json:"pool_id,omitempty"`
	MatchedAt              *time.Time   `json:"matched_at,omitempty"`
	CancelledAt            *time.Time   `json:"cancelled_at,omitempty"`
	CreatedAt              time.Time    `json:"created_at"`
}

func newRideView(r *ride.Request) rideView {
	view := rideView{
		RideID:                 r.ID,
		UserID:                 r.UserID,
		Pickup:                 geoPointView{Lat: r.Pickup.Lat, Lng: r.Pickup.Lng},
		Drop:                   geoPointView{Lat: r.Drop.Lat, Lng: r.Drop.Lng},
		SeatsRequired:          r.SeatsRequired,
		LuggageUnits:           r.LuggageUnits,
		DetourTolerancePercent: r.DetourTolerancePercent,
		Status:                 r.Status.String(),
		Price:                  r.Price,
		MatchedAt:              r.MatchedAt,
		CancelledAt:            r.CancelledAt,
		CreatedAt:              r.CreatedAt,
	}
	if r.Membership != nil {
		view.PoolID = r.Membership.PoolID
	}
	return view
}

// --- Handler: GET /rides/{ride_id} ---

func (handler *RideHTTPHandler) handleGetRide(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	rideID := strings.TrimSpace(r.PathValue("ride_id"))
	if rideID == "" {
		handler.httpError(ctx, w, http.StatusBadRequest, "ride_id is required", errors.New("missing ride_id"))
		return
	}
	ctx = handler.logger.WithRideID(ctx, rideID)

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := handler.svc.GetRideByID(ctxWithTimeout, rideID)
	if err != nil {
		handler.serviceError(ctxWithTimeout, w, err)
		return
	}

	handler.jsonResponse(ctxWithTimeout, w, http.StatusOK, newRideView(res))
}
