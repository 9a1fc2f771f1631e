package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"ridepool/internal/general/jwt"
	"ridepool/internal/ports"
)

// --- Request DTO (HTTP boundary) ---

type createRideRequest struct {
	UserID                 string  `json:"user_id"`
	PickupLat              float64 `json:"pickup_lat"`
	PickupLng              float64 `json:"pickup_lng"`
	DropLat                float64 `json:"drop_lat"`
	DropLng                float64 `json:"drop_lng"`
	SeatsRequired          int     `json:"seats_required"`
	LuggageUnits           int     `json:"luggage_units"`
	DetourTolerancePercent float64 `json:"detour_tolerance_percent"`
}

// ----- Handler: POST /rides -----

func (handler *RideHTTPHandler) handleCreateRide(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	if !strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		handler.httpError(ctx, w, http.StatusUnsupportedMediaType, "Content-Type must be application/json", nil)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MiB
	defer r.Body.Close()

	// decode strictly
	var req createRideRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			handler.httpError(ctx, w, http.StatusRequestEntityTooLarge, "request body too large", err)
			return
		}
		handler.httpError(ctx, w, http.StatusBadRequest, "invalid JSON: "+err.Error(), err)
		return
	}

	claims := jwt.RequireClaims(r)
	if claims == nil {
		handler.httpError(ctx, w, http.StatusUnauthorized, "missing auth claims", errors.New("no claims"))
		return
	}

	// fill or verify user_id
	sub := strings.TrimSpace(claims.Subject)
	if strings.TrimSpace(req.UserID) == "" {
		req.UserID = sub
	} else if req.UserID != sub && !claims.Role.IsAdmin() {
		handler.httpError(ctx, w, http.StatusForbidden, "user_id does not match token subject", errors.New("user/token mismatch"))
		return
	}

	in := ports.CreateRideInput{
		UserID:                 strings.TrimSpace(req.UserID),
		PickupLat:              req.PickupLat,
		PickupLng:              req.PickupLng,
		DropLat:                req.DropLat,
		DropLng:                req.DropLng,
		SeatsRequired:          req.SeatsRequired,
		LuggageUnits:           req.LuggageUnits,
		DetourTolerancePercent: req.DetourTolerancePercent,
	}

	// bound service call
	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := handler.svc.CreateRide(ctxWithTimeout, in)
	if err != nil {
		handler.serviceError(ctxWithTimeout, w, err)
		return
	}
	ctxWithTimeout = handler.logger.WithRideID(ctxWithTimeout, res.RideID)

	handler.jsonResponse(ctxWithTimeout, w, http.StatusCreated, res)
}
