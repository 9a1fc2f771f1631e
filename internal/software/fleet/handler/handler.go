package handler

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"ridepool/internal/domain/user"
	"ridepool/internal/general/jwt"
	"ridepool/internal/general/logger"
	"ridepool/internal/ports"
)

// FleetHTTPHandler adapts HTTP requests to the FleetService.
type FleetHTTPHandler struct {
	svc    ports.FleetService
	logger *logger.Logger
	auth   *jwt.Manager
}

// NewFleetHTTPHandler wires an HTTP handler around the FleetService.
func NewFleetHTTPHandler(svc ports.FleetService, logger *logger.Logger, auth *jwt.Manager) *FleetHTTPHandler {
	return &FleetHTTPHandler{svc: svc, logger: logger, auth: auth}
}

// RegisterRoutes mounts fleet endpoints on the provided mux. Seeding is
// administrative.
func (handler *FleetHTTPHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /vehicles/seed",
		jwt.AuthMiddlewareFunc(handler.auth, user.RoleAdmin)(handler.handleSeedVehicles),
	)
}

type seedResponse struct {
	Created int    `json:"created"`
	Message string `json:"message"`
}

// ----- Handler: POST /vehicles/seed -----

func (handler *FleetHTTPHandler) handleSeedVehicles(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	created, err := handler.svc.SeedVehicles(ctxWithTimeout)
	if err != nil {
		handler.httpError(ctxWithTimeout, w, http.StatusInternalServerError, "failed to seed vehicles", err)
		return
	}

	handler.jsonResponse(ctxWithTimeout, w, http.StatusCreated, seedResponse{
		Created: created,
		Message: "Fleet seeded",
	})
}

// ----- general helpers -----

func (handler *FleetHTTPHandler) jsonResponse(ctx context.Context, w http.ResponseWriter, status int, data any) {
	buf, err := json.Marshal(data)
	if err != nil {
		handler.logger.Error(ctx, "response_encode_failed", "Failed to encode response", err, nil)
		http.Error(w, `{"error":"failed to encode response"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf)
}

func (handler *FleetHTTPHandler) httpError(ctx context.Context, w http.ResponseWriter, status int, msg string, err error) {
	handler.logger.Error(ctx, "request_failed", msg, err, nil)

	type errBody struct {
		Error string `json:"error"`
	}
	handler.jsonResponse(ctx, w, status, errBody{Error: msg})
}

func (handler *FleetHTTPHandler) withReqID(ctx context.Context, r *http.Request) context.Context {
	reqID := r.Header.Get("X-Request-ID")
	if strings.TrimSpace(reqID) == "" {
		reqID = randID()
	}
	return handler.logger.WithRequestID(ctx, reqID)
}

func randID() string {
	var b [12]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
