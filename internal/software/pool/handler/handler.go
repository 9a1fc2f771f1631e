package handler

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"ridepool/internal/domain/user"
	"ridepool/internal/general/jwt"
	"ridepool/internal/general/logger"
	"ridepool/internal/ports"
)

// PoolHTTPHandler adapts HTTP requests to the PoolService.
type PoolHTTPHandler struct {
	svc    ports.PoolService
	logger *logger.Logger
	auth   *jwt.Manager
}

// NewPoolHTTPHandler wires an HTTP handler around the PoolService.
func NewPoolHTTPHandler(svc ports.PoolService, logger *logger.Logger, auth *jwt.Manager) *PoolHTTPHandler {
	return &PoolHTTPHandler{svc: svc, logger: logger, auth: auth}
}

// RegisterRoutes mounts pool endpoints on the provided mux.
func (handler *PoolHTTPHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /pools",
		jwt.AuthMiddlewareFunc(handler.auth, user.RoleRider, user.RoleAdmin)(handler.handleListPools),
	)
	mux.HandleFunc("GET /pools/{pool_id}",
		jwt.AuthMiddlewareFunc(handler.auth, user.RoleRider, user.RoleAdmin)(handler.handleGetPool),
	)
}

// ----- Handler: GET /pools -----

func (handler *PoolHTTPHandler) handleListPools(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	details, err := handler.svc.GetActivePools(ctxWithTimeout)
	if err != nil {
		handler.serviceError(ctxWithTimeout, w, err)
		return
	}

	views := make([]poolView, 0, len(details))
	for _, d := range details {
		views = append(views, newPoolView(d))
	}

	handler.jsonResponse(ctxWithTimeout, w, http.StatusOK, views)
}

// ----- Handler: GET /pools/{pool_id} -----

func (handler *PoolHTTPHandler) handleGetPool(w http.ResponseWriter, r *http.Request) {
	ctx := handler.withReqID(r.Context(), r)

	poolID := strings.TrimSpace(r.PathValue("pool_id"))
	if poolID == "" {
		handler.httpError(ctx, w, http.StatusBadRequest, "pool_id is required", errors.New("missing pool_id"))
		return
	}
	ctx = handler.logger.WithPoolID(ctx, poolID)

	ctxWithTimeout, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	detail, err := handler.svc.GetPoolByID(ctxWithTimeout, poolID)
	if err != nil {
		handler.serviceError(ctxWithTimeout, w, err)
		return
	}

	handler.jsonResponse(ctxWithTimeout, w, http.StatusOK, newPoolView(detail))
}

// ----- general helpers -----

func (handler *PoolHTTPHandler) jsonResponse(ctx context.Context, w http.ResponseWriter, status int, data any) {
	var buf []byte
	var err error

	if data != nil {
		buf, err = json.Marshal(data)
		if err != nil {
			handler.logger.Error(ctx, "response_encode_failed", "Failed to encode response", err, nil)
			http.Error(w, `{"error":"failed to encode response"}`, http.StatusInternalServerError)
			return
		}
	} else {
		buf = []byte("{}")
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf)
}

func (handler *PoolHTTPHandler) httpError(ctx context.Context, w http.ResponseWriter, status int, msg string, err error) {
	action := "request_failed"
	if status >= 500 {
		action = "http_internal_error"
	}
	handler.logger.Error(ctx, action, msg, err, nil)

	type errBody struct {
		Error string `json:"error"`
	}
	handler.jsonResponse(ctx, w, status, errBody{Error: msg})
}

func (handler *PoolHTTPHandler) serviceError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ports.ErrNotFound):
		handler.httpError(ctx, w, http.StatusNotFound, "Pool not found", err)
	case errors.Is(err, context.DeadlineExceeded):
		handler.httpError(ctx, w, http.StatusGatewayTimeout, "request timed out", err)
	default:
		handler.httpError(ctx, w, http.StatusInternalServerError, "internal error", err)
	}
}

func (handler *PoolHTTPHandler) withReqID(ctx context.Context, r *http.Request) context.Context {
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
