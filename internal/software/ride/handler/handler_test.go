package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ridepool/internal/domain/ride"
	"ridepool/internal/domain/user"
	"ridepool/internal/general/jwt"
	"ridepool/internal/general/logger"
	"ridepool/internal/ports"
	rideservice "ridepool/internal/software/ride/service"
)

// fakeRideService returns canned responses.
type fakeRideService struct {
	createRes ports.CreateRideResult
	createErr error
	cancelRes ports.CancelRideResult
	cancelErr error
	getRes    *ride.Request
	getErr    error
}

func (f *fakeRideService) CreateRide(ctx context.Context, in ports.CreateRideInput) (ports.CreateRideResult, error) {
	return f.createRes, f.createErr
}

func (f *fakeRideService) CancelRide(ctx context.Context, rideID string) (ports.CancelRideResult, error) {
	return f.cancelRes, f.cancelErr
}

func (f *fakeRideService) GetRideByID(ctx context.Context, rideID string) (*ride.Request, error) {
	return f.getRes, f.getErr
}

func newTestMux(t *testing.T, svc ports.RideService) (*http.ServeMux, string) {
	t.Helper()

	auth := jwt.NewManager("test-secret", time.Hour)
	mux := http.NewServeMux()
	NewRideHTTPHandler(svc, logger.New("test"), auth).RegisterRoutes(mux)

	token, _, err := auth.IssueUserToken("user-1", user.RoleRider)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	return mux, token
}

func createBody() string {
	return `{"user_id":"user-1","pickup_lat":0,"pickup_lng":0,"drop_lat":0,"drop_lng":1,"seats_required":2,"luggage_units":1,"detour_tolerance_percent":50}`
}

func TestCreateRideOK(t *testing.T) {
	svc := &fakeRideService{createRes: ports.CreateRideResult{
		RideID:  "ride-001",
		PoolID:  "pool-001",
		Price:   85.00,
		Message: "New pool created",
	}}
	mux, token := newTestMux(t, svc)

	req := httptest.NewRequest("POST", "/rides", strings.NewReader(createBody()))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body: %s", rec.Code, rec.Body.String())
	}

	var got ports.CreateRideResult
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got != svc.createRes {
		t.Fatalf("body = %+v, want %+v", got, svc.createRes)
	}
}

func TestCreateRideRequiresToken(t *testing.T) {
	mux, _ := newTestMux(t, &fakeRideService{})

	req := httptest.NewRequest("POST", "/rides", strings.NewReader(createBody()))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestCreateRideRequiresJSON(t *testing.T) {
	mux, token := newTestMux(t, &fakeRideService{})

	req := httptest.NewRequest("POST", "/rides", strings.NewReader("seats=2"))
	req.Header.Set("Content-Type", "text/plain")
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("status = %d, want 415", rec.Code)
	}
}

func TestCreateRideErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{"validation", ride.ErrValidation, http.StatusBadRequest, "invalid ride request"},
		{"no vehicles", rideservice.ErrNoVehicles, http.StatusServiceUnavailable, "No vehicles available"},
		{"capacity conflict", ports.ErrCapacityConflict, http.StatusConflict, "Pool capacity changed, please retry"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux, token := newTestMux(t, &fakeRideService{createErr: tt.err})

			req := httptest.NewRequest("POST", "/rides", strings.NewReader(createBody()))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Authorization", "Bearer "+token)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			var body struct {
				Error string `json:"error"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Error != tt.wantError {
				t.Fatalf("error = %q, want %q", body.Error, tt.wantError)
			}
		})
	}
}

func TestCancelRide(t *testing.T) {
	svc := &fakeRideService{cancelRes: ports.CancelRideResult{
		RideID:  "ride-001",
		Message: "Ride cancelled successfully",
	}}
	mux, token := newTestMux(t, svc)

	req := httptest.NewRequest("POST", "/rides/ride-001/cancel", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}

	var got ports.CancelRideResult
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got != svc.cancelRes {
		t.Fatalf("body = %+v, want %+v", got, svc.cancelRes)
	}
}

func TestCancelRideErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"not found", ports.ErrNotFound, http.StatusNotFound},
		{"already cancelled", rideservice.ErrAlreadyCancelled, http.StatusConflict},
		{"not pooled", rideservice.ErrNotPooled, http.StatusConflict},
		{"membership gone", ports.ErrMemberNotFound, http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux, token := newTestMux(t, &fakeRideService{cancelErr: tt.err})

			req := httptest.NewRequest("POST", "/rides/ride-001/cancel", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestGetRide(t *testing.T) {
	price := 85.00
	svc := &fakeRideService{getRes: &ride.Request{
		ID:            "ride-001",
		UserID:        "user-1",
		SeatsRequired: 2,
		LuggageUnits:  1,
		Status:        ride.StatusMatched,
		Price:         &price,
	}}
	mux, token := newTestMux(t, svc)

	req := httptest.NewRequest("GET", "/rides/ride-001", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}

	var got rideView
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.RideID != "ride-001" || got.Status != "MATCHED" || got.Price == nil || *got.Price != price {
		t.Fatalf("body = %+v", got)
	}
}

func TestCreateToken(t *testing.T) {
	mux, _ := newTestMux(t, &fakeRideService{})

	req := httptest.NewRequest("POST", "/tokens", strings.NewReader(`{"user_id":"user-1","role":"RIDER"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body: %s", rec.Code, rec.Body.String())
	}

	var got TokenResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Token == "" || got.Role != user.RoleRider {
		t.Fatalf("body = %+v", got)
	}
}
