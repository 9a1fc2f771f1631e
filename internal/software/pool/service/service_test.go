package service

import (
	"context"
	"errors"
	"testing"

	"ridepool/internal/domain/pool"
	"ridepool/internal/domain/vehicle"
	"ridepool/internal/general/logger"
	"ridepool/internal/ports"
)

type passthroughUoW struct{}

func (passthroughUoW) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// fakePoolRepo serves canned details for the read paths. Only GetDetail and
// ListActiveDetails are exercised by PoolService.
type fakePoolRepo struct {
	details map[string]*ports.PoolDetail
}

func (f *fakePoolRepo) CreatePool(ctx context.Context, vehicleID string) (*pool.Pool, error) {
	panic("not used")
}
func (f *fakePoolRepo) FindEligibleForUpdate(ctx context.Context, seats, luggage int) ([]*pool.Pool, error) {
	panic("not used")
}
func (f *fakePoolRepo) GetForUpdate(ctx context.Context, poolID string) (*pool.Pool, error) {
	panic("not used")
}
func (f *fakePoolRepo) AdjustUsage(ctx context.Context, poolID string, seatsDelta, luggageDelta int) error {
	panic("not used")
}
func (f *fakePoolRepo) AddMember(ctx context.Context, poolID, rideID string) error {
	panic("not used")
}
func (f *fakePoolRepo) RemoveMember(ctx context.Context, rideID string) error { panic("not used") }
func (f *fakePoolRepo) AddRouteDistance(ctx context.Context, poolID string, deltaKM float64) error {
	panic("not used")
}
func (f *fakePoolRepo) CloseIfEmpty(ctx context.Context, poolID string) (bool, error) {
	panic("not used")
}

func (f *fakePoolRepo) GetDetail(ctx context.Context, poolID string) (*ports.PoolDetail, error) {
	d, ok := f.details[poolID]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return d, nil
}

func (f *fakePoolRepo) ListActiveDetails(ctx context.Context) ([]*ports.PoolDetail, error) {
	var out []*ports.PoolDetail
	for _, d := range f.details {
		if d.Pool.Status == pool.StatusActive {
			out = append(out, d)
		}
	}
	return out, nil
}

func testDetail(id string, status pool.Status) *ports.PoolDetail {
	return &ports.PoolDetail{
		Pool: &pool.Pool{
			ID:        id,
			VehicleID: "veh-1",
			Status:    status,
			Vehicle:   &vehicle.Vehicle{ID: "veh-1", TotalSeats: 4, LuggageCapacity: 4, IsActive: true},
		},
	}
}

func TestGetActivePools(t *testing.T) {
	repo := &fakePoolRepo{details: map[string]*ports.PoolDetail{
		"pool-1": testDetail("pool-1", pool.StatusActive),
		"pool-2": testDetail("pool-2", pool.StatusClosed),
	}}
	svc := NewPoolService(logger.New("test"), passthroughUoW{}, repo)

	out, err := svc.GetActivePools(context.Background())
	if err != nil {
		t.Fatalf("GetActivePools: %v", err)
	}
	if len(out) != 1 || out[0].Pool.ID != "pool-1" {
		t.Fatalf("got %d pools, want only pool-1", len(out))
	}
}

func TestGetPoolByID(t *testing.T) {
	repo := &fakePoolRepo{details: map[string]*ports.PoolDetail{
		"pool-1": testDetail("pool-1", pool.StatusActive),
	}}
	svc := NewPoolService(logger.New("test"), passthroughUoW{}, repo)

	d, err := svc.GetPoolByID(context.Background(), "pool-1")
	if err != nil {
		t.Fatalf("GetPoolByID: %v", err)
	}
	if d.Pool.ID != "pool-1" {
		t.Fatalf("pool id = %s", d.Pool.ID)
	}

	if _, err := svc.GetPoolByID(context.Background(), "pool-404"); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}

	if _, err := svc.GetPoolByID(context.Background(), "  "); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("blank id err = %v, want ErrNotFound", err)
	}
}
