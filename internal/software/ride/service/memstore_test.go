package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"ridepool/internal/domain/pool"
	"ridepool/internal/domain/ride"
	"ridepool/internal/domain/vehicle"
	"ridepool/internal/general/contracts"
	"ridepool/internal/ports"
)

// memStore is an in-memory stand-in for the transactional store. The unit of
// work serializes transactions with a mutex and restores a snapshot on
// rollback, which gives the same all-or-nothing and row-locking guarantees
// the services rely on.
type memStore struct {
	mu       sync.Mutex
	vehicles map[string]*vehicle.Vehicle
	pools    map[string]*pool.Pool
	rides    map[string]*ride.Request
	members  map[string]string // rideID -> poolID
	vehOrder []string
	seq      int
}

func newMemStore() *memStore {
	return &memStore{
		vehicles: map[string]*vehicle.Vehicle{},
		pools:    map[string]*pool.Pool{},
		rides:    map[string]*ride.Request{},
		members:  map[string]string{},
	}
}

func (s *memStore) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%03d", prefix, s.seq)
}

type memSnapshot struct {
	vehicles map[string]*vehicle.Vehicle
	pools    map[string]*pool.Pool
	rides    map[string]*ride.Request
	members  map[string]string
	vehOrder []string
	seq      int
}

func (s *memStore) snapshot() memSnapshot {
	snap := memSnapshot{
		vehicles: map[string]*vehicle.Vehicle{},
		pools:    map[string]*pool.Pool{},
		rides:    map[string]*ride.Request{},
		members:  map[string]string{},
		vehOrder: append([]string(nil), s.vehOrder...),
		seq:      s.seq,
	}
	for id, v := range s.vehicles {
		c := *v
		snap.vehicles[id] = &c
	}
	for id, p := range s.pools {
		c := *p
		snap.pools[id] = &c
	}
	for id, r := range s.rides {
		c := *r
		snap.rides[id] = &c
	}
	for r, p := range s.members {
		snap.members[r] = p
	}
	return snap
}

func (s *memStore) restore(snap memSnapshot) {
	s.vehicles = snap.vehicles
	s.pools = snap.pools
	s.rides = snap.rides
	s.members = snap.members
	s.vehOrder = snap.vehOrder
	s.seq = snap.seq
}

// memUnitOfWork serializes transactions and rolls the store back when fn
// fails or panics.
type memUnitOfWork struct {
	store *memStore
}

func (u *memUnitOfWork) WithinTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	u.store.mu.Lock()
	defer u.store.mu.Unlock()

	snap := u.store.snapshot()
	defer func() {
		if p := recover(); p != nil {
			u.store.restore(snap)
			panic(p)
		}
		if err != nil {
			u.store.restore(snap)
		}
	}()

	return fn(ctx)
}

// ----- repositories -----

type memVehicleRepo struct{ store *memStore }

func (repo *memVehicleRepo) CreateBatch(ctx context.Context, vehicles []*vehicle.Vehicle) error {
	for _, v := range vehicles {
		v.ID = repo.store.nextID("veh")
		v.CreatedAt = time.Now().UTC()
		c := *v
		repo.store.vehicles[v.ID] = &c
		repo.store.vehOrder = append(repo.store.vehOrder, v.ID)
	}
	return nil
}

func (repo *memVehicleRepo) FindAvailable(ctx context.Context, seats, luggage int) (*vehicle.Vehicle, error) {
	for _, id := range repo.store.vehOrder {
		v := repo.store.vehicles[id]
		if !v.Fits(seats, luggage) {
			continue
		}
		hosting := false
		for _, p := range repo.store.pools {
			if p.VehicleID == v.ID && p.Status == pool.StatusActive {
				hosting = true
				break
			}
		}
		if hosting {
			continue
		}
		c := *v
		return &c, nil
	}
	return nil, ports.ErrNotFound
}

type memRideRepo struct{ store *memStore }

func (repo *memRideRepo) Create(ctx context.Context, req *ride.Request) error {
	req.ID = repo.store.nextID("ride")
	req.CreatedAt = time.Now().UTC()
	c := *req
	repo.store.rides[req.ID] = &c
	return nil
}

func (repo *memRideRepo) GetByID(ctx context.Context, id string) (*ride.Request, error) {
	r, ok := repo.store.rides[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	c := *r
	if poolID, ok := repo.store.members[id]; ok {
		c.Membership = &pool.Member{RideID: id, PoolID: poolID}
	}
	return &c, nil
}

// GetByIDForUpdate is GetByID here: the unit of work's mutex already locks
// the whole store for the transaction.
func (repo *memRideRepo) GetByIDForUpdate(ctx context.Context, id string) (*ride.Request, error) {
	return repo.GetByID(ctx, id)
}

func (repo *memRideRepo) MarkMatched(ctx context.Context, id string, price float64, at time.Time) error {
	r, ok := repo.store.rides[id]
	if !ok || r.Status != ride.StatusPending {
		return ride.ErrInvalidStatusTransition
	}
	r.Status = ride.StatusMatched
	r.Price = &price
	r.MatchedAt = &at
	return nil
}

func (repo *memRideRepo) Cancel(ctx context.Context, id string, at time.Time) error {
	r, ok := repo.store.rides[id]
	if !ok || r.Status == ride.StatusCancelled {
		return ride.ErrInvalidStatusTransition
	}
	r.Status = ride.StatusCancelled
	r.CancelledAt = &at
	return nil
}

type memPoolRepo struct{ store *memStore }

func (repo *memPoolRepo) loadPool(id string) (*pool.Pool, bool) {
	p, ok := repo.store.pools[id]
	if !ok {
		return nil, false
	}
	c := *p
	if v, ok := repo.store.vehicles[p.VehicleID]; ok {
		vc := *v
		c.Vehicle = &vc
	}
	return &c, true
}

func (repo *memPoolRepo) CreatePool(ctx context.Context, vehicleID string) (*pool.Pool, error) {
	if _, ok := repo.store.vehicles[vehicleID]; !ok {
		return nil, ports.ErrNotFound
	}
	p, err := pool.New(vehicleID)
	if err != nil {
		return nil, err
	}
	p.ID = repo.store.nextID("pool")
	p.CreatedAt = time.Now().UTC()
	c := *p
	repo.store.pools[p.ID] = &c

	out, _ := repo.loadPool(p.ID)
	return out, nil
}

func (repo *memPoolRepo) FindEligibleForUpdate(ctx context.Context, seats, luggage int) ([]*pool.Pool, error) {
	ids := make([]string, 0, len(repo.store.pools))
	for id := range repo.store.pools {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var out []*pool.Pool
	for _, id := range ids {
		p, _ := repo.loadPool(id)
		if p.CanAccommodate(seats, luggage) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (repo *memPoolRepo) GetForUpdate(ctx context.Context, poolID string) (*pool.Pool, error) {
	p, ok := repo.loadPool(poolID)
	if !ok {
		return nil, ports.ErrNotFound
	}
	return p, nil
}

func (repo *memPoolRepo) AdjustUsage(ctx context.Context, poolID string, seatsDelta, luggageDelta int) error {
	p, ok := repo.store.pools[poolID]
	if !ok {
		return ports.ErrNotFound
	}
	guard, _ := repo.loadPool(poolID)
	if err := guard.CheckAdjust(seatsDelta, luggageDelta); err != nil {
		return ports.ErrCapacityConflict
	}
	p.UsedSeats += seatsDelta
	p.UsedLuggage += luggageDelta
	return nil
}

func (repo *memPoolRepo) AddMember(ctx context.Context, poolID, rideID string) error {
	if _, exists := repo.store.members[rideID]; exists {
		return ports.ErrDuplicateMembership
	}
	repo.store.members[rideID] = poolID
	return nil
}

func (repo *memPoolRepo) RemoveMember(ctx context.Context, rideID string) error {
	if _, exists := repo.store.members[rideID]; !exists {
		return ports.ErrMemberNotFound
	}
	delete(repo.store.members, rideID)
	return nil
}

func (repo *memPoolRepo) AddRouteDistance(ctx context.Context, poolID string, deltaKM float64) error {
	p, ok := repo.store.pools[poolID]
	if !ok {
		return ports.ErrNotFound
	}
	p.RouteDistanceKM += deltaKM
	if p.RouteDistanceKM < 0 {
		p.RouteDistanceKM = 0
	}
	return nil
}

func (repo *memPoolRepo) CloseIfEmpty(ctx context.Context, poolID string) (bool, error) {
	p, ok := repo.store.pools[poolID]
	if !ok {
		return false, ports.ErrNotFound
	}
	if p.Status == pool.StatusClosed {
		return true, nil
	}
	for _, memberPool := range repo.store.members {
		if memberPool == poolID {
			return false, nil
		}
	}
	now := time.Now().UTC()
	p.Status = pool.StatusClosed
	p.ClosedAt = &now
	return true, nil
}

func (repo *memPoolRepo) GetDetail(ctx context.Context, poolID string) (*ports.PoolDetail, error) {
	p, ok := repo.loadPool(poolID)
	if !ok {
		return nil, ports.ErrNotFound
	}
	detail := &ports.PoolDetail{Pool: p}
	for rideID, memberPool := range repo.store.members {
		if memberPool != poolID {
			continue
		}
		r := repo.store.rides[rideID]
		c := *r
		c.Membership = &pool.Member{RideID: rideID, PoolID: poolID}
		detail.MemberRides = append(detail.MemberRides, &c)
	}
	sort.Slice(detail.MemberRides, func(i, j int) bool {
		return detail.MemberRides[i].ID < detail.MemberRides[j].ID
	})
	return detail, nil
}

func (repo *memPoolRepo) ListActiveDetails(ctx context.Context) ([]*ports.PoolDetail, error) {
	ids := make([]string, 0, len(repo.store.pools))
	for id, p := range repo.store.pools {
		if p.Status == pool.StatusActive {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	out := make([]*ports.PoolDetail, 0, len(ids))
	for _, id := range ids {
		d, err := repo.GetDetail(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

// memPublisher records published events.
type memPublisher struct {
	mu        sync.Mutex
	matched   []contracts.RideMatchedEvent
	cancelled []contracts.RideCancelledEvent
	closed    []contracts.PoolClosedEvent
}

func (p *memPublisher) RideMatched(ctx context.Context, ev contracts.RideMatchedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.matched = append(p.matched, ev)
	return nil
}

func (p *memPublisher) RideCancelled(ctx context.Context, ev contracts.RideCancelledEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cancelled = append(p.cancelled, ev)
	return nil
}

func (p *memPublisher) PoolClosed(ctx context.Context, ev contracts.PoolClosedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = append(p.closed, ev)
	return nil
}
