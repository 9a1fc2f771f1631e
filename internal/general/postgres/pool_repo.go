package postgres

import (
	"context"
	"errors"
	"fmt"

	"ridepool/internal/domain/pool"
	"ridepool/internal/domain/vehicle"
	"ridepool/internal/ports"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PoolRepo is the pool capacity ledger backed by PostgreSQL. Every method
// requires the pgx transaction carried in ctx; the row locks it takes live
// until that transaction commits or rolls back.
type PoolRepo struct{}

// NewPoolRepo constructs a new PoolRepo.
func NewPoolRepo() ports.PoolRepository {
	return &PoolRepo{}
}

const poolColumns = `
	p.id, p.vehicle_id, p.status, p.used_seats, p.used_luggage,
	p.route_distance_km, p.created_at, p.closed_at,
	v.id, v.total_seats, v.luggage_capacity, v.is_active, v.created_at`

func scanPool(row pgx.Row) (*pool.Pool, error) {
	var p pool.Pool
	var v vehicle.Vehicle
	var status string

	err := row.Scan(
		&p.ID, &p.VehicleID, &status, &p.UsedSeats, &p.UsedLuggage,
		&p.RouteDistanceKM, &p.CreatedAt, &p.ClosedAt,
		&v.ID, &v.TotalSeats, &v.LuggageCapacity, &v.IsActive, &v.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if p.Status, err = pool.ParseStatus(status); err != nil {
		return nil, fmt.Errorf("pool %s: %w", p.ID, err)
	}
	p.Vehicle = &v
	return &p, nil
}

// CreatePool inserts a new ACTIVE pool with zero usage and zero route distance.
func (repo *PoolRepo) CreatePool(ctx context.Context, vehicleID string) (*pool.Pool, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	p, err := pool.New(vehicleID)
	if err != nil {
		return nil, err
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO pools (vehicle_id)
		VALUES ($1)
		RETURNING id, created_at
	`, vehicleID).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert pool: %w", err)
	}

	return p, nil
}

// FindEligibleForUpdate returns capacity-eligible ACTIVE pools and locks
// their rows. Concurrent createRide transactions that saw the same headroom
// serialize here instead of jointly overbooking it.
func (repo *PoolRepo) FindEligibleForUpdate(ctx context.Context, seats, luggage int) ([]*pool.Pool, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, `
		SELECT `+poolColumns+`
		FROM pools p
		JOIN vehicles v ON v.id = p.vehicle_id
		WHERE p.status = 'ACTIVE'
		  AND v.total_seats - p.used_seats >= $1
		  AND v.luggage_capacity - p.used_luggage >= $2
		ORDER BY p.id
		FOR UPDATE OF p
	`, seats, luggage)
	if err != nil {
		return nil, fmt.Errorf("query eligible pools: %w", err)
	}
	defer rows.Close()

	var out []*pool.Pool
	for rows.Next() {
		p, err := scanPool(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pool: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return out, nil
}

// GetForUpdate loads one pool with its vehicle and locks the pool row.
func (repo *PoolRepo) GetForUpdate(ctx context.Context, poolID string) (*pool.Pool, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	p, err := scanPool(tx.QueryRow(ctx, `
		SELECT `+poolColumns+`
		FROM pools p
		JOIN vehicles v ON v.id = p.vehicle_id
		WHERE p.id = $1
		FOR UPDATE OF p
	`, poolID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ports.ErrNotFound
		}
		return nil, fmt.Errorf("get pool for update: %w", err)
	}

	return p, nil
}

// AdjustUsage applies signed seat/luggage deltas behind a capacity guard.
// The guard is the backstop for the lock-based strategy: if another
// transaction consumed the headroom first, no row matches and the caller
// gets ErrCapacityConflict instead of a committed invariant violation.
func (repo *PoolRepo) AdjustUsage(ctx context.Context, poolID string, seatsDelta, luggageDelta int) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `
		UPDATE pools p
		SET used_seats = p.used_seats + $2,
		    used_luggage = p.used_luggage + $3
		FROM vehicles v
		WHERE p.id = $1
		  AND v.id = p.vehicle_id
		  AND p.status = 'ACTIVE'
		  AND p.used_seats + $2 BETWEEN 0 AND v.total_seats
		  AND p.used_luggage + $3 BETWEEN 0 AND v.luggage_capacity
	`, poolID, seatsDelta, luggageDelta)
	if err != nil {
		return fmt.Errorf("adjust pool usage: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}

	// distinguish a missing/closed pool from a lost capacity race
	var exists bool
	if err := tx.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM pools WHERE id = $1 AND status = 'ACTIVE')
	`, poolID).Scan(&exists); err != nil {
		return fmt.Errorf("adjust pool usage recheck: %w", err)
	}
	if !exists {
		return ports.ErrNotFound
	}
	return ports.ErrCapacityConflict
}

// AddMember records the ride's membership. The pool_members primary key on
// ride_id enforces at most one membership per ride.
func (repo *PoolRepo) AddMember(ctx context.Context, poolID, rideID string) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO pool_members (pool_id, ride_id)
		VALUES ($1, $2)
	`, poolID, rideID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return ports.ErrDuplicateMembership
		}
		return fmt.Errorf("insert pool member: %w", err)
	}

	return nil
}

// RemoveMember deletes the ride's membership record.
func (repo *PoolRepo) RemoveMember(ctx context.Context, rideID string) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `DELETE FROM pool_members WHERE ride_id = $1`, rideID)
	if err != nil {
		return fmt.Errorf("delete pool member: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ports.ErrMemberNotFound
	}

	return nil
}

// AddRouteDistance accumulates route distance; decrements clamp at zero.
func (repo *PoolRepo) AddRouteDistance(ctx context.Context, poolID string, deltaKM float64) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `
		UPDATE pools
		SET route_distance_km = GREATEST(0, route_distance_km + $2)
		WHERE id = $1 AND status = 'ACTIVE'
	`, poolID, deltaKM)
	if err != nil {
		return fmt.Errorf("update pool route distance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ports.ErrNotFound
	}

	return nil
}

// CloseIfEmpty transitions ACTIVE -> CLOSED iff no members remain. The
// status filter makes the call idempotent and keeps CLOSED terminal.
func (repo *PoolRepo) CloseIfEmpty(ctx context.Context, poolID string) (bool, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return false, err
	}

	_, err = tx.Exec(ctx, `
		UPDATE pools
		SET status = 'CLOSED', closed_at = now()
		WHERE id = $1
		  AND status = 'ACTIVE'
		  AND NOT EXISTS (SELECT 1 FROM pool_members m WHERE m.pool_id = $1)
	`, poolID)
	if err != nil {
		return false, fmt.Errorf("close pool: %w", err)
	}

	var status string
	if err := tx.QueryRow(ctx, `SELECT status FROM pools WHERE id = $1`, poolID).Scan(&status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, ports.ErrNotFound
		}
		return false, fmt.Errorf("read pool status: %w", err)
	}

	return pool.Status(status) == pool.StatusClosed, nil
}

// GetDetail loads one pool with its vehicle and member rides.
func (repo *PoolRepo) GetDetail(ctx context.Context, poolID string) (*ports.PoolDetail, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	p, err := scanPool(tx.QueryRow(ctx, `
		SELECT `+poolColumns+`
		FROM pools p
		JOIN vehicles v ON v.id = p.vehicle_id
		WHERE p.id = $1
	`, poolID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ports.ErrNotFound
		}
		return nil, fmt.Errorf("get pool: %w", err)
	}

	rides, err := memberRides(ctx, tx, poolID)
	if err != nil {
		return nil, err
	}

	return &ports.PoolDetail{Pool: p, MemberRides: rides}, nil
}

// ListActiveDetails loads every ACTIVE pool with nested vehicle/member data.
func (repo *PoolRepo) ListActiveDetails(ctx context.Context) ([]*ports.PoolDetail, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, `
		SELECT `+poolColumns+`
		FROM pools p
		JOIN vehicles v ON v.id = p.vehicle_id
		WHERE p.status = 'ACTIVE'
		ORDER BY p.created_at, p.id
	`)
	if err != nil {
		return nil, fmt.Errorf("query active pools: %w", err)
	}
	defer rows.Close()

	var pools []*pool.Pool
	for rows.Next() {
		p, err := scanPool(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pool: %w", err)
		}
		pools = append(pools, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	out := make([]*ports.PoolDetail, 0, len(pools))
	for _, p := range pools {
		rides, err := memberRides(ctx, tx, p.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, &ports.PoolDetail{Pool: p, MemberRides: rides})
	}

	return out, nil
}
