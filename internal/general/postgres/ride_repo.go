package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ridepool/internal/domain/pool"
	"ridepool/internal/domain/ride"
	"ridepool/internal/ports"

	"github.com/jackc/pgx/v5"
)

// RideRepo persists ride requests using pgx and plain SQL.
type RideRepo struct{}

// NewRideRepo constructs a new RideRepo.
func NewRideRepo() ports.RideRepository {
	return &RideRepo{}
}

// Create inserts a new ride request row in PENDING state. The row only
// becomes visible if the enclosing transaction commits, by which point the
// orchestrator has moved it to MATCHED or aborted everything.
func (repo *RideRepo) Create(ctx context.Context, req *ride.Request) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO ride_requests (
			user_id, pickup_lat, pickup_lng, drop_lat, drop_lng,
			seats_required, luggage_units, detour_tolerance_percent, status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`,
		req.UserID,
		req.Pickup.Lat, req.Pickup.Lng,
		req.Drop.Lat, req.Drop.Lng,
		req.SeatsRequired, req.LuggageUnits,
		req.DetourTolerancePercent,
		req.Status.String(),
	).Scan(&req.ID, &req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert ride request: %w", err)
	}

	return nil
}

// GetByID fetches a ride by primary key together with its pool membership.
func (repo *RideRepo) GetByID(ctx context.Context, id string) (*ride.Request, error) {
	return repo.get(ctx, id, "")
}

// GetByIDForUpdate fetches the ride and locks its row until commit. Lifecycle
// transitions take this lock first so concurrent cancels serialize on the ride
// row and the loser re-reads the winner's committed status.
func (repo *RideRepo) GetByIDForUpdate(ctx context.Context, id string) (*ride.Request, error) {
	return repo.get(ctx, id, "FOR UPDATE OF r")
}

func (repo *RideRepo) get(ctx context.Context, id, lock string) (*ride.Request, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var out ride.Request
	var status string
	var memberPoolID *string
	var memberAt *time.Time

	err = tx.QueryRow(ctx, `
		SELECT
			r.id, r.created_at, r.updated_at, r.user_id,
			r.pickup_lat, r.pickup_lng, r.drop_lat, r.drop_lng,
			r.seats_required, r.luggage_units, r.detour_tolerance_percent,
			r.status, r.price, r.matched_at, r.cancelled_at,
			m.pool_id, m.created_at
		FROM ride_requests r
		LEFT JOIN pool_members m ON m.ride_id = r.id
		WHERE r.id = $1
	`+lock, id).Scan(
		&out.ID, &out.CreatedAt, &out.UpdatedAt, &out.UserID,
		&out.Pickup.Lat, &out.Pickup.Lng, &out.Drop.Lat, &out.Drop.Lng,
		&out.SeatsRequired, &out.LuggageUnits, &out.DetourTolerancePercent,
		&status, &out.Price, &out.MatchedAt, &out.CancelledAt,
		&memberPoolID, &memberAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ports.ErrNotFound
		}
		return nil, fmt.Errorf("get ride: %w", err)
	}
	if out.Status, err = ride.ParseStatus(status); err != nil {
		return nil, fmt.Errorf("ride %s: %w", out.ID, err)
	}

	if memberPoolID != nil {
		out.Membership = &pool.Member{RideID: out.ID, PoolID: *memberPoolID}
		if memberAt != nil {
			out.Membership.CreatedAt = *memberAt
		}
	}

	return &out, nil
}

// MarkMatched moves PENDING -> MATCHED and fixes the price.
func (repo *RideRepo) MarkMatched(ctx context.Context, id string, price float64, at time.Time) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `
		UPDATE ride_requests
		SET status = 'MATCHED', price = $2, matched_at = $3, updated_at = now()
		WHERE id = $1 AND status = 'PENDING'
	`, id, price, at)
	if err != nil {
		return fmt.Errorf("mark ride matched: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ride.ErrInvalidStatusTransition
	}

	return nil
}

// Cancel moves a non-terminal ride to CANCELLED.
func (repo *RideRepo) Cancel(ctx context.Context, id string, at time.Time) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `
		UPDATE ride_requests
		SET status = 'CANCELLED', cancelled_at = $2, updated_at = now()
		WHERE id = $1 AND status <> 'CANCELLED'
	`, id, at)
	if err != nil {
		return fmt.Errorf("cancel ride: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ride.ErrInvalidStatusTransition
	}

	return nil
}

// memberRides loads the ride requests belonging to one pool, oldest first.
// Shared with PoolRepo for the nested read models.
func memberRides(ctx context.Context, tx pgx.Tx, poolID string) ([]*ride.Request, error) {
	rows, err := tx.Query(ctx, `
		SELECT
			r.id, r.created_at, r.updated_at, r.user_id,
			r.pickup_lat, r.pickup_lng, r.drop_lat, r.drop_lng,
			r.seats_required, r.luggage_units, r.detour_tolerance_percent,
			r.status, r.price, r.matched_at, r.cancelled_at,
			m.created_at
		FROM pool_members m
		JOIN ride_requests r ON r.id = m.ride_id
		WHERE m.pool_id = $1
		ORDER BY m.created_at, r.id
	`, poolID)
	if err != nil {
		return nil, fmt.Errorf("query member rides: %w", err)
	}
	defer rows.Close()

	var out []*ride.Request
	for rows.Next() {
		var r ride.Request
		var status string
		var memberAt time.Time
		err := rows.Scan(
			&r.ID, &r.CreatedAt, &r.UpdatedAt, &r.UserID,
			&r.Pickup.Lat, &r.Pickup.Lng, &r.Drop.Lat, &r.Drop.Lng,
			&r.SeatsRequired, &r.LuggageUnits, &r.DetourTolerancePercent,
			&status, &r.Price, &r.MatchedAt, &r.CancelledAt,
			&memberAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan member ride: %w", err)
		}
		if r.Status, err = ride.ParseStatus(status); err != nil {
			return nil, fmt.Errorf("ride %s: %w", r.ID, err)
		}
		r.Membership = &pool.Member{RideID: r.ID, PoolID: poolID, CreatedAt: memberAt}
		out = append(out, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return out, nil
}
