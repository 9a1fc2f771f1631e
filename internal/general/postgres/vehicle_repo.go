package postgres

import (
	"context"
	"errors"
	"fmt"

	"ridepool/internal/domain/vehicle"
	"ridepool/internal/ports"

	"github.com/jackc/pgx/v5"
)

// VehicleRepo persists vehicles using pgx and plain SQL.
type VehicleRepo struct{}

// NewVehicleRepo constructs a new VehicleRepo.
func NewVehicleRepo() ports.VehicleRepository {
	return &VehicleRepo{}
}

// CreateBatch inserts the seeded fleet rows.
func (repo *VehicleRepo) CreateBatch(ctx context.Context, vehicles []*vehicle.Vehicle) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	for _, v := range vehicles {
		err := tx.QueryRow(ctx, `
			INSERT INTO vehicles (total_seats, luggage_capacity, is_active)
			VALUES ($1, $2, $3)
			RETURNING id, created_at
		`, v.TotalSeats, v.LuggageCapacity, v.IsActive).Scan(&v.ID, &v.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert vehicle: %w", err)
		}
	}

	return nil
}

// FindAvailable returns the first active vehicle whose total capacity covers
// the request and that is not already hosting an ACTIVE pool. First-match
// policy: ordered by creation, no optimization. The row is locked so two
// concurrent provisions cannot take the same vehicle.
func (repo *VehicleRepo) FindAvailable(ctx context.Context, seats, luggage int) (*vehicle.Vehicle, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var v vehicle.Vehicle
	err = tx.QueryRow(ctx, `
		SELECT id, total_seats, luggage_capacity, is_active, created_at
		FROM vehicles v
		WHERE is_active
		  AND total_seats >= $1
		  AND luggage_capacity >= $2
		  AND NOT EXISTS (
			SELECT 1 FROM pools p
			WHERE p.vehicle_id = v.id AND p.status = 'ACTIVE'
		  )
		ORDER BY created_at, id
		LIMIT 1
		FOR UPDATE OF v
	`, seats, luggage).Scan(&v.ID, &v.TotalSeats, &v.LuggageCapacity, &v.IsActive, &v.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ports.ErrNotFound
		}
		return nil, fmt.Errorf("find available vehicle: %w", err)
	}

	return &v, nil
}
