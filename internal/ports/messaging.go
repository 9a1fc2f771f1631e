package ports

import (
	"context"

	"ridepool/internal/general/contracts"
)

// EventPublisher fans committed state changes out to the message broker.
// Implementations must be safe for concurrent use; publish failures are
// logged by callers and never roll back the transaction that produced them.
type EventPublisher interface {
	RideMatched(ctx context.Context, ev contracts.RideMatchedEvent) error
	RideCancelled(ctx context.Context, ev contracts.RideCancelledEvent) error
	PoolClosed(ctx context.Context, ev contracts.PoolClosedEvent) error
}
