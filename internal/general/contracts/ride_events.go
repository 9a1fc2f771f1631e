package contracts

import "time"

// RideMatchedEvent is published after a ride commits as MATCHED.
// Routing key: "ride.matched" on ExchangePoolTopic.
type RideMatchedEvent struct {
	RideID        string    `json:"ride_id"`
	UserID        string    `json:"user_id"`
	PoolID        string    `json:"pool_id"`
	Pickup        GeoPoint  `json:"pickup"`
	Drop          GeoPoint  `json:"drop"`
	Price         float64   `json:"price"`
	DetourPercent float64   `json:"detour_percent"`
	NewPool       bool      `json:"new_pool"`
	MatchedAt     time.Time `json:"matched_at"`
	Envelope
}

// RideCancelledEvent is published after a cancellation commits.
// Routing key: "ride.cancelled" on ExchangePoolTopic.
type RideCancelledEvent struct {
	RideID      string    `json:"ride_id"`
	UserID      string    `json:"user_id"`
	PoolID      string    `json:"pool_id"`
	PoolClosed  bool      `json:"pool_closed"`
	CancelledAt time.Time `json:"cancelled_at"`
	Envelope
}

// PoolClosedEvent is published when a pool loses its last member.
// Routing key: "pool.closed" on ExchangePoolTopic.
type PoolClosedEvent struct {
	PoolID    string    `json:"pool_id"`
	VehicleID string    `json:"vehicle_id"`
	ClosedAt  time.Time `json:"closed_at"`
	Envelope
}
