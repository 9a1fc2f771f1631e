package contracts

// Exchanges
const (
	ExchangePoolTopic = "ridepool.events"
)

// Routing keys
const (
	RouteRideMatched   = "ride.matched"
	RouteRideCancelled = "ride.cancelled"
	RoutePoolClosed    = "pool.closed"
)
