package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RidesMatchedTotal   = promauto.NewCounter(prometheus.CounterOpts{Namespace: "ridepool", Name: "rides_matched_total", Help: "Rides matched into an existing pool"})
	PoolsCreatedTotal   = promauto.NewCounter(prometheus.CounterOpts{Namespace: "ridepool", Name: "pools_created_total", Help: "Pools provisioned for unmatched rides"})
	PoolsClosedTotal    = promauto.NewCounter(prometheus.CounterOpts{Namespace: "ridepool", Name: "pools_closed_total", Help: "Pools closed after losing their last member"})
	RidesCancelledTotal = promauto.NewCounter(prometheus.CounterOpts{Namespace: "ridepool", Name: "rides_cancelled_total", Help: "Rides cancelled"})
	NoVehiclesTotal     = promauto.NewCounter(prometheus.CounterOpts{Namespace: "ridepool", Name: "no_vehicles_total", Help: "Ride requests rejected because no vehicle was available"})

	CapacityConflictsTotal = promauto.NewCounter(prometheus.CounterOpts{Namespace: "ridepool", Name: "capacity_conflicts_total", Help: "Capacity ledger updates that lost a concurrent race"})

	CreateRideDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "ridepool",
		Name:      "create_ride_duration_seconds",
		Help:      "End-to-end createRide transaction latency",
		Buckets:   prometheus.DefBuckets,
	})

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "ridepool", Name: "http_requests_total", Help: "Total HTTP requests handled"},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ridepool",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)
