package contracts

import "time"

// Envelope adds cross-cutting headers all messages may carry.
type Envelope struct {
	EventID       string    `json:"event_id,omitempty"`       // Unique per published message
	CorrelationID string    `json:"correlation_id,omitempty"` // Correlation for tracing across services
	Producer      string    `json:"producer,omitempty"`       // Producer service name, e.g. "pool-service"
	SentAt        time.Time `json:"sent_at,omitempty"`        // ISO-8601 send time (UTC)
}

type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}
