package service

import (
	"time"

	"ridepool/internal/general/contracts"

	"github.com/google/uuid"
)

// newEnvelope stamps the cross-cutting headers for one published event.
func newEnvelope(correlationID string) contracts.Envelope {
	return contracts.Envelope{
		EventID:       uuid.NewString(),
		CorrelationID: correlationID,
		Producer:      "pool-service",
		SentAt:        time.Now().UTC(),
	}
}

// generateCorrelationID creates a correlation ID for tracing requests.
func generateCorrelationID() string {
	return "req_" + uuid.NewString()
}
