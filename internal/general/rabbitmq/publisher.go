package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ridepool/internal/general/contracts"

	amqp "github.com/rabbitmq/amqp091-go"
)

// EventPublisher publishes pool service events over the Client.
type EventPublisher struct {
	Client *Client
}

// NewEventPublisher constructs an EventPublisher using the provided RabbitMQ client.
func NewEventPublisher(client *Client) *EventPublisher {
	return &EventPublisher{Client: client}
}

func (publisher *EventPublisher) publishJSON(routingKey string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return publisher.Client.PublishMessage(contracts.ExchangePoolTopic, routingKey, body)
}

// RideMatched publishes a ride.matched event.
func (publisher *EventPublisher) RideMatched(ctx context.Context, ev contracts.RideMatchedEvent) error {
	return publisher.publishJSON(contracts.RouteRideMatched, ev)
}

// RideCancelled publishes a ride.cancelled event.
func (publisher *EventPublisher) RideCancelled(ctx context.Context, ev contracts.RideCancelledEvent) error {
	return publisher.publishJSON(contracts.RouteRideCancelled, ev)
}

// PoolClosed publishes a pool.closed event.
func (publisher *EventPublisher) PoolClosed(ctx context.Context, ev contracts.PoolClosedEvent) error {
	return publisher.publishJSON(contracts.RoutePoolClosed, ev)
}

// PublishMessage publishes JSON messages with persistence and publisher confirms.
func (client *Client) PublishMessage(exchange, routingKey string, body []byte) error {
	client.mu.RLock()
	ch := client.pubChan
	conn := client.conn
	client.mu.RUnlock()

	// quick fail if no channel
	if conn == nil || conn.IsClosed() {
		return errors.New("rabbitmq: connection is not open")
	}
	if ch == nil || ch.IsClosed() {
		return errors.New("rabbitmq: publish channel is not open")
	}

	client.pubMu.Lock()
	defer client.pubMu.Unlock()
	confirms := client.pubConfirms

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := ch.PublishWithContext(ctx, exchange, routingKey, true /* mandatory */, false, /* immediate */
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Body:         body,
		},
	); err != nil {
		return err
	}

	select {
	case c := <-confirms:
		if !c.Ack {
			return fmt.Errorf("rabbitmq: publish not acknowledged")
		}
	case <-ctx.Done():
		// keep the confirm stream aligned: try to consume exactly one confirm even if we return a timeout to the caller
		select {
		case c := <-confirms:
			if !c.Ack {
				return fmt.Errorf("rabbitmq: publish not acknowledged after timeout")
			}
		case <-time.After(2 * time.Second):
			// give up trying to read from the confirms channel
		}

		return ctx.Err()
	}

	return nil
}
