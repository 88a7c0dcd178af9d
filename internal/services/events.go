package services

import (
	"encoding/json"
	"log"
	"time"
)

// EventsExchange is the topic exchange domain events are published to.
const EventsExchange = "storefront"

// Routing keys of published domain events.
const (
	EventUserSignedUp    = "user.signed_up"
	EventUserDeleted     = "user.deleted"
	EventProductCreated  = "product.created"
	EventProductUpdated  = "product.updated"
	EventProductDeleted  = "product.deleted"
	EventCartUpdated     = "cart.updated"
	EventCartLineRemoved = "cart.line_removed"
	EventCartCleared     = "cart.cleared"
)

// EventPublisher is implemented by *rabbitmq.Client.
type EventPublisher interface {
	Publish(exchange, routingKey string, body []byte) error
}

// publishEvent sends a best-effort notification. A nil publisher disables
// events; failures are logged and never returned to the caller.
func publishEvent(pub EventPublisher, routingKey string, payload map[string]interface{}) {
	if pub == nil {
		return
	}
	payload["event"] = routingKey
	payload["occurredAt"] = time.Now().UTC().Format(time.RFC3339)

	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Failed to marshal %s event: %v", routingKey, err)
		return
	}
	if err := pub.Publish(EventsExchange, routingKey, body); err != nil {
		log.Printf("Warning: failed to publish %s event: %v", routingKey, err)
	}
}
