package infrastructure

import (
	"stackpot/domain/events"

	log "github.com/sirupsen/logrus"
)

// NoopEventPublisher drops every event. It stands in when NATS is unreachable.
type NoopEventPublisher struct{}

// NewNoopEventPublisher creates a publisher that drops events
func NewNoopEventPublisher() *NoopEventPublisher {
	return &NoopEventPublisher{}
}

// Publish drops the event
func (n *NoopEventPublisher) Publish(event events.Event) error {
	log.WithField("eventType", event.Type()).Trace("Dropping event, no broker configured")
	return nil
}
