package infrastructure

import (
	"context"
	"errors"
	"fmt"

	"stackpot/domain/events"
	"stackpot/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// NATSTransactionalPublisher buffers the events of one unit of work and
// releases them only after the transaction commits
type NATSTransactionalPublisher struct {
	target  interfaces.EventPublisher
	pending []events.Event
}

// NewNATSTransactionalPublisher buffers in front of target
func NewNATSTransactionalPublisher(target interfaces.EventPublisher) *NATSTransactionalPublisher {
	return &NATSTransactionalPublisher{target: target}
}

// Publish queues the event
func (p *NATSTransactionalPublisher) Publish(event events.Event) error {
	p.pending = append(p.pending, event)
	return nil
}

// Flush sends the queued events in order. Every event is attempted; the
// failures are returned together. The queue is empty afterwards.
func (p *NATSTransactionalPublisher) Flush(ctx context.Context) error {
	queued := p.pending
	p.pending = nil

	var errs []error
	for i, event := range queued {
		if err := ctx.Err(); err != nil {
			errs = append(errs, fmt.Errorf("%d events not published: %w", len(queued)-i, err))
			break
		}
		if err := p.target.Publish(event); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", event.Type(), err))
		}
	}

	log.WithFields(log.Fields{
		"events": len(queued),
		"failed": len(errs),
	}).Debug("Flushed committed events")
	return errors.Join(errs...)
}

// Discard drops the queued events of a rolled back unit of work
func (p *NATSTransactionalPublisher) Discard() {
	if len(p.pending) > 0 {
		log.WithField("events", len(p.pending)).Debug("Discarding events of rolled back transaction")
	}
	p.pending = nil
}

// Pending returns the number of queued events
func (p *NATSTransactionalPublisher) Pending() int {
	return len(p.pending)
}
