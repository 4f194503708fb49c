package interfaces

import (
	"context"

	"stackpot/domain/entities"
)

type inboundMessageKey struct{}

// InboundMessage identifies the message a write was requested by
type InboundMessage struct {
	ID     string
	Source entities.MessageSource
}

// WithInboundMessage tags ctx with the message that requested the write. The
// pot records the id in the write's transaction and rejects a second write
// carrying the same id with ErrDuplicateMessage. An empty id leaves ctx untouched.
func WithInboundMessage(ctx context.Context, source entities.MessageSource, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, inboundMessageKey{}, InboundMessage{ID: id, Source: source})
}

// InboundMessageFrom returns the message ctx was tagged with
func InboundMessageFrom(ctx context.Context) (InboundMessage, bool) {
	msg, ok := ctx.Value(inboundMessageKey{}).(InboundMessage)
	return msg, ok
}
