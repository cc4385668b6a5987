package interfaces

import (
	"context"

	"casino/events"
)

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	Publish(event events.Event) error
}

// TransactionalEventPublisher holds events until the surrounding write commits
type TransactionalEventPublisher interface {
	EventPublisher

	// Flush publishes every held event. Called after a successful save.
	Flush(ctx context.Context) error

	// Discard drops every held event. Called when the save did not happen.
	Discard()
}
