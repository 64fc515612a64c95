package notification

import (
	"context"
)

// Publisher accepts events for asynchronous delivery. Publish never blocks on
// delivery and never reports delivery failures.
type Publisher interface {
	Publish(ctx context.Context, event Event)
}

// Sink delivers an event over one transport.
type Sink interface {
	Name() string
	Send(ctx context.Context, event Event) error
}

// Service is the running dispatcher.
type Service interface {
	Publisher
	Stop()
}
