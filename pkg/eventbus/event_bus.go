// Package eventbus provides publish/subscribe plumbing for document events.
package eventbus

import (
	"context"

	"github.com/veridoc/veridoc/pkg/events"
)

// Event is anything publishable on the bus.
type Event interface {
	GetType() events.EventType
}

// EventHandler processes one received event.
type EventHandler func(ctx context.Context, event any) error

// EventBus decouples the approval engine from notification delivery.
// Publication is best-effort and never part of a commit.
type EventBus interface {
	Publish(ctx context.Context, key string, event Event) error
	Handle(eventType events.EventType, handler EventHandler)
	Subscribe(ctx context.Context) error
	GenerateID() string
	Close() error
}
