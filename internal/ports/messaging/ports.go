package messaging

import (
	"context"
)

// Publisher defines the output port for publishing clock events.
type Publisher interface {
	Publish(ctx context.Context, event ClockEvent) error
}

// MessageSender defines the interface for sending raw messages to a destination.
type MessageSender interface {
	SendMessage(ctx context.Context, destination string, body []byte) error
}

// NopPublisher drops every event. It is used when no journal is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, ClockEvent) error { return nil }
