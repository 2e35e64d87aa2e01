package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Producer serializes events and hands them to a MessageSender.
type Producer struct {
	sender      MessageSender
	destination string
}

func NewProducer(sender MessageSender, destination string) *Producer {
	return &Producer{
		sender:      sender,
		destination: destination,
	}
}

// NewJournal returns a producer that appends events to the file at path.
func NewJournal(path string) *Producer {
	return NewProducer(&FileSender{}, path)
}

func (p *Producer) Publish(ctx context.Context, event ClockEvent) error {
	span := trace.SpanFromContext(ctx)
	if sc := span.SpanContext(); sc.HasTraceID() {
		event.TraceID = sc.TraceID().String()
	}
	if span.IsRecording() {
		span.SetAttributes(
			attribute.String("app.employeeId", event.EmployeeID),
			attribute.String("app.event", string(event.Event)),
		)
	}

	b, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := p.sender.SendMessage(ctx, p.destination, b); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}
