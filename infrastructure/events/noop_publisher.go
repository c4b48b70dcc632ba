package events

import (
	"context"

	"taskhub/domain/ports"
)

// NoopPublisher is used when NATS is not configured.
type NoopPublisher struct{}

func NewNoopPublisher() ports.EventPublisher {
	return &NoopPublisher{}
}

func (p *NoopPublisher) Publish(ctx context.Context, subject string, payload interface{}) error {
	return nil
}

func (p *NoopPublisher) Close() {}
