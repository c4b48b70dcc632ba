package serviceimpl

import (
	"context"

	"taskhub/domain/ports"
	"taskhub/pkg/logger"
)

// publishEvent emits a lifecycle event without affecting the calling
// operation. A nil publisher or a publish failure is never surfaced.
func publishEvent(ctx context.Context, events ports.EventPublisher, subject string, payload interface{}) {
	if events == nil {
		return
	}
	if err := events.Publish(ctx, subject, payload); err != nil {
		logger.WarnContext(ctx, "Failed to publish event", "subject", subject, "error", err)
	}
}
