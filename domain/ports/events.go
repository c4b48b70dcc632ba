package ports

import "context"

// Event subjects published on the task lifecycle stream.
const (
	SubjectTaskCreated = "taskhub.task.created"
	SubjectTaskDeleted = "taskhub.task.deleted"
	SubjectUserDeleted = "taskhub.user.deleted"
)

// EventPublisher broadcasts lifecycle events. Publishing is always
// best-effort; failures must never affect the primary operation.
type EventPublisher interface {
	Publish(ctx context.Context, subject string, payload interface{}) error
	Close()
}
