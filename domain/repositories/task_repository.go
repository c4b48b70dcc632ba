package repositories

import (
	"context"

	"github.com/google/uuid"

	"taskhub/domain/models"
)

// TaskFilter describes a filtered task query. All set fields are combined
// with AND. Scope, when non-nil, restricts results to tasks the given user
// owns or is assigned to; admins query with Scope == nil.
type TaskFilter struct {
	Status   string
	Priority string
	Tag      string
	Search   string // case-insensitive substring over title OR description
	Scope    *uuid.UUID
}

type TaskRepository interface {
	Create(ctx context.Context, task *models.Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error)
	// Query returns matching tasks in stable creation order.
	Query(ctx context.Context, filter TaskFilter) ([]*models.Task, error)
	// UpdatePartial applies only the provided fields; list fields replace
	// wholesale, they are never merged.
	UpdatePartial(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	// ReplaceAttachments swaps the full attachment list. Read-modify-write:
	// concurrent callers on the same task can overwrite each other.
	ReplaceAttachments(ctx context.Context, id uuid.UUID, attachments models.AttachmentList) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error)
	// AllBlobIDs lists every blob id referenced by any attachment. Used by
	// the orphaned-blob sweeper.
	AllBlobIDs(ctx context.Context) ([]string, error)
}
