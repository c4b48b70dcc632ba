package postgres

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"taskhub/domain/models"
	"taskhub/domain/repositories"
	"taskhub/pkg/apperr"
)

type TaskRepositoryImpl struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) repositories.TaskRepository {
	return &TaskRepositoryImpl{db: db}
}

func (r *TaskRepositoryImpl) Create(ctx context.Context, task *models.Task) error {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return apperr.Storage("failed to create task", err)
	}
	return nil
}

func (r *TaskRepositoryImpl) GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	var task models.Task
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&task).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("task not found")
		}
		return nil, apperr.Storage("failed to load task", err)
	}
	return &task, nil
}

// Query composes the filter conjunctively. The tag and scope filters use
// jsonb containment against the list columns; search is a case-insensitive
// substring over title or description.
func (r *TaskRepositoryImpl) Query(ctx context.Context, filter repositories.TaskFilter) ([]*models.Task, error) {
	q := r.db.WithContext(ctx).Model(&models.Task{})

	if filter.Scope != nil {
		q = q.Where("owner_id = ? OR assigned_user_ids @> ?", *filter.Scope, jsonList(filter.Scope.String()))
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Priority != "" {
		q = q.Where("priority = ?", filter.Priority)
	}
	if filter.Tag != "" {
		q = q.Where("tags @> ?", jsonList(filter.Tag))
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where("title ILIKE ? OR description ILIKE ?", pattern, pattern)
	}

	var tasks []*models.Task
	if err := q.Order("created_at ASC").Find(&tasks).Error; err != nil {
		return nil, apperr.Storage("failed to query tasks", err)
	}
	return tasks, nil
}

func (r *TaskRepositoryImpl) UpdatePartial(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	result := r.db.WithContext(ctx).Model(&models.Task{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return apperr.Storage("failed to update task", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("task not found")
	}
	return nil
}

func (r *TaskRepositoryImpl) ReplaceAttachments(ctx context.Context, id uuid.UUID, attachments models.AttachmentList) error {
	result := r.db.WithContext(ctx).Model(&models.Task{}).Where("id = ?", id).
		Update("attachments", attachments)
	if result.Error != nil {
		return apperr.Storage("failed to update attachments", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("task not found")
	}
	return nil
}

func (r *TaskRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Task{})
	if result.Error != nil {
		return apperr.Storage("failed to delete task", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("task not found")
	}
	return nil
}

func (r *TaskRepositoryImpl) DeleteByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Delete(&models.Task{})
	if result.Error != nil {
		return 0, apperr.Storage("failed to delete tasks by owner", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *TaskRepositoryImpl) AllBlobIDs(ctx context.Context) ([]string, error) {
	var blobIDs []string
	err := r.db.WithContext(ctx).Raw(
		`SELECT jsonb_array_elements(attachments)->>'blobId' FROM tasks WHERE jsonb_array_length(attachments) > 0`,
	).Scan(&blobIDs).Error
	if err != nil {
		return nil, apperr.Storage("failed to collect blob ids", err)
	}
	return blobIDs, nil
}

func jsonList(values ...string) string {
	data, _ := json.Marshal(values)
	return string(data)
}
