package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"taskhub/domain/models"
	"taskhub/domain/repositories"
	"taskhub/pkg/apperr"
)

// TaskRepository is the in-memory counterpart of the Postgres task
// repository. Filter semantics match the jsonb query composition.
type TaskRepository struct {
	mu    sync.RWMutex
	tasks map[uuid.UUID]*models.Task
	seq   int64
	order map[uuid.UUID]int64
}

func NewTaskRepository() *TaskRepository {
	return &TaskRepository{
		tasks: make(map[uuid.UUID]*models.Task),
		order: make(map[uuid.UUID]int64),
	}
}

var _ repositories.TaskRepository = (*TaskRepository)(nil)

func (r *TaskRepository) Create(ctx context.Context, task *models.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	now := time.Now().UTC()
	if task.CreatedAt.IsZero() {
		task.CreatedAt = now
	}
	task.UpdatedAt = now
	if task.Status == "" {
		task.Status = models.StatusTodo
	}
	if task.Priority == "" {
		task.Priority = models.PriorityMedium
	}

	clone := cloneTask(task)
	r.seq++
	r.order[task.ID] = r.seq
	r.tasks[task.ID] = clone
	return nil
}

func (r *TaskRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	task, ok := r.tasks[id]
	if !ok {
		return nil, apperr.NotFound("task not found")
	}
	return cloneTask(task), nil
}

func (r *TaskRepository) Query(ctx context.Context, filter repositories.TaskFilter) ([]*models.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []*models.Task
	for _, task := range r.tasks {
		if !matches(task, filter) {
			continue
		}
		matched = append(matched, cloneTask(task))
	}
	sort.Slice(matched, func(i, j int) bool {
		return r.order[matched[i].ID] < r.order[matched[j].ID]
	})
	return matched, nil
}

func matches(task *models.Task, filter repositories.TaskFilter) bool {
	if filter.Scope != nil && !task.IsOwner(*filter.Scope) && !task.IsAssigned(*filter.Scope) {
		return false
	}
	if filter.Status != "" && task.Status != filter.Status {
		return false
	}
	if filter.Priority != "" && task.Priority != filter.Priority {
		return false
	}
	if filter.Tag != "" {
		found := false
		for _, tag := range task.Tags {
			if tag == filter.Tag {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if filter.Search != "" {
		needle := strings.ToLower(filter.Search)
		if !strings.Contains(strings.ToLower(task.Title), needle) &&
			!strings.Contains(strings.ToLower(task.Description), needle) {
			return false
		}
	}
	return true
}

func (r *TaskRepository) UpdatePartial(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.tasks[id]
	if !ok {
		return apperr.NotFound("task not found")
	}

	for field, value := range fields {
		switch field {
		case "title":
			task.Title = value.(string)
		case "description":
			task.Description = value.(string)
		case "status":
			task.Status = value.(string)
		case "priority":
			task.Priority = value.(string)
		case "due_date":
			if value == nil {
				task.DueDate = nil
			} else if s, ok := value.(*string); ok {
				task.DueDate = s
			} else if s, ok := value.(string); ok {
				task.DueDate = &s
			}
		case "tags":
			task.Tags = append(models.StringList{}, value.(models.StringList)...)
		case "assigned_user_ids":
			task.AssignedUserIDs = append(models.StringList{}, value.(models.StringList)...)
		}
	}
	task.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *TaskRepository) ReplaceAttachments(ctx context.Context, id uuid.UUID, attachments models.AttachmentList) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.tasks[id]
	if !ok {
		return apperr.NotFound("task not found")
	}
	task.Attachments = append(models.AttachmentList{}, attachments...)
	task.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tasks[id]; !ok {
		return apperr.NotFound("task not found")
	}
	delete(r.tasks, id)
	delete(r.order, id)
	return nil
}

func (r *TaskRepository) DeleteByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var removed int64
	for id, task := range r.tasks {
		if task.OwnerID == ownerID {
			delete(r.tasks, id)
			delete(r.order, id)
			removed++
		}
	}
	return removed, nil
}

func (r *TaskRepository) AllBlobIDs(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var blobIDs []string
	for _, task := range r.tasks {
		for _, attachment := range task.Attachments {
			blobIDs = append(blobIDs, attachment.BlobID)
		}
	}
	return blobIDs, nil
}

func cloneTask(task *models.Task) *models.Task {
	clone := *task
	clone.Tags = append(models.StringList{}, task.Tags...)
	clone.AssignedUserIDs = append(models.StringList{}, task.AssignedUserIDs...)
	clone.Attachments = append(models.AttachmentList{}, task.Attachments...)
	if task.DueDate != nil {
		due := *task.DueDate
		clone.DueDate = &due
	}
	return &clone
}
