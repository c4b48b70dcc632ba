package serviceimpl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"taskhub/domain/dto"
	"taskhub/domain/models"
	"taskhub/domain/policy"
	"taskhub/domain/ports"
	"taskhub/domain/repositories"
	"taskhub/domain/services"
	"taskhub/pkg/apperr"
	"taskhub/pkg/logger"
)

type TaskServiceImpl struct {
	taskRepo      repositories.TaskRepository
	userRepo      repositories.UserRepository
	blobs         ports.BlobStore
	events        ports.EventPublisher
	maxUploadSize int64
}

func NewTaskService(
	taskRepo repositories.TaskRepository,
	userRepo repositories.UserRepository,
	blobs ports.BlobStore,
	events ports.EventPublisher,
	maxUploadSize int64,
) services.TaskService {
	return &TaskServiceImpl{
		taskRepo:      taskRepo,
		userRepo:      userRepo,
		blobs:         blobs,
		events:        events,
		maxUploadSize: maxUploadSize,
	}
}

func (s *TaskServiceImpl) CreateTask(ctx context.Context, p policy.Principal, req *dto.CreateTaskRequest) (*dto.TaskResponse, error) {
	// Enforced here as well as in the HTTP layer; the service is usable
	// without a fiber front.
	if strings.TrimSpace(req.Title) == "" {
		return nil, apperr.Validation("title is required")
	}

	status := req.Status
	if status == "" {
		status = models.StatusTodo
	}
	priority := req.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}

	task := &models.Task{
		Title:           req.Title,
		Description:     req.Description,
		Status:          status,
		Priority:        priority,
		DueDate:         req.DueDate,
		Tags:            append(models.StringList{}, req.Tags...),
		OwnerID:         p.ID,
		AssignedUserIDs: unionAssignees(req.AssignedUserIDs, p.ID),
		Attachments:     models.AttachmentList{},
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "Task created", "task_id", task.ID, "owner_id", p.ID)
	publishEvent(ctx, s.events, ports.SubjectTaskCreated, map[string]interface{}{
		"taskId":  task.ID,
		"ownerId": task.OwnerID,
	})

	return s.toResponse(ctx, task), nil
}

func (s *TaskServiceImpl) ListTasks(ctx context.Context, p policy.Principal, filter *dto.TaskFilterRequest) ([]*dto.TaskResponse, error) {
	repoFilter := repositories.TaskFilter{
		Status:   filter.Status,
		Priority: filter.Priority,
		Tag:      filter.Tag,
		Search:   filter.Search,
	}
	if !policy.CanListAllTasks(p) {
		scope := p.ID
		repoFilter.Scope = &scope
	}

	tasks, err := s.taskRepo.Query(ctx, repoFilter)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.TaskResponse, 0, len(tasks))
	for _, task := range tasks {
		responses = append(responses, s.toResponse(ctx, task))
	}
	return responses, nil
}

func (s *TaskServiceImpl) GetTask(ctx context.Context, p policy.Principal, taskID uuid.UUID) (*dto.TaskResponse, error) {
	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !policy.CanReadTask(p, task) {
		return nil, apperr.Forbidden("you do not have access to this task")
	}
	return s.toResponse(ctx, task), nil
}

func (s *TaskServiceImpl) UpdateTask(ctx context.Context, p policy.Principal, taskID uuid.UUID, req *dto.UpdateTaskRequest) (*dto.TaskResponse, error) {
	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}

	switch {
	case policy.CanFullyUpdateTask(p):
		if req.Title != nil {
			fields["title"] = *req.Title
		}
		if req.Description != nil {
			fields["description"] = *req.Description
		}
		if req.Status != nil {
			fields["status"] = *req.Status
		}
		if req.Priority != nil {
			fields["priority"] = *req.Priority
		}
		if req.DueDate != nil {
			fields["due_date"] = *req.DueDate
		}
		if req.Tags != nil {
			fields["tags"] = models.StringList(*req.Tags)
		}
		if req.AssignedUserIDs != nil {
			// The list replaces wholesale; an admin can drop the owner
			// from their own task's assignees.
			fields["assigned_user_ids"] = models.StringList(*req.AssignedUserIDs)
		}

	case policy.CanUpdateTaskStatus(p, task):
		// A restricted update must name exactly one field. Extra fields are
		// rejected, never silently dropped.
		if req.HasNonStatusField() {
			return nil, apperr.Validation("only the status field may be changed")
		}
		if req.Status == nil {
			return nil, apperr.Validation("status is required")
		}
		fields["status"] = *req.Status

	default:
		return nil, apperr.Forbidden("you do not have access to this task")
	}

	if len(fields) > 0 {
		if err := s.taskRepo.UpdatePartial(ctx, taskID, fields); err != nil {
			return nil, err
		}
		task, err = s.taskRepo.GetByID(ctx, taskID)
		if err != nil {
			return nil, err
		}
	}

	return s.toResponse(ctx, task), nil
}

func (s *TaskServiceImpl) DeleteTask(ctx context.Context, p policy.Principal, taskID uuid.UUID) error {
	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return err
	}
	if !policy.CanDeleteTask(p, task) {
		return apperr.Forbidden("you do not have access to this task")
	}

	// Blob removal is best effort. A storage failure must not keep the
	// task record alive.
	for _, attachment := range task.Attachments {
		if err := s.blobs.Delete(ctx, attachment.BlobID); err != nil {
			logger.WarnContext(ctx, "Failed to delete attachment blob",
				"task_id", taskID, "blob_id", attachment.BlobID, "error", err)
		}
	}

	if err := s.taskRepo.Delete(ctx, taskID); err != nil {
		return err
	}

	logger.InfoContext(ctx, "Task deleted", "task_id", taskID, "by", p.ID)
	publishEvent(ctx, s.events, ports.SubjectTaskDeleted, map[string]interface{}{
		"taskId": taskID,
	})
	return nil
}

func (s *TaskServiceImpl) AddAttachment(ctx context.Context, p policy.Principal, taskID uuid.UUID, upload *dto.AttachmentUpload) (*dto.AttachmentResponse, error) {
	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !policy.CanManageAttachments(p, task) {
		return nil, apperr.Forbidden("you do not have access to this task")
	}

	if upload.FileName == "" {
		return nil, apperr.Validation("file name is required")
	}
	if upload.Size <= 0 {
		return nil, apperr.Validation("file is empty")
	}
	if upload.Size > s.maxUploadSize {
		return nil, apperr.FileTooLarge(fmt.Sprintf("file exceeds the %d byte limit", s.maxUploadSize))
	}

	contentType := upload.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	// Upload the payload before touching the task record so a failed write
	// never leaves a dangling attachment reference.
	blobID, err := s.blobs.Put(ctx, upload.Payload, upload.Size, upload.FileName, contentType)
	if err != nil {
		return nil, apperr.Storage("failed to store file", err)
	}

	attachment := models.Attachment{
		ID:          uuid.New().String(),
		FileName:    upload.FileName,
		FileSize:    upload.Size,
		ContentType: contentType,
		BlobID:      blobID,
		UploadedAt:  time.Now().UTC().Format(time.RFC3339),
	}

	updated := append(append(models.AttachmentList{}, task.Attachments...), attachment)
	if err := s.taskRepo.ReplaceAttachments(ctx, taskID, updated); err != nil {
		// Roll the blob back so storage does not accumulate unreferenced
		// payloads. Best effort only.
		if delErr := s.blobs.Delete(ctx, blobID); delErr != nil {
			logger.WarnContext(ctx, "Failed to roll back blob after persist error",
				"blob_id", blobID, "error", delErr)
		}
		return nil, err
	}

	logger.InfoContext(ctx, "Attachment added",
		"task_id", taskID, "attachment_id", attachment.ID, "size", upload.Size)

	response := dto.AttachmentToResponse(&attachment)
	return &response, nil
}

func (s *TaskServiceImpl) DownloadAttachment(ctx context.Context, p policy.Principal, taskID uuid.UUID, attachmentID string) (io.ReadCloser, *models.Attachment, error) {
	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return nil, nil, err
	}
	if !policy.CanDownloadAttachment(p, task) {
		return nil, nil, apperr.Forbidden("you do not have access to this task")
	}

	attachment := task.FindAttachment(attachmentID)
	if attachment == nil {
		return nil, nil, apperr.NotFound("attachment not found")
	}

	payload, _, err := s.blobs.Get(ctx, attachment.BlobID)
	if err != nil {
		if errors.Is(err, ports.ErrBlobNotFound) {
			// The record exists but the payload is gone: a dangling
			// reference, reported distinctly from a missing attachment.
			return nil, nil, apperr.NotFound("stored file is missing")
		}
		return nil, nil, apperr.Storage("failed to open stored file", err)
	}

	return payload, attachment, nil
}

func (s *TaskServiceImpl) DeleteAttachment(ctx context.Context, p policy.Principal, taskID uuid.UUID, attachmentID string) error {
	task, err := s.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return err
	}
	if !policy.CanManageAttachments(p, task) {
		return apperr.Forbidden("you do not have access to this task")
	}

	attachment := task.FindAttachment(attachmentID)
	if attachment == nil {
		return apperr.NotFound("attachment not found")
	}

	// Metadata removal proceeds even if the blob delete fails; the sweeper
	// picks up anything left behind.
	if err := s.blobs.Delete(ctx, attachment.BlobID); err != nil {
		logger.WarnContext(ctx, "Failed to delete attachment blob",
			"task_id", taskID, "blob_id", attachment.BlobID, "error", err)
	}

	remaining := make(models.AttachmentList, 0, len(task.Attachments))
	for _, a := range task.Attachments {
		if a.ID != attachmentID {
			remaining = append(remaining, a)
		}
	}

	if err := s.taskRepo.ReplaceAttachments(ctx, taskID, remaining); err != nil {
		return err
	}

	logger.InfoContext(ctx, "Attachment deleted", "task_id", taskID, "attachment_id", attachmentID)
	return nil
}

// unionAssignees dedups the requested assignee list and guarantees the owner
// appears in it, preserving request order.
func unionAssignees(requested []string, ownerID uuid.UUID) models.StringList {
	owner := ownerID.String()
	seen := make(map[string]bool, len(requested)+1)
	out := make(models.StringList, 0, len(requested)+1)

	for _, id := range requested {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	if !seen[owner] {
		out = append(out, owner)
	}
	return out
}

// toResponse projects a task, resolving assignee ids to id+name summaries.
// Assignees whose user record no longer exists are silently skipped.
func (s *TaskServiceImpl) toResponse(ctx context.Context, task *models.Task) *dto.TaskResponse {
	summaries := make([]dto.UserSummary, 0, len(task.AssignedUserIDs))
	for _, raw := range task.AssignedUserIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			continue
		}
		user, err := s.userRepo.GetByID(ctx, id)
		if err != nil {
			continue
		}
		summaries = append(summaries, dto.UserSummary{ID: user.ID, Name: user.Name})
	}
	return dto.TaskToTaskResponse(task, summaries)
}
