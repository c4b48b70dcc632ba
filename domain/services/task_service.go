package services

import (
	"context"
	"io"

	"github.com/google/uuid"

	"taskhub/domain/dto"
	"taskhub/domain/models"
	"taskhub/domain/policy"
)

type TaskService interface {
	CreateTask(ctx context.Context, p policy.Principal, req *dto.CreateTaskRequest) (*dto.TaskResponse, error)
	ListTasks(ctx context.Context, p policy.Principal, filter *dto.TaskFilterRequest) ([]*dto.TaskResponse, error)
	GetTask(ctx context.Context, p policy.Principal, taskID uuid.UUID) (*dto.TaskResponse, error)
	UpdateTask(ctx context.Context, p policy.Principal, taskID uuid.UUID, req *dto.UpdateTaskRequest) (*dto.TaskResponse, error)
	DeleteTask(ctx context.Context, p policy.Principal, taskID uuid.UUID) error

	AddAttachment(ctx context.Context, p policy.Principal, taskID uuid.UUID, upload *dto.AttachmentUpload) (*dto.AttachmentResponse, error)
	// DownloadAttachment returns the payload stream plus the attachment
	// metadata. The caller owns the stream and must close it.
	DownloadAttachment(ctx context.Context, p policy.Principal, taskID uuid.UUID, attachmentID string) (io.ReadCloser, *models.Attachment, error)
	DeleteAttachment(ctx context.Context, p policy.Principal, taskID uuid.UUID, attachmentID string) error
}
