package dto

import (
	"taskhub/domain/models"
)

func UserToUserResponse(user *models.User) *UserResponse {
	if user == nil {
		return nil
	}
	return &UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

func AttachmentToResponse(a *models.Attachment) AttachmentResponse {
	return AttachmentResponse{
		ID:          a.ID,
		FileName:    a.FileName,
		FileSize:    a.FileSize,
		ContentType: a.ContentType,
		BlobID:      a.BlobID,
		UploadedAt:  a.UploadedAt,
	}
}

// TaskToTaskResponse projects a task for the API. Assignee summaries are
// resolved by the caller so the mapper stays repository-free.
func TaskToTaskResponse(task *models.Task, assignees []UserSummary) *TaskResponse {
	if task == nil {
		return nil
	}
	attachments := make([]AttachmentResponse, 0, len(task.Attachments))
	for i := range task.Attachments {
		attachments = append(attachments, AttachmentToResponse(&task.Attachments[i]))
	}
	if assignees == nil {
		assignees = []UserSummary{}
	}
	return &TaskResponse{
		ID:            task.ID,
		Title:         task.Title,
		Description:   task.Description,
		Status:        task.Status,
		Priority:      task.Priority,
		DueDate:       task.DueDate,
		Tags:          task.Tags,
		OwnerID:       task.OwnerID,
		AssignedUsers: assignees,
		Attachments:   attachments,
		CreatedAt:     task.CreatedAt,
		UpdatedAt:     task.UpdatedAt,
	}
}
