package dto

import (
	"io"
	"time"

	"github.com/google/uuid"
)

type CreateTaskRequest struct {
	Title           string   `json:"title" validate:"required,min=1,max=200"`
	Description     string   `json:"description" validate:"omitempty,max=2000"`
	Status          string   `json:"status" validate:"omitempty,max=50"`
	Priority        string   `json:"priority" validate:"omitempty,oneof=low medium high"`
	DueDate         *string  `json:"dueDate"`
	Tags            []string `json:"tags" validate:"omitempty,dive,max=50"`
	AssignedUserIDs []string `json:"assignedUserIds" validate:"omitempty,dive,uuid"`
}

// UpdateTaskRequest is a partial update. Nil fields are left unchanged;
// provided list fields replace the stored list wholesale. Non-admin callers
// may set Status and nothing else.
type UpdateTaskRequest struct {
	Title           *string   `json:"title" validate:"omitempty,min=1,max=200"`
	Description     *string   `json:"description" validate:"omitempty,max=2000"`
	Status          *string   `json:"status" validate:"omitempty,max=50"`
	Priority        *string   `json:"priority" validate:"omitempty,oneof=low medium high"`
	DueDate         *string   `json:"dueDate"`
	Tags            *[]string `json:"tags"`
	AssignedUserIDs *[]string `json:"assignedUserIds" validate:"omitempty,dive,uuid"`
}

// HasNonStatusField reports whether anything besides Status is set, which
// the restricted owner/assignee update path must reject.
func (r *UpdateTaskRequest) HasNonStatusField() bool {
	return r.Title != nil || r.Description != nil || r.Priority != nil ||
		r.DueDate != nil || r.Tags != nil || r.AssignedUserIDs != nil
}

type TaskFilterRequest struct {
	Status   string `query:"status" validate:"omitempty,max=50"`
	Priority string `query:"priority" validate:"omitempty,oneof=low medium high"`
	Tag      string `query:"tag" validate:"omitempty,max=50"`
	Search   string `query:"search" validate:"omitempty,max=200"`
}

type TaskResponse struct {
	ID              uuid.UUID            `json:"id"`
	Title           string               `json:"title"`
	Description     string               `json:"description"`
	Status          string               `json:"status"`
	Priority        string               `json:"priority"`
	DueDate         *string              `json:"dueDate"`
	Tags            []string             `json:"tags"`
	OwnerID         uuid.UUID            `json:"ownerId"`
	AssignedUsers   []UserSummary        `json:"assignedUsers"`
	Attachments     []AttachmentResponse `json:"attachments"`
	CreatedAt       time.Time            `json:"createdAt"`
	UpdatedAt       time.Time            `json:"updatedAt"`
}

type AttachmentResponse struct {
	ID          string `json:"id"`
	FileName    string `json:"fileName"`
	FileSize    int64  `json:"fileSize"`
	ContentType string `json:"contentType"`
	BlobID      string `json:"blobId"`
	UploadedAt  string `json:"uploadedAt"`
}

// AttachmentUpload carries an inbound payload from the HTTP layer to the
// task service. Size must equal the payload length.
type AttachmentUpload struct {
	Payload     io.Reader
	Size        int64
	FileName    string
	ContentType string
}
