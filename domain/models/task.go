package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"

	StatusTodo       = "todo"
	StatusInProgress = "in_progress"
	StatusDone       = "done"
)

// Task is stored as a single row; tags, assignees and attachments live in
// jsonb columns so the whole record behaves like one document. Attachment
// updates replace the full list (see TaskRepository.ReplaceAttachments).
type Task struct {
	ID              uuid.UUID      `gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	Title           string         `gorm:"not null"`
	Description     string
	Status          string         `gorm:"default:'todo'"` // open set: todo, in_progress, done, ...
	Priority        string         `gorm:"default:'medium'"` // low, medium, high
	DueDate         *string        // opaque date string, not interpreted
	Tags            StringList     `gorm:"type:jsonb;default:'[]'"`
	OwnerID         uuid.UUID      `gorm:"not null;index"` // immutable after creation
	AssignedUserIDs StringList     `gorm:"type:jsonb;default:'[]'"`
	Attachments     AttachmentList `gorm:"type:jsonb;default:'[]'"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (Task) TableName() string {
	return "tasks"
}

// IsOwner reports whether userID created the task.
func (t *Task) IsOwner(userID uuid.UUID) bool {
	return t.OwnerID == userID
}

// IsAssigned reports whether userID appears in the assignment list.
func (t *Task) IsAssigned(userID uuid.UUID) bool {
	id := userID.String()
	for _, assigned := range t.AssignedUserIDs {
		if assigned == id {
			return true
		}
	}
	return false
}

// FindAttachment returns the attachment with the given id, or nil.
func (t *Task) FindAttachment(attachmentID string) *Attachment {
	for i := range t.Attachments {
		if t.Attachments[i].ID == attachmentID {
			return &t.Attachments[i]
		}
	}
	return nil
}

// Attachment is metadata for a binary payload held in the blob store. The
// blob itself is owned by the store; BlobID is only a reference.
type Attachment struct {
	ID          string `json:"id"`
	FileName    string `json:"fileName"`
	FileSize    int64  `json:"fileSize"`
	ContentType string `json:"contentType"`
	BlobID      string `json:"blobId"`
	UploadedAt  string `json:"uploadedAt"`
}

// StringList is a jsonb-backed string slice.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	return json.Marshal(l)
}

func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = StringList{}
		return nil
	}
	data, err := toBytes(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, l)
}

// AttachmentList is a jsonb-backed attachment slice.
type AttachmentList []Attachment

func (l AttachmentList) Value() (driver.Value, error) {
	if l == nil {
		l = AttachmentList{}
	}
	return json.Marshal(l)
}

func (l *AttachmentList) Scan(value interface{}) error {
	if value == nil {
		*l = AttachmentList{}
		return nil
	}
	data, err := toBytes(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, l)
}

func toBytes(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, errors.New("unsupported jsonb source type")
	}
}
