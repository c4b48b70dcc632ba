package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskMembership(t *testing.T) {
	owner := uuid.New()
	assignee := uuid.New()
	task := &Task{
		OwnerID:         owner,
		AssignedUserIDs: StringList{assignee.String()},
	}

	assert.True(t, task.IsOwner(owner))
	assert.False(t, task.IsOwner(assignee))
	assert.True(t, task.IsAssigned(assignee))
	assert.False(t, task.IsAssigned(owner))
}

func TestFindAttachment(t *testing.T) {
	task := &Task{
		Attachments: AttachmentList{
			{ID: "a", FileName: "a.txt"},
			{ID: "b", FileName: "b.txt"},
		},
	}

	found := task.FindAttachment("b")
	require.NotNil(t, found)
	assert.Equal(t, "b.txt", found.FileName)

	assert.Nil(t, task.FindAttachment("missing"))
}

func TestStringListScanValue(t *testing.T) {
	list := StringList{"one", "two"}

	value, err := list.Value()
	require.NoError(t, err)

	var scanned StringList
	require.NoError(t, scanned.Scan(value))
	assert.Equal(t, list, scanned)

	// A nil column scans to an empty list, never a nil slice surprise.
	var fromNil StringList
	require.NoError(t, fromNil.Scan(nil))
	assert.Equal(t, StringList{}, fromNil)
}

func TestAttachmentListScanValue(t *testing.T) {
	list := AttachmentList{{
		ID:          "att-1",
		FileName:    "report.pdf",
		FileSize:    2048,
		ContentType: "application/pdf",
		BlobID:      "blob-1",
		UploadedAt:  "2024-01-01T00:00:00Z",
	}}

	value, err := list.Value()
	require.NoError(t, err)

	var scanned AttachmentList
	require.NoError(t, scanned.Scan(string(value.([]byte))))
	assert.Equal(t, list, scanned)
}
