package policy

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"taskhub/domain/models"
)

func newTask(ownerID uuid.UUID, assignees ...uuid.UUID) *models.Task {
	ids := make(models.StringList, 0, len(assignees))
	for _, id := range assignees {
		ids = append(ids, id.String())
	}
	return &models.Task{
		ID:              uuid.New(),
		Title:           "test task",
		OwnerID:         ownerID,
		AssignedUserIDs: ids,
	}
}

func TestCanReadTask(t *testing.T) {
	// Every combination of role, ownership and assignment. Access holds
	// unless the caller is a plain user with no relation to the task.
	tests := []struct {
		name       string
		role       string
		isOwner    bool
		isAssigned bool
		want       bool
	}{
		{"user unrelated", models.RoleUser, false, false, false},
		{"user assigned", models.RoleUser, false, true, true},
		{"user owner", models.RoleUser, true, false, true},
		{"user owner and assigned", models.RoleUser, true, true, true},
		{"admin unrelated", models.RoleAdmin, false, false, true},
		{"admin assigned", models.RoleAdmin, false, true, true},
		{"admin owner", models.RoleAdmin, true, false, true},
		{"admin owner and assigned", models.RoleAdmin, true, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Principal{ID: uuid.New(), Role: tt.role}
			other := uuid.New()

			ownerID := other
			if tt.isOwner {
				ownerID = p.ID
			}
			assignees := []uuid.UUID{uuid.New()}
			if tt.isAssigned {
				assignees = append(assignees, p.ID)
			}

			assert.Equal(t, tt.want, CanReadTask(p, newTask(ownerID, assignees...)))
		})
	}
}

func TestCanListAllTasks(t *testing.T) {
	assert.True(t, CanListAllTasks(Principal{ID: uuid.New(), Role: models.RoleAdmin}))
	assert.False(t, CanListAllTasks(Principal{ID: uuid.New(), Role: models.RoleUser}))
}

func TestCanFullyUpdateTask(t *testing.T) {
	assert.True(t, CanFullyUpdateTask(Principal{ID: uuid.New(), Role: models.RoleAdmin}))
	assert.False(t, CanFullyUpdateTask(Principal{ID: uuid.New(), Role: models.RoleUser}))
}

func TestCanUpdateTaskStatus(t *testing.T) {
	owner := uuid.New()
	assignee := uuid.New()
	stranger := uuid.New()
	task := newTask(owner, assignee)

	assert.True(t, CanUpdateTaskStatus(Principal{ID: owner, Role: models.RoleUser}, task))
	assert.True(t, CanUpdateTaskStatus(Principal{ID: assignee, Role: models.RoleUser}, task))
	assert.False(t, CanUpdateTaskStatus(Principal{ID: stranger, Role: models.RoleUser}, task))

	// Admins go through the full-update path, never the restricted one,
	// even when they own or are assigned to the task.
	assert.False(t, CanUpdateTaskStatus(Principal{ID: owner, Role: models.RoleAdmin}, task))
	assert.False(t, CanUpdateTaskStatus(Principal{ID: assignee, Role: models.RoleAdmin}, task))
}

func TestCanDeleteTask(t *testing.T) {
	owner := uuid.New()
	assignee := uuid.New()
	stranger := uuid.New()
	task := newTask(owner, assignee)

	assert.True(t, CanDeleteTask(Principal{ID: stranger, Role: models.RoleAdmin}, task))
	assert.True(t, CanDeleteTask(Principal{ID: owner, Role: models.RoleUser}, task))
	// Assignment alone does not grant deletion.
	assert.False(t, CanDeleteTask(Principal{ID: assignee, Role: models.RoleUser}, task))
	assert.False(t, CanDeleteTask(Principal{ID: stranger, Role: models.RoleUser}, task))
}

func TestCanManageAttachments(t *testing.T) {
	owner := uuid.New()
	assignee := uuid.New()
	stranger := uuid.New()
	task := newTask(owner, assignee)

	assert.True(t, CanManageAttachments(Principal{ID: stranger, Role: models.RoleAdmin}, task))
	assert.True(t, CanManageAttachments(Principal{ID: owner, Role: models.RoleUser}, task))
	assert.False(t, CanManageAttachments(Principal{ID: assignee, Role: models.RoleUser}, task))
	assert.False(t, CanManageAttachments(Principal{ID: stranger, Role: models.RoleUser}, task))
}

func TestCanDownloadAttachment(t *testing.T) {
	owner := uuid.New()
	assignee := uuid.New()
	stranger := uuid.New()
	task := newTask(owner, assignee)

	// Download is wider than manage: assignees may read payloads they
	// cannot add or remove.
	assert.True(t, CanDownloadAttachment(Principal{ID: assignee, Role: models.RoleUser}, task))
	assert.True(t, CanDownloadAttachment(Principal{ID: owner, Role: models.RoleUser}, task))
	assert.True(t, CanDownloadAttachment(Principal{ID: stranger, Role: models.RoleAdmin}, task))
	assert.False(t, CanDownloadAttachment(Principal{ID: stranger, Role: models.RoleUser}, task))
}

func TestCanDeleteUser(t *testing.T) {
	admin := Principal{ID: uuid.New(), Role: models.RoleAdmin}
	user := Principal{ID: uuid.New(), Role: models.RoleUser}
	target := uuid.New()

	assert.True(t, CanDeleteUser(admin, target))
	assert.False(t, CanDeleteUser(user, target))
	// Exact id match blocks self-deletion regardless of role.
	assert.False(t, CanDeleteUser(admin, admin.ID))
	assert.False(t, CanDeleteUser(user, user.ID))
}

func TestCanManageUsers(t *testing.T) {
	assert.True(t, CanManageUsers(Principal{ID: uuid.New(), Role: models.RoleAdmin}))
	assert.False(t, CanManageUsers(Principal{ID: uuid.New(), Role: models.RoleUser}))
}
