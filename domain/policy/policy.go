// Package policy holds the access-control decisions for tasks and users.
// Every mutation path goes through these functions; handlers and services
// never re-derive role logic on their own.
package policy

import (
	"github.com/google/uuid"

	"taskhub/domain/models"
)

// Principal is the resolved caller identity: a verified user id plus role.
type Principal struct {
	ID   uuid.UUID
	Role string
}

func (p Principal) IsAdmin() bool {
	return p.Role == models.RoleAdmin
}

// CanReadTask allows admins, the owner, and assigned users.
func CanReadTask(p Principal, task *models.Task) bool {
	if p.IsAdmin() {
		return true
	}
	return task.IsOwner(p.ID) || task.IsAssigned(p.ID)
}

// CanListAllTasks decides query scope: admins see everything, everyone else
// is restricted to owned-or-assigned tasks.
func CanListAllTasks(p Principal) bool {
	return p.IsAdmin()
}

// CanFullyUpdateTask allows arbitrary field changes. Admin only.
func CanFullyUpdateTask(p Principal) bool {
	return p.IsAdmin()
}

// CanUpdateTaskStatus allows owners and assigned users to change the status
// field and nothing else. Admins take the full-update path instead.
func CanUpdateTaskStatus(p Principal, task *models.Task) bool {
	if p.IsAdmin() {
		return false
	}
	return task.IsOwner(p.ID) || task.IsAssigned(p.ID)
}

// CanDeleteTask allows admins and the owner. Assignment alone is not enough.
func CanDeleteTask(p Principal, task *models.Task) bool {
	return p.IsAdmin() || task.IsOwner(p.ID)
}

// CanManageAttachments gates attachment add and delete: same rule as task
// deletion. Downloading is covered by CanDownloadAttachment.
func CanManageAttachments(p Principal, task *models.Task) bool {
	return p.IsAdmin() || task.IsOwner(p.ID)
}

// CanDownloadAttachment additionally admits assigned users.
func CanDownloadAttachment(p Principal, task *models.Task) bool {
	return CanManageAttachments(p, task) || task.IsAssigned(p.ID)
}

// CanDeleteUser is admin only, and never the admin's own account. The
// self-delete check is an exact id match, independent of role.
func CanDeleteUser(p Principal, targetID uuid.UUID) bool {
	if !p.IsAdmin() {
		return false
	}
	return p.ID != targetID
}

// CanManageUsers gates the admin user listing and updates.
func CanManageUsers(p Principal) bool {
	return p.IsAdmin()
}
