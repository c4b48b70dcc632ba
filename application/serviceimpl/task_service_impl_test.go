package serviceimpl

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskhub/domain/dto"
	"taskhub/domain/models"
	"taskhub/domain/policy"
	"taskhub/domain/repositories"
	"taskhub/domain/services"
	"taskhub/infrastructure/events"
	"taskhub/infrastructure/memory"
	"taskhub/pkg/apperr"
)

const testMaxUpload = 2048

type taskTestEnv struct {
	tasks   *memory.TaskRepository
	users   *memory.UserRepository
	blobs   *memory.BlobStore
	service services.TaskService
}

func newTaskTestEnv(t *testing.T) *taskTestEnv {
	t.Helper()
	tasks := memory.NewTaskRepository()
	users := memory.NewUserRepository()
	blobs := memory.NewBlobStore()
	service := NewTaskService(tasks, users, blobs, events.NewNoopPublisher(), testMaxUpload)
	return &taskTestEnv{tasks: tasks, users: users, blobs: blobs, service: service}
}

func (e *taskTestEnv) addUser(t *testing.T, name, role string) policy.Principal {
	t.Helper()
	user := &models.User{
		Email: name + "@example.com",
		Name:  name,
		Role:  role,
	}
	require.NoError(t, e.users.Create(context.Background(), user))
	return policy.Principal{ID: user.ID, Role: user.Role}
}

func (e *taskTestEnv) createTask(t *testing.T, p policy.Principal, req *dto.CreateTaskRequest) *dto.TaskResponse {
	t.Helper()
	task, err := e.service.CreateTask(context.Background(), p, req)
	require.NoError(t, err)
	return task
}

func TestCreateTaskDefaultsAndOwnerAssignment(t *testing.T) {
	env := newTaskTestEnv(t)
	owner := env.addUser(t, "owner", models.RoleUser)
	assignee := env.addUser(t, "assignee", models.RoleUser)

	task := env.createTask(t, owner, &dto.CreateTaskRequest{
		Title:           "write report",
		AssignedUserIDs: []string{assignee.ID.String(), assignee.ID.String()},
	})

	assert.Equal(t, models.StatusTodo, task.Status)
	assert.Equal(t, models.PriorityMedium, task.Priority)
	assert.Equal(t, owner.ID, task.OwnerID)

	// The owner is unioned into the assignee list; duplicates collapse.
	stored, err := env.tasks.GetByID(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StringList{assignee.ID.String(), owner.ID.String()}, stored.AssignedUserIDs)
}

func TestCreateTaskRequiresTitle(t *testing.T) {
	env := newTaskTestEnv(t)
	owner := env.addUser(t, "owner", models.RoleUser)
	ctx := context.Background()

	// The title rule holds at the service layer, not just in the DTO
	// validation tags.
	for _, title := range []string{"", "   "} {
		_, err := env.service.CreateTask(ctx, owner, &dto.CreateTaskRequest{Title: title})
		require.Error(t, err)
		assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	}

	stored, err := env.tasks.Query(ctx, repositories.TaskFilter{})
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestCreateTaskOwnerAlreadyAssigned(t *testing.T) {
	env := newTaskTestEnv(t)
	owner := env.addUser(t, "owner", models.RoleUser)

	task := env.createTask(t, owner, &dto.CreateTaskRequest{
		Title:           "solo task",
		AssignedUserIDs: []string{owner.ID.String()},
	})

	stored, err := env.tasks.GetByID(context.Background(), task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StringList{owner.ID.String()}, stored.AssignedUserIDs)
}

func TestListTasksScoping(t *testing.T) {
	env := newTaskTestEnv(t)
	alice := env.addUser(t, "alice", models.RoleUser)
	bob := env.addUser(t, "bob", models.RoleUser)
	admin := env.addUser(t, "root", models.RoleAdmin)

	env.createTask(t, alice, &dto.CreateTaskRequest{Title: "alice task"})
	env.createTask(t, bob, &dto.CreateTaskRequest{Title: "bob task"})
	env.createTask(t, bob, &dto.CreateTaskRequest{
		Title:           "shared task",
		AssignedUserIDs: []string{alice.ID.String()},
	})

	ctx := context.Background()

	aliceTasks, err := env.service.ListTasks(ctx, alice, &dto.TaskFilterRequest{})
	require.NoError(t, err)
	assert.Len(t, aliceTasks, 2) // owned + assigned

	bobTasks, err := env.service.ListTasks(ctx, bob, &dto.TaskFilterRequest{})
	require.NoError(t, err)
	assert.Len(t, bobTasks, 2)

	adminTasks, err := env.service.ListTasks(ctx, admin, &dto.TaskFilterRequest{})
	require.NoError(t, err)
	assert.Len(t, adminTasks, 3)
}

func TestListTasksFilterComposition(t *testing.T) {
	env := newTaskTestEnv(t)
	owner := env.addUser(t, "owner", models.RoleUser)

	env.createTask(t, owner, &dto.CreateTaskRequest{
		Title:    "deploy the Service",
		Status:   models.StatusInProgress,
		Priority: models.PriorityHigh,
		Tags:     []string{"ops"},
	})
	env.createTask(t, owner, &dto.CreateTaskRequest{
		Title:    "deploy docs",
		Priority: models.PriorityHigh,
	})

	ctx := context.Background()

	// All filters combine with AND.
	matched, err := env.service.ListTasks(ctx, owner, &dto.TaskFilterRequest{
		Status:   models.StatusInProgress,
		Priority: models.PriorityHigh,
		Tag:      "ops",
		Search:   "service",
	})
	require.NoError(t, err)
	require.Len(t, matched, 1)
	assert.Equal(t, "deploy the Service", matched[0].Title)

	// Search is a case-insensitive substring over title or description.
	matched, err = env.service.ListTasks(ctx, owner, &dto.TaskFilterRequest{Search: "DEPLOY"})
	require.NoError(t, err)
	assert.Len(t, matched, 2)
}

func TestGetTaskAccess(t *testing.T) {
	env := newTaskTestEnv(t)
	owner := env.addUser(t, "owner", models.RoleUser)
	stranger := env.addUser(t, "stranger", models.RoleUser)
	admin := env.addUser(t, "root", models.RoleAdmin)

	task := env.createTask(t, owner, &dto.CreateTaskRequest{Title: "private"})
	ctx := context.Background()

	_, err := env.service.GetTask(ctx, stranger, task.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))

	_, err = env.service.GetTask(ctx, admin, task.ID)
	assert.NoError(t, err)

	_, err = env.service.GetTask(ctx, owner, uuid.New())
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestUpdateTaskStatusOnlyPath(t *testing.T) {
	env := newTaskTestEnv(t)
	owner := env.addUser(t, "owner", models.RoleUser)
	assignee := env.addUser(t, "assignee", models.RoleUser)
	stranger := env.addUser(t, "stranger", models.RoleUser)

	task := env.createTask(t, owner, &dto.CreateTaskRequest{
		Title:           "review PR",
		AssignedUserIDs: []string{assignee.ID.String()},
	})
	ctx := context.Background()

	status := models.StatusDone
	updated, err := env.service.UpdateTask(ctx, assignee, task.ID, &dto.UpdateTaskRequest{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, models.StatusDone, updated.Status)

	// Anything beyond status on the restricted path is rejected, even when
	// a status is also provided.
	title := "sneaky rename"
	_, err = env.service.UpdateTask(ctx, owner, task.ID, &dto.UpdateTaskRequest{
		Status: &status,
		Title:  &title,
	})
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	// Status is mandatory for a restricted update.
	_, err = env.service.UpdateTask(ctx, owner, task.ID, &dto.UpdateTaskRequest{})
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	// Confirm the rejected attempts changed nothing.
	stored, err := env.tasks.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "review PR", stored.Title)

	_, err = env.service.UpdateTask(ctx, stranger, task.ID, &dto.UpdateTaskRequest{Status: &status})
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))
}

func TestUpdateTaskAdminFullUpdate(t *testing.T) {
	env := newTaskTestEnv(t)
	owner := env.addUser(t, "owner", models.RoleUser)
	admin := env.addUser(t, "root", models.RoleAdmin)

	task := env.createTask(t, owner, &dto.CreateTaskRequest{Title: "original"})
	ctx := context.Background()

	title := "renamed"
	priority := models.PriorityHigh
	// Replacing the assignee list wholesale can drop the owner.
	assignees := []string{}
	updated, err := env.service.UpdateTask(ctx, admin, task.ID, &dto.UpdateTaskRequest{
		Title:           &title,
		Priority:        &priority,
		AssignedUserIDs: &assignees,
	})
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Title)
	assert.Equal(t, models.PriorityHigh, updated.Priority)
	assert.Empty(t, updated.AssignedUsers)

	stored, err := env.tasks.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.AssignedUserIDs)
	// Ownership is immutable; the owner keeps owner-level access even after
	// being dropped from the assignees.
	assert.Equal(t, owner.ID, stored.OwnerID)
}

func TestDeleteTaskCascadesBlobs(t *testing.T) {
	env := newTaskTestEnv(t)
	owner := env.addUser(t, "owner", models.RoleUser)
	assignee := env.addUser(t, "assignee", models.RoleUser)

	task := env.createTask(t, owner, &dto.CreateTaskRequest{
		Title:           "with files",
		AssignedUserIDs: []string{assignee.ID.String()},
	})
	ctx := context.Background()

	payload := bytes.Repeat([]byte("x"), 64)
	_, err := env.service.AddAttachment(ctx, owner, task.ID, &dto.AttachmentUpload{
		Payload:  bytes.NewReader(payload),
		Size:     int64(len(payload)),
		FileName: "notes.txt",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, env.blobs.Len())

	// Assignment alone does not grant deletion.
	err = env.service.DeleteTask(ctx, assignee, task.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))

	require.NoError(t, env.service.DeleteTask(ctx, owner, task.ID))
	assert.Equal(t, 0, env.blobs.Len())

	_, err = env.tasks.GetByID(ctx, task.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestDeleteTaskSurvivesMissingBlob(t *testing.T) {
	env := newTaskTestEnv(t)
	owner := env.addUser(t, "owner", models.RoleUser)

	task := env.createTask(t, owner, &dto.CreateTaskRequest{Title: "with files"})
	ctx := context.Background()

	attachment, err := env.service.AddAttachment(ctx, owner, task.ID, &dto.AttachmentUpload{
		Payload:  bytes.NewReader([]byte("data")),
		Size:     4,
		FileName: "gone.txt",
	})
	require.NoError(t, err)

	// Simulate the payload vanishing out from under the record.
	env.blobs.Drop(attachment.BlobID)

	require.NoError(t, env.service.DeleteTask(ctx, owner, task.ID))
}

func TestAddAttachmentSizeChecks(t *testing.T) {
	env := newTaskTestEnv(t)
	owner := env.addUser(t, "owner", models.RoleUser)
	task := env.createTask(t, owner, &dto.CreateTaskRequest{Title: "limits"})
	ctx := context.Background()

	oversized := bytes.Repeat([]byte("x"), testMaxUpload+1)
	_, err := env.service.AddAttachment(ctx, owner, task.ID, &dto.AttachmentUpload{
		Payload:  bytes.NewReader(oversized),
		Size:     int64(len(oversized)),
		FileName: "big.bin",
	})
	// Oversized files get their own kind, distinct from plain validation.
	assert.True(t, apperr.IsKind(err, apperr.KindFileTooLarge))

	_, err = env.service.AddAttachment(ctx, owner, task.ID, &dto.AttachmentUpload{
		Payload:  bytes.NewReader(nil),
		Size:     0,
		FileName: "empty.bin",
	})
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	_, err = env.service.AddAttachment(ctx, owner, task.ID, &dto.AttachmentUpload{
		Payload: bytes.NewReader([]byte("x")),
		Size:    1,
	})
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	// Nothing was persisted by the failed attempts.
	assert.Equal(t, 0, env.blobs.Len())
	stored, err := env.tasks.GetByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.Attachments)
}

func TestAttachmentRoundTrip(t *testing.T) {
	env := newTaskTestEnv(t)
	owner := env.addUser(t, "owner", models.RoleUser)
	assignee := env.addUser(t, "assignee", models.RoleUser)

	task := env.createTask(t, owner, &dto.CreateTaskRequest{
		Title:           "report",
		AssignedUserIDs: []string{assignee.ID.String()},
	})
	ctx := context.Background()

	payload := bytes.Repeat([]byte("a"), 1024)
	attachment, err := env.service.AddAttachment(ctx, owner, task.ID, &dto.AttachmentUpload{
		Payload:     bytes.NewReader(payload),
		Size:        int64(len(payload)),
		FileName:    "a.txt",
		ContentType: "text/plain",
	})
	require.NoError(t, err)
	assert.Equal(t, "a.txt", attachment.FileName)
	assert.Equal(t, int64(1024), attachment.FileSize)
	assert.NotEmpty(t, attachment.BlobID)

	// Assignees can download but not manage.
	stream, meta, err := env.service.DownloadAttachment(ctx, assignee, task.ID, attachment.ID)
	require.NoError(t, err)
	defer stream.Close()

	got, err := io.ReadAll(stream)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
	assert.Equal(t, "a.txt", meta.FileName)
	assert.Equal(t, "text/plain", meta.ContentType)

	err = env.service.DeleteAttachment(ctx, assignee, task.ID, attachment.ID)
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))

	require.NoError(t, env.service.DeleteAttachment(ctx, owner, task.ID, attachment.ID))
	assert.Equal(t, 0, env.blobs.Len())

	_, _, err = env.service.DownloadAttachment(ctx, owner, task.ID, attachment.ID)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
	assert.Contains(t, err.Error(), "attachment not found")
}

func TestDownloadDanglingBlobReference(t *testing.T) {
	env := newTaskTestEnv(t)
	owner := env.addUser(t, "owner", models.RoleUser)
	task := env.createTask(t, owner, &dto.CreateTaskRequest{Title: "dangling"})
	ctx := context.Background()

	attachment, err := env.service.AddAttachment(ctx, owner, task.ID, &dto.AttachmentUpload{
		Payload:  bytes.NewReader([]byte("data")),
		Size:     4,
		FileName: "d.txt",
	})
	require.NoError(t, err)

	env.blobs.Drop(attachment.BlobID)

	// The record still exists, so this is a missing payload, not a missing
	// attachment.
	_, _, err = env.service.DownloadAttachment(ctx, owner, task.ID, attachment.ID)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
	assert.Contains(t, err.Error(), "stored file is missing")
}

func TestAttachmentManagementForbiddenForStrangers(t *testing.T) {
	env := newTaskTestEnv(t)
	owner := env.addUser(t, "owner", models.RoleUser)
	stranger := env.addUser(t, "stranger", models.RoleUser)
	task := env.createTask(t, owner, &dto.CreateTaskRequest{Title: "private"})
	ctx := context.Background()

	_, err := env.service.AddAttachment(ctx, stranger, task.ID, &dto.AttachmentUpload{
		Payload:  bytes.NewReader([]byte("x")),
		Size:     1,
		FileName: "x.txt",
	})
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))

	_, _, err = env.service.DownloadAttachment(ctx, stranger, task.ID, "whatever")
	assert.True(t, apperr.IsKind(err, apperr.KindForbidden))
}
