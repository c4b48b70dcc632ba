package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"taskhub/domain/dto"
	"taskhub/domain/services"
	"taskhub/interfaces/api/middleware"
	"taskhub/pkg/logger"
	"taskhub/pkg/utils"
)

type TaskHandler struct {
	taskService services.TaskService
}

func NewTaskHandler(taskService services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

func (h *TaskHandler) CreateTask(c *fiber.Ctx) error {
	ctx := c.UserContext()

	principal, err := middleware.GetPrincipal(c)
	if err != nil {
		return utils.UnauthorizedResponse(c, "")
	}

	var req dto.CreateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		logger.WarnContext(ctx, "Invalid request body", "error", err)
		return utils.BadRequestResponse(c, "Invalid request body")
	}

	if err := utils.ValidateStruct(&req); err != nil {
		return utils.ValidationErrorResponse(c, utils.GetValidationErrors(err))
	}

	task, err := h.taskService.CreateTask(ctx, principal, &req)
	if err != nil {
		logger.WarnContext(ctx, "Task creation failed", "user_id", principal.ID, "error", err)
		return utils.AppErrorResponse(c, err)
	}

	return utils.CreatedResponse(c, task)
}

func (h *TaskHandler) ListTasks(c *fiber.Ctx) error {
	ctx := c.UserContext()

	principal, err := middleware.GetPrincipal(c)
	if err != nil {
		return utils.UnauthorizedResponse(c, "")
	}

	var filter dto.TaskFilterRequest
	if err := c.QueryParser(&filter); err != nil {
		return utils.BadRequestResponse(c, "Invalid query parameters")
	}

	if err := utils.ValidateStruct(&filter); err != nil {
		return utils.ValidationErrorResponse(c, utils.GetValidationErrors(err))
	}

	tasks, err := h.taskService.ListTasks(ctx, principal, &filter)
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}

	return utils.SuccessResponse(c, tasks)
}

func (h *TaskHandler) GetTask(c *fiber.Ctx) error {
	ctx := c.UserContext()

	principal, err := middleware.GetPrincipal(c)
	if err != nil {
		return utils.UnauthorizedResponse(c, "")
	}

	taskID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.BadRequestResponse(c, "Invalid task ID")
	}

	task, err := h.taskService.GetTask(ctx, principal, taskID)
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}

	return utils.SuccessResponse(c, task)
}

func (h *TaskHandler) UpdateTask(c *fiber.Ctx) error {
	ctx := c.UserContext()

	principal, err := middleware.GetPrincipal(c)
	if err != nil {
		return utils.UnauthorizedResponse(c, "")
	}

	taskID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.BadRequestResponse(c, "Invalid task ID")
	}

	var req dto.UpdateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		logger.WarnContext(ctx, "Invalid request body", "error", err)
		return utils.BadRequestResponse(c, "Invalid request body")
	}

	if err := utils.ValidateStruct(&req); err != nil {
		return utils.ValidationErrorResponse(c, utils.GetValidationErrors(err))
	}

	task, err := h.taskService.UpdateTask(ctx, principal, taskID, &req)
	if err != nil {
		logger.WarnContext(ctx, "Task update failed", "task_id", taskID, "error", err)
		return utils.AppErrorResponse(c, err)
	}

	return utils.SuccessResponse(c, task)
}

func (h *TaskHandler) DeleteTask(c *fiber.Ctx) error {
	ctx := c.UserContext()

	principal, err := middleware.GetPrincipal(c)
	if err != nil {
		return utils.UnauthorizedResponse(c, "")
	}

	taskID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.BadRequestResponse(c, "Invalid task ID")
	}

	if err := h.taskService.DeleteTask(ctx, principal, taskID); err != nil {
		logger.WarnContext(ctx, "Task deletion failed", "task_id", taskID, "error", err)
		return utils.AppErrorResponse(c, err)
	}

	return utils.NoContentResponse(c)
}

func (h *TaskHandler) UploadAttachment(c *fiber.Ctx) error {
	ctx := c.UserContext()

	principal, err := middleware.GetPrincipal(c)
	if err != nil {
		return utils.UnauthorizedResponse(c, "")
	}

	taskID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.BadRequestResponse(c, "Invalid task ID")
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return utils.BadRequestResponse(c, "Missing file in form data")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return utils.BadRequestResponse(c, "Cannot read uploaded file")
	}
	defer file.Close()

	upload := &dto.AttachmentUpload{
		Payload:     file,
		Size:        fileHeader.Size,
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
	}

	attachment, err := h.taskService.AddAttachment(ctx, principal, taskID, upload)
	if err != nil {
		logger.WarnContext(ctx, "Attachment upload failed", "task_id", taskID, "error", err)
		return utils.AppErrorResponse(c, err)
	}

	return utils.CreatedResponse(c, attachment)
}

func (h *TaskHandler) DownloadAttachment(c *fiber.Ctx) error {
	ctx := c.UserContext()

	principal, err := middleware.GetPrincipal(c)
	if err != nil {
		return utils.UnauthorizedResponse(c, "")
	}

	taskID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.BadRequestResponse(c, "Invalid task ID")
	}
	attachmentID := c.Params("attachmentId")

	payload, attachment, err := h.taskService.DownloadAttachment(ctx, principal, taskID, attachmentID)
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}

	c.Set(fiber.HeaderContentType, attachment.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", attachment.FileName))

	return c.SendStream(payload, int(attachment.FileSize))
}

func (h *TaskHandler) DeleteAttachment(c *fiber.Ctx) error {
	ctx := c.UserContext()

	principal, err := middleware.GetPrincipal(c)
	if err != nil {
		return utils.UnauthorizedResponse(c, "")
	}

	taskID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.BadRequestResponse(c, "Invalid task ID")
	}
	attachmentID := c.Params("attachmentId")

	if err := h.taskService.DeleteAttachment(ctx, principal, taskID, attachmentID); err != nil {
		logger.WarnContext(ctx, "Attachment deletion failed",
			"task_id", taskID, "attachment_id", attachmentID, "error", err)
		return utils.AppErrorResponse(c, err)
	}

	return utils.NoContentResponse(c)
}
