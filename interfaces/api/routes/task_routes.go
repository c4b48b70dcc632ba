package routes

import (
	"github.com/gofiber/fiber/v2"

	"taskhub/interfaces/api/handlers"
	"taskhub/interfaces/api/middleware"
)

// SetupTaskRoutes wires the task and attachment endpoints. All routes
// require authentication; per-task access is decided in the service layer
// where the task's owner and assignees are known.
func SetupTaskRoutes(api fiber.Router, h *handlers.Handlers, s *handlers.Services) {
	tasks := api.Group("/tasks")
	tasks.Use(middleware.Protected(s.JWTSecret, s.PrincipalResolver))

	tasks.Post("/", h.TaskHandler.CreateTask)
	tasks.Get("/", h.TaskHandler.ListTasks)
	tasks.Get("/:id", h.TaskHandler.GetTask)
	tasks.Put("/:id", h.TaskHandler.UpdateTask)
	tasks.Delete("/:id", h.TaskHandler.DeleteTask)

	tasks.Post("/:id/attachments", h.TaskHandler.UploadAttachment)
	tasks.Get("/:id/attachments/:attachmentId", h.TaskHandler.DownloadAttachment)
	tasks.Delete("/:id/attachments/:attachmentId", h.TaskHandler.DeleteAttachment)
}
