package routes

import (
	"github.com/gofiber/fiber/v2"

	"taskhub/interfaces/api/handlers"
)

func SetupRoutes(app *fiber.App, h *handlers.Handlers, s *handlers.Services) {
	SetupHealthRoutes(app)

	api := app.Group("/api/v1")

	SetupAuthRoutes(api, h, s)
	SetupTaskRoutes(api, h, s)
	SetupAdminRoutes(api, h, s)
}
