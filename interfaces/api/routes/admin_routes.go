package routes

import (
	"github.com/gofiber/fiber/v2"

	"taskhub/interfaces/api/handlers"
	"taskhub/interfaces/api/middleware"
)

func SetupAdminRoutes(api fiber.Router, h *handlers.Handlers, s *handlers.Services) {
	admin := api.Group("/admin")
	admin.Use(middleware.Protected(s.JWTSecret, s.PrincipalResolver))
	admin.Use(middleware.AdminOnly())

	admin.Get("/users", h.AdminHandler.ListUsers)
	admin.Put("/users/:id", h.AdminHandler.UpdateUser)
	admin.Delete("/users/:id", h.AdminHandler.DeleteUser)
}
