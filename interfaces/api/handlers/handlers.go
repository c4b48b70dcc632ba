package handlers

import (
	"taskhub/domain/services"
)

// Services carries everything the handlers need.
type Services struct {
	AuthService       services.AuthService
	TaskService       services.TaskService
	AdminService      services.AdminService
	PrincipalResolver services.PrincipalResolver
	JWTSecret         string
}

// Handlers aggregates the HTTP handlers.
type Handlers struct {
	AuthHandler  *AuthHandler
	TaskHandler  *TaskHandler
	AdminHandler *AdminHandler
}

func NewHandlers(services *Services) *Handlers {
	return &Handlers{
		AuthHandler:  NewAuthHandler(services.AuthService),
		TaskHandler:  NewTaskHandler(services.TaskService),
		AdminHandler: NewAdminHandler(services.AdminService),
	}
}
