package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"taskhub/domain/dto"
	"taskhub/domain/services"
	"taskhub/interfaces/api/middleware"
	"taskhub/pkg/logger"
	"taskhub/pkg/utils"
)

type AdminHandler struct {
	adminService services.AdminService
}

func NewAdminHandler(adminService services.AdminService) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
	}
}

func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	ctx := c.UserContext()

	principal, err := middleware.GetPrincipal(c)
	if err != nil {
		return utils.UnauthorizedResponse(c, "")
	}

	users, err := h.adminService.ListUsers(ctx, principal)
	if err != nil {
		return utils.AppErrorResponse(c, err)
	}

	return utils.SuccessResponse(c, users)
}

func (h *AdminHandler) UpdateUser(c *fiber.Ctx) error {
	ctx := c.UserContext()

	principal, err := middleware.GetPrincipal(c)
	if err != nil {
		return utils.UnauthorizedResponse(c, "")
	}

	userID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.BadRequestResponse(c, "Invalid user ID")
	}

	var req dto.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		logger.WarnContext(ctx, "Invalid request body", "error", err)
		return utils.BadRequestResponse(c, "Invalid request body")
	}

	if err := utils.ValidateStruct(&req); err != nil {
		return utils.ValidationErrorResponse(c, utils.GetValidationErrors(err))
	}

	user, err := h.adminService.UpdateUser(ctx, principal, userID, &req)
	if err != nil {
		logger.WarnContext(ctx, "User update failed", "user_id", userID, "error", err)
		return utils.AppErrorResponse(c, err)
	}

	return utils.SuccessResponse(c, user)
}

func (h *AdminHandler) DeleteUser(c *fiber.Ctx) error {
	ctx := c.UserContext()

	principal, err := middleware.GetPrincipal(c)
	if err != nil {
		return utils.UnauthorizedResponse(c, "")
	}

	userID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return utils.BadRequestResponse(c, "Invalid user ID")
	}

	if err := h.adminService.DeleteUser(ctx, principal, userID); err != nil {
		logger.WarnContext(ctx, "User deletion failed", "user_id", userID, "error", err)
		return utils.AppErrorResponse(c, err)
	}

	return utils.NoContentResponse(c)
}
