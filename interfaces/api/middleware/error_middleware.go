package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"taskhub/pkg/logger"
	"taskhub/pkg/utils"
)

// ErrorHandler is the fiber-level fallback for errors that escape the
// handlers, including body-limit rejections.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		errCode := "INTERNAL_ERROR"
		message := "Internal server error"

		var e *fiber.Error
		if errors.As(err, &e) {
			code = e.Code
			message = e.Message
			switch code {
			case fiber.StatusBadRequest:
				errCode = "BAD_REQUEST"
			case fiber.StatusUnauthorized:
				errCode = "UNAUTHENTICATED"
			case fiber.StatusForbidden:
				errCode = "FORBIDDEN"
			case fiber.StatusNotFound:
				errCode = "NOT_FOUND"
			case fiber.StatusConflict:
				errCode = "CONFLICT"
			case fiber.StatusRequestEntityTooLarge:
				errCode = "FILE_TOO_LARGE"
			}
		}

		// Client errors (unknown routes, oversized bodies) stay at Warn;
		// only server-side failures log at Error.
		if code >= fiber.StatusInternalServerError {
			logger.ErrorContext(c.UserContext(), "Unhandled request error", "error", err)
		} else {
			logger.WarnContext(c.UserContext(), "Request rejected", "status", code, "error", err)
		}

		return utils.ErrorResponse(c, code, errCode, message, nil)
	}
}
