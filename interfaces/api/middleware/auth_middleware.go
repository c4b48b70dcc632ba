package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"taskhub/domain/policy"
	"taskhub/domain/services"
	"taskhub/pkg/apperr"
	"taskhub/pkg/utils"
)

const principalKey = "principal"

// Protected validates the bearer token and resolves it against a live user
// record. A deleted account with a still-valid token fails here with 401,
// before any permission check can run.
func Protected(jwtSecret string, resolver services.PrincipalResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return utils.UnauthorizedResponse(c, "Missing authorization header")
		}

		token := utils.ExtractTokenFromHeader(authHeader)
		if token == "" {
			return utils.UnauthorizedResponse(c, "Invalid authorization header format")
		}

		identity, err := utils.ValidateToken(token, jwtSecret)
		if err != nil {
			switch {
			case errors.Is(err, utils.ErrExpiredToken):
				return utils.UnauthorizedResponse(c, "Token has expired")
			default:
				return utils.UnauthorizedResponse(c, "Invalid token")
			}
		}

		principal, err := resolver.Resolve(c.UserContext(), identity.Subject)
		if err != nil {
			if apperr.IsKind(err, apperr.KindUnauthenticated) {
				return utils.UnauthorizedResponse(c, "Account no longer exists")
			}
			return utils.AppErrorResponse(c, err)
		}

		c.Locals(principalKey, principal)
		return c.Next()
	}
}

// AdminOnly rejects non-admin principals. Must run after Protected.
func AdminOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, err := GetPrincipal(c)
		if err != nil {
			return utils.UnauthorizedResponse(c, "User not authenticated")
		}
		if !principal.IsAdmin() {
			return utils.ForbiddenResponse(c, "Admin access required")
		}
		return c.Next()
	}
}

// GetPrincipal pulls the resolved principal out of the request locals.
func GetPrincipal(c *fiber.Ctx) (policy.Principal, error) {
	principal, ok := c.Locals(principalKey).(policy.Principal)
	if !ok {
		return policy.Principal{}, errors.New("no principal in request context")
	}
	return principal, nil
}
