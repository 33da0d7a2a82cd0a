package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"exelix/internal/service/auth"
)

const AdminClaimsContextKey = "admin"

func AdminRequired(authService auth.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerOrCookie(c, AdminCookie)
		if token == "" {
			return NewAPIError(fiber.StatusUnauthorized, "Unauthorized", "")
		}

		claims, err := authService.ValidateAdminToken(token)
		if errors.Is(err, auth.ErrForbidden) {
			return NewAPIError(fiber.StatusForbidden, "Forbidden", "")
		}
		if err != nil {
			return NewAPIError(fiber.StatusUnauthorized, "Unauthorized", "")
		}

		c.Locals(AdminClaimsContextKey, claims)
		return c.Next()
	}
}
