package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"exelix/internal/domain"
	"exelix/internal/service/auth"
)

const (
	OwnerContextKey   = "owner"
	OwnerIDContextKey = "owner_id"

	OwnerCookie = "token"
	AdminCookie = "adminToken"
)

// bearerOrCookie prefers the session cookie and falls back to an Authorization header.
func bearerOrCookie(c *fiber.Ctx, cookie string) string {
	if token := c.Cookies(cookie); token != "" {
		return token
	}
	header := c.Get(fiber.HeaderAuthorization)
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

func resolveOwner(c *fiber.Ctx, authService auth.Service) *domain.Owner {
	token := bearerOrCookie(c, OwnerCookie)
	if token == "" {
		return nil
	}

	claims, err := authService.ValidateOwnerToken(token)
	if err != nil {
		return nil
	}

	owner, err := authService.GetOwner(c.Context(), claims.OwnerID)
	if err != nil || owner == nil {
		return nil
	}
	return owner
}

func OwnerRequired(authService auth.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		owner := resolveOwner(c, authService)
		if owner == nil {
			return NewAPIError(fiber.StatusUnauthorized, "Unauthorized", "")
		}

		c.Locals(OwnerContextKey, owner)
		c.Locals(OwnerIDContextKey, owner.ID)
		return c.Next()
	}
}

// OptionalOwner attaches the owner when a valid session is present and never rejects.
func OptionalOwner(authService auth.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if owner := resolveOwner(c, authService); owner != nil {
			c.Locals(OwnerContextKey, owner)
			c.Locals(OwnerIDContextKey, owner.ID)
		}
		return c.Next()
	}
}

func GetCurrentOwner(c *fiber.Ctx) *domain.Owner {
	owner, ok := c.Locals(OwnerContextKey).(*domain.Owner)
	if !ok {
		return nil
	}
	return owner
}

func GetCurrentOwnerID(c *fiber.Ctx) uuid.UUID {
	ownerID, ok := c.Locals(OwnerIDContextKey).(uuid.UUID)
	if !ok {
		return uuid.Nil
	}
	return ownerID
}
