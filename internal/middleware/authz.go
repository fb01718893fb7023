package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/campushub/integrity-api/internal/models"
	"github.com/campushub/integrity-api/internal/utils"
)

// RequireAction gates a route on the caller's role being able to perform the
// action at all. Ownership is not known at the middleware layer, so the check
// passes when the role could perform the action on a resource it owns;
// services re-evaluate Role.Can with the real ownership.
func RequireAction(action models.Action) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role := RoleFromContext(c)
		if !role.Valid() {
			return utils.SendError(c, fiber.StatusForbidden, "unknown role")
		}
		if !role.Can(action, true) {
			return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
		}
		return c.Next()
	}
}

// RoleFromContext reads the caller's role from request locals.
func RoleFromContext(c *fiber.Ctx) models.Role {
	if value := c.Locals("user_role"); value != nil {
		if role, ok := value.(string); ok {
			return models.Role(strings.ToLower(strings.TrimSpace(role)))
		}
		if role, ok := value.(models.Role); ok {
			return role
		}
	}
	return ""
}

// UserIDFromContext reads the caller's identity from request locals.
func UserIDFromContext(c *fiber.Ctx) uint {
	if value := c.Locals("user_id"); value != nil {
		switch id := value.(type) {
		case uint:
			return id
		case int:
			if id < 0 {
				return 0
			}
			return uint(id)
		case float64:
			if id < 0 {
				return 0
			}
			return uint(id)
		}
	}
	return 0
}
