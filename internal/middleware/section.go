package middleware

import (
	"github.com/gofiber/fiber/v2"
)

// SectionGate is the part of the visibility gate the router needs.
type SectionGate interface {
	CanAccess(role string, section string) bool
}

// RequireSection rejects callers whose role may not reach section. It must
// run after AuthMiddleware.
func RequireSection(gate SectionGate, section string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := ClaimsFrom(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Unauthorized",
			})
		}

		if !gate.CanAccess(claims.Role, section) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Forbidden: section not available for role",
			})
		}

		return c.Next()
	}
}
