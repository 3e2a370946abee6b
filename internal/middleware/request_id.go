package middleware

import (
	"go-crm-funnel/internal/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

// RequestContext copies the id assigned by fiber's requestid middleware into
// the user context so service logs can carry it. It must run after
// requestid.New().
func RequestContext() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if id, ok := c.Locals(requestid.ConfigDefault.ContextKey).(string); ok && id != "" {
			c.SetUserContext(logger.ContextWithRequestID(c.UserContext(), id))
		}
		return c.Next()
	}
}
