package system

import (
	"context"
	"time"

	"go-crm-funnel/internal/config"
	"go-crm-funnel/internal/database"
	"go-crm-funnel/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type DebugController struct {
	db     *database.MongodbDB
	config *config.Config
}

func NewDebugController(db *database.MongodbDB, cfg *config.Config) *DebugController {
	return &DebugController{db: db, config: cfg}
}

// Health reports liveness and, when MongoDB is the store, its reachability.
// @Summary Health check
// @Description Report liveness and store reachability
// @Tags System
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]string
// @Router /api/health [get]
func (c *DebugController) Health(ctx *fiber.Ctx) error {
	store := fiber.Map{"driver": c.config.StoreDriver, "status": "ok"}

	if c.db.Enabled() {
		pingCtx, cancel := context.WithTimeout(ctx.UserContext(), 2*time.Second)
		defer cancel()
		if err := c.db.DB.Client().Ping(pingCtx, nil); err != nil {
			store["status"] = "unreachable"
			return ctx.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "degraded",
				"store":  store,
			})
		}
	}

	return ctx.JSON(fiber.Map{
		"status":      "ok",
		"app_id":      c.config.AppId,
		"environment": c.config.Environment,
		"store":       store,
	})
}

// GetCurrentUser echoes the validated token claims.
// @Summary Current user
// @Description Echo the validated token claims
// @Tags System
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]string
// @Router /api/debug/me [get]
func (c *DebugController) GetCurrentUser(ctx *fiber.Ctx) error {
	claims, ok := middleware.ClaimsFrom(ctx)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	return ctx.JSON(fiber.Map{
		"user_id": claims.UserID,
		"role":    claims.Role,
		"message": "This is your current JWT token data",
	})
}
