package system

import (
	"go-crm-funnel/internal/config"
	"go-crm-funnel/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type DebugApi struct {
	controller *DebugController
	config     *config.Config
}

func NewDebugApi(controller *DebugController, cfg *config.Config) *DebugApi {
	return &DebugApi{
		controller: controller,
		config:     cfg,
	}
}

// Setup registers health and debug routes
func (h *DebugApi) Setup(app *fiber.App) {
	app.Get("/api/health", h.controller.Health)

	debug := app.Group("/api/debug", middleware.AuthMiddleware(h.config.SkipAuth, h.config.DevRole))
	debug.Get("/me", h.controller.GetCurrentUser)
}
