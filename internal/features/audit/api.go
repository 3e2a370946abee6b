package audit

import (
	"go-crm-funnel/internal/config"
	"go-crm-funnel/internal/features/visibility"
	"go-crm-funnel/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type AuditApi struct {
	controller *AuditController
	config     *config.Config
	gate       middleware.SectionGate
}

func NewAuditApi(controller *AuditController, config *config.Config, gate middleware.SectionGate) *AuditApi {
	return &AuditApi{
		controller: controller,
		config:     config,
		gate:       gate,
	}
}

func (h *AuditApi) Setup(app *fiber.App) {
	audit := app.Group("/api/audit-logs", middleware.AuthMiddleware(h.config.SkipAuth, h.config.DevRole))

	audit.Get("/", middleware.RequireSection(h.gate, visibility.SectionAdmin), h.controller.ListLogs)
}
