package funnel

import (
	"go-crm-funnel/internal/config"
	"go-crm-funnel/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type FunnelApi struct {
	controller *FunnelController
	config     *config.Config
}

func NewFunnelApi(controller *FunnelController, config *config.Config) *FunnelApi {
	return &FunnelApi{
		controller: controller,
		config:     config,
	}
}

func (h *FunnelApi) Setup(app *fiber.App) {
	auth := middleware.AuthMiddleware(h.config.SkipAuth, h.config.DevRole)

	app.Get("/api/stages/:funnelType", auth, h.controller.ListStages)

	for _, ft := range []FunnelType{FunnelLead, FunnelDeal} {
		section := ft.Module()
		group := app.Group("/api/"+section, auth, middleware.RequireSection(h.controller.Gate, section))

		group.Get("/", h.controller.ListRecords(ft))
		group.Post("/", h.controller.CreateRecord(ft))
		group.Get("/:id", h.controller.GetRecord(ft))
		group.Patch("/:id/stage", h.controller.ChangeStage(ft))
	}
}
