package ticket

import (
	"go-crm-funnel/internal/config"
	"go-crm-funnel/internal/features/visibility"
	"go-crm-funnel/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type TicketApi struct {
	controller *TicketController
	config     *config.Config
}

func NewTicketApi(controller *TicketController, config *config.Config) *TicketApi {
	return &TicketApi{
		controller: controller,
		config:     config,
	}
}

func (h *TicketApi) Setup(app *fiber.App) {
	tickets := app.Group("/api/tickets",
		middleware.AuthMiddleware(h.config.SkipAuth, h.config.DevRole),
		middleware.RequireSection(h.controller.Gate, visibility.SectionTickets),
	)

	tickets.Get("/", h.controller.ListTickets)
	tickets.Post("/", h.controller.CreateTicket)
	tickets.Get("/overdue", h.controller.GetOverdueTickets)
	tickets.Get("/:id", h.controller.GetTicket)
	tickets.Patch("/:id/status", h.controller.UpdateStatus)
	tickets.Get("/:id/sla", h.controller.GetSLAStatus)
}
