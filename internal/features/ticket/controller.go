package ticket

import (
	"context"
	"errors"

	common_models "go-crm-funnel/internal/common/models"
	"go-crm-funnel/internal/features/filter"
	"go-crm-funnel/internal/features/sla"
	"go-crm-funnel/internal/features/visibility"
	"go-crm-funnel/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type TicketController struct {
	TicketService TicketService
	Gate          *visibility.Gate
	Saved         filter.SavedLookup
}

func NewTicketController(ticketService TicketService, gate *visibility.Gate, saved filter.SavedLookup) *TicketController {
	return &TicketController{
		TicketService: ticketService,
		Gate:          gate,
		Saved:         saved,
	}
}

func errorStatus(err error, fallback int) int {
	var degenerate *sla.DegenerateIntervalError
	switch {
	case errors.Is(err, common_models.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, common_models.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, common_models.ErrVersionConflict):
		return fiber.StatusConflict
	case errors.As(err, &degenerate), errors.Is(err, ErrInvalidStatus):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, ErrInvalidTicket), errors.Is(err, ErrInvalidPriority), errors.Is(err, filter.ErrInvalidDate):
		return fiber.StatusBadRequest
	}
	return fallback
}

func fail(c *fiber.Ctx, err error, fallback int) error {
	return c.Status(errorStatus(err, fallback)).JSON(fiber.Map{"error": err.Error()})
}

// scoped narrows the request context to the caller's record scope.
func (ctrl *TicketController) scoped(c *fiber.Ctx) context.Context {
	role := ""
	if claims, ok := middleware.ClaimsFrom(c); ok {
		role = claims.Role
	}
	return ctrl.Gate.ScopedContext(c.UserContext(), role)
}

// CreateTicket opens a ticket; priority defaults to medium.
// @Summary Create a ticket
// @Description Open a ticket with a deadline from its priority
// @Tags Tickets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ticket.CreateTicketRequest true "Ticket"
// @Success 201 {object} ticket.TicketView
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /api/tickets [post]
func (ctrl *TicketController) CreateTicket(c *fiber.Ctx) error {
	var req CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	view, err := ctrl.TicketService.CreateTicket(c.UserContext(), req)
	if err != nil {
		return fail(c, err, fiber.StatusInternalServerError)
	}

	return c.Status(fiber.StatusCreated).JSON(view)
}

// ListTickets filters by q, from, to, status, priority, assigned_to or a
// saved filter_id.
// @Summary List tickets
// @Description Filter tickets by text, date range, status, priority and assignee
// @Tags Tickets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param q query string false "Case-insensitive text search"
// @Param from query string false "Range start (2006-01-02 or RFC3339)"
// @Param to query string false "Range end (2006-01-02 or RFC3339)"
// @Param filter_id query string false "Apply a saved filter instead of inline parameters"
// @Param status query string false "Comma-separated statuses"
// @Param priority query string false "Comma-separated priorities"
// @Param assigned_to query string false "Comma-separated assignees"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /api/tickets [get]
func (ctrl *TicketController) ListTickets(c *fiber.Ctx) error {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	criteria, err := filter.FromRequest(c, ctrl.Saved, "tickets", FacetNames)
	if err != nil {
		return fail(c, err, fiber.StatusBadRequest)
	}
	role, _ := visibility.ParseRole(claims.Role)
	criteria = criteria.WithRoleScope(ctrl.Gate.RecordScopeFor(role))

	tickets, err := ctrl.TicketService.ListTickets(c.UserContext(), criteria)
	if err != nil {
		return fail(c, err, fiber.StatusInternalServerError)
	}

	return c.JSON(fiber.Map{
		"data":  tickets,
		"total": len(tickets),
	})
}

// @Summary Get a ticket
// @Description Get one ticket with its SLA status
// @Tags Tickets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Ticket ID"
// @Success 200 {object} ticket.TicketView
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /api/tickets/{id} [get]
func (ctrl *TicketController) GetTicket(c *fiber.Ctx) error {
	view, err := ctrl.TicketService.GetTicket(ctrl.scoped(c), c.Params("id"))
	if err != nil {
		return fail(c, err, fiber.StatusInternalServerError)
	}
	return c.JSON(view)
}

// @Summary Update ticket status
// @Description Move a ticket to another status
// @Tags Tickets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Ticket ID"
// @Param request body ticket.StatusUpdate true "New status"
// @Success 200 {object} ticket.TicketView
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /api/tickets/{id}/status [patch]
func (ctrl *TicketController) UpdateStatus(c *fiber.Ctx) error {
	var update StatusUpdate
	if err := c.BodyParser(&update); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	view, err := ctrl.TicketService.UpdateStatus(ctrl.scoped(c), c.Params("id"), update)
	if err != nil {
		return fail(c, err, fiber.StatusInternalServerError)
	}
	return c.JSON(view)
}

// @Summary Get ticket SLA
// @Description Get remaining time, progress and overdue state of a ticket
// @Tags Tickets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Ticket ID"
// @Success 200 {object} ticket.SLAStatus
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /api/tickets/{id}/sla [get]
func (ctrl *TicketController) GetSLAStatus(c *fiber.Ctx) error {
	status, err := ctrl.TicketService.GetSLAStatus(ctrl.scoped(c), c.Params("id"))
	if err != nil {
		return fail(c, err, fiber.StatusInternalServerError)
	}
	return c.JSON(status)
}

// @Summary List overdue tickets
// @Description List open tickets past their deadline
// @Tags Tickets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /api/tickets/overdue [get]
func (ctrl *TicketController) GetOverdueTickets(c *fiber.Ctx) error {
	tickets, err := ctrl.TicketService.GetOverdueTickets(c.UserContext())
	if err != nil {
		return fail(c, err, fiber.StatusInternalServerError)
	}
	return c.JSON(fiber.Map{
		"data":  tickets,
		"total": len(tickets),
	})
}
