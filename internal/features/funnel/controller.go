package funnel

import (
	"context"
	"errors"

	common_models "go-crm-funnel/internal/common/models"
	"go-crm-funnel/internal/features/filter"
	"go-crm-funnel/internal/features/visibility"
	"go-crm-funnel/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type FunnelController struct {
	Service FunnelService
	Gate    *visibility.Gate
	Saved   filter.SavedLookup
}

func NewFunnelController(service FunnelService, gate *visibility.Gate, saved filter.SavedLookup) *FunnelController {
	return &FunnelController{
		Service: service,
		Gate:    gate,
		Saved:   saved,
	}
}

// errorStatus maps service errors to HTTP statuses; fallback covers the rest.
func errorStatus(err error, fallback int) int {
	var stageErr *InvalidStageError
	switch {
	case errors.Is(err, common_models.ErrNotFound), errors.Is(err, ErrUnknownFunnelType):
		return fiber.StatusNotFound
	case errors.Is(err, common_models.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, common_models.ErrVersionConflict):
		return fiber.StatusConflict
	case errors.As(err, &stageErr), errors.Is(err, ErrInvalidProbability):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, ErrInvalidRecord), errors.Is(err, filter.ErrInvalidDate):
		return fiber.StatusBadRequest
	}
	return fallback
}

func fail(c *fiber.Ctx, err error, fallback int) error {
	return c.Status(errorStatus(err, fallback)).JSON(fiber.Map{"error": err.Error()})
}

// scoped narrows the request context to the caller's record scope.
func (ctrl *FunnelController) scoped(c *fiber.Ctx) context.Context {
	role := ""
	if claims, ok := middleware.ClaimsFrom(c); ok {
		role = claims.Role
	}
	return ctrl.Gate.ScopedContext(c.UserContext(), role)
}

// ListStages returns the stage table of the funnel in the path.
// @Summary List funnel stages
// @Description Get the ordered stage table of a funnel
// @Tags Funnel
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param funnelType path string true "Funnel type" Enums(lead, deal)
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/stages/{funnelType} [get]
func (ctrl *FunnelController) ListStages(c *fiber.Ctx) error {
	ft, err := ParseFunnelType(c.Params("funnelType"))
	if err != nil {
		return fail(c, err, fiber.StatusNotFound)
	}

	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}
	if !ctrl.Gate.CanAccess(claims.Role, ft.Module()) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden: section not available for role"})
	}

	stages, err := ctrl.Service.ListStages(ft)
	if err != nil {
		return fail(c, err, fiber.StatusInternalServerError)
	}
	return c.JSON(fiber.Map{
		"funnel_type": ft,
		"stages":      stages,
	})
}

// ListRecords filters by q, from, to, stage, owner_id or a saved filter_id.
// @Summary List leads or deals
// @Description Filter records by text, date range, stage and owner
// @Tags Funnel
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param q query string false "Case-insensitive text search"
// @Param from query string false "Range start (2006-01-02 or RFC3339)"
// @Param to query string false "Range end (2006-01-02 or RFC3339)"
// @Param filter_id query string false "Apply a saved filter instead of inline parameters"
// @Param stage query string false "Comma-separated stage ids"
// @Param owner_id query string false "Comma-separated owner ids"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /api/leads [get]
// @Router /api/deals [get]
func (ctrl *FunnelController) ListRecords(ft FunnelType) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := middleware.ClaimsFrom(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
		}

		criteria, err := filter.FromRequest(c, ctrl.Saved, ft.Module(), FacetNames)
		if err != nil {
			return fail(c, err, fiber.StatusBadRequest)
		}

		// Unknown roles parse to "" and get a deny-all scope
		role, _ := visibility.ParseRole(claims.Role)
		criteria = criteria.WithRoleScope(ctrl.Gate.RecordScopeFor(role))

		records, err := ctrl.Service.ListRecords(c.UserContext(), ft, criteria)
		if err != nil {
			return fail(c, err, fiber.StatusInternalServerError)
		}
		return c.JSON(fiber.Map{
			"data":  records,
			"total": len(records),
		})
	}
}

// @Summary Get a lead or deal
// @Description Get one record with its progress and overdue state
// @Tags Funnel
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Record ID"
// @Success 200 {object} funnel.RecordView
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/leads/{id} [get]
// @Router /api/deals/{id} [get]
func (ctrl *FunnelController) GetRecord(ft FunnelType) fiber.Handler {
	return func(c *fiber.Ctx) error {
		view, err := ctrl.Service.GetRecord(ctrl.scoped(c), ft, c.Params("id"))
		if err != nil {
			return fail(c, err, fiber.StatusInternalServerError)
		}
		return c.JSON(view)
	}
}

// @Summary Create a lead or deal
// @Description Create a record at the first stage of its funnel
// @Tags Funnel
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body funnel.CreateRecordRequest true "Record"
// @Success 201 {object} funnel.RecordView
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /api/leads [post]
// @Router /api/deals [post]
func (ctrl *FunnelController) CreateRecord(ft FunnelType) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req CreateRecordRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}
		if req.OwnerID == "" {
			if claims, ok := middleware.ClaimsFrom(c); ok {
				req.OwnerID = claims.UserID
			}
		}

		view, err := ctrl.Service.CreateRecord(c.UserContext(), ft, req)
		if err != nil {
			return fail(c, err, fiber.StatusInternalServerError)
		}
		return c.Status(fiber.StatusCreated).JSON(view)
	}
}

// @Summary Move a record to another stage
// @Description Transition a record, optionally overriding the probability
// @Tags Funnel
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Record ID"
// @Param request body funnel.StageChange true "Target stage"
// @Success 200 {object} funnel.RecordView
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /api/leads/{id}/stage [patch]
// @Router /api/deals/{id}/stage [patch]
func (ctrl *FunnelController) ChangeStage(ft FunnelType) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var change StageChange
		if err := c.BodyParser(&change); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}
		if change.StageID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "stage_id is required"})
		}

		view, err := ctrl.Service.ChangeStage(ctrl.scoped(c), ft, c.Params("id"), change)
		if err != nil {
			return fail(c, err, fiber.StatusInternalServerError)
		}
		return c.JSON(view)
	}
}
