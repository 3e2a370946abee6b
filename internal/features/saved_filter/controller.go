package saved_filter

import (
	"errors"

	common_models "go-crm-funnel/internal/common/models"
	"go-crm-funnel/internal/features/filter"

	"github.com/gofiber/fiber/v2"
)

type SavedFilterController struct {
	FilterService SavedFilterService
}

func NewSavedFilterController(filterService SavedFilterService) *SavedFilterController {
	return &SavedFilterController{
		FilterService: filterService,
	}
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, common_models.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, common_models.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, ErrInvalidFilter), errors.Is(err, filter.ErrInvalidDate):
		return fiber.StatusBadRequest
	}
	return fiber.StatusInternalServerError
}

// @Summary Create a saved filter
// @Description Store named list criteria for a module
// @Tags Saved Filters
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body saved_filter.SavedFilter true "Filter"
// @Success 201 {object} saved_filter.SavedFilter
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /api/filters [post]
func (c *SavedFilterController) CreateFilter(ctx *fiber.Ctx) error {
	var f SavedFilter
	if err := ctx.BodyParser(&f); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
	}

	if err := c.FilterService.CreateFilter(ctx.UserContext(), &f); err != nil {
		return ctx.Status(errorStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return ctx.Status(fiber.StatusCreated).JSON(f)
}

// @Summary Get a saved filter
// @Description Get a filter owned by or shared with the caller
// @Tags Saved Filters
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Saved filter ID"
// @Success 200 {object} saved_filter.SavedFilter
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/filters/{id} [get]
func (c *SavedFilterController) GetFilter(ctx *fiber.Ctx) error {
	f, err := c.FilterService.GetFilter(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return ctx.Status(errorStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return ctx.JSON(f)
}

// @Summary Delete a saved filter
// @Description Delete a filter owned by the caller
// @Tags Saved Filters
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Saved filter ID"
// @Success 204
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/filters/{id} [delete]
func (c *SavedFilterController) DeleteFilter(ctx *fiber.Ctx) error {
	if err := c.FilterService.DeleteFilter(ctx.UserContext(), ctx.Params("id")); err != nil {
		return ctx.Status(errorStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return ctx.SendStatus(fiber.StatusNoContent)
}

// @Summary List saved filters
// @Description List filters of a module visible to the caller
// @Tags Saved Filters
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param module query string true "Module" Enums(leads, deals, tickets)
// @Success 200 {array} saved_filter.SavedFilter
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /api/filters [get]
func (c *SavedFilterController) ListFilters(ctx *fiber.Ctx) error {
	moduleName := ctx.Query("module")
	if moduleName == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "module parameter required"})
	}

	filters, err := c.FilterService.ListFilters(ctx.UserContext(), moduleName)
	if err != nil {
		return ctx.Status(errorStatus(err)).JSON(fiber.Map{"error": err.Error()})
	}

	return ctx.JSON(filters)
}
