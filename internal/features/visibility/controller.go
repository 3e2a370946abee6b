package visibility

import (
	"go-crm-funnel/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type NavigationController struct {
	Gate *Gate
}

func NewNavigationController(gate *Gate) *NavigationController {
	return &NavigationController{Gate: gate}
}

// GetNavigation returns the menu tree for the caller's role.
// @Summary Get navigation
// @Description Sections and items the caller's role may see
// @Tags Navigation
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Router /api/navigation [get]
func (ctrl *NavigationController) GetNavigation(c *fiber.Ctx) error {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
	}

	role, err := ParseRole(claims.Role)
	if err != nil {
		// Unknown roles get an empty menu, not an error page
		return c.JSON(fiber.Map{
			"role":     claims.Role,
			"sections": []Section{},
		})
	}

	return c.JSON(fiber.Map{
		"role":     role,
		"sections": ctrl.Gate.Navigation(role),
	})
}
