package visibility

import (
	"go-crm-funnel/internal/config"
	"go-crm-funnel/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type NavigationApi struct {
	Controller *NavigationController
	Config     *config.Config
}

func NewNavigationApi(controller *NavigationController, config *config.Config) *NavigationApi {
	return &NavigationApi{
		Controller: controller,
		Config:     config,
	}
}

func (api *NavigationApi) Setup(app *fiber.App) {
	app.Get("/api/navigation",
		middleware.AuthMiddleware(api.Config.SkipAuth, api.Config.DevRole),
		api.Controller.GetNavigation,
	)
}
