package saved_filter

import (
	"go-crm-funnel/internal/config"
	"go-crm-funnel/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type SavedFilterApi struct {
	FilterController *SavedFilterController
	Config           *config.Config
}

func NewSavedFilterApi(filterController *SavedFilterController, config *config.Config) *SavedFilterApi {
	return &SavedFilterApi{
		FilterController: filterController,
		Config:           config,
	}
}

func (api *SavedFilterApi) Setup(app *fiber.App) {
	group := app.Group("/api/filters", middleware.AuthMiddleware(api.Config.SkipAuth, api.Config.DevRole))

	group.Post("/", api.FilterController.CreateFilter)
	group.Get("/", api.FilterController.ListFilters)
	group.Get("/:id", api.FilterController.GetFilter)
	group.Delete("/:id", api.FilterController.DeleteFilter)
}
