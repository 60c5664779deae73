package theater

import (
	"github.com/gofiber/fiber/v2"

	"github.com/aedentekgit/yqpaynow-sub013/internal/common/api"
	"github.com/aedentekgit/yqpaynow-sub013/internal/config"
	"github.com/aedentekgit/yqpaynow-sub013/internal/middleware"
)

type TheaterAPI struct {
	Controller *TheaterController
	Config     *config.Config
	Validator  middleware.TokenValidator
}

func NewTheaterAPI(controller *TheaterController, config *config.Config, validator middleware.TokenValidator) api.Route {
	return &TheaterAPI{
		Controller: controller,
		Config:     config,
		Validator:  validator,
	}
}

func (a *TheaterAPI) Setup(app *fiber.App) {
	group := app.Group("/api/theaters", middleware.AuthMiddleware(a.Validator, a.Config.SkipAuth))

	group.Get("/", middleware.RequireResource("theaters", "read"), a.Controller.List)
	group.Get("/:id", middleware.RequireResource("theaters", "read"), a.Controller.Get)

	group.Post("/", middleware.RequireResource("theaters", "create"), a.Controller.Create)
	group.Put("/:id", middleware.RequireResource("theaters", "update"), a.Controller.Update)
	group.Patch("/:id/active", middleware.RequireResource("theaters", "update"), a.Controller.SetActive)
	group.Delete("/:id", middleware.RequireResource("theaters", "delete"), a.Controller.Delete)
}
