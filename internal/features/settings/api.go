package settings

import (
	"github.com/gofiber/fiber/v2"

	"github.com/aedentekgit/yqpaynow-sub013/internal/common/api"
	"github.com/aedentekgit/yqpaynow-sub013/internal/config"
	"github.com/aedentekgit/yqpaynow-sub013/internal/middleware"
)

type SettingsAPI struct {
	Controller *SettingsController
	Config     *config.Config
	Validator  middleware.TokenValidator
}

func NewSettingsAPI(controller *SettingsController, config *config.Config, validator middleware.TokenValidator) api.Route {
	return &SettingsAPI{
		Controller: controller,
		Config:     config,
		Validator:  validator,
	}
}

func (a *SettingsAPI) Setup(app *fiber.App) {
	// Branding and menu configuration a customer UI needs before login.
	app.Get("/api/public/settings/:theaterId/:category", a.Controller.ListPublic)

	group := app.Group("/api/settings/:theaterId",
		middleware.AuthMiddleware(a.Validator, a.Config.SkipAuth),
		middleware.RequireTheaterMember("theaterId"),
	)

	group.Get("/:category", middleware.RequireResource("settings", "read"), a.Controller.ListCategory)
	group.Get("/:category/:key", middleware.RequireResource("settings", "read"), a.Controller.Get)
	group.Put("/:category/:key", middleware.RequireResource("settings", "update"), a.Controller.Set)
	group.Delete("/:category/:key", middleware.RequireResource("settings", "update"), a.Controller.Delete)
}
