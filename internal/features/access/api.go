package access

import (
	"github.com/aedentekgit/yqpaynow-sub013/internal/common/api"
	"github.com/aedentekgit/yqpaynow-sub013/internal/config"
	"github.com/aedentekgit/yqpaynow-sub013/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type AccessApi struct {
	Controller *AccessController
	Config     *config.Config
	Validator  middleware.TokenValidator
}

func NewAccessApi(controller *AccessController, config *config.Config, validator middleware.TokenValidator) api.Route {
	return &AccessApi{
		Controller: controller,
		Config:     config,
		Validator:  validator,
	}
}

func (a *AccessApi) Setup(app *fiber.App) {
	group := app.Group("/api/page-access", middleware.AuthMiddleware(a.Validator, a.Config.SkipAuth))

	group.Get("/accessible", a.Controller.Accessible)

	theater := group.Group("/:theaterId", middleware.RequireTheaterMember("theaterId"))
	theater.Get("/", a.Controller.Matrix)

	admin := theater.Group("/", middleware.RequireResource("page-access", "update"))
	admin.Post("/grant", a.Controller.Grant)
	admin.Post("/pages", a.Controller.RegisterPage)
	admin.Delete("/pages/:page", a.Controller.RemovePage)
	admin.Post("/roles", a.Controller.CreateRole)
	admin.Delete("/roles/:roleId", a.Controller.DeleteRole)
}
