package user

import (
	"github.com/aedentekgit/yqpaynow-sub013/internal/common/api"
	"github.com/aedentekgit/yqpaynow-sub013/internal/config"
	"github.com/aedentekgit/yqpaynow-sub013/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type UserApi struct {
	Controller *UserController
	Config     *config.Config
	Validator  middleware.TokenValidator
}

func NewUserApi(controller *UserController, config *config.Config, validator middleware.TokenValidator) api.Route {
	return &UserApi{
		Controller: controller,
		Config:     config,
		Validator:  validator,
	}
}

func (a *UserApi) Setup(app *fiber.App) {
	group := app.Group("/api/users", middleware.AuthMiddleware(a.Validator, a.Config.SkipAuth))

	group.Get("/me", a.Controller.Me)
	group.Put("/me", a.Controller.UpdateProfile)
	group.Put("/me/password", a.Controller.ChangePassword)

	group.Get("/", middleware.RequireResource("users", "read"), a.Controller.List)
	group.Get("/:id", middleware.RequireResource("users", "read"), a.Controller.Get)
	group.Put("/:id/role", middleware.RequireResource("users", "update"), a.Controller.SetRole)
	group.Put("/:id/permissions", middleware.RequireResource("users", "update"), a.Controller.SetPermissions)
	group.Put("/:id/status", middleware.RequireResource("users", "update"), a.Controller.SetStatus)
	group.Delete("/:id", middleware.RequireResource("users", "delete"), a.Controller.Delete)
}
