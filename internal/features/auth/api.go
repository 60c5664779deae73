package auth

import (
	"github.com/aedentekgit/yqpaynow-sub013/internal/common/api"
	"github.com/aedentekgit/yqpaynow-sub013/internal/config"
	"github.com/aedentekgit/yqpaynow-sub013/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type AuthApi struct {
	Controller *AuthController
	Config     *config.Config
	Validator  middleware.TokenValidator
}

func NewAuthApi(controller *AuthController, config *config.Config, validator middleware.TokenValidator) api.Route {
	return &AuthApi{
		Controller: controller,
		Config:     config,
		Validator:  validator,
	}
}

// Setup registers all auth-related routes
func (a *AuthApi) Setup(app *fiber.App) {
	app.Post("/api/auth/register", a.Controller.Register)
	app.Post("/api/auth/login", a.Controller.Login)
	app.Post("/api/auth/logout", middleware.AuthMiddleware(a.Validator, a.Config.SkipAuth), a.Controller.Logout)
}
