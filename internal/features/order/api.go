package order

import (
	"github.com/gofiber/fiber/v2"

	"github.com/aedentekgit/yqpaynow-sub013/internal/common/api"
	"github.com/aedentekgit/yqpaynow-sub013/internal/config"
	"github.com/aedentekgit/yqpaynow-sub013/internal/middleware"
)

type OrderAPI struct {
	Controller *OrderController
	Config     *config.Config
	Validator  middleware.TokenValidator
}

func NewOrderAPI(controller *OrderController, config *config.Config, validator middleware.TokenValidator) api.Route {
	return &OrderAPI{
		Controller: controller,
		Config:     config,
		Validator:  validator,
	}
}

func (a *OrderAPI) Setup(app *fiber.App) {
	// Customer endpoints authenticate by one-time code, not bearer token.
	app.Post("/api/orders/:theaterId/place", a.Controller.Place)
	app.Post("/api/orders/:theaterId/history", a.Controller.History)

	staff := app.Group("/api/orders/:theaterId",
		middleware.AuthMiddleware(a.Validator, a.Config.SkipAuth),
		middleware.RequireTheaterMember("theaterId"),
	)
	staff.Get("/", middleware.RequireResource("orders", "read"), a.Controller.List)
	staff.Get("/:id", middleware.RequireResource("orders", "read"), a.Controller.Get)
	staff.Patch("/:id/status", middleware.RequireResource("orders", "update"), a.Controller.Advance)
}
