package offer

import (
	"github.com/gofiber/fiber/v2"

	"github.com/aedentekgit/yqpaynow-sub013/internal/common/api"
	"github.com/aedentekgit/yqpaynow-sub013/internal/config"
	"github.com/aedentekgit/yqpaynow-sub013/internal/middleware"
)

type OfferAPI struct {
	Controller *OfferController
	Config     *config.Config
	Validator  middleware.TokenValidator
}

func NewOfferAPI(controller *OfferController, config *config.Config, validator middleware.TokenValidator) api.Route {
	return &OfferAPI{
		Controller: controller,
		Config:     config,
		Validator:  validator,
	}
}

func (a *OfferAPI) Setup(app *fiber.App) {
	group := app.Group("/api/offers/:theaterId",
		middleware.AuthMiddleware(a.Validator, a.Config.SkipAuth),
		middleware.RequireTheaterMember("theaterId"),
	)

	group.Get("/", middleware.RequireResource("offers", "read"), a.Controller.List)
	group.Get("/code/:code", middleware.RequireResource("offers", "read"), a.Controller.Resolve)
	group.Post("/", middleware.RequireResource("offers", "create"), a.Controller.Create)
	group.Patch("/:id/active", middleware.RequireResource("offers", "update"), a.Controller.SetActive)
	group.Delete("/:id", middleware.RequireResource("offers", "delete"), a.Controller.Delete)
}
