package stock

import (
	"github.com/gofiber/fiber/v2"

	"github.com/aedentekgit/yqpaynow-sub013/internal/common/api"
	"github.com/aedentekgit/yqpaynow-sub013/internal/config"
	"github.com/aedentekgit/yqpaynow-sub013/internal/middleware"
)

type StockAPI struct {
	Controller *StockController
	Config     *config.Config
	Validator  middleware.TokenValidator
}

func NewStockAPI(controller *StockController, config *config.Config, validator middleware.TokenValidator) api.Route {
	return &StockAPI{
		Controller: controller,
		Config:     config,
		Validator:  validator,
	}
}

func (a *StockAPI) Setup(app *fiber.App) {
	group := app.Group("/api/stock-history/:productId", middleware.AuthMiddleware(a.Validator, a.Config.SkipAuth))

	// Reads are open to theater members; the controller resolves the
	// owning theater from the ledger itself.
	group.Get("/years", a.Controller.Years)
	group.Get("/months", a.Controller.Months)
	group.Get("/export", a.Controller.ExportYear)
	group.Get("/", a.Controller.Month)
	group.Get("/year", a.Controller.Year)

	group.Post("/receipt", middleware.RequireResource("stock", "update"), a.Controller.Receipt)
	group.Post("/sale", middleware.RequireResource("stock", "update"), a.Controller.Sale)
	group.Post("/rollover", middleware.RequireResource("stock", "update"), a.Controller.Rollover)
}
