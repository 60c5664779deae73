package catalog

import (
	"github.com/gofiber/fiber/v2"

	"github.com/aedentekgit/yqpaynow-sub013/internal/common/api"
	"github.com/aedentekgit/yqpaynow-sub013/internal/config"
	"github.com/aedentekgit/yqpaynow-sub013/internal/middleware"
)

type CatalogAPI struct {
	Controller *CatalogController
	Config     *config.Config
	Validator  middleware.TokenValidator
}

func NewCatalogAPI(controller *CatalogController, config *config.Config, validator middleware.TokenValidator) api.Route {
	return &CatalogAPI{
		Controller: controller,
		Config:     config,
		Validator:  validator,
	}
}

func (a *CatalogAPI) Setup(app *fiber.App) {
	group := app.Group("/api/catalog/:theaterId",
		middleware.AuthMiddleware(a.Validator, a.Config.SkipAuth),
		middleware.RequireTheaterMember("theaterId"),
	)

	group.Get("/categories", middleware.RequireResource("catalog", "read"), a.Controller.ListCategories)
	group.Post("/categories", middleware.RequireResource("catalog", "create"), a.Controller.CreateCategory)
	group.Delete("/categories/:id", middleware.RequireResource("catalog", "delete"), a.Controller.DeleteCategory)

	group.Get("/product-types", middleware.RequireResource("catalog", "read"), a.Controller.ListProductTypes)
	group.Post("/product-types", middleware.RequireResource("catalog", "create"), a.Controller.CreateProductType)
	group.Delete("/product-types/:id", middleware.RequireResource("catalog", "delete"), a.Controller.DeleteProductType)

	group.Get("/products", middleware.RequireResource("catalog", "read"), a.Controller.ListProducts)
	group.Get("/products/:id", middleware.RequireResource("catalog", "read"), a.Controller.GetProduct)
	group.Post("/products", middleware.RequireResource("catalog", "create"), a.Controller.CreateProduct)
	group.Put("/products/:id", middleware.RequireResource("catalog", "update"), a.Controller.UpdateProduct)
	group.Delete("/products/:id", middleware.RequireResource("catalog", "delete"), a.Controller.DeleteProduct)
}
