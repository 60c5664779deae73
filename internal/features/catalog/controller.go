package catalog

import (
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/aedentekgit/yqpaynow-sub013/internal/common/api"
)

type CatalogController struct {
	service CatalogService
}

func NewCatalogController(service CatalogService) *CatalogController {
	return &CatalogController{service: service}
}

func theaterIDParam(c *fiber.Ctx) (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(c.Params("theaterId"))
}

type nameRequest struct {
	Name string `json:"name"`
}

func (ctl *CatalogController) CreateCategory(c *fiber.Ctx) error {
	theaterID, err := theaterIDParam(c)
	if err != nil {
		return api.FailValidation(c, "invalid theater id")
	}
	var req nameRequest
	if err := c.BodyParser(&req); err != nil {
		return api.FailValidation(c, "invalid request body")
	}
	cat, err := ctl.service.CreateCategory(c.Context(), theaterID, req.Name)
	if err != nil {
		return api.Fail(c, err)
	}
	return api.Success(c, fiber.StatusCreated, cat)
}

func (ctl *CatalogController) ListCategories(c *fiber.Ctx) error {
	theaterID, err := theaterIDParam(c)
	if err != nil {
		return api.FailValidation(c, "invalid theater id")
	}
	list, err := ctl.service.ListCategories(c.Context(), theaterID)
	if err != nil {
		return api.Fail(c, err)
	}
	return api.Success(c, fiber.StatusOK, list)
}

func (ctl *CatalogController) DeleteCategory(c *fiber.Ctx) error {
	theaterID, err := theaterIDParam(c)
	if err != nil {
		return api.FailValidation(c, "invalid theater id")
	}
	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return api.FailValidation(c, "invalid category id")
	}
	if err := ctl.service.DeleteCategory(c.Context(), theaterID, id); err != nil {
		return api.Fail(c, err)
	}
	return api.Success(c, fiber.StatusOK, fiber.Map{"deleted": true})
}

func (ctl *CatalogController) CreateProductType(c *fiber.Ctx) error {
	theaterID, err := theaterIDParam(c)
	if err != nil {
		return api.FailValidation(c, "invalid theater id")
	}
	var req nameRequest
	if err := c.BodyParser(&req); err != nil {
		return api.FailValidation(c, "invalid request body")
	}
	pt, err := ctl.service.CreateProductType(c.Context(), theaterID, req.Name)
	if err != nil {
		return api.Fail(c, err)
	}
	return api.Success(c, fiber.StatusCreated, pt)
}

func (ctl *CatalogController) ListProductTypes(c *fiber.Ctx) error {
	theaterID, err := theaterIDParam(c)
	if err != nil {
		return api.FailValidation(c, "invalid theater id")
	}
	list, err := ctl.service.ListProductTypes(c.Context(), theaterID)
	if err != nil {
		return api.Fail(c, err)
	}
	return api.Success(c, fiber.StatusOK, list)
}

func (ctl *CatalogController) DeleteProductType(c *fiber.Ctx) error {
	theaterID, err := theaterIDParam(c)
	if err != nil {
		return api.FailValidation(c, "invalid theater id")
	}
	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return api.FailValidation(c, "invalid product type id")
	}
	if err := ctl.service.DeleteProductType(c.Context(), theaterID, id); err != nil {
		return api.Fail(c, err)
	}
	return api.Success(c, fiber.StatusOK, fiber.Map{"deleted": true})
}

func (ctl *CatalogController) CreateProduct(c *fiber.Ctx) error {
	theaterID, err := theaterIDParam(c)
	if err != nil {
		return api.FailValidation(c, "invalid theater id")
	}
	var in ProductInput
	if err := c.BodyParser(&in); err != nil {
		return api.FailValidation(c, "invalid request body")
	}
	p, err := ctl.service.CreateProduct(c.Context(), theaterID, in)
	if err != nil {
		return api.Fail(c, err)
	}
	return api.Success(c, fiber.StatusCreated, p)
}

func (ctl *CatalogController) ListProducts(c *fiber.Ctx) error {
	theaterID, err := theaterIDParam(c)
	if err != nil {
		return api.FailValidation(c, "invalid theater id")
	}
	var categoryID *primitive.ObjectID
	if raw := c.Query("category_id"); raw != "" {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			return api.FailValidation(c, "invalid category id")
		}
		categoryID = &id
	}
	list, err := ctl.service.ListProducts(c.Context(), theaterID, categoryID)
	if err != nil {
		return api.Fail(c, err)
	}
	return api.Success(c, fiber.StatusOK, list)
}

func (ctl *CatalogController) GetProduct(c *fiber.Ctx) error {
	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return api.FailValidation(c, "invalid product id")
	}
	p, err := ctl.service.GetProduct(c.Context(), id)
	if err != nil {
		return api.Fail(c, err)
	}
	return api.Success(c, fiber.StatusOK, p)
}

func (ctl *CatalogController) UpdateProduct(c *fiber.Ctx) error {
	theaterID, err := theaterIDParam(c)
	if err != nil {
		return api.FailValidation(c, "invalid theater id")
	}
	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return api.FailValidation(c, "invalid product id")
	}
	var in ProductInput
	if err := c.BodyParser(&in); err != nil {
		return api.FailValidation(c, "invalid request body")
	}
	p, err := ctl.service.UpdateProduct(c.Context(), theaterID, id, in)
	if err != nil {
		return api.Fail(c, err)
	}
	return api.Success(c, fiber.StatusOK, p)
}

func (ctl *CatalogController) DeleteProduct(c *fiber.Ctx) error {
	theaterID, err := theaterIDParam(c)
	if err != nil {
		return api.FailValidation(c, "invalid theater id")
	}
	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return api.FailValidation(c, "invalid product id")
	}
	if err := ctl.service.DeleteProduct(c.Context(), theaterID, id); err != nil {
		return api.Fail(c, err)
	}
	return api.Success(c, fiber.StatusOK, fiber.Map{"deleted": true})
}
