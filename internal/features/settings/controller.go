package settings

import (
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/aedentekgit/yqpaynow-sub013/internal/common/api"
)

type SettingsController struct {
	service SettingsService
}

func NewSettingsController(service SettingsService) *SettingsController {
	return &SettingsController{service: service}
}

func theaterIDParam(c *fiber.Ctx) (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(c.Params("theaterId"))
}

func (ctl *SettingsController) Get(c *fiber.Ctx) error {
	theaterID, err := theaterIDParam(c)
	if err != nil {
		return api.FailValidation(c, "invalid theater id")
	}
	s, err := ctl.service.Get(c.Context(), theaterID, c.Params("category"), c.Params("key"))
	if err != nil {
		return api.Fail(c, err)
	}
	return api.Success(c, fiber.StatusOK, s)
}

func (ctl *SettingsController) ListCategory(c *fiber.Ctx) error {
	theaterID, err := theaterIDParam(c)
	if err != nil {
		return api.FailValidation(c, "invalid theater id")
	}
	list, err := ctl.service.ListCategory(c.Context(), theaterID, c.Params("category"))
	if err != nil {
		return api.Fail(c, err)
	}
	return api.Success(c, fiber.StatusOK, list)
}

// ListPublic serves the unauthenticated read path; only settings flagged
// is_public ever leave it.
func (ctl *SettingsController) ListPublic(c *fiber.Ctx) error {
	theaterID, err := theaterIDParam(c)
	if err != nil {
		return api.FailValidation(c, "invalid theater id")
	}
	list, err := ctl.service.ListPublic(c.Context(), theaterID, c.Params("category"))
	if err != nil {
		return api.Fail(c, err)
	}
	return api.Success(c, fiber.StatusOK, list)
}

type setRequest struct {
	SettingValue
	IsPublic bool `json:"is_public"`
}

func (ctl *SettingsController) Set(c *fiber.Ctx) error {
	theaterID, err := theaterIDParam(c)
	if err != nil {
		return api.FailValidation(c, "invalid theater id")
	}
	var req setRequest
	if err := c.BodyParser(&req); err != nil {
		return api.FailValidation(c, "invalid request body")
	}
	s, err := ctl.service.Set(c.Context(), theaterID, c.Params("category"), c.Params("key"), req.SettingValue, req.IsPublic)
	if err != nil {
		return api.Fail(c, err)
	}
	return api.Success(c, fiber.StatusOK, s)
}

func (ctl *SettingsController) Delete(c *fiber.Ctx) error {
	theaterID, err := theaterIDParam(c)
	if err != nil {
		return api.FailValidation(c, "invalid theater id")
	}
	if err := ctl.service.Delete(c.Context(), theaterID, c.Params("category"), c.Params("key")); err != nil {
		return api.Fail(c, err)
	}
	return api.Success(c, fiber.StatusOK, fiber.Map{"deleted": true})
}
