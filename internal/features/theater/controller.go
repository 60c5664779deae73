package theater

import (
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/aedentekgit/yqpaynow-sub013/internal/common/api"
)

type TheaterController struct {
	service TheaterService
}

func NewTheaterController(service TheaterService) *TheaterController {
	return &TheaterController{service: service}
}

func (ctl *TheaterController) Create(c *fiber.Ctx) error {
	var in CreateTheaterInput
	if err := c.BodyParser(&in); err != nil {
		return api.FailValidation(c, "invalid request body")
	}
	t, err := ctl.service.Create(c.Context(), in)
	if err != nil {
		return api.Fail(c, err)
	}
	return api.Success(c, fiber.StatusCreated, t)
}

func (ctl *TheaterController) Get(c *fiber.Ctx) error {
	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return api.FailValidation(c, "invalid theater id")
	}
	t, err := ctl.service.Get(c.Context(), id)
	if err != nil {
		return api.Fail(c, err)
	}
	return api.Success(c, fiber.StatusOK, t)
}

func (ctl *TheaterController) List(c *fiber.Ctx) error {
	list, err := ctl.service.List(c.Context())
	if err != nil {
		return api.Fail(c, err)
	}
	return api.Success(c, fiber.StatusOK, list)
}

func (ctl *TheaterController) Update(c *fiber.Ctx) error {
	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return api.FailValidation(c, "invalid theater id")
	}
	var in CreateTheaterInput
	if err := c.BodyParser(&in); err != nil {
		return api.FailValidation(c, "invalid request body")
	}
	t, err := ctl.service.Update(c.Context(), id, in)
	if err != nil {
		return api.Fail(c, err)
	}
	return api.Success(c, fiber.StatusOK, t)
}

func (ctl *TheaterController) SetActive(c *fiber.Ctx) error {
	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return api.FailValidation(c, "invalid theater id")
	}
	var body struct {
		Active bool `json:"active"`
	}
	if err := c.BodyParser(&body); err != nil {
		return api.FailValidation(c, "invalid request body")
	}
	t, err := ctl.service.SetActive(c.Context(), id, body.Active)
	if err != nil {
		return api.Fail(c, err)
	}
	return api.Success(c, fiber.StatusOK, t)
}

func (ctl *TheaterController) Delete(c *fiber.Ctx) error {
	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return api.FailValidation(c, "invalid theater id")
	}
	if err := ctl.service.Delete(c.Context(), id); err != nil {
		return api.Fail(c, err)
	}
	return api.Success(c, fiber.StatusOK, fiber.Map{"deleted": true})
}
