package offer

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/aedentekgit/yqpaynow-sub013/internal/common/api"
)

type OfferController struct {
	service OfferService
}

func NewOfferController(service OfferService) *OfferController {
	return &OfferController{service: service}
}

func theaterIDParam(c *fiber.Ctx) (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(c.Params("theaterId"))
}

func (ctl *OfferController) Create(c *fiber.Ctx) error {
	theaterID, err := theaterIDParam(c)
	if err != nil {
		return api.FailValidation(c, "invalid theater id")
	}
	var in OfferInput
	if err := c.BodyParser(&in); err != nil {
		return api.FailValidation(c, "invalid request body")
	}
	o, err := ctl.service.Create(c.Context(), theaterID, in)
	if err != nil {
		return api.Fail(c, err)
	}
	return api.Success(c, fiber.StatusCreated, o)
}

func (ctl *OfferController) List(c *fiber.Ctx) error {
	theaterID, err := theaterIDParam(c)
	if err != nil {
		return api.FailValidation(c, "invalid theater id")
	}
	list, err := ctl.service.List(c.Context(), theaterID)
	if err != nil {
		return api.Fail(c, err)
	}
	return api.Success(c, fiber.StatusOK, list)
}

func (ctl *OfferController) Resolve(c *fiber.Ctx) error {
	theaterID, err := theaterIDParam(c)
	if err != nil {
		return api.FailValidation(c, "invalid theater id")
	}
	code := c.Params("code")
	o, err := ctl.service.Resolve(c.Context(), theaterID, code, time.Now())
	if err != nil {
		return api.Fail(c, err)
	}
	return api.Success(c, fiber.StatusOK, o)
}

func (ctl *OfferController) SetActive(c *fiber.Ctx) error {
	theaterID, err := theaterIDParam(c)
	if err != nil {
		return api.FailValidation(c, "invalid theater id")
	}
	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return api.FailValidation(c, "invalid offer id")
	}
	var body struct {
		Active bool `json:"active"`
	}
	if err := c.BodyParser(&body); err != nil {
		return api.FailValidation(c, "invalid request body")
	}
	if err := ctl.service.SetActive(c.Context(), theaterID, id, body.Active); err != nil {
		return api.Fail(c, err)
	}
	return api.Success(c, fiber.StatusOK, fiber.Map{"active": body.Active})
}

func (ctl *OfferController) Delete(c *fiber.Ctx) error {
	theaterID, err := theaterIDParam(c)
	if err != nil {
		return api.FailValidation(c, "invalid theater id")
	}
	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return api.FailValidation(c, "invalid offer id")
	}
	if err := ctl.service.Delete(c.Context(), theaterID, id); err != nil {
		return api.Fail(c, err)
	}
	return api.Success(c, fiber.StatusOK, fiber.Map{"deleted": true})
}
