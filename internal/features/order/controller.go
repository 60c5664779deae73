package order

import (
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/aedentekgit/yqpaynow-sub013/internal/common/api"
	"github.com/aedentekgit/yqpaynow-sub013/internal/features/otp"
)

type OrderController struct {
	service OrderService
	otp     otp.OTPService
}

func NewOrderController(service OrderService, otpSv otp.OTPService) *OrderController {
	return &OrderController{service: service, otp: otpSv}
}

func theaterIDParam(c *fiber.Ctx) (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(c.Params("theaterId"))
}

func (ctl *OrderController) Place(c *fiber.Ctx) error {
	theaterID, err := theaterIDParam(c)
	if err != nil {
		return api.FailValidation(c, "invalid theater id")
	}
	var in PlaceOrderInput
	if err := c.BodyParser(&in); err != nil {
		return api.FailValidation(c, "invalid request body")
	}
	o, err := ctl.service.Place(c.Context(), theaterID, in)
	if err != nil {
		return api.Fail(c, err)
	}
	return api.Success(c, fiber.StatusCreated, o)
}

func (ctl *OrderController) Get(c *fiber.Ctx) error {
	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return api.FailValidation(c, "invalid order id")
	}
	o, err := ctl.service.Get(c.Context(), id)
	if err != nil {
		return api.Fail(c, err)
	}
	return api.Success(c, fiber.StatusOK, o)
}

func (ctl *OrderController) List(c *fiber.Ctx) error {
	theaterID, err := theaterIDParam(c)
	if err != nil {
		return api.FailValidation(c, "invalid theater id")
	}
	var status *Status
	if raw := c.Query("status"); raw != "" {
		s := Status(raw)
		status = &s
	}
	limit := int64(c.QueryInt("limit", 50))

	list, err := ctl.service.List(c.Context(), theaterID, status, limit)
	if err != nil {
		return api.Fail(c, err)
	}
	return api.Success(c, fiber.StatusOK, list)
}

type historyRequest struct {
	PhoneNumber string `json:"phone_number"`
	OtpCode     string `json:"otp_code"`
}

// History is a customer-facing lookup gated by a one-time code rather than
// a login session.
func (ctl *OrderController) History(c *fiber.Ctx) error {
	theaterID, err := theaterIDParam(c)
	if err != nil {
		return api.FailValidation(c, "invalid theater id")
	}
	var req historyRequest
	if err := c.BodyParser(&req); err != nil {
		return api.FailValidation(c, "invalid request body")
	}
	if err := ctl.otp.Consume(c.Context(), req.PhoneNumber, otp.PurposeOrderHistory, req.OtpCode); err != nil {
		return api.Fail(c, err)
	}
	list, err := ctl.service.History(c.Context(), theaterID, req.PhoneNumber)
	if err != nil {
		return api.Fail(c, err)
	}
	return api.Success(c, fiber.StatusOK, list)
}

func (ctl *OrderController) Advance(c *fiber.Ctx) error {
	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return api.FailValidation(c, "invalid order id")
	}
	var body struct {
		Status Status `json:"status"`
	}
	if err := c.BodyParser(&body); err != nil {
		return api.FailValidation(c, "invalid request body")
	}
	o, err := ctl.service.Advance(c.Context(), id, body.Status)
	if err != nil {
		return api.Fail(c, err)
	}
	return api.Success(c, fiber.StatusOK, o)
}
