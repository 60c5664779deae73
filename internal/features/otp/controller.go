package otp

import (
	"time"

	"github.com/aedentekgit/yqpaynow-sub013/internal/common/api"

	"github.com/gofiber/fiber/v2"
)

type OTPController struct {
	Service OTPService
}

func NewOTPController(service OTPService) *OTPController {
	return &OTPController{Service: service}
}

type issueRequest struct {
	PhoneNumber string  `json:"phone_number"`
	Purpose     Purpose `json:"purpose"`
	TTLMinutes  int     `json:"ttl_minutes"`
}

type verifyRequest struct {
	PhoneNumber string  `json:"phone_number"`
	Purpose     Purpose `json:"purpose"`
	Code        string  `json:"code"`
}

func (ctrl *OTPController) Issue(c *fiber.Ctx) error {
	var req issueRequest
	if err := c.BodyParser(&req); err != nil {
		return api.FailValidation(c, "invalid request body")
	}

	id, err := ctrl.Service.Issue(c.Context(), req.PhoneNumber, req.Purpose, time.Duration(req.TTLMinutes)*time.Minute)
	if err != nil {
		return api.Fail(c, err)
	}
	return api.Success(c, fiber.StatusCreated, fiber.Map{"id": id})
}

func (ctrl *OTPController) Verify(c *fiber.Ctx) error {
	var req verifyRequest
	if err := c.BodyParser(&req); err != nil {
		return api.FailValidation(c, "invalid request body")
	}

	if err := ctrl.Service.Verify(c.Context(), req.PhoneNumber, req.Purpose, req.Code); err != nil {
		return api.Fail(c, err)
	}
	return api.Success(c, fiber.StatusOK, fiber.Map{"verified": true})
}
