package otp

import (
	"github.com/aedentekgit/yqpaynow-sub013/internal/common/api"

	"github.com/gofiber/fiber/v2"
)

type OTPApi struct {
	Controller *OTPController
}

func NewOTPApi(controller *OTPController) api.Route {
	return &OTPApi{Controller: controller}
}

// Setup registers the public OTP endpoints. Issue is throttled per phone by
// the service's reissue cooldown.
func (a *OTPApi) Setup(app *fiber.App) {
	app.Post("/api/otp/issue", a.Controller.Issue)
	app.Post("/api/otp/verify", a.Controller.Verify)
}
