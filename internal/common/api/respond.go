package api

import (
	"github.com/aedentekgit/yqpaynow-sub013/internal/apperrors"

	"github.com/gofiber/fiber/v2"
)

// Envelope is the JSON shape of every response.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func Success(c *fiber.Ctx, status int, data interface{}) error {
	return c.Status(status).JSON(Envelope{Success: true, Data: data})
}

// Fail maps a service error to the envelope. Internal causes are not leaked;
// the caller is expected to have logged them already.
func Fail(c *fiber.Ctx, err error) error {
	ae := apperrors.From(err)
	return c.Status(ae.Status).JSON(Envelope{Success: false, Error: ae.Message})
}

// FailValidation rejects a malformed request body.
func FailValidation(c *fiber.Ctx, msg string) error {
	return Fail(c, apperrors.Validation(msg))
}
