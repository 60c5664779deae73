package api

import "github.com/gofiber/fiber/v2"

// Route is implemented by every feature Api type; Setup registers its endpoints.
type Route interface {
	Setup(app *fiber.App)
}
