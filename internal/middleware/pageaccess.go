package middleware

import (
	"context"

	"github.com/aedentekgit/yqpaynow-sub013/internal/apperrors"
	"github.com/aedentekgit/yqpaynow-sub013/internal/common/api"
	"github.com/aedentekgit/yqpaynow-sub013/internal/common/models"

	"github.com/gofiber/fiber/v2"
)

// AccessChecker answers the (theater, role, page) question. Implemented by the
// role service; unknown roles and pages fail closed.
type AccessChecker interface {
	Check(ctx context.Context, theaterID, roleID, page string) (bool, error)
}

// RequirePage gates an endpoint behind the theater's page-access matrix.
// super_admin bypasses the matrix; everyone else needs a theater binding and a
// role whose permission entry for the page is granted.
func RequirePage(checker AccessChecker, page string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		usr := UserFromContext(c)
		if usr == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(api.Envelope{
				Success: false,
				Error:   "Unauthorized",
			})
		}

		if usr.Role == models.RoleSuperAdmin {
			return c.Next()
		}

		if usr.TheaterID == nil || usr.RoleID == "" {
			return api.Fail(c, apperrors.ErrForbidden)
		}

		granted, err := checker.Check(c.Context(), usr.TheaterID.Hex(), usr.RoleID, page)
		if err != nil {
			return api.Fail(c, err)
		}
		if !granted {
			return api.Fail(c, apperrors.ErrForbidden)
		}

		return c.Next()
	}
}

// RequireTheaterMember restricts an endpoint to users bound to the theater
// named in the route, plus super_admin.
func RequireTheaterMember(param string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		usr := UserFromContext(c)
		if usr == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(api.Envelope{
				Success: false,
				Error:   "Unauthorized",
			})
		}
		if usr.Role == models.RoleSuperAdmin {
			return c.Next()
		}
		if usr.TheaterID == nil || usr.TheaterID.Hex() != c.Params(param) {
			return api.Fail(c, apperrors.ErrForbidden)
		}
		return c.Next()
	}
}

// RequireResource gates admin endpoints on the user-level permission list.
func RequireResource(resource, action string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		usr := UserFromContext(c)
		if usr == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(api.Envelope{
				Success: false,
				Error:   "Unauthorized",
			})
		}
		if !usr.HasPermission(resource, action) {
			return api.Fail(c, apperrors.ErrForbidden)
		}
		return c.Next()
	}
}
