package user

import (
	"github.com/aedentekgit/yqpaynow-sub013/internal/apperrors"
	"github.com/aedentekgit/yqpaynow-sub013/internal/common/api"
	"github.com/aedentekgit/yqpaynow-sub013/internal/common/models"
	"github.com/aedentekgit/yqpaynow-sub013/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type UserController struct {
	Service UserService
}

func NewUserController(service UserService) *UserController {
	return &UserController{Service: service}
}

type updateProfileRequest struct {
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type setRoleRequest struct {
	Role      models.RoleKind `json:"role"`
	RoleID    string   `json:"role_id"`
	TheaterID string   `json:"theater_id"`
}

type setStatusRequest struct {
	Status string `json:"status"`
}

type setPermissionsRequest struct {
	Permissions []models.Permission `json:"permissions"`
}

func (ctrl *UserController) Me(c *fiber.Ctx) error {
	usr := middleware.UserFromContext(c)
	if usr == nil {
		return api.Fail(c, apperrors.ErrInvalidToken)
	}
	return api.Success(c, fiber.StatusOK, usr)
}

func (ctrl *UserController) Get(c *fiber.Ctx) error {
	usr, err := ctrl.Service.Get(c.Context(), c.Params("id"))
	if err != nil {
		return api.Fail(c, err)
	}
	return api.Success(c, fiber.StatusOK, usr)
}

func (ctrl *UserController) List(c *fiber.Ctx) error {
	theaterID := c.Query("theater_id")
	if caller := middleware.UserFromContext(c); caller != nil && caller.Role != models.RoleSuperAdmin && caller.TheaterID != nil {
		// Theater users only ever see their own theater.
		theaterID = caller.TheaterID.Hex()
	}

	limit := int64(c.QueryInt("limit", 50))
	offset := int64(c.QueryInt("offset", 0))

	users, total, err := ctrl.Service.List(c.Context(), theaterID, limit, offset)
	if err != nil {
		return api.Fail(c, err)
	}
	return api.Success(c, fiber.StatusOK, fiber.Map{"users": users, "total": total})
}

func (ctrl *UserController) UpdateProfile(c *fiber.Ctx) error {
	usr := middleware.UserFromContext(c)
	if usr == nil {
		return api.Fail(c, apperrors.ErrInvalidToken)
	}
	var req updateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return api.FailValidation(c, "invalid request body")
	}
	if err := ctrl.Service.UpdateProfile(c.Context(), usr.ID.Hex(), req.Email, req.Phone); err != nil {
		return api.Fail(c, err)
	}
	return api.Success(c, fiber.StatusOK, fiber.Map{"message": "profile updated"})
}

func (ctrl *UserController) ChangePassword(c *fiber.Ctx) error {
	usr := middleware.UserFromContext(c)
	if usr == nil {
		return api.Fail(c, apperrors.ErrInvalidToken)
	}
	var req changePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return api.FailValidation(c, "invalid request body")
	}
	if err := ctrl.Service.ChangePassword(c.Context(), usr.ID.Hex(), req.CurrentPassword, req.NewPassword); err != nil {
		return api.Fail(c, err)
	}
	return api.Success(c, fiber.StatusOK, fiber.Map{"message": "password changed"})
}

func (ctrl *UserController) SetRole(c *fiber.Ctx) error {
	var req setRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return api.FailValidation(c, "invalid request body")
	}
	if err := ctrl.Service.SetRole(c.Context(), c.Params("id"), req.Role, req.RoleID, req.TheaterID); err != nil {
		return api.Fail(c, err)
	}
	return api.Success(c, fiber.StatusOK, fiber.Map{"message": "role updated"})
}

func (ctrl *UserController) SetPermissions(c *fiber.Ctx) error {
	var req setPermissionsRequest
	if err := c.BodyParser(&req); err != nil {
		return api.FailValidation(c, "invalid request body")
	}
	if err := ctrl.Service.SetPermissions(c.Context(), c.Params("id"), req.Permissions); err != nil {
		return api.Fail(c, err)
	}
	return api.Success(c, fiber.StatusOK, fiber.Map{"message": "permissions updated"})
}

func (ctrl *UserController) SetStatus(c *fiber.Ctx) error {
	var req setStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return api.FailValidation(c, "invalid request body")
	}
	if err := ctrl.Service.SetStatus(c.Context(), c.Params("id"), req.Status); err != nil {
		return api.Fail(c, err)
	}
	return api.Success(c, fiber.StatusOK, fiber.Map{"message": "status updated"})
}

func (ctrl *UserController) Delete(c *fiber.Ctx) error {
	if err := ctrl.Service.Delete(c.Context(), c.Params("id")); err != nil {
		return api.Fail(c, err)
	}
	return api.Success(c, fiber.StatusOK, fiber.Map{"message": "user deleted"})
}
