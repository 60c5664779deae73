package access

import (
	"github.com/aedentekgit/yqpaynow-sub013/internal/apperrors"
	"github.com/aedentekgit/yqpaynow-sub013/internal/common/api"
	"github.com/aedentekgit/yqpaynow-sub013/internal/common/models"
	"github.com/aedentekgit/yqpaynow-sub013/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AccessController struct {
	Service AccessService
}

func NewAccessController(service AccessService) *AccessController {
	return &AccessController{Service: service}
}

type grantRequest struct {
	RoleID    string `json:"role_id"`
	Page      string `json:"page"`
	HasAccess bool   `json:"has_access"`
}

type registerPageRequest struct {
	Page     string `json:"page"`
	Category string `json:"category"`
}

type createRoleRequest struct {
	RoleName string `json:"role_name"`
}

// Matrix serves GET /api/page-access/:theaterId: pages plus per-role access.
func (ctrl *AccessController) Matrix(c *fiber.Ctx) error {
	pages, roles, err := ctrl.Service.Matrix(c.Context(), c.Params("theaterId"))
	if err != nil {
		return api.Fail(c, err)
	}
	return api.Success(c, fiber.StatusOK, fiber.Map{
		"page_access": pages,
		"roles":       roles.Roles,
	})
}

func (ctrl *AccessController) Grant(c *fiber.Ctx) error {
	var req grantRequest
	if err := c.BodyParser(&req); err != nil {
		return api.FailValidation(c, "invalid request body")
	}
	if err := ctrl.Service.Grant(c.Context(), c.Params("theaterId"), req.RoleID, req.Page, req.HasAccess); err != nil {
		return api.Fail(c, err)
	}
	return api.Success(c, fiber.StatusOK, fiber.Map{"message": "permission updated"})
}

func (ctrl *AccessController) RegisterPage(c *fiber.Ctx) error {
	var req registerPageRequest
	if err := c.BodyParser(&req); err != nil {
		return api.FailValidation(c, "invalid request body")
	}
	if err := ctrl.Service.RegisterPage(c.Context(), c.Params("theaterId"), req.Page, req.Category); err != nil {
		return api.Fail(c, err)
	}
	return api.Success(c, fiber.StatusCreated, fiber.Map{"message": "page registered"})
}

func (ctrl *AccessController) RemovePage(c *fiber.Ctx) error {
	if err := ctrl.Service.RemovePage(c.Context(), c.Params("theaterId"), c.Params("page")); err != nil {
		return api.Fail(c, err)
	}
	return api.Success(c, fiber.StatusOK, fiber.Map{"message": "page removed"})
}

func (ctrl *AccessController) CreateRole(c *fiber.Ctx) error {
	var req createRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return api.FailValidation(c, "invalid request body")
	}
	role, err := ctrl.Service.CreateRole(c.Context(), c.Params("theaterId"), req.RoleName)
	if err != nil {
		return api.Fail(c, err)
	}
	return api.Success(c, fiber.StatusCreated, role)
}

func (ctrl *AccessController) DeleteRole(c *fiber.Ctx) error {
	if err := ctrl.Service.DeleteRole(c.Context(), c.Params("theaterId"), c.Params("roleId")); err != nil {
		return api.Fail(c, err)
	}
	return api.Success(c, fiber.StatusOK, fiber.Map{"message": "role deleted"})
}

// Accessible lists the pages the caller may open. Super admins inspect any
// theater via the theater_id query parameter.
func (ctrl *AccessController) Accessible(c *fiber.Ctx) error {
	usr := middleware.UserFromContext(c)
	if usr == nil {
		return api.Fail(c, apperrors.ErrInvalidToken)
	}

	if usr.Role == models.RoleSuperAdmin && usr.TheaterID == nil {
		if q := c.Query("theater_id"); q != "" {
			oid, err := primitive.ObjectIDFromHex(q)
			if err != nil {
				return api.FailValidation(c, "invalid theater id")
			}
			scoped := *usr
			scoped.TheaterID = &oid
			usr = &scoped
		}
	}

	pages, err := ctrl.Service.ListAccessible(c.Context(), usr)
	if err != nil {
		return api.Fail(c, err)
	}
	return api.Success(c, fiber.StatusOK, pages)
}
