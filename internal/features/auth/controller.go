package auth

import (
	"github.com/aedentekgit/yqpaynow-sub013/internal/apperrors"
	"github.com/aedentekgit/yqpaynow-sub013/internal/common/api"
	"github.com/aedentekgit/yqpaynow-sub013/internal/common/models"
	"github.com/aedentekgit/yqpaynow-sub013/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type AuthController struct {
	AuthService AuthService
}

func NewAuthController(authService AuthService) *AuthController {
	return &AuthController{
		AuthService: authService,
	}
}

type RegisterRequest struct {
	Username  string          `json:"username"`
	Password  string          `json:"password"`
	Email     string          `json:"email"`
	Phone     string          `json:"phone"`
	Role      models.RoleKind `json:"role"`
	RoleID    string          `json:"role_id"`
	TheaterID string          `json:"theater_id"`
}

type LoginRequest struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	DeviceInfo string `json:"device_info"`
}

func (ctrl *AuthController) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return api.FailValidation(c, "invalid request body")
	}

	// Self-registration is customer-only; staff accounts come from admins.
	caller := middleware.UserFromContext(c)
	if req.Role != "" && req.Role != models.RoleCustomer {
		if caller == nil || !caller.HasPermission("users", "create") {
			req.Role = models.RoleCustomer
		}
	}

	usr, err := ctrl.AuthService.Register(c.Context(), RegisterInput{
		Username:  req.Username,
		Password:  req.Password,
		Email:     req.Email,
		Phone:     req.Phone,
		Role:      req.Role,
		RoleID:    req.RoleID,
		TheaterID: req.TheaterID,
	})
	if err != nil {
		return api.Fail(c, err)
	}

	return api.Success(c, fiber.StatusCreated, usr)
}

func (ctrl *AuthController) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return api.FailValidation(c, "invalid request body")
	}

	deviceInfo := req.DeviceInfo
	if deviceInfo == "" {
		deviceInfo = c.Get("User-Agent")
	}

	result, err := ctrl.AuthService.Login(c.Context(), req.Username, req.Password, deviceInfo)
	if err != nil {
		return api.Fail(c, err)
	}

	return api.Success(c, fiber.StatusOK, result)
}

func (ctrl *AuthController) Logout(c *fiber.Ctx) error {
	usr := middleware.UserFromContext(c)
	token := middleware.TokenFromContext(c)
	if usr == nil || token == "" {
		return api.Fail(c, apperrors.ErrInvalidToken)
	}

	if err := ctrl.AuthService.Logout(c.Context(), usr, token); err != nil {
		return api.Fail(c, err)
	}

	return api.Success(c, fiber.StatusOK, fiber.Map{"message": "logged out"})
}
