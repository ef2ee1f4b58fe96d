package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/bplabo/license-portal/internal/api/dto"
	"github.com/bplabo/license-portal/internal/api/validate"
	"github.com/bplabo/license-portal/internal/service"
)

// AuthHandler exposes registration and login endpoints.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := validate.Struct(req); err != nil {
		return err
	}

	account, token, exp, err := h.auth.Register(c.Context(), service.RegisterInput{
		Username:    req.Username,
		Email:       req.Email,
		EmployeeID:  req.EmployeeID,
		LicenseCode: req.LicenseCode,
		Password:    req.Password,
	})
	if err != nil {
		return err
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"message": "Account created successfully",
		"user":    account.Public(),
		"auth":    dto.AuthResponse{Token: token, ExpiresAt: exp},
	})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := validate.Struct(req); err != nil {
		return err
	}

	account, token, exp, err := h.auth.Login(c.Context(), req.Username, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"message": "Login successful",
		"user":    account.Public(),
		"auth":    dto.AuthResponse{Token: token, ExpiresAt: exp},
	})
}

// Logout handles POST /api/auth/logout. Tokens are stateless, so this only
// acknowledges the client dropping its copy.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := h.auth.Logout(c.Context(), ""); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Logged out"})
}
