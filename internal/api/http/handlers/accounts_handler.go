package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/bplabo/license-portal/internal/api/dto"
	"github.com/bplabo/license-portal/internal/api/validate"
	"github.com/bplabo/license-portal/internal/auth"
	"github.com/bplabo/license-portal/internal/service"
	apperrors "github.com/bplabo/license-portal/pkg/util/errorutil"
)

// AccountsHandler exposes self-service profile endpoints.
type AccountsHandler struct {
	accounts *service.AccountService
}

// NewAccountsHandler constructs handler.
func NewAccountsHandler(accountService *service.AccountService) *AccountsHandler {
	return &AccountsHandler{accounts: accountService}
}

// Profile handles GET /api/users/profile.
func (h *AccountsHandler) Profile(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	return c.JSON(fiber.Map{"user": principal.Account.Public()})
}

// UpdateProfile handles PUT /api/users/profile.
func (h *AccountsHandler) UpdateProfile(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := validate.Struct(req); err != nil {
		return err
	}

	account, err := h.accounts.UpdateProfile(c.Context(), principal.Account.ID, req.Username, req.Email)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "Profile updated successfully",
		"user":    account.Public(),
	})
}

// ChangePassword handles PUT /api/users/password.
func (h *AccountsHandler) ChangePassword(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := validate.Struct(req); err != nil {
		return err
	}

	if err := h.accounts.ChangePassword(c.Context(), principal.Account.ID, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Password changed successfully"})
}
