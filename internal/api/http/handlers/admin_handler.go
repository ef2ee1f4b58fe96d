package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/bplabo/license-portal/internal/api/dto"
	"github.com/bplabo/license-portal/internal/api/validate"
	"github.com/bplabo/license-portal/internal/auth"
	"github.com/bplabo/license-portal/internal/domain"
	"github.com/bplabo/license-portal/internal/service"
	apperrors "github.com/bplabo/license-portal/pkg/util/errorutil"
)

// AdminHandler exposes whitelist, license and account administration.
type AdminHandler struct {
	admin *service.AdminService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(adminService *service.AdminService) *AdminHandler {
	return &AdminHandler{admin: adminService}
}

// ListEmployees handles GET /api/admin/employees.
func (h *AdminHandler) ListEmployees(c *fiber.Ctx) error {
	employees, err := h.admin.ListEmployees(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"employees": employees})
}

// AddEmployee handles POST /api/admin/employees.
func (h *AdminHandler) AddEmployee(c *fiber.Ctx) error {
	var req dto.AddEmployeeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := validate.Struct(req); err != nil {
		return err
	}

	employee, err := h.admin.AddEmployee(c.Context(), req.EmployeeID, req.Name)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"message":  "Employee added to whitelist.",
		"employee": employee,
	})
}

// RemoveEmployee handles DELETE /api/admin/employees/:employeeId.
func (h *AdminHandler) RemoveEmployee(c *fiber.Ctx) error {
	if err := h.admin.RemoveEmployee(c.Context(), c.Params("employeeId")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Employee removed from whitelist."})
}

// GenerateLicenses handles POST /api/admin/license-codes/generate.
func (h *AdminHandler) GenerateLicenses(c *fiber.Ctx) error {
	var req dto.GenerateLicensesRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := validate.Struct(req); err != nil {
		return err
	}

	created, failed, err := h.admin.GenerateLicenses(c.Context(), req.EmployeeIDs)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": strconv.Itoa(len(created)) + " license codes generated",
		"results": created,
		"errors":  failed,
	})
}

// ListLicenses handles GET /api/admin/license-codes.
func (h *AdminHandler) ListLicenses(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 100)

	licenses, total, err := h.admin.ListLicenses(c.Context(), page, limit)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"licenses":   licenses,
		"pagination": dto.NewPagination(page, limit, total),
	})
}

// ListAccounts handles GET /api/admin/users.
func (h *AdminHandler) ListAccounts(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 50)

	accounts, total, err := h.admin.ListAccounts(c.Context(), page, limit)
	if err != nil {
		return err
	}

	users := make([]domain.PublicAccount, 0, len(accounts))
	for _, account := range accounts {
		users = append(users, account.Public())
	}
	return c.JSON(fiber.Map{
		"users":      users,
		"pagination": dto.NewPagination(page, limit, total),
	})
}

// UpdateRole handles PUT /api/admin/users/:id/role.
func (h *AdminHandler) UpdateRole(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}

	var req dto.UpdateRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := validate.Struct(req); err != nil {
		return err
	}

	if err := h.admin.UpdateAccountRole(c.Context(), principal.Account.ID, c.Params("id"), domain.Role(req.Role)); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "User role updated successfully to " + req.Role})
}

// UpdateStatus handles PUT /api/admin/users/:id/status.
func (h *AdminHandler) UpdateStatus(c *fiber.Ctx) error {
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := validate.Struct(req); err != nil {
		return err
	}

	if err := h.admin.UpdateAccountStatus(c.Context(), c.Params("id"), *req.IsActive); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "User status updated successfully"})
}

// DeleteAccount handles DELETE /api/admin/users/:id.
func (h *AdminHandler) DeleteAccount(c *fiber.Ctx) error {
	if err := h.admin.DeleteAccount(c.Context(), c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "User deleted successfully"})
}

// Stats handles GET /api/admin/stats.
func (h *AdminHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.admin.Stats(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"stats": stats})
}
