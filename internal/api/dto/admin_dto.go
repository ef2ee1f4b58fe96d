package dto

// AddEmployeeRequest payload for whitelisting an employee ID.
type AddEmployeeRequest struct {
	EmployeeID string `json:"employeeId" validate:"required,employee_id"`
	Name       string `json:"name" validate:"omitempty,max=100"`
}

// GenerateLicensesRequest payload for batch license generation.
type GenerateLicensesRequest struct {
	EmployeeIDs []string `json:"employeeIds" validate:"required,min=1,dive,required"`
}

// UpdateRoleRequest payload for changing an account's role.
type UpdateRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=user admin"`
}

// UpdateStatusRequest payload for enabling/disabling an account.
type UpdateStatusRequest struct {
	IsActive *bool `json:"isActive" validate:"required"`
}

// Pagination echoes paging parameters alongside list responses.
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int64 `json:"pages"`
}

// NewPagination computes the page count for a result set.
func NewPagination(page, limit int, total int64) Pagination {
	pages := total / int64(limit)
	if total%int64(limit) != 0 {
		pages++
	}
	return Pagination{Page: page, Limit: limit, Total: total, Pages: pages}
}
