package domain

import (
	"strings"
	"time"
)

// Employee is one entry of the registration whitelist: an employee ID an
// administrator has authorized to create an account. Deleting an entry does
// not invalidate accounts already created under it.
type Employee struct {
	ID         string    `json:"id"`
	EmployeeID string    `json:"employeeId"`
	Name       string    `json:"name,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// bootstrapAdminIDs are the seed identifiers that are always authorized to
// register and receive the admin role, even without a whitelist row. Both the
// whitelist check and role assignment consult this one set.
var bootstrapAdminIDs = map[string]struct{}{
	"BPDON": {},
	"BPJOE": {},
}

// IsBootstrapAdmin reports whether the employee ID is one of the seed admin
// identifiers. Expects a normalized (upper-case) ID.
func IsBootstrapAdmin(employeeID string) bool {
	_, ok := bootstrapAdminIDs[employeeID]
	return ok
}

// NormalizeEmployeeID canonicalizes an employee ID for storage and lookups.
func NormalizeEmployeeID(employeeID string) string {
	return strings.ToUpper(strings.TrimSpace(employeeID))
}
