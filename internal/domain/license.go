package domain

import "time"

// LicenseCode is one ledger row: a code issued for an employee ID and its
// redemption state. Invariant: IsUsed is true exactly when UsedBy is set.
// A redeemed code transitions back to unused only when the owning account is
// deleted.
type LicenseCode struct {
	ID         string     `json:"id"`
	Code       string     `json:"code"`
	EmployeeID string     `json:"employeeId"`
	IsUsed     bool       `json:"isUsed"`
	UsedBy     *string    `json:"usedBy"`
	UsedAt     *time.Time `json:"usedAt"`
	CreatedAt  time.Time  `json:"createdAt"`
}
