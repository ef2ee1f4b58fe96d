package domain

import "time"

// Role grants either regular or administrative access.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Account is the domain model for a registered employee account.
// LoginAttempts and LockUntil are owned by the login flow and must only be
// mutated through the account repository's atomic operations.
type Account struct {
	ID            string
	Username      string
	Email         string
	EmployeeID    string
	PasswordHash  string
	LicenseCode   string
	Role          Role
	IsActive      bool
	LoginAttempts int
	LockUntil     *time.Time
	LastLogin     *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Locked reports whether the account is locked out at the given instant.
// Expiry is lazy: a lock in the past counts as unlocked and is cleared by the
// next login attempt, not by a background sweep.
func (a *Account) Locked(now time.Time) bool {
	return a.LockUntil != nil && a.LockUntil.After(now)
}

// PublicAccount is the projection exposed to API callers. The password hash
// and lockout internals never leave the service boundary.
type PublicAccount struct {
	ID         string     `json:"id"`
	Username   string     `json:"username"`
	Email      string     `json:"email"`
	EmployeeID string     `json:"employeeId"`
	Role       Role       `json:"role"`
	IsActive   bool       `json:"isActive"`
	CreatedAt  time.Time  `json:"createdAt"`
	LastLogin  *time.Time `json:"lastLogin"`
}

// Public returns the caller-facing projection of the account.
func (a *Account) Public() PublicAccount {
	return PublicAccount{
		ID:         a.ID,
		Username:   a.Username,
		Email:      a.Email,
		EmployeeID: a.EmployeeID,
		Role:       a.Role,
		IsActive:   a.IsActive,
		CreatedAt:  a.CreatedAt,
		LastLogin:  a.LastLogin,
	}
}

// AccountStats aggregates counts for the admin dashboard.
type AccountStats struct {
	TotalAccounts       int64 `json:"totalUsers"`
	ActiveAccounts      int64 `json:"activeUsers"`
	AdminAccounts       int64 `json:"adminUsers"`
	TotalLicenses       int64 `json:"totalLicenses"`
	UsedLicenses        int64 `json:"usedLicenses"`
	AvailableLicenses   int64 `json:"availableLicenses"`
	RecentRegistrations int64 `json:"recentRegistrations"`
}
