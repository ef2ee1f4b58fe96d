package dto

import "time"

// RegisterRequest payload for new accounts. Employee IDs must already be
// upper case on the wire, matching the original validation rules; the service
// still normalizes before any lookup.
type RegisterRequest struct {
	Username    string `json:"username" validate:"required,min=3,max=50,username_chars"`
	Email       string `json:"email" validate:"required,email,max=100"`
	EmployeeID  string `json:"employeeId" validate:"required,employee_id"`
	LicenseCode string `json:"licenseCode" validate:"required,license_code"`
	Password    string `json:"password" validate:"required,min=6,max=128"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
