package dto

// UpdateProfileRequest payload for profile changes; omitted fields keep their
// current values.
type UpdateProfileRequest struct {
	Username string `json:"username" validate:"omitempty,min=3,max=50,username_chars"`
	Email    string `json:"email" validate:"omitempty,email,max=100"`
}

// ChangePasswordRequest payload for authenticated password change.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6,max=128"`
}
