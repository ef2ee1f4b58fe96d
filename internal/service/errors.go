package service

import (
	"net/http"

	apperrors "github.com/bplabo/license-portal/pkg/util/errorutil"
)

// Expected protocol outcomes. All are recoverable by the caller and carry the
// error codes the original API exposed; anything else escalates to a generic
// internal failure. Login failures for unknown usernames and wrong passwords
// share one message to avoid username enumeration.
var (
	ErrEmployeeNotWhitelisted = apperrors.NewDomainError(
		"EMPLOYEE_NOT_WHITELISTED",
		"Employee ID not found in whitelist. Please contact your administrator.",
		http.StatusBadRequest, nil)
	ErrInvalidLicenseCode = apperrors.NewDomainError(
		"INVALID_LICENSE_CODE",
		"Invalid license code for this Employee ID.",
		http.StatusBadRequest, nil)
	ErrLicenseCodeUsed = apperrors.NewDomainError(
		"LICENSE_CODE_USED",
		"This license code has already been used.",
		http.StatusBadRequest, nil)
	ErrUserExists = apperrors.NewDomainError(
		"USER_EXISTS",
		"Username or email already exists.",
		http.StatusBadRequest, nil)
	ErrInvalidCredentials = apperrors.NewDomainError(
		"INVALID_CREDENTIALS",
		"Invalid username or password",
		http.StatusUnauthorized, nil)
	ErrAccountInactive = apperrors.NewDomainError(
		"ACCOUNT_INACTIVE",
		"Account is deactivated",
		http.StatusUnauthorized, nil)
	ErrAccountLocked = apperrors.NewDomainError(
		"ACCOUNT_LOCKED",
		"Account is temporarily locked due to too many failed login attempts",
		http.StatusUnauthorized, nil)
	ErrDuplicateEmployee = apperrors.NewDomainError(
		"DUPLICATE_EMPLOYEE_ID",
		"Employee ID already exists in the whitelist.",
		http.StatusConflict, nil)
	ErrLicenseAlreadyIssued = apperrors.NewDomainError(
		"ALREADY_ISSUED",
		"License code already exists for this employee",
		http.StatusConflict, nil)
	ErrInvalidCurrentPassword = apperrors.NewDomainError(
		"INVALID_CURRENT_PASSWORD",
		"Current password is incorrect",
		http.StatusBadRequest, nil)
	ErrCannotChangeOwnRole = apperrors.NewDomainError(
		"CANNOT_CHANGE_OWN_ROLE",
		"You cannot change your own role.",
		http.StatusForbidden, nil)
)
