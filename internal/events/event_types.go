package events

import (
	"time"

	"github.com/bplabo/license-portal/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventAccountRegistered EventType = "account_registered"
	EventAccountLocked     EventType = "account_locked"
	EventAccountDeleted    EventType = "account_deleted"
	EventLicenseReleased   EventType = "license_released"
)

// Event represents a security-relevant occurrence emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	AccountID string      `json:"account_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// AccountRegisteredPayload payload.
type AccountRegisteredPayload struct {
	Username   string      `json:"username"`
	EmployeeID string      `json:"employee_id"`
	Role       domain.Role `json:"role"`
}

// AccountLockedPayload payload.
type AccountLockedPayload struct {
	Username  string    `json:"username"`
	Attempts  int       `json:"attempts"`
	LockUntil time.Time `json:"lock_until"`
}

// AccountDeletedPayload payload.
type AccountDeletedPayload struct {
	Username    string `json:"username"`
	LicenseCode string `json:"license_code"`
}

// LicenseReleasedPayload payload.
type LicenseReleasedPayload struct {
	Code       string `json:"code"`
	EmployeeID string `json:"employee_id"`
}
