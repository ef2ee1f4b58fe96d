package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/bplabo/license-portal/internal/domain"
	"github.com/bplabo/license-portal/internal/events"
	"github.com/bplabo/license-portal/internal/license"
	"github.com/bplabo/license-portal/internal/repository"
	apperrors "github.com/bplabo/license-portal/pkg/util/errorutil"
)

// AdminService covers whitelist management, license administration and
// account administration.
type AdminService struct {
	accounts   repository.AccountRepository
	employees  repository.EmployeeRepository
	licenses   repository.LicenseRepository
	tx         TxRunner
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// AdminDependencies encapsulates repo requirements for the admin service.
type AdminDependencies struct {
	AccountRepo  repository.AccountRepository
	EmployeeRepo repository.EmployeeRepository
	LicenseRepo  repository.LicenseRepository
	Tx           TxRunner
	Dispatcher   events.Dispatcher
}

// NewAdminService builds the service.
func NewAdminService(logger *zap.Logger, deps AdminDependencies) *AdminService {
	return &AdminService{
		accounts:   deps.AccountRepo,
		employees:  deps.EmployeeRepo,
		licenses:   deps.LicenseRepo,
		tx:         deps.Tx,
		dispatcher: deps.Dispatcher,
		logger:     logger,
		now:        time.Now,
	}
}

// ListEmployees returns the whitelist ordered by employee ID.
func (s *AdminService) ListEmployees(ctx context.Context) ([]domain.Employee, error) {
	return s.employees.List(ctx)
}

// AddEmployee whitelists an employee ID.
func (s *AdminService) AddEmployee(ctx context.Context, employeeID, name string) (*domain.Employee, error) {
	employee := &domain.Employee{
		EmployeeID: domain.NormalizeEmployeeID(employeeID),
		Name:       name,
	}
	if err := s.employees.Create(ctx, employee); err != nil {
		if repository.IsUniqueViolation(err, "") {
			return nil, ErrDuplicateEmployee
		}
		return nil, err
	}
	return employee, nil
}

// RemoveEmployee deletes a whitelist entry. Accounts already registered under
// the ID and any issued codes are unaffected.
func (s *AdminService) RemoveEmployee(ctx context.Context, employeeID string) error {
	err := s.employees.Delete(ctx, domain.NormalizeEmployeeID(employeeID))
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound("employee", nil)
	}
	return err
}

// LicenseIssueResult reports the outcome of one batch-generation entry.
type LicenseIssueResult struct {
	EmployeeID  string `json:"employeeId"`
	LicenseCode string `json:"licenseCode,omitempty"`
	Status      string `json:"status,omitempty"`
	Error       string `json:"error,omitempty"`
}

// GenerateLicenses issues codes for the given employee IDs, skipping IDs that
// are not whitelisted or already hold a code. Failures are reported per entry
// rather than aborting the batch.
func (s *AdminService) GenerateLicenses(ctx context.Context, employeeIDs []string) (created, failed []LicenseIssueResult, err error) {
	for _, raw := range employeeIDs {
		employeeID := domain.NormalizeEmployeeID(raw)

		if _, err := s.employees.GetByEmployeeID(ctx, employeeID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				failed = append(failed, LicenseIssueResult{
					EmployeeID: raw,
					Error:      "Employee ID not in whitelist. Please add it first.",
				})
				continue
			}
			return nil, nil, err
		}

		lic := &domain.LicenseCode{
			Code:       license.Generate(employeeID),
			EmployeeID: employeeID,
		}
		if err := s.licenses.Issue(ctx, lic); err != nil {
			if repository.IsUniqueViolation(err, "") {
				failed = append(failed, LicenseIssueResult{
					EmployeeID: raw,
					Error:      ErrLicenseAlreadyIssued.Message,
				})
				continue
			}
			return nil, nil, err
		}
		created = append(created, LicenseIssueResult{
			EmployeeID:  raw,
			LicenseCode: lic.Code,
			Status:      "created",
		})
	}
	return created, failed, nil
}

// ListLicenses returns one page of the ledger plus the total count.
func (s *AdminService) ListLicenses(ctx context.Context, page, limit int) ([]domain.LicenseCode, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 500 {
		limit = 100
	}
	return s.licenses.List(ctx, limit, (page-1)*limit)
}

// ListAccounts returns one page of accounts plus the total count.
func (s *AdminService) ListAccounts(ctx context.Context, page, limit int) ([]domain.Account, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}
	return s.accounts.List(ctx, limit, (page-1)*limit)
}

// UpdateAccountRole changes an account's role. Admins cannot change their own
// role, which keeps at least the acting admin in place.
func (s *AdminService) UpdateAccountRole(ctx context.Context, actorID, accountID string, role domain.Role) error {
	if actorID == accountID {
		return ErrCannotChangeOwnRole
	}
	if !role.Valid() {
		return apperrors.NewValidationError("invalid role specified", map[string]any{"role": role})
	}

	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("account", nil)
		}
		return err
	}
	account.Role = role
	return s.accounts.Update(ctx, account)
}

// UpdateAccountStatus enables or disables an account.
func (s *AdminService) UpdateAccountStatus(ctx context.Context, accountID string, isActive bool) error {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("account", nil)
		}
		return err
	}
	account.IsActive = isActive
	return s.accounts.Update(ctx, account)
}

// DeleteAccount removes an account and releases its license code in the same
// transaction, so the code becomes redeemable again exactly when the account
// is gone.
func (s *AdminService) DeleteAccount(ctx context.Context, accountID string) error {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("account", nil)
		}
		return err
	}

	err = s.tx.RunInTx(ctx, func(tx pgx.Tx) error {
		licenses := s.licenses.WithTx(tx)
		accounts := s.accounts.WithTx(tx)

		if account.LicenseCode != "" {
			if err := licenses.Release(ctx, account.LicenseCode); err != nil && !errors.Is(err, pgx.ErrNoRows) {
				return err
			}
		}
		return accounts.Delete(ctx, accountID)
	})
	if err != nil {
		return err
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			Type:      events.EventAccountDeleted,
			AccountID: account.ID,
			Payload: events.AccountDeletedPayload{
				Username:    account.Username,
				LicenseCode: account.LicenseCode,
			},
		})
		_ = s.dispatcher.Publish(ctx, events.Event{
			Type:      events.EventLicenseReleased,
			AccountID: account.ID,
			Payload: events.LicenseReleasedPayload{
				Code:       account.LicenseCode,
				EmployeeID: account.EmployeeID,
			},
		})
	}
	return nil
}

// Stats aggregates counts for the admin dashboard; recent registrations cover
// the trailing 30 days.
func (s *AdminService) Stats(ctx context.Context) (domain.AccountStats, error) {
	stats, err := s.accounts.Stats(ctx, s.now().AddDate(0, 0, -30))
	if err != nil {
		return domain.AccountStats{}, err
	}

	total, used, err := s.licenses.Counts(ctx)
	if err != nil {
		return domain.AccountStats{}, err
	}
	stats.TotalLicenses = total
	stats.UsedLicenses = used
	stats.AvailableLicenses = total - used
	return stats, nil
}
