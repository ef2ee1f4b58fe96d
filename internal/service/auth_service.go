package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/bplabo/license-portal/internal/auth"
	"github.com/bplabo/license-portal/internal/config"
	"github.com/bplabo/license-portal/internal/domain"
	"github.com/bplabo/license-portal/internal/events"
	"github.com/bplabo/license-portal/internal/license"
	"github.com/bplabo/license-portal/internal/repository"
)

const (
	// maxLoginAttempts consecutive failures arm the lockout window.
	maxLoginAttempts = 5
	// lockoutDuration is the fixed lockout window; expiry is evaluated
	// lazily on the next attempt.
	lockoutDuration = 2 * time.Hour
)

// TxRunner runs a function inside a database transaction.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(tx pgx.Tx) error) error
}

// RegisterInput carries a registration request. Field shapes are validated at
// the API boundary; this service checks business rules only.
type RegisterInput struct {
	Username    string
	Email       string
	EmployeeID  string
	LicenseCode string
	Password    string
}

// AuthService coordinates registration and login flows.
type AuthService struct {
	accounts   repository.AccountRepository
	employees  repository.EmployeeRepository
	licenses   repository.LicenseRepository
	tx         TxRunner
	dispatcher events.Dispatcher
	tokenMgr   *auth.TokenManager
	logger     *zap.Logger
	bcryptCost int
	now        func() time.Time
}

// AuthDependencies encapsulates repo requirements for the auth service.
type AuthDependencies struct {
	AccountRepo  repository.AccountRepository
	EmployeeRepo repository.EmployeeRepository
	LicenseRepo  repository.LicenseRepository
	Tx           TxRunner
	Dispatcher   events.Dispatcher
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, logger *zap.Logger, deps AuthDependencies) *AuthService {
	return &AuthService{
		accounts:   deps.AccountRepo,
		employees:  deps.EmployeeRepo,
		licenses:   deps.LicenseRepo,
		tx:         deps.Tx,
		dispatcher: deps.Dispatcher,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		logger:     logger,
		bcryptCost: cfg.Auth.BcryptCost,
		now:        time.Now,
	}
}

// Register creates an account for a whitelisted employee presenting the
// matching license code. Each gate short-circuits before any side effect;
// account creation and code redemption happen in one transaction.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.Account, string, time.Time, error) {
	employeeID := domain.NormalizeEmployeeID(in.EmployeeID)

	if !domain.IsBootstrapAdmin(employeeID) {
		if _, err := s.employees.GetByEmployeeID(ctx, employeeID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, "", time.Time{}, ErrEmployeeNotWhitelisted
			}
			return nil, "", time.Time{}, err
		}
	}

	// Validity is purely a function of the employee ID; the ledger is only
	// consulted for single-use enforcement.
	if in.LicenseCode != license.Generate(employeeID) {
		return nil, "", time.Time{}, ErrInvalidLicenseCode
	}

	if lic, err := s.licenses.GetByCode(ctx, in.LicenseCode); err == nil {
		if lic.IsUsed {
			return nil, "", time.Time{}, ErrLicenseCodeUsed
		}
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, "", time.Time{}, err
	}

	exists, err := s.accounts.ExistsByUsernameOrEmail(ctx, in.Username, in.Email)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	if exists {
		return nil, "", time.Time{}, ErrUserExists
	}

	role := domain.RoleUser
	if domain.IsBootstrapAdmin(employeeID) {
		role = domain.RoleAdmin
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	account := &domain.Account{
		Username:     in.Username,
		Email:        in.Email,
		EmployeeID:   employeeID,
		PasswordHash: hash,
		LicenseCode:  in.LicenseCode,
		Role:         role,
		IsActive:     true,
	}

	err = s.tx.RunInTx(ctx, func(tx pgx.Tx) error {
		accounts := s.accounts.WithTx(tx)
		licenses := s.licenses.WithTx(tx)

		if err := accounts.Create(ctx, account); err != nil {
			return err
		}
		if _, err := licenses.FindOrIssue(ctx, employeeID, in.LicenseCode); err != nil {
			return err
		}
		return licenses.Redeem(ctx, in.LicenseCode, account.ID, s.now())
	})
	if err != nil {
		// A race lost to a concurrent registration is equivalent to having
		// failed the corresponding gate above.
		switch {
		case errors.Is(err, repository.ErrAlreadyRedeemed),
			repository.IsUniqueViolation(err, "accounts_license_code_key"):
			return nil, "", time.Time{}, ErrLicenseCodeUsed
		case repository.IsUniqueViolation(err, "accounts_username_key"),
			repository.IsUniqueViolation(err, "accounts_email_key"):
			return nil, "", time.Time{}, ErrUserExists
		}
		return nil, "", time.Time{}, err
	}

	s.publish(ctx, events.Event{
		Type:      events.EventAccountRegistered,
		AccountID: account.ID,
		Payload: events.AccountRegisteredPayload{
			Username:   account.Username,
			EmployeeID: account.EmployeeID,
			Role:       account.Role,
		},
	})

	token, exp, err := s.tokenMgr.GenerateToken(account.ID, account.Role)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return account, token, exp, nil
}

// Login authenticates an account and advances the lockout state machine.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.Account, string, time.Time, error) {
	account, err := s.accounts.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", time.Time{}, ErrInvalidCredentials
		}
		return nil, "", time.Time{}, err
	}

	if !account.IsActive {
		return nil, "", time.Time{}, ErrAccountInactive
	}

	now := s.now()
	if account.Locked(now) {
		return nil, "", time.Time{}, ErrAccountLocked
	}

	if err := auth.ComparePassword(account.PasswordHash, password); err != nil {
		attempts, lockUntil, recErr := s.accounts.RecordFailedAttempt(ctx, account.ID, now, maxLoginAttempts, lockoutDuration)
		if recErr != nil {
			s.logger.Error("record failed login attempt", zap.String("account_id", account.ID), zap.Error(recErr))
		} else if lockUntil != nil && attempts >= maxLoginAttempts {
			s.publish(ctx, events.Event{
				Type:      events.EventAccountLocked,
				AccountID: account.ID,
				Payload: events.AccountLockedPayload{
					Username:  account.Username,
					Attempts:  attempts,
					LockUntil: *lockUntil,
				},
			})
		}
		return nil, "", time.Time{}, ErrInvalidCredentials
	}

	if err := s.accounts.ResetLoginAttempts(ctx, account.ID, now); err != nil {
		return nil, "", time.Time{}, err
	}
	account.LoginAttempts = 0
	account.LockUntil = nil
	lastLogin := now
	account.LastLogin = &lastLogin

	token, exp, err := s.tokenMgr.GenerateToken(account.ID, account.Role)
	if err != nil {
		return nil, "", time.Time{}, err
	}
	return account, token, exp, nil
}

// Logout currently no-ops for the stateless JWT approach.
func (s *AuthService) Logout(_ context.Context, _ string) error {
	return nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

// WithClock overrides the time source; used by tests.
func (s *AuthService) WithClock(now func() time.Time) *AuthService {
	s.now = now
	return s
}

func (s *AuthService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("publish event", zap.String("type", string(event.Type)), zap.Error(err))
	}
}
