package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/bplabo/license-portal/internal/auth"
	"github.com/bplabo/license-portal/internal/config"
	"github.com/bplabo/license-portal/internal/domain"
	"github.com/bplabo/license-portal/internal/repository"
	apperrors "github.com/bplabo/license-portal/pkg/util/errorutil"
)

// AccountService handles self-service profile operations.
type AccountService struct {
	accounts   repository.AccountRepository
	bcryptCost int
}

// NewAccountService builds the service.
func NewAccountService(cfg config.Config, accounts repository.AccountRepository) *AccountService {
	return &AccountService{accounts: accounts, bcryptCost: cfg.Auth.BcryptCost}
}

// Profile returns the account for the given id.
func (s *AccountService) Profile(ctx context.Context, accountID string) (*domain.Account, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("account", nil)
		}
		return nil, err
	}
	return account, nil
}

// UpdateProfile changes username and/or email after uniqueness checks.
// Empty fields are left untouched.
func (s *AccountService) UpdateProfile(ctx context.Context, accountID, username, email string) (*domain.Account, error) {
	account, err := s.Profile(ctx, accountID)
	if err != nil {
		return nil, err
	}

	changed := false
	if username != "" && username != account.Username {
		account.Username = username
		changed = true
	}
	if email != "" && email != account.Email {
		account.Email = email
		changed = true
	}
	if !changed {
		return account, nil
	}

	if err := s.accounts.Update(ctx, account); err != nil {
		if repository.IsUniqueViolation(err, "") {
			return nil, ErrUserExists
		}
		return nil, err
	}
	return account, nil
}

// ChangePassword verifies the current password before storing a new hash.
// Hashing is an explicit step here, not a persistence hook, so the contract
// stays visible and testable.
func (s *AccountService) ChangePassword(ctx context.Context, accountID, currentPassword, newPassword string) error {
	account, err := s.Profile(ctx, accountID)
	if err != nil {
		return err
	}

	if err := auth.ComparePassword(account.PasswordHash, currentPassword); err != nil {
		return ErrInvalidCurrentPassword
	}

	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}
	account.PasswordHash = hash
	return s.accounts.Update(ctx, account)
}
