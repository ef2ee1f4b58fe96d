package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/bplabo/license-portal/internal/auth"
	"github.com/bplabo/license-portal/internal/config"
	"github.com/bplabo/license-portal/internal/domain"
	"github.com/bplabo/license-portal/internal/license"
	apperrors "github.com/bplabo/license-portal/pkg/util/errorutil"
)

func newAccountFixture(t *testing.T) (*AccountService, *fakeAccounts) {
	t.Helper()
	cfg := config.Config{}
	cfg.Auth.BcryptCost = bcrypt.MinCost
	accounts := newFakeAccounts()
	return NewAccountService(cfg, accounts), accounts
}

func seedAccount(t *testing.T, accounts *fakeAccounts, username, email, password string) *domain.Account {
	t.Helper()
	hash, err := auth.HashPassword(password, bcrypt.MinCost)
	require.NoError(t, err)

	// Every persisted account holds a redeemed license code, and codes are
	// unique per account.
	employeeID := domain.NormalizeEmployeeID(strings.ToUpper(username))
	account := &domain.Account{
		Username:     username,
		Email:        email,
		EmployeeID:   employeeID,
		PasswordHash: hash,
		LicenseCode:  license.Generate(employeeID),
		Role:         domain.RoleUser,
		IsActive:     true,
	}
	require.NoError(t, accounts.Create(context.Background(), account))
	return account
}

func TestProfileNotFound(t *testing.T) {
	t.Parallel()
	svc, _ := newAccountFixture(t)

	_, err := svc.Profile(context.Background(), "missing")
	var domainErr *apperrors.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "NOT_FOUND", domainErr.Code)
}

func TestUpdateProfilePartial(t *testing.T) {
	t.Parallel()
	svc, accounts := newAccountFixture(t)
	account := seedAccount(t, accounts, "worker", "worker@bplabo.jp", "pw-original")

	updated, err := svc.UpdateProfile(context.Background(), account.ID, "renamed", "")
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Username)
	assert.Equal(t, "worker@bplabo.jp", updated.Email)

	stored := accounts.rows[account.ID]
	assert.Equal(t, "renamed", stored.Username)
}

func TestUpdateProfileDuplicateEmail(t *testing.T) {
	t.Parallel()
	svc, accounts := newAccountFixture(t)
	seedAccount(t, accounts, "first", "first@bplabo.jp", "pw")
	second := seedAccount(t, accounts, "second", "second@bplabo.jp", "pw")

	_, err := svc.UpdateProfile(context.Background(), second.ID, "", "first@bplabo.jp")
	require.ErrorIs(t, err, ErrUserExists)
}

func TestChangePasswordWrongCurrent(t *testing.T) {
	t.Parallel()
	svc, accounts := newAccountFixture(t)
	account := seedAccount(t, accounts, "worker", "worker@bplabo.jp", "pw-original")

	err := svc.ChangePassword(context.Background(), account.ID, "wrong", "pw-next")
	require.ErrorIs(t, err, ErrInvalidCurrentPassword)
}

func TestChangePasswordRehashes(t *testing.T) {
	t.Parallel()
	svc, accounts := newAccountFixture(t)
	account := seedAccount(t, accounts, "worker", "worker@bplabo.jp", "pw-original")

	require.NoError(t, svc.ChangePassword(context.Background(), account.ID, "pw-original", "pw-next"))

	stored := accounts.rows[account.ID]
	assert.Error(t, auth.ComparePassword(stored.PasswordHash, "pw-original"))
	assert.NoError(t, auth.ComparePassword(stored.PasswordHash, "pw-next"))
}
