package service

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/bplabo/license-portal/internal/domain"
	"github.com/bplabo/license-portal/internal/events"
	"github.com/bplabo/license-portal/internal/repository"
)

// In-memory repository fakes. They reproduce the semantics the Postgres
// implementations get from unique constraints and conditional updates, so the
// protocol tests exercise the same failure surface.

func uniqueViolation(constraint string) error {
	return &pgconn.PgError{Code: "23505", ConstraintName: constraint}
}

// fakeTx mirrors pgx.BeginFunc: when the closure fails, every store mutation
// made inside it is undone.
type fakeTx struct {
	accounts *fakeAccounts
	licenses *fakeLicenses
}

func (t fakeTx) RunInTx(_ context.Context, fn func(tx pgx.Tx) error) error {
	accountRows := t.accounts.snapshot()
	licenseRows := t.licenses.snapshot()
	if err := fn(nil); err != nil {
		t.accounts.restore(accountRows)
		t.licenses.restore(licenseRows)
		return err
	}
	return nil
}

type fakeEmployees struct {
	mu   sync.Mutex
	rows map[string]*domain.Employee
}

func newFakeEmployees() *fakeEmployees {
	return &fakeEmployees{rows: make(map[string]*domain.Employee)}
}

func (f *fakeEmployees) Create(_ context.Context, employee *domain.Employee) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[employee.EmployeeID]; ok {
		return uniqueViolation("employees_employee_id_key")
	}
	employee.ID = "emp-" + strconv.Itoa(len(f.rows)+1)
	employee.CreatedAt = time.Now()
	employee.UpdatedAt = employee.CreatedAt
	cp := *employee
	f.rows[employee.EmployeeID] = &cp
	return nil
}

func (f *fakeEmployees) GetByEmployeeID(_ context.Context, employeeID string) (*domain.Employee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[employeeID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *row
	return &cp, nil
}

func (f *fakeEmployees) List(_ context.Context) ([]domain.Employee, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Employee, 0, len(f.rows))
	for _, row := range f.rows {
		out = append(out, *row)
	}
	return out, nil
}

func (f *fakeEmployees) Delete(_ context.Context, employeeID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[employeeID]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.rows, employeeID)
	return nil
}

type fakeLicenses struct {
	mu   sync.Mutex
	rows map[string]*domain.LicenseCode // keyed by code

	redeemErr error // injected failure for rollback tests
}

func newFakeLicenses() *fakeLicenses {
	return &fakeLicenses{rows: make(map[string]*domain.LicenseCode)}
}

func (f *fakeLicenses) WithTx(_ pgx.Tx) repository.LicenseRepository { return f }

func (f *fakeLicenses) byEmployeeLocked(employeeID string) *domain.LicenseCode {
	for _, row := range f.rows {
		if row.EmployeeID == employeeID {
			return row
		}
	}
	return nil
}

func (f *fakeLicenses) Issue(_ context.Context, lic *domain.LicenseCode) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[lic.Code]; ok {
		return uniqueViolation("license_codes_code_key")
	}
	if f.byEmployeeLocked(lic.EmployeeID) != nil {
		return uniqueViolation("license_codes_employee_id_key")
	}
	lic.ID = "lic-" + strconv.Itoa(len(f.rows)+1)
	lic.IsUsed = false
	lic.CreatedAt = time.Now()
	cp := *lic
	f.rows[lic.Code] = &cp
	return nil
}

func (f *fakeLicenses) FindOrIssue(ctx context.Context, employeeID, code string) (*domain.LicenseCode, error) {
	f.mu.Lock()
	if row := f.byEmployeeLocked(employeeID); row != nil {
		cp := *row
		f.mu.Unlock()
		return &cp, nil
	}
	f.mu.Unlock()
	lic := &domain.LicenseCode{Code: code, EmployeeID: employeeID}
	if err := f.Issue(ctx, lic); err != nil {
		return nil, err
	}
	return lic, nil
}

func (f *fakeLicenses) GetByCode(_ context.Context, code string) (*domain.LicenseCode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[code]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *row
	return &cp, nil
}

func (f *fakeLicenses) GetByEmployeeID(_ context.Context, employeeID string) (*domain.LicenseCode, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row := f.byEmployeeLocked(employeeID)
	if row == nil {
		return nil, pgx.ErrNoRows
	}
	cp := *row
	return &cp, nil
}

func (f *fakeLicenses) List(_ context.Context, limit, offset int) ([]domain.LicenseCode, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.LicenseCode, 0, len(f.rows))
	for _, row := range f.rows {
		out = append(out, *row)
	}
	return out, int64(len(out)), nil
}

func (f *fakeLicenses) snapshot() map[string]*domain.LicenseCode {
	f.mu.Lock()
	defer f.mu.Unlock()
	rows := make(map[string]*domain.LicenseCode, len(f.rows))
	for code, row := range f.rows {
		cp := *row
		rows[code] = &cp
	}
	return rows
}

func (f *fakeLicenses) restore(rows map[string]*domain.LicenseCode) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows = rows
}

func (f *fakeLicenses) Redeem(_ context.Context, code, accountID string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.redeemErr != nil {
		return f.redeemErr
	}
	row, ok := f.rows[code]
	if !ok {
		return pgx.ErrNoRows
	}
	if row.IsUsed {
		return repository.ErrAlreadyRedeemed
	}
	row.IsUsed = true
	row.UsedBy = &accountID
	row.UsedAt = &at
	return nil
}

func (f *fakeLicenses) Release(_ context.Context, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[code]
	if !ok {
		return pgx.ErrNoRows
	}
	row.IsUsed = false
	row.UsedBy = nil
	row.UsedAt = nil
	return nil
}

func (f *fakeLicenses) Counts(_ context.Context) (int64, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var used int64
	for _, row := range f.rows {
		if row.IsUsed {
			used++
		}
	}
	return int64(len(f.rows)), used, nil
}

type fakeAccounts struct {
	mu   sync.Mutex
	rows map[string]*domain.Account // keyed by id
	seq  int

	createErr error // injected failure for race tests
}

func newFakeAccounts() *fakeAccounts {
	return &fakeAccounts{rows: make(map[string]*domain.Account)}
}

func (f *fakeAccounts) WithTx(_ pgx.Tx) repository.AccountRepository { return f }

func (f *fakeAccounts) snapshot() map[string]*domain.Account {
	f.mu.Lock()
	defer f.mu.Unlock()
	rows := make(map[string]*domain.Account, len(f.rows))
	for id, row := range f.rows {
		cp := *row
		rows[id] = &cp
	}
	return rows
}

func (f *fakeAccounts) restore(rows map[string]*domain.Account) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows = rows
}

func (f *fakeAccounts) Create(_ context.Context, account *domain.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	for _, row := range f.rows {
		if row.Username == account.Username {
			return uniqueViolation("accounts_username_key")
		}
		if row.Email == account.Email {
			return uniqueViolation("accounts_email_key")
		}
		if row.LicenseCode == account.LicenseCode {
			return uniqueViolation("accounts_license_code_key")
		}
	}
	f.seq++
	account.ID = "acct-" + strconv.Itoa(f.seq)
	account.CreatedAt = time.Now()
	account.UpdatedAt = account.CreatedAt
	cp := *account
	f.rows[account.ID] = &cp
	return nil
}

func (f *fakeAccounts) Update(_ context.Context, account *domain.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[account.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	for id, other := range f.rows {
		if id == account.ID {
			continue
		}
		if other.Username == account.Username {
			return uniqueViolation("accounts_username_key")
		}
		if other.Email == account.Email {
			return uniqueViolation("accounts_email_key")
		}
	}
	row.Username = account.Username
	row.Email = account.Email
	row.PasswordHash = account.PasswordHash
	row.Role = account.Role
	row.IsActive = account.IsActive
	row.UpdatedAt = time.Now()
	return nil
}

func (f *fakeAccounts) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.rows[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.rows, id)
	return nil
}

func (f *fakeAccounts) GetByID(_ context.Context, id string) (*domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *row
	return &cp, nil
}

func (f *fakeAccounts) GetByUsername(_ context.Context, username string) (*domain.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.rows {
		if row.Username == username {
			cp := *row
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeAccounts) ExistsByUsernameOrEmail(_ context.Context, username, email string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, row := range f.rows {
		if row.Username == username || row.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeAccounts) List(_ context.Context, limit, offset int) ([]domain.Account, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Account, 0, len(f.rows))
	for _, row := range f.rows {
		out = append(out, *row)
	}
	return out, int64(len(out)), nil
}

// RecordFailedAttempt mirrors the conditional UPDATE the Postgres repository
// issues: expired lock resets the basis to 1 and clears the lock, otherwise
// the counter increments and crossing maxAttempts arms the lock.
func (f *fakeAccounts) RecordFailedAttempt(_ context.Context, id string, now time.Time, maxAttempts int, lockFor time.Duration) (int, *time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	if !ok {
		return 0, nil, pgx.ErrNoRows
	}

	if row.LockUntil != nil && !row.LockUntil.After(now) {
		row.LoginAttempts = 1
		row.LockUntil = nil
	} else {
		row.LoginAttempts++
		if row.LockUntil == nil && row.LoginAttempts >= maxAttempts {
			until := now.Add(lockFor)
			row.LockUntil = &until
		}
	}

	var lockUntil *time.Time
	if row.LockUntil != nil {
		cp := *row.LockUntil
		lockUntil = &cp
	}
	return row.LoginAttempts, lockUntil, nil
}

func (f *fakeAccounts) ResetLoginAttempts(_ context.Context, id string, now time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.rows[id]
	if !ok {
		return pgx.ErrNoRows
	}
	row.LoginAttempts = 0
	row.LockUntil = nil
	last := now
	row.LastLogin = &last
	return nil
}

func (f *fakeAccounts) Stats(_ context.Context, recentSince time.Time) (domain.AccountStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var stats domain.AccountStats
	for _, row := range f.rows {
		stats.TotalAccounts++
		if row.IsActive {
			stats.ActiveAccounts++
		}
		if row.Role == domain.RoleAdmin {
			stats.AdminAccounts++
		}
		if !row.CreatedAt.Before(recentSince) {
			stats.RecentRegistrations++
		}
	}
	return stats, nil
}

type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(_ events.EventType, _ events.EventHandler) {}

func (d *recordingDispatcher) byType(eventType events.EventType) []events.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []events.Event
	for _, event := range d.events {
		if event.Type == eventType {
			out = append(out, event)
		}
	}
	return out
}
