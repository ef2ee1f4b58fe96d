package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/bplabo/license-portal/internal/domain"
)

// AccountRepository defines persistence access for registered accounts.
// RecordFailedAttempt and ResetLoginAttempts are the only writers of the
// lockout fields; both are single conditional updates keyed by account id so
// concurrent attempts cannot lose increments.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	Update(ctx context.Context, account *domain.Account) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByUsername(ctx context.Context, username string) (*domain.Account, error)
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
	List(ctx context.Context, limit, offset int) ([]domain.Account, int64, error)
	// RecordFailedAttempt applies one failed login: an expired lock resets
	// the counter to 1 and clears the lock, otherwise the counter increments
	// and reaching maxAttempts sets lock_until to now+lockFor. Returns the
	// resulting counter and lock.
	RecordFailedAttempt(ctx context.Context, id string, now time.Time, maxAttempts int, lockFor time.Duration) (int, *time.Time, error)
	// ResetLoginAttempts clears the lockout state and stamps last_login.
	ResetLoginAttempts(ctx context.Context, id string, now time.Time) error
	Stats(ctx context.Context, recentSince time.Time) (domain.AccountStats, error)
	// WithTx rebinds the repository onto a transaction.
	WithTx(tx pgx.Tx) AccountRepository
}

type accountRepository struct {
	db Querier
}

// NewAccountRepository returns a Postgres-backed implementation.
func NewAccountRepository(db Querier) AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) WithTx(tx pgx.Tx) AccountRepository {
	return &accountRepository{db: tx}
}

const accountColumns = `id, username, email, employee_id, password_hash, license_code,
        role, is_active, login_attempts, lock_until, last_login, created_at, updated_at`

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var account domain.Account
	if err := row.Scan(
		&account.ID,
		&account.Username,
		&account.Email,
		&account.EmployeeID,
		&account.PasswordHash,
		&account.LicenseCode,
		&account.Role,
		&account.IsActive,
		&account.LoginAttempts,
		&account.LockUntil,
		&account.LastLogin,
		&account.CreatedAt,
		&account.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &account, nil
}

func (r *accountRepository) Create(ctx context.Context, account *domain.Account) error {
	const query = `
        INSERT INTO accounts (username, email, employee_id, password_hash, license_code, role, is_active)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id, created_at, updated_at`

	return r.db.QueryRow(ctx, query,
		account.Username,
		account.Email,
		account.EmployeeID,
		account.PasswordHash,
		account.LicenseCode,
		account.Role,
		account.IsActive,
	).Scan(&account.ID, &account.CreatedAt, &account.UpdatedAt)
}

func (r *accountRepository) Update(ctx context.Context, account *domain.Account) error {
	const query = `
        UPDATE accounts SET username=$1, email=$2, password_hash=$3, role=$4, is_active=$5, updated_at=NOW()
        WHERE id=$6`

	cmd, err := r.db.Exec(ctx, query,
		account.Username,
		account.Email,
		account.PasswordHash,
		account.Role,
		account.IsActive,
		account.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *accountRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM accounts WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *accountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	const query = `SELECT ` + accountColumns + ` FROM accounts WHERE id=$1`
	return scanAccount(r.db.QueryRow(ctx, query, id))
}

func (r *accountRepository) GetByUsername(ctx context.Context, username string) (*domain.Account, error) {
	const query = `SELECT ` + accountColumns + ` FROM accounts WHERE username=$1`
	return scanAccount(r.db.QueryRow(ctx, query, username))
}

func (r *accountRepository) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM accounts WHERE username=$1 OR email=$2)`

	var exists bool
	if err := r.db.QueryRow(ctx, query, username, email).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *accountRepository) List(ctx context.Context, limit, offset int) ([]domain.Account, int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM accounts`).Scan(&total); err != nil {
		return nil, 0, err
	}

	const query = `
        SELECT ` + accountColumns + `
        FROM accounts ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		var account domain.Account
		if err := rows.Scan(
			&account.ID,
			&account.Username,
			&account.Email,
			&account.EmployeeID,
			&account.PasswordHash,
			&account.LicenseCode,
			&account.Role,
			&account.IsActive,
			&account.LoginAttempts,
			&account.LockUntil,
			&account.LastLogin,
			&account.CreatedAt,
			&account.UpdatedAt,
		); err != nil {
			return nil, 0, err
		}
		accounts = append(accounts, account)
	}
	return accounts, total, rows.Err()
}

func (r *accountRepository) RecordFailedAttempt(ctx context.Context, id string, now time.Time, maxAttempts int, lockFor time.Duration) (int, *time.Time, error) {
	// Single statement so concurrent failed attempts serialize on the row.
	// An expired lock resets the basis to 1 (lazy unlock); otherwise the
	// counter increments and crossing the threshold arms the lock.
	const query = `
        UPDATE accounts SET
            login_attempts = CASE
                WHEN lock_until IS NOT NULL AND lock_until <= $2 THEN 1
                ELSE login_attempts + 1
            END,
            lock_until = CASE
                WHEN lock_until IS NOT NULL AND lock_until <= $2 THEN NULL
                WHEN lock_until IS NULL AND login_attempts + 1 >= $3 THEN $4
                ELSE lock_until
            END,
            updated_at = NOW()
        WHERE id=$1
        RETURNING login_attempts, lock_until`

	var attempts int
	var lockUntil *time.Time
	err := r.db.QueryRow(ctx, query, id, now, maxAttempts, now.Add(lockFor)).Scan(&attempts, &lockUntil)
	if err != nil {
		return 0, nil, err
	}
	return attempts, lockUntil, nil
}

func (r *accountRepository) ResetLoginAttempts(ctx context.Context, id string, now time.Time) error {
	const query = `
        UPDATE accounts SET login_attempts=0, lock_until=NULL, last_login=$2, updated_at=NOW()
        WHERE id=$1`

	cmd, err := r.db.Exec(ctx, query, id, now)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *accountRepository) Stats(ctx context.Context, recentSince time.Time) (domain.AccountStats, error) {
	const query = `
        SELECT COUNT(*),
               COUNT(*) FILTER (WHERE is_active),
               COUNT(*) FILTER (WHERE role='admin'),
               COUNT(*) FILTER (WHERE created_at >= $1)
        FROM accounts`

	var stats domain.AccountStats
	if err := r.db.QueryRow(ctx, query, recentSince).Scan(
		&stats.TotalAccounts,
		&stats.ActiveAccounts,
		&stats.AdminAccounts,
		&stats.RecentRegistrations,
	); err != nil {
		return domain.AccountStats{}, err
	}
	return stats, nil
}
