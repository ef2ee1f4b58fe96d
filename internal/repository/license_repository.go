package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/bplabo/license-portal/internal/domain"
)

// LicenseRepository is the ledger of issued license codes. Both code and
// employee_id carry unique constraints; they are the backstop against
// concurrent double-issue and double-redeem.
type LicenseRepository interface {
	// Issue persists a fresh, unused code for an employee ID. A unique
	// violation on employee_id means a code was already issued.
	Issue(ctx context.Context, lic *domain.LicenseCode) error
	// FindOrIssue returns the ledger row for the employee ID, creating an
	// unused one with the given code when absent.
	FindOrIssue(ctx context.Context, employeeID, code string) (*domain.LicenseCode, error)
	GetByCode(ctx context.Context, code string) (*domain.LicenseCode, error)
	GetByEmployeeID(ctx context.Context, employeeID string) (*domain.LicenseCode, error)
	List(ctx context.Context, limit, offset int) ([]domain.LicenseCode, int64, error)
	// Redeem marks the code used by the account. Returns ErrAlreadyRedeemed
	// when the code is already used and pgx.ErrNoRows when it is unknown.
	Redeem(ctx context.Context, code, accountID string, at time.Time) error
	// Release returns a code to the unused state; called when the owning
	// account is deleted.
	Release(ctx context.Context, code string) error
	Counts(ctx context.Context) (total, used int64, err error)
	// WithTx rebinds the repository onto a transaction.
	WithTx(tx pgx.Tx) LicenseRepository
}

type licenseRepository struct {
	db Querier
}

// NewLicenseRepository returns a Postgres-backed implementation.
func NewLicenseRepository(db Querier) LicenseRepository {
	return &licenseRepository{db: db}
}

func (r *licenseRepository) WithTx(tx pgx.Tx) LicenseRepository {
	return &licenseRepository{db: tx}
}

const licenseColumns = `id, code, employee_id, is_used, used_by, used_at, created_at`

func scanLicense(row pgx.Row, lic *domain.LicenseCode) error {
	return row.Scan(
		&lic.ID,
		&lic.Code,
		&lic.EmployeeID,
		&lic.IsUsed,
		&lic.UsedBy,
		&lic.UsedAt,
		&lic.CreatedAt,
	)
}

func (r *licenseRepository) Issue(ctx context.Context, lic *domain.LicenseCode) error {
	const query = `
        INSERT INTO license_codes (code, employee_id)
        VALUES ($1, $2)
        RETURNING id, is_used, created_at`

	return r.db.QueryRow(ctx, query,
		lic.Code,
		lic.EmployeeID,
	).Scan(&lic.ID, &lic.IsUsed, &lic.CreatedAt)
}

func (r *licenseRepository) FindOrIssue(ctx context.Context, employeeID, code string) (*domain.LicenseCode, error) {
	const insert = `
        INSERT INTO license_codes (code, employee_id)
        VALUES ($1, $2)
        ON CONFLICT (employee_id) DO NOTHING`

	if _, err := r.db.Exec(ctx, insert, code, employeeID); err != nil {
		return nil, err
	}
	return r.GetByEmployeeID(ctx, employeeID)
}

func (r *licenseRepository) GetByCode(ctx context.Context, code string) (*domain.LicenseCode, error) {
	const query = `SELECT ` + licenseColumns + ` FROM license_codes WHERE code=$1`

	var lic domain.LicenseCode
	if err := scanLicense(r.db.QueryRow(ctx, query, code), &lic); err != nil {
		return nil, err
	}
	return &lic, nil
}

func (r *licenseRepository) GetByEmployeeID(ctx context.Context, employeeID string) (*domain.LicenseCode, error) {
	const query = `SELECT ` + licenseColumns + ` FROM license_codes WHERE employee_id=$1`

	var lic domain.LicenseCode
	if err := scanLicense(r.db.QueryRow(ctx, query, employeeID), &lic); err != nil {
		return nil, err
	}
	return &lic, nil
}

func (r *licenseRepository) List(ctx context.Context, limit, offset int) ([]domain.LicenseCode, int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM license_codes`).Scan(&total); err != nil {
		return nil, 0, err
	}

	const query = `
        SELECT ` + licenseColumns + `
        FROM license_codes ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var licenses []domain.LicenseCode
	for rows.Next() {
		var lic domain.LicenseCode
		if err := rows.Scan(
			&lic.ID,
			&lic.Code,
			&lic.EmployeeID,
			&lic.IsUsed,
			&lic.UsedBy,
			&lic.UsedAt,
			&lic.CreatedAt,
		); err != nil {
			return nil, 0, err
		}
		licenses = append(licenses, lic)
	}
	return licenses, total, rows.Err()
}

func (r *licenseRepository) Redeem(ctx context.Context, code, accountID string, at time.Time) error {
	// Conditional on is_used so a concurrent redeem of the same code loses
	// cleanly instead of overwriting the first winner.
	const query = `
        UPDATE license_codes SET is_used=TRUE, used_by=$2, used_at=$3
        WHERE code=$1 AND is_used=FALSE`

	cmd, err := r.db.Exec(ctx, query, code, accountID, at)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() > 0 {
		return nil
	}

	var used bool
	err = r.db.QueryRow(ctx, `SELECT is_used FROM license_codes WHERE code=$1`, code).Scan(&used)
	if err != nil {
		return err
	}
	if used {
		return ErrAlreadyRedeemed
	}
	return pgx.ErrNoRows
}

func (r *licenseRepository) Release(ctx context.Context, code string) error {
	const query = `
        UPDATE license_codes SET is_used=FALSE, used_by=NULL, used_at=NULL
        WHERE code=$1`

	cmd, err := r.db.Exec(ctx, query, code)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *licenseRepository) Counts(ctx context.Context) (int64, int64, error) {
	const query = `
        SELECT COUNT(*), COUNT(*) FILTER (WHERE is_used)
        FROM license_codes`

	var total, used int64
	if err := r.db.QueryRow(ctx, query).Scan(&total, &used); err != nil {
		return 0, 0, err
	}
	return total, used, nil
}
