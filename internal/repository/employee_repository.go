package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/bplabo/license-portal/internal/domain"
)

// EmployeeRepository defines persistence access for the registration
// whitelist. The registration flow only ever reads it; mutation is an
// administrator action.
type EmployeeRepository interface {
	Create(ctx context.Context, employee *domain.Employee) error
	GetByEmployeeID(ctx context.Context, employeeID string) (*domain.Employee, error)
	List(ctx context.Context) ([]domain.Employee, error)
	Delete(ctx context.Context, employeeID string) error
}

type employeeRepository struct {
	db Querier
}

// NewEmployeeRepository returns a Postgres-backed implementation.
func NewEmployeeRepository(db Querier) EmployeeRepository {
	return &employeeRepository{db: db}
}

func (r *employeeRepository) Create(ctx context.Context, employee *domain.Employee) error {
	const query = `
        INSERT INTO employees (employee_id, name)
        VALUES ($1, $2)
        RETURNING id, created_at, updated_at`

	return r.db.QueryRow(ctx, query,
		employee.EmployeeID,
		employee.Name,
	).Scan(&employee.ID, &employee.CreatedAt, &employee.UpdatedAt)
}

func (r *employeeRepository) GetByEmployeeID(ctx context.Context, employeeID string) (*domain.Employee, error) {
	const query = `
        SELECT id, employee_id, name, created_at, updated_at
        FROM employees WHERE employee_id=$1`

	var employee domain.Employee
	if err := r.db.QueryRow(ctx, query, employeeID).Scan(
		&employee.ID,
		&employee.EmployeeID,
		&employee.Name,
		&employee.CreatedAt,
		&employee.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &employee, nil
}

func (r *employeeRepository) List(ctx context.Context) ([]domain.Employee, error) {
	const query = `
        SELECT id, employee_id, name, created_at, updated_at
        FROM employees ORDER BY employee_id ASC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []domain.Employee
	for rows.Next() {
		var employee domain.Employee
		if err := rows.Scan(
			&employee.ID,
			&employee.EmployeeID,
			&employee.Name,
			&employee.CreatedAt,
			&employee.UpdatedAt,
		); err != nil {
			return nil, err
		}
		employees = append(employees, employee)
	}
	return employees, rows.Err()
}

func (r *employeeRepository) Delete(ctx context.Context, employeeID string) error {
	const query = `DELETE FROM employees WHERE employee_id=$1`

	cmd, err := r.db.Exec(ctx, query, employeeID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
