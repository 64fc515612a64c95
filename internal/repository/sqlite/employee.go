package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/employee"
)

type employeeRepository struct {
	db *sql.DB
}

func NewEmployeeRepository(db *sql.DB) employee.EmployeeRepository {
	return &employeeRepository{db: db}
}

const employeeSelect = `
	SELECT e.id, e.user_id, e.employee_code, e.full_name, e.email,
		e.manager_id, e.department_id, e.is_active, e.created_at, e.updated_at,
		m.full_name, d.name
	FROM employees e
	LEFT JOIN employees m ON m.id = e.manager_id
	LEFT JOIN departments d ON d.id = e.department_id
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEmployee(row rowScanner) (employee.Employee, error) {
	var emp employee.Employee
	err := row.Scan(
		&emp.ID, &emp.UserID, &emp.EmployeeCode, &emp.FullName, &emp.Email,
		&emp.ManagerID, &emp.DepartmentID, &emp.IsActive, &emp.CreatedAt, &emp.UpdatedAt,
		&emp.ManagerName, &emp.DepartmentName,
	)
	return emp, err
}

func (r *employeeRepository) getOne(ctx context.Context, where string, arg any) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	emp, err := scanEmployee(q.QueryRowContext(ctx, employeeSelect+where, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee: %w", err)
	}
	return emp, nil
}

func (r *employeeRepository) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	return r.getOne(ctx, `WHERE e.id = ?`, id)
}

func (r *employeeRepository) GetByUserID(ctx context.Context, userID string) (employee.Employee, error) {
	return r.getOne(ctx, `WHERE e.user_id = ?`, userID)
}

func (r *employeeRepository) GetByEmployeeCode(ctx context.Context, employeeCode string) (employee.Employee, error) {
	return r.getOne(ctx, `WHERE e.employee_code = ?`, employeeCode)
}

func (r *employeeRepository) Create(ctx context.Context, newEmployee employee.Employee) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	if newEmployee.ID == "" {
		newEmployee.ID = newID()
	}

	_, err := q.ExecContext(ctx, `
		INSERT INTO employees (id, user_id, employee_code, full_name, email, manager_id, department_id, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, newEmployee.ID, newEmployee.UserID, newEmployee.EmployeeCode, newEmployee.FullName,
		newEmployee.Email, newEmployee.ManagerID, newEmployee.DepartmentID, newEmployee.IsActive)
	if err != nil {
		switch {
		case isUniqueViolation(err, "employees.employee_code"):
			return employee.Employee{}, employee.ErrEmployeeCodeExists
		case isUniqueViolation(err, "employees.email"):
			return employee.Employee{}, employee.ErrEmailExists
		case isForeignKeyViolation(err):
			return employee.Employee{}, employee.ErrManagerNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to create employee: %w", err)
	}
	return r.GetByID(ctx, newEmployee.ID)
}

func (r *employeeRepository) ExistsByCodeOrEmail(ctx context.Context, employeeCode, email string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	var exists bool
	err := q.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM employees WHERE employee_code = ? OR email = ?)`,
		employeeCode, email).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (r *employeeRepository) NextEmployeeCode(ctx context.Context, prefix string) (string, error) {
	q := GetQuerier(ctx, r.db)

	var last int
	err := q.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(CAST(substr(employee_code, 6) AS INTEGER)), 0)
		FROM employees WHERE employee_code LIKE ? || '-%'
	`, prefix).Scan(&last)
	if err != nil {
		return "", fmt.Errorf("failed to read last employee code: %w", err)
	}
	return formatEmployeeCode(prefix, last)
}

func formatEmployeeCode(prefix string, last int) (string, error) {
	if last >= 9999 {
		return "", fmt.Errorf("employee codes for %s are exhausted", prefix)
	}
	return fmt.Sprintf("%s-%04d", prefix, last+1), nil
}

func (r *employeeRepository) Update(ctx context.Context, emp employee.Employee) error {
	q := GetQuerier(ctx, r.db)

	res, err := q.ExecContext(ctx, `
		UPDATE employees SET full_name = ?, manager_id = ?, department_id = ?, updated_at = ?
		WHERE id = ?
	`, emp.FullName, emp.ManagerID, emp.DepartmentID, now(), emp.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return employee.ErrManagerNotFound
		}
		return fmt.Errorf("failed to update employee %s: %w", emp.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

func (r *employeeRepository) SetActive(ctx context.Context, id string, active bool) error {
	q := GetQuerier(ctx, r.db)

	res, err := q.ExecContext(ctx, `UPDATE employees SET is_active = ?, updated_at = ? WHERE id = ?`, active, now(), id)
	if err != nil {
		return fmt.Errorf("failed to update employee %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

func (r *employeeRepository) List(ctx context.Context, filter employee.EmployeeFilter) ([]employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	where := "WHERE 1=1"
	args := []any{}

	if filter.DepartmentID != nil {
		where += " AND e.department_id = ?"
		args = append(args, *filter.DepartmentID)
	}
	if filter.ManagerID != nil {
		where += " AND e.manager_id = ?"
		args = append(args, *filter.ManagerID)
	}
	if filter.IsActive != nil {
		where += " AND e.is_active = ?"
		args = append(args, *filter.IsActive)
	}
	if filter.Search != nil && *filter.Search != "" {
		pattern := "%" + *filter.Search + "%"
		where += " AND (e.full_name LIKE ? OR e.employee_code LIKE ? OR e.email LIKE ?)"
		args = append(args, pattern, pattern, pattern)
	}

	rows, err := q.QueryContext(ctx, employeeSelect+where+" ORDER BY e.employee_code", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	var employees []employee.Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, emp)
	}
	return employees, rows.Err()
}

func (r *employeeRepository) ListActiveIDs(ctx context.Context) ([]string, error) {
	return r.listIDs(ctx, `SELECT id FROM employees WHERE is_active ORDER BY employee_code`)
}

func (r *employeeRepository) ListSubordinateIDs(ctx context.Context, managerID string) ([]string, error) {
	return r.listIDs(ctx, `SELECT id FROM employees WHERE manager_id = ? ORDER BY employee_code`, managerID)
}

func (r *employeeRepository) listIDs(ctx context.Context, query string, args ...any) ([]string, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list employee ids: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// LockForUpdate only checks existence. Transactions begin IMMEDIATE, so the
// database write lock already serialises writers.
func (r *employeeRepository) LockForUpdate(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	var found string
	if err := q.QueryRowContext(ctx, `SELECT id FROM employees WHERE id = ?`, id).Scan(&found); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return employee.ErrEmployeeNotFound
		}
		return fmt.Errorf("failed to lock employee %s: %w", id, err)
	}
	return nil
}
