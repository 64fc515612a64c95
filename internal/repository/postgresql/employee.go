package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-leave-go/internal/domain/master/department"
	"github.com/cmlabs-hris/hris-leave-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type employeeRepositoryImpl struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepositoryImpl{db: db}
}

const employeeSelect = `
	SELECT e.id, e.user_id, e.employee_code, e.full_name, e.email,
		e.manager_id, e.department_id, e.is_active, e.created_at, e.updated_at,
		m.full_name, d.name
	FROM employees e
	LEFT JOIN employees m ON m.id = e.manager_id
	LEFT JOIN departments d ON d.id = e.department_id
`

func scanEmployee(row pgx.Row) (employee.Employee, error) {
	var emp employee.Employee
	err := row.Scan(
		&emp.ID, &emp.UserID, &emp.EmployeeCode, &emp.FullName, &emp.Email,
		&emp.ManagerID, &emp.DepartmentID, &emp.IsActive, &emp.CreatedAt, &emp.UpdatedAt,
		&emp.ManagerName, &emp.DepartmentName,
	)
	return emp, err
}

func (e *employeeRepositoryImpl) getOne(ctx context.Context, where string, arg any) (employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	found, err := scanEmployee(q.QueryRow(ctx, employeeSelect+where, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee: %w", err)
	}
	return found, nil
}

// GetByID implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	return e.getOne(ctx, `WHERE e.id = $1`, id)
}

// GetByUserID implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) GetByUserID(ctx context.Context, userID string) (employee.Employee, error) {
	return e.getOne(ctx, `WHERE e.user_id = $1`, userID)
}

// GetByEmployeeCode implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) GetByEmployeeCode(ctx context.Context, employeeCode string) (employee.Employee, error) {
	return e.getOne(ctx, `WHERE e.employee_code = $1`, employeeCode)
}

// Create implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) Create(ctx context.Context, newEmployee employee.Employee) (employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	if newEmployee.ID == "" {
		newEmployee.ID = newID()
	}

	query := `
		INSERT INTO employees (
			id, user_id, employee_code, full_name, email, manager_id, department_id, is_active
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := q.Exec(ctx, query,
		newEmployee.ID, newEmployee.UserID, newEmployee.EmployeeCode, newEmployee.FullName,
		newEmployee.Email, newEmployee.ManagerID, newEmployee.DepartmentID, newEmployee.IsActive,
	)
	if err != nil {
		switch {
		case isUniqueViolation(err, "employees_employee_code_key"):
			return employee.Employee{}, employee.ErrEmployeeCodeExists
		case isUniqueViolation(err, "employees_email_key"):
			return employee.Employee{}, employee.ErrEmailExists
		case isForeignKeyViolation(err):
			return employee.Employee{}, referenceError(err)
		}
		return employee.Employee{}, fmt.Errorf("failed to create employee: %w", err)
	}

	return e.GetByID(ctx, newEmployee.ID)
}

// ExistsByCodeOrEmail implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) ExistsByCodeOrEmail(ctx context.Context, employeeCode, email string) (bool, error) {
	q := GetQuerier(ctx, e.db)

	query := `SELECT EXISTS(SELECT 1 FROM employees WHERE employee_code = $1 OR LOWER(email) = LOWER($2))`

	var exists bool
	if err := q.QueryRow(ctx, query, employeeCode, email).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// NextEmployeeCode implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) NextEmployeeCode(ctx context.Context, prefix string) (string, error) {
	q := GetQuerier(ctx, e.db)

	query := `
		SELECT COALESCE(MAX(SUBSTRING(employee_code FROM 6)::INT), 0)
		FROM employees WHERE employee_code LIKE $1 || '-%'
	`
	var last int
	if err := q.QueryRow(ctx, query, prefix).Scan(&last); err != nil {
		return "", fmt.Errorf("failed to read last employee code: %w", err)
	}
	if last >= 9999 {
		return "", fmt.Errorf("employee codes for %s are exhausted", prefix)
	}
	return fmt.Sprintf("%s-%04d", prefix, last+1), nil
}

// Update implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) Update(ctx context.Context, emp employee.Employee) error {
	q := GetQuerier(ctx, e.db)

	query := `
		UPDATE employees
		SET full_name = $1, manager_id = $2, department_id = $3, updated_at = NOW()
		WHERE id = $4
	`
	tag, err := q.Exec(ctx, query, emp.FullName, emp.ManagerID, emp.DepartmentID, emp.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return referenceError(err)
		}
		return fmt.Errorf("failed to update employee %s: %w", emp.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

// SetActive implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) SetActive(ctx context.Context, id string, active bool) error {
	q := GetQuerier(ctx, e.db)

	tag, err := q.Exec(ctx, `UPDATE employees SET is_active = $1, updated_at = NOW() WHERE id = $2`, active, id)
	if err != nil {
		return fmt.Errorf("failed to update employee %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

// List implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) List(ctx context.Context, filter employee.EmployeeFilter) ([]employee.Employee, error) {
	q := GetQuerier(ctx, e.db)

	whereClause := "WHERE 1=1"
	args := []interface{}{}
	argIndex := 1

	if filter.DepartmentID != nil {
		whereClause += fmt.Sprintf(" AND e.department_id = $%d", argIndex)
		args = append(args, *filter.DepartmentID)
		argIndex++
	}
	if filter.ManagerID != nil {
		whereClause += fmt.Sprintf(" AND e.manager_id = $%d", argIndex)
		args = append(args, *filter.ManagerID)
		argIndex++
	}
	if filter.IsActive != nil {
		whereClause += fmt.Sprintf(" AND e.is_active = $%d", argIndex)
		args = append(args, *filter.IsActive)
		argIndex++
	}
	if filter.Search != nil && *filter.Search != "" {
		whereClause += fmt.Sprintf(" AND (e.full_name ILIKE $%d OR e.employee_code ILIKE $%d OR e.email ILIKE $%d)", argIndex, argIndex, argIndex)
		args = append(args, "%"+*filter.Search+"%")
	}

	rows, err := q.Query(ctx, employeeSelect+whereClause+" ORDER BY e.employee_code", args...)
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

// ListActiveIDs implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) ListActiveIDs(ctx context.Context) ([]string, error) {
	return e.listIDs(ctx, `SELECT id FROM employees WHERE is_active ORDER BY employee_code`)
}

// ListSubordinateIDs implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) ListSubordinateIDs(ctx context.Context, managerID string) ([]string, error) {
	return e.listIDs(ctx, `SELECT id FROM employees WHERE manager_id = $1 ORDER BY employee_code`, managerID)
}

func (e *employeeRepositoryImpl) listIDs(ctx context.Context, query string, args ...any) ([]string, error) {
	q := GetQuerier(ctx, e.db)

	rows, err := q.Query(ctx, query, args...)
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

// referenceError maps a foreign key violation on employees to the missing row.
func referenceError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.ConstraintName == "employees_department_id_fkey" {
		return department.ErrDepartmentNotFound
	}
	return employee.ErrManagerNotFound
}

// LockForUpdate implements employee.EmployeeRepository.
func (e *employeeRepositoryImpl) LockForUpdate(ctx context.Context, id string) error {
	q := GetQuerier(ctx, e.db)

	var locked string
	err := q.QueryRow(ctx, `SELECT id FROM employees WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.ErrEmployeeNotFound
		}
		return fmt.Errorf("failed to lock employee %s: %w", id, err)
	}
	return nil
}
