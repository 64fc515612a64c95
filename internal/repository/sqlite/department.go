package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/master/department"
)

type departmentRepository struct {
	db *sql.DB
}

func NewDepartmentRepository(db *sql.DB) department.DepartmentRepository {
	return &departmentRepository{db: db}
}

const departmentSelect = `
	SELECT d.id, d.name, d.created_at, d.updated_at,
		(SELECT COUNT(*) FROM employees e WHERE e.department_id = d.id AND e.is_active)
	FROM departments d
`

func (r *departmentRepository) Create(ctx context.Context, dept department.Department) (department.Department, error) {
	q := GetQuerier(ctx, r.db)

	if dept.ID == "" {
		dept.ID = newID()
	}

	if _, err := q.ExecContext(ctx, `INSERT INTO departments (id, name) VALUES (?, ?)`, dept.ID, dept.Name); err != nil {
		if isUniqueViolation(err, "departments.name") {
			return department.Department{}, department.ErrDepartmentNameExists
		}
		return department.Department{}, fmt.Errorf("failed to create department: %w", err)
	}
	return r.GetByID(ctx, dept.ID)
}

func (r *departmentRepository) GetByID(ctx context.Context, id string) (department.Department, error) {
	q := GetQuerier(ctx, r.db)

	var d department.Department
	err := q.QueryRowContext(ctx, departmentSelect+`WHERE d.id = ?`, id).Scan(
		&d.ID, &d.Name, &d.CreatedAt, &d.UpdatedAt, &d.EmployeeCount,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return department.Department{}, department.ErrDepartmentNotFound
		}
		return department.Department{}, fmt.Errorf("failed to get department %s: %w", id, err)
	}
	return d, nil
}

func (r *departmentRepository) List(ctx context.Context) ([]department.Department, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.QueryContext(ctx, departmentSelect+`ORDER BY d.name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list departments: %w", err)
	}
	defer rows.Close()

	var departments []department.Department
	for rows.Next() {
		var d department.Department
		if err := rows.Scan(&d.ID, &d.Name, &d.CreatedAt, &d.UpdatedAt, &d.EmployeeCount); err != nil {
			return nil, err
		}
		departments = append(departments, d)
	}
	return departments, rows.Err()
}

func (r *departmentRepository) Rename(ctx context.Context, id string, name string) error {
	q := GetQuerier(ctx, r.db)

	res, err := q.ExecContext(ctx, `UPDATE departments SET name = ?, updated_at = ? WHERE id = ?`, name, now(), id)
	if err != nil {
		if isUniqueViolation(err, "departments.name") {
			return department.ErrDepartmentNameExists
		}
		return fmt.Errorf("failed to rename department %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return department.ErrDepartmentNotFound
	}
	return nil
}
