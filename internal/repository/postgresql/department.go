package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/master/department"
	"github.com/cmlabs-hris/hris-leave-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type departmentRepositoryImpl struct {
	db *database.DB
}

func NewDepartmentRepository(db *database.DB) department.DepartmentRepository {
	return &departmentRepositoryImpl{db: db}
}

// Create implements department.DepartmentRepository.
func (r *departmentRepositoryImpl) Create(ctx context.Context, dept department.Department) (department.Department, error) {
	q := GetQuerier(ctx, r.db)

	if dept.ID == "" {
		dept.ID = newID()
	}

	query := `
		INSERT INTO departments (id, name)
		VALUES ($1, $2)
		RETURNING id, name, created_at, updated_at
	`
	var created department.Department
	err := q.QueryRow(ctx, query, dept.ID, dept.Name).Scan(
		&created.ID, &created.Name, &created.CreatedAt, &created.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "") {
			return department.Department{}, department.ErrDepartmentNameExists
		}
		return department.Department{}, fmt.Errorf("failed to create department: %w", err)
	}
	return created, nil
}

// GetByID implements department.DepartmentRepository.
func (r *departmentRepositoryImpl) GetByID(ctx context.Context, id string) (department.Department, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT d.id, d.name, d.created_at, d.updated_at,
			(SELECT COUNT(*) FROM employees e WHERE e.department_id = d.id AND e.is_active)
		FROM departments d
		WHERE d.id = $1
	`
	var found department.Department
	err := q.QueryRow(ctx, query, id).Scan(
		&found.ID, &found.Name, &found.CreatedAt, &found.UpdatedAt, &found.EmployeeCount,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return department.Department{}, department.ErrDepartmentNotFound
		}
		return department.Department{}, fmt.Errorf("failed to get department %s: %w", id, err)
	}
	return found, nil
}

// List implements department.DepartmentRepository.
func (r *departmentRepositoryImpl) List(ctx context.Context) ([]department.Department, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT d.id, d.name, d.created_at, d.updated_at,
			(SELECT COUNT(*) FROM employees e WHERE e.department_id = d.id AND e.is_active)
		FROM departments d
		ORDER BY d.name
	`
	rows, err := q.Query(ctx, query)
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

// Rename implements department.DepartmentRepository.
func (r *departmentRepositoryImpl) Rename(ctx context.Context, id string, name string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `UPDATE departments SET name = $1, updated_at = NOW() WHERE id = $2`, name, id)
	if err != nil {
		if isUniqueViolation(err, "") {
			return department.ErrDepartmentNameExists
		}
		return fmt.Errorf("failed to rename department %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return department.ErrDepartmentNotFound
	}
	return nil
}
