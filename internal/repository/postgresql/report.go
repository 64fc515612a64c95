package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/report"
	"github.com/cmlabs-hris/hris-leave-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type reportRepositoryImpl struct {
	db *database.DB
}

func NewReportRepository(db *database.DB) report.ReportRepository {
	return &reportRepositoryImpl{db: db}
}

// CountActiveEmployees implements report.ReportRepository.
func (r *reportRepositoryImpl) CountActiveEmployees(ctx context.Context) (int, error) {
	q := GetQuerier(ctx, r.db)

	var count int
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM employees WHERE is_active`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count active employees: %w", err)
	}
	return count, nil
}

// CountRequestsByStatus implements report.ReportRepository.
func (r *reportRepositoryImpl) CountRequestsByStatus(ctx context.Context, year int) (map[string]int, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT status, COUNT(*)
		FROM leave_requests
		WHERE EXTRACT(YEAR FROM start_date) = $1
		GROUP BY status
	`
	rows, err := q.Query(ctx, query, year)
	if err != nil {
		return nil, fmt.Errorf("failed to count requests by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

// CountRequestsByMonth implements report.ReportRepository.
func (r *reportRepositoryImpl) CountRequestsByMonth(ctx context.Context, year int) (map[int]int, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT EXTRACT(MONTH FROM start_date)::int AS month, COUNT(*)
		FROM leave_requests
		WHERE EXTRACT(YEAR FROM start_date) = $1
		GROUP BY month
	`
	rows, err := q.Query(ctx, query, year)
	if err != nil {
		return nil, fmt.Errorf("failed to count requests by month: %w", err)
	}
	defer rows.Close()

	counts := make(map[int]int)
	for rows.Next() {
		var month, count int
		if err := rows.Scan(&month, &count); err != nil {
			return nil, err
		}
		counts[month] = count
	}
	return counts, rows.Err()
}

// CountRequestsByDepartment implements report.ReportRepository.
func (r *reportRepositoryImpl) CountRequestsByDepartment(ctx context.Context, year int) ([]report.NamedCount, error) {
	query := `
		SELECT COALESCE(d.name, $2) AS name, COUNT(*) AS total
		FROM leave_requests lr
		JOIN employees e ON e.id = lr.employee_id
		LEFT JOIN departments d ON d.id = e.department_id
		WHERE EXTRACT(YEAR FROM lr.start_date) = $1
		GROUP BY 1
		ORDER BY total DESC, name ASC
	`
	return r.namedCounts(ctx, query, year, report.NoDepartment)
}

// CountRequestsByLeaveType implements report.ReportRepository.
func (r *reportRepositoryImpl) CountRequestsByLeaveType(ctx context.Context, year int) ([]report.NamedCount, error) {
	query := `
		SELECT lt.name AS name, COUNT(*) AS total
		FROM leave_requests lr
		JOIN leave_types lt ON lt.id = lr.leave_type_id
		WHERE EXTRACT(YEAR FROM lr.start_date) = $1
		GROUP BY lt.name
		ORDER BY total DESC, name ASC
	`
	return r.namedCounts(ctx, query, year)
}

func (r *reportRepositoryImpl) namedCounts(ctx context.Context, query string, args ...any) ([]report.NamedCount, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate leave requests: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (report.NamedCount, error) {
		var nc report.NamedCount
		err := row.Scan(&nc.Name, &nc.Count)
		return nc, err
	})
}

// GetLeaveBalanceReport retrieves the ledger of every active employee for a year
func (r *reportRepositoryImpl) GetLeaveBalanceReport(ctx context.Context, year int) ([]report.LeaveBalanceRow, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT
			e.id,
			e.employee_code,
			e.full_name,
			COALESCE(d.name, $2) AS department_name,
			lt.name,
			lb.allocated,
			lb.used
		FROM employees e
		LEFT JOIN departments d ON d.id = e.department_id
		LEFT JOIN leave_balances lb ON lb.employee_id = e.id AND lb.year = $1
		LEFT JOIN leave_types lt ON lt.id = lb.leave_type_id
		WHERE e.is_active
		ORDER BY e.full_name ASC, lt.name ASC
	`

	rows, err := q.Query(ctx, query, year, report.NoDepartment)
	if err != nil {
		return nil, fmt.Errorf("failed to query leave balance: %w", err)
	}
	defer rows.Close()

	// Aggregate leave balances per employee
	employeeMap := make(map[string]*report.LeaveBalanceRow)
	var employeeOrder []string

	for rows.Next() {
		var employeeID, employeeCode, fullName, departmentName string
		var leaveName *string
		var allocated, used decimal.NullDecimal

		err := rows.Scan(
			&employeeID,
			&employeeCode,
			&fullName,
			&departmentName,
			&leaveName,
			&allocated,
			&used,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leave balance: %w", err)
		}

		emp, exists := employeeMap[employeeID]
		if !exists {
			emp = &report.LeaveBalanceRow{
				EmployeeID:     employeeID,
				EmployeeCode:   employeeCode,
				FullName:       fullName,
				DepartmentName: departmentName,
				Balances:       []report.LeaveTypeBalance{},
			}
			employeeMap[employeeID] = emp
			employeeOrder = append(employeeOrder, employeeID)
		}

		if leaveName != nil {
			emp.Balances = append(emp.Balances, report.LeaveTypeBalance{
				LeaveTypeName: *leaveName,
				Allocated:     allocated.Decimal,
				Used:          used.Decimal,
				Remaining:     allocated.Decimal.Sub(used.Decimal),
			})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	result := make([]report.LeaveBalanceRow, 0, len(employeeOrder))
	for _, id := range employeeOrder {
		result = append(result, *employeeMap[id])
	}
	return result, nil
}
