package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/report"
	"github.com/shopspring/decimal"
)

type reportRepository struct {
	db *sql.DB
}

func NewReportRepository(db *sql.DB) report.ReportRepository {
	return &reportRepository{db: db}
}

func yearArg(year int) string {
	return fmt.Sprintf("%04d", year)
}

func (r *reportRepository) CountActiveEmployees(ctx context.Context) (int, error) {
	q := GetQuerier(ctx, r.db)

	var count int
	if err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM employees WHERE is_active`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count active employees: %w", err)
	}
	return count, nil
}

func (r *reportRepository) CountRequestsByStatus(ctx context.Context, year int) (map[string]int, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.QueryContext(ctx, `
		SELECT status, COUNT(*) FROM leave_requests
		WHERE strftime('%Y', start_date) = ?
		GROUP BY status
	`, yearArg(year))
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

func (r *reportRepository) CountRequestsByMonth(ctx context.Context, year int) (map[int]int, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.QueryContext(ctx, `
		SELECT CAST(strftime('%m', start_date) AS INTEGER) AS month, COUNT(*)
		FROM leave_requests
		WHERE strftime('%Y', start_date) = ?
		GROUP BY month
	`, yearArg(year))
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

func (r *reportRepository) CountRequestsByDepartment(ctx context.Context, year int) ([]report.NamedCount, error) {
	return r.namedCounts(ctx, `
		SELECT COALESCE(d.name, ?) AS name, COUNT(*) AS total
		FROM leave_requests lr
		JOIN employees e ON e.id = lr.employee_id
		LEFT JOIN departments d ON d.id = e.department_id
		WHERE strftime('%Y', lr.start_date) = ?
		GROUP BY 1
		ORDER BY total DESC, name ASC
	`, report.NoDepartment, yearArg(year))
}

func (r *reportRepository) CountRequestsByLeaveType(ctx context.Context, year int) ([]report.NamedCount, error) {
	return r.namedCounts(ctx, `
		SELECT lt.name AS name, COUNT(*) AS total
		FROM leave_requests lr
		JOIN leave_types lt ON lt.id = lr.leave_type_id
		WHERE strftime('%Y', lr.start_date) = ?
		GROUP BY lt.name
		ORDER BY total DESC, name ASC
	`, yearArg(year))
}

func (r *reportRepository) namedCounts(ctx context.Context, query string, args ...any) ([]report.NamedCount, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate leave requests: %w", err)
	}
	defer rows.Close()

	counts := []report.NamedCount{}
	for rows.Next() {
		var nc report.NamedCount
		if err := rows.Scan(&nc.Name, &nc.Count); err != nil {
			return nil, err
		}
		counts = append(counts, nc)
	}
	return counts, rows.Err()
}

func (r *reportRepository) GetLeaveBalanceReport(ctx context.Context, year int) ([]report.LeaveBalanceRow, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.QueryContext(ctx, `
		SELECT e.id, e.employee_code, e.full_name, COALESCE(d.name, ?),
			lt.name, lb.allocated, lb.used
		FROM employees e
		LEFT JOIN departments d ON d.id = e.department_id
		LEFT JOIN leave_balances lb ON lb.employee_id = e.id AND lb.year = ?
		LEFT JOIN leave_types lt ON lt.id = lb.leave_type_id
		WHERE e.is_active
		ORDER BY e.full_name ASC, lt.name ASC
	`, report.NoDepartment, year)
	if err != nil {
		return nil, fmt.Errorf("failed to query leave balance: %w", err)
	}
	defer rows.Close()

	var result []report.LeaveBalanceRow
	index := make(map[string]int)

	for rows.Next() {
		var row report.LeaveBalanceRow
		var leaveName *string
		var allocated, used decimal.NullDecimal

		if err := rows.Scan(&row.EmployeeID, &row.EmployeeCode, &row.FullName, &row.DepartmentName,
			&leaveName, &allocated, &used); err != nil {
			return nil, fmt.Errorf("failed to scan leave balance: %w", err)
		}

		i, ok := index[row.EmployeeID]
		if !ok {
			row.Balances = []report.LeaveTypeBalance{}
			result = append(result, row)
			i = len(result) - 1
			index[row.EmployeeID] = i
		}
		if leaveName != nil {
			result[i].Balances = append(result[i].Balances, report.LeaveTypeBalance{
				LeaveTypeName: *leaveName,
				Allocated:     allocated.Decimal,
				Used:          used.Decimal,
				Remaining:     allocated.Decimal.Sub(used.Decimal),
			})
		}
	}
	return result, rows.Err()
}
