package report

import "context"

// ReportRepository defines the interface for report data access.
// Yearly aggregates count requests whose start date falls in the year.
type ReportRepository interface {
	CountActiveEmployees(ctx context.Context) (int, error)
	CountRequestsByStatus(ctx context.Context, year int) (map[string]int, error)
	CountRequestsByMonth(ctx context.Context, year int) (map[int]int, error)
	CountRequestsByDepartment(ctx context.Context, year int) ([]NamedCount, error)
	CountRequestsByLeaveType(ctx context.Context, year int) ([]NamedCount, error)

	GetLeaveBalanceReport(ctx context.Context, year int) ([]LeaveBalanceRow, error)
}
