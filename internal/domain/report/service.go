package report

import "context"

// ReportService defines the interface for report generation
type ReportService interface {
	GenerateLeaveSummary(ctx context.Context, req LeaveSummaryRequest) (LeaveSummary, error)
	GenerateLeaveList(ctx context.Context, req LeaveListRequest) (LeaveListReport, error)
	GenerateLeaveBalanceReport(ctx context.Context, req LeaveBalanceReportRequest) (LeaveBalanceReport, error)
}
