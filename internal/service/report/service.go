package report

import (
	"context"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-leave-go/internal/domain/report"
)

type ReportServiceImpl struct {
	reportRepo report.ReportRepository
	requests   leave.LeaveRequestRepository
}

func NewReportService(reportRepo report.ReportRepository, requests leave.LeaveRequestRepository) report.ReportService {
	return &ReportServiceImpl{
		reportRepo: reportRepo,
		requests:   requests,
	}
}

// GenerateLeaveSummary aggregates one year of leave requests.
func (s *ReportServiceImpl) GenerateLeaveSummary(ctx context.Context, req report.LeaveSummaryRequest) (report.LeaveSummary, error) {
	if err := req.Validate(); err != nil {
		return report.LeaveSummary{}, err
	}

	activeEmployees, err := s.reportRepo.CountActiveEmployees(ctx)
	if err != nil {
		return report.LeaveSummary{}, s.failed("summary", "count active employees", err)
	}

	byStatus, err := s.reportRepo.CountRequestsByStatus(ctx, req.Year)
	if err != nil {
		return report.LeaveSummary{}, s.failed("summary", "count requests by status", err)
	}

	byMonth, err := s.reportRepo.CountRequestsByMonth(ctx, req.Year)
	if err != nil {
		return report.LeaveSummary{}, s.failed("summary", "count requests by month", err)
	}

	byDepartment, err := s.reportRepo.CountRequestsByDepartment(ctx, req.Year)
	if err != nil {
		return report.LeaveSummary{}, s.failed("summary", "count requests by department", err)
	}

	byLeaveType, err := s.reportRepo.CountRequestsByLeaveType(ctx, req.Year)
	if err != nil {
		return report.LeaveSummary{}, s.failed("summary", "count requests by leave type", err)
	}

	summary := report.LeaveSummary{
		Year:                 req.Year,
		GeneratedAt:          time.Now().Format(time.RFC3339),
		TotalActiveEmployees: activeEmployees,
		PendingCount:         byStatus[string(leave.LeaveRequestStatusPending)],
		ApprovedCount:        byStatus[string(leave.LeaveRequestStatusApproved)],
		RejectedCount:        byStatus[string(leave.LeaveRequestStatusRejected)],
		CancelledCount:       byStatus[string(leave.LeaveRequestStatusCancelled)],
		ByMonth:              make([]report.MonthCount, 0, 12),
		ByDepartment:         nonNil(byDepartment),
		ByLeaveType:          nonNil(byLeaveType),
	}
	for _, count := range byStatus {
		summary.TotalRequests += count
	}
	for m := time.January; m <= time.December; m++ {
		summary.ByMonth = append(summary.ByMonth, report.MonthCount{
			Month: int(m),
			Label: m.String()[:3],
			Count: byMonth[int(m)],
		})
	}

	return summary, nil
}

// GenerateLeaveList returns requests matching the filter, newest first.
func (s *ReportServiceImpl) GenerateLeaveList(ctx context.Context, req report.LeaveListRequest) (report.LeaveListReport, error) {
	if err := req.Validate(); err != nil {
		return report.LeaveListReport{}, err
	}

	requests, err := s.requests.List(ctx, req.ToFilter())
	if err != nil {
		return report.LeaveListReport{}, s.failed("leave list", "list leave requests", err)
	}

	rows := leave.NewLeaveRequestResponses(requests)
	return report.LeaveListReport{
		GeneratedAt: time.Now().Format(time.RFC3339),
		Total:       len(rows),
		Rows:        rows,
	}, nil
}

// GenerateLeaveBalanceReport lists every active employee with their ledger for the year.
func (s *ReportServiceImpl) GenerateLeaveBalanceReport(ctx context.Context, req report.LeaveBalanceReportRequest) (report.LeaveBalanceReport, error) {
	if err := req.Validate(); err != nil {
		return report.LeaveBalanceReport{}, err
	}

	rows, err := s.reportRepo.GetLeaveBalanceReport(ctx, req.Year)
	if err != nil {
		return report.LeaveBalanceReport{}, s.failed("leave balance", "get leave balance report", err)
	}
	if rows == nil {
		rows = []report.LeaveBalanceRow{}
	}

	return report.LeaveBalanceReport{
		GeneratedAt: time.Now().Format(time.RFC3339),
		Year:        req.Year,
		Rows:        rows,
	}, nil
}

func (s *ReportServiceImpl) failed(name, step string, err error) error {
	slog.Error("report generation failed", "report", name, "step", step, "error", err)
	return &report.QueryError{Report: name, Step: step, Err: err}
}

func nonNil(counts []report.NamedCount) []report.NamedCount {
	if counts == nil {
		return []report.NamedCount{}
	}
	return counts
}
