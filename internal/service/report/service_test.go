package report

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-leave-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-leave-go/internal/domain/master/department"
	"github.com/cmlabs-hris/hris-leave-go/internal/domain/report"
	"github.com/cmlabs-hris/hris-leave-go/internal/pkg/validator"
	"github.com/cmlabs-hris/hris-leave-go/internal/repository/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reportFixture struct {
	service report.ReportService

	annual, sick leave.LeaveType
	eng, ops     employee.Employee
}

func newReportFixture(t *testing.T) reportFixture {
	t.Helper()
	ctx := context.Background()

	db, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "report.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	var f reportFixture
	f.service = NewReportService(sqlite.NewReportRepository(db), sqlite.NewLeaveRequestRepository(db))

	leaveTypes := sqlite.NewLeaveTypeRepository(db)
	f.annual, err = leaveTypes.Create(ctx, leave.LeaveType{Name: "Annual", IsPaid: true, DefaultAllocation: decimal.NewFromInt(12)})
	require.NoError(t, err)
	f.sick, err = leaveTypes.Create(ctx, leave.LeaveType{Name: "Sick", IsPaid: true, DefaultAllocation: decimal.NewFromInt(30)})
	require.NoError(t, err)

	dept, err := sqlite.NewDepartmentRepository(db).Create(ctx, department.Department{Name: "Engineering"})
	require.NoError(t, err)

	employees := sqlite.NewEmployeeRepository(db)
	f.eng, err = employees.Create(ctx, employee.Employee{
		EmployeeCode: "0000-0001", FullName: "Ana", Email: "ana@example.com", DepartmentID: &dept.ID, IsActive: true,
	})
	require.NoError(t, err)
	f.ops, err = employees.Create(ctx, employee.Employee{
		EmployeeCode: "0000-0002", FullName: "Budi", Email: "budi@example.com", IsActive: true,
	})
	require.NoError(t, err)

	balances := sqlite.NewLeaveBalanceRepository(db)
	_, err = balances.Create(ctx, leave.LeaveBalance{
		EmployeeID: f.eng.ID, LeaveTypeID: f.annual.ID, Year: 2025,
		Allocated: decimal.NewFromInt(12), Used: decimal.NewFromInt(3),
	})
	require.NoError(t, err)

	requests := sqlite.NewLeaveRequestRepository(db)
	seed := []struct {
		emp    employee.Employee
		lt     leave.LeaveType
		start  string
		end    string
		status leave.LeaveRequestStatus
	}{
		{f.eng, f.annual, "2025-01-06", "2025-01-08", leave.LeaveRequestStatusApproved},
		{f.eng, f.sick, "2025-03-03", "2025-03-03", leave.LeaveRequestStatusPending},
		{f.ops, f.annual, "2025-03-10", "2025-03-11", leave.LeaveRequestStatusRejected},
		{f.ops, f.annual, "2024-12-30", "2025-01-02", leave.LeaveRequestStatusCancelled},
	}
	for _, s := range seed {
		start, _ := validator.IsValidDate(s.start)
		end, _ := validator.IsValidDate(s.end)
		_, err := requests.Create(ctx, leave.LeaveRequest{
			EmployeeID: s.emp.ID, LeaveTypeID: s.lt.ID, StartDate: start, EndDate: end,
			TotalDays: decimal.NewFromInt(1), Status: s.status,
		})
		require.NoError(t, err)
	}

	return f
}

func TestReportService_GenerateLeaveSummary(t *testing.T) {
	f := newReportFixture(t)

	summary, err := f.service.GenerateLeaveSummary(context.Background(), report.LeaveSummaryRequest{Year: 2025})
	require.NoError(t, err)

	assert.Equal(t, 2025, summary.Year)
	assert.Equal(t, 2, summary.TotalActiveEmployees)
	// The request starting in 2024 belongs to 2024.
	assert.Equal(t, 3, summary.TotalRequests)
	assert.Equal(t, 1, summary.PendingCount)
	assert.Equal(t, 1, summary.ApprovedCount)
	assert.Equal(t, 1, summary.RejectedCount)
	assert.Equal(t, 0, summary.CancelledCount)

	require.Len(t, summary.ByMonth, 12)
	assert.Equal(t, report.MonthCount{Month: 1, Label: "Jan", Count: 1}, summary.ByMonth[0])
	assert.Equal(t, report.MonthCount{Month: 3, Label: "Mar", Count: 2}, summary.ByMonth[2])
	assert.Equal(t, 0, summary.ByMonth[11].Count)

	assert.ElementsMatch(t, []report.NamedCount{
		{Name: "Engineering", Count: 2},
		{Name: report.NoDepartment, Count: 1},
	}, summary.ByDepartment)
	assert.ElementsMatch(t, []report.NamedCount{
		{Name: "Annual", Count: 2},
		{Name: "Sick", Count: 1},
	}, summary.ByLeaveType)
}

func TestReportService_GenerateLeaveSummary_EmptyYear(t *testing.T) {
	f := newReportFixture(t)

	summary, err := f.service.GenerateLeaveSummary(context.Background(), report.LeaveSummaryRequest{Year: 2020})
	require.NoError(t, err)
	assert.Zero(t, summary.TotalRequests)
	assert.NotNil(t, summary.ByDepartment)
	assert.NotNil(t, summary.ByLeaveType)
	assert.Len(t, summary.ByMonth, 12)
}

func TestReportService_GenerateLeaveSummary_InvalidYear(t *testing.T) {
	f := newReportFixture(t)

	_, err := f.service.GenerateLeaveSummary(context.Background(), report.LeaveSummaryRequest{Year: 1999})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "year", verrs[0].Field)

	_, err = f.service.GenerateLeaveSummary(context.Background(), report.LeaveSummaryRequest{Year: time.Now().Year() + 2})
	assert.ErrorAs(t, err, &verrs)
}

func TestReportService_GenerateLeaveList(t *testing.T) {
	f := newReportFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  report.LeaveListRequest
		want int
	}{
		{"all", report.LeaveListRequest{}, 4},
		{"by status", report.LeaveListRequest{Status: "APPROVED"}, 1},
		{"by employee", report.LeaveListRequest{EmployeeID: f.ops.ID}, 2},
		{"by leave type", report.LeaveListRequest{LeaveTypeID: f.sick.ID}, 1},
		{"overlapping january", report.LeaveListRequest{DateFrom: "2025-01-01", DateTo: "2025-01-31"}, 2},
		{"from march", report.LeaveListRequest{DateFrom: "2025-03-01"}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, err := f.service.GenerateLeaveList(ctx, tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, list.Total)
			assert.Len(t, list.Rows, tt.want)
		})
	}
}

func TestReportService_GenerateLeaveList_Invalid(t *testing.T) {
	f := newReportFixture(t)

	_, err := f.service.GenerateLeaveList(context.Background(), report.LeaveListRequest{
		Status:   "DONE",
		DateFrom: "2025-02-01",
		DateTo:   "2025-01-01",
	})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Len(t, verrs, 2)
}

func TestReportService_GenerateLeaveBalanceReport(t *testing.T) {
	f := newReportFixture(t)

	rep, err := f.service.GenerateLeaveBalanceReport(context.Background(), report.LeaveBalanceReportRequest{Year: 2025})
	require.NoError(t, err)
	require.Len(t, rep.Rows, 2)

	byID := map[string]report.LeaveBalanceRow{}
	for _, r := range rep.Rows {
		byID[r.EmployeeID] = r
	}

	ana := byID[f.eng.ID]
	assert.Equal(t, "Engineering", ana.DepartmentName)
	require.Len(t, ana.Balances, 1)
	assert.Equal(t, "Annual", ana.Balances[0].LeaveTypeName)
	assert.True(t, ana.Balances[0].Remaining.Equal(decimal.NewFromInt(9)))

	budi := byID[f.ops.ID]
	assert.Equal(t, report.NoDepartment, budi.DepartmentName)
	assert.Empty(t, budi.Balances)
}

func TestReportService_QueryFailure(t *testing.T) {
	ctx := context.Background()

	db, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "closed.db"))
	require.NoError(t, err)
	service := NewReportService(sqlite.NewReportRepository(db), sqlite.NewLeaveRequestRepository(db))
	require.NoError(t, db.Close())

	_, err = service.GenerateLeaveBalanceReport(ctx, report.LeaveBalanceReportRequest{Year: 2025})
	require.ErrorIs(t, err, report.ErrReportUnavailable)

	var queryErr *report.QueryError
	require.ErrorAs(t, err, &queryErr)
	assert.Equal(t, "leave balance", queryErr.Report)
	assert.Equal(t, "get leave balance report", queryErr.Step)

	_, err = service.GenerateLeaveSummary(ctx, report.LeaveSummaryRequest{Year: 2025})
	require.ErrorAs(t, err, &queryErr)
	assert.Equal(t, "summary", queryErr.Report)
}
