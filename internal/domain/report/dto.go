package report

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-leave-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

const NoDepartment = "No Dept"

func validateYear(year int) validator.ValidationErrors {
	var errs validator.ValidationErrors
	currentYear := time.Now().Year()
	if year < 2000 || year > currentYear+1 {
		errs = append(errs, validator.ValidationError{
			Field:   "year",
			Message: fmt.Sprintf("year must be between 2000 and %d", currentYear+1),
		})
	}
	return errs
}

// ========================================
// LEAVE SUMMARY (executive dashboard)
// ========================================

type LeaveSummaryRequest struct {
	Year int `json:"year"`
}

func (r *LeaveSummaryRequest) Validate() error {
	if errs := validateYear(r.Year); len(errs) > 0 {
		return errs
	}
	return nil
}

type NamedCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type MonthCount struct {
	Month int    `json:"month"`
	Label string `json:"label"`
	Count int    `json:"count"`
}

type LeaveSummary struct {
	Year        int    `json:"year"`
	GeneratedAt string `json:"generated_at"`

	TotalActiveEmployees int `json:"total_active_employees"`
	TotalRequests        int `json:"total_requests"`
	PendingCount         int `json:"pending_count"`
	ApprovedCount        int `json:"approved_count"`
	RejectedCount        int `json:"rejected_count"`
	CancelledCount       int `json:"cancelled_count"`

	ByMonth      []MonthCount `json:"by_month"`
	ByDepartment []NamedCount `json:"by_department"`
	ByLeaveType  []NamedCount `json:"by_leave_type"`
}

// ========================================
// FILTERED LEAVE LIST
// ========================================

type LeaveListRequest struct {
	Status       string `json:"status"`
	DepartmentID string `json:"department"`
	LeaveTypeID  string `json:"leave_type"`
	EmployeeID   string `json:"employee"`
	DateFrom     string `json:"date_from"`
	DateTo       string `json:"date_to"`
}

func (r *LeaveListRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Status != "" && !leave.LeaveRequestStatus(r.Status).IsValid() {
		errs = append(errs, validator.ValidationError{
			Field:   "status",
			Message: "status must be one of PENDING, APPROVED, REJECTED, CANCELLED",
		})
	}

	var from, to time.Time
	var hasFrom, hasTo bool
	if r.DateFrom != "" {
		if from, hasFrom = validator.IsValidDate(r.DateFrom); !hasFrom {
			errs = append(errs, validator.ValidationError{
				Field:   "date_from",
				Message: "date_from must be in YYYY-MM-DD format",
			})
		}
	}
	if r.DateTo != "" {
		if to, hasTo = validator.IsValidDate(r.DateTo); !hasTo {
			errs = append(errs, validator.ValidationError{
				Field:   "date_to",
				Message: "date_to must be in YYYY-MM-DD format",
			})
		}
	}
	if hasFrom && hasTo && to.Before(from) {
		errs = append(errs, validator.ValidationError{
			Field:   "date_to",
			Message: "date_to must not be before date_from",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ToFilter converts a validated request into a repository filter.
// A request matches the date bounds when it overlaps [date_from, date_to].
func (r *LeaveListRequest) ToFilter() leave.LeaveRequestFilter {
	var f leave.LeaveRequestFilter
	if r.Status != "" {
		f.Statuses = []leave.LeaveRequestStatus{leave.LeaveRequestStatus(r.Status)}
	}
	if r.DepartmentID != "" {
		f.DepartmentID = &r.DepartmentID
	}
	if r.LeaveTypeID != "" {
		f.LeaveTypeID = &r.LeaveTypeID
	}
	if r.EmployeeID != "" {
		f.EmployeeID = &r.EmployeeID
	}
	if d, ok := validator.IsValidDate(r.DateFrom); ok {
		f.DateFrom = &d
	}
	if d, ok := validator.IsValidDate(r.DateTo); ok {
		f.DateTo = &d
	}
	return f
}

type LeaveListReport struct {
	GeneratedAt string                       `json:"generated_at"`
	Total       int                          `json:"total"`
	Rows        []leave.LeaveRequestResponse `json:"rows"`
}

// ========================================
// LEAVE BALANCE REPORT
// ========================================

type LeaveBalanceReportRequest struct {
	Year int `json:"year"`
}

func (r *LeaveBalanceReportRequest) Validate() error {
	if errs := validateYear(r.Year); len(errs) > 0 {
		return errs
	}
	return nil
}

type LeaveBalanceReport struct {
	GeneratedAt string `json:"generated_at"`
	Year        int    `json:"year"`

	Rows []LeaveBalanceRow `json:"rows"`
}

type LeaveBalanceRow struct {
	EmployeeID     string `json:"employee_id"`
	EmployeeCode   string `json:"employee_code"`
	FullName       string `json:"full_name"`
	DepartmentName string `json:"department_name"`

	Balances []LeaveTypeBalance `json:"balances"`
}

type LeaveTypeBalance struct {
	LeaveTypeName string          `json:"leave_type_name"`
	Allocated     decimal.Decimal `json:"allocated"`
	Used          decimal.Decimal `json:"used"`
	Remaining     decimal.Decimal `json:"remaining"`
}
