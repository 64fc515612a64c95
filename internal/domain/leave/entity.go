package leave

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// LeaveType entity
type LeaveType struct {
	ID                string
	Name              string
	IsPaid            bool
	AllowHalfDay      bool
	RequireAttachment bool
	DefaultAllocation decimal.Decimal

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Holiday is a single non-working calendar date.
type Holiday struct {
	ID        string
	Date      time.Time
	Name      string
	CreatedAt time.Time
}

// BalanceKey identifies one ledger entry.
type BalanceKey struct {
	EmployeeID  string
	LeaveTypeID string
	Year        int
}

// LeaveBalance is the allocated-vs-used quota of one employee, one leave type
// and one calendar year.
type LeaveBalance struct {
	ID          string
	EmployeeID  string
	LeaveTypeID string
	Year        int
	Allocated   decimal.Decimal
	Used        decimal.Decimal

	CreatedAt time.Time
	UpdatedAt time.Time

	// Join
	LeaveTypeName *string
	EmployeeName  *string
}

func (b LeaveBalance) Key() BalanceKey {
	return BalanceKey{EmployeeID: b.EmployeeID, LeaveTypeID: b.LeaveTypeID, Year: b.Year}
}

func (b LeaveBalance) Remaining() decimal.Decimal {
	return b.Allocated.Sub(b.Used)
}

type LeaveRequestStatus string

const (
	LeaveRequestStatusPending   LeaveRequestStatus = "PENDING"
	LeaveRequestStatusApproved  LeaveRequestStatus = "APPROVED"
	LeaveRequestStatusRejected  LeaveRequestStatus = "REJECTED"
	LeaveRequestStatusCancelled LeaveRequestStatus = "CANCELLED"
)

func (s LeaveRequestStatus) IsValid() bool {
	switch s {
	case LeaveRequestStatusPending, LeaveRequestStatusApproved, LeaveRequestStatusRejected, LeaveRequestStatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition is possible.
func (s LeaveRequestStatus) IsTerminal() bool {
	return s != LeaveRequestStatusPending
}

// LeaveRequest entity
type LeaveRequest struct {
	ID          string
	EmployeeID  string
	LeaveTypeID string

	StartDate time.Time
	EndDate   time.Time
	HalfDay   bool
	TotalDays decimal.Decimal

	Reason         string
	AttachmentPath *string

	Status         LeaveRequestStatus
	ApproverID     *string
	ApproveComment string
	DecidedAt      *time.Time

	CreatedAt   time.Time
	UpdatedAt   time.Time
	CancelledAt *time.Time

	// Join
	LeaveTypeName  *string
	EmployeeName   *string
	EmployeeCode   *string
	DepartmentName *string
}

func (r LeaveRequest) IsPending() bool {
	return !r.Status.IsTerminal()
}

// TransitionTo moves a pending request into one of the decided states.
func (r *LeaveRequest) TransitionTo(status LeaveRequestStatus) error {
	if r.Status.IsTerminal() || !status.IsTerminal() || !status.IsValid() {
		return ErrInvalidStateTransition
	}
	r.Status = status
	return nil
}

// DateOnly truncates t to midnight UTC of its calendar date.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysByYear holds chargeable days per calendar year.
type DaysByYear map[int]decimal.Decimal

// Years returns the years in ascending order.
func (d DaysByYear) Years() []int {
	years := make([]int, 0, len(d))
	for y := range d {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

func (d DaysByYear) Total() decimal.Decimal {
	total := decimal.Zero
	for _, days := range d {
		total = total.Add(days)
	}
	return total
}
