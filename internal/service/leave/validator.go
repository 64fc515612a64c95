package leave

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/leave"
	"github.com/shopspring/decimal"
)

// Candidate is a prospective or pending leave request.
type Candidate struct {
	EmployeeID string
	LeaveType  leave.LeaveType
	StartDate  time.Time
	EndDate    time.Time
	HalfDay    bool

	// ExcludeID is the request being re-validated, left out of the overlap check.
	ExcludeID *string
}

// Decision is an accepted candidate's chargeable days.
type Decision struct {
	DaysByYear leave.DaysByYear
	Total      decimal.Decimal
}

// Validator decides whether a candidate is permissible. It only reads.
type Validator struct {
	calendar *Calendar
	ledger   *Ledger
	requests leave.LeaveRequestRepository
}

func NewValidator(calendar *Calendar, ledger *Ledger, requests leave.LeaveRequestRepository) *Validator {
	return &Validator{calendar: calendar, ledger: ledger, requests: requests}
}

// Validate runs the checks in order and returns the first failure.
func (v *Validator) Validate(ctx context.Context, c Candidate, today time.Time) (Decision, error) {
	start, end := leave.DateOnly(c.StartDate), leave.DateOnly(c.EndDate)

	if end.Before(start) {
		return Decision{}, leave.ErrInvalidRange
	}
	if start.Before(leave.DateOnly(today)) {
		return Decision{}, leave.ErrPastDate
	}
	if c.HalfDay && !c.LeaveType.AllowHalfDay {
		return Decision{}, leave.ErrHalfDayNotAllowed
	}

	overlap, err := v.requests.HasOverlap(ctx, c.EmployeeID, start, end, c.ExcludeID)
	if err != nil {
		return Decision{}, fmt.Errorf("failed to check overlap: %w", err)
	}
	if overlap {
		return Decision{}, leave.ErrOverlap
	}

	days, err := v.calendar.WorkingDaysByYear(ctx, start, end, c.HalfDay)
	if err != nil {
		return Decision{}, err
	}
	decision := Decision{DaysByYear: days, Total: days.Total()}

	// Unpaid leave is informational and never touches the ledger.
	if !c.LeaveType.IsPaid {
		return decision, nil
	}

	for _, year := range days.Years() {
		balance, err := v.ledger.Lookup(ctx, c.EmployeeID, c.LeaveType, year)
		if err != nil {
			return Decision{}, err
		}
		if err := CheckRemaining(balance, c.LeaveType, days[year]); err != nil {
			return Decision{}, err
		}
	}

	return decision, nil
}
