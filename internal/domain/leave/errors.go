package leave

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrLeaveRequestNotFound = errors.New("leave request not found")
	ErrLeaveTypeNotFound    = errors.New("leave type not found")
	ErrLeaveTypeNameExists  = errors.New("leave type name already exists")
	ErrHolidayNotFound      = errors.New("holiday not found")
	ErrHolidayExists        = errors.New("a holiday is already registered on this date")
	ErrBalanceNotFound      = errors.New("leave balance not found")
	ErrBalanceExists        = errors.New("leave balance already exists")

	ErrInvalidRange           = errors.New("end date must not be before start date")
	ErrPastDate               = errors.New("cannot request leave in the past")
	ErrHalfDayNotAllowed      = errors.New("this leave type does not allow half-day leave")
	ErrOverlap                = errors.New("leave request overlaps with existing leave")
	ErrNoBalance              = errors.New("no leave balance")
	ErrInsufficientBalance    = errors.New("not enough leave balance")
	ErrInvalidStateTransition = errors.New("only pending leave requests can be changed")
	ErrUnauthorizedAction     = errors.New("not allowed to act on this leave request")
	ErrAttachmentRequired     = errors.New("this leave type requires an attachment")
	ErrFileSizeExceeds        = errors.New("attachment exceeds the maximum allowed size")
	ErrFileTypeNotAllowed     = errors.New("attachment type not allowed")
	ErrInvalidBalance         = errors.New("used days cannot exceed allocated days")

	// ErrHalfDayRange is an ErrInvalidRange.
	ErrHalfDayRange = fmt.Errorf("%w: half-day leave must start and end on the same date", ErrInvalidRange)
)

// NoBalanceError reports a missing ledger entry for a paid leave type.
type NoBalanceError struct {
	LeaveType string
	Year      int
}

func (e *NoBalanceError) Error() string {
	return fmt.Sprintf("No leave balance for %s in year %d.", e.LeaveType, e.Year)
}

func (e *NoBalanceError) Unwrap() error { return ErrNoBalance }

// InsufficientBalanceError reports that one year's remaining quota is below
// what the request needs.
type InsufficientBalanceError struct {
	LeaveType string
	Year      int
	Remaining decimal.Decimal
	Requested decimal.Decimal
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("Not enough leave balance for %s in %d. (remaining %s, requested %s)",
		e.LeaveType, e.Year, e.Remaining.StringFixed(1), e.Requested.StringFixed(1))
}

func (e *InsufficientBalanceError) Unwrap() error { return ErrInsufficientBalance }
