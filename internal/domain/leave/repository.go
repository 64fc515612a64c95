package leave

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// LeaveTypeRepository - interface for leave_types table
type LeaveTypeRepository interface {
	Create(ctx context.Context, leaveType LeaveType) (LeaveType, error)
	GetByID(ctx context.Context, id string) (LeaveType, error)
	List(ctx context.Context) ([]LeaveType, error)
	Update(ctx context.Context, leaveType LeaveType) error
}

// HolidayRepository - interface for holidays table
type HolidayRepository interface {
	Create(ctx context.Context, holiday Holiday) (Holiday, error)
	Delete(ctx context.Context, id string) error
	// ListBetween returns holidays with from <= date <= to, ordered by date.
	ListBetween(ctx context.Context, from, to time.Time) ([]Holiday, error)
}

// LeaveBalanceRepository - interface for leave_balances table.
//
// Find never creates rows; UpsertIfAbsent is the only call that seeds a
// missing entry.
type LeaveBalanceRepository interface {
	Find(ctx context.Context, key BalanceKey) (LeaveBalance, error)
	Create(ctx context.Context, balance LeaveBalance) (LeaveBalance, error)
	// UpsertIfAbsent inserts balance unless its key already exists and returns
	// the stored row. created is false when an existing row was returned.
	UpsertIfAbsent(ctx context.Context, balance LeaveBalance) (stored LeaveBalance, created bool, err error)
	// Debit adds days to used only while allocated - used >= days.
	// Returns ErrInsufficientBalance when the guard fails and
	// ErrBalanceNotFound when the key does not exist.
	Debit(ctx context.Context, key BalanceKey, days decimal.Decimal) (LeaveBalance, error)
	// Credit subtracts days from used only while used >= days.
	Credit(ctx context.Context, key BalanceKey, days decimal.Decimal) (LeaveBalance, error)
	// Set overwrites allocated and used.
	Set(ctx context.Context, key BalanceKey, allocated, used decimal.Decimal) (LeaveBalance, error)
	List(ctx context.Context, filter BalanceFilter) ([]LeaveBalance, error)
}

// LeaveRequestRepository - interface for leave_requests table
type LeaveRequestRepository interface {
	Create(ctx context.Context, request LeaveRequest) (LeaveRequest, error)
	GetByID(ctx context.Context, id string) (LeaveRequest, error)
	// GetByIDForUpdate locks the row until the surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, id string) (LeaveRequest, error)
	// HasOverlap reports whether employeeID has a PENDING or APPROVED request,
	// other than excludeID, intersecting [start, end].
	HasOverlap(ctx context.Context, employeeID string, start, end time.Time, excludeID *string) (bool, error)
	// Transition moves a PENDING request to request.Status. Returns
	// ErrInvalidStateTransition when the stored row is no longer PENDING.
	Transition(ctx context.Context, request LeaveRequest) error
	List(ctx context.Context, filter LeaveRequestFilter) ([]LeaveRequest, error)
}
