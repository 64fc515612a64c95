package leave

import (
	"context"
	"time"
)

// RequestService drives the leave request state machine.
type RequestService interface {
	Submit(ctx context.Context, req SubmitLeaveRequest, today time.Time) (LeaveRequestResponse, error)
	Approve(ctx context.Context, req DecisionRequest, today time.Time) (LeaveRequestResponse, error)
	Reject(ctx context.Context, req DecisionRequest) (LeaveRequestResponse, error)
	Cancel(ctx context.Context, requestID string, actor Actor) (LeaveRequestResponse, error)

	Get(ctx context.Context, requestID string, actor Actor) (LeaveRequestResponse, error)
	ListMine(ctx context.Context, actor Actor, statuses []LeaveRequestStatus) ([]LeaveRequestResponse, error)
	ListTeamPending(ctx context.Context, actor Actor) ([]LeaveRequestResponse, error)
	ListTeamHistory(ctx context.Context, actor Actor) ([]LeaveRequestResponse, error)
}

// AdminService covers HR administration of reference data and the ledger.
type AdminService interface {
	CreateLeaveType(ctx context.Context, req CreateLeaveTypeRequest) (LeaveTypeResponse, error)
	UpdateLeaveType(ctx context.Context, req UpdateLeaveTypeRequest) (LeaveTypeResponse, error)
	ListLeaveTypes(ctx context.Context) ([]LeaveTypeResponse, error)

	CreateHoliday(ctx context.Context, req CreateHolidayRequest) (HolidayResponse, error)
	DeleteHoliday(ctx context.Context, id string) error
	ListHolidays(ctx context.Context, year int) ([]HolidayResponse, error)

	UpsertBalance(ctx context.Context, req UpsertBalanceRequest) (LeaveBalanceResponse, error)
	CreditBalance(ctx context.Context, req CreditBalanceRequest) (LeaveBalanceResponse, error)
	ListBalances(ctx context.Context, filter BalanceFilter) ([]LeaveBalanceResponse, error)
	Provisioner
}

// Provisioner seeds default ledger entries.
type Provisioner interface {
	ProvisionDefaults(ctx context.Context, employeeID string, year int) (int, error)
	ProvisionYear(ctx context.Context, year int) (ProvisionResponse, error)
}
