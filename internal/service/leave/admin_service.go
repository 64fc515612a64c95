package leave

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-leave-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-leave-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-leave-go/internal/pkg/validator"
)

type adminService struct {
	tx         database.Transactor
	leaveTypes leave.LeaveTypeRepository
	holidays   leave.HolidayRepository
	balances   leave.LeaveBalanceRepository
	employees  employee.EmployeeRepository
	ledger     *Ledger
}

func NewAdminService(
	tx database.Transactor,
	leaveTypes leave.LeaveTypeRepository,
	holidays leave.HolidayRepository,
	balances leave.LeaveBalanceRepository,
	employees employee.EmployeeRepository,
	ledger *Ledger,
) leave.AdminService {
	return &adminService{
		tx:         tx,
		leaveTypes: leaveTypes,
		holidays:   holidays,
		balances:   balances,
		employees:  employees,
		ledger:     ledger,
	}
}

// ==================== LEAVE TYPE ====================

func (s *adminService) CreateLeaveType(ctx context.Context, req leave.CreateLeaveTypeRequest) (leave.LeaveTypeResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveTypeResponse{}, err
	}

	isPaid := true
	if req.IsPaid != nil {
		isPaid = *req.IsPaid
	}

	created, err := s.leaveTypes.Create(ctx, leave.LeaveType{
		Name:              req.Name,
		IsPaid:            isPaid,
		AllowHalfDay:      req.AllowHalfDay,
		RequireAttachment: req.RequireAttachment,
		DefaultAllocation: req.DefaultAllocation,
	})
	if err != nil {
		return leave.LeaveTypeResponse{}, err
	}

	slog.Info("leave type created", "leave_type_id", created.ID, "name", created.Name)
	return leave.NewLeaveTypeResponse(created), nil
}

func (s *adminService) UpdateLeaveType(ctx context.Context, req leave.UpdateLeaveTypeRequest) (leave.LeaveTypeResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveTypeResponse{}, err
	}

	existing, err := s.leaveTypes.GetByID(ctx, req.ID)
	if err != nil {
		return leave.LeaveTypeResponse{}, err
	}

	if req.Name != nil {
		existing.Name = *req.Name
	}
	if req.IsPaid != nil {
		existing.IsPaid = *req.IsPaid
	}
	if req.AllowHalfDay != nil {
		existing.AllowHalfDay = *req.AllowHalfDay
	}
	if req.RequireAttachment != nil {
		existing.RequireAttachment = *req.RequireAttachment
	}
	if req.DefaultAllocation != nil {
		existing.DefaultAllocation = *req.DefaultAllocation
	}

	if err := s.leaveTypes.Update(ctx, existing); err != nil {
		return leave.LeaveTypeResponse{}, err
	}
	return leave.NewLeaveTypeResponse(existing), nil
}

func (s *adminService) ListLeaveTypes(ctx context.Context) ([]leave.LeaveTypeResponse, error) {
	types, err := s.leaveTypes.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave types: %w", err)
	}

	out := make([]leave.LeaveTypeResponse, 0, len(types))
	for _, lt := range types {
		out = append(out, leave.NewLeaveTypeResponse(lt))
	}
	return out, nil
}

// ==================== HOLIDAY ====================

func (s *adminService) CreateHoliday(ctx context.Context, req leave.CreateHolidayRequest) (leave.HolidayResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.HolidayResponse{}, err
	}
	date, _ := validator.IsValidDate(req.Date)

	created, err := s.holidays.Create(ctx, leave.Holiday{Date: date, Name: req.Name})
	if err != nil {
		return leave.HolidayResponse{}, err
	}

	slog.Info("holiday registered", "date", req.Date, "name", req.Name)
	return leave.NewHolidayResponse(created), nil
}

func (s *adminService) DeleteHoliday(ctx context.Context, id string) error {
	return s.holidays.Delete(ctx, id)
}

func (s *adminService) ListHolidays(ctx context.Context, year int) ([]leave.HolidayResponse, error) {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)

	holidays, err := s.holidays.ListBetween(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list holidays: %w", err)
	}

	out := make([]leave.HolidayResponse, 0, len(holidays))
	for _, h := range holidays {
		out = append(out, leave.NewHolidayResponse(h))
	}
	return out, nil
}

// ==================== BALANCE ====================

// UpsertBalance overwrites a ledger entry without consulting the validator.
func (s *adminService) UpsertBalance(ctx context.Context, req leave.UpsertBalanceRequest) (leave.LeaveBalanceResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveBalanceResponse{}, err
	}

	var stored leave.LeaveBalance
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.employees.GetByID(ctx, req.EmployeeID); err != nil {
			return err
		}
		if _, err := s.leaveTypes.GetByID(ctx, req.LeaveTypeID); err != nil {
			return err
		}

		key := leave.BalanceKey{EmployeeID: req.EmployeeID, LeaveTypeID: req.LeaveTypeID, Year: req.Year}
		_, err := s.balances.Find(ctx, key)
		switch {
		case err == nil:
			stored, err = s.balances.Set(ctx, key, req.Allocated, req.Used)
		case errors.Is(err, leave.ErrBalanceNotFound):
			stored, err = s.balances.Create(ctx, leave.LeaveBalance{
				EmployeeID:  req.EmployeeID,
				LeaveTypeID: req.LeaveTypeID,
				Year:        req.Year,
				Allocated:   req.Allocated,
				Used:        req.Used,
			})
		}
		return err
	})
	if err != nil {
		return leave.LeaveBalanceResponse{}, err
	}

	slog.Info("leave balance set",
		"employee_id", req.EmployeeID, "leave_type_id", req.LeaveTypeID, "year", req.Year,
		"allocated", req.Allocated.String(), "used", req.Used.String())
	return leave.NewLeaveBalanceResponse(stored), nil
}

// CreditBalance hands days back through the ledger. Used never drops below zero.
func (s *adminService) CreditBalance(ctx context.Context, req leave.CreditBalanceRequest) (leave.LeaveBalanceResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveBalanceResponse{}, err
	}

	key := leave.BalanceKey{EmployeeID: req.EmployeeID, LeaveTypeID: req.LeaveTypeID, Year: req.Year}
	var credited leave.LeaveBalance
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.employees.LockForUpdate(ctx, req.EmployeeID); err != nil {
			return err
		}
		var err error
		credited, err = s.ledger.Credit(ctx, key, req.Days)
		return err
	})
	if err != nil {
		return leave.LeaveBalanceResponse{}, err
	}

	slog.Info("leave balance credited",
		"employee_id", req.EmployeeID, "leave_type_id", req.LeaveTypeID, "year", req.Year,
		"days", req.Days.String(), "reason", req.Reason)
	return leave.NewLeaveBalanceResponse(credited), nil
}

func (s *adminService) ListBalances(ctx context.Context, filter leave.BalanceFilter) ([]leave.LeaveBalanceResponse, error) {
	balances, err := s.balances.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave balances: %w", err)
	}

	out := make([]leave.LeaveBalanceResponse, 0, len(balances))
	for _, b := range balances {
		out = append(out, leave.NewLeaveBalanceResponse(b))
	}
	return out, nil
}

// ==================== PROVISIONING ====================

// ProvisionDefaults seeds every leave type's default allocation for the
// employee and year. Existing entries are left untouched.
func (s *adminService) ProvisionDefaults(ctx context.Context, employeeID string, year int) (int, error) {
	if err := validateProvisionYear(year); err != nil {
		return 0, err
	}

	created := 0
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		types, err := s.leaveTypes.List(ctx)
		if err != nil {
			return fmt.Errorf("failed to list leave types: %w", err)
		}
		for _, lt := range types {
			_, isNew, err := s.ledger.GetOrCreate(ctx, employeeID, lt, year)
			if err != nil {
				return err
			}
			if isNew {
				created++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return created, nil
}

// ProvisionYear runs ProvisionDefaults for every active employee. One
// employee's failure does not stop the others.
func (s *adminService) ProvisionYear(ctx context.Context, year int) (leave.ProvisionResponse, error) {
	if err := validateProvisionYear(year); err != nil {
		return leave.ProvisionResponse{}, err
	}

	ids, err := s.employees.ListActiveIDs(ctx)
	if err != nil {
		return leave.ProvisionResponse{}, fmt.Errorf("failed to list active employees: %w", err)
	}

	resp := leave.ProvisionResponse{Year: year}
	for _, id := range ids {
		created, err := s.ProvisionDefaults(ctx, id, year)
		if err != nil {
			slog.Error("failed to provision leave balances", "employee_id", id, "year", year, "error", err)
			continue
		}
		resp.Employees++
		resp.BalancesCreated += created
	}

	slog.Info("leave balances provisioned", "year", year, "employees", resp.Employees, "created", resp.BalancesCreated)
	return resp, nil
}

func validateProvisionYear(year int) error {
	req := leave.ProvisionRequest{Year: year}
	return req.Validate()
}

