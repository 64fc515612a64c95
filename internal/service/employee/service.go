package employee

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/auth"
	"github.com/cmlabs-hris/hris-leave-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-leave-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-leave-go/internal/domain/master/department"
	"github.com/cmlabs-hris/hris-leave-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-leave-go/internal/pkg/database"
	authservice "github.com/cmlabs-hris/hris-leave-go/internal/service/auth"
)

type EmployeeServiceImpl struct {
	tx            database.Transactor
	employeeRepo   employee.EmployeeRepository
	userRepo       user.UserRepository
	departmentRepo department.DepartmentRepository
	refreshTokens  auth.RefreshTokenRepository
	provisioner    leave.Provisioner
	today          func() time.Time
}

func NewEmployeeService(
	tx database.Transactor,
	employeeRepo employee.EmployeeRepository,
	userRepo user.UserRepository,
	departmentRepo department.DepartmentRepository,
	refreshTokens auth.RefreshTokenRepository,
	provisioner leave.Provisioner,
	today func() time.Time,
) employee.EmployeeService {
	if today == nil {
		today = time.Now
	}
	return &EmployeeServiceImpl{
		tx:             tx,
		employeeRepo:   employeeRepo,
		userRepo:       userRepo,
		departmentRepo: departmentRepo,
		refreshTokens:  refreshTokens,
		provisioner:    provisioner,
		today:          today,
	}
}

// Create registers the login account and the employee profile together and
// seeds the current year's default leave balances.
func (s *EmployeeServiceImpl) Create(ctx context.Context, req employee.CreateEmployeeRequest) (employee.EmployeeResponse, error) {
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}

	if req.ManagerID != nil {
		if err := s.checkManager(ctx, "", *req.ManagerID); err != nil {
			return employee.EmployeeResponse{}, err
		}
	}
	if req.DepartmentID != nil {
		if _, err := s.departmentRepo.GetByID(ctx, *req.DepartmentID); err != nil {
			return employee.EmployeeResponse{}, err
		}
	}

	exists, err := s.employeeRepo.ExistsByCodeOrEmail(ctx, req.EmployeeCode, req.Email)
	if err != nil {
		return employee.EmployeeResponse{}, fmt.Errorf("failed to check employee uniqueness: %w", err)
	}
	if exists {
		if _, err := s.employeeRepo.GetByEmployeeCode(ctx, req.EmployeeCode); err == nil {
			return employee.EmployeeResponse{}, employee.ErrEmployeeCodeExists
		}
		return employee.EmployeeResponse{}, employee.ErrEmailExists
	}

	hash, err := authservice.HashPassword(req.Password)
	if err != nil {
		return employee.EmployeeResponse{}, fmt.Errorf("failed to hash password: %w", err)
	}

	var created employee.Employee
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		newUser, err := s.userRepo.Create(ctx, user.User{
			Email:        req.Email,
			PasswordHash: hash,
			Role:         req.RoleOrDefault(),
			IsActive:     true,
		})
		if err != nil {
			if errors.Is(err, user.ErrUserEmailExists) {
				return employee.ErrEmailExists
			}
			return err
		}

		created, err = s.employeeRepo.Create(ctx, employee.Employee{
			UserID:       &newUser.ID,
			EmployeeCode: req.EmployeeCode,
			FullName:     req.FullName,
			Email:        req.Email,
			ManagerID:    req.ManagerID,
			DepartmentID: req.DepartmentID,
			IsActive:     true,
		})
		if err != nil {
			return err
		}

		if _, err := s.provisioner.ProvisionDefaults(ctx, created.ID, s.today().Year()); err != nil {
			return fmt.Errorf("failed to provision leave balances: %w", err)
		}
		return nil
	})
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	slog.Info("employee created", "employee_id", created.ID, "employee_code", created.EmployeeCode)
	return s.Get(ctx, created.ID)
}

// Import creates each row independently and reports per-row outcomes.
func (s *EmployeeServiceImpl) Import(ctx context.Context, req employee.ImportEmployeesRequest) (employee.ImportEmployeesResponse, error) {
	if err := req.Validate(); err != nil {
		return employee.ImportEmployeesResponse{}, err
	}

	resp := employee.ImportEmployeesResponse{Results: make([]employee.ImportRowResult, 0, len(req.Rows))}
	for i, row := range req.Rows {
		result := employee.ImportRowResult{Row: i + 1, EmployeeCode: row.EmployeeCode}

		created, err := s.Create(ctx, row)
		if err != nil {
			result.Error = err.Error()
			resp.Failed++
		} else {
			result.EmployeeID = created.ID
			resp.Created++
		}
		resp.Results = append(resp.Results, result)
	}

	slog.Info("employee import finished", "created", resp.Created, "failed", resp.Failed)
	return resp, nil
}

func (s *EmployeeServiceImpl) Update(ctx context.Context, req employee.UpdateEmployeeRequest) (employee.EmployeeResponse, error) {
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		emp, err := s.employeeRepo.GetByID(ctx, req.ID)
		if err != nil {
			return err
		}

		if req.FullName != nil {
			emp.FullName = *req.FullName
		}
		switch {
		case req.ClearManager:
			emp.ManagerID = nil
		case req.ManagerID != nil:
			if err := s.checkManager(ctx, emp.ID, *req.ManagerID); err != nil {
				return err
			}
			emp.ManagerID = req.ManagerID
		}
		switch {
		case req.ClearDepartment:
			emp.DepartmentID = nil
		case req.DepartmentID != nil:
			if _, err := s.departmentRepo.GetByID(ctx, *req.DepartmentID); err != nil {
				return err
			}
			emp.DepartmentID = req.DepartmentID
		}

		if err := s.employeeRepo.Update(ctx, emp); err != nil {
			return err
		}

		if req.Role != nil && emp.UserID != nil {
			role := user.Role(*req.Role)
			if !role.IsValid() {
				return user.ErrInvalidRole
			}
			if err := s.userRepo.UpdateRole(ctx, *emp.UserID, role); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	return s.Get(ctx, req.ID)
}

func (s *EmployeeServiceImpl) Get(ctx context.Context, id string) (employee.EmployeeResponse, error) {
	emp, err := s.employeeRepo.GetByID(ctx, id)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	return employee.NewEmployeeResponse(emp), nil
}

func (s *EmployeeServiceImpl) List(ctx context.Context, filter employee.EmployeeFilter) ([]employee.EmployeeResponse, error) {
	employees, err := s.employeeRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}

	out := make([]employee.EmployeeResponse, 0, len(employees))
	for _, e := range employees {
		out = append(out, employee.NewEmployeeResponse(e))
	}
	return out, nil
}

// ToggleActive flips the active flag. Employees are never deleted; a
// deactivated account loses its sessions and cannot log in.
func (s *EmployeeServiceImpl) ToggleActive(ctx context.Context, id string) (employee.EmployeeResponse, error) {
	var active bool
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		emp, err := s.employeeRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		active = !emp.IsActive

		if err := s.employeeRepo.SetActive(ctx, id, active); err != nil {
			return err
		}
		if emp.UserID == nil {
			return nil
		}
		if err := s.userRepo.SetActive(ctx, *emp.UserID, active); err != nil {
			return err
		}
		if !active {
			if err := s.refreshTokens.RevokeAllForUser(ctx, *emp.UserID); err != nil {
				return fmt.Errorf("failed to revoke sessions: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	slog.Info("employee active flag changed", "employee_id", id, "is_active", active)
	return s.Get(ctx, id)
}

func (s *EmployeeServiceImpl) checkManager(ctx context.Context, employeeID, managerID string) error {
	if employeeID != "" && employeeID == managerID {
		return employee.ErrSelfManager
	}

	manager, err := s.employeeRepo.GetByID(ctx, managerID)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return employee.ErrManagerNotFound
		}
		return fmt.Errorf("failed to get manager: %w", err)
	}
	if !manager.IsActive {
		return employee.ErrManagerInactive
	}
	return nil
}
