package master

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/master/department"
)

type MasterService interface {
	// Department operations
	CreateDepartment(ctx context.Context, req department.CreateDepartmentRequest) (department.DepartmentResponse, error)
	GetDepartment(ctx context.Context, id string) (department.DepartmentResponse, error)
	ListDepartments(ctx context.Context) ([]department.DepartmentResponse, error)
	RenameDepartment(ctx context.Context, req department.UpdateDepartmentRequest) (department.DepartmentResponse, error)
}

type masterServiceImpl struct {
	departmentRepo department.DepartmentRepository
}

func NewMasterService(departmentRepo department.DepartmentRepository) MasterService {
	return &masterServiceImpl{
		departmentRepo: departmentRepo,
	}
}

func toDepartmentResponse(d department.Department) department.DepartmentResponse {
	return department.DepartmentResponse{
		ID:            d.ID,
		Name:          d.Name,
		EmployeeCount: d.EmployeeCount,
	}
}

// ==================== DEPARTMENT ====================

func (s *masterServiceImpl) CreateDepartment(ctx context.Context, req department.CreateDepartmentRequest) (department.DepartmentResponse, error) {
	if err := req.Validate(); err != nil {
		return department.DepartmentResponse{}, err
	}

	created, err := s.departmentRepo.Create(ctx, department.Department{Name: strings.TrimSpace(req.Name)})
	if err != nil {
		return department.DepartmentResponse{}, err
	}

	slog.Info("department created", "department_id", created.ID, "name", created.Name)
	return toDepartmentResponse(created), nil
}

func (s *masterServiceImpl) GetDepartment(ctx context.Context, id string) (department.DepartmentResponse, error) {
	d, err := s.departmentRepo.GetByID(ctx, id)
	if err != nil {
		return department.DepartmentResponse{}, err
	}
	return toDepartmentResponse(d), nil
}

func (s *masterServiceImpl) ListDepartments(ctx context.Context) ([]department.DepartmentResponse, error) {
	departments, err := s.departmentRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list departments: %w", err)
	}

	out := make([]department.DepartmentResponse, 0, len(departments))
	for _, d := range departments {
		out = append(out, toDepartmentResponse(d))
	}
	return out, nil
}

func (s *masterServiceImpl) RenameDepartment(ctx context.Context, req department.UpdateDepartmentRequest) (department.DepartmentResponse, error) {
	if err := req.Validate(); err != nil {
		return department.DepartmentResponse{}, err
	}

	if err := s.departmentRepo.Rename(ctx, req.ID, strings.TrimSpace(req.Name)); err != nil {
		return department.DepartmentResponse{}, err
	}
	return s.GetDepartment(ctx, req.ID)
}
