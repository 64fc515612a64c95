package employee

import (
	"time"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-leave-go/internal/pkg/validator"
)

type CreateEmployeeRequest struct {
	EmployeeCode string  `json:"employee_code" validate:"required,employee_code"`
	FullName     string  `json:"full_name" validate:"required,max=255"`
	Email        string  `json:"email" validate:"required,email,max=254"`
	Password     string  `json:"password" validate:"required,min=8,max=255"`
	Role         string  `json:"role" validate:"omitempty,oneof=employee manager hr ceo admin"`
	ManagerID    *string `json:"manager_id,omitempty" validate:"omitempty,uuid"`
	DepartmentID *string `json:"department_id,omitempty" validate:"omitempty,uuid"`
}

func (r *CreateEmployeeRequest) Validate() error {
	return validator.Struct(r)
}

// RoleOrDefault returns the requested role, falling back to employee.
func (r *CreateEmployeeRequest) RoleOrDefault() user.Role {
	if r.Role == "" {
		return user.RoleEmployee
	}
	return user.Role(r.Role)
}

type UpdateEmployeeRequest struct {
	ID           string  `json:"-" validate:"required"`
	FullName     *string `json:"full_name,omitempty" validate:"omitempty,min=1,max=255"`
	ManagerID    *string `json:"manager_id,omitempty" validate:"omitempty,uuid"`
	DepartmentID *string `json:"department_id,omitempty" validate:"omitempty,uuid"`
	Role         *string `json:"role,omitempty" validate:"omitempty,oneof=employee manager hr ceo admin"`

	ClearManager    bool `json:"clear_manager,omitempty"`
	ClearDepartment bool `json:"clear_department,omitempty"`
}

func (r *UpdateEmployeeRequest) Validate() error {
	if err := validator.Struct(r); err != nil {
		return err
	}

	var errs validator.ValidationErrors
	if r.ClearManager && r.ManagerID != nil {
		errs = append(errs, validator.ValidationError{
			Field:   "manager_id",
			Message: "manager_id cannot be set together with clear_manager",
		})
	}
	if r.ClearDepartment && r.DepartmentID != nil {
		errs = append(errs, validator.ValidationError{
			Field:   "department_id",
			Message: "department_id cannot be set together with clear_department",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type ImportEmployeesRequest struct {
	Rows []CreateEmployeeRequest `json:"rows"`
}

func (r *ImportEmployeesRequest) Validate() error {
	var errs validator.ValidationErrors

	if len(r.Rows) == 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "rows",
			Message: "rows must contain at least one employee",
		})
	}
	if len(r.Rows) > 500 {
		errs = append(errs, validator.ValidationError{
			Field:   "rows",
			Message: "rows must not exceed 500 employees per import",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type ImportRowResult struct {
	Row          int    `json:"row"`
	EmployeeCode string `json:"employee_code"`
	EmployeeID   string `json:"employee_id,omitempty"`
	Error        string `json:"error,omitempty"`
}

type ImportEmployeesResponse struct {
	Created int               `json:"created"`
	Failed  int               `json:"failed"`
	Results []ImportRowResult `json:"results"`
}

type EmployeeFilter struct {
	DepartmentID *string
	ManagerID    *string
	IsActive     *bool
	Search       *string
}

type EmployeeResponse struct {
	ID             string    `json:"id"`
	UserID         *string   `json:"user_id,omitempty"`
	EmployeeCode   string    `json:"employee_code"`
	FullName       string    `json:"full_name"`
	Email          string    `json:"email"`
	ManagerID      *string   `json:"manager_id,omitempty"`
	ManagerName    *string   `json:"manager_name,omitempty"`
	DepartmentID   *string   `json:"department_id,omitempty"`
	DepartmentName *string   `json:"department_name,omitempty"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func NewEmployeeResponse(e Employee) EmployeeResponse {
	return EmployeeResponse{
		ID:             e.ID,
		UserID:         e.UserID,
		EmployeeCode:   e.EmployeeCode,
		FullName:       e.FullName,
		Email:          e.Email,
		ManagerID:      e.ManagerID,
		ManagerName:    e.ManagerName,
		DepartmentID:   e.DepartmentID,
		DepartmentName: e.DepartmentName,
		IsActive:       e.IsActive,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.UpdatedAt,
	}
}
