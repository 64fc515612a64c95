package employee

import "context"

type EmployeeRepository interface {
	GetByID(ctx context.Context, id string) (Employee, error)
	GetByUserID(ctx context.Context, userID string) (Employee, error)
	GetByEmployeeCode(ctx context.Context, employeeCode string) (Employee, error)
	Create(ctx context.Context, newEmployee Employee) (Employee, error)
	ExistsByCodeOrEmail(ctx context.Context, employeeCode, email string) (bool, error)
	// NextEmployeeCode returns prefix-NNNN with the lowest sequence above
	// every code already issued under prefix.
	NextEmployeeCode(ctx context.Context, prefix string) (string, error)
	Update(ctx context.Context, emp Employee) error
	SetActive(ctx context.Context, id string, active bool) error
	List(ctx context.Context, filter EmployeeFilter) ([]Employee, error)
	ListActiveIDs(ctx context.Context) ([]string, error)
	ListSubordinateIDs(ctx context.Context, managerID string) ([]string, error)
	// LockForUpdate serialises concurrent writers touching the same employee
	// (leave approvals) until the surrounding transaction ends.
	LockForUpdate(ctx context.Context, id string) error
}
