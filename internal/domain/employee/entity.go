package employee

import (
	"time"
)

type Employee struct {
	ID           string
	UserID       *string
	EmployeeCode string
	FullName     string
	Email        string
	ManagerID    *string
	DepartmentID *string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// Join
	ManagerName    *string
	DepartmentName *string
}

// IsManagedBy reports whether employeeID is this employee's direct manager.
func (e Employee) IsManagedBy(employeeID string) bool {
	return e.ManagerID != nil && *e.ManagerID == employeeID
}
