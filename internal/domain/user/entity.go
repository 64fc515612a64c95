package user

import "time"

type Role string

const (
	RoleEmployee Role = "employee" // Self-service only
	RoleManager  Role = "manager"  // Decides requests of direct subordinates
	RoleHR       Role = "hr"       // Administers employees, leave types and balances
	RoleCEO      Role = "ceo"      // Read-only statistics
	RoleAdmin    Role = "admin"    // Superuser
)

var AllRoles = []Role{RoleEmployee, RoleManager, RoleHR, RoleCEO, RoleAdmin}

func (r Role) IsValid() bool {
	for _, role := range AllRoles {
		if r == role {
			return true
		}
	}
	return false
}

type User struct {
	ID           string
	Email        string
	PasswordHash string
	Role         Role
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// Join
	EmployeeID *string
}

// IsAdmin reports whether the user may act on behalf of any manager.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsManager checks if user is manager or admin
func (u *User) IsManager() bool {
	return u.Role == RoleManager || u.Role == RoleAdmin
}
