package user

type Permission string

const (
	// Self Management
	PermissionViewOwnProfile Permission = "profile.view_own"

	// Leave
	PermissionLeaveViewOwn      Permission = "leave.view_own"
	PermissionLeaveCreate       Permission = "leave.create"
	PermissionLeaveViewTeam     Permission = "leave.view_team"
	PermissionLeaveApprove      Permission = "leave.approve"
	PermissionLeaveManageTypes  Permission = "leave.manage_types"
	PermissionLeaveManageQuotas Permission = "leave.manage_quotas"

	// Employee Management
	PermissionEmployeeViewAll Permission = "employee.view_all"
	PermissionEmployeeManage  Permission = "employee.manage"

	// Reports
	PermissionReportsView    Permission = "reports.view"
	PermissionReportsSummary Permission = "reports.summary"
)

var selfService = []Permission{
	PermissionViewOwnProfile,
	PermissionLeaveViewOwn,
	PermissionLeaveCreate,
}

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleAdmin: {
		// Admin has all permissions
		PermissionViewOwnProfile,
		PermissionLeaveViewOwn,
		PermissionLeaveCreate,
		PermissionLeaveViewTeam,
		PermissionLeaveApprove,
		PermissionLeaveManageTypes,
		PermissionLeaveManageQuotas,
		PermissionEmployeeViewAll,
		PermissionEmployeeManage,
		PermissionReportsView,
		PermissionReportsSummary,
	},
	RoleHR: append([]Permission{
		PermissionLeaveManageTypes,
		PermissionLeaveManageQuotas,
		PermissionEmployeeViewAll,
		PermissionEmployeeManage,
		PermissionReportsView,
		PermissionReportsSummary,
	}, selfService...),
	RoleCEO: append([]Permission{
		PermissionReportsView,
		PermissionReportsSummary,
	}, selfService...),
	RoleManager: append([]Permission{
		PermissionLeaveViewTeam,
		PermissionLeaveApprove,
	}, selfService...),
	RoleEmployee: selfService,
}

// HasPermission checks if a role has a specific permission
func HasPermission(role Role, permission Permission) bool {
	permissions, exists := RolePermissions[role]
	if !exists {
		return false
	}

	for _, p := range permissions {
		if p == permission {
			return true
		}
	}

	return false
}
