package employee

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/auth"
	"github.com/cmlabs-hris/hris-leave-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-leave-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-leave-go/internal/domain/master/department"
	"github.com/cmlabs-hris/hris-leave-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-leave-go/internal/repository/sqlite"
	leaveservice "github.com/cmlabs-hris/hris-leave-go/internal/service/leave"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type employeeFixture struct {
	service       employee.EmployeeService
	users         user.UserRepository
	balances      leave.LeaveBalanceRepository
	refreshTokens auth.RefreshTokenRepository
	annual        leave.LeaveType
	department    department.Department
}

func newEmployeeFixture(t *testing.T) employeeFixture {
	t.Helper()
	ctx := context.Background()

	db, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "employee.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	tx := sqlite.NewTransactor(db)
	employees := sqlite.NewEmployeeRepository(db)
	users := sqlite.NewUserRepository(db)
	departments := sqlite.NewDepartmentRepository(db)
	leaveTypes := sqlite.NewLeaveTypeRepository(db)
	balances := sqlite.NewLeaveBalanceRepository(db)
	refreshTokens := sqlite.NewRefreshTokenRepository(db)

	annual, err := leaveTypes.Create(ctx, leave.LeaveType{Name: "Annual", IsPaid: true, DefaultAllocation: decimal.NewFromInt(12)})
	require.NoError(t, err)
	dept, err := departments.Create(ctx, department.Department{Name: "Engineering"})
	require.NoError(t, err)

	admin := leaveservice.NewAdminService(tx, leaveTypes, sqlite.NewHolidayRepository(db), balances, employees, leaveservice.NewLedger(balances))
	today := func() time.Time { return time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC) }

	return employeeFixture{
		service:       NewEmployeeService(tx, employees, users, departments, refreshTokens, admin, today),
		users:         users,
		balances:      balances,
		refreshTokens: refreshTokens,
		annual:        annual,
		department:    dept,
	}
}

func createRequest(code, email string) employee.CreateEmployeeRequest {
	return employee.CreateEmployeeRequest{
		EmployeeCode: code,
		FullName:     "Employee " + code,
		Email:        email,
		Password:     "Secret123!",
	}
}

func TestEmployeeService_Create(t *testing.T) {
	f := newEmployeeFixture(t)
	ctx := context.Background()

	manager, err := f.service.Create(ctx, createRequest("1000-0001", "boss@example.com"))
	require.NoError(t, err)

	req := createRequest("1000-0002", "alice@example.com")
	req.ManagerID = &manager.ID
	req.DepartmentID = &f.department.ID
	req.Role = "manager"
	created, err := f.service.Create(ctx, req)
	require.NoError(t, err)
	require.NotNil(t, created.ManagerName)
	assert.Equal(t, "Employee 1000-0001", *created.ManagerName)
	require.NotNil(t, created.DepartmentName)
	assert.Equal(t, "Engineering", *created.DepartmentName)
	assert.True(t, created.IsActive)

	u, err := f.users.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.RoleManager, u.Role)
	assert.NotEqual(t, "Secret123!", u.PasswordHash)

	// Default balances for the current year.
	b, err := f.balances.Find(ctx, leave.BalanceKey{EmployeeID: created.ID, LeaveTypeID: f.annual.ID, Year: 2025})
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(12).Equal(b.Allocated))
}

func TestEmployeeService_Create_Rejects(t *testing.T) {
	f := newEmployeeFixture(t)
	ctx := context.Background()

	_, err := f.service.Create(ctx, createRequest("1000-0001", "alice@example.com"))
	require.NoError(t, err)

	_, err = f.service.Create(ctx, createRequest("1000-0001", "other@example.com"))
	assert.ErrorIs(t, err, employee.ErrEmployeeCodeExists)

	_, err = f.service.Create(ctx, createRequest("1000-0002", "ALICE@example.com"))
	assert.ErrorIs(t, err, employee.ErrEmailExists)

	missing := "0190a0a0-0000-7000-8000-000000000000"
	req := createRequest("1000-0003", "bob@example.com")
	req.ManagerID = &missing
	_, err = f.service.Create(ctx, req)
	assert.ErrorIs(t, err, employee.ErrManagerNotFound)

	req = createRequest("1000-0003", "bob@example.com")
	req.DepartmentID = &missing
	_, err = f.service.Create(ctx, req)
	assert.ErrorIs(t, err, department.ErrDepartmentNotFound)

	_, err = f.service.Create(ctx, createRequest("bad", "bob@example.com"))
	assert.Error(t, err)
}

func TestEmployeeService_Import(t *testing.T) {
	f := newEmployeeFixture(t)

	resp, err := f.service.Import(context.Background(), employee.ImportEmployeesRequest{Rows: []employee.CreateEmployeeRequest{
		createRequest("2000-0001", "a@example.com"),
		createRequest("2000-0001", "b@example.com"),
		createRequest("2000-0002", "c@example.com"),
	}})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Created)
	assert.Equal(t, 1, resp.Failed)
	require.Len(t, resp.Results, 3)
	assert.NotEmpty(t, resp.Results[0].EmployeeID)
	assert.Equal(t, 2, resp.Results[1].Row)
	assert.Equal(t, employee.ErrEmployeeCodeExists.Error(), resp.Results[1].Error)

	_, err = f.service.Import(context.Background(), employee.ImportEmployeesRequest{})
	assert.Error(t, err)
}

func TestEmployeeService_Update(t *testing.T) {
	f := newEmployeeFixture(t)
	ctx := context.Background()

	manager, err := f.service.Create(ctx, createRequest("3000-0001", "boss@example.com"))
	require.NoError(t, err)
	emp, err := f.service.Create(ctx, createRequest("3000-0002", "alice@example.com"))
	require.NoError(t, err)

	_, err = f.service.Update(ctx, employee.UpdateEmployeeRequest{ID: emp.ID, ManagerID: &emp.ID})
	assert.ErrorIs(t, err, employee.ErrSelfManager)

	name := "Alice Doe"
	role := "hr"
	updated, err := f.service.Update(ctx, employee.UpdateEmployeeRequest{
		ID: emp.ID, FullName: &name, ManagerID: &manager.ID, DepartmentID: &f.department.ID, Role: &role,
	})
	require.NoError(t, err)
	assert.Equal(t, "Alice Doe", updated.FullName)
	require.NotNil(t, updated.ManagerID)
	assert.Equal(t, manager.ID, *updated.ManagerID)

	u, err := f.users.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.RoleHR, u.Role)

	updated, err = f.service.Update(ctx, employee.UpdateEmployeeRequest{ID: emp.ID, ClearManager: true, ClearDepartment: true})
	require.NoError(t, err)
	assert.Nil(t, updated.ManagerID)
	assert.Nil(t, updated.DepartmentID)

	// A deactivated manager cannot take reports.
	_, err = f.service.ToggleActive(ctx, manager.ID)
	require.NoError(t, err)
	_, err = f.service.Update(ctx, employee.UpdateEmployeeRequest{ID: emp.ID, ManagerID: &manager.ID})
	assert.ErrorIs(t, err, employee.ErrManagerInactive)
}

func TestEmployeeService_ToggleActive(t *testing.T) {
	f := newEmployeeFixture(t)
	ctx := context.Background()

	emp, err := f.service.Create(ctx, createRequest("4000-0001", "alice@example.com"))
	require.NoError(t, err)
	require.NotNil(t, emp.UserID)

	require.NoError(t, f.refreshTokens.CreateRefreshToken(ctx, *emp.UserID, "refresh-token", time.Now().Add(time.Hour).Unix(), auth.SessionTrackingRequest{}))

	toggled, err := f.service.ToggleActive(ctx, emp.ID)
	require.NoError(t, err)
	assert.False(t, toggled.IsActive)

	u, err := f.users.GetByID(ctx, *emp.UserID)
	require.NoError(t, err)
	assert.False(t, u.IsActive)

	revoked, err := f.refreshTokens.IsRefreshTokenRevoked(ctx, "refresh-token")
	require.NoError(t, err)
	assert.True(t, revoked)

	toggled, err = f.service.ToggleActive(ctx, emp.ID)
	require.NoError(t, err)
	assert.True(t, toggled.IsActive)

	_, err = f.service.ToggleActive(ctx, "0190a0a0-0000-7000-8000-000000000000")
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}
