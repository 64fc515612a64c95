package auth

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/auth"
	"github.com/cmlabs-hris/hris-leave-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-leave-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-leave-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-leave-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-leave-go/internal/repository/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testAccessExp  = "1h"
	testRefreshExp = "24h"
	testSecret     = "test-secret-key-for-jwt"
	testPassword   = "Secret123!"
)

type authFixture struct {
	service     auth.AuthService
	users       user.UserRepository
	employees   employee.EmployeeRepository
	provisioner *fakeProvisioner
	user        user.User
	emp         employee.Employee
}

// fakeProvisioner records default provisioning and can be told to fail.
type fakeProvisioner struct {
	calls []string
	err   error
}

func (p *fakeProvisioner) ProvisionDefaults(_ context.Context, employeeID string, _ int) (int, error) {
	if p.err != nil {
		return 0, p.err
	}
	p.calls = append(p.calls, employeeID)
	return 1, nil
}

func (p *fakeProvisioner) ProvisionYear(context.Context, int) (leave.ProvisionResponse, error) {
	return leave.ProvisionResponse{}, nil
}

func newAuthFixture(t *testing.T) authFixture {
	t.Helper()
	ctx := context.Background()

	db, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "auth.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	jwtService, err := jwt.NewJWTService(testSecret, testAccessExp, testRefreshExp)
	require.NoError(t, err)

	users := sqlite.NewUserRepository(db)
	employees := sqlite.NewEmployeeRepository(db)

	hash, err := HashPassword(testPassword)
	require.NoError(t, err)
	u, err := users.Create(ctx, user.User{Email: "alice@example.com", PasswordHash: hash, Role: user.RoleEmployee, IsActive: true})
	require.NoError(t, err)
	emp, err := employees.Create(ctx, employee.Employee{
		UserID: &u.ID, EmployeeCode: "0000-0001", FullName: "Alice", Email: u.Email, IsActive: true,
	})
	require.NoError(t, err)

	provisioner := &fakeProvisioner{}
	today := func() time.Time { return time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC) }

	return authFixture{
		service:     NewAuthService(sqlite.NewTransactor(db), users, sqlite.NewRefreshTokenRepository(db), employees, jwtService, provisioner, today),
		users:       users,
		employees:   employees,
		provisioner: provisioner,
		user:        u,
		emp:         emp,
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	f := newAuthFixture(t)

	resp, err := f.service.Login(context.Background(), auth.LoginRequest{Email: "ALICE@example.com", Password: testPassword})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Greater(t, resp.RefreshTokenExpiresIn, resp.AccessTokenExpiresIn)
}

func TestAuthService_Login_InvalidCredentials(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	_, err := f.service.Login(ctx, auth.LoginRequest{Email: "alice@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	_, err = f.service.Login(ctx, auth.LoginRequest{Email: "nobody@example.com", Password: testPassword})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	_, err = f.service.Login(ctx, auth.LoginRequest{Email: "not-an-email", Password: testPassword})
	assert.Error(t, err)
}

func TestAuthService_Login_Inactive(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	require.NoError(t, f.users.SetActive(ctx, f.user.ID, false))

	_, err := f.service.Login(ctx, auth.LoginRequest{Email: "alice@example.com", Password: testPassword})
	assert.ErrorIs(t, err, auth.ErrAccountInactive)
}

func TestAuthService_RefreshAndLogout(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	tokens, err := f.service.Login(ctx, auth.LoginRequest{Email: "alice@example.com", Password: testPassword})
	require.NoError(t, err)

	refreshed, err := f.service.RefreshToken(ctx, auth.RefreshTokenRequest{RefreshToken: tokens.RefreshToken})
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)

	// An access token is not a refresh token.
	_, err = f.service.RefreshToken(ctx, auth.RefreshTokenRequest{RefreshToken: tokens.AccessToken})
	assert.ErrorIs(t, err, auth.ErrInvalidToken)

	require.NoError(t, f.service.Logout(ctx, tokens.RefreshToken))
	require.NoError(t, f.service.Logout(ctx, tokens.RefreshToken))

	_, err = f.service.RefreshToken(ctx, auth.RefreshTokenRequest{RefreshToken: tokens.RefreshToken})
	assert.ErrorIs(t, err, auth.ErrRefreshTokenRevoked)
}

func TestAuthService_Me(t *testing.T) {
	f := newAuthFixture(t)

	me, err := f.service.Me(context.Background(), f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", me.Email)
	assert.Equal(t, "employee", me.Role)
	require.NotNil(t, me.EmployeeID)
	assert.Equal(t, f.emp.ID, *me.EmployeeID)
	require.NotNil(t, me.EmployeeCode)
	assert.Equal(t, "0000-0001", *me.EmployeeCode)

	_, err = f.service.Me(context.Background(), "missing")
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}

func TestAuthService_Register(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	resp, err := f.service.Register(ctx, auth.RegisterRequest{
		FullName: "Bob Builder", Email: "bob@example.com", Password: testPassword, ConfirmPassword: testPassword,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)

	u, err := f.users.GetByEmail(ctx, "bob@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.RoleEmployee, u.Role)
	assert.True(t, u.IsActive)

	emp, err := f.employees.GetByUserID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "2025-0001", emp.EmployeeCode)
	assert.Equal(t, "Bob Builder", emp.FullName)
	assert.Equal(t, []string{emp.ID}, f.provisioner.calls)

	_, err = f.service.Login(ctx, auth.LoginRequest{Email: "bob@example.com", Password: testPassword})
	assert.NoError(t, err)
}

func TestAuthService_Register_RollsBackOnProvisionFailure(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	f.provisioner.err = errors.New("no leave types")

	_, err := f.service.Register(ctx, auth.RegisterRequest{
		Email: "carol@example.com", Password: testPassword, ConfirmPassword: testPassword,
	})
	require.Error(t, err)

	_, err = f.users.GetByEmail(ctx, "carol@example.com")
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}

func TestAuthService_Register_PasswordMismatch(t *testing.T) {
	f := newAuthFixture(t)

	_, err := f.service.Register(context.Background(), auth.RegisterRequest{
		Email: "dave@example.com", Password: testPassword, ConfirmPassword: "different-password",
	})
	require.Error(t, err)
	assert.Empty(t, f.provisioner.calls)
}

func TestAuthService_LoginWithGoogle(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	resp, err := f.service.LoginWithGoogle(ctx, auth.GoogleLoginRequest{GoogleID: "g-1", Email: "alice@example.com", EmailVerified: true})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)

	_, err = f.service.LoginWithGoogle(ctx, auth.GoogleLoginRequest{GoogleID: "g-1", Email: "alice@example.com"})
	assert.ErrorIs(t, err, auth.ErrGoogleEmailNotVerified)

	_, err = f.service.LoginWithGoogle(ctx, auth.GoogleLoginRequest{GoogleID: "g-2", Email: "stranger@example.com", EmailVerified: true})
	assert.ErrorIs(t, err, auth.ErrNoAccountForEmail)

	require.NoError(t, f.users.SetActive(ctx, f.user.ID, false))
	_, err = f.service.LoginWithGoogle(ctx, auth.GoogleLoginRequest{GoogleID: "g-1", Email: "alice@example.com", EmailVerified: true})
	assert.ErrorIs(t, err, auth.ErrAccountInactive)
}
