package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/auth"
	"github.com/cmlabs-hris/hris-leave-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-leave-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-leave-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-leave-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-leave-go/internal/pkg/jwt"
	"golang.org/x/crypto/bcrypt"
)

type AuthServiceImpl struct {
	tx database.Transactor
	user.UserRepository
	auth.RefreshTokenRepository
	employee.EmployeeRepository
	jwt.Service
	provisioner leave.Provisioner
	today       func() time.Time
}

func NewAuthService(
	tx database.Transactor,
	userRepository user.UserRepository,
	refreshTokenRepository auth.RefreshTokenRepository,
	employeeRepository employee.EmployeeRepository,
	jwtService jwt.Service,
	provisioner leave.Provisioner,
	today func() time.Time,
) auth.AuthService {
	if today == nil {
		today = time.Now
	}
	return &AuthServiceImpl{
		tx:                     tx,
		UserRepository:         userRepository,
		RefreshTokenRepository: refreshTokenRepository,
		EmployeeRepository:     employeeRepository,
		Service:                jwtService,
		provisioner:            provisioner,
		today:                  today,
	}
}

// HashPassword hashes a plain password with bcrypt's default cost.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Login implements auth.AuthService.
func (a *AuthServiceImpl) Login(ctx context.Context, req auth.LoginRequest) (auth.TokenResponse, error) {
	if err := req.Validate(); err != nil {
		return auth.TokenResponse{}, err
	}

	userData, err := a.UserRepository.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return auth.TokenResponse{}, auth.ErrInvalidCredentials
		}
		return auth.TokenResponse{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(userData.PasswordHash), []byte(req.Password)); err != nil {
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}
	if !userData.IsActive {
		return auth.TokenResponse{}, auth.ErrAccountInactive
	}

	tokenResponse, err := a.issueTokens(ctx, userData, req.Session)
	if err != nil {
		return auth.TokenResponse{}, err
	}

	slog.Info("user logged in", "user_id", userData.ID, "ip", req.Session.IPAddress)
	return tokenResponse, nil
}

// Register creates the user, an employee profile with a generated code and
// the current year's default balances in one transaction, then signs in.
func (a *AuthServiceImpl) Register(ctx context.Context, req auth.RegisterRequest) (auth.TokenResponse, error) {
	if err := req.Validate(); err != nil {
		return auth.TokenResponse{}, err
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return auth.TokenResponse{}, fmt.Errorf("failed to hash password: %w", err)
	}

	year := a.today().Year()
	var (
		tokenResponse auth.TokenResponse
		created       employee.Employee
	)
	err = a.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		newUser, err := a.UserRepository.Create(txCtx, user.User{
			Email:        req.Email,
			PasswordHash: hash,
			Role:         user.RoleEmployee,
			IsActive:     true,
		})
		if err != nil {
			return err
		}

		code, err := a.EmployeeRepository.NextEmployeeCode(txCtx, fmt.Sprintf("%04d", year))
		if err != nil {
			return err
		}
		created, err = a.EmployeeRepository.Create(txCtx, employee.Employee{
			UserID:       &newUser.ID,
			EmployeeCode: code,
			FullName:     req.DisplayName(),
			Email:        newUser.Email,
			IsActive:     true,
		})
		if err != nil {
			return err
		}

		if _, err := a.provisioner.ProvisionDefaults(txCtx, created.ID, year); err != nil {
			return fmt.Errorf("failed to provision leave balances: %w", err)
		}

		newUser.EmployeeID = &created.ID
		tokenResponse, err = a.issueTokens(txCtx, newUser, req.Session)
		return err
	})
	if err != nil {
		return auth.TokenResponse{}, err
	}

	slog.Info("user registered", "employee_id", created.ID, "employee_code", created.EmployeeCode)
	return tokenResponse, nil
}

// LoginWithGoogle signs in the active account whose email matches a verified
// Google profile. Accounts are never created here.
func (a *AuthServiceImpl) LoginWithGoogle(ctx context.Context, req auth.GoogleLoginRequest) (auth.TokenResponse, error) {
	if !req.EmailVerified {
		return auth.TokenResponse{}, auth.ErrGoogleEmailNotVerified
	}

	userData, err := a.UserRepository.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return auth.TokenResponse{}, auth.ErrNoAccountForEmail
		}
		return auth.TokenResponse{}, fmt.Errorf("failed to get user by email: %w", err)
	}
	if !userData.IsActive {
		return auth.TokenResponse{}, auth.ErrAccountInactive
	}

	tokenResponse, err := a.issueTokens(ctx, userData, req.Session)
	if err != nil {
		return auth.TokenResponse{}, err
	}

	slog.Info("user logged in with google", "user_id", userData.ID, "google_id", req.GoogleID)
	return tokenResponse, nil
}

// issueTokens signs an access/refresh pair and stores the refresh token.
func (a *AuthServiceImpl) issueTokens(ctx context.Context, u user.User, session auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	var tokenResponse auth.TokenResponse
	err := a.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		var err error
		tokenResponse.AccessToken, tokenResponse.AccessTokenExpiresIn, err = a.Service.GenerateAccessToken(u.ID, u.Email, u.EmployeeID, u.Role)
		if err != nil {
			return fmt.Errorf("failed to create access token: %w", err)
		}
		tokenResponse.RefreshToken, tokenResponse.RefreshTokenExpiresIn, err = a.Service.GenerateRefreshToken(u.ID)
		if err != nil {
			return fmt.Errorf("failed to create refresh token: %w", err)
		}

		err = a.CreateRefreshToken(txCtx, u.ID, tokenResponse.RefreshToken, tokenResponse.RefreshTokenExpiresIn, session)
		if err != nil {
			return fmt.Errorf("failed to save refresh token to database: %w", err)
		}
		return nil
	})
	if err != nil {
		return auth.TokenResponse{}, err
	}
	return tokenResponse, nil
}

// Logout implements auth.AuthService.
func (a *AuthServiceImpl) Logout(ctx context.Context, token string) error {
	return a.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		isRevoked, err := a.IsRefreshTokenRevoked(txCtx, token)
		if err != nil {
			return fmt.Errorf("failed to check if refresh token is revoked: %w", err)
		}
		if !isRevoked {
			if err := a.RevokeRefreshToken(txCtx, token); err != nil {
				return fmt.Errorf("failed to revoke refresh token: %w", err)
			}
		}
		return nil
	})
}

// RefreshToken implements auth.AuthService.
func (a *AuthServiceImpl) RefreshToken(ctx context.Context, req auth.RefreshTokenRequest) (auth.AccessTokenResponse, error) {
	if err := req.Validate(); err != nil {
		return auth.AccessTokenResponse{}, err
	}

	// 1. Verify signature, expiry and token type
	userID, err := a.Service.ParseRefreshToken(req.RefreshToken)
	if err != nil {
		return auth.AccessTokenResponse{}, auth.ErrInvalidToken
	}

	// 2. Check DB for revocation/expiry
	isRevoked, err := a.IsRefreshTokenRevoked(ctx, req.RefreshToken)
	if err != nil {
		return auth.AccessTokenResponse{}, auth.ErrInvalidToken
	}
	if isRevoked {
		return auth.AccessTokenResponse{}, auth.ErrRefreshTokenRevoked
	}

	// 3. Get user; role and employee link may have changed since login
	userData, err := a.UserRepository.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return auth.AccessTokenResponse{}, auth.ErrInvalidToken
		}
		return auth.AccessTokenResponse{}, fmt.Errorf("failed to get user: %w", err)
	}
	if !userData.IsActive {
		return auth.AccessTokenResponse{}, auth.ErrAccountInactive
	}

	// 4. Generate new access token
	var resp auth.AccessTokenResponse
	resp.AccessToken, resp.AccessTokenExpiresIn, err = a.Service.GenerateAccessToken(userData.ID, userData.Email, userData.EmployeeID, userData.Role)
	if err != nil {
		return auth.AccessTokenResponse{}, fmt.Errorf("failed to generate access token: %w", err)
	}

	return resp, nil
}

// Me implements auth.AuthService.
func (a *AuthServiceImpl) Me(ctx context.Context, userID string) (auth.MeResponse, error) {
	userData, err := a.UserRepository.GetByID(ctx, userID)
	if err != nil {
		return auth.MeResponse{}, err
	}

	resp := auth.MeResponse{
		UserID: userData.ID,
		Email:  userData.Email,
		Role:   string(userData.Role),
	}

	emp, err := a.EmployeeRepository.GetByUserID(ctx, userID)
	switch {
	case err == nil:
		resp.EmployeeID = &emp.ID
		resp.EmployeeCode = &emp.EmployeeCode
		resp.FullName = &emp.FullName
		resp.ManagerID = emp.ManagerID
		resp.DepartmentID = emp.DepartmentID
	case errors.Is(err, employee.ErrEmployeeNotFound):
		// Accounts such as the bootstrap admin have no employee profile.
	default:
		return auth.MeResponse{}, fmt.Errorf("failed to get employee: %w", err)
	}

	return resp, nil
}
