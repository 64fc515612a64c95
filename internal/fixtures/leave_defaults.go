package fixtures

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-leave-go/internal/domain/user"
	"github.com/shopspring/decimal"
)

// ==========================================
// DEFAULT LEAVE TYPES
// ==========================================

// GetDefaultLeaveTypes returns the leave types a fresh installation starts with.
func GetDefaultLeaveTypes() []leave.LeaveType {
	return []leave.LeaveType{
		// Annual Leave (Cuti Tahunan) - 12 days per year
		{
			Name:              "Annual Leave",
			IsPaid:            true,
			AllowHalfDay:      true,
			DefaultAllocation: decimal.NewFromInt(12),
		},
		// Sick Leave (Cuti Sakit) - doctor's certificate required
		{
			Name:              "Sick Leave",
			IsPaid:            true,
			AllowHalfDay:      true,
			RequireAttachment: true,
			DefaultAllocation: decimal.NewFromInt(14),
		},
		{
			Name: "Unpaid Leave",
		},
	}
}

// SeedLeaveTypes creates the default leave types when none exist yet and
// returns how many were created.
func SeedLeaveTypes(ctx context.Context, repo leave.LeaveTypeRepository) (int, error) {
	existing, err := repo.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list leave types: %w", err)
	}
	if len(existing) > 0 {
		return 0, nil
	}

	created := 0
	for _, lt := range GetDefaultLeaveTypes() {
		if _, err := repo.Create(ctx, lt); err != nil {
			if errors.Is(err, leave.ErrLeaveTypeNameExists) {
				continue
			}
			return created, fmt.Errorf("failed to seed leave type %q: %w", lt.Name, err)
		}
		created++
	}

	slog.Info("seeded default leave types", "count", created)
	return created, nil
}

// ==========================================
// BOOTSTRAP ADMIN
// ==========================================

// EnsureAdmin creates an admin account for email unless one already exists.
// passwordHash must already be hashed.
func EnsureAdmin(ctx context.Context, repo user.UserRepository, email, passwordHash string) (bool, error) {
	if _, err := repo.GetByEmail(ctx, email); err == nil {
		return false, nil
	} else if !errors.Is(err, user.ErrUserNotFound) {
		return false, fmt.Errorf("failed to look up admin: %w", err)
	}

	if _, err := repo.Create(ctx, user.User{
		Email:        email,
		PasswordHash: passwordHash,
		Role:         user.RoleAdmin,
		IsActive:     true,
	}); err != nil {
		return false, fmt.Errorf("failed to create admin: %w", err)
	}

	slog.Info("bootstrap admin created", "email", email)
	return true, nil
}
