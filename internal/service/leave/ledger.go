package leave

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/leave"
	"github.com/shopspring/decimal"
)

// Ledger wraps the balance store with the quota rules. Lookups never create
// entries; GetOrCreate is reserved for provisioning.
type Ledger struct {
	balances leave.LeaveBalanceRepository
}

func NewLedger(balances leave.LeaveBalanceRepository) *Ledger {
	return &Ledger{balances: balances}
}

func balanceKey(employeeID string, leaveType leave.LeaveType, year int) leave.BalanceKey {
	return leave.BalanceKey{EmployeeID: employeeID, LeaveTypeID: leaveType.ID, Year: year}
}

// Lookup returns the entry for the key or a *leave.NoBalanceError.
func (l *Ledger) Lookup(ctx context.Context, employeeID string, leaveType leave.LeaveType, year int) (leave.LeaveBalance, error) {
	balance, err := l.balances.Find(ctx, balanceKey(employeeID, leaveType, year))
	if err != nil {
		if errors.Is(err, leave.ErrBalanceNotFound) {
			return leave.LeaveBalance{}, &leave.NoBalanceError{LeaveType: leaveType.Name, Year: year}
		}
		return leave.LeaveBalance{}, fmt.Errorf("failed to look up leave balance: %w", err)
	}
	return balance, nil
}

// GetOrCreate seeds a missing entry with the leave type's default
// allocation. Repeated calls return the same entry.
func (l *Ledger) GetOrCreate(ctx context.Context, employeeID string, leaveType leave.LeaveType, year int) (leave.LeaveBalance, bool, error) {
	balance, created, err := l.balances.UpsertIfAbsent(ctx, leave.LeaveBalance{
		EmployeeID:  employeeID,
		LeaveTypeID: leaveType.ID,
		Year:        year,
		Allocated:   leaveType.DefaultAllocation,
		Used:        decimal.Zero,
	})
	if err != nil {
		return leave.LeaveBalance{}, false, fmt.Errorf("failed to provision leave balance: %w", err)
	}
	return balance, created, nil
}

// CheckRemaining fails with *leave.InsufficientBalanceError when days exceed
// the remaining quota.
func CheckRemaining(balance leave.LeaveBalance, leaveType leave.LeaveType, days decimal.Decimal) error {
	if days.GreaterThan(balance.Remaining()) {
		return &leave.InsufficientBalanceError{
			LeaveType: leaveType.Name,
			Year:      balance.Year,
			Remaining: balance.Remaining(),
			Requested: days,
		}
	}
	return nil
}

// Debit charges every year in ascending order. It must run inside a
// transaction: a failure on a later year leaves earlier debits to be rolled
// back by the caller.
func (l *Ledger) Debit(ctx context.Context, employeeID string, leaveType leave.LeaveType, days leave.DaysByYear) error {
	for _, year := range days.Years() {
		requested := days[year]
		if requested.IsZero() {
			continue
		}

		key := balanceKey(employeeID, leaveType, year)
		if _, err := l.balances.Debit(ctx, key, requested); err != nil {
			switch {
			case errors.Is(err, leave.ErrBalanceNotFound):
				return &leave.NoBalanceError{LeaveType: leaveType.Name, Year: year}
			case errors.Is(err, leave.ErrInsufficientBalance):
				remaining := decimal.Zero
				if current, findErr := l.balances.Find(ctx, key); findErr == nil {
					remaining = current.Remaining()
				}
				return &leave.InsufficientBalanceError{
					LeaveType: leaveType.Name,
					Year:      year,
					Remaining: remaining,
					Requested: requested,
				}
			}
			return fmt.Errorf("failed to debit leave balance for %d: %w", year, err)
		}
	}
	return nil
}

// Credit returns days to an entry. It is a compensating operation for
// administrative corrections only.
func (l *Ledger) Credit(ctx context.Context, key leave.BalanceKey, days decimal.Decimal) (leave.LeaveBalance, error) {
	balance, err := l.balances.Credit(ctx, key, days)
	if err != nil {
		if errors.Is(err, leave.ErrBalanceNotFound) || errors.Is(err, leave.ErrInvalidBalance) {
			return leave.LeaveBalance{}, err
		}
		return leave.LeaveBalance{}, fmt.Errorf("failed to credit leave balance: %w", err)
	}
	return balance, nil
}
