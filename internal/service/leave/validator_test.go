package leave

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/leave"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBalances struct {
	leave.LeaveBalanceRepository
	rows  map[leave.BalanceKey]leave.LeaveBalance
	finds int
}

func (f *fakeBalances) Find(ctx context.Context, key leave.BalanceKey) (leave.LeaveBalance, error) {
	f.finds++
	b, ok := f.rows[key]
	if !ok {
		return leave.LeaveBalance{}, leave.ErrBalanceNotFound
	}
	return b, nil
}

type fakeRequests struct {
	leave.LeaveRequestRepository
	hasOverlap func(employeeID string, start, end time.Time, excludeID *string) (bool, error)
}

func (f *fakeRequests) HasOverlap(ctx context.Context, employeeID string, start, end time.Time, excludeID *string) (bool, error) {
	if f.hasOverlap == nil {
		return false, nil
	}
	return f.hasOverlap(employeeID, start, end, excludeID)
}

var (
	annualType = leave.LeaveType{ID: "lt-annual", Name: "Annual", IsPaid: true, DefaultAllocation: decimal.NewFromInt(12)}
	sickType   = leave.LeaveType{ID: "lt-sick", Name: "Sick", IsPaid: true, AllowHalfDay: true}
	unpaidType = leave.LeaveType{ID: "lt-unpaid", Name: "Unpaid"}
)

func balanceRow(leaveType leave.LeaveType, year int, allocated, used string) leave.LeaveBalance {
	return leave.LeaveBalance{
		EmployeeID:  "emp-1",
		LeaveTypeID: leaveType.ID,
		Year:        year,
		Allocated:   decimal.RequireFromString(allocated),
		Used:        decimal.RequireFromString(used),
	}
}

func newTestValidator(balances *fakeBalances, requests *fakeRequests, holidays ...leave.Holiday) *Validator {
	return NewValidator(NewCalendar(&fakeHolidays{holidays: holidays}), NewLedger(balances), requests)
}

func TestValidator_Validate_Order(t *testing.T) {
	ctx := context.Background()
	today := day(2025, time.January, 6)
	overlapping := &fakeRequests{hasOverlap: func(string, time.Time, time.Time, *string) (bool, error) { return true, nil }}

	tests := []struct {
		name     string
		c        Candidate
		requests *fakeRequests
		wantErr  error
	}{
		{
			name:    "range checked before past date",
			c:       Candidate{EmployeeID: "emp-1", LeaveType: annualType, StartDate: day(2025, time.January, 3), EndDate: day(2025, time.January, 2)},
			wantErr: leave.ErrInvalidRange,
		},
		{
			name:    "past date",
			c:       Candidate{EmployeeID: "emp-1", LeaveType: annualType, StartDate: day(2025, time.January, 3), EndDate: day(2025, time.January, 7)},
			wantErr: leave.ErrPastDate,
		},
		{
			name:     "half day not allowed checked before overlap",
			c:        Candidate{EmployeeID: "emp-1", LeaveType: annualType, StartDate: today, EndDate: today, HalfDay: true},
			requests: overlapping,
			wantErr:  leave.ErrHalfDayNotAllowed,
		},
		{
			name:     "overlap checked before quota",
			c:        Candidate{EmployeeID: "emp-1", LeaveType: annualType, StartDate: today, EndDate: today},
			requests: overlapping,
			wantErr:  leave.ErrOverlap,
		},
		{
			name:    "half day spanning dates",
			c:       Candidate{EmployeeID: "emp-1", LeaveType: sickType, StartDate: today, EndDate: today.AddDate(0, 0, 1), HalfDay: true},
			wantErr: leave.ErrInvalidRange,
		},
		{
			name:    "paid leave without ledger entry",
			c:       Candidate{EmployeeID: "emp-1", LeaveType: sickType, StartDate: today, EndDate: today},
			wantErr: leave.ErrNoBalance,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requests := tt.requests
			if requests == nil {
				requests = &fakeRequests{}
			}
			v := newTestValidator(&fakeBalances{}, requests)

			_, err := v.Validate(ctx, tt.c, today)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidator_Validate_StartingToday(t *testing.T) {
	ctx := context.Background()
	today := day(2025, time.January, 6)
	balances := &fakeBalances{rows: map[leave.BalanceKey]leave.LeaveBalance{}}
	b := balanceRow(annualType, 2025, "10", "0")
	balances.rows[b.Key()] = b

	// Wall-clock time of day on today does not matter.
	decision, err := newTestValidator(balances, &fakeRequests{}).Validate(ctx, Candidate{
		EmployeeID: "emp-1", LeaveType: annualType, StartDate: today, EndDate: today,
	}, today.Add(17*time.Hour))
	require.NoError(t, err)
	assertDays(t, "1", decision.Total)
}

func TestValidator_Validate_UnpaidSkipsLedger(t *testing.T) {
	ctx := context.Background()
	balances := &fakeBalances{}

	decision, err := newTestValidator(balances, &fakeRequests{}).Validate(ctx, Candidate{
		EmployeeID: "emp-1",
		LeaveType:  unpaidType,
		StartDate:  day(2025, time.January, 6),
		EndDate:    day(2025, time.January, 10),
	}, day(2025, time.January, 1))
	require.NoError(t, err)
	assertDays(t, "5", decision.Total)
	assert.Zero(t, balances.finds)
}

func TestValidator_Validate_ExcludeIDPassedToOverlap(t *testing.T) {
	ctx := context.Background()
	var gotExclude *string
	requests := &fakeRequests{hasOverlap: func(employeeID string, start, end time.Time, excludeID *string) (bool, error) {
		gotExclude = excludeID
		return false, nil
	}}

	id := "req-1"
	_, err := newTestValidator(&fakeBalances{}, requests).Validate(ctx, Candidate{
		EmployeeID: "emp-1",
		LeaveType:  unpaidType,
		StartDate:  day(2025, time.January, 6),
		EndDate:    day(2025, time.January, 6),
		ExcludeID:  &id,
	}, day(2025, time.January, 1))
	require.NoError(t, err)
	require.NotNil(t, gotExclude)
	assert.Equal(t, "req-1", *gotExclude)
}

func TestValidator_Validate_OverlapStoreError(t *testing.T) {
	storeErr := errors.New("connection reset")
	requests := &fakeRequests{hasOverlap: func(string, time.Time, time.Time, *string) (bool, error) { return false, storeErr }}

	_, err := newTestValidator(&fakeBalances{}, requests).Validate(context.Background(), Candidate{
		EmployeeID: "emp-1",
		LeaveType:  unpaidType,
		StartDate:  day(2025, time.January, 6),
		EndDate:    day(2025, time.January, 6),
	}, day(2025, time.January, 1))
	assert.ErrorIs(t, err, storeErr)
}

func TestValidator_Validate_YearSplit(t *testing.T) {
	ctx := context.Background()
	today := day(2025, time.December, 1)
	c := Candidate{
		EmployeeID: "emp-1",
		LeaveType:  annualType,
		StartDate:  day(2025, time.December, 29),
		EndDate:    day(2026, time.January, 2),
	}

	t.Run("both years covered", func(t *testing.T) {
		balances := &fakeBalances{rows: map[leave.BalanceKey]leave.LeaveBalance{}}
		for _, b := range []leave.LeaveBalance{balanceRow(annualType, 2025, "3", "0"), balanceRow(annualType, 2026, "12", "0")} {
			balances.rows[b.Key()] = b
		}

		decision, err := newTestValidator(balances, &fakeRequests{}).Validate(ctx, c, today)
		require.NoError(t, err)
		assertDays(t, "3", decision.DaysByYear[2025])
		assertDays(t, "2", decision.DaysByYear[2026])
		assertDays(t, "5", decision.Total)
	})

	t.Run("second year missing", func(t *testing.T) {
		balances := &fakeBalances{rows: map[leave.BalanceKey]leave.LeaveBalance{}}
		b := balanceRow(annualType, 2025, "10", "0")
		balances.rows[b.Key()] = b

		_, err := newTestValidator(balances, &fakeRequests{}).Validate(ctx, c, today)
		var noBalance *leave.NoBalanceError
		require.ErrorAs(t, err, &noBalance)
		assert.Equal(t, "Annual", noBalance.LeaveType)
		assert.Equal(t, 2026, noBalance.Year)
	})

	t.Run("first failing year reported", func(t *testing.T) {
		balances := &fakeBalances{rows: map[leave.BalanceKey]leave.LeaveBalance{}}
		for _, b := range []leave.LeaveBalance{balanceRow(annualType, 2025, "10", "8.5"), balanceRow(annualType, 2026, "1", "0")} {
			balances.rows[b.Key()] = b
		}

		_, err := newTestValidator(balances, &fakeRequests{}).Validate(ctx, c, today)
		var insufficient *leave.InsufficientBalanceError
		require.ErrorAs(t, err, &insufficient)
		assert.ErrorIs(t, err, leave.ErrInsufficientBalance)
		assert.Equal(t, 2025, insufficient.Year)
		assertDays(t, "1.5", insufficient.Remaining)
		assertDays(t, "3", insufficient.Requested)
		assert.Equal(t, "Not enough leave balance for Annual in 2025. (remaining 1.5, requested 3.0)", err.Error())
	})
}
