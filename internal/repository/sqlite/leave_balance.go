package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/leave"
	"github.com/shopspring/decimal"
)

type leaveBalanceRepository struct {
	db *sql.DB
}

func NewLeaveBalanceRepository(db *sql.DB) leave.LeaveBalanceRepository {
	return &leaveBalanceRepository{db: db}
}

const leaveBalanceSelect = `
	SELECT lb.id, lb.employee_id, lb.leave_type_id, lb.year, lb.allocated, lb.used,
		lb.created_at, lb.updated_at, lt.name, e.full_name
	FROM leave_balances lb
	JOIN leave_types lt ON lt.id = lb.leave_type_id
	JOIN employees e ON e.id = lb.employee_id
`

func scanLeaveBalance(row rowScanner) (leave.LeaveBalance, error) {
	var b leave.LeaveBalance
	err := row.Scan(
		&b.ID, &b.EmployeeID, &b.LeaveTypeID, &b.Year, &b.Allocated, &b.Used,
		&b.CreatedAt, &b.UpdatedAt, &b.LeaveTypeName, &b.EmployeeName,
	)
	return b, err
}

func (r *leaveBalanceRepository) Find(ctx context.Context, key leave.BalanceKey) (leave.LeaveBalance, error) {
	q := GetQuerier(ctx, r.db)

	b, err := scanLeaveBalance(q.QueryRowContext(ctx,
		leaveBalanceSelect+`WHERE lb.employee_id = ? AND lb.leave_type_id = ? AND lb.year = ?`,
		key.EmployeeID, key.LeaveTypeID, key.Year))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return leave.LeaveBalance{}, leave.ErrBalanceNotFound
		}
		return leave.LeaveBalance{}, fmt.Errorf("failed to find leave balance: %w", err)
	}
	return b, nil
}

func (r *leaveBalanceRepository) insert(ctx context.Context, balance leave.LeaveBalance, onConflict string) (int64, error) {
	q := GetQuerier(ctx, r.db)

	if balance.ID == "" {
		balance.ID = newID()
	}

	res, err := q.ExecContext(ctx, `
		INSERT INTO leave_balances (id, employee_id, leave_type_id, year, allocated, used)
		VALUES (?, ?, ?, ?, ?, ?) `+onConflict,
		balance.ID, balance.EmployeeID, balance.LeaveTypeID, balance.Year,
		balance.Allocated.InexactFloat64(), balance.Used.InexactFloat64())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (r *leaveBalanceRepository) Create(ctx context.Context, balance leave.LeaveBalance) (leave.LeaveBalance, error) {
	if _, err := r.insert(ctx, balance, ""); err != nil {
		if isUniqueViolation(err, "leave_balances.") {
			return leave.LeaveBalance{}, leave.ErrBalanceExists
		}
		return leave.LeaveBalance{}, fmt.Errorf("failed to create leave balance: %w", err)
	}
	return r.Find(ctx, balance.Key())
}

func (r *leaveBalanceRepository) UpsertIfAbsent(ctx context.Context, balance leave.LeaveBalance) (leave.LeaveBalance, bool, error) {
	n, err := r.insert(ctx, balance, "ON CONFLICT (employee_id, leave_type_id, year) DO NOTHING")
	if err != nil {
		return leave.LeaveBalance{}, false, fmt.Errorf("failed to upsert leave balance: %w", err)
	}
	stored, err := r.Find(ctx, balance.Key())
	if err != nil {
		return leave.LeaveBalance{}, false, err
	}
	return stored, n == 1, nil
}

func (r *leaveBalanceRepository) Debit(ctx context.Context, key leave.BalanceKey, days decimal.Decimal) (leave.LeaveBalance, error) {
	return r.guardedUpdate(ctx, `
		UPDATE leave_balances SET used = used + ?1, updated_at = ?2
		WHERE employee_id = ?3 AND leave_type_id = ?4 AND year = ?5 AND allocated - used >= ?1
	`, key, days, leave.ErrInsufficientBalance)
}

func (r *leaveBalanceRepository) Credit(ctx context.Context, key leave.BalanceKey, days decimal.Decimal) (leave.LeaveBalance, error) {
	return r.guardedUpdate(ctx, `
		UPDATE leave_balances SET used = used - ?1, updated_at = ?2
		WHERE employee_id = ?3 AND leave_type_id = ?4 AND year = ?5 AND used >= ?1
	`, key, days, leave.ErrInvalidBalance)
}

// guardedUpdate runs a conditional update and tells a missing key apart from
// a failed guard when nothing matched.
func (r *leaveBalanceRepository) guardedUpdate(ctx context.Context, query string, key leave.BalanceKey, days decimal.Decimal, guardErr error) (leave.LeaveBalance, error) {
	q := GetQuerier(ctx, r.db)

	res, err := q.ExecContext(ctx, query, days.InexactFloat64(), now(), key.EmployeeID, key.LeaveTypeID, key.Year)
	if err != nil {
		return leave.LeaveBalance{}, fmt.Errorf("failed to update leave balance: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return leave.LeaveBalance{}, err
	}

	b, err := r.Find(ctx, key)
	if err != nil {
		return leave.LeaveBalance{}, err
	}
	if n == 0 {
		return leave.LeaveBalance{}, guardErr
	}
	return b, nil
}

func (r *leaveBalanceRepository) Set(ctx context.Context, key leave.BalanceKey, allocated, used decimal.Decimal) (leave.LeaveBalance, error) {
	q := GetQuerier(ctx, r.db)

	res, err := q.ExecContext(ctx, `
		UPDATE leave_balances SET allocated = ?, used = ?, updated_at = ?
		WHERE employee_id = ? AND leave_type_id = ? AND year = ?
	`, allocated.InexactFloat64(), used.InexactFloat64(), now(), key.EmployeeID, key.LeaveTypeID, key.Year)
	if err != nil {
		return leave.LeaveBalance{}, fmt.Errorf("failed to set leave balance: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return leave.LeaveBalance{}, leave.ErrBalanceNotFound
	}
	return r.Find(ctx, key)
}

func (r *leaveBalanceRepository) List(ctx context.Context, filter leave.BalanceFilter) ([]leave.LeaveBalance, error) {
	q := GetQuerier(ctx, r.db)

	where := "WHERE 1=1"
	args := []any{}

	if filter.EmployeeID != nil {
		where += " AND lb.employee_id = ?"
		args = append(args, *filter.EmployeeID)
	}
	if filter.LeaveTypeID != nil {
		where += " AND lb.leave_type_id = ?"
		args = append(args, *filter.LeaveTypeID)
	}
	if filter.Year != nil {
		where += " AND lb.year = ?"
		args = append(args, *filter.Year)
	}

	rows, err := q.QueryContext(ctx, leaveBalanceSelect+where+" ORDER BY e.employee_code, lb.year, lt.name", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave balances: %w", err)
	}
	defer rows.Close()

	balances := []leave.LeaveBalance{}
	for rows.Next() {
		b, err := scanLeaveBalance(rows)
		if err != nil {
			return nil, err
		}
		balances = append(balances, b)
	}
	return balances, rows.Err()
}
