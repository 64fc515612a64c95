package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-leave-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type leaveBalanceRepositoryImpl struct {
	db *database.DB
}

func NewLeaveBalanceRepository(db *database.DB) leave.LeaveBalanceRepository {
	return &leaveBalanceRepositoryImpl{db: db}
}

const leaveBalanceColumns = `
	lb.id, lb.employee_id, lb.leave_type_id, lb.year, lb.allocated, lb.used, lb.created_at, lb.updated_at
`

const leaveBalanceSelect = `
	SELECT ` + leaveBalanceColumns + `, lt.name, e.full_name
	FROM leave_balances lb
	JOIN leave_types lt ON lt.id = lb.leave_type_id
	JOIN employees e ON e.id = lb.employee_id
`

func scanLeaveBalance(row pgx.Row, withJoins bool) (leave.LeaveBalance, error) {
	var b leave.LeaveBalance
	dest := []any{
		&b.ID, &b.EmployeeID, &b.LeaveTypeID, &b.Year, &b.Allocated, &b.Used, &b.CreatedAt, &b.UpdatedAt,
	}
	if withJoins {
		dest = append(dest, &b.LeaveTypeName, &b.EmployeeName)
	}
	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.LeaveBalance{}, leave.ErrBalanceNotFound
		}
		return leave.LeaveBalance{}, err
	}
	return b, nil
}

// Find implements leave.LeaveBalanceRepository.
func (r *leaveBalanceRepositoryImpl) Find(ctx context.Context, key leave.BalanceKey) (leave.LeaveBalance, error) {
	q := GetQuerier(ctx, r.db)

	query := leaveBalanceSelect + `WHERE lb.employee_id = $1 AND lb.leave_type_id = $2 AND lb.year = $3`

	return scanLeaveBalance(q.QueryRow(ctx, query, key.EmployeeID, key.LeaveTypeID, key.Year), true)
}

// Create implements leave.LeaveBalanceRepository.
func (r *leaveBalanceRepositoryImpl) Create(ctx context.Context, balance leave.LeaveBalance) (leave.LeaveBalance, error) {
	q := GetQuerier(ctx, r.db)

	if balance.ID == "" {
		balance.ID = newID()
	}

	query := `
		INSERT INTO leave_balances AS lb (id, employee_id, leave_type_id, year, allocated, used)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + leaveBalanceColumns

	created, err := scanLeaveBalance(q.QueryRow(ctx, query,
		balance.ID, balance.EmployeeID, balance.LeaveTypeID, balance.Year, balance.Allocated, balance.Used,
	), false)
	if err != nil {
		if isUniqueViolation(err, "leave_balances_key") {
			return leave.LeaveBalance{}, leave.ErrBalanceExists
		}
		return leave.LeaveBalance{}, fmt.Errorf("failed to create leave balance: %w", err)
	}
	return created, nil
}

// UpsertIfAbsent implements leave.LeaveBalanceRepository.
func (r *leaveBalanceRepositoryImpl) UpsertIfAbsent(ctx context.Context, balance leave.LeaveBalance) (leave.LeaveBalance, bool, error) {
	q := GetQuerier(ctx, r.db)

	if balance.ID == "" {
		balance.ID = newID()
	}

	query := `
		INSERT INTO leave_balances AS lb (id, employee_id, leave_type_id, year, allocated, used)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT ON CONSTRAINT leave_balances_key DO NOTHING
		RETURNING ` + leaveBalanceColumns

	created, err := scanLeaveBalance(q.QueryRow(ctx, query,
		balance.ID, balance.EmployeeID, balance.LeaveTypeID, balance.Year, balance.Allocated, balance.Used,
	), false)
	if err == nil {
		return created, true, nil
	}
	if !errors.Is(err, leave.ErrBalanceNotFound) {
		return leave.LeaveBalance{}, false, fmt.Errorf("failed to upsert leave balance: %w", err)
	}

	// Conflict: the row already existed.
	existing, err := r.Find(ctx, balance.Key())
	if err != nil {
		return leave.LeaveBalance{}, false, err
	}
	return existing, false, nil
}

// Debit implements leave.LeaveBalanceRepository.
func (r *leaveBalanceRepositoryImpl) Debit(ctx context.Context, key leave.BalanceKey, days decimal.Decimal) (leave.LeaveBalance, error) {
	query := `
		UPDATE leave_balances AS lb
		SET used = lb.used + $4, updated_at = NOW()
		WHERE lb.employee_id = $1 AND lb.leave_type_id = $2 AND lb.year = $3
			AND lb.allocated - lb.used >= $4
		RETURNING ` + leaveBalanceColumns

	return r.guardedUpdate(ctx, query, key, days, leave.ErrInsufficientBalance)
}

// Credit implements leave.LeaveBalanceRepository.
func (r *leaveBalanceRepositoryImpl) Credit(ctx context.Context, key leave.BalanceKey, days decimal.Decimal) (leave.LeaveBalance, error) {
	query := `
		UPDATE leave_balances AS lb
		SET used = lb.used - $4, updated_at = NOW()
		WHERE lb.employee_id = $1 AND lb.leave_type_id = $2 AND lb.year = $3
			AND lb.used >= $4
		RETURNING ` + leaveBalanceColumns

	return r.guardedUpdate(ctx, query, key, days, leave.ErrInvalidBalance)
}

// guardedUpdate runs a conditional update. When no row matched it tells a
// missing key apart from a failed guard.
func (r *leaveBalanceRepositoryImpl) guardedUpdate(ctx context.Context, query string, key leave.BalanceKey, days decimal.Decimal, guardErr error) (leave.LeaveBalance, error) {
	q := GetQuerier(ctx, r.db)

	updated, err := scanLeaveBalance(q.QueryRow(ctx, query, key.EmployeeID, key.LeaveTypeID, key.Year, days), false)
	if err == nil {
		return updated, nil
	}
	if !errors.Is(err, leave.ErrBalanceNotFound) {
		return leave.LeaveBalance{}, fmt.Errorf("failed to update leave balance: %w", err)
	}
	if _, err := r.Find(ctx, key); err != nil {
		return leave.LeaveBalance{}, err
	}
	return leave.LeaveBalance{}, guardErr
}

// Set implements leave.LeaveBalanceRepository.
func (r *leaveBalanceRepositoryImpl) Set(ctx context.Context, key leave.BalanceKey, allocated, used decimal.Decimal) (leave.LeaveBalance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_balances AS lb
		SET allocated = $4, used = $5, updated_at = NOW()
		WHERE lb.employee_id = $1 AND lb.leave_type_id = $2 AND lb.year = $3
		RETURNING ` + leaveBalanceColumns

	updated, err := scanLeaveBalance(q.QueryRow(ctx, query, key.EmployeeID, key.LeaveTypeID, key.Year, allocated, used), false)
	if err != nil {
		if errors.Is(err, leave.ErrBalanceNotFound) {
			return leave.LeaveBalance{}, err
		}
		return leave.LeaveBalance{}, fmt.Errorf("failed to set leave balance: %w", err)
	}
	return updated, nil
}

// List implements leave.LeaveBalanceRepository.
func (r *leaveBalanceRepositoryImpl) List(ctx context.Context, filter leave.BalanceFilter) ([]leave.LeaveBalance, error) {
	q := GetQuerier(ctx, r.db)

	whereClause := "WHERE 1=1"
	args := []interface{}{}
	argIndex := 1

	if filter.EmployeeID != nil {
		whereClause += fmt.Sprintf(" AND lb.employee_id = $%d", argIndex)
		args = append(args, *filter.EmployeeID)
		argIndex++
	}
	if filter.LeaveTypeID != nil {
		whereClause += fmt.Sprintf(" AND lb.leave_type_id = $%d", argIndex)
		args = append(args, *filter.LeaveTypeID)
		argIndex++
	}
	if filter.Year != nil {
		whereClause += fmt.Sprintf(" AND lb.year = $%d", argIndex)
		args = append(args, *filter.Year)
	}

	rows, err := q.Query(ctx, leaveBalanceSelect+whereClause+" ORDER BY e.employee_code, lb.year, lt.name", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave balances: %w", err)
	}
	defer rows.Close()

	balances := []leave.LeaveBalance{}
	for rows.Next() {
		b, err := scanLeaveBalance(rows, true)
		if err != nil {
			return nil, err
		}
		balances = append(balances, b)
	}
	return balances, rows.Err()
}
