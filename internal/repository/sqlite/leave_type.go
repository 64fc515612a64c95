package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/leave"
)

type leaveTypeRepository struct {
	db *sql.DB
}

func NewLeaveTypeRepository(db *sql.DB) leave.LeaveTypeRepository {
	return &leaveTypeRepository{db: db}
}

const leaveTypeSelect = `
	SELECT id, name, is_paid, allow_half_day, require_attachment, default_allocation, created_at, updated_at
	FROM leave_types
`

func scanLeaveType(row rowScanner) (leave.LeaveType, error) {
	var lt leave.LeaveType
	err := row.Scan(
		&lt.ID, &lt.Name, &lt.IsPaid, &lt.AllowHalfDay, &lt.RequireAttachment,
		&lt.DefaultAllocation, &lt.CreatedAt, &lt.UpdatedAt,
	)
	return lt, err
}

func (r *leaveTypeRepository) Create(ctx context.Context, leaveType leave.LeaveType) (leave.LeaveType, error) {
	q := GetQuerier(ctx, r.db)

	if leaveType.ID == "" {
		leaveType.ID = newID()
	}

	_, err := q.ExecContext(ctx, `
		INSERT INTO leave_types (id, name, is_paid, allow_half_day, require_attachment, default_allocation)
		VALUES (?, ?, ?, ?, ?, ?)
	`, leaveType.ID, leaveType.Name, leaveType.IsPaid, leaveType.AllowHalfDay,
		leaveType.RequireAttachment, leaveType.DefaultAllocation.InexactFloat64())
	if err != nil {
		if isUniqueViolation(err, "leave_types.name") {
			return leave.LeaveType{}, leave.ErrLeaveTypeNameExists
		}
		return leave.LeaveType{}, fmt.Errorf("failed to create leave type: %w", err)
	}
	return r.GetByID(ctx, leaveType.ID)
}

func (r *leaveTypeRepository) GetByID(ctx context.Context, id string) (leave.LeaveType, error) {
	q := GetQuerier(ctx, r.db)

	lt, err := scanLeaveType(q.QueryRowContext(ctx, leaveTypeSelect+`WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return leave.LeaveType{}, leave.ErrLeaveTypeNotFound
		}
		return leave.LeaveType{}, fmt.Errorf("failed to get leave type %s: %w", id, err)
	}
	return lt, nil
}

func (r *leaveTypeRepository) List(ctx context.Context) ([]leave.LeaveType, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.QueryContext(ctx, leaveTypeSelect+`ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave types: %w", err)
	}
	defer rows.Close()

	var leaveTypes []leave.LeaveType
	for rows.Next() {
		lt, err := scanLeaveType(rows)
		if err != nil {
			return nil, err
		}
		leaveTypes = append(leaveTypes, lt)
	}
	return leaveTypes, rows.Err()
}

func (r *leaveTypeRepository) Update(ctx context.Context, leaveType leave.LeaveType) error {
	q := GetQuerier(ctx, r.db)

	res, err := q.ExecContext(ctx, `
		UPDATE leave_types
		SET name = ?, is_paid = ?, allow_half_day = ?, require_attachment = ?, default_allocation = ?, updated_at = ?
		WHERE id = ?
	`, leaveType.Name, leaveType.IsPaid, leaveType.AllowHalfDay, leaveType.RequireAttachment,
		leaveType.DefaultAllocation.InexactFloat64(), now(), leaveType.ID)
	if err != nil {
		if isUniqueViolation(err, "leave_types.name") {
			return leave.ErrLeaveTypeNameExists
		}
		return fmt.Errorf("failed to update leave type %s: %w", leaveType.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return leave.ErrLeaveTypeNotFound
	}
	return nil
}
