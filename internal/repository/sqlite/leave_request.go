package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/leave"
)

type leaveRequestRepository struct {
	db *sql.DB
}

func NewLeaveRequestRepository(db *sql.DB) leave.LeaveRequestRepository {
	return &leaveRequestRepository{db: db}
}

const leaveRequestColumns = `
	lr.id, lr.employee_id, lr.leave_type_id,
	lr.start_date, lr.end_date, lr.half_day, lr.total_days,
	lr.reason, lr.attachment_path,
	lr.status, lr.approver_id, lr.approve_comment, lr.decided_at,
	lr.created_at, lr.updated_at, lr.cancelled_at
`

const leaveRequestSelect = `
	SELECT ` + leaveRequestColumns + `,
		lt.name, e.full_name, e.employee_code, d.name
	FROM leave_requests lr
	JOIN leave_types lt ON lr.leave_type_id = lt.id
	JOIN employees e ON lr.employee_id = e.id
	LEFT JOIN departments d ON e.department_id = d.id
`

func scanLeaveRequest(row rowScanner, withJoins bool) (leave.LeaveRequest, error) {
	var req leave.LeaveRequest
	dest := []any{
		&req.ID, &req.EmployeeID, &req.LeaveTypeID,
		&req.StartDate, &req.EndDate, &req.HalfDay, &req.TotalDays,
		&req.Reason, &req.AttachmentPath,
		&req.Status, &req.ApproverID, &req.ApproveComment, &req.DecidedAt,
		&req.CreatedAt, &req.UpdatedAt, &req.CancelledAt,
	}
	if withJoins {
		dest = append(dest, &req.LeaveTypeName, &req.EmployeeName, &req.EmployeeCode, &req.DepartmentName)
	}
	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
		}
		return leave.LeaveRequest{}, err
	}
	return req, nil
}

func (r *leaveRequestRepository) Create(ctx context.Context, request leave.LeaveRequest) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	if request.ID == "" {
		request.ID = newID()
	}
	if request.Status == "" {
		request.Status = leave.LeaveRequestStatusPending
	}

	ts := now()
	_, err := q.ExecContext(ctx, `
		INSERT INTO leave_requests (
			id, employee_id, leave_type_id, start_date, end_date, half_day, total_days,
			reason, attachment_path, status, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, request.ID, request.EmployeeID, request.LeaveTypeID,
		dateArg(request.StartDate), dateArg(request.EndDate), request.HalfDay,
		request.TotalDays.InexactFloat64(), request.Reason, request.AttachmentPath, request.Status, ts, ts)
	if err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("failed to create leave request: %w", err)
	}
	return r.GetByID(ctx, request.ID)
}

func (r *leaveRequestRepository) GetByID(ctx context.Context, id string) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	req, err := scanLeaveRequest(q.QueryRowContext(ctx, leaveRequestSelect+`WHERE lr.id = ?`, id), true)
	if err != nil && !errors.Is(err, leave.ErrLeaveRequestNotFound) {
		return leave.LeaveRequest{}, fmt.Errorf("failed to get leave request %s: %w", id, err)
	}
	return req, err
}

// GetByIDForUpdate reads inside the caller's IMMEDIATE transaction, which
// already excludes other writers.
func (r *leaveRequestRepository) GetByIDForUpdate(ctx context.Context, id string) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	req, err := scanLeaveRequest(q.QueryRowContext(ctx,
		`SELECT `+leaveRequestColumns+` FROM leave_requests lr WHERE lr.id = ?`, id), false)
	if err != nil && !errors.Is(err, leave.ErrLeaveRequestNotFound) {
		return leave.LeaveRequest{}, fmt.Errorf("failed to get leave request %s: %w", id, err)
	}
	return req, err
}

func (r *leaveRequestRepository) HasOverlap(ctx context.Context, employeeID string, start, end time.Time, excludeID *string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT EXISTS(
			SELECT 1 FROM leave_requests
			WHERE employee_id = ?
				AND status IN ('PENDING', 'APPROVED')
				AND start_date <= ?
				AND end_date >= ?
				AND (? IS NULL OR id <> ?)
		)
	`
	var exists bool
	err := q.QueryRowContext(ctx, query, employeeID, dateArg(end), dateArg(start), excludeID, excludeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check overlapping leave: %w", err)
	}
	return exists, nil
}

func (r *leaveRequestRepository) Transition(ctx context.Context, request leave.LeaveRequest) error {
	q := GetQuerier(ctx, r.db)

	res, err := q.ExecContext(ctx, `
		UPDATE leave_requests
		SET status = ?, total_days = ?, approver_id = ?, approve_comment = ?,
			decided_at = ?, cancelled_at = ?, updated_at = ?
		WHERE id = ? AND status = 'PENDING'
	`, request.Status, request.TotalDays.InexactFloat64(), request.ApproverID, request.ApproveComment,
		request.DecidedAt, request.CancelledAt, now(), request.ID)
	if err != nil {
		return fmt.Errorf("failed to update leave request %s: %w", request.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var exists bool
		if err := q.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM leave_requests WHERE id = ?)`, request.ID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return leave.ErrLeaveRequestNotFound
		}
		return leave.ErrInvalidStateTransition
	}
	return nil
}

func (r *leaveRequestRepository) List(ctx context.Context, filter leave.LeaveRequestFilter) ([]leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	where := "WHERE 1=1"
	args := []any{}

	if filter.EmployeeID != nil {
		where += " AND lr.employee_id = ?"
		args = append(args, *filter.EmployeeID)
	}
	if filter.EmployeeIDs != nil {
		if len(filter.EmployeeIDs) == 0 {
			return []leave.LeaveRequest{}, nil
		}
		clause, inArgs := inClause(filter.EmployeeIDs)
		where += " AND lr.employee_id IN " + clause
		args = append(args, inArgs...)
	}
	if len(filter.Statuses) > 0 {
		clause, inArgs := inClause(filter.Statuses)
		where += " AND lr.status IN " + clause
		args = append(args, inArgs...)
	}
	if filter.LeaveTypeID != nil {
		where += " AND lr.leave_type_id = ?"
		args = append(args, *filter.LeaveTypeID)
	}
	if filter.DepartmentID != nil {
		where += " AND e.department_id = ?"
		args = append(args, *filter.DepartmentID)
	}
	if filter.DateFrom != nil {
		where += " AND lr.end_date >= ?"
		args = append(args, dateArg(*filter.DateFrom))
	}
	if filter.DateTo != nil {
		where += " AND lr.start_date <= ?"
		args = append(args, dateArg(*filter.DateTo))
	}

	rows, err := q.QueryContext(ctx, leaveRequestSelect+where+" ORDER BY lr.created_at DESC, lr.id DESC", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave requests: %w", err)
	}
	defer rows.Close()

	requests := []leave.LeaveRequest{}
	for rows.Next() {
		req, err := scanLeaveRequest(rows, true)
		if err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}
