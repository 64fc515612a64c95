package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-leave-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type leaveRequestRepositoryImpl struct {
	db *database.DB
}

func NewLeaveRequestRepository(db *database.DB) leave.LeaveRequestRepository {
	return &leaveRequestRepositoryImpl{db: db}
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

func scanLeaveRequest(row pgx.Row, withJoins bool) (leave.LeaveRequest, error) {
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
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
		}
		return leave.LeaveRequest{}, err
	}
	return req, nil
}

// Create implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) Create(ctx context.Context, request leave.LeaveRequest) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	if request.ID == "" {
		request.ID = newID()
	}
	if request.Status == "" {
		request.Status = leave.LeaveRequestStatusPending
	}

	query := `
		INSERT INTO leave_requests (
			id, employee_id, leave_type_id, start_date, end_date, half_day, total_days,
			reason, attachment_path, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := q.Exec(ctx, query,
		request.ID, request.EmployeeID, request.LeaveTypeID,
		leave.DateOnly(request.StartDate), leave.DateOnly(request.EndDate),
		request.HalfDay, request.TotalDays, request.Reason, request.AttachmentPath, request.Status,
	)
	if err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("failed to create leave request: %w", err)
	}

	return r.GetByID(ctx, request.ID)
}

// GetByID implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) GetByID(ctx context.Context, id string) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	req, err := scanLeaveRequest(q.QueryRow(ctx, leaveRequestSelect+`WHERE lr.id = $1`, id), true)
	if err != nil && !errors.Is(err, leave.ErrLeaveRequestNotFound) {
		return leave.LeaveRequest{}, fmt.Errorf("failed to get leave request %s: %w", id, err)
	}
	return req, err
}

// GetByIDForUpdate implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) GetByIDForUpdate(ctx context.Context, id string) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + leaveRequestColumns + ` FROM leave_requests lr WHERE lr.id = $1 FOR UPDATE`

	req, err := scanLeaveRequest(q.QueryRow(ctx, query, id), false)
	if err != nil && !errors.Is(err, leave.ErrLeaveRequestNotFound) {
		return leave.LeaveRequest{}, fmt.Errorf("failed to lock leave request %s: %w", id, err)
	}
	return req, err
}

// HasOverlap implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) HasOverlap(ctx context.Context, employeeID string, start, end time.Time, excludeID *string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT EXISTS(
			SELECT 1 FROM leave_requests
			WHERE employee_id = $1
				AND status IN ('PENDING', 'APPROVED')
				AND start_date <= $3
				AND end_date >= $2
				AND ($4::uuid IS NULL OR id <> $4::uuid)
		)
	`
	var exists bool
	err := q.QueryRow(ctx, query, employeeID, leave.DateOnly(start), leave.DateOnly(end), excludeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check overlapping leave: %w", err)
	}
	return exists, nil
}

// Transition implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) Transition(ctx context.Context, request leave.LeaveRequest) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_requests
		SET status = $1, total_days = $2, approver_id = $3, approve_comment = $4,
			decided_at = $5, cancelled_at = $6, updated_at = NOW()
		WHERE id = $7 AND status = 'PENDING'
	`
	tag, err := q.Exec(ctx, query,
		request.Status, request.TotalDays, request.ApproverID, request.ApproveComment,
		request.DecidedAt, request.CancelledAt, request.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update leave request %s: %w", request.ID, err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM leave_requests WHERE id = $1)`, request.ID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return leave.ErrLeaveRequestNotFound
		}
		return leave.ErrInvalidStateTransition
	}
	return nil
}

// List implements leave.LeaveRequestRepository.
func (r *leaveRequestRepositoryImpl) List(ctx context.Context, filter leave.LeaveRequestFilter) ([]leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	// Build WHERE clause
	whereClause := "WHERE 1=1"
	args := []interface{}{}
	argIndex := 1

	if filter.EmployeeID != nil {
		whereClause += fmt.Sprintf(" AND lr.employee_id = $%d", argIndex)
		args = append(args, *filter.EmployeeID)
		argIndex++
	}
	if filter.EmployeeIDs != nil {
		whereClause += fmt.Sprintf(" AND lr.employee_id = ANY($%d::uuid[])", argIndex)
		args = append(args, filter.EmployeeIDs)
		argIndex++
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, 0, len(filter.Statuses))
		for _, s := range filter.Statuses {
			statuses = append(statuses, string(s))
		}
		whereClause += fmt.Sprintf(" AND lr.status = ANY($%d)", argIndex)
		args = append(args, statuses)
		argIndex++
	}
	if filter.LeaveTypeID != nil {
		whereClause += fmt.Sprintf(" AND lr.leave_type_id = $%d", argIndex)
		args = append(args, *filter.LeaveTypeID)
		argIndex++
	}
	if filter.DepartmentID != nil {
		whereClause += fmt.Sprintf(" AND e.department_id = $%d", argIndex)
		args = append(args, *filter.DepartmentID)
		argIndex++
	}
	if filter.DateFrom != nil {
		whereClause += fmt.Sprintf(" AND lr.end_date >= $%d", argIndex)
		args = append(args, leave.DateOnly(*filter.DateFrom))
		argIndex++
	}
	if filter.DateTo != nil {
		whereClause += fmt.Sprintf(" AND lr.start_date <= $%d", argIndex)
		args = append(args, leave.DateOnly(*filter.DateTo))
	}

	query := strings.Join([]string{leaveRequestSelect, whereClause, "ORDER BY lr.created_at DESC, lr.id DESC"}, "\n")

	rows, err := q.Query(ctx, query, args...)
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
