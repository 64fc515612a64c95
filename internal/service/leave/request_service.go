package leave

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-leave-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-leave-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-leave-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-leave-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-leave-go/internal/pkg/validator"
	"github.com/cmlabs-hris/hris-leave-go/internal/service/file"
)

type requestService struct {
	tx         database.Transactor
	leaveTypes leave.LeaveTypeRepository
	requests   leave.LeaveRequestRepository
	employees  employee.EmployeeRepository
	validator  *Validator
	ledger     *Ledger
	files      file.FileService
	publisher  notification.Publisher
}

func NewRequestService(
	tx database.Transactor,
	leaveTypes leave.LeaveTypeRepository,
	requests leave.LeaveRequestRepository,
	employees employee.EmployeeRepository,
	requestValidator *Validator,
	ledger *Ledger,
	files file.FileService,
	publisher notification.Publisher,
) leave.RequestService {
	return &requestService{
		tx:         tx,
		leaveTypes: leaveTypes,
		requests:   requests,
		employees:  employees,
		validator:  requestValidator,
		ledger:     ledger,
		files:      files,
		publisher:  publisher,
	}
}

func (s *requestService) Submit(ctx context.Context, req leave.SubmitLeaveRequest, today time.Time) (leave.LeaveRequestResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	if req.Actor.EmployeeID == nil {
		return leave.LeaveRequestResponse{}, leave.ErrUnauthorizedAction
	}
	startDate, _ := validator.IsValidDate(req.StartDate)
	endDate, _ := validator.IsValidDate(req.EndDate)

	emp, err := s.employees.GetByID(ctx, *req.Actor.EmployeeID)
	if err != nil {
		return leave.LeaveRequestResponse{}, fmt.Errorf("failed to get employee: %w", err)
	}
	if !emp.IsActive {
		return leave.LeaveRequestResponse{}, leave.ErrUnauthorizedAction
	}

	leaveType, err := s.leaveTypes.GetByID(ctx, req.LeaveTypeID)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	if leaveType.RequireAttachment && !req.HasAttachment() {
		return leave.LeaveRequestResponse{}, leave.ErrAttachmentRequired
	}

	candidate := Candidate{
		EmployeeID: emp.ID,
		LeaveType:  leaveType,
		StartDate:  startDate,
		EndDate:    endDate,
		HalfDay:    req.HalfDay,
	}

	// Fail fast before storing an attachment for a request that cannot pass.
	if _, err := s.validator.Validate(ctx, candidate, today); err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	var attachmentPath *string
	if req.HasAttachment() {
		path, err := s.files.UploadLeaveAttachment(ctx, emp.ID, req.File, req.FileName, req.FileSize)
		if err != nil {
			return leave.LeaveRequestResponse{}, err
		}
		attachmentPath = &path
	}

	var created leave.LeaveRequest
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		// Concurrent submissions of one employee queue here so the overlap
		// check below sees every committed sibling.
		if err := s.employees.LockForUpdate(ctx, emp.ID); err != nil {
			return err
		}
		decision, err := s.validator.Validate(ctx, candidate, today)
		if err != nil {
			return err
		}
		created, err = s.requests.Create(ctx, leave.LeaveRequest{
			EmployeeID:     emp.ID,
			LeaveTypeID:    leaveType.ID,
			StartDate:      leave.DateOnly(startDate),
			EndDate:        leave.DateOnly(endDate),
			HalfDay:        req.HalfDay,
			TotalDays:      decision.Total,
			Reason:         req.Reason,
			AttachmentPath: attachmentPath,
			Status:         leave.LeaveRequestStatusPending,
		})
		return err
	})
	if err != nil {
		if attachmentPath != nil {
			if delErr := s.files.DeleteFile(ctx, *attachmentPath); delErr != nil {
				slog.Warn("failed to remove orphaned leave attachment", "path", *attachmentPath, "error", delErr)
			}
		}
		return leave.LeaveRequestResponse{}, err
	}

	created = s.reload(ctx, created)
	slog.Info("leave request submitted",
		"request_id", created.ID, "employee_id", emp.ID, "total_days", created.TotalDays.String())

	s.notify(ctx, notification.TypeLeaveSubmitted, created, emp, "")

	return leave.NewLeaveRequestResponse(created), nil
}

func (s *requestService) Approve(ctx context.Context, req leave.DecisionRequest, today time.Time) (leave.LeaveRequestResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	var (
		approved leave.LeaveRequest
		subject  employee.Employee
	)
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		request, err := s.requests.GetByIDForUpdate(ctx, req.RequestID)
		if err != nil {
			return err
		}
		subject, err = s.authorizeDecision(ctx, request, req.Actor)
		if err != nil {
			return err
		}
		if !request.IsPending() {
			return leave.ErrInvalidStateTransition
		}

		// Sibling approvals of the same employee serialise on this lock.
		if err := s.employees.LockForUpdate(ctx, request.EmployeeID); err != nil {
			return err
		}

		leaveType, err := s.leaveTypes.GetByID(ctx, request.LeaveTypeID)
		if err != nil {
			return err
		}

		decision, err := s.validator.Validate(ctx, Candidate{
			EmployeeID: request.EmployeeID,
			LeaveType:  leaveType,
			StartDate:  request.StartDate,
			EndDate:    request.EndDate,
			HalfDay:    request.HalfDay,
			ExcludeID:  &request.ID,
		}, today)
		if err != nil {
			return err
		}

		if leaveType.IsPaid {
			if err := s.ledger.Debit(ctx, request.EmployeeID, leaveType, decision.DaysByYear); err != nil {
				return err
			}
		}

		if err := request.TransitionTo(leave.LeaveRequestStatusApproved); err != nil {
			return err
		}
		decidedAt := time.Now()
		request.TotalDays = decision.Total
		request.ApproverID = &req.Actor.UserID
		request.ApproveComment = req.Comment
		request.DecidedAt = &decidedAt
		if err := s.requests.Transition(ctx, request); err != nil {
			return err
		}

		approved = request
		return nil
	})
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	approved = s.reload(ctx, approved)
	slog.Info("leave request approved",
		"request_id", approved.ID, "approver_id", req.Actor.UserID, "total_days", approved.TotalDays.String())

	s.notify(ctx, notification.TypeLeaveStatusChanged, approved, subject, req.Comment)

	return leave.NewLeaveRequestResponse(approved), nil
}

func (s *requestService) Reject(ctx context.Context, req leave.DecisionRequest) (leave.LeaveRequestResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	var (
		rejected leave.LeaveRequest
		subject  employee.Employee
	)
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		request, err := s.requests.GetByIDForUpdate(ctx, req.RequestID)
		if err != nil {
			return err
		}
		subject, err = s.authorizeDecision(ctx, request, req.Actor)
		if err != nil {
			return err
		}
		if err := request.TransitionTo(leave.LeaveRequestStatusRejected); err != nil {
			return err
		}
		decidedAt := time.Now()
		request.ApproverID = &req.Actor.UserID
		request.ApproveComment = req.Comment
		request.DecidedAt = &decidedAt
		if err := s.requests.Transition(ctx, request); err != nil {
			return err
		}

		rejected = request
		return nil
	})
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	rejected = s.reload(ctx, rejected)
	slog.Info("leave request rejected", "request_id", rejected.ID, "approver_id", req.Actor.UserID)

	s.notify(ctx, notification.TypeLeaveStatusChanged, rejected, subject, req.Comment)

	return leave.NewLeaveRequestResponse(rejected), nil
}

func (s *requestService) Cancel(ctx context.Context, requestID string, actor leave.Actor) (leave.LeaveRequestResponse, error) {
	request, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}
	if !actor.IsEmployee(request.EmployeeID) {
		return leave.LeaveRequestResponse{}, leave.ErrUnauthorizedAction
	}
	if err := request.TransitionTo(leave.LeaveRequestStatusCancelled); err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	cancelledAt := time.Now()
	request.CancelledAt = &cancelledAt
	// Transition re-checks PENDING in its WHERE clause.
	if err := s.requests.Transition(ctx, request); err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	request = s.reload(ctx, request)
	slog.Info("leave request cancelled", "request_id", request.ID, "employee_id", request.EmployeeID)

	if subject, err := s.employees.GetByID(ctx, request.EmployeeID); err == nil {
		s.notify(ctx, notification.TypeLeaveCancelled, request, subject, "")
	} else {
		slog.Warn("failed to load employee for notification", "employee_id", request.EmployeeID, "error", err)
	}

	return leave.NewLeaveRequestResponse(request), nil
}

func (s *requestService) Get(ctx context.Context, requestID string, actor leave.Actor) (leave.LeaveRequestResponse, error) {
	request, err := s.requests.GetByID(ctx, requestID)
	if err != nil {
		return leave.LeaveRequestResponse{}, err
	}

	switch {
	case actor.IsEmployee(request.EmployeeID), actor.IsAdmin(),
		user.HasPermission(actor.Role, user.PermissionEmployeeViewAll):
	default:
		subject, err := s.employees.GetByID(ctx, request.EmployeeID)
		if err != nil {
			return leave.LeaveRequestResponse{}, fmt.Errorf("failed to get employee: %w", err)
		}
		if actor.EmployeeID == nil || !subject.IsManagedBy(*actor.EmployeeID) {
			return leave.LeaveRequestResponse{}, leave.ErrUnauthorizedAction
		}
	}

	return leave.NewLeaveRequestResponse(request), nil
}

func (s *requestService) ListMine(ctx context.Context, actor leave.Actor, statuses []leave.LeaveRequestStatus) ([]leave.LeaveRequestResponse, error) {
	if actor.EmployeeID == nil {
		return nil, leave.ErrUnauthorizedAction
	}

	requests, err := s.requests.List(ctx, leave.LeaveRequestFilter{
		EmployeeID: actor.EmployeeID,
		Statuses:   statuses,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list leave requests: %w", err)
	}
	return leave.NewLeaveRequestResponses(requests), nil
}

func (s *requestService) ListTeamPending(ctx context.Context, actor leave.Actor) ([]leave.LeaveRequestResponse, error) {
	return s.listTeam(ctx, actor, []leave.LeaveRequestStatus{leave.LeaveRequestStatusPending})
}

func (s *requestService) ListTeamHistory(ctx context.Context, actor leave.Actor) ([]leave.LeaveRequestResponse, error) {
	return s.listTeam(ctx, actor, []leave.LeaveRequestStatus{
		leave.LeaveRequestStatusApproved,
		leave.LeaveRequestStatusRejected,
		leave.LeaveRequestStatusCancelled,
	})
}

// listTeam lists requests of the actor's direct subordinates.
func (s *requestService) listTeam(ctx context.Context, actor leave.Actor, statuses []leave.LeaveRequestStatus) ([]leave.LeaveRequestResponse, error) {
	if actor.EmployeeID == nil {
		return nil, leave.ErrUnauthorizedAction
	}

	subordinates, err := s.employees.ListSubordinateIDs(ctx, *actor.EmployeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list subordinates: %w", err)
	}
	if subordinates == nil {
		subordinates = []string{}
	}

	requests, err := s.requests.List(ctx, leave.LeaveRequestFilter{
		EmployeeIDs: subordinates,
		Statuses:    statuses,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list team leave requests: %w", err)
	}
	return leave.NewLeaveRequestResponses(requests), nil
}

// authorizeDecision allows the employee's direct manager or an admin. Nobody
// decides their own request.
func (s *requestService) authorizeDecision(ctx context.Context, request leave.LeaveRequest, actor leave.Actor) (employee.Employee, error) {
	if actor.IsEmployee(request.EmployeeID) {
		return employee.Employee{}, leave.ErrUnauthorizedAction
	}

	subject, err := s.employees.GetByID(ctx, request.EmployeeID)
	if err != nil {
		return employee.Employee{}, fmt.Errorf("failed to get employee: %w", err)
	}

	if actor.IsAdmin() {
		return subject, nil
	}
	if actor.EmployeeID != nil && subject.IsManagedBy(*actor.EmployeeID) {
		return subject, nil
	}
	return employee.Employee{}, leave.ErrUnauthorizedAction
}

// reload fetches the joined view of a request, falling back to what the
// caller already holds.
func (s *requestService) reload(ctx context.Context, request leave.LeaveRequest) leave.LeaveRequest {
	fresh, err := s.requests.GetByID(ctx, request.ID)
	if err != nil {
		slog.Warn("failed to reload leave request", "request_id", request.ID, "error", err)
		return request
	}
	return fresh
}

// notify publishes an event for a committed change. Delivery failures never
// reach the caller.
func (s *requestService) notify(ctx context.Context, eventType notification.EventType, request leave.LeaveRequest, subject employee.Employee, comment string) {
	if s.publisher == nil {
		return
	}

	var recipients []notification.Recipient
	switch eventType {
	case notification.TypeLeaveSubmitted:
		recipients = append(recipients, employeeRecipient(subject))
		if manager, ok := s.manager(ctx, subject); ok {
			recipients = append(recipients, employeeRecipient(manager))
		}
	case notification.TypeLeaveStatusChanged:
		recipients = append(recipients, employeeRecipient(subject))
	case notification.TypeLeaveCancelled:
		if manager, ok := s.manager(ctx, subject); ok {
			recipients = append(recipients, employeeRecipient(manager))
		}
	}
	if len(recipients) == 0 {
		return
	}

	s.publisher.Publish(context.WithoutCancel(ctx), newEvent(eventType, request, subject, comment, recipients))
}

func (s *requestService) manager(ctx context.Context, subject employee.Employee) (employee.Employee, bool) {
	if subject.ManagerID == nil {
		return employee.Employee{}, false
	}
	manager, err := s.employees.GetByID(ctx, *subject.ManagerID)
	if err != nil {
		if !errors.Is(err, employee.ErrEmployeeNotFound) {
			slog.Warn("failed to load manager for notification", "manager_id", *subject.ManagerID, "error", err)
		}
		return employee.Employee{}, false
	}
	return manager, true
}
