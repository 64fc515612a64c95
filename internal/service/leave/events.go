package leave

import (
	"time"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-leave-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-leave-go/internal/domain/notification"
	"github.com/cmlabs-hris/hris-leave-go/internal/pkg/validator"
	"github.com/google/uuid"
)

func employeeRecipient(e employee.Employee) notification.Recipient {
	r := notification.Recipient{Email: e.Email, Name: e.FullName}
	if e.UserID != nil {
		r.UserID = *e.UserID
	}
	return r
}

func newEvent(eventType notification.EventType, request leave.LeaveRequest, subject employee.Employee, comment string, recipients []notification.Recipient) notification.Event {
	leaveTypeName := request.LeaveTypeID
	if request.LeaveTypeName != nil {
		leaveTypeName = *request.LeaveTypeName
	}

	return notification.Event{
		ID:           uuid.NewString(),
		Type:         eventType,
		OccurredAt:   time.Now().UTC(),
		RequestID:    request.ID,
		EmployeeID:   subject.ID,
		EmployeeCode: subject.EmployeeCode,
		EmployeeName: subject.FullName,
		LeaveType:    leaveTypeName,
		StartDate:    request.StartDate.Format(validator.DateLayout),
		EndDate:      request.EndDate.Format(validator.DateLayout),
		TotalDays:    request.TotalDays.StringFixed(1),
		Status:       string(request.Status),
		Reason:       request.Reason,
		Comment:      comment,
		Recipients:   recipients,
	}
}
