package notification

import (
	"time"
)

// EventType identifies what happened to a leave request.
type EventType string

const (
	TypeLeaveSubmitted     EventType = "leave.submitted"
	TypeLeaveStatusChanged EventType = "leave.status_changed"
	TypeLeaveCancelled     EventType = "leave.cancelled"
)

// Recipient is a person an event should reach.
type Recipient struct {
	UserID string `json:"user_id,omitempty"`
	Email  string `json:"email,omitempty"`
	Name   string `json:"name,omitempty"`
}

// Event is emitted after a leave state change has been committed.
type Event struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`

	RequestID    string `json:"request_id"`
	EmployeeID   string `json:"employee_id"`
	EmployeeCode string `json:"employee_code"`
	EmployeeName string `json:"employee_name"`
	LeaveType    string `json:"leave_type"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
	TotalDays    string `json:"total_days"`
	Status       string `json:"status"`
	Reason       string `json:"reason,omitempty"`
	Comment      string `json:"comment,omitempty"`

	Recipients []Recipient `json:"recipients"`
}
