package leave

import (
	"io"
	"time"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-leave-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// Actor is the authenticated caller performing an operation.
type Actor struct {
	UserID     string
	EmployeeID *string
	Role       user.Role
}

func (a Actor) IsAdmin() bool {
	return a.Role == user.RoleAdmin
}

func (a Actor) IsEmployee(employeeID string) bool {
	return a.EmployeeID != nil && *a.EmployeeID == employeeID
}

// ==================== LEAVE TYPE ====================

type CreateLeaveTypeRequest struct {
	Name              string          `json:"name"`
	IsPaid            *bool           `json:"is_paid,omitempty"`
	AllowHalfDay      bool            `json:"allow_half_day"`
	RequireAttachment bool            `json:"require_attachment"`
	DefaultAllocation decimal.Decimal `json:"default_allocation"`
}

func (r *CreateLeaveTypeRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name is required",
		})
	}
	if len(r.Name) > 100 {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name must not exceed 100 characters",
		})
	}
	errs = append(errs, validateDays("default_allocation", r.DefaultAllocation)...)

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type UpdateLeaveTypeRequest struct {
	ID                string           `json:"-"`
	Name              *string          `json:"name,omitempty"`
	IsPaid            *bool            `json:"is_paid,omitempty"`
	AllowHalfDay      *bool            `json:"allow_half_day,omitempty"`
	RequireAttachment *bool            `json:"require_attachment,omitempty"`
	DefaultAllocation *decimal.Decimal `json:"default_allocation,omitempty"`
}

func (r *UpdateLeaveTypeRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "id is required",
		})
	}
	if r.Name != nil {
		if validator.IsEmpty(*r.Name) {
			errs = append(errs, validator.ValidationError{
				Field:   "name",
				Message: "name must not be empty",
			})
		}
		if len(*r.Name) > 100 {
			errs = append(errs, validator.ValidationError{
				Field:   "name",
				Message: "name must not exceed 100 characters",
			})
		}
	}
	if r.DefaultAllocation != nil {
		errs = append(errs, validateDays("default_allocation", *r.DefaultAllocation)...)
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type LeaveTypeResponse struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	IsPaid            bool            `json:"is_paid"`
	AllowHalfDay      bool            `json:"allow_half_day"`
	RequireAttachment bool            `json:"require_attachment"`
	DefaultAllocation decimal.Decimal `json:"default_allocation"`
}

func NewLeaveTypeResponse(lt LeaveType) LeaveTypeResponse {
	return LeaveTypeResponse{
		ID:                lt.ID,
		Name:              lt.Name,
		IsPaid:            lt.IsPaid,
		AllowHalfDay:      lt.AllowHalfDay,
		RequireAttachment: lt.RequireAttachment,
		DefaultAllocation: lt.DefaultAllocation,
	}
}

// ==================== HOLIDAY ====================

type CreateHolidayRequest struct {
	Date string `json:"date" validate:"required,date"`
	Name string `json:"name" validate:"required,max=255"`
}

func (r *CreateHolidayRequest) Validate() error {
	return validator.Struct(r)
}

type HolidayResponse struct {
	ID   string `json:"id"`
	Date string `json:"date"`
	Name string `json:"name"`
}

func NewHolidayResponse(h Holiday) HolidayResponse {
	return HolidayResponse{
		ID:   h.ID,
		Date: h.Date.Format(validator.DateLayout),
		Name: h.Name,
	}
}

// ==================== BALANCE ====================

// UpsertBalanceRequest is an HR override of a ledger entry.
type UpsertBalanceRequest struct {
	EmployeeID  string          `json:"employee_id"`
	LeaveTypeID string          `json:"leave_type_id"`
	Year        int             `json:"year"`
	Allocated   decimal.Decimal `json:"allocated"`
	Used        decimal.Decimal `json:"used"`
}

func (r *UpsertBalanceRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}
	if validator.IsEmpty(r.LeaveTypeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "leave_type_id",
			Message: "leave_type_id is required",
		})
	}
	errs = append(errs, validateYear("year", r.Year)...)
	errs = append(errs, validateDays("allocated", r.Allocated)...)
	errs = append(errs, validateDays("used", r.Used)...)
	if r.Used.GreaterThan(r.Allocated) {
		errs = append(errs, validator.ValidationError{
			Field:   "used",
			Message: "used must not exceed allocated",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// CreditBalanceRequest returns days to an employee's ledger entry, for
// example after a leave day was booked in error.
type CreditBalanceRequest struct {
	EmployeeID  string          `json:"employee_id"`
	LeaveTypeID string          `json:"leave_type_id"`
	Year        int             `json:"year"`
	Days        decimal.Decimal `json:"days"`
	Reason      string          `json:"reason"`
}

func (r *CreditBalanceRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}
	if validator.IsEmpty(r.LeaveTypeID) {
		errs = append(errs, validator.ValidationError{
			Field:   "leave_type_id",
			Message: "leave_type_id is required",
		})
	}
	errs = append(errs, validateYear("year", r.Year)...)
	if !r.Days.IsPositive() {
		errs = append(errs, validator.ValidationError{
			Field:   "days",
			Message: "days must be greater than 0",
		})
	} else {
		errs = append(errs, validateDays("days", r.Days)...)
	}
	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type ProvisionRequest struct {
	EmployeeID *string `json:"employee_id,omitempty"`
	Year       int     `json:"year"`
}

func (r *ProvisionRequest) Validate() error {
	if errs := validateYear("year", r.Year); len(errs) > 0 {
		return errs
	}
	return nil
}

type ProvisionResponse struct {
	Year            int `json:"year"`
	Employees       int `json:"employees"`
	BalancesCreated int `json:"balances_created"`
}

type BalanceFilter struct {
	EmployeeID  *string
	LeaveTypeID *string
	Year        *int
}

type LeaveBalanceResponse struct {
	EmployeeID    string          `json:"employee_id"`
	EmployeeName  *string         `json:"employee_name,omitempty"`
	LeaveTypeID   string          `json:"leave_type_id"`
	LeaveTypeName *string         `json:"leave_type_name,omitempty"`
	Year          int             `json:"year"`
	Allocated     decimal.Decimal `json:"allocated"`
	Used          decimal.Decimal `json:"used"`
	Remaining     decimal.Decimal `json:"remaining"`
}

func NewLeaveBalanceResponse(b LeaveBalance) LeaveBalanceResponse {
	return LeaveBalanceResponse{
		EmployeeID:    b.EmployeeID,
		EmployeeName:  b.EmployeeName,
		LeaveTypeID:   b.LeaveTypeID,
		LeaveTypeName: b.LeaveTypeName,
		Year:          b.Year,
		Allocated:     b.Allocated,
		Used:          b.Used,
		Remaining:     b.Remaining(),
	}
}

// ==================== REQUEST ====================

type SubmitLeaveRequest struct {
	LeaveTypeID string `json:"leave_type_id" validate:"required"`
	StartDate   string `json:"start_date" validate:"required,date"`
	EndDate     string `json:"end_date" validate:"required,date"`
	HalfDay     bool   `json:"half_day"`
	Reason      string `json:"reason" validate:"max=1000"`

	Actor Actor `json:"-"`

	// Optional attachment, set by the multipart handler.
	File     io.Reader `json:"-"`
	FileName string    `json:"-"`
	FileSize int64     `json:"-"`
}

func (r *SubmitLeaveRequest) Validate() error {
	return validator.Struct(r)
}

func (r *SubmitLeaveRequest) HasAttachment() bool {
	return r.File != nil && r.FileName != ""
}

// DecisionRequest approves or rejects a pending request.
type DecisionRequest struct {
	RequestID string `json:"-"`
	Comment   string `json:"comment"`
	Actor     Actor  `json:"-"`
}

func (r *DecisionRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.RequestID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "id is required",
		})
	}
	if len(r.Comment) > 1000 {
		errs = append(errs, validator.ValidationError{
			Field:   "comment",
			Message: "comment must not exceed 1000 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type LeaveRequestFilter struct {
	EmployeeID   *string
	EmployeeIDs  []string
	Statuses     []LeaveRequestStatus
	LeaveTypeID  *string
	DepartmentID *string
	DateFrom     *time.Time
	DateTo       *time.Time
}

type LeaveRequestResponse struct {
	ID             string          `json:"id"`
	EmployeeID     string          `json:"employee_id"`
	EmployeeName   *string         `json:"employee_name,omitempty"`
	EmployeeCode   *string         `json:"employee_code,omitempty"`
	DepartmentName *string         `json:"department_name,omitempty"`
	LeaveTypeID    string          `json:"leave_type_id"`
	LeaveTypeName  *string         `json:"leave_type_name,omitempty"`
	StartDate      string          `json:"start_date"`
	EndDate        string          `json:"end_date"`
	HalfDay        bool            `json:"half_day"`
	TotalDays      decimal.Decimal `json:"total_days"`
	Reason         string          `json:"reason"`
	AttachmentPath *string         `json:"attachment_path,omitempty"`
	Status         string          `json:"status"`
	ApproverID     *string         `json:"approver_id,omitempty"`
	ApproveComment string          `json:"approve_comment,omitempty"`
	DecidedAt      *time.Time      `json:"decided_at,omitempty"`
	CancelledAt    *time.Time      `json:"cancelled_at,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func NewLeaveRequestResponse(r LeaveRequest) LeaveRequestResponse {
	return LeaveRequestResponse{
		ID:             r.ID,
		EmployeeID:     r.EmployeeID,
		EmployeeName:   r.EmployeeName,
		EmployeeCode:   r.EmployeeCode,
		DepartmentName: r.DepartmentName,
		LeaveTypeID:    r.LeaveTypeID,
		LeaveTypeName:  r.LeaveTypeName,
		StartDate:      r.StartDate.Format(validator.DateLayout),
		EndDate:        r.EndDate.Format(validator.DateLayout),
		HalfDay:        r.HalfDay,
		TotalDays:      r.TotalDays,
		Reason:         r.Reason,
		AttachmentPath: r.AttachmentPath,
		Status:         string(r.Status),
		ApproverID:     r.ApproverID,
		ApproveComment: r.ApproveComment,
		DecidedAt:      r.DecidedAt,
		CancelledAt:    r.CancelledAt,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

func NewLeaveRequestResponses(requests []LeaveRequest) []LeaveRequestResponse {
	out := make([]LeaveRequestResponse, 0, len(requests))
	for _, r := range requests {
		out = append(out, NewLeaveRequestResponse(r))
	}
	return out
}

func validateDays(field string, d decimal.Decimal) validator.ValidationErrors {
	var errs validator.ValidationErrors
	if d.IsNegative() {
		errs = append(errs, validator.ValidationError{
			Field:   field,
			Message: field + " must not be negative",
		})
	}
	if !validator.IsHalfStep(d) {
		errs = append(errs, validator.ValidationError{
			Field:   field,
			Message: field + " must be a multiple of 0.5",
		})
	}
	return errs
}

func validateYear(field string, year int) validator.ValidationErrors {
	if year < 2000 || year > 2100 {
		return validator.ValidationErrors{{
			Field:   field,
			Message: field + " must be between 2000 and 2100",
		}}
	}
	return nil
}
