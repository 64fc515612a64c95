package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/auth"
	"github.com/cmlabs-hris/hris-leave-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-leave-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-leave-go/internal/domain/master/department"
	"github.com/cmlabs-hris/hris-leave-go/internal/domain/report"
	"github.com/cmlabs-hris/hris-leave-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-leave-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	// Quota errors carry the leave type, year and amounts in their message.
	var noBalance *leave.NoBalanceError
	var insufficient *leave.InsufficientBalanceError
	switch {
	case errors.As(err, &noBalance):
		Error(w, http.StatusBadRequest, "NO_BALANCE", noBalance.Error())
		return
	case errors.As(err, &insufficient):
		Error(w, http.StatusBadRequest, "INSUFFICIENT_BALANCE", insufficient.Error())
		return
	}

	switch {
	// Auth domain errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		Unauthorized(w, err.Error())
	case errors.Is(err, auth.ErrTokenExpired):
		Unauthorized(w, "Token expired")
	case errors.Is(err, auth.ErrInvalidToken):
		Unauthorized(w, "Invalid or expired token")
	case errors.Is(err, auth.ErrRefreshTokenRevoked):
		Unauthorized(w, "Refresh token revoked")
	case errors.Is(err, auth.ErrAccountInactive):
		Forbidden(w, "Account is deactivated")
	case errors.Is(err, user.ErrUserNotFound):
		NotFound(w, "User not found")
	case errors.Is(err, user.ErrInsufficientPermissions):
		Forbidden(w, "Insufficient permissions")

	// Employee domain errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, employee.ErrEmployeeCodeExists):
		Conflict(w, "Employee code already exists")
	case errors.Is(err, employee.ErrEmailExists), errors.Is(err, user.ErrUserEmailExists):
		Conflict(w, "Email already registered")
	case errors.Is(err, employee.ErrManagerNotFound),
		errors.Is(err, employee.ErrManagerInactive),
		errors.Is(err, employee.ErrSelfManager),
		errors.Is(err, user.ErrInvalidRole):
		BadRequest(w, err.Error(), nil)

	// Department errors
	case errors.Is(err, department.ErrDepartmentNotFound):
		NotFound(w, "Department not found")
	case errors.Is(err, department.ErrDepartmentNameExists):
		Conflict(w, "Department name already exists")

	// Leave domain errors
	case errors.Is(err, leave.ErrLeaveRequestNotFound):
		NotFound(w, "Leave request not found")
	case errors.Is(err, leave.ErrLeaveTypeNotFound):
		NotFound(w, "Leave type not found")
	case errors.Is(err, leave.ErrHolidayNotFound):
		NotFound(w, "Holiday not found")
	case errors.Is(err, leave.ErrBalanceNotFound):
		NotFound(w, "Leave balance not found")
	case errors.Is(err, leave.ErrUnauthorizedAction):
		Forbidden(w, err.Error())
	case errors.Is(err, leave.ErrOverlap):
		Error(w, http.StatusConflict, "OVERLAP", err.Error())
	case errors.Is(err, leave.ErrInvalidStateTransition):
		Error(w, http.StatusConflict, "INVALID_STATE", err.Error())
	case errors.Is(err, leave.ErrLeaveTypeNameExists),
		errors.Is(err, leave.ErrHolidayExists),
		errors.Is(err, leave.ErrBalanceExists):
		Conflict(w, err.Error())
	case errors.Is(err, leave.ErrInvalidRange):
		Error(w, http.StatusBadRequest, "INVALID_RANGE", err.Error())
	case errors.Is(err, leave.ErrPastDate):
		Error(w, http.StatusBadRequest, "PAST_DATE", err.Error())
	case errors.Is(err, leave.ErrHalfDayNotAllowed):
		Error(w, http.StatusBadRequest, "HALF_DAY_NOT_ALLOWED", err.Error())
	case errors.Is(err, leave.ErrAttachmentRequired):
		Error(w, http.StatusBadRequest, "ATTACHMENT_REQUIRED", err.Error())
	case errors.Is(err, leave.ErrFileSizeExceeds):
		Error(w, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", err.Error())
	case errors.Is(err, leave.ErrFileTypeNotAllowed):
		Error(w, http.StatusUnsupportedMediaType, "FILE_TYPE_NOT_ALLOWED", err.Error())
	case errors.Is(err, leave.ErrInvalidBalance):
		BadRequest(w, err.Error(), nil)

	// Report errors
	case errors.Is(err, report.ErrReportUnavailable):
		Error(w, http.StatusServiceUnavailable, "REPORT_UNAVAILABLE", report.ErrReportUnavailable.Error())

	// Default
	default:
		slog.Error("unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
