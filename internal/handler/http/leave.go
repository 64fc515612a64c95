package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-leave-go/internal/handler/http/response"
	"github.com/cmlabs-hris/hris-leave-go/internal/service/file"
	"github.com/go-chi/chi/v5"
)

type LeaveHandler interface {
	CreateType(w http.ResponseWriter, r *http.Request)
	UpdateType(w http.ResponseWriter, r *http.Request)
	ListTypes(w http.ResponseWriter, r *http.Request)

	CreateHoliday(w http.ResponseWriter, r *http.Request)
	DeleteHoliday(w http.ResponseWriter, r *http.Request)
	ListHolidays(w http.ResponseWriter, r *http.Request)

	UpsertBalance(w http.ResponseWriter, r *http.Request)
	CreditBalance(w http.ResponseWriter, r *http.Request)
	ListBalances(w http.ResponseWriter, r *http.Request)
	GetMyBalances(w http.ResponseWriter, r *http.Request)
	Provision(w http.ResponseWriter, r *http.Request)

	CreateRequest(w http.ResponseWriter, r *http.Request)
	GetRequest(w http.ResponseWriter, r *http.Request)
	GetAttachment(w http.ResponseWriter, r *http.Request)
	GetMyRequests(w http.ResponseWriter, r *http.Request)
	ListTeamPending(w http.ResponseWriter, r *http.Request)
	ListTeamHistory(w http.ResponseWriter, r *http.Request)
	ApproveRequest(w http.ResponseWriter, r *http.Request)
	RejectRequest(w http.ResponseWriter, r *http.Request)
	CancelRequest(w http.ResponseWriter, r *http.Request)
}

type LeaveHandlerImpl struct {
	requestService leave.RequestService
	adminService   leave.AdminService
	fileService    file.FileService
	// clock returns the current time in the company timezone.
	clock func() time.Time
}

func NewLeaveHandler(
	requestService leave.RequestService,
	adminService leave.AdminService,
	fileService file.FileService,
	clock func() time.Time,
) LeaveHandler {
	return &LeaveHandlerImpl{
		requestService: requestService,
		adminService:   adminService,
		fileService:    fileService,
		clock:          clock,
	}
}

func (l *LeaveHandlerImpl) today() time.Time {
	return leave.DateOnly(l.clock())
}

// ==================== LEAVE TYPE ====================

func (l *LeaveHandlerImpl) CreateType(w http.ResponseWriter, r *http.Request) {
	var req leave.CreateLeaveTypeRequest
	if !decodeJSON(w, r, "CreateType", &req) {
		return
	}

	result, err := l.adminService.CreateLeaveType(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Leave type created successfully", result)
}

func (l *LeaveHandlerImpl) UpdateType(w http.ResponseWriter, r *http.Request) {
	var req leave.UpdateLeaveTypeRequest
	if !decodeJSON(w, r, "UpdateType", &req) {
		return
	}
	req.ID = chi.URLParam(r, "id")

	result, err := l.adminService.UpdateLeaveType(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave type updated successfully", result)
}

func (l *LeaveHandlerImpl) ListTypes(w http.ResponseWriter, r *http.Request) {
	results, err := l.adminService.ListLeaveTypes(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, results)
}

// ==================== HOLIDAY ====================

func (l *LeaveHandlerImpl) CreateHoliday(w http.ResponseWriter, r *http.Request) {
	var req leave.CreateHolidayRequest
	if !decodeJSON(w, r, "CreateHoliday", &req) {
		return
	}

	result, err := l.adminService.CreateHoliday(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Holiday created successfully", result)
}

func (l *LeaveHandlerImpl) DeleteHoliday(w http.ResponseWriter, r *http.Request) {
	if err := l.adminService.DeleteHoliday(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Holiday deleted successfully", nil)
}

func (l *LeaveHandlerImpl) ListHolidays(w http.ResponseWriter, r *http.Request) {
	year, ok := queryYear(w, r, l.clock().Year())
	if !ok {
		return
	}

	results, err := l.adminService.ListHolidays(r.Context(), year)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, results)
}

// ==================== BALANCE ====================

func (l *LeaveHandlerImpl) UpsertBalance(w http.ResponseWriter, r *http.Request) {
	var req leave.UpsertBalanceRequest
	if !decodeJSON(w, r, "UpsertBalance", &req) {
		return
	}

	result, err := l.adminService.UpsertBalance(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave balance saved successfully", result)
}

func (l *LeaveHandlerImpl) CreditBalance(w http.ResponseWriter, r *http.Request) {
	var req leave.CreditBalanceRequest
	if !decodeJSON(w, r, "CreditBalance", &req) {
		return
	}

	result, err := l.adminService.CreditBalance(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave balance credited successfully", result)
}

func (l *LeaveHandlerImpl) ListBalances(w http.ResponseWriter, r *http.Request) {
	filter := leave.BalanceFilter{
		EmployeeID:  optionalQuery(r, "employee_id"),
		LeaveTypeID: optionalQuery(r, "leave_type_id"),
	}
	if r.URL.Query().Has("year") {
		year, ok := queryYear(w, r, 0)
		if !ok {
			return
		}
		filter.Year = &year
	}

	results, err := l.adminService.ListBalances(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, results)
}

// GetMyBalances returns the caller's ledger for ?year=, defaulting to the current year.
func (l *LeaveHandlerImpl) GetMyBalances(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrFail(w, r)
	if !ok {
		return
	}
	if actor.EmployeeID == nil {
		response.HandleError(w, leave.ErrUnauthorizedAction)
		return
	}
	year, ok := queryYear(w, r, l.clock().Year())
	if !ok {
		return
	}

	results, err := l.adminService.ListBalances(r.Context(), leave.BalanceFilter{
		EmployeeID: actor.EmployeeID,
		Year:       &year,
	})
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, results)
}

// Provision seeds default balances for one employee, or for every active
// employee when employee_id is omitted. Existing entries are left alone.
func (l *LeaveHandlerImpl) Provision(w http.ResponseWriter, r *http.Request) {
	req := leave.ProvisionRequest{Year: l.clock().Year()}
	if !decodeJSON(w, r, "Provision", &req) {
		return
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	if req.EmployeeID != nil {
		created, err := l.adminService.ProvisionDefaults(r.Context(), *req.EmployeeID, req.Year)
		if err != nil {
			response.HandleError(w, err)
			return
		}
		response.SuccessWithMessage(w, "Leave balances provisioned", leave.ProvisionResponse{
			Year:            req.Year,
			Employees:       1,
			BalancesCreated: created,
		})
		return
	}

	result, err := l.adminService.ProvisionYear(r.Context(), req.Year)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave balances provisioned", result)
}

// ==================== REQUEST ====================

// CreateRequest accepts either a JSON body or a multipart form carrying the
// JSON in field "data" and an optional file in field "attachment".
func (l *LeaveHandlerImpl) CreateRequest(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrFail(w, r)
	if !ok {
		return
	}

	var req leave.SubmitLeaveRequest
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(10 << 20); err != nil {
			slog.Error("Failed to parse multipart form", "error", err)
			response.BadRequest(w, "Failed to parse form data", nil)
			return
		}
		defer r.MultipartForm.RemoveAll()

		dataJSON := r.FormValue("data")
		if dataJSON == "" {
			response.BadRequest(w, "Field 'data' is required", nil)
			return
		}
		if err := json.Unmarshal([]byte(dataJSON), &req); err != nil {
			slog.Error("CreateRequest decode error", "error", err)
			response.BadRequest(w, "Invalid JSON in 'data' field", nil)
			return
		}

		f, header, err := r.FormFile("attachment")
		switch {
		case err == nil:
			defer f.Close()
			req.File = f
			req.FileName = header.Filename
			req.FileSize = header.Size
		case errors.Is(err, http.ErrMissingFile):
		default:
			slog.Error("Failed to read attachment", "error", err)
			response.BadRequest(w, "Failed to read attachment", nil)
			return
		}
	} else if !decodeJSON(w, r, "CreateRequest", &req) {
		return
	}
	req.Actor = actor

	result, err := l.requestService.Submit(r.Context(), req, l.today())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Leave request submitted successfully", result)
}

func (l *LeaveHandlerImpl) GetRequest(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrFail(w, r)
	if !ok {
		return
	}

	result, err := l.requestService.Get(r.Context(), chi.URLParam(r, "id"), actor)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetAttachment streams the request's attachment to anyone allowed to view the request.
func (l *LeaveHandlerImpl) GetAttachment(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrFail(w, r)
	if !ok {
		return
	}

	request, err := l.requestService.Get(r.Context(), chi.URLParam(r, "id"), actor)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	if request.AttachmentPath == nil {
		response.NotFound(w, "Leave request has no attachment")
		return
	}

	rc, contentType, err := l.fileService.OpenFile(r.Context(), *request.AttachmentPath)
	if err != nil {
		slog.Error("Failed to open attachment", "path", *request.AttachmentPath, "error", err)
		response.NotFound(w, "Attachment not found")
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("inline", map[string]string{
		"filename": path.Base(*request.AttachmentPath),
	}))
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, rc); err != nil {
		slog.Warn("Attachment copy interrupted", "request_id", request.ID, "error", err)
	}
}

// GetMyRequests lists the caller's requests, optionally filtered by
// ?status=PENDING,APPROVED.
func (l *LeaveHandlerImpl) GetMyRequests(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrFail(w, r)
	if !ok {
		return
	}

	var statuses []leave.LeaveRequestStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			status := leave.LeaveRequestStatus(strings.ToUpper(strings.TrimSpace(s)))
			if !status.IsValid() {
				response.BadRequest(w, "Invalid status filter", map[string]string{"status": "unknown status " + s})
				return
			}
			statuses = append(statuses, status)
		}
	}

	results, err := l.requestService.ListMine(r.Context(), actor, statuses)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, results)
}

func (l *LeaveHandlerImpl) ListTeamPending(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrFail(w, r)
	if !ok {
		return
	}

	results, err := l.requestService.ListTeamPending(r.Context(), actor)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, results)
}

func (l *LeaveHandlerImpl) ListTeamHistory(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrFail(w, r)
	if !ok {
		return
	}

	results, err := l.requestService.ListTeamHistory(r.Context(), actor)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, results)
}

func (l *LeaveHandlerImpl) ApproveRequest(w http.ResponseWriter, r *http.Request) {
	req, ok := l.decisionRequest(w, r, "ApproveRequest")
	if !ok {
		return
	}

	result, err := l.requestService.Approve(r.Context(), req, l.today())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave request approved successfully", result)
}

func (l *LeaveHandlerImpl) RejectRequest(w http.ResponseWriter, r *http.Request) {
	req, ok := l.decisionRequest(w, r, "RejectRequest")
	if !ok {
		return
	}

	result, err := l.requestService.Reject(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave request rejected successfully", result)
}

func (l *LeaveHandlerImpl) CancelRequest(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorOrFail(w, r)
	if !ok {
		return
	}

	result, err := l.requestService.Cancel(r.Context(), chi.URLParam(r, "id"), actor)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave request cancelled successfully", result)
}

func (l *LeaveHandlerImpl) decisionRequest(w http.ResponseWriter, r *http.Request, op string) (leave.DecisionRequest, bool) {
	actor, ok := actorOrFail(w, r)
	if !ok {
		return leave.DecisionRequest{}, false
	}

	var req leave.DecisionRequest
	if !decodeJSON(w, r, op, &req) {
		return leave.DecisionRequest{}, false
	}
	req.RequestID = chi.URLParam(r, "id")
	req.Actor = actor
	return req, true
}
