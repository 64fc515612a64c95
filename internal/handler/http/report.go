package http

import (
	"net/http"
	"time"

	"github.com/cmlabs-hris/hris-leave-go/internal/domain/report"
	"github.com/cmlabs-hris/hris-leave-go/internal/handler/http/response"
)

type ReportHandler interface {
	GetLeaveSummary(w http.ResponseWriter, r *http.Request)
	GetLeaveList(w http.ResponseWriter, r *http.Request)
	GetLeaveBalanceReport(w http.ResponseWriter, r *http.Request)
}

type reportHandlerImpl struct {
	reportService report.ReportService
	clock         func() time.Time
}

func NewReportHandler(reportService report.ReportService, clock func() time.Time) ReportHandler {
	return &reportHandlerImpl{
		reportService: reportService,
		clock:         clock,
	}
}

// GetLeaveSummary handles GET /reports/summary
func (h *reportHandlerImpl) GetLeaveSummary(w http.ResponseWriter, r *http.Request) {
	year, ok := queryYear(w, r, h.clock().Year())
	if !ok {
		return
	}

	result, err := h.reportService.GenerateLeaveSummary(r.Context(), report.LeaveSummaryRequest{Year: year})
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetLeaveList handles GET /reports/leaves
func (h *reportHandlerImpl) GetLeaveList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := report.LeaveListRequest{
		Status:       q.Get("status"),
		DepartmentID: q.Get("department"),
		LeaveTypeID:  q.Get("leave_type"),
		EmployeeID:   q.Get("employee"),
		DateFrom:     q.Get("date_from"),
		DateTo:       q.Get("date_to"),
	}

	result, err := h.reportService.GenerateLeaveList(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetLeaveBalanceReport handles GET /reports/leave-balance
func (h *reportHandlerImpl) GetLeaveBalanceReport(w http.ResponseWriter, r *http.Request) {
	year, ok := queryYear(w, r, h.clock().Year())
	if !ok {
		return
	}

	result, err := h.reportService.GenerateLeaveBalanceReport(r.Context(), report.LeaveBalanceReportRequest{Year: year})
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}
