package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/dvloznov/cashflow-insights/internal/api/middleware"
	"github.com/dvloznov/cashflow-insights/internal/jobs"
	"github.com/dvloznov/cashflow-insights/internal/reports"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// ReportService queues and tracks report exports.
type ReportService interface {
	Submit(ctx context.Context, req reports.Request) (*jobs.ExportReportJob, error)
	Get(ctx context.Context, id string) (*jobs.ExportReportJob, error)
	List(ctx context.Context, filter jobs.JobFilter) ([]*jobs.ExportReportJob, error)
}

// ReportsHandler handles asynchronous report export endpoints.
type ReportsHandler struct {
	service ReportService
	log     zerolog.Logger
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(service ReportService, log zerolog.Logger) *ReportsHandler {
	return &ReportsHandler{
		service: service,
		log:     log,
	}
}

// CreateReport handles POST /api/reports
func (h *ReportsHandler) CreateReport(w http.ResponseWriter, r *http.Request) {
	var req reports.Request
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	job, err := h.service.Submit(r.Context(), req)
	if err != nil {
		writeFailure(w, r, h.log, "Failed to queue report", err)
		return
	}

	middleware.WriteJSON(w, http.StatusAccepted, job)
}

// GetReport handles GET /api/reports/{id}
func (h *ReportsHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	job, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeFailure(w, r, h.log, "Failed to get report", err)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, job)
}

// ListReports handles GET /api/reports
func (h *ReportsHandler) ListReports(w http.ResponseWriter, r *http.Request) {
	// Parse query parameters
	query := r.URL.Query()
	filter := jobs.JobFilter{
		Tool:   query.Get("tool"),
		Status: jobs.JobStatus(query.Get("status")),
	}

	if limitStr := query.Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			filter.Limit = limit
		}
	}

	if offsetStr := query.Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil {
			filter.Offset = offset
		}
	}

	list, err := h.service.List(r.Context(), filter)
	if err != nil {
		writeFailure(w, r, h.log, "Failed to list reports", err)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"reports": list,
		"count":   len(list),
	})
}
