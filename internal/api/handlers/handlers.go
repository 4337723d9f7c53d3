package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/dvloznov/cashflow-insights/internal/analytics"
	"github.com/dvloznov/cashflow-insights/internal/api/middleware"
	"github.com/dvloznov/cashflow-insights/internal/daterange"
	"github.com/dvloznov/cashflow-insights/internal/export"
	"github.com/dvloznov/cashflow-insights/internal/jobs"
	"github.com/dvloznov/cashflow-insights/internal/logger"
	"github.com/dvloznov/cashflow-insights/internal/reports"
	"github.com/dvloznov/cashflow-insights/internal/tools"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"google.golang.org/genai"
)

const maxBodyBytes = 1 << 20

// statusFor maps an operation error to an HTTP status.
func statusFor(err error) int {
	var perr *daterange.ParseError
	var verr *tools.ValidationError
	switch {
	case errors.As(err, &perr), errors.As(err, &verr), errors.Is(err, reports.ErrNoDestination):
		return http.StatusBadRequest
	case errors.Is(err, tools.ErrUnknownTool), errors.Is(err, jobs.ErrJobNotFound):
		return http.StatusNotFound
	case errors.Is(err, jobs.ErrQueueClosed), errors.Is(err, reports.ErrExportDisabled):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.Canceled):
		return 499
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// writeFailure logs err and writes it to the client. Internal errors are not echoed.
func writeFailure(w http.ResponseWriter, r *http.Request, log zerolog.Logger, msg string, err error) {
	status := statusFor(err)
	event := log.Warn()
	if status >= http.StatusInternalServerError {
		event = log.Error()
	}
	event.Err(err).
		Str("request_id", middleware.RequestIDFromContext(r.Context())).
		Int("status", status).
		Msg(msg)

	if status >= http.StatusInternalServerError {
		middleware.WriteError(w, status, msg)
		return
	}
	middleware.WriteError(w, status, err.Error())
}

// Health handles GET /health
func Health(now func() time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   now().Format(time.RFC3339),
		})
	}
}

// DashboardSource computes dashboard data.
type DashboardSource interface {
	Dashboard(ctx context.Context, w daterange.Window) (analytics.DashboardResult, error)
}

// DashboardHandler serves the dashboard summary.
type DashboardHandler struct {
	source   DashboardSource
	resolver *daterange.Resolver
	log      zerolog.Logger
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(source DashboardSource, resolver *daterange.Resolver, log zerolog.Logger) *DashboardHandler {
	return &DashboardHandler{
		source:   source,
		resolver: resolver,
		log:      log,
	}
}

// GetDashboard handles GET /api/dashboard
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	period := query.Get("period")
	if period == "" {
		period = daterange.PeriodLast90Days
	}
	if query.Get("startDate") == "" && query.Get("endDate") == "" && !daterange.IsKnownPeriod(period) {
		log := logger.FromContext(r.Context(), h.log)
		log.Warn().Str("period", period).Bool("periodRecognized", false).Msg("Unrecognized period, using " + daterange.PeriodLast30Days)
	}

	window, err := h.resolver.ResolveWindow(period, query.Get("startDate"), query.Get("endDate"))
	if err != nil {
		writeFailure(w, r, h.log, "Invalid date range", err)
		return
	}

	result, err := h.source.Dashboard(r.Context(), window)
	if err != nil {
		writeFailure(w, r, h.log, "Failed to build dashboard", err)
		return
	}

	middleware.WriteJSON(w, http.StatusOK, result)
}

// Registry is the tool surface served over HTTP.
type Registry interface {
	Describe() []tools.Descriptor
	Invoke(ctx context.Context, name string, raw json.RawMessage) (any, error)
	Dispatch(ctx context.Context, call *genai.FunctionCall) *genai.FunctionResponse
}

// ReportWriter persists tool results.
type ReportWriter interface {
	Write(ctx context.Context, dest string, v any) error
}

// ToolsHandler exposes the analytics tools.
type ToolsHandler struct {
	registry     Registry
	writer       ReportWriter
	reportBucket string
	now          func() time.Time
	log          zerolog.Logger
}

// NewToolsHandler creates a new tools handler. writer may be nil, which disables
// the export query parameter.
func NewToolsHandler(registry Registry, writer ReportWriter, reportBucket string, log zerolog.Logger) *ToolsHandler {
	return &ToolsHandler{
		registry:     registry,
		writer:       writer,
		reportBucket: reportBucket,
		now:          time.Now,
		log:          log,
	}
}

// ListTools handles GET /api/tools
func (h *ToolsHandler) ListTools(w http.ResponseWriter, r *http.Request) {
	descriptors := h.registry.Describe()
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"tools": descriptors,
		"count": len(descriptors),
	})
}

// InvokeTool handles POST /api/tools/{name}. The body is the JSON parameter
// object; with ?export=true the result is also written to the report bucket.
func (h *ToolsHandler) InvokeTool(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.registry.Invoke(r.Context(), name, raw)
	if err != nil {
		writeFailure(w, r, h.log, "Tool execution failed", err)
		return
	}

	resp := map[string]interface{}{
		"tool":   name,
		"result": result,
	}

	if r.URL.Query().Get("export") == "true" {
		if h.writer == nil || h.reportBucket == "" {
			middleware.WriteError(w, http.StatusServiceUnavailable, "Report export is not configured")
			return
		}
		id := middleware.RequestIDFromContext(r.Context())
		if id == "" {
			id = uuid.NewString()
		}
		uri := export.ReportURI(h.reportBucket, name, h.now(), id)
		if err := h.writer.Write(r.Context(), uri, result); err != nil {
			writeFailure(w, r, h.log, "Failed to export report", err)
			return
		}
		resp["reportUri"] = uri
	}

	middleware.WriteJSON(w, http.StatusOK, resp)
}

// FunctionCall handles POST /api/agent/function-call with a genai.FunctionCall body
// and answers with the matching genai.FunctionResponse.
func (h *ToolsHandler) FunctionCall(w http.ResponseWriter, r *http.Request) {
	var call genai.FunctionCall
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&call); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if call.Name == "" {
		middleware.WriteError(w, http.StatusBadRequest, "Function name is required")
		return
	}

	resp := h.registry.Dispatch(r.Context(), &call)
	if msg, failed := resp.Response["error"]; failed {
		h.log.Warn().
			Str("request_id", middleware.RequestIDFromContext(r.Context())).
			Str("tool", call.Name).
			Interface("error", msg).
			Msg("Function call failed")
	}

	middleware.WriteJSON(w, http.StatusOK, resp)
}
