package handlers

import (
	"net/http"
	"time"

	"github.com/dvloznov/cashflow-insights/internal/api/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// NewRouter wires every endpoint behind the standard middleware chain.
func NewRouter(dashboard *DashboardHandler, toolsHandler *ToolsHandler, reportsHandler *ReportsHandler, allowedOrigins []string, log zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(log))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(log))
	r.Use(middleware.CORS(allowedOrigins))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Get("/health", Health(time.Now))

	r.Route("/api", func(r chi.Router) {
		r.Get("/dashboard", dashboard.GetDashboard)
		r.Get("/tools", toolsHandler.ListTools)
		r.Post("/tools/{name}", toolsHandler.InvokeTool)
		r.Post("/agent/function-call", toolsHandler.FunctionCall)

		r.Post("/reports", reportsHandler.CreateReport)
		r.Get("/reports", reportsHandler.ListReports)
		r.Get("/reports/{id}", reportsHandler.GetReport)
	})

	return r
}
