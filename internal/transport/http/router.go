package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// NewRouter mounts the dashboard API. With authEnabled, mutating /api
// routes other than login and the webhooks need a bearer token.
func NewRouter(h *Handler, logger *zap.Logger, authEnabled bool) *mux.Router {
	r := mux.NewRouter()
	r.Use(requestID, recovery(logger), observe(logger))

	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	root := r.PathPrefix("/api").Subrouter()

	// Open endpoints
	root.HandleFunc("/auth/login", h.Login).Methods(http.MethodPost)
	root.HandleFunc("/webhook/powerautomate", h.PowerAutomateWebhook).Methods(http.MethodPost)
	root.HandleFunc("/webhook/test", h.TestWebhook).Methods(http.MethodPost)

	api := root.NewRoute().Subrouter()
	if authEnabled {
		api.Use(h.requireAuth)
	}

	// Engineers
	api.HandleFunc("/engineers", h.ListEngineers).Methods(http.MethodGet)
	api.HandleFunc("/engineers", h.CreateEngineer).Methods(http.MethodPost)
	api.HandleFunc("/engineers/{id}", h.GetEngineer).Methods(http.MethodGet)
	api.HandleFunc("/engineers/{id}", h.UpdateEngineer).Methods(http.MethodPut)
	api.HandleFunc("/engineers/{id}", h.DeleteEngineer).Methods(http.MethodDelete)
	api.HandleFunc("/engineers/{id}/non-project-time", h.AddNonProjectTime).Methods(http.MethodPost)
	api.HandleFunc("/engineers/{id}/non-project-time/{nptId}", h.UpdateNonProjectTime).Methods(http.MethodPut)
	api.HandleFunc("/engineers/{id}/non-project-time/{nptId}", h.DeleteNonProjectTime).Methods(http.MethodDelete)

	// Projects
	api.HandleFunc("/projects", h.ListProjects).Methods(http.MethodGet)
	api.HandleFunc("/projects", h.CreateProject).Methods(http.MethodPost)
	api.HandleFunc("/projects/{id}", h.GetProject).Methods(http.MethodGet)
	api.HandleFunc("/projects/{id}", h.UpdateProject).Methods(http.MethodPut)
	api.HandleFunc("/projects/{id}", h.DeleteProject).Methods(http.MethodDelete)
	api.HandleFunc("/projects/{id}/events", h.ProjectEvents).Methods(http.MethodGet)
	api.HandleFunc("/projects/{id}/expenses", h.AddExpense).Methods(http.MethodPost)
	api.HandleFunc("/projects/{id}/milestones", h.AddMilestone).Methods(http.MethodPost)
	api.HandleFunc("/projects/{id}/tasks", h.AddTask).Methods(http.MethodPost)
	api.HandleFunc("/projects/{id}/jira", h.ListJiraLinks).Methods(http.MethodGet)
	api.HandleFunc("/projects/{id}/jira", h.AddJiraLink).Methods(http.MethodPost)
	api.HandleFunc("/projects/{id}/jira/{key}", h.DeleteJiraLink).Methods(http.MethodDelete)

	api.HandleFunc("/expenses/{id}", h.UpdateExpense).Methods(http.MethodPut)
	api.HandleFunc("/expenses/{id}", h.DeleteExpense).Methods(http.MethodDelete)
	api.HandleFunc("/tasks/{id}", h.UpdateTask).Methods(http.MethodPut)
	api.HandleFunc("/tasks/{id}", h.DeleteTask).Methods(http.MethodDelete)

	// Milestones
	api.HandleFunc("/milestones/{id}", h.UpdateMilestone).Methods(http.MethodPut)
	api.HandleFunc("/milestones/{id}", h.DeleteMilestone).Methods(http.MethodDelete)
	api.HandleFunc("/milestones/{id}/assignments", h.ListAssignments).Methods(http.MethodGet)
	api.HandleFunc("/milestones/{id}/assignments", h.AddAssignment).Methods(http.MethodPost)
	api.HandleFunc("/milestone-assignments/{id}", h.UpdateAssignment).Methods(http.MethodPut)
	api.HandleFunc("/milestone-assignments/{id}", h.DeleteAssignment).Methods(http.MethodDelete)

	// Integrations
	api.HandleFunc("/jira/config", h.JiraConfig).Methods(http.MethodGet)
	api.HandleFunc("/jira/issue/{key}", h.JiraIssue).Methods(http.MethodGet)
	api.HandleFunc("/ignition/ops/jira", h.IgnitionJira).Methods(http.MethodGet)
	api.HandleFunc("/ignition/ops/jira/{issueKey}", h.IgnitionJiraIssue).Methods(http.MethodGet)
	api.HandleFunc("/ignition/health", h.IgnitionHealth).Methods(http.MethodGet)
	api.HandleFunc("/ignition/proxy", h.IgnitionProxy).
		Methods(http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete)

	// Analytics
	api.HandleFunc("/analytics/capacity", h.Capacity).Methods(http.MethodGet)
	api.HandleFunc("/analytics/capacity/current", h.CurrentCapacity).Methods(http.MethodGet)
	api.HandleFunc("/analytics/capacity/series", h.CapacitySeries).Methods(http.MethodGet)
	api.HandleFunc("/analytics/gantt", h.Gantt).Methods(http.MethodGet)
	api.HandleFunc("/analytics/milestones", h.Milestones).Methods(http.MethodGet)
	api.HandleFunc("/analytics/budget", h.Budget).Methods(http.MethodGet)

	// Reports
	api.HandleFunc("/reports/budget.xlsx", h.BudgetReport).Methods(http.MethodGet)
	api.HandleFunc("/reports/budget/archive", h.ArchiveBudgetReport).Methods(http.MethodPost)

	return r
}
