package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"ops-dashboard/internal/models"
	"ops-dashboard/internal/service"
)

// Error codes carried in ErrorResponse.Code.
const (
	codeNotFound     = 3
	codeBadRequest   = 4
	codeInternal     = 5
	codeConflict     = 6
	codeUnauthorized = 7
	codeUpstream     = 8
)

type ErrorResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type Services struct {
	Dashboard *service.DashboardService
	Analytics *service.AnalyticsService
	Jira      *service.JiraService
	Reports   *service.ReportService
	Auth      *service.AuthService
}

type Handler struct {
	dashboard *service.DashboardService
	analytics *service.AnalyticsService
	jira      *service.JiraService
	reports   *service.ReportService
	auth      *service.AuthService
	logger    *zap.Logger
}

func NewHandler(s Services, logger *zap.Logger) *Handler {
	return &Handler{
		dashboard: s.Dashboard,
		analytics: s.Analytics,
		jira:      s.Jira,
		reports:   s.Reports,
		auth:      s.Auth,
		logger:    logger,
	}
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		code = http.StatusInternalServerError
		response = []byte(`{"code":5,"message":"Internal server error"}`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondWithError(w http.ResponseWriter, status int, code int, message string) {
	respondWithDetails(w, status, code, message, struct{}{})
}

func respondWithDetails(w http.ResponseWriter, status int, code int, message string, details interface{}) {
	respondWithJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
		Details: details,
	})
}

// respondWithServiceError maps domain errors onto statuses. Anything
// unrecognized is logged and reported without internals.
func (h *Handler) respondWithServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verrs models.ValidationErrors
	var upstream *models.UpstreamError
	switch {
	case errors.As(err, &verrs):
		respondWithDetails(w, http.StatusBadRequest, codeBadRequest, "Validation failed", verrs)
	case errors.As(err, &upstream):
		details := interface{}(struct{}{})
		if len(upstream.Details) > 0 {
			details = upstream.Details
		}
		respondWithDetails(w, upstream.Status, codeUpstream, upstream.Message, details)
	case errors.Is(err, models.ErrNotFound):
		respondWithError(w, http.StatusNotFound, codeNotFound, err.Error())
	case errors.Is(err, models.ErrConflict), errors.Is(err, models.ErrInvalidTransition):
		respondWithError(w, http.StatusConflict, codeConflict, err.Error())
	case errors.Is(err, models.ErrUnauthorized):
		respondWithError(w, http.StatusUnauthorized, codeUnauthorized, err.Error())
	case errors.Is(err, models.ErrNotConfigured):
		respondWithError(w, http.StatusBadRequest, codeBadRequest, err.Error())
	default:
		h.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("request_id", requestIDFrom(r.Context())),
			zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, codeInternal, "Internal server error")
	}
}

// decode reads a JSON body into dst and answers 400 on failure.
func decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondWithError(w, http.StatusBadRequest, codeBadRequest, "Invalid request payload")
		return false
	}
	return true
}

// pathID extracts a positive integer route variable.
func pathID(r *http.Request, name string) (int, error) {
	raw := mux.Vars(r)[name]
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s parameter", name)
	}
	if id <= 0 {
		return 0, fmt.Errorf("%s must be a positive number", name)
	}
	return id, nil
}

// ids extracts several route variables, answering 400 on the first bad one.
func ids(w http.ResponseWriter, r *http.Request, names ...string) ([]int, bool) {
	out := make([]int, len(names))
	for i, name := range names {
		id, err := pathID(r, name)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, codeBadRequest, err.Error())
			return nil, false
		}
		out[i] = id
	}
	return out, true
}

// getLimit reads ?limit= with a default and an upper bound.
func getLimit(r *http.Request, def, max int) int {
	limit := def
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if limit > max {
		limit = max
	}
	return limit
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
