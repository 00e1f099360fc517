package service

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"ops-dashboard/internal/metrics"
	"ops-dashboard/internal/models"
)

const (
	jiraIssueTimeout    = 15 * time.Second
	jiraSubtaskTimeout  = 10 * time.Second
	jiraSearchLimit     = 50
	ignitionTimeout     = 30 * time.Second
	ignitionPingTimeout = 10 * time.Second
	webhookTimeout      = 30 * time.Second

	rawResponseLimit = 500
	ignitionJiraPath = "/ops/jira"
)

type IntegrationConfig struct {
	JiraBaseURL     string
	JiraEmail       string
	JiraAPIToken    string
	JiraAPIExpiry   models.Date
	JiraWarningDays int

	IgnitionBaseURL       string
	IgnitionUsername      string
	IgnitionPassword      string
	IgnitionSkipTLSVerify bool

	PowerAutomateURL string
}

// JiraService talks to Jira Cloud, the Ignition ops gateway and the Power
// Automate webhook. Calls are never retried.
type JiraService struct {
	cfg            IntegrationConfig
	httpClient     *http.Client
	ignitionClient *http.Client
	logger         *zap.Logger
	now            func() time.Time
}

func NewJiraService(cfg IntegrationConfig, logger *zap.Logger) *JiraService {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.IgnitionSkipTLSVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	cfg.JiraBaseURL = strings.TrimRight(cfg.JiraBaseURL, "/")
	cfg.IgnitionBaseURL = strings.TrimRight(cfg.IgnitionBaseURL, "/")

	return &JiraService{
		cfg:            cfg,
		httpClient:     &http.Client{},
		ignitionClient: &http.Client{Transport: transport},
		logger:         logger,
		now:            time.Now,
	}
}

// Config reports the Jira base URL and how close the API token is to expiry.
func (s *JiraService) Config() models.JiraConfig {
	days := models.DateOf(s.now()).DaysUntil(s.cfg.JiraAPIExpiry)
	return models.JiraConfig{
		BaseURL:         s.cfg.JiraBaseURL,
		ExpiryDate:      s.cfg.JiraAPIExpiry,
		DaysUntilExpiry: days,
		IsExpired:       days < 0,
		ShowWarning:     days <= s.cfg.JiraWarningDays,
	}
}

type jiraNamed struct {
	Name string `json:"name"`
}

type jiraStatus struct {
	Name           string     `json:"name"`
	StatusCategory *jiraNamed `json:"statusCategory"`
}

type jiraUser struct {
	DisplayName string `json:"displayName"`
}

type jiraFields struct {
	Summary   string      `json:"summary"`
	Status    *jiraStatus `json:"status"`
	IssueType *jiraNamed  `json:"issuetype"`
	Priority  *jiraNamed  `json:"priority"`
	Assignee  *jiraUser   `json:"assignee"`
	Subtasks  []jiraRaw   `json:"subtasks"`
}

type jiraRaw struct {
	Key    string     `json:"key"`
	Fields jiraFields `json:"fields"`
}

type jiraSearchResult struct {
	Issues []jiraRaw `json:"issues"`
}

func (s *JiraService) toIssue(raw jiraRaw, defaultType string) models.JiraIssue {
	issue := models.JiraIssue{
		Key:            raw.Key,
		Summary:        raw.Fields.Summary,
		Status:         "Unknown",
		StatusCategory: "Unknown",
		IssueType:      defaultType,
		Assignee:       models.UnassignedOwner,
		URL:            s.cfg.JiraBaseURL + "/browse/" + raw.Key,
	}
	if st := raw.Fields.Status; st != nil {
		if st.Name != "" {
			issue.Status = st.Name
		}
		if st.StatusCategory != nil && st.StatusCategory.Name != "" {
			issue.StatusCategory = st.StatusCategory.Name
		}
	}
	if raw.Fields.IssueType != nil && raw.Fields.IssueType.Name != "" {
		issue.IssueType = raw.Fields.IssueType.Name
	}
	if raw.Fields.Priority != nil {
		issue.Priority = raw.Fields.Priority.Name
	}
	if raw.Fields.Assignee != nil && raw.Fields.Assignee.DisplayName != "" {
		issue.Assignee = raw.Fields.Assignee.DisplayName
	}
	return issue
}

// Issue fetches an issue with its subtasks and the issues whose Epic Link or
// Parent Link points at it.
func (s *JiraService) Issue(ctx context.Context, key string) (*models.JiraIssueTree, error) {
	if s.cfg.JiraEmail == "" {
		return nil, fmt.Errorf("JIRA_EMAIL environment variable not set: %w", models.ErrNotConfigured)
	}

	var main jiraRaw
	status, err := s.jiraGet(ctx, "/rest/api/3/issue/"+url.PathEscape(key), nil, jiraIssueTimeout, &main)
	if err != nil {
		return nil, err
	}
	switch {
	case status == http.StatusNotFound:
		return nil, fmt.Errorf("Issue %s not found: %w", key, models.ErrNotFound)
	case status != http.StatusOK:
		return nil, &models.UpstreamError{
			Status:  status,
			Message: fmt.Sprintf("Jira API error: %d", status),
			Err:     models.ErrUpstream,
		}
	}

	tree := &models.JiraIssueTree{
		Issue:    s.toIssue(main, "Unknown"),
		Children: []models.JiraIssue{},
	}

	fields := url.Values{"fields": {"summary,status,issuetype,priority,assignee"}}
	for _, ref := range main.Fields.Subtasks {
		var sub jiraRaw
		status, err := s.jiraGet(ctx, "/rest/api/3/issue/"+url.PathEscape(ref.Key), fields, jiraSubtaskTimeout, &sub)
		switch {
		case err != nil:
			s.logger.Debug("subtask lookup failed, using reference data", zap.String("key", ref.Key), zap.Error(err))
			fallback := s.toIssue(jiraRaw{Key: ref.Key, Fields: jiraFields{Summary: ref.Fields.Summary, Status: ref.Fields.Status}}, "Subtask")
			tree.Children = append(tree.Children, fallback)
		case status == http.StatusOK:
			tree.Children = append(tree.Children, s.toIssue(sub, "Subtask"))
		}
	}

	search := url.Values{
		"jql":        {fmt.Sprintf(`"Parent Link" = %s OR "Epic Link" = %s ORDER BY created ASC`, key, key)},
		"fields":     {"summary,status,issuetype,priority,assignee"},
		"maxResults": {strconv.Itoa(jiraSearchLimit)},
	}
	var found jiraSearchResult
	status, err = s.jiraGet(ctx, "/rest/api/3/search", search, jiraIssueTimeout, &found)
	if err != nil {
		s.logger.Debug("child issue search failed", zap.String("key", key), zap.Error(err))
	}
	if err == nil && status == http.StatusOK {
		seen := make(map[string]bool, len(tree.Children))
		for _, c := range tree.Children {
			seen[c.Key] = true
		}
		for _, raw := range found.Issues {
			if seen[raw.Key] {
				continue
			}
			seen[raw.Key] = true
			tree.Children = append(tree.Children, s.toIssue(raw, "Unknown"))
		}
	}
	return tree, nil
}

// jiraGet decodes the body into dst only on 200.
func (s *JiraService) jiraGet(ctx context.Context, path string, query url.Values, timeout time.Duration, dst interface{}) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	target := s.cfg.JiraBaseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(s.cfg.JiraEmail, s.cfg.JiraAPIToken)

	start := time.Now()
	resp, err := s.httpClient.Do(req)
	if err != nil {
		metrics.RecordOutbound("jira", "error", time.Since(start))
		return 0, classifyTransportError("Jira", target, err)
	}
	defer resp.Body.Close()
	metrics.RecordOutbound("jira", strconv.Itoa(resp.StatusCode), time.Since(start))

	if resp.StatusCode != http.StatusOK {
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return resp.StatusCode, &models.UpstreamError{
			Status:  http.StatusBadGateway,
			Message: "Invalid JSON response from Jira",
			Err:     models.ErrUpstream,
		}
	}
	return resp.StatusCode, nil
}

// ProxyResponse is an upstream JSON body relayed with its status code.
type ProxyResponse struct {
	StatusCode int
	Body       json.RawMessage
}

// IgnitionJira lists ops Jira records through the Ignition gateway,
// forwarding the query parameters unchanged.
func (s *JiraService) IgnitionJira(ctx context.Context, params url.Values) (*ProxyResponse, error) {
	return s.ignitionGet(ctx, params)
}

// IgnitionJiraIssue asks Ignition for one issue; the gateway takes the key as
// a query parameter.
func (s *JiraService) IgnitionJiraIssue(ctx context.Context, key string) (*ProxyResponse, error) {
	return s.ignitionGet(ctx, url.Values{"issueKey": {key}})
}

// IgnitionProxy forwards an arbitrary call to the gateway. path gets a
// leading slash if missing; body is sent as JSON when non-empty. Answers that
// are not JSON are wrapped as {success, statusCode, response}.
func (s *JiraService) IgnitionProxy(ctx context.Context, method, path string, params url.Values, body json.RawMessage) (*ProxyResponse, error) {
	if strings.TrimSpace(path) == "" {
		return nil, models.ValidationErrors{{Field: "path", Message: `Missing required "path" query parameter, e.g. /api/ignition/proxy?path=/ops/jira`}}
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	status, raw, err := s.ignitionDo(ctx, method, path, params, body)
	if err != nil {
		return nil, err
	}
	if json.Valid(raw) {
		return &ProxyResponse{StatusCode: status, Body: raw}, nil
	}
	wrapped, err := json.Marshal(struct {
		Success    bool   `json:"success"`
		StatusCode int    `json:"statusCode"`
		Response   string `json:"response"`
	}{status < http.StatusBadRequest, status, string(raw)})
	if err != nil {
		return nil, err
	}
	return &ProxyResponse{StatusCode: status, Body: wrapped}, nil
}

func (s *JiraService) ignitionTarget(path string) (string, error) {
	if s.cfg.IgnitionBaseURL == "" {
		return "", fmt.Errorf("IGNITION_API_BASE_URL environment variable not set: %w", models.ErrNotConfigured)
	}
	return s.cfg.IgnitionBaseURL + path, nil
}

func (s *JiraService) ignitionRequest(ctx context.Context, method, target string, body []byte) (*http.Request, error) {
	var reader io.Reader
	if len(body) > 0 {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.ignitionAuthenticated() {
		req.SetBasicAuth(s.cfg.IgnitionUsername, s.cfg.IgnitionPassword)
	}
	return req, nil
}

func (s *JiraService) ignitionAuthenticated() bool {
	return s.cfg.IgnitionUsername != "" && s.cfg.IgnitionPassword != ""
}

// ignitionDo performs one gateway call and returns its status and raw body.
func (s *JiraService) ignitionDo(ctx context.Context, method, path string, params url.Values, body []byte) (int, []byte, error) {
	target, err := s.ignitionTarget(path)
	if err != nil {
		return 0, nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, ignitionTimeout)
	defer cancel()

	full := target
	if len(params) > 0 {
		full += "?" + params.Encode()
	}
	req, err := s.ignitionRequest(ctx, method, full, body)
	if err != nil {
		return 0, nil, err
	}

	start := time.Now()
	resp, err := s.ignitionClient.Do(req)
	if err != nil {
		metrics.RecordOutbound("ignition", "error", time.Since(start))
		return 0, nil, classifyTransportError("Ignition", target, err)
	}
	defer resp.Body.Close()
	metrics.RecordOutbound("ignition", strconv.Itoa(resp.StatusCode), time.Since(start))

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, classifyTransportError("Ignition", target, err)
	}
	return resp.StatusCode, raw, nil
}

func (s *JiraService) ignitionGet(ctx context.Context, params url.Values) (*ProxyResponse, error) {
	status, body, err := s.ignitionDo(ctx, http.MethodGet, ignitionJiraPath, params, nil)
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		return nil, &models.UpstreamError{
			Status:  http.StatusBadGateway,
			Message: "Invalid JSON response from Ignition",
			Details: map[string]string{"rawResponse": truncate(string(body), rawResponseLimit)},
			Err:     models.ErrUpstream,
		}
	}
	return &ProxyResponse{StatusCode: status, Body: body}, nil
}

// IgnitionHealth probes the gateway. Status is connected, error or
// disconnected; it is never returned as an error.
func (s *JiraService) IgnitionHealth(ctx context.Context) models.IgnitionHealth {
	health := models.IgnitionHealth{
		IgnitionURL:   s.cfg.IgnitionBaseURL,
		Authenticated: s.ignitionAuthenticated(),
		Timestamp:     s.now().UTC(),
	}

	target, err := s.ignitionTarget(ignitionJiraPath)
	if err != nil {
		health.Status = "error"
		health.Error = err.Error()
		return health
	}
	ctx, cancel := context.WithTimeout(ctx, ignitionPingTimeout)
	defer cancel()

	req, err := s.ignitionRequest(ctx, http.MethodGet, target, nil)
	if err != nil {
		health.Status = "error"
		health.Error = err.Error()
		return health
	}
	resp, err := s.ignitionClient.Do(req)
	if err != nil {
		health.Status = "disconnected"
		health.Error = "Could not connect to Ignition server"
		return health
	}
	defer resp.Body.Close()

	health.StatusCode = resp.StatusCode
	health.Status = "connected"
	if resp.StatusCode >= http.StatusBadRequest {
		health.Status = "error"
	}
	return health
}

// PowerAutomate forwards the payload to the configured flow and relays the
// flow's answer.
func (s *JiraService) PowerAutomate(ctx context.Context, payload json.RawMessage) (*models.WebhookResult, error) {
	if s.cfg.PowerAutomateURL == "" {
		return nil, fmt.Errorf("Power Automate URL not configured, set POWER_AUTOMATE_URL: %w", models.ErrNotConfigured)
	}
	if len(payload) == 0 {
		payload = json.RawMessage("null")
	}
	ctx, cancel := context.WithTimeout(ctx, webhookTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.PowerAutomateURL, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := s.httpClient.Do(req)
	if err != nil {
		metrics.RecordOutbound("powerautomate", "error", time.Since(start))
		return nil, classifyTransportError("Power Automate", s.cfg.PowerAutomateURL, err)
	}
	defer resp.Body.Close()
	metrics.RecordOutbound("powerautomate", strconv.Itoa(resp.StatusCode), time.Since(start))

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classifyTransportError("Power Automate", s.cfg.PowerAutomateURL, err)
	}
	return &models.WebhookResult{
		Success:    true,
		StatusCode: resp.StatusCode,
		Response:   string(body),
	}, nil
}

// Echo answers the test webhook with what it received.
func (s *JiraService) Echo(payload json.RawMessage) models.WebhookEcho {
	return models.WebhookEcho{
		Received:  payload,
		Timestamp: s.now().UTC(),
		Message:   "Webhook test successful",
	}
}

func classifyTransportError(service, target string, err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &models.UpstreamError{
			Status:  http.StatusGatewayTimeout,
			Message: service + " server request timed out",
			Details: map[string]string{"url": target},
			Err:     models.ErrUpstreamTimeout,
		}
	}
	return &models.UpstreamError{
		Status:  http.StatusServiceUnavailable,
		Message: "Could not connect to " + service + " server",
		Details: map[string]string{"url": target},
		Err:     models.ErrUpstreamDown,
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
