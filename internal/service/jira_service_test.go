package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"ops-dashboard/internal/models"
)

func newJira(cfg IntegrationConfig) *JiraService {
	s := NewJiraService(cfg, zap.NewNop())
	s.now = func() time.Time { return time.Date(2026, time.December, 21, 12, 0, 0, 0, time.UTC) }
	return s
}

func TestJiraConfigExpiry(t *testing.T) {
	tests := []struct {
		expiry      string
		wantDays    int
		wantExpired bool
		wantWarning bool
	}{
		{"2027-01-20", 30, false, true},
		{"2027-01-21", 31, false, false},
		{"2026-12-20", -1, true, true},
	}
	for _, tt := range tests {
		s := newJira(IntegrationConfig{
			JiraBaseURL:     "https://jira.example.com/",
			JiraAPIExpiry:   models.MustParseDate(tt.expiry),
			JiraWarningDays: 30,
		})
		got := s.Config()
		if got.DaysUntilExpiry != tt.wantDays || got.IsExpired != tt.wantExpired || got.ShowWarning != tt.wantWarning {
			t.Errorf("expiry %s: got %+v", tt.expiry, got)
		}
		if got.BaseURL != "https://jira.example.com" {
			t.Errorf("base url = %q", got.BaseURL)
		}
	}
}

func jiraIssueJSON(key, summary, status, issueType, assignee string) map[string]interface{} {
	fields := map[string]interface{}{
		"summary":   summary,
		"status":    map[string]interface{}{"name": status, "statusCategory": map[string]string{"name": "In Progress"}},
		"issuetype": map[string]string{"name": issueType},
	}
	if assignee != "" {
		fields["assignee"] = map[string]string{"displayName": assignee}
	}
	return map[string]interface{}{"key": key, "fields": fields}
}

func TestJiraIssueTree(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if user, token, ok := r.BasicAuth(); !ok || user != "ops@example.com" || token != "tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		switch r.URL.Path {
		case "/rest/api/3/issue/OPS-1":
			main := jiraIssueJSON("OPS-1", "Line 3 retrofit", "In Progress", "Epic", "Mike Rodriguez")
			main["fields"].(map[string]interface{})["subtasks"] = []interface{}{
				jiraIssueJSON("OPS-2", "Order parts", "Done", "Sub-task", ""),
				jiraIssueJSON("OPS-3", "Install", "To Do", "Sub-task", ""),
			}
			json.NewEncoder(w).Encode(main)
		case "/rest/api/3/issue/OPS-2":
			json.NewEncoder(w).Encode(jiraIssueJSON("OPS-2", "Order parts", "Done", "Sub-task", "Sarah Chen"))
		case "/rest/api/3/issue/OPS-3":
			w.WriteHeader(http.StatusInternalServerError)
		case "/rest/api/3/search":
			if !strings.Contains(r.URL.Query().Get("jql"), `"Epic Link" = OPS-1`) || r.URL.Query().Get("maxResults") != "50" {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			json.NewEncoder(w).Encode(map[string]interface{}{"issues": []interface{}{
				jiraIssueJSON("OPS-2", "Order parts", "Done", "Sub-task", "Sarah Chen"),
				jiraIssueJSON("OPS-4", "Validate", "To Do", "Story", ""),
			}})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	s := newJira(IntegrationConfig{JiraBaseURL: srv.URL, JiraEmail: "ops@example.com", JiraAPIToken: "tok"})
	tree, err := s.Issue(context.Background(), "OPS-1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	if tree.Issue.Assignee != "Mike Rodriguez" || tree.Issue.IssueType != "Epic" || tree.Issue.URL != srv.URL+"/browse/OPS-1" {
		t.Errorf("issue = %+v", tree.Issue)
	}
	var keys []string
	for _, c := range tree.Children {
		keys = append(keys, c.Key)
	}
	if strings.Join(keys, ",") != "OPS-2,OPS-4" {
		t.Fatalf("children = %v, want OPS-2,OPS-4", keys)
	}
	if tree.Children[0].Assignee != "Sarah Chen" {
		t.Errorf("subtask assignee = %q", tree.Children[0].Assignee)
	}
	if tree.Children[1].Assignee != models.UnassignedOwner || tree.Children[1].Priority != "" {
		t.Errorf("search child = %+v", tree.Children[1])
	}

	if _, err := s.Issue(context.Background(), "OPS-404"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("missing issue: got %v, want ErrNotFound", err)
	}
}

func TestJiraIssueNotConfigured(t *testing.T) {
	s := newJira(IntegrationConfig{JiraBaseURL: "https://jira.example.com"})
	if _, err := s.Issue(context.Background(), "OPS-1"); !errors.Is(err, models.ErrNotConfigured) {
		t.Errorf("got %v, want ErrNotConfigured", err)
	}
}

func TestIgnitionProxy(t *testing.T) {
	var gotQuery url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		if r.URL.Query().Get("issueKey") == "BAD-1" {
			w.Write([]byte(strings.Repeat("x", 800)))
			return
		}
		w.WriteHeader(http.StatusAccepted)
		w.Write([]byte(`{"issues":[]}`))
	}))
	defer srv.Close()

	s := newJira(IntegrationConfig{IgnitionBaseURL: srv.URL})
	ctx := context.Background()

	resp, err := s.IgnitionJira(ctx, url.Values{"status": {"open"}, "limit": {"5"}})
	if err != nil {
		t.Fatalf("IgnitionJira: %v", err)
	}
	if resp.StatusCode != http.StatusAccepted || string(resp.Body) != `{"issues":[]}` {
		t.Errorf("response = %d %s", resp.StatusCode, resp.Body)
	}
	if gotQuery.Get("status") != "open" || gotQuery.Get("limit") != "5" {
		t.Errorf("forwarded query = %v", gotQuery)
	}

	_, err = s.IgnitionJiraIssue(ctx, "BAD-1")
	var upstream *models.UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("got %v, want UpstreamError", err)
	}
	if upstream.Status != http.StatusBadGateway || len(upstream.Details["rawResponse"]) != rawResponseLimit {
		t.Errorf("upstream = %d, raw length %d", upstream.Status, len(upstream.Details["rawResponse"]))
	}
}

func TestIgnitionProxyForwardsCall(t *testing.T) {
	var (
		gotMethod, gotPath, gotUser string
		gotQuery                    url.Values
		gotBody                     map[string]interface{}
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath, gotQuery = r.Method, r.URL.Path, r.URL.Query()
		gotUser, _, _ = r.BasicAuth()
		json.NewDecoder(r.Body).Decode(&gotBody)
		if r.URL.Path == "/ops/raw" {
			w.Header().Set("Content-Type", "text/plain")
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte("no such tag"))
			return
		}
		w.Write([]byte(`{"written":true}`))
	}))
	defer srv.Close()

	s := newJira(IntegrationConfig{IgnitionBaseURL: srv.URL, IgnitionUsername: "gateway", IgnitionPassword: "pw"})
	ctx := context.Background()

	resp, err := s.IgnitionProxy(ctx, http.MethodPost, "ops/note", url.Values{"line": {"4"}}, json.RawMessage(`{"text":"shift handover"}`))
	if err != nil {
		t.Fatalf("IgnitionProxy: %v", err)
	}
	if resp.StatusCode != http.StatusOK || string(resp.Body) != `{"written":true}` {
		t.Errorf("response = %d %s", resp.StatusCode, resp.Body)
	}
	if gotMethod != http.MethodPost || gotPath != "/ops/note" || gotQuery.Get("line") != "4" {
		t.Errorf("forwarded %s %s ?%v", gotMethod, gotPath, gotQuery)
	}
	if gotBody["text"] != "shift handover" || gotUser != "gateway" {
		t.Errorf("body = %v, user = %q", gotBody, gotUser)
	}

	resp, err = s.IgnitionProxy(ctx, http.MethodDelete, "/ops/raw", nil, nil)
	if err != nil {
		t.Fatalf("IgnitionProxy: %v", err)
	}
	var wrapped struct {
		Success    bool   `json:"success"`
		StatusCode int    `json:"statusCode"`
		Response   string `json:"response"`
	}
	if err := json.Unmarshal(resp.Body, &wrapped); err != nil {
		t.Fatalf("wrapped body %s: %v", resp.Body, err)
	}
	if resp.StatusCode != http.StatusNotFound || wrapped.Success || wrapped.StatusCode != http.StatusNotFound || wrapped.Response != "no such tag" {
		t.Errorf("wrapped = %d %+v", resp.StatusCode, wrapped)
	}

	_, err = s.IgnitionProxy(ctx, http.MethodGet, " ", nil, nil)
	var verrs models.ValidationErrors
	if !errors.As(err, &verrs) || verrs[0].Field != "path" {
		t.Errorf("blank path: got %v, want a path validation error", err)
	}
}

func TestIgnitionUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	s := newJira(IntegrationConfig{IgnitionBaseURL: base, IgnitionUsername: "u", IgnitionPassword: "p"})
	_, err := s.IgnitionJira(context.Background(), nil)
	if !errors.Is(err, models.ErrUpstreamDown) {
		t.Errorf("got %v, want ErrUpstreamDown", err)
	}

	health := s.IgnitionHealth(context.Background())
	if health.Status != "disconnected" || !health.Authenticated {
		t.Errorf("health = %+v", health)
	}
}

func TestIgnitionNotConfigured(t *testing.T) {
	s := newJira(IntegrationConfig{})
	if _, err := s.IgnitionJira(context.Background(), nil); !errors.Is(err, models.ErrNotConfigured) {
		t.Errorf("got %v, want ErrNotConfigured", err)
	}
}

func TestPowerAutomate(t *testing.T) {
	var received map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&received)
		w.WriteHeader(http.StatusAccepted)
		w.Write([]byte("queued"))
	}))
	defer srv.Close()

	s := newJira(IntegrationConfig{PowerAutomateURL: srv.URL})
	res, err := s.PowerAutomate(context.Background(), json.RawMessage(`{"project":"Line 3"}`))
	if err != nil {
		t.Fatalf("PowerAutomate: %v", err)
	}
	if !res.Success || res.StatusCode != http.StatusAccepted || res.Response != "queued" {
		t.Errorf("result = %+v", res)
	}
	if received["project"] != "Line 3" {
		t.Errorf("flow received %v", received)
	}

	unset := newJira(IntegrationConfig{})
	if _, err := unset.PowerAutomate(context.Background(), nil); !errors.Is(err, models.ErrNotConfigured) {
		t.Errorf("got %v, want ErrNotConfigured", err)
	}
}
