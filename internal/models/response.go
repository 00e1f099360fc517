package models

import "time"

type JiraConfig struct {
	BaseURL         string `json:"baseUrl"`
	ExpiryDate      Date   `json:"expiryDate"`
	DaysUntilExpiry int    `json:"daysUntilExpiry"`
	IsExpired       bool   `json:"isExpired"`
	ShowWarning     bool   `json:"showWarning"`
}

type JiraIssue struct {
	Key            string `json:"key"`
	Summary        string `json:"summary"`
	Status         string `json:"status"`
	StatusCategory string `json:"statusCategory"`
	IssueType      string `json:"issueType"`
	Priority       string `json:"priority"`
	Assignee       string `json:"assignee"`
	URL            string `json:"url"`
}

// JiraIssueTree is an issue with its subtasks and epic or parent-link children.
type JiraIssueTree struct {
	Issue    JiraIssue   `json:"issue"`
	Children []JiraIssue `json:"children"`
}

type WebhookResult struct {
	Success    bool   `json:"success"`
	StatusCode int    `json:"status_code"`
	Response   string `json:"response"`
}

type IgnitionHealth struct {
	Status        string    `json:"status"`
	StatusCode    int       `json:"statusCode,omitempty"`
	IgnitionURL   string    `json:"ignitionUrl"`
	Authenticated bool      `json:"authenticated"`
	Error         string    `json:"error,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

type WebhookEcho struct {
	Received  interface{} `json:"received"`
	Timestamp time.Time   `json:"timestamp"`
	Message   string      `json:"message"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      string    `json:"user"`
}

type ArchiveResponse struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
	Size   int64  `json:"size"`
}
