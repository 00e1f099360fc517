package models

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

type Priority string

const (
	PriorityCritical Priority = "Critical"
	PriorityHigh     Priority = "High"
	PriorityMedium   Priority = "Medium"
	PriorityLow      Priority = "Low"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

type Status string

const (
	StatusOnTrack   Status = "On Track"
	StatusAtRisk    Status = "At Risk"
	StatusBehind    Status = "Behind"
	StatusPlanned   Status = "Planned"
	StatusCompleted Status = "Completed"
	StatusCancelled Status = "Cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusOnTrack, StatusAtRisk, StatusBehind, StatusPlanned, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Active reports whether engineers assigned to a project in this status are
// currently spending hours on it.
func (s Status) Active() bool {
	switch s {
	case StatusPlanned, StatusCompleted, StatusCancelled:
		return false
	}
	return true
}

type Location string

const (
	LocationModuleLine   Location = "Module Line"
	LocationPackLine     Location = "Pack Line"
	LocationLiveAgnostic Location = "Live Agnostic"
)

func (l Location) Valid() bool {
	switch l {
	case "", LocationModuleLine, LocationPackLine, LocationLiveAgnostic:
		return true
	}
	return false
}

const UnassignedOwner = "Unassigned"

type Project struct {
	ID                    int             `json:"id" db:"id"`
	Name                  string          `json:"name" db:"name"`
	Owner                 string          `json:"owner"`
	OwnerID               *int            `json:"ownerId" db:"owner_id"`
	Priority              Priority        `json:"priority" db:"priority"`
	Status                Status          `json:"status" db:"status"`
	Progress              int             `json:"progress" db:"progress"`
	StartDate             Date            `json:"startDate" db:"start_date"`
	EndDate               Date            `json:"endDate" db:"end_date"`
	EstimatedHoursPerWeek int             `json:"estimatedHoursPerWeek" db:"estimated_hours_per_week"`
	Budget                float64         `json:"budget" db:"budget"`
	Spent                 float64         `json:"spent" db:"spent"`
	Notes                 string          `json:"notes" db:"notes"`
	Location              Location        `json:"location" db:"location"`
	JiraKey               string          `json:"jiraKey" db:"jira_key"`
	JiraKeys              []string        `json:"jiraKeys"`
	Expenses              []Expense       `json:"expenses"`
	Milestones            []Milestone     `json:"milestones"`
	Tasks                 []Task          `json:"tasks"`
	ChangeHistory         []ChangeHistory `json:"changeHistory"`
	YearlyBudgets         []YearlyBudget  `json:"yearlyBudgets"`
	CreatedAt             time.Time       `json:"-" db:"created_at"`
}

// HasSpan reports whether both ends of the project schedule are known.
func (p Project) HasSpan() bool {
	return !p.StartDate.IsZero() && !p.EndDate.IsZero()
}

func (p Project) Remaining() float64 {
	return p.Budget - p.Spent
}

// Defaults fills the values a new project gets when the request omits them.
func (p *Project) Defaults() {
	if p.Priority == "" {
		p.Priority = PriorityMedium
	}
	if p.Status == "" {
		p.Status = StatusPlanned
	}
}

func (p Project) Validate() error {
	var errs ValidationErrors
	if strings.TrimSpace(p.Name) == "" {
		errs.Add("name", "name is required")
	}
	if !p.Priority.Valid() {
		errs.Add("priority", "priority must be one of Critical, High, Medium, Low")
	}
	if !p.Status.Valid() {
		errs.Add("status", "status must be one of On Track, At Risk, Behind, Planned, Completed, Cancelled")
	}
	if p.Progress < 0 || p.Progress > 100 {
		errs.Add("progress", "progress must be between 0 and 100")
	}
	if !p.Location.Valid() {
		errs.Add("location", "location must be one of Module Line, Pack Line, Live Agnostic")
	}
	if p.HasSpan() && p.EndDate.Before(p.StartDate.Time) {
		errs.Add("endDate", "endDate must not be before startDate")
	}
	if p.Budget < 0 {
		errs.Add("budget", "budget must not be negative")
	}
	if p.EstimatedHoursPerWeek < 0 {
		errs.Add("estimatedHoursPerWeek", "estimatedHoursPerWeek must not be negative")
	}
	for _, yb := range p.YearlyBudgets {
		if yb.Year < 1900 || yb.Year > 9999 {
			errs.Add("yearlyBudgets", "year must be a four-digit calendar year")
		}
		if yb.Amount < 0 {
			errs.Add("yearlyBudgets", "amount must not be negative")
		}
	}
	return errs.Err()
}

type YearlyBudget struct {
	ID     int     `json:"id" db:"id"`
	Year   int     `json:"year" db:"year"`
	Amount float64 `json:"amount" db:"amount"`
}

// PositiveYearlyBudgets drops zero allocations, which are never stored.
func PositiveYearlyBudgets(in []YearlyBudget) []YearlyBudget {
	out := make([]YearlyBudget, 0, len(in))
	for _, yb := range in {
		if yb.Amount > 0 {
			out = append(out, yb)
		}
	}
	return out
}

type ChangeHistory struct {
	ID        int       `json:"id" db:"id"`
	ProjectID int       `json:"-" db:"project_id"`
	Field     string    `json:"field" db:"field"`
	OldValue  string    `json:"oldValue" db:"old_value"`
	NewValue  string    `json:"newValue" db:"new_value"`
	ChangedAt time.Time `json:"changedAt" db:"changed_at"`
	ChangedBy string    `json:"changedBy" db:"changed_by"`
}

type JiraIssueLink struct {
	ID        int       `json:"id" db:"id"`
	ProjectID int       `json:"projectId" db:"project_id"`
	JiraKey   string    `json:"jiraKey" db:"jira_key"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// OptionalID tells an absent field from an explicit null, which clears it.
type OptionalID struct {
	Set   bool
	Value *int
}

func (o *OptionalID) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(data, []byte("null")) {
		o.Value = nil
		return nil
	}
	var id int
	if err := json.Unmarshal(data, &id); err != nil {
		return err
	}
	o.Value = &id
	return nil
}

// ProjectPatch is a partial project update. Owner is resolved by name when
// OwnerID is absent; "ownerId": null clears the owner.
type ProjectPatch struct {
	Name                  *string         `json:"name"`
	OwnerID               OptionalID      `json:"ownerId"`
	Owner                 *string         `json:"owner"`
	Priority              *Priority       `json:"priority"`
	Status                *Status         `json:"status"`
	Progress              *int            `json:"progress"`
	StartDate             *Date           `json:"startDate"`
	EndDate               *Date           `json:"endDate"`
	EstimatedHoursPerWeek *int            `json:"estimatedHoursPerWeek"`
	Budget                *float64        `json:"budget"`
	Spent                 *float64        `json:"spent"`
	Notes                 *string         `json:"notes"`
	Location              *Location       `json:"location"`
	JiraKey               *string         `json:"jiraKey"`
	YearlyBudgets         *[]YearlyBudget `json:"yearlyBudgets"`
}

// Apply writes the patch into p and returns the tracked field changes in the
// order the dashboard shows them.
func (patch ProjectPatch) Apply(p *Project) []ChangeHistory {
	var changes []ChangeHistory
	track := func(field, oldValue, newValue string) {
		changes = append(changes, ChangeHistory{Field: field, OldValue: oldValue, NewValue: newValue})
	}

	if patch.Name != nil && *patch.Name != p.Name {
		track("Name", p.Name, *patch.Name)
		p.Name = *patch.Name
	}
	if patch.OwnerID.Set {
		p.OwnerID = patch.OwnerID.Value
	}
	if patch.Priority != nil && *patch.Priority != p.Priority {
		track("Priority", string(p.Priority), string(*patch.Priority))
		p.Priority = *patch.Priority
	}
	if patch.Status != nil && *patch.Status != p.Status {
		track("Status", string(p.Status), string(*patch.Status))
		p.Status = *patch.Status
	}
	if patch.Progress != nil {
		p.Progress = *patch.Progress
	}
	if patch.StartDate != nil {
		if !patch.StartDate.Equal(p.StartDate.Time) {
			track("Start Date", p.StartDate.String(), patch.StartDate.String())
		}
		p.StartDate = *patch.StartDate
	}
	if patch.EndDate != nil {
		if !patch.EndDate.Equal(p.EndDate.Time) {
			track("End Date", p.EndDate.String(), patch.EndDate.String())
		}
		p.EndDate = *patch.EndDate
	}
	if patch.EstimatedHoursPerWeek != nil {
		p.EstimatedHoursPerWeek = *patch.EstimatedHoursPerWeek
	}
	if patch.Budget != nil {
		p.Budget = *patch.Budget
	}
	if patch.Spent != nil {
		p.Spent = *patch.Spent
	}
	if patch.Notes != nil {
		p.Notes = *patch.Notes
	}
	if patch.Location != nil {
		p.Location = *patch.Location
	}
	if patch.JiraKey != nil {
		p.JiraKey = *patch.JiraKey
	}
	if patch.YearlyBudgets != nil {
		p.YearlyBudgets = PositiveYearlyBudgets(*patch.YearlyBudgets)
	}
	return changes
}
