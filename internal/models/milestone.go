package models

import (
	"fmt"
	"sort"
	"strings"
)

type MilestoneStatus string

const (
	MilestonePending   MilestoneStatus = "pending"
	MilestoneAtRisk    MilestoneStatus = "at-risk"
	MilestoneCompleted MilestoneStatus = "completed"
)

func (s MilestoneStatus) Valid() bool {
	switch s {
	case MilestonePending, MilestoneAtRisk, MilestoneCompleted:
		return true
	}
	return false
}

// CanTransition reports whether a milestone may move from s to next.
// Completed is terminal; staying in the same state is always allowed.
func (s MilestoneStatus) CanTransition(next MilestoneStatus) bool {
	if s == next {
		return true
	}
	switch s {
	case MilestonePending:
		return next == MilestoneAtRisk || next == MilestoneCompleted
	case MilestoneAtRisk:
		return next == MilestoneCompleted
	}
	return false
}

type Milestone struct {
	ID           int             `json:"id" db:"id"`
	ProjectID    int             `json:"-" db:"project_id"`
	Name         string          `json:"name" db:"name"`
	PlannedDate  Date            `json:"plannedDate" db:"planned_date"`
	ActualDate   Date            `json:"actualDate" db:"actual_date"`
	Status       MilestoneStatus `json:"status" db:"status"`
	StartDate    Date            `json:"startDate" db:"start_date"`
	EndDate      Date            `json:"endDate" db:"end_date"`
	HoursPerWeek *int            `json:"hoursPerWeek" db:"hours_per_week"`
	Assignments  []Assignment    `json:"assignments"`
}

func (m Milestone) HasSpan() bool {
	return !m.StartDate.IsZero() && !m.EndDate.IsZero()
}

func (m *Milestone) Defaults() {
	if m.Status == "" {
		m.Status = MilestonePending
	}
}

func (m Milestone) Validate() error {
	var errs ValidationErrors
	if strings.TrimSpace(m.Name) == "" {
		errs.Add("name", "name is required")
	}
	if m.PlannedDate.IsZero() {
		errs.Add("plannedDate", "plannedDate is required")
	}
	if !m.Status.Valid() {
		errs.Add("status", "status must be one of pending, at-risk, completed")
	}
	if m.Status != MilestoneCompleted && !m.ActualDate.IsZero() {
		errs.Add("actualDate", "actualDate is only set on completed milestones")
	}
	return errs.Err()
}

type MilestonePatch struct {
	Name        *string          `json:"name"`
	PlannedDate *Date            `json:"plannedDate"`
	ActualDate  *Date            `json:"actualDate"`
	Status      *MilestoneStatus `json:"status"`
}

// Apply moves m through the status machine and returns the tracked changes.
// Entering completed stamps actualDate with today unless the patch carries one.
func (p MilestonePatch) Apply(m *Milestone, today Date) ([]ChangeHistory, error) {
	var changes []ChangeHistory
	name := m.Name
	track := func(field, oldValue, newValue string) {
		changes = append(changes, ChangeHistory{
			Field:    fmt.Sprintf("Milestone %q %s", name, field),
			OldValue: oldValue,
			NewValue: newValue,
		})
	}

	if p.Status != nil {
		if !p.Status.Valid() {
			return nil, ValidationErrors{{Field: "status", Message: "status must be one of pending, at-risk, completed"}}
		}
		if !m.Status.CanTransition(*p.Status) {
			return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, m.Status, *p.Status)
		}
	}

	if p.Name != nil && *p.Name != m.Name {
		track("Name", m.Name, *p.Name)
		m.Name = *p.Name
		name = *p.Name
	}
	if p.PlannedDate != nil {
		if p.PlannedDate.IsZero() {
			return nil, ValidationErrors{{Field: "plannedDate", Message: "plannedDate is required"}}
		}
		if !p.PlannedDate.Equal(m.PlannedDate.Time) {
			track("Planned Date", m.PlannedDate.String(), p.PlannedDate.String())
		}
		m.PlannedDate = *p.PlannedDate
	}

	entering := p.Status != nil && *p.Status == MilestoneCompleted && m.Status != MilestoneCompleted
	actual := m.ActualDate
	switch {
	case entering && p.ActualDate != nil && !p.ActualDate.IsZero():
		actual = *p.ActualDate
	case entering:
		actual = today
	case p.ActualDate != nil && m.Status == MilestoneCompleted:
		actual = *p.ActualDate
	}
	if !actual.Equal(m.ActualDate.Time) {
		track("Actual Date", m.ActualDate.String(), actual.String())
		m.ActualDate = actual
	}

	if p.Status != nil && *p.Status != m.Status {
		track("Status", string(m.Status), string(*p.Status))
		m.Status = *p.Status
	}
	return changes, nil
}

// ChainRanges gives every milestone a contiguous working range: the first
// runs from the project start to its planned date, each later one from the
// previous planned date to its own. Without a project start nothing changes.
func ChainRanges(projectStart Date, milestones []Milestone) []Milestone {
	if projectStart.IsZero() || len(milestones) == 0 {
		return milestones
	}
	out := make([]Milestone, len(milestones))
	copy(out, milestones)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PlannedDate.Before(out[j].PlannedDate.Time)
	})
	prev := projectStart
	for i := range out {
		out[i].StartDate = prev
		out[i].EndDate = out[i].PlannedDate
		prev = out[i].PlannedDate
	}
	return out
}
