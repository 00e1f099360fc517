package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ops-dashboard/internal/models"
)

func (s *DashboardService) AddExpense(ctx context.Context, projectID int, e *models.Expense) error {
	if _, err := s.store.GetProject(ctx, projectID); err != nil {
		return err
	}
	e.ProjectID = projectID
	e.Defaults()
	if err := e.Validate(); err != nil {
		return err
	}
	if err := s.store.CreateExpense(ctx, e); err != nil {
		return err
	}

	s.touch(ctx, projectID)
	s.events.publish(EntityExpense, ActionCreated, e.ID, projectID, e)
	return nil
}

// UpdateExpense moves the project's spent by the change in amount.
func (s *DashboardService) UpdateExpense(ctx context.Context, id int, patch models.ExpensePatch) (*models.Expense, error) {
	e, err := s.store.GetExpense(ctx, id)
	if err != nil {
		return nil, err
	}
	delta := patch.Apply(e)
	if err := e.Validate(); err != nil {
		return nil, err
	}
	if err := s.store.UpdateExpense(ctx, e, delta); err != nil {
		return nil, err
	}

	s.touch(ctx, e.ProjectID)
	s.events.publish(EntityExpense, ActionUpdated, e.ID, e.ProjectID, e)
	return e, nil
}

func (s *DashboardService) DeleteExpense(ctx context.Context, id int) error {
	e, err := s.store.DeleteExpense(ctx, id)
	if err != nil {
		return err
	}

	s.touch(ctx, e.ProjectID)
	s.events.publish(EntityExpense, ActionDeleted, e.ID, e.ProjectID, e)
	return nil
}

func (s *DashboardService) AddMilestone(ctx context.Context, projectID int, m *models.Milestone) error {
	if _, err := s.store.GetProject(ctx, projectID); err != nil {
		return err
	}
	m.ProjectID = projectID
	m.Defaults()
	if m.Status == models.MilestoneCompleted && m.ActualDate.IsZero() {
		m.ActualDate = s.today()
	}
	if err := m.Validate(); err != nil {
		return err
	}

	added := []models.ChangeHistory{{
		Field:    "Milestone Added",
		NewValue: fmt.Sprintf("%s (%s)", m.Name, m.PlannedDate),
	}}
	if err := s.store.CreateMilestone(ctx, m, added); err != nil {
		return err
	}
	if err := s.reloadMilestone(ctx, m); err != nil {
		return err
	}

	s.touch(ctx, projectID)
	s.events.publish(EntityMilestone, ActionCreated, m.ID, projectID, m)
	return nil
}

// UpdateMilestone applies the patch through the status machine. Invalid
// transitions fail with ErrInvalidTransition and nothing is written.
func (s *DashboardService) UpdateMilestone(ctx context.Context, id int, patch models.MilestonePatch) (*models.Milestone, error) {
	m, err := s.store.GetMilestone(ctx, id)
	if err != nil {
		return nil, err
	}
	changes, err := patch.Apply(m, s.today())
	if err != nil {
		return nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if err := s.store.UpdateMilestone(ctx, m, changes); err != nil {
		return nil, err
	}
	if err := s.reloadMilestone(ctx, m); err != nil {
		return nil, err
	}

	s.touch(ctx, m.ProjectID)
	s.events.publish(EntityMilestone, ActionUpdated, m.ID, m.ProjectID, changes)
	return m, nil
}

func (s *DashboardService) DeleteMilestone(ctx context.Context, id int) error {
	m, err := s.store.GetMilestone(ctx, id)
	if err != nil {
		return err
	}
	deleted := []models.ChangeHistory{{
		Field:    "Milestone Deleted",
		OldValue: fmt.Sprintf("%s (%s)", m.Name, m.PlannedDate),
	}}
	if err := s.store.DeleteMilestone(ctx, m, deleted); err != nil {
		return err
	}

	s.touch(ctx, m.ProjectID)
	s.events.publish(EntityMilestone, ActionDeleted, m.ID, m.ProjectID, nil)
	return nil
}

// reloadMilestone picks up the working range assigned by re-chaining.
func (s *DashboardService) reloadMilestone(ctx context.Context, m *models.Milestone) error {
	fresh, err := s.store.GetMilestone(ctx, m.ID)
	if err != nil {
		return err
	}
	*m = *fresh
	return nil
}

func (s *DashboardService) ListAssignments(ctx context.Context, milestoneID int) ([]models.Assignment, error) {
	if _, err := s.store.GetMilestone(ctx, milestoneID); err != nil {
		return nil, err
	}
	return s.store.ListAssignments(ctx, milestoneID)
}

func (s *DashboardService) AddAssignment(ctx context.Context, milestoneID int, a *models.Assignment) error {
	m, err := s.store.GetMilestone(ctx, milestoneID)
	if err != nil {
		return err
	}
	a.MilestoneID = milestoneID
	if err := a.Validate(); err != nil {
		return err
	}
	if _, err := s.store.GetEngineer(ctx, a.EngineerID); err != nil {
		return fmt.Errorf("engineer %d: %w", a.EngineerID, err)
	}
	for _, existing := range m.Assignments {
		if existing.EngineerID == a.EngineerID {
			return fmt.Errorf("engineer already assigned to this milestone: %w", models.ErrConflict)
		}
	}
	if err := s.store.CreateAssignment(ctx, m.ProjectID, a); err != nil {
		if errors.Is(err, models.ErrConflict) {
			return fmt.Errorf("engineer already assigned to this milestone: %w", models.ErrConflict)
		}
		return err
	}

	s.touch(ctx, m.ProjectID)
	s.events.publish(EntityAssignment, ActionCreated, a.ID, m.ProjectID, a)
	return nil
}

func (s *DashboardService) UpdateAssignment(ctx context.Context, id int, patch models.HoursPatch) (*models.Assignment, error) {
	a, err := s.store.GetAssignment(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.HoursPerWeek != nil {
		a.HoursPerWeek = *patch.HoursPerWeek
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	m, err := s.store.GetMilestone(ctx, a.MilestoneID)
	if err != nil {
		return nil, err
	}
	if err := s.store.UpdateAssignment(ctx, a); err != nil {
		return nil, err
	}

	s.touch(ctx, m.ProjectID)
	s.events.publish(EntityAssignment, ActionUpdated, a.ID, m.ProjectID, a)
	return a, nil
}

func (s *DashboardService) DeleteAssignment(ctx context.Context, id int) error {
	a, err := s.store.GetAssignment(ctx, id)
	if err != nil {
		return err
	}
	m, err := s.store.GetMilestone(ctx, a.MilestoneID)
	if err != nil {
		return err
	}
	if err := s.store.DeleteAssignment(ctx, id); err != nil {
		return err
	}

	s.touch(ctx, m.ProjectID)
	s.events.publish(EntityAssignment, ActionDeleted, id, m.ProjectID, nil)
	return nil
}

// AddTask assigns an engineer, given by id or by name, to the project.
func (s *DashboardService) AddTask(ctx context.Context, projectID int, t *models.Task) error {
	if _, err := s.store.GetProject(ctx, projectID); err != nil {
		return err
	}
	t.ProjectID = projectID
	if err := t.Validate(); err != nil {
		return err
	}
	if t.EngineerID <= 0 {
		e, err := s.store.FindEngineerByName(ctx, t.Engineer)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				return models.ValidationErrors{{Field: "engineer", Message: "Engineer not found"}}
			}
			return err
		}
		t.EngineerID = e.ID
	}
	if err := s.store.CreateTask(ctx, t); err != nil {
		if errors.Is(err, models.ErrConflict) {
			return fmt.Errorf("engineer already assigned to this project: %w", models.ErrConflict)
		}
		return err
	}

	s.touch(ctx, projectID)
	s.events.publish(EntityTask, ActionCreated, t.ID, projectID, t)
	return nil
}

func (s *DashboardService) UpdateTask(ctx context.Context, id int, patch models.HoursPatch) (*models.Task, error) {
	t, err := s.store.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.HoursPerWeek != nil {
		t.HoursPerWeek = *patch.HoursPerWeek
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if err := s.store.UpdateTask(ctx, t); err != nil {
		return nil, err
	}

	s.touch(ctx, t.ProjectID)
	s.events.publish(EntityTask, ActionUpdated, t.ID, t.ProjectID, t)
	return t, nil
}

func (s *DashboardService) DeleteTask(ctx context.Context, id int) error {
	t, err := s.store.DeleteTask(ctx, id)
	if err != nil {
		return err
	}

	s.touch(ctx, t.ProjectID)
	s.events.publish(EntityTask, ActionDeleted, t.ID, t.ProjectID, nil)
	return nil
}

func (s *DashboardService) ListJiraLinks(ctx context.Context, projectID int) ([]models.JiraIssueLink, error) {
	if _, err := s.store.GetProject(ctx, projectID); err != nil {
		return nil, err
	}
	return s.store.ListJiraLinks(ctx, projectID)
}

func (s *DashboardService) AddJiraLink(ctx context.Context, projectID int, key string) (*models.JiraIssueLink, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, models.ValidationErrors{{Field: "jiraKey", Message: "jiraKey is required"}}
	}
	if _, err := s.store.GetProject(ctx, projectID); err != nil {
		return nil, err
	}
	link := &models.JiraIssueLink{ProjectID: projectID, JiraKey: key}
	if err := s.store.CreateJiraLink(ctx, link); err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, fmt.Errorf("Jira issue %s is already linked to this project: %w", key, models.ErrConflict)
		}
		return nil, err
	}

	s.touch(ctx, projectID)
	s.events.publish(EntityJiraLink, ActionCreated, link.ID, projectID, link)
	return link, nil
}

func (s *DashboardService) DeleteJiraLink(ctx context.Context, projectID int, key string) error {
	if err := s.store.DeleteJiraLink(ctx, projectID, key); err != nil {
		return err
	}

	s.touch(ctx, projectID)
	s.events.publish(EntityJiraLink, ActionDeleted, 0, projectID, map[string]string{"jiraKey": key})
	return nil
}
