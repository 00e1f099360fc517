// Package seed loads the sample dataset into an empty dashboard.
package seed

import (
	"context"
	_ "embed"
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"ops-dashboard/internal/models"
)

//go:embed fixtures.yaml
var defaultFixtures []byte

type Fixtures struct {
	Engineers []EngineerFixture `yaml:"engineers"`
	Projects  []ProjectFixture  `yaml:"projects"`
}

type EngineerFixture struct {
	Name           string `yaml:"name"`
	Role           string `yaml:"role"`
	TotalHours     int    `yaml:"totalHours"`
	NonProjectTime []struct {
		Type  string `yaml:"type"`
		Hours int    `yaml:"hours"`
	} `yaml:"nonProjectTime"`
}

type ProjectFixture struct {
	Name                  string          `yaml:"name"`
	Owner                 string          `yaml:"owner"`
	Priority              models.Priority `yaml:"priority"`
	Status                models.Status   `yaml:"status"`
	Progress              int             `yaml:"progress"`
	StartDate             models.Date     `yaml:"startDate"`
	EndDate               models.Date     `yaml:"endDate"`
	EstimatedHoursPerWeek int             `yaml:"estimatedHoursPerWeek"`
	Budget                float64         `yaml:"budget"`
	Spent                 float64         `yaml:"spent"`
	Notes                 string          `yaml:"notes"`
	Expenses              []struct {
		Date        models.Date `yaml:"date"`
		Description string      `yaml:"description"`
		Amount      float64     `yaml:"amount"`
		Category    string      `yaml:"category"`
	} `yaml:"expenses"`
	Tasks []struct {
		Engineer     string `yaml:"engineer"`
		HoursPerWeek int    `yaml:"hoursPerWeek"`
	} `yaml:"tasks"`
	Milestones []struct {
		Name        string                 `yaml:"name"`
		PlannedDate models.Date            `yaml:"plannedDate"`
		ActualDate  models.Date            `yaml:"actualDate"`
		Status      models.MilestoneStatus `yaml:"status"`
	} `yaml:"milestones"`
}

// Default returns the embedded sample dataset.
func Default() (*Fixtures, error) {
	return Parse(defaultFixtures)
}

func Parse(data []byte) (*Fixtures, error) {
	var f Fixtures
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("error parsing fixtures: %w", err)
	}
	return &f, nil
}

// Target is the write surface the loader drives; the dashboard service
// implements it, so seeded data goes through the normal validation.
type Target interface {
	ListEngineers(ctx context.Context) ([]models.Engineer, error)
	CreateEngineer(ctx context.Context, e *models.Engineer) error
	CreateProject(ctx context.Context, p *models.Project) error
	AddExpense(ctx context.Context, projectID int, e *models.Expense) error
	AddTask(ctx context.Context, projectID int, t *models.Task) error
	AddMilestone(ctx context.Context, projectID int, m *models.Milestone) error
}

// Load writes the fixtures unless engineers already exist. It reports
// whether anything was written.
func Load(ctx context.Context, target Target, f *Fixtures, logger *zap.Logger) (bool, error) {
	existing, err := target.ListEngineers(ctx)
	if err != nil {
		return false, err
	}
	if len(existing) > 0 {
		logger.Info("database already seeded", zap.Int("engineers", len(existing)))
		return false, nil
	}

	for _, ef := range f.Engineers {
		e := &models.Engineer{Name: ef.Name, Role: ef.Role, TotalHours: ef.TotalHours}
		for _, npt := range ef.NonProjectTime {
			e.NonProjectTime = append(e.NonProjectTime, models.NonProjectTime{Type: npt.Type, Hours: npt.Hours})
		}
		if err := target.CreateEngineer(ctx, e); err != nil {
			return false, fmt.Errorf("engineer %q: %w", ef.Name, err)
		}
	}

	for _, pf := range f.Projects {
		if err := loadProject(ctx, target, pf); err != nil {
			return false, fmt.Errorf("project %q: %w", pf.Name, err)
		}
	}

	logger.Info("database seeded",
		zap.Int("engineers", len(f.Engineers)),
		zap.Int("projects", len(f.Projects)))
	return true, nil
}

// loadProject creates the project with the part of spent not covered by its
// expenses; adding the expenses brings spent to the fixture value.
func loadProject(ctx context.Context, target Target, pf ProjectFixture) error {
	spent := pf.Spent
	for _, e := range pf.Expenses {
		spent -= e.Amount
	}
	if spent < 0 {
		spent = 0
	}

	p := &models.Project{
		Name:                  pf.Name,
		Owner:                 pf.Owner,
		Priority:              pf.Priority,
		Status:                pf.Status,
		Progress:              pf.Progress,
		StartDate:             pf.StartDate,
		EndDate:               pf.EndDate,
		EstimatedHoursPerWeek: pf.EstimatedHoursPerWeek,
		Budget:                pf.Budget,
		Spent:                 spent,
		Notes:                 pf.Notes,
	}
	if err := target.CreateProject(ctx, p); err != nil {
		return err
	}

	for _, ef := range pf.Expenses {
		e := &models.Expense{Date: ef.Date, Description: ef.Description, Amount: ef.Amount, Category: ef.Category}
		if err := target.AddExpense(ctx, p.ID, e); err != nil {
			return fmt.Errorf("expense %q: %w", ef.Description, err)
		}
	}
	for _, tf := range pf.Tasks {
		t := &models.Task{Engineer: tf.Engineer, HoursPerWeek: tf.HoursPerWeek}
		if err := target.AddTask(ctx, p.ID, t); err != nil {
			return fmt.Errorf("task for %q: %w", tf.Engineer, err)
		}
	}
	for _, mf := range pf.Milestones {
		m := &models.Milestone{Name: mf.Name, PlannedDate: mf.PlannedDate, ActualDate: mf.ActualDate, Status: mf.Status}
		if err := target.AddMilestone(ctx, p.ID, m); err != nil {
			return fmt.Errorf("milestone %q: %w", mf.Name, err)
		}
	}
	return nil
}
