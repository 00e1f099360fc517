package seed

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"ops-dashboard/internal/models"
)

type recorder struct {
	engineers  []models.Engineer
	projects   []models.Project
	expenses   map[int][]models.Expense
	tasks      map[int][]models.Task
	milestones map[int][]models.Milestone
}

func newRecorder() *recorder {
	return &recorder{
		expenses:   map[int][]models.Expense{},
		tasks:      map[int][]models.Task{},
		milestones: map[int][]models.Milestone{},
	}
}

func (r *recorder) ListEngineers(context.Context) ([]models.Engineer, error) {
	return r.engineers, nil
}

func (r *recorder) CreateEngineer(_ context.Context, e *models.Engineer) error {
	e.ID = len(r.engineers) + 1
	r.engineers = append(r.engineers, *e)
	return nil
}

func (r *recorder) CreateProject(_ context.Context, p *models.Project) error {
	p.ID = len(r.projects) + 1
	r.projects = append(r.projects, *p)
	return nil
}

func (r *recorder) AddExpense(_ context.Context, projectID int, e *models.Expense) error {
	r.expenses[projectID] = append(r.expenses[projectID], *e)
	return nil
}

func (r *recorder) AddTask(_ context.Context, projectID int, t *models.Task) error {
	r.tasks[projectID] = append(r.tasks[projectID], *t)
	return nil
}

func (r *recorder) AddMilestone(_ context.Context, projectID int, m *models.Milestone) error {
	r.milestones[projectID] = append(r.milestones[projectID], *m)
	return nil
}

func TestDefaultFixtures(t *testing.T) {
	f, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	if len(f.Engineers) != 4 || len(f.Projects) != 4 {
		t.Fatalf("got %d engineers, %d projects", len(f.Engineers), len(f.Projects))
	}

	p := f.Projects[0]
	if p.StartDate.String() != "2024-11-01" || p.EndDate.String() != "2025-06-30" {
		t.Errorf("dates = %s..%s", p.StartDate, p.EndDate)
	}
	if p.Milestones[0].ActualDate.String() != "2024-12-10" {
		t.Errorf("actual date = %s", p.Milestones[0].ActualDate)
	}
	if !p.Milestones[1].ActualDate.IsZero() {
		t.Errorf("pending milestone has actual date %s", p.Milestones[1].ActualDate)
	}
}

func TestLoad(t *testing.T) {
	f, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	r := newRecorder()

	wrote, err := Load(context.Background(), r, f, zap.NewNop())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !wrote {
		t.Fatal("expected the empty target to be seeded")
	}
	if len(r.engineers) != 4 || len(r.projects) != 4 {
		t.Fatalf("seeded %d engineers, %d projects", len(r.engineers), len(r.projects))
	}
	if got := r.engineers[0].NonProjectHours(); got != 11 {
		t.Errorf("Mike's non-project hours = %d, want 11", got)
	}

	// Spent is carried by the expenses.
	battery := r.projects[0]
	if battery.Spent != 0 {
		t.Errorf("initial spent = %v, want 0", battery.Spent)
	}
	var total float64
	for _, e := range r.expenses[battery.ID] {
		total += e.Amount
	}
	if total != 81250 {
		t.Errorf("expense total = %v, want 81250", total)
	}
	if len(r.tasks[battery.ID]) != 2 || len(r.milestones[battery.ID]) != 3 {
		t.Errorf("tasks %d, milestones %d", len(r.tasks[battery.ID]), len(r.milestones[battery.ID]))
	}

	wrote, err = Load(context.Background(), r, f, zap.NewNop())
	if err != nil {
		t.Fatalf("second Load: %v", err)
	}
	if wrote {
		t.Error("expected an already seeded target to be left alone")
	}
}
