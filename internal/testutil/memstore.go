// Package testutil provides in-memory stand-ins for the dashboard's
// Postgres, Redis, NATS and ClickHouse dependencies.
package testutil

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"ops-dashboard/internal/models"
)

// MemStore keeps the dashboard collections in memory with the same
// cascade, spent and chaining rules as the Postgres repository.
type MemStore struct {
	mu        sync.Mutex
	nextID    int
	engineers map[int]*models.Engineer
	projects  map[int]*models.Project
	links     map[int][]models.JiraIssueLink
}

func NewMemStore() *MemStore {
	return &MemStore{
		engineers: map[int]*models.Engineer{},
		projects:  map[int]*models.Project{},
		links:     map[int][]models.JiraIssueLink{},
	}
}

func (s *MemStore) id() int {
	s.nextID++
	return s.nextID
}

func notFound(what string, id int) error {
	return fmt.Errorf("%s %d: %w", what, id, models.ErrNotFound)
}

func cloneEngineer(e *models.Engineer) *models.Engineer {
	c := *e
	c.NonProjectTime = append([]models.NonProjectTime{}, e.NonProjectTime...)
	return &c
}

func cloneProject(p *models.Project) *models.Project {
	c := *p
	c.Expenses = append([]models.Expense{}, p.Expenses...)
	c.Tasks = append([]models.Task{}, p.Tasks...)
	c.ChangeHistory = append([]models.ChangeHistory{}, p.ChangeHistory...)
	c.YearlyBudgets = append([]models.YearlyBudget{}, p.YearlyBudgets...)
	c.JiraKeys = append([]string{}, p.JiraKeys...)
	c.Milestones = make([]models.Milestone, len(p.Milestones))
	for i, m := range p.Milestones {
		m.Assignments = append([]models.Assignment{}, m.Assignments...)
		c.Milestones[i] = m
	}
	return &c
}

func (s *MemStore) ListEngineers(context.Context) ([]models.Engineer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Engineer, 0, len(s.engineers))
	for _, e := range s.engineers {
		out = append(out, *cloneEngineer(e))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MemStore) GetEngineer(_ context.Context, id int) (*models.Engineer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.engineers[id]
	if !ok {
		return nil, notFound("engineer", id)
	}
	return cloneEngineer(e), nil
}

func (s *MemStore) FindEngineerByName(_ context.Context, name string) (*models.Engineer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.engineers {
		if e.Name == name {
			return cloneEngineer(e), nil
		}
	}
	return nil, fmt.Errorf("engineer %q: %w", name, models.ErrNotFound)
}

func (s *MemStore) CreateEngineer(_ context.Context, e *models.Engineer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.engineers {
		if existing.Name == e.Name {
			return fmt.Errorf("engineers: %w", models.ErrConflict)
		}
	}
	e.ID = s.id()
	for i := range e.NonProjectTime {
		e.NonProjectTime[i].ID = s.id()
		e.NonProjectTime[i].EngineerID = e.ID
	}
	s.engineers[e.ID] = cloneEngineer(e)
	return nil
}

func (s *MemStore) UpdateEngineer(_ context.Context, e *models.Engineer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.engineers[e.ID]
	if !ok {
		return notFound("engineer", e.ID)
	}
	cur.Name, cur.Role, cur.TotalHours = e.Name, e.Role, e.TotalHours
	return nil
}

func (s *MemStore) DeleteEngineer(_ context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.engineers[id]; !ok {
		return notFound("engineer", id)
	}
	delete(s.engineers, id)
	for _, p := range s.projects {
		if p.OwnerID != nil && *p.OwnerID == id {
			p.OwnerID = nil
			p.Owner = models.UnassignedOwner
		}
		tasks := p.Tasks[:0]
		for _, t := range p.Tasks {
			if t.EngineerID != id {
				tasks = append(tasks, t)
			}
		}
		p.Tasks = tasks
		for i := range p.Milestones {
			kept := p.Milestones[i].Assignments[:0]
			for _, a := range p.Milestones[i].Assignments {
				if a.EngineerID != id {
					kept = append(kept, a)
				}
			}
			p.Milestones[i].Assignments = kept
		}
	}
	return nil
}

func (s *MemStore) GetNonProjectTime(_ context.Context, engineerID, id int) (*models.NonProjectTime, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.engineers[engineerID]
	if !ok {
		return nil, notFound("engineer", engineerID)
	}
	for _, n := range e.NonProjectTime {
		if n.ID == id {
			n := n
			return &n, nil
		}
	}
	return nil, notFound("non-project time", id)
}

func (s *MemStore) CreateNonProjectTime(_ context.Context, n *models.NonProjectTime) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.engineers[n.EngineerID]
	if !ok {
		return notFound("engineer", n.EngineerID)
	}
	n.ID = s.id()
	e.NonProjectTime = append(e.NonProjectTime, *n)
	return nil
}

func (s *MemStore) UpdateNonProjectTime(_ context.Context, n *models.NonProjectTime) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.engineers[n.EngineerID]
	if !ok {
		return notFound("engineer", n.EngineerID)
	}
	for i := range e.NonProjectTime {
		if e.NonProjectTime[i].ID == n.ID {
			e.NonProjectTime[i] = *n
			return nil
		}
	}
	return notFound("non-project time", n.ID)
}

func (s *MemStore) DeleteNonProjectTime(_ context.Context, engineerID, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.engineers[engineerID]
	if !ok {
		return notFound("engineer", engineerID)
	}
	for i := range e.NonProjectTime {
		if e.NonProjectTime[i].ID == id {
			e.NonProjectTime = append(e.NonProjectTime[:i], e.NonProjectTime[i+1:]...)
			return nil
		}
	}
	return notFound("non-project time", id)
}

// view resolves the owner name the way the repository's join does.
func (s *MemStore) view(p *models.Project) *models.Project {
	c := cloneProject(p)
	c.Owner = models.UnassignedOwner
	if c.OwnerID != nil {
		if e, ok := s.engineers[*c.OwnerID]; ok {
			c.Owner = e.Name
		}
	}
	return c
}

func (s *MemStore) ListProjects(context.Context) ([]models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Project, 0, len(s.projects))
	for _, p := range s.projects {
		out = append(out, *s.view(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemStore) GetProject(_ context.Context, id int) (*models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[id]
	if !ok {
		return nil, notFound("project", id)
	}
	return s.view(p), nil
}

func (s *MemStore) CreateProject(_ context.Context, p *models.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.id()
	p.CreatedAt = time.Now()
	p.YearlyBudgets = models.PositiveYearlyBudgets(p.YearlyBudgets)
	for i := range p.YearlyBudgets {
		p.YearlyBudgets[i].ID = s.id()
	}
	s.projects[p.ID] = cloneProject(p)
	return nil
}

func (s *MemStore) UpdateProject(_ context.Context, p *models.Project, changes []models.ChangeHistory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.projects[p.ID]
	if !ok {
		return notFound("project", p.ID)
	}
	next := cloneProject(p)
	next.Expenses, next.Tasks, next.Milestones = cur.Expenses, cur.Tasks, cur.Milestones
	next.ChangeHistory = cur.ChangeHistory
	next.JiraKeys = cur.JiraKeys
	s.projects[p.ID] = next
	s.history(next, changes)
	next.Milestones = models.ChainRanges(next.StartDate, next.Milestones)
	return nil
}

func (s *MemStore) history(p *models.Project, changes []models.ChangeHistory) {
	by := "System"
	if p.OwnerID != nil {
		if e, ok := s.engineers[*p.OwnerID]; ok {
			by = e.Name
		}
	}
	for _, c := range changes {
		c.ID = s.id()
		c.ProjectID = p.ID
		c.ChangedBy = by
		c.ChangedAt = time.Now()
		p.ChangeHistory = append([]models.ChangeHistory{c}, p.ChangeHistory...)
	}
}

func (s *MemStore) DeleteProject(_ context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.projects[id]; !ok {
		return notFound("project", id)
	}
	delete(s.projects, id)
	delete(s.links, id)
	return nil
}

func (s *MemStore) findExpense(id int) (*models.Project, int) {
	for _, p := range s.projects {
		for i := range p.Expenses {
			if p.Expenses[i].ID == id {
				return p, i
			}
		}
	}
	return nil, -1
}

func (s *MemStore) GetExpense(_ context.Context, id int) (*models.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, i := s.findExpense(id)
	if p == nil {
		return nil, notFound("expense", id)
	}
	e := p.Expenses[i]
	return &e, nil
}

func (s *MemStore) CreateExpense(_ context.Context, e *models.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[e.ProjectID]
	if !ok {
		return notFound("project", e.ProjectID)
	}
	e.ID = s.id()
	p.Expenses = append(p.Expenses, *e)
	p.Spent += e.Amount
	return nil
}

func (s *MemStore) UpdateExpense(_ context.Context, e *models.Expense, delta float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, i := s.findExpense(e.ID)
	if p == nil {
		return notFound("expense", e.ID)
	}
	p.Expenses[i] = *e
	p.Spent += delta
	return nil
}

func (s *MemStore) DeleteExpense(_ context.Context, id int) (*models.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, i := s.findExpense(id)
	if p == nil {
		return nil, notFound("expense", id)
	}
	e := p.Expenses[i]
	p.Expenses = append(p.Expenses[:i], p.Expenses[i+1:]...)
	p.Spent -= e.Amount
	return &e, nil
}

func (s *MemStore) findMilestone(id int) (*models.Project, int) {
	for _, p := range s.projects {
		for i := range p.Milestones {
			if p.Milestones[i].ID == id {
				return p, i
			}
		}
	}
	return nil, -1
}

func (s *MemStore) GetMilestone(_ context.Context, id int) (*models.Milestone, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, i := s.findMilestone(id)
	if p == nil {
		return nil, notFound("milestone", id)
	}
	m := p.Milestones[i]
	m.ProjectID = p.ID
	m.Assignments = append([]models.Assignment{}, m.Assignments...)
	return &m, nil
}

func (s *MemStore) CreateMilestone(_ context.Context, m *models.Milestone, changes []models.ChangeHistory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[m.ProjectID]
	if !ok {
		return notFound("project", m.ProjectID)
	}
	m.ID = s.id()
	if m.Assignments == nil {
		m.Assignments = []models.Assignment{}
	}
	p.Milestones = models.ChainRanges(p.StartDate, append(p.Milestones, *m))
	s.history(p, changes)
	return nil
}

func (s *MemStore) UpdateMilestone(_ context.Context, m *models.Milestone, changes []models.ChangeHistory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, i := s.findMilestone(m.ID)
	if p == nil {
		return notFound("milestone", m.ID)
	}
	assignments := p.Milestones[i].Assignments
	p.Milestones[i] = *m
	p.Milestones[i].Assignments = assignments
	p.Milestones = models.ChainRanges(p.StartDate, p.Milestones)
	s.history(p, changes)
	return nil
}

func (s *MemStore) DeleteMilestone(_ context.Context, m *models.Milestone, changes []models.ChangeHistory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, i := s.findMilestone(m.ID)
	if p == nil {
		return notFound("milestone", m.ID)
	}
	p.Milestones = append(p.Milestones[:i], p.Milestones[i+1:]...)
	p.Milestones = models.ChainRanges(p.StartDate, p.Milestones)
	s.history(p, changes)
	return nil
}

func (s *MemStore) findAssignment(id int) (*models.Milestone, int) {
	for _, p := range s.projects {
		for mi := range p.Milestones {
			m := &p.Milestones[mi]
			for i := range m.Assignments {
				if m.Assignments[i].ID == id {
					return m, i
				}
			}
		}
	}
	return nil, -1
}

func (s *MemStore) ListAssignments(_ context.Context, milestoneID int) ([]models.Assignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, i := s.findMilestone(milestoneID)
	if p == nil {
		return nil, notFound("milestone", milestoneID)
	}
	return append([]models.Assignment{}, p.Milestones[i].Assignments...), nil
}

func (s *MemStore) GetAssignment(_ context.Context, id int) (*models.Assignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, i := s.findAssignment(id)
	if m == nil {
		return nil, notFound("assignment", id)
	}
	a := m.Assignments[i]
	return &a, nil
}

func (s *MemStore) CreateAssignment(_ context.Context, _ int, a *models.Assignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, i := s.findMilestone(a.MilestoneID)
	if p == nil {
		return notFound("milestone", a.MilestoneID)
	}
	e, ok := s.engineers[a.EngineerID]
	if !ok {
		return notFound("engineer", a.EngineerID)
	}
	m := &p.Milestones[i]
	for _, existing := range m.Assignments {
		if existing.EngineerID == a.EngineerID {
			return fmt.Errorf("milestone_assignments: %w", models.ErrConflict)
		}
	}
	a.ID = s.id()
	a.Engineer = e.Name
	m.Assignments = append(m.Assignments, *a)
	return nil
}

func (s *MemStore) UpdateAssignment(_ context.Context, a *models.Assignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, i := s.findAssignment(a.ID)
	if m == nil {
		return notFound("assignment", a.ID)
	}
	m.Assignments[i].HoursPerWeek = a.HoursPerWeek
	return nil
}

func (s *MemStore) DeleteAssignment(_ context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, i := s.findAssignment(id)
	if m == nil {
		return notFound("assignment", id)
	}
	m.Assignments = append(m.Assignments[:i], m.Assignments[i+1:]...)
	return nil
}

func (s *MemStore) findTask(id int) (*models.Project, int) {
	for _, p := range s.projects {
		for i := range p.Tasks {
			if p.Tasks[i].ID == id {
				return p, i
			}
		}
	}
	return nil, -1
}

func (s *MemStore) GetTask(_ context.Context, id int) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, i := s.findTask(id)
	if p == nil {
		return nil, notFound("task", id)
	}
	t := p.Tasks[i]
	return &t, nil
}

func (s *MemStore) CreateTask(_ context.Context, t *models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[t.ProjectID]
	if !ok {
		return notFound("project", t.ProjectID)
	}
	e, ok := s.engineers[t.EngineerID]
	if !ok {
		return notFound("engineer", t.EngineerID)
	}
	for _, existing := range p.Tasks {
		if existing.EngineerID == t.EngineerID {
			return fmt.Errorf("tasks: %w", models.ErrConflict)
		}
	}
	t.ID = s.id()
	t.Engineer = e.Name
	p.Tasks = append(p.Tasks, *t)
	return nil
}

func (s *MemStore) UpdateTask(_ context.Context, t *models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, i := s.findTask(t.ID)
	if p == nil {
		return notFound("task", t.ID)
	}
	p.Tasks[i].HoursPerWeek = t.HoursPerWeek
	return nil
}

func (s *MemStore) DeleteTask(_ context.Context, id int) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, i := s.findTask(id)
	if p == nil {
		return nil, notFound("task", id)
	}
	t := p.Tasks[i]
	p.Tasks = append(p.Tasks[:i], p.Tasks[i+1:]...)
	return &t, nil
}

func (s *MemStore) ListJiraLinks(_ context.Context, projectID int) ([]models.JiraIssueLink, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.JiraIssueLink{}, s.links[projectID]...), nil
}

func (s *MemStore) CreateJiraLink(_ context.Context, l *models.JiraIssueLink) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[l.ProjectID]
	if !ok {
		return notFound("project", l.ProjectID)
	}
	for _, existing := range s.links[l.ProjectID] {
		if existing.JiraKey == l.JiraKey {
			return fmt.Errorf("project_jira_issues: %w", models.ErrConflict)
		}
	}
	l.ID = s.id()
	l.CreatedAt = time.Now()
	s.links[l.ProjectID] = append(s.links[l.ProjectID], *l)
	p.JiraKeys = append(p.JiraKeys, l.JiraKey)
	return nil
}

func (s *MemStore) DeleteJiraLink(_ context.Context, projectID int, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	links := s.links[projectID]
	for i := range links {
		if links[i].JiraKey == key {
			s.links[projectID] = append(links[:i], links[i+1:]...)
			p := s.projects[projectID]
			keys := p.JiraKeys[:0]
			for _, k := range p.JiraKeys {
				if k != key {
					keys = append(keys, k)
				}
			}
			p.JiraKeys = keys
			return nil
		}
	}
	return fmt.Errorf("jira link %s: %w", key, models.ErrNotFound)
}
