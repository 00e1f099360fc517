package service

import (
	"context"

	"ops-dashboard/internal/models"
)

// Store is the relational persistence the dashboard needs.
type Store interface {
	ListEngineers(ctx context.Context) ([]models.Engineer, error)
	GetEngineer(ctx context.Context, id int) (*models.Engineer, error)
	FindEngineerByName(ctx context.Context, name string) (*models.Engineer, error)
	CreateEngineer(ctx context.Context, e *models.Engineer) error
	UpdateEngineer(ctx context.Context, e *models.Engineer) error
	DeleteEngineer(ctx context.Context, id int) error

	GetNonProjectTime(ctx context.Context, engineerID, id int) (*models.NonProjectTime, error)
	CreateNonProjectTime(ctx context.Context, n *models.NonProjectTime) error
	UpdateNonProjectTime(ctx context.Context, n *models.NonProjectTime) error
	DeleteNonProjectTime(ctx context.Context, engineerID, id int) error

	ListProjects(ctx context.Context) ([]models.Project, error)
	GetProject(ctx context.Context, id int) (*models.Project, error)
	CreateProject(ctx context.Context, p *models.Project) error
	UpdateProject(ctx context.Context, p *models.Project, changes []models.ChangeHistory) error
	DeleteProject(ctx context.Context, id int) error

	GetExpense(ctx context.Context, id int) (*models.Expense, error)
	CreateExpense(ctx context.Context, e *models.Expense) error
	UpdateExpense(ctx context.Context, e *models.Expense, delta float64) error
	DeleteExpense(ctx context.Context, id int) (*models.Expense, error)

	GetMilestone(ctx context.Context, id int) (*models.Milestone, error)
	CreateMilestone(ctx context.Context, m *models.Milestone, changes []models.ChangeHistory) error
	UpdateMilestone(ctx context.Context, m *models.Milestone, changes []models.ChangeHistory) error
	DeleteMilestone(ctx context.Context, m *models.Milestone, changes []models.ChangeHistory) error

	ListAssignments(ctx context.Context, milestoneID int) ([]models.Assignment, error)
	GetAssignment(ctx context.Context, id int) (*models.Assignment, error)
	CreateAssignment(ctx context.Context, projectID int, a *models.Assignment) error
	UpdateAssignment(ctx context.Context, a *models.Assignment) error
	DeleteAssignment(ctx context.Context, id int) error

	GetTask(ctx context.Context, id int) (*models.Task, error)
	CreateTask(ctx context.Context, t *models.Task) error
	UpdateTask(ctx context.Context, t *models.Task) error
	DeleteTask(ctx context.Context, id int) (*models.Task, error)

	ListJiraLinks(ctx context.Context, projectID int) ([]models.JiraIssueLink, error)
	CreateJiraLink(ctx context.Context, l *models.JiraIssueLink) error
	DeleteJiraLink(ctx context.Context, projectID int, key string) error
}

// Cache holds the data version, memoized aggregations and cached projects.
type Cache interface {
	DataVersion(ctx context.Context) (int64, error)
	BumpVersion(ctx context.Context, projectIDs ...int) (int64, error)
	GetMemo(ctx context.Context, key string, dst interface{}) (bool, error)
	SetMemo(ctx context.Context, key string, value interface{}) error
	GetProject(ctx context.Context, id int) (*models.Project, error)
	SetProject(ctx context.Context, p *models.Project) error
}

// Publisher is satisfied by *nats.Conn.
type Publisher interface {
	Publish(subject string, data []byte) error
}

type EventLog interface {
	LogEvent(ctx context.Context, e *models.ChangeEvent) error
	ListEvents(ctx context.Context, projectID, limit int) ([]models.ChangeEvent, error)
}
