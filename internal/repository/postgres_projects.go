package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"ops-dashboard/internal/models"
)

const projectSelect = `
	SELECT p.id, p.name, p.owner_id, COALESCE(e.name, ''), p.priority, p.status, p.progress,
	       p.start_date, p.end_date, p.estimated_hours_per_week, p.budget, p.spent,
	       p.notes, p.location, p.jira_key, p.created_at
	FROM projects p
	LEFT JOIN engineers e ON e.id = p.owner_id`

func scanProject(row pgx.Row) (models.Project, error) {
	var (
		p                          models.Project
		priority, status, location string
		start, end                 *time.Time
	)
	err := row.Scan(&p.ID, &p.Name, &p.OwnerID, &p.Owner, &priority, &status, &p.Progress,
		&start, &end, &p.EstimatedHoursPerWeek, &p.Budget, &p.Spent,
		&p.Notes, &location, &p.JiraKey, &p.CreatedAt)
	if err != nil {
		return p, err
	}
	if p.Owner == "" {
		p.Owner = models.UnassignedOwner
	}
	p.Priority = models.Priority(priority)
	p.Status = models.Status(status)
	p.Location = models.Location(location)
	p.StartDate = models.DateFromPtr(start)
	p.EndDate = models.DateFromPtr(end)
	return p, nil
}

// ListProjects loads every project with its nested records.
func (r *PostgresRepository) ListProjects(ctx context.Context) ([]models.Project, error) {
	defer observe("list_projects", time.Now())

	rows, err := r.pool.Query(ctx, projectSelect+` ORDER BY p.id`)
	if err != nil {
		return nil, mapError("list projects", err)
	}
	defer rows.Close()

	projects := []models.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, mapError("list projects", err)
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("list projects", err)
	}

	if err := loadProjectGraph(ctx, r.pool, projects); err != nil {
		return nil, err
	}
	return projects, nil
}

func (r *PostgresRepository) GetProject(ctx context.Context, id int) (*models.Project, error) {
	defer observe("get_project", time.Now())
	return getProject(ctx, r.pool, id)
}

func getProject(ctx context.Context, q querier, id int) (*models.Project, error) {
	p, err := scanProject(q.QueryRow(ctx, projectSelect+` WHERE p.id = $1`, id))
	if err != nil {
		return nil, mapError("get project", err)
	}
	projects := []models.Project{p}
	if err := loadProjectGraph(ctx, q, projects); err != nil {
		return nil, err
	}
	return &projects[0], nil
}

func (r *PostgresRepository) CreateProject(ctx context.Context, p *models.Project) error {
	return r.inTx(ctx, "create_project", func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO projects (name, owner_id, priority, status, progress, start_date, end_date,
			                      estimated_hours_per_week, budget, spent, notes, location, jira_key)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
			RETURNING id, created_at`,
			p.Name, p.OwnerID, string(p.Priority), string(p.Status), p.Progress,
			p.StartDate.Ptr(), p.EndDate.Ptr(), p.EstimatedHoursPerWeek, p.Budget, p.Spent,
			p.Notes, string(p.Location), p.JiraKey,
		).Scan(&p.ID, &p.CreatedAt)
		if err != nil {
			return err
		}
		return replaceYearlyBudgets(ctx, tx, p)
	})
}

// UpdateProject writes the project row, replaces its yearly budgets, records
// the given history and re-chains milestone ranges to the new start date.
func (r *PostgresRepository) UpdateProject(ctx context.Context, p *models.Project, changes []models.ChangeHistory) error {
	return r.inTx(ctx, "update_project", func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE projects
			SET name = $1, owner_id = $2, priority = $3, status = $4, progress = $5,
			    start_date = $6, end_date = $7, estimated_hours_per_week = $8,
			    budget = $9, spent = $10, notes = $11, location = $12, jira_key = $13
			WHERE id = $14`,
			p.Name, p.OwnerID, string(p.Priority), string(p.Status), p.Progress,
			p.StartDate.Ptr(), p.EndDate.Ptr(), p.EstimatedHoursPerWeek,
			p.Budget, p.Spent, p.Notes, string(p.Location), p.JiraKey, p.ID)
		if err != nil {
			return err
		}
		if err := expectRow(tag); err != nil {
			return err
		}
		if err := replaceYearlyBudgets(ctx, tx, p); err != nil {
			return err
		}
		if err := insertHistory(ctx, tx, p.ID, changes); err != nil {
			return err
		}
		return rechainMilestones(ctx, tx, p.ID)
	})
}

func (r *PostgresRepository) DeleteProject(ctx context.Context, id int) error {
	return r.inTx(ctx, "delete_project", func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
		if err != nil {
			return err
		}
		return expectRow(tag)
	})
}

func replaceYearlyBudgets(ctx context.Context, tx pgx.Tx, p *models.Project) error {
	if _, err := tx.Exec(ctx, `DELETE FROM project_yearly_budgets WHERE project_id = $1`, p.ID); err != nil {
		return err
	}
	p.YearlyBudgets = models.PositiveYearlyBudgets(p.YearlyBudgets)
	for i := range p.YearlyBudgets {
		yb := &p.YearlyBudgets[i]
		err := tx.QueryRow(ctx, `
			INSERT INTO project_yearly_budgets (project_id, year, amount)
			VALUES ($1, $2, $3)
			RETURNING id`,
			p.ID, yb.Year, yb.Amount,
		).Scan(&yb.ID)
		if err != nil {
			return err
		}
	}
	return nil
}

// loadProjectGraph fills the nested collections of projects with one query
// per collection.
func loadProjectGraph(ctx context.Context, q querier, projects []models.Project) error {
	if len(projects) == 0 {
		return nil
	}
	ids := make([]int, len(projects))
	index := make(map[int]*models.Project, len(projects))
	for i := range projects {
		p := &projects[i]
		ids[i] = p.ID
		index[p.ID] = p
		p.JiraKeys = []string{}
		p.Expenses = []models.Expense{}
		p.Milestones = []models.Milestone{}
		p.Tasks = []models.Task{}
		p.ChangeHistory = []models.ChangeHistory{}
		p.YearlyBudgets = []models.YearlyBudget{}
	}

	loaders := []func(context.Context, querier, []int, map[int]*models.Project) error{
		loadYearlyBudgets,
		loadExpenses,
		loadMilestones,
		loadTasks,
		loadHistory,
		loadJiraKeys,
	}
	for _, load := range loaders {
		if err := load(ctx, q, ids, index); err != nil {
			return err
		}
	}
	return nil
}

func loadYearlyBudgets(ctx context.Context, q querier, ids []int, index map[int]*models.Project) error {
	rows, err := q.Query(ctx, `
		SELECT project_id, id, year, amount
		FROM project_yearly_budgets
		WHERE project_id = ANY($1)
		ORDER BY year`, ids)
	if err != nil {
		return mapError("load yearly budgets", err)
	}
	defer rows.Close()

	for rows.Next() {
		var projectID int
		var yb models.YearlyBudget
		if err := rows.Scan(&projectID, &yb.ID, &yb.Year, &yb.Amount); err != nil {
			return mapError("load yearly budgets", err)
		}
		index[projectID].YearlyBudgets = append(index[projectID].YearlyBudgets, yb)
	}
	return mapError("load yearly budgets", rows.Err())
}

func loadExpenses(ctx context.Context, q querier, ids []int, index map[int]*models.Project) error {
	rows, err := q.Query(ctx, expenseSelect+`
		WHERE project_id = ANY($1)
		ORDER BY date DESC, id DESC`, ids)
	if err != nil {
		return mapError("load expenses", err)
	}
	defer rows.Close()

	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return mapError("load expenses", err)
		}
		index[e.ProjectID].Expenses = append(index[e.ProjectID].Expenses, e)
	}
	return mapError("load expenses", rows.Err())
}

func loadMilestones(ctx context.Context, q querier, ids []int, index map[int]*models.Project) error {
	milestones, err := queryMilestones(ctx, q, `WHERE m.project_id = ANY($1)`, ids)
	if err != nil {
		return err
	}
	for _, m := range milestones {
		index[m.ProjectID].Milestones = append(index[m.ProjectID].Milestones, m)
	}
	return nil
}

func loadTasks(ctx context.Context, q querier, ids []int, index map[int]*models.Project) error {
	rows, err := q.Query(ctx, taskSelect+`
		WHERE t.project_id = ANY($1)
		ORDER BY t.id`, ids)
	if err != nil {
		return mapError("load tasks", err)
	}
	defer rows.Close()

	for rows.Next() {
		var t models.Task
		if err := rows.Scan(&t.ID, &t.ProjectID, &t.EngineerID, &t.Engineer, &t.HoursPerWeek); err != nil {
			return mapError("load tasks", err)
		}
		index[t.ProjectID].Tasks = append(index[t.ProjectID].Tasks, t)
	}
	return mapError("load tasks", rows.Err())
}

func loadHistory(ctx context.Context, q querier, ids []int, index map[int]*models.Project) error {
	rows, err := q.Query(ctx, `
		SELECT id, project_id, field, old_value, new_value, changed_at, changed_by
		FROM change_history
		WHERE project_id = ANY($1)
		ORDER BY changed_at DESC, id DESC`, ids)
	if err != nil {
		return mapError("load history", err)
	}
	defer rows.Close()

	for rows.Next() {
		var h models.ChangeHistory
		if err := rows.Scan(&h.ID, &h.ProjectID, &h.Field, &h.OldValue, &h.NewValue, &h.ChangedAt, &h.ChangedBy); err != nil {
			return mapError("load history", err)
		}
		index[h.ProjectID].ChangeHistory = append(index[h.ProjectID].ChangeHistory, h)
	}
	return mapError("load history", rows.Err())
}

func loadJiraKeys(ctx context.Context, q querier, ids []int, index map[int]*models.Project) error {
	rows, err := q.Query(ctx, `
		SELECT project_id, jira_key
		FROM project_jira_issues
		WHERE project_id = ANY($1)
		ORDER BY created_at, id`, ids)
	if err != nil {
		return mapError("load jira keys", err)
	}
	defer rows.Close()

	for rows.Next() {
		var projectID int
		var key string
		if err := rows.Scan(&projectID, &key); err != nil {
			return mapError("load jira keys", err)
		}
		index[projectID].JiraKeys = append(index[projectID].JiraKeys, key)
	}
	return mapError("load jira keys", rows.Err())
}
