package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"ops-dashboard/internal/models"
)

const expenseSelect = `
	SELECT id, project_id, date, description, amount, category, created_at
	FROM expenses`

func scanExpense(row pgx.Row) (models.Expense, error) {
	var e models.Expense
	var date time.Time
	err := row.Scan(&e.ID, &e.ProjectID, &date, &e.Description, &e.Amount, &e.Category, &e.CreatedAt)
	e.Date = models.DateOf(date)
	return e, err
}

func (r *PostgresRepository) GetExpense(ctx context.Context, id int) (*models.Expense, error) {
	e, err := scanExpense(r.pool.QueryRow(ctx, expenseSelect+` WHERE id = $1`, id))
	if err != nil {
		return nil, mapError("get expense", err)
	}
	return &e, nil
}

// CreateExpense inserts the expense and adds its amount to the project's spent.
func (r *PostgresRepository) CreateExpense(ctx context.Context, e *models.Expense) error {
	return r.inTx(ctx, "create_expense", func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO expenses (project_id, date, description, amount, category)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, created_at`,
			e.ProjectID, e.Date.Time, e.Description, e.Amount, e.Category,
		).Scan(&e.ID, &e.CreatedAt)
		if err != nil {
			return err
		}
		return adjustSpent(ctx, tx, e.ProjectID, e.Amount)
	})
}

// UpdateExpense writes the expense and moves the project's spent by delta.
func (r *PostgresRepository) UpdateExpense(ctx context.Context, e *models.Expense, delta float64) error {
	return r.inTx(ctx, "update_expense", func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE expenses
			SET date = $1, description = $2, amount = $3, category = $4
			WHERE id = $5`,
			e.Date.Time, e.Description, e.Amount, e.Category, e.ID)
		if err != nil {
			return err
		}
		if err := expectRow(tag); err != nil {
			return err
		}
		return adjustSpent(ctx, tx, e.ProjectID, delta)
	})
}

// DeleteExpense removes the expense and subtracts its amount from spent.
func (r *PostgresRepository) DeleteExpense(ctx context.Context, id int) (*models.Expense, error) {
	var deleted models.Expense
	err := r.inTx(ctx, "delete_expense", func(tx pgx.Tx) error {
		var err error
		deleted, err = scanExpense(tx.QueryRow(ctx, `
			DELETE FROM expenses WHERE id = $1
			RETURNING id, project_id, date, description, amount, category, created_at`, id))
		if err != nil {
			return err
		}
		return adjustSpent(ctx, tx, deleted.ProjectID, -deleted.Amount)
	})
	if err != nil {
		return nil, err
	}
	return &deleted, nil
}

func adjustSpent(ctx context.Context, tx pgx.Tx, projectID int, delta float64) error {
	if delta == 0 {
		return nil
	}
	tag, err := tx.Exec(ctx, `UPDATE projects SET spent = spent + $1 WHERE id = $2`, delta, projectID)
	if err != nil {
		return err
	}
	return expectRow(tag)
}

const taskSelect = `
	SELECT t.id, t.project_id, t.engineer_id, e.name, t.hours_per_week
	FROM tasks t
	JOIN engineers e ON e.id = t.engineer_id`

func (r *PostgresRepository) GetTask(ctx context.Context, id int) (*models.Task, error) {
	var t models.Task
	err := r.pool.QueryRow(ctx, taskSelect+` WHERE t.id = $1`, id).
		Scan(&t.ID, &t.ProjectID, &t.EngineerID, &t.Engineer, &t.HoursPerWeek)
	if err != nil {
		return nil, mapError("get task", err)
	}
	return &t, nil
}

// CreateTask fails with ErrConflict when the engineer is already on the project.
func (r *PostgresRepository) CreateTask(ctx context.Context, t *models.Task) error {
	return r.inTx(ctx, "create_task", func(tx pgx.Tx) error {
		return tx.QueryRow(ctx, `
			WITH inserted AS (
				INSERT INTO tasks (project_id, engineer_id, hours_per_week)
				VALUES ($1, $2, $3)
				RETURNING id, engineer_id
			)
			SELECT i.id, e.name FROM inserted i JOIN engineers e ON e.id = i.engineer_id`,
			t.ProjectID, t.EngineerID, t.HoursPerWeek,
		).Scan(&t.ID, &t.Engineer)
	})
}

func (r *PostgresRepository) UpdateTask(ctx context.Context, t *models.Task) error {
	return r.inTx(ctx, "update_task", func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `UPDATE tasks SET hours_per_week = $1 WHERE id = $2`, t.HoursPerWeek, t.ID)
		if err != nil {
			return err
		}
		return expectRow(tag)
	})
}

func (r *PostgresRepository) DeleteTask(ctx context.Context, id int) (*models.Task, error) {
	t, err := r.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}
	err = r.inTx(ctx, "delete_task", func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
		if err != nil {
			return err
		}
		return expectRow(tag)
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *PostgresRepository) ListJiraLinks(ctx context.Context, projectID int) ([]models.JiraIssueLink, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, project_id, jira_key, created_at
		FROM project_jira_issues
		WHERE project_id = $1
		ORDER BY created_at, id`, projectID)
	if err != nil {
		return nil, mapError("list jira links", err)
	}
	defer rows.Close()

	links := []models.JiraIssueLink{}
	for rows.Next() {
		var l models.JiraIssueLink
		if err := rows.Scan(&l.ID, &l.ProjectID, &l.JiraKey, &l.CreatedAt); err != nil {
			return nil, mapError("list jira links", err)
		}
		links = append(links, l)
	}
	return links, mapError("list jira links", rows.Err())
}

// CreateJiraLink fails with ErrConflict when the key is already linked.
func (r *PostgresRepository) CreateJiraLink(ctx context.Context, l *models.JiraIssueLink) error {
	return r.inTx(ctx, "create_jira_link", func(tx pgx.Tx) error {
		return tx.QueryRow(ctx, `
			INSERT INTO project_jira_issues (project_id, jira_key)
			VALUES ($1, $2)
			RETURNING id, created_at`,
			l.ProjectID, l.JiraKey,
		).Scan(&l.ID, &l.CreatedAt)
	})
}

func (r *PostgresRepository) DeleteJiraLink(ctx context.Context, projectID int, key string) error {
	return r.inTx(ctx, "delete_jira_link", func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			DELETE FROM project_jira_issues
			WHERE project_id = $1 AND jira_key = $2`, projectID, key)
		if err != nil {
			return err
		}
		return expectRow(tag)
	})
}
