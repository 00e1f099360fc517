package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"ops-dashboard/internal/models"
)

const milestoneSelect = `
	SELECT m.id, m.project_id, m.name, m.planned_date, m.actual_date, m.status,
	       m.start_date, m.end_date, m.hours_per_week
	FROM milestones m `

// queryMilestones loads milestones matching where, with their assignments.
func queryMilestones(ctx context.Context, q querier, where string, args ...any) ([]models.Milestone, error) {
	rows, err := q.Query(ctx, milestoneSelect+where+` ORDER BY m.planned_date, m.id`, args...)
	if err != nil {
		return nil, mapError("load milestones", err)
	}
	defer rows.Close()

	milestones := []models.Milestone{}
	for rows.Next() {
		var (
			m                  models.Milestone
			status             string
			planned            time.Time
			actual, start, end *time.Time
		)
		err := rows.Scan(&m.ID, &m.ProjectID, &m.Name, &planned, &actual, &status, &start, &end, &m.HoursPerWeek)
		if err != nil {
			return nil, mapError("load milestones", err)
		}
		m.Status = models.MilestoneStatus(status)
		m.PlannedDate = models.DateOf(planned)
		m.ActualDate = models.DateFromPtr(actual)
		m.StartDate = models.DateFromPtr(start)
		m.EndDate = models.DateFromPtr(end)
		m.Assignments = []models.Assignment{}
		milestones = append(milestones, m)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("load milestones", err)
	}
	if len(milestones) == 0 {
		return milestones, nil
	}

	ids := make([]int, len(milestones))
	index := make(map[int]*models.Milestone, len(milestones))
	for i := range milestones {
		ids[i] = milestones[i].ID
		index[milestones[i].ID] = &milestones[i]
	}
	assignments, err := queryAssignments(ctx, q, `WHERE a.milestone_id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	for _, a := range assignments {
		index[a.MilestoneID].Assignments = append(index[a.MilestoneID].Assignments, a)
	}
	return milestones, nil
}

func (r *PostgresRepository) GetMilestone(ctx context.Context, id int) (*models.Milestone, error) {
	defer observe("get_milestone", time.Now())

	milestones, err := queryMilestones(ctx, r.pool, `WHERE m.id = $1`, id)
	if err != nil {
		return nil, err
	}
	if len(milestones) == 0 {
		return nil, fmt.Errorf("get milestone: %w", models.ErrNotFound)
	}
	return &milestones[0], nil
}

func (r *PostgresRepository) CreateMilestone(ctx context.Context, m *models.Milestone, changes []models.ChangeHistory) error {
	return r.inTx(ctx, "create_milestone", func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO milestones (project_id, name, planned_date, actual_date, status,
			                        start_date, end_date, hours_per_week)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id`,
			m.ProjectID, m.Name, m.PlannedDate.Time, m.ActualDate.Ptr(), string(m.Status),
			m.StartDate.Ptr(), m.EndDate.Ptr(), m.HoursPerWeek,
		).Scan(&m.ID)
		if err != nil {
			return err
		}
		if err := insertHistory(ctx, tx, m.ProjectID, changes); err != nil {
			return err
		}
		return rechainMilestones(ctx, tx, m.ProjectID)
	})
}

func (r *PostgresRepository) UpdateMilestone(ctx context.Context, m *models.Milestone, changes []models.ChangeHistory) error {
	return r.inTx(ctx, "update_milestone", func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE milestones
			SET name = $1, planned_date = $2, actual_date = $3, status = $4, hours_per_week = $5
			WHERE id = $6`,
			m.Name, m.PlannedDate.Time, m.ActualDate.Ptr(), string(m.Status), m.HoursPerWeek, m.ID)
		if err != nil {
			return err
		}
		if err := expectRow(tag); err != nil {
			return err
		}
		if err := insertHistory(ctx, tx, m.ProjectID, changes); err != nil {
			return err
		}
		return rechainMilestones(ctx, tx, m.ProjectID)
	})
}

func (r *PostgresRepository) DeleteMilestone(ctx context.Context, m *models.Milestone, changes []models.ChangeHistory) error {
	return r.inTx(ctx, "delete_milestone", func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM milestones WHERE id = $1`, m.ID)
		if err != nil {
			return err
		}
		if err := expectRow(tag); err != nil {
			return err
		}
		if err := insertHistory(ctx, tx, m.ProjectID, changes); err != nil {
			return err
		}
		return rechainMilestones(ctx, tx, m.ProjectID)
	})
}

// rechainMilestones stores contiguous working ranges for a project's
// milestones, ordered by planned date.
func rechainMilestones(ctx context.Context, tx pgx.Tx, projectID int) error {
	var start *time.Time
	if err := tx.QueryRow(ctx, `SELECT start_date FROM projects WHERE id = $1`, projectID).Scan(&start); err != nil {
		return err
	}
	if start == nil {
		return nil
	}
	milestones, err := queryMilestones(ctx, tx, `WHERE m.project_id = $1`, projectID)
	if err != nil {
		return err
	}

	batch := &pgx.Batch{}
	for _, m := range models.ChainRanges(models.DateFromPtr(start), milestones) {
		batch.Queue(`UPDATE milestones SET start_date = $1, end_date = $2 WHERE id = $3`,
			m.StartDate.Time, m.EndDate.Time, m.ID)
	}
	return tx.SendBatch(ctx, batch).Close()
}

const assignmentSelect = `
	SELECT a.id, a.milestone_id, a.engineer_id, e.name, a.hours_per_week
	FROM milestone_assignments a
	JOIN engineers e ON e.id = a.engineer_id `

func queryAssignments(ctx context.Context, q querier, where string, args ...any) ([]models.Assignment, error) {
	rows, err := q.Query(ctx, assignmentSelect+where+` ORDER BY a.id`, args...)
	if err != nil {
		return nil, mapError("load assignments", err)
	}
	defer rows.Close()

	out := []models.Assignment{}
	for rows.Next() {
		var a models.Assignment
		if err := rows.Scan(&a.ID, &a.MilestoneID, &a.EngineerID, &a.Engineer, &a.HoursPerWeek); err != nil {
			return nil, mapError("load assignments", err)
		}
		out = append(out, a)
	}
	return out, mapError("load assignments", rows.Err())
}

func (r *PostgresRepository) ListAssignments(ctx context.Context, milestoneID int) ([]models.Assignment, error) {
	return queryAssignments(ctx, r.pool, `WHERE a.milestone_id = $1`, milestoneID)
}

func (r *PostgresRepository) GetAssignment(ctx context.Context, id int) (*models.Assignment, error) {
	out, err := queryAssignments(ctx, r.pool, `WHERE a.id = $1`, id)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("get assignment: %w", models.ErrNotFound)
	}
	return &out[0], nil
}

// CreateAssignment fails with ErrConflict when the engineer is already
// assigned to the milestone.
func (r *PostgresRepository) CreateAssignment(ctx context.Context, projectID int, a *models.Assignment) error {
	return r.inTx(ctx, "create_assignment", func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			WITH inserted AS (
				INSERT INTO milestone_assignments (milestone_id, engineer_id, hours_per_week)
				VALUES ($1, $2, $3)
				RETURNING id, engineer_id
			)
			SELECT i.id, e.name FROM inserted i JOIN engineers e ON e.id = i.engineer_id`,
			a.MilestoneID, a.EngineerID, a.HoursPerWeek,
		).Scan(&a.ID, &a.Engineer)
		if err != nil {
			return err
		}
		return rechainMilestones(ctx, tx, projectID)
	})
}

func (r *PostgresRepository) UpdateAssignment(ctx context.Context, a *models.Assignment) error {
	return r.inTx(ctx, "update_assignment", func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `UPDATE milestone_assignments SET hours_per_week = $1 WHERE id = $2`, a.HoursPerWeek, a.ID)
		if err != nil {
			return err
		}
		return expectRow(tag)
	})
}

func (r *PostgresRepository) DeleteAssignment(ctx context.Context, id int) error {
	return r.inTx(ctx, "delete_assignment", func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM milestone_assignments WHERE id = $1`, id)
		if err != nil {
			return err
		}
		return expectRow(tag)
	})
}
