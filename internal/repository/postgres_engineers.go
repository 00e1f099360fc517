package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"ops-dashboard/internal/models"
)

func (r *PostgresRepository) ListEngineers(ctx context.Context) ([]models.Engineer, error) {
	defer observe("list_engineers", time.Now())

	rows, err := r.pool.Query(ctx, `
		SELECT id, name, role, total_hours, created_at
		FROM engineers
		ORDER BY name`)
	if err != nil {
		return nil, mapError("list engineers", err)
	}
	defer rows.Close()

	engineers := []models.Engineer{}
	index := map[int]int{}
	for rows.Next() {
		var e models.Engineer
		if err := rows.Scan(&e.ID, &e.Name, &e.Role, &e.TotalHours, &e.CreatedAt); err != nil {
			return nil, mapError("list engineers", err)
		}
		e.NonProjectTime = []models.NonProjectTime{}
		index[e.ID] = len(engineers)
		engineers = append(engineers, e)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("list engineers", err)
	}

	npts, err := listNonProjectTime(ctx, r.pool, nil)
	if err != nil {
		return nil, err
	}
	for _, n := range npts {
		if i, ok := index[n.EngineerID]; ok {
			engineers[i].NonProjectTime = append(engineers[i].NonProjectTime, n)
		}
	}
	return engineers, nil
}

func (r *PostgresRepository) GetEngineer(ctx context.Context, id int) (*models.Engineer, error) {
	defer observe("get_engineer", time.Now())

	var e models.Engineer
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, role, total_hours, created_at
		FROM engineers
		WHERE id = $1`, id,
	).Scan(&e.ID, &e.Name, &e.Role, &e.TotalHours, &e.CreatedAt)
	if err != nil {
		return nil, mapError("get engineer", err)
	}

	e.NonProjectTime, err = listNonProjectTime(ctx, r.pool, &id)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// FindEngineerByName resolves legacy owner names to ids.
func (r *PostgresRepository) FindEngineerByName(ctx context.Context, name string) (*models.Engineer, error) {
	var id int
	err := r.pool.QueryRow(ctx, `SELECT id FROM engineers WHERE name = $1`, name).Scan(&id)
	if err != nil {
		return nil, mapError("find engineer", err)
	}
	return r.GetEngineer(ctx, id)
}

func (r *PostgresRepository) CreateEngineer(ctx context.Context, e *models.Engineer) error {
	return r.inTx(ctx, "create_engineer", func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO engineers (name, role, total_hours)
			VALUES ($1, $2, $3)
			RETURNING id, created_at`,
			e.Name, e.Role, e.TotalHours,
		).Scan(&e.ID, &e.CreatedAt)
		if err != nil {
			return err
		}
		for i := range e.NonProjectTime {
			e.NonProjectTime[i].EngineerID = e.ID
			if err := insertNonProjectTime(ctx, tx, &e.NonProjectTime[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *PostgresRepository) UpdateEngineer(ctx context.Context, e *models.Engineer) error {
	return r.inTx(ctx, "update_engineer", func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE engineers
			SET name = $1, role = $2, total_hours = $3
			WHERE id = $4`,
			e.Name, e.Role, e.TotalHours, e.ID)
		if err != nil {
			return err
		}
		return expectRow(tag)
	})
}

// DeleteEngineer removes the engineer with their tasks, assignments and
// non-project time. Owned projects keep existing with no owner.
func (r *PostgresRepository) DeleteEngineer(ctx context.Context, id int) error {
	return r.inTx(ctx, "delete_engineer", func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `UPDATE projects SET owner_id = NULL WHERE owner_id = $1`, id); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM engineers WHERE id = $1`, id)
		if err != nil {
			return err
		}
		return expectRow(tag)
	})
}

func (r *PostgresRepository) GetNonProjectTime(ctx context.Context, engineerID, id int) (*models.NonProjectTime, error) {
	var n models.NonProjectTime
	err := r.pool.QueryRow(ctx, `
		SELECT id, engineer_id, type, hours
		FROM engineer_non_project_time
		WHERE id = $1 AND engineer_id = $2`, id, engineerID,
	).Scan(&n.ID, &n.EngineerID, &n.Type, &n.Hours)
	if err != nil {
		return nil, mapError("get non-project time", err)
	}
	return &n, nil
}

func (r *PostgresRepository) CreateNonProjectTime(ctx context.Context, n *models.NonProjectTime) error {
	return r.inTx(ctx, "create_non_project_time", func(tx pgx.Tx) error {
		return insertNonProjectTime(ctx, tx, n)
	})
}

func (r *PostgresRepository) UpdateNonProjectTime(ctx context.Context, n *models.NonProjectTime) error {
	return r.inTx(ctx, "update_non_project_time", func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE engineer_non_project_time
			SET type = $1, hours = $2
			WHERE id = $3 AND engineer_id = $4`,
			n.Type, n.Hours, n.ID, n.EngineerID)
		if err != nil {
			return err
		}
		return expectRow(tag)
	})
}

func (r *PostgresRepository) DeleteNonProjectTime(ctx context.Context, engineerID, id int) error {
	return r.inTx(ctx, "delete_non_project_time", func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			DELETE FROM engineer_non_project_time
			WHERE id = $1 AND engineer_id = $2`, id, engineerID)
		if err != nil {
			return err
		}
		return expectRow(tag)
	})
}

func insertNonProjectTime(ctx context.Context, q querier, n *models.NonProjectTime) error {
	return q.QueryRow(ctx, `
		INSERT INTO engineer_non_project_time (engineer_id, type, hours)
		VALUES ($1, $2, $3)
		RETURNING id`,
		n.EngineerID, n.Type, n.Hours,
	).Scan(&n.ID)
}

func listNonProjectTime(ctx context.Context, q querier, engineerID *int) ([]models.NonProjectTime, error) {
	rows, err := q.Query(ctx, `
		SELECT id, engineer_id, type, hours
		FROM engineer_non_project_time
		WHERE $1::int IS NULL OR engineer_id = $1
		ORDER BY id`, engineerID)
	if err != nil {
		return nil, mapError("list non-project time", err)
	}
	defer rows.Close()

	out := []models.NonProjectTime{}
	for rows.Next() {
		var n models.NonProjectTime
		if err := rows.Scan(&n.ID, &n.EngineerID, &n.Type, &n.Hours); err != nil {
			return nil, mapError("list non-project time", err)
		}
		out = append(out, n)
	}
	return out, mapError("list non-project time", rows.Err())
}
