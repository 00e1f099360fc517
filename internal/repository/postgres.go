package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"ops-dashboard/internal/metrics"
	"ops-dashboard/internal/models"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// querier is satisfied by both the pool and a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PostgresRepository struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewPostgresRepository(pool *pgxpool.Pool, logger *zap.Logger) *PostgresRepository {
	return &PostgresRepository{pool: pool, logger: logger}
}

func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (r *PostgresRepository) inTx(ctx context.Context, op string, fn func(tx pgx.Tx) error) error {
	defer observe(op, time.Now())

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%s: begin: %w", op, err)
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return mapError(op, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%s: commit: %w", op, err)
	}
	return nil
}

func observe(op string, start time.Time) {
	metrics.RecordDBQueryDuration(op, time.Since(start))
}

// mapError turns driver errors into the domain's sentinels.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, models.ErrNotFound)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolation:
			return fmt.Errorf("%s: %w: %s", op, models.ErrConflict, pgErr.ConstraintName)
		case foreignKeyViolation:
			return fmt.Errorf("%s: referenced record: %w", op, models.ErrNotFound)
		}
	}
	if errors.Is(err, models.ErrNotFound) || errors.Is(err, models.ErrConflict) {
		return err
	}
	return fmt.Errorf("%s: %w", op, err)
}

func expectRow(tag pgconn.CommandTag) error {
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// insertHistory records project changes attributed to the project owner.
func insertHistory(ctx context.Context, tx pgx.Tx, projectID int, changes []models.ChangeHistory) error {
	if len(changes) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, c := range changes {
		batch.Queue(`
			INSERT INTO change_history (project_id, field, old_value, new_value, changed_by)
			VALUES ($1, $2, $3, $4, COALESCE((
				SELECT e.name FROM projects p JOIN engineers e ON e.id = p.owner_id WHERE p.id = $1
			), 'System'))`,
			projectID, c.Field, c.OldValue, c.NewValue)
	}
	return tx.SendBatch(ctx, batch).Close()
}
