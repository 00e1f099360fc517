package repository

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2"

	"ops-dashboard/internal/models"
)

const eventsTable = `
	CREATE TABLE IF NOT EXISTS dashboard_events (
		Id        String,
		Entity    LowCardinality(String),
		Action    LowCardinality(String),
		EntityId  Int64,
		ProjectId Int64,
		Payload   String,
		EventTime DateTime64(3, 'UTC')
	) ENGINE = MergeTree
	ORDER BY (ProjectId, EventTime)`

type ClickhouseRepository struct {
	conn clickhouse.Conn
}

func NewClickhouseRepository(conn clickhouse.Conn) *ClickhouseRepository {
	return &ClickhouseRepository{conn: conn}
}

func (r *ClickhouseRepository) EnsureSchema(ctx context.Context) error {
	return r.conn.Exec(ctx, eventsTable)
}

func (r *ClickhouseRepository) LogEvent(ctx context.Context, e *models.ChangeEvent) error {
	query := `
        INSERT INTO dashboard_events (
            Id, Entity, Action, EntityId, ProjectId, Payload, EventTime
        ) VALUES (?, ?, ?, ?, ?, ?, ?)`

	return r.conn.Exec(ctx, query,
		e.ID,
		e.Entity,
		e.Action,
		int64(e.EntityID),
		int64(e.ProjectID),
		string(e.Payload),
		e.EventTime,
	)
}

// ListEvents returns the newest events of a project first.
func (r *ClickhouseRepository) ListEvents(ctx context.Context, projectID, limit int) ([]models.ChangeEvent, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := r.conn.Query(ctx, `
		SELECT Id, Entity, Action, EntityId, ProjectId, Payload, EventTime
		FROM dashboard_events
		WHERE ProjectId = ?
		ORDER BY EventTime DESC
		LIMIT ?`, int64(projectID), limit)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	events := []models.ChangeEvent{}
	for rows.Next() {
		var (
			e                 models.ChangeEvent
			entityID, project int64
			payload           string
		)
		if err := rows.Scan(&e.ID, &e.Entity, &e.Action, &entityID, &project, &payload, &e.EventTime); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.EntityID = int(entityID)
		e.ProjectID = int(project)
		if payload != "" {
			e.Payload = []byte(payload)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}
