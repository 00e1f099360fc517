package service

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"ops-dashboard/internal/metrics"
	"ops-dashboard/internal/models"
)

const (
	EntityEngineer       = "engineer"
	EntityNonProjectTime = "non_project_time"
	EntityProject        = "project"
	EntityExpense        = "expense"
	EntityMilestone      = "milestone"
	EntityAssignment     = "assignment"
	EntityTask           = "task"
	EntityJiraLink       = "jira_link"

	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

type eventPublisher struct {
	conn   Publisher
	prefix string
	logger *zap.Logger
}

// publish sends a change event. Failures are logged, never returned: the
// mutation has already been committed.
func (p *eventPublisher) publish(entity, action string, entityID, projectID int, payload interface{}) {
	if p.conn == nil {
		return
	}
	err := p.send(entity, action, entityID, projectID, payload)
	metrics.RecordEventPublished(entity, action, err)
	if err != nil {
		p.logger.Warn("failed to publish change event",
			zap.String("entity", entity),
			zap.String("action", action),
			zap.Int("entity_id", entityID),
			zap.Error(err))
	}
}

func (p *eventPublisher) send(entity, action string, entityID, projectID int, payload interface{}) error {
	event, err := models.NewChangeEvent(entity, action, entityID, projectID, payload)
	if err != nil {
		return fmt.Errorf("error building event: %w", err)
	}

	bytes, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("error marshaling event: %w", err)
	}

	if err := p.conn.Publish(event.Subject(p.prefix), bytes); err != nil {
		return fmt.Errorf("error publishing to NATS: %w", err)
	}
	return nil
}
