package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ChangeEvent is published on every mutation and appended to the ClickHouse
// event log by the subscriber.
type ChangeEvent struct {
	ID        string          `json:"Id"`
	Entity    string          `json:"Entity"`
	Action    string          `json:"Action"`
	EntityID  int             `json:"EntityId"`
	ProjectID int             `json:"ProjectId"`
	Payload   json.RawMessage `json:"Payload"`
	EventTime time.Time       `json:"EventTime"`
}

func NewChangeEvent(entity, action string, entityID, projectID int, payload interface{}) (*ChangeEvent, error) {
	var raw json.RawMessage
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		raw = data
	}
	return &ChangeEvent{
		ID:        uuid.NewString(),
		Entity:    entity,
		Action:    action,
		EntityID:  entityID,
		ProjectID: projectID,
		Payload:   raw,
		EventTime: time.Now().UTC(),
	}, nil
}

// Subject is the NATS subject the event travels on, e.g. dashboard.project.updated.
func (e ChangeEvent) Subject(prefix string) string {
	return prefix + "." + e.Entity + "." + e.Action
}
