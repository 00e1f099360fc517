package testutil

import (
	"context"
	"sort"
	"sync"

	"ops-dashboard/internal/models"
)

// Message is one captured publish.
type Message struct {
	Subject string
	Data    []byte
}

// Publisher records everything published to it.
type Publisher struct {
	mu       sync.Mutex
	Messages []Message
	Err      error
}

func (p *Publisher) Publish(subject string, data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.Messages = append(p.Messages, Message{Subject: subject, Data: data})
	return nil
}

func (p *Publisher) Subjects() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.Messages))
	for i, m := range p.Messages {
		out[i] = m.Subject
	}
	return out
}

// EventLog is an in-memory ClickHouse event log.
type EventLog struct {
	mu     sync.Mutex
	Events []models.ChangeEvent
}

func (l *EventLog) LogEvent(_ context.Context, e *models.ChangeEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Events = append(l.Events, *e)
	return nil
}

func (l *EventLog) ListEvents(_ context.Context, projectID, limit int) ([]models.ChangeEvent, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := []models.ChangeEvent{}
	for _, e := range l.Events {
		if e.ProjectID == projectID {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].EventTime.After(out[j].EventTime) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
