package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"ops-dashboard/internal/models"
)

// NATSSubscriber appends every published change event to the event log.
type NATSSubscriber struct {
	natsConn *nats.Conn
	eventLog EventLog
	subject  string
	logger   *zap.Logger
	sub      *nats.Subscription
}

func NewNATSSubscriber(natsConn *nats.Conn, eventLog EventLog, subjectPrefix string, logger *zap.Logger) *NATSSubscriber {
	return &NATSSubscriber{
		natsConn: natsConn,
		eventLog: eventLog,
		subject:  subjectPrefix + ".>",
		logger:   logger,
	}
}

func (s *NATSSubscriber) Subscribe() error {
	sub, err := s.natsConn.Subscribe(s.subject, s.handle)
	if err != nil {
		return err
	}
	s.sub = sub

	s.logger.Info("subscribed to NATS subject", zap.String("subject", s.subject))
	return nil
}

// Drain stops delivery after in-flight messages are handled.
func (s *NATSSubscriber) Drain() error {
	if s.sub == nil {
		return nil
	}
	return s.sub.Drain()
}

func (s *NATSSubscriber) handle(msg *nats.Msg) {
	s.record(msg.Subject, msg.Data)
}

func (s *NATSSubscriber) record(subject string, data []byte) {
	log := s.logger.With(zap.String("subject", subject))

	var event models.ChangeEvent
	if err := json.Unmarshal(data, &event); err != nil {
		log.Warn("error unmarshalling NATS message", zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.eventLog.LogEvent(ctx, &event); err != nil {
		log.Error("error logging change event", zap.Error(err))
		return
	}

	log.Debug("logged change event",
		zap.String("event_id", event.ID),
		zap.Int("entity_id", event.EntityID),
		zap.Int("project_id", event.ProjectID))
}
