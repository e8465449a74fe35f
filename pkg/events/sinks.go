package events

import (
	"context"

	"github.com/example/shopfront/pkg/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

type AuditWriter interface {
	CreateAuditLog(ctx context.Context, log *repository.AuditLog) error
}

// AuditSink writes events straight to the audit log.
type AuditSink struct {
	service string
	writer  AuditWriter
}

func NewAuditSink(service string, writer AuditWriter) *AuditSink {
	return &AuditSink{service: service, writer: writer}
}

func (s *AuditSink) Handle(ctx context.Context, e Event) error {
	return s.writer.CreateAuditLog(ctx, ToAuditLog(s.service, e))
}

func ToAuditLog(service string, e Event) *repository.AuditLog {
	data := bson.M{"event_id": e.ID}
	for k, v := range e.Data {
		data[k] = v
	}
	return &repository.AuditLog{
		Service:   service,
		Action:    e.Type,
		EntityID:  e.EntityID,
		Data:      data,
		CreatedAt: e.OccurredAt,
	}
}

// LogSink logs every event at debug level.
type LogSink struct {
	logger *zap.Logger
}

func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{logger: logger.Named("events")}
}

func (s *LogSink) Handle(_ context.Context, e Event) error {
	s.logger.Debug("event",
		zap.String("id", e.ID),
		zap.String("type", e.Type),
		zap.String("entity_id", e.EntityID),
		zap.Any("data", e.Data))
	return nil
}
