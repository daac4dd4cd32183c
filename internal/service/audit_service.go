package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/avilachehab/christmas-gifts/internal/events"
	"github.com/avilachehab/christmas-gifts/internal/observability"
	"github.com/avilachehab/christmas-gifts/internal/repository"
)

// AuditService records authentication events: a log line, a counter and, when a store is
// configured, a row in the audit table.
type AuditService struct {
	dispatcher events.Dispatcher
	repo       repository.AuthEventRepository
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// NewAuditService creates the service. repo and metrics may be nil.
func NewAuditService(dispatcher events.Dispatcher, repo repository.AuthEventRepository, metrics *observability.Metrics, logger *zap.Logger) *AuditService {
	return &AuditService{
		dispatcher: dispatcher,
		repo:       repo,
		metrics:    metrics,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	for _, eventType := range events.AllEventTypes {
		a.dispatcher.Subscribe(eventType, a.handle)
	}
}

func (a *AuditService) handle(ctx context.Context, event events.Event) error {
	a.metrics.RecordAuth(string(event.Type), event.Reason)

	fields := []zap.Field{
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)),
		zap.String("client_ip", event.ClientIP),
	}
	if event.Subject != "" {
		fields = append(fields, zap.String("subject", event.Subject))
	}
	if event.Reason != "" {
		fields = append(fields, zap.String("reason", event.Reason))
	}
	if event.Path != "" {
		fields = append(fields, zap.String("path", event.Path))
	}
	a.logger.Info("auth event", fields...)

	if a.repo == nil {
		return nil
	}
	if err := a.repo.Record(ctx, event); err != nil {
		a.logger.Error("persist auth event", zap.String("event_id", event.ID), zap.Error(err))
		return err
	}
	return nil
}
