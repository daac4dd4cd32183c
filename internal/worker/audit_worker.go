package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/avilachehab/christmas-gifts/internal/events"
	"github.com/avilachehab/christmas-gifts/internal/observability"
	"github.com/avilachehab/christmas-gifts/internal/repository"
	"github.com/avilachehab/christmas-gifts/internal/service"
)

const (
	// DefaultAuditQueueSize bounds the events waiting to be written.
	DefaultAuditQueueSize = 1024
	auditWriteTimeout     = 5 * time.Second
)

// StartAuditWorker subscribes the audit trail to every auth event.
func StartAuditWorker(auditService *service.AuditService) {
	if auditService == nil {
		return
	}
	auditService.RegisterHandlers()
}

// AuditWriter persists auth events off the request path. It satisfies
// repository.AuthEventRepository so the audit service can hand events to it directly.
// When the queue is full events are dropped and counted as "audit_dropped".
type AuditWriter struct {
	repo    repository.AuthEventRepository
	queue   chan events.Event
	metrics *observability.Metrics
	logger  *zap.Logger

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

// NewAuditWriter creates a writer with room for size pending events.
func NewAuditWriter(repo repository.AuthEventRepository, size int, metrics *observability.Metrics, logger *zap.Logger) *AuditWriter {
	if size <= 0 {
		size = DefaultAuditQueueSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditWriter{
		repo:    repo,
		queue:   make(chan events.Event, size),
		metrics: metrics,
		logger:  logger,
		done:    make(chan struct{}),
	}
}

// Start launches the single goroutine that drains the queue.
func (w *AuditWriter) Start() {
	go w.run()
}

// Record enqueues event without blocking.
func (w *AuditWriter) Record(_ context.Context, event events.Event) error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		w.metrics.RecordAuth("audit_dropped", string(event.Type))
		return nil
	}

	select {
	case w.queue <- event:
	default:
		w.metrics.RecordAuth("audit_dropped", string(event.Type))
	}
	return nil
}

// Stop closes the queue and waits until queued events are written or ctx ends.
func (w *AuditWriter) Stop(ctx context.Context) error {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.queue)
	}
	w.mu.Unlock()

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *AuditWriter) run() {
	defer close(w.done)
	for event := range w.queue {
		ctx, cancel := context.WithTimeout(context.Background(), auditWriteTimeout)
		if err := w.repo.Record(ctx, event); err != nil {
			w.metrics.RecordAuth("audit_failed", string(event.Type))
			w.logger.Error("persist auth event", zap.String("event_id", event.ID), zap.Error(err))
		}
		cancel()
	}
}
