package worker

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/avilachehab/christmas-gifts/internal/auth"
	"github.com/avilachehab/christmas-gifts/internal/events"
	"github.com/avilachehab/christmas-gifts/internal/observability"
	"github.com/avilachehab/christmas-gifts/internal/service"
)

const testSecret = "test-secret-key-that-is-at-least-256-bits-long-for-hmac-sha-256-algorithm"

// blockingRepository holds every Record call until release is closed.
type blockingRepository struct {
	release chan struct{}
	started chan struct{}
	once    sync.Once

	mu       sync.Mutex
	recorded []events.Event
}

func newBlockingRepository() *blockingRepository {
	return &blockingRepository{release: make(chan struct{}), started: make(chan struct{})}
}

func (r *blockingRepository) Record(_ context.Context, event events.Event) error {
	r.once.Do(func() { close(r.started) })
	<-r.release
	r.mu.Lock()
	defer r.mu.Unlock()
	r.recorded = append(r.recorded, event)
	return nil
}

func (r *blockingRepository) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.recorded)
}

type failingRepository struct{}

func (failingRepository) Record(context.Context, events.Event) error {
	return errors.New("connection refused")
}

func TestAuditWriter_DropsWhenQueueFull(t *testing.T) {
	repo := newBlockingRepository()
	metrics := observability.NewMetrics()
	writer := NewAuditWriter(repo, 1, metrics, zap.NewNop())
	writer.Start()

	ctx := context.Background()
	require.NoError(t, writer.Record(ctx, events.NewEvent(events.EventTokenRejected)))
	select {
	case <-repo.started:
	case <-time.After(time.Second):
		t.Fatal("writer did not pick up the first event")
	}

	require.NoError(t, writer.Record(ctx, events.NewEvent(events.EventTokenRejected)))
	require.NoError(t, writer.Record(ctx, events.NewEvent(events.EventTokenRejected)))
	assert.Equal(t, int64(1), metrics.Snapshot().Auth["audit_dropped:token_rejected"])

	close(repo.release)
	stopCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	require.NoError(t, writer.Stop(stopCtx))
	assert.Equal(t, 2, repo.count())

	require.NoError(t, writer.Record(ctx, events.NewEvent(events.EventLoginFailed)))
	assert.Equal(t, int64(1), metrics.Snapshot().Auth["audit_dropped:login_failed"])
}

func TestAuditWriter_CountsStoreFailures(t *testing.T) {
	metrics := observability.NewMetrics()
	writer := NewAuditWriter(failingRepository{}, 4, metrics, nil)
	writer.Start()

	require.NoError(t, writer.Record(context.Background(), events.NewEvent(events.EventLoginSucceeded)))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, writer.Stop(ctx))
	assert.Equal(t, int64(1), metrics.Snapshot().Auth["audit_failed:login_succeeded"])
}

func TestAuthGateAnswersWhileStoreBlocks(t *testing.T) {
	key, err := auth.NewSigningKey(testSecret)
	require.NoError(t, err)
	validator, err := auth.NewTokenValidator(key)
	require.NoError(t, err)

	repo := newBlockingRepository()
	metrics := observability.NewMetrics()
	writer := NewAuditWriter(repo, 4, metrics, zap.NewNop())
	writer.Start()
	defer func() {
		close(repo.release)
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		assert.NoError(t, writer.Stop(ctx))
	}()

	dispatcher := events.NewInMemoryDispatcher()
	StartAuditWorker(service.NewAuditService(dispatcher, writer, metrics, zap.NewNop()))

	gate := auth.NewAuthMiddleware(validator, dispatcher, zap.NewNop())
	app := fiber.New()
	app.Get("/api/gifts", gate.Handle, func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	for i := 0; i < 20; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/gifts", nil)
		req.Header.Set("Authorization", "Bearer garbage.token.value")
		resp, err := app.Test(req, 500)
		require.NoError(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}

	snap := metrics.Snapshot()
	assert.Equal(t, int64(20), snap.Auth["token_rejected:SIGNATURE_MISMATCH"])
	assert.Positive(t, snap.Auth["audit_dropped:token_rejected"])
	assert.Zero(t, repo.count())
}
