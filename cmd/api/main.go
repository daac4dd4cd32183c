package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/avilachehab/christmas-gifts/internal/api/http"
	"github.com/avilachehab/christmas-gifts/internal/api/http/handlers"
	"github.com/avilachehab/christmas-gifts/internal/auth"
	"github.com/avilachehab/christmas-gifts/internal/config"
	"github.com/avilachehab/christmas-gifts/internal/events"
	"github.com/avilachehab/christmas-gifts/internal/observability"
	"github.com/avilachehab/christmas-gifts/internal/persistence"
	"github.com/avilachehab/christmas-gifts/internal/repository"
	"github.com/avilachehab/christmas-gifts/internal/service"
	"github.com/avilachehab/christmas-gifts/internal/throttle"
	"github.com/avilachehab/christmas-gifts/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if pg.Enabled() && cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), persistence.DefaultMigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	key, err := auth.NewSigningKey(cfg.Auth.JWTSecret)
	if err != nil {
		logger.Fatal("invalid signing key", zap.Error(err))
	}
	cred, err := auth.NewCredential(cfg.Auth.Username, cfg.Auth.Password)
	if err != nil {
		logger.Fatal("invalid credential", zap.Error(err))
	}
	issuer, err := auth.NewTokenIssuer(key, cfg.Auth.TokenTTL())
	if err != nil {
		logger.Fatal("invalid token issuer", zap.Error(err))
	}
	validator, err := auth.NewTokenValidator(key)
	if err != nil {
		logger.Fatal("invalid token validator", zap.Error(err))
	}
	logger.Info("credential loaded",
		zap.String("username", cred.Username()),
		zap.String("secret_kind", cred.SecretKind()),
		zap.Duration("token_ttl", issuer.TTL()),
	)

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()

	var auditRepo repository.AuthEventRepository
	var auditWriter *worker.AuditWriter
	if pg.Enabled() {
		auditWriter = worker.NewAuditWriter(repository.NewAuthEventRepository(pg.PoolHandle()), worker.DefaultAuditQueueSize, metrics, logger)
		auditWriter.Start()
		auditRepo = auditWriter
	}
	worker.StartAuditWorker(service.NewAuditService(dispatcher, auditRepo, metrics, logger))

	authService := service.NewAuthService(service.AuthDependencies{
		Verifier:   auth.NewCredentialVerifier(cred),
		Issuer:     issuer,
		Dispatcher: dispatcher,
		Logger:     logger,
	})

	routes := httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{
			"postgres": pg,
			"redis":    redis,
		}, metrics),
		Auth:           handlers.NewAuthHandler(authService),
		AuthMiddleware: auth.NewAuthMiddleware(validator, dispatcher, logger),
	}
	if limiter := newLoginLimiter(cfg.Auth, redis, logger); limiter != nil {
		routes.LoginThrottle = httptransport.LoginThrottle(limiter, dispatcher, logger)
	}

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: cfg.App.Env == "production",
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, routes)

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
	if auditWriter != nil {
		stopCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
		defer stop()
		if err := auditWriter.Stop(stopCtx); err != nil {
			logger.Warn("audit queue not drained", zap.Error(err))
		}
	}
}

func newLoginLimiter(cfg config.AuthConfig, redis *persistence.Redis, logger *zap.Logger) throttle.Limiter {
	window := cfg.LoginRateLimitWindow()
	if cfg.LoginRateLimitMax <= 0 || window <= 0 {
		logger.Info("login throttle disabled")
		return nil
	}
	if redis.Enabled() {
		logger.Info("login throttle backed by redis", zap.Int("max", cfg.LoginRateLimitMax), zap.Duration("window", window))
		return throttle.NewRedisLimiter(redis.Client, cfg.LoginRateLimitMax, window)
	}
	logger.Info("login throttle in memory", zap.Int("max", cfg.LoginRateLimitMax), zap.Duration("window", window))
	return throttle.NewMemoryLimiter(cfg.LoginRateLimitMax, window)
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
