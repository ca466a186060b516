package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/case-service/internal/api/http"
	"github.com/spec-kit/case-service/internal/api/http/handlers"
	"github.com/spec-kit/case-service/internal/config"
	"github.com/spec-kit/case-service/internal/events"
	"github.com/spec-kit/case-service/internal/observability"
	"github.com/spec-kit/case-service/internal/persistence"
	"github.com/spec-kit/case-service/internal/repository"
	"github.com/spec-kit/case-service/internal/service"
	"github.com/spec-kit/case-service/internal/thumbnail"
	"github.com/spec-kit/case-service/internal/worker"
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

	health := map[string]handlers.Pinger{"postgres": nil, "redis": nil}

	var store repository.Store
	switch cfg.Store.Driver {
	case config.StoreDriverPostgres:
		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			logger.Fatal("failed to connect postgres", zap.Error(err))
		}
		defer pg.Close()

		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
				logger.Fatal("failed to run migrations", zap.Error(err))
			}
		}
		store = repository.NewPostgresStore(pg.PoolHandle())
		health["postgres"] = pg
	default:
		store = repository.NewMemoryStore()
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	var thumbCache thumbnail.Cache
	if client := redis.Handle(); client != nil {
		thumbCache = thumbnail.NewRedisCache(client)
		health["redis"] = redis
	}

	generator := thumbnail.NewHTTPGenerator(cfg.Thumbnail, &http.Client{Timeout: cfg.Thumbnail.Timeout()})
	thumbnails := thumbnail.NewBestEffort(
		thumbnail.NewCachedGenerator(generator, thumbCache, cfg.Thumbnail.CacheTTL(), logger),
		cfg.Thumbnail.Timeout(),
		logger,
	)

	dispatcher := events.NewInMemoryDispatcher()
	worker.StartNotificationWorker(service.NewNotificationService(dispatcher, logger, cfg.Notification), logger)

	caseService := service.NewCaseService(service.CaseDependencies{
		Store:      store,
		Thumbnails: thumbnails,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	userService := service.NewUserService(store)

	metrics := observability.NewMetrics()
	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:       handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, health),
		Users:        handlers.NewUsersHandler(userService),
		Cases:        handlers.NewCasesHandler(caseService),
		Messages:     handlers.NewMessagesHandler(caseService, logger),
		ThumbnailDir: cfg.Thumbnail.Dir,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()
	logger.Info("listening", zap.String("addr", cfg.App.Addr()), zap.String("store", cfg.Store.Driver))

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
	snapshot := metrics.Snapshot()
	var served int64
	for _, n := range snapshot.Requests {
		served += n
	}
	logger.Info("stopped", zap.Int64("requests", served), zap.Int("error_kinds", len(snapshot.Errors)))
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
