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

	httptransport "github.com/spec-kit/case-workflow/internal/api/http"
	"github.com/spec-kit/case-workflow/internal/api/http/handlers"
	"github.com/spec-kit/case-workflow/internal/assignment"
	"github.com/spec-kit/case-workflow/internal/auth"
	"github.com/spec-kit/case-workflow/internal/broker"
	"github.com/spec-kit/case-workflow/internal/config"
	"github.com/spec-kit/case-workflow/internal/events"
	"github.com/spec-kit/case-workflow/internal/observability"
	"github.com/spec-kit/case-workflow/internal/persistence"
	"github.com/spec-kit/case-workflow/internal/repository"
	"github.com/spec-kit/case-workflow/internal/repository/memory"
	"github.com/spec-kit/case-workflow/internal/service"
	"github.com/spec-kit/case-workflow/internal/sla"
	"github.com/spec-kit/case-workflow/internal/worker"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	metrics, err := observability.NewMetrics()
	if err != nil {
		logger.Fatal("failed to init metrics", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	checks := map[string]handlers.Pinger{}

	var (
		uow    repository.UnitOfWork
		reader repository.Stores
	)
	if cfg.Postgres.DSN != "" {
		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			logger.Fatal("failed to connect postgres", zap.Error(err))
		}
		defer pg.Close()

		if cfg.Postgres.RunMigrations {
			if err := pg.Migrate(ctx, cfg.Postgres.MigrationsDir, logger); err != nil {
				logger.Fatal("failed to run migrations", zap.Error(err))
			}
		}
		uow = pg.UnitOfWork()
		reader = pg.Stores()
		checks["postgres"] = pg
	} else {
		logger.Warn("POSTGRES_DSN not provided; using in-memory store")
		seed, err := config.LoadHandlerSeed(cfg.Workflow.HandlerSeedPath)
		if err != nil {
			logger.Fatal("failed to load handler seed", zap.Error(err))
		}
		store := memory.NewStore()
		for _, h := range seed {
			store.PutHandler(h)
		}
		uow = store
		reader = store.Stores()
	}

	var claimer events.Claimer
	if redis := persistence.NewRedis(cfg.Redis, logger); redis != nil {
		defer redis.Close()
		claimer = redis
		checks["redis"] = redis
	}

	dispatcher := events.NewAsyncDispatcher(events.Options{
		Workers:     cfg.Events.Workers,
		QueueSize:   cfg.Events.QueueSize,
		MaxAttempts: cfg.Events.MaxAttempts,
		RetryDelay:  cfg.Events.RetryDelay(),
		Recorder:    metrics,
	}, logger.Named("events"))

	consumers := []worker.Registrar{
		service.NewNotificationService(logger.Named("notifications"), cfg.Notify),
	}
	if cfg.RabbitMQ.URL != "" {
		relay, err := broker.NewRabbitPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange, cfg.App.Name, logger.Named("rabbitmq"))
		if err != nil {
			logger.Fatal("failed to connect rabbitmq", zap.Error(err))
		}
		defer relay.Close() //nolint:errcheck
		consumers = append(consumers, relay)
	}
	if len(cfg.Kafka.Brokers) > 0 {
		audit := broker.NewAuditStream(cfg.Kafka.Brokers, cfg.Kafka.AuditTopic, cfg.App.Name, logger.Named("kafka"))
		defer audit.Close() //nolint:errcheck
		consumers = append(consumers, audit)
	}
	worker.StartConsumers(dispatcher, claimer, logger, consumers...)

	policy := assignment.PolicyByName(cfg.Workflow.AssignmentPolicy)
	workflowService := service.NewWorkflowService(service.WorkflowDependencies{
		UnitOfWork:         uow,
		Reader:             reader,
		Policy:             policy,
		Dispatcher:         dispatcher,
		Instrumenter:       observability.NewInstrumenter(logger.Named("workflow"), metrics),
		Logger:             logger,
		BackOfficePool:     cfg.Workflow.BackOfficePool,
		ExternalAreaDomain: cfg.Workflow.ExternalAreaEmailDomain,
	})
	slaService := service.NewSLAService(service.SLADependencies{
		CaseRepo:   reader.Cases,
		StatsRepo:  reader.Stats,
		Calculator: sla.NewCalculator(cfg.SLA),
	})

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer, 0)

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: true,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, checks),
		Cases:          handlers.NewCasesHandler(workflowService),
		SLA:            handlers.NewSLAHandler(slaService),
		Pools:          handlers.NewPoolsHandler(reader.Handlers, policy),
		Metrics:        metrics.Handler(),
		AuthMiddleware: auth.NewAuthMiddleware(tokens),
	})

	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.App.Addr()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	if err := dispatcher.Shutdown(shutdownCtx); err != nil {
		logger.Warn("event dispatcher shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
