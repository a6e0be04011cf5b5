package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/helpdesk-service/internal/api/http"
	"github.com/spec-kit/helpdesk-service/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/observability"
	"github.com/spec-kit/helpdesk-service/internal/persistence"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/service"
	"github.com/spec-kit/helpdesk-service/internal/worker"
)

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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

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

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	store := repository.NewStore(pg.PoolHandle())
	var cache repository.Cache
	if client := redis.Handle(); client != nil {
		cache = repository.NewCacheRepository(client, logger)
	}

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher(logger)
	validate := service.NewValidator()

	ticketService := service.NewTicketService(service.TicketDependencies{
		Repositories: store.Repositories,
		Transactor:   store,
		Picker:       service.NewRandomAgentPicker(),
		Dispatcher:   dispatcher,
		Metrics:      metrics,
		Logger:       logger,
	})
	notificationService := service.NewNotificationService(service.NotificationDependencies{
		Repositories: store.Repositories,
		Transactor:   store,
		Dispatcher:   dispatcher,
		Metrics:      metrics,
		Logger:       logger,
		Config:       cfg.Notification,
	})
	catalogService := service.NewCatalogService(service.CatalogDependencies{
		Repositories: store.Repositories,
		Transactor:   store,
		Validator:    validate,
		Logger:       logger,
	})
	profileService := service.NewProfileService(service.ProfileDependencies{
		Repositories: store.Repositories,
		Transactor:   store,
		Validator:    validate,
		Logger:       logger,
	})
	reportService := service.NewReportService(service.ReportDependencies{
		Reports: store.Reports,
		Cache:   cache,
		Config:  cfg.Reports,
		Logger:  logger,
	})
	faqService := service.NewFAQService(service.FAQDependencies{
		Repositories: store.Repositories,
		Validator:    validate,
		Logger:       logger,
	})
	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		Repositories: store.Repositories,
		Transactor:   store,
		Validator:    validate,
		Logger:       logger,
	})
	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), store.Users)

	worker.StartNotificationWorker(notificationService, logger)
	worker.StartReportInvalidation(dispatcher, reportService, logger)

	sweeper := worker.NewSLASweeper(store.Tickets, ticketService, worker.SLASweeperOptions{
		BatchSize: cfg.SLA.SweepBatchSize,
		Metrics:   metrics,
		Logger:    logger,
	})
	if err := sweeper.Start(cfg.SLA.SweepSchedule); err != nil {
		logger.Fatal("failed to schedule sla sweep", zap.Error(err))
	}

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Users:          handlers.NewUsersHandler(authService),
		Tickets:        handlers.NewTicketsHandler(ticketService, notificationService),
		StaffTickets:   handlers.NewStaffTicketsHandler(ticketService),
		Staff:          handlers.NewStaffHandler(catalogService, reportService, profileService),
		Notifications:  handlers.NewNotificationsHandler(notificationService),
		FAQs:           handlers.NewFAQHandler(faqService),
		AuthMiddleware: authMiddleware,
		Metrics:        metrics,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	sweeper.Stop()
	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
