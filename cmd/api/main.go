package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/bplabo/license-portal/internal/api/http"
	"github.com/bplabo/license-portal/internal/api/http/handlers"
	"github.com/bplabo/license-portal/internal/auth"
	"github.com/bplabo/license-portal/internal/config"
	"github.com/bplabo/license-portal/internal/events"
	"github.com/bplabo/license-portal/internal/observability"
	"github.com/bplabo/license-portal/internal/persistence"
	"github.com/bplabo/license-portal/internal/repository"
	"github.com/bplabo/license-portal/internal/service"
	"github.com/bplabo/license-portal/internal/worker"
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
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	accountRepo := repository.NewAccountRepository(pool)
	employeeRepo := repository.NewEmployeeRepository(pool)
	licenseRepo := repository.NewLicenseRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()

	authService := service.NewAuthService(*cfg, logger, service.AuthDependencies{
		AccountRepo:  accountRepo,
		EmployeeRepo: employeeRepo,
		LicenseRepo:  licenseRepo,
		Tx:           pg,
		Dispatcher:   dispatcher,
	})
	accountService := service.NewAccountService(*cfg, accountRepo)
	adminService := service.NewAdminService(logger, service.AdminDependencies{
		AccountRepo:  accountRepo,
		EmployeeRepo: employeeRepo,
		LicenseRepo:  licenseRepo,
		Tx:           pg,
		Dispatcher:   dispatcher,
	})

	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), accountRepo)

	metrics := observability.NewMetrics()
	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	rateLimiter := httptransport.NewRateLimiter(redis, logger, cfg.RateLimit.Window())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService),
		Accounts:       handlers.NewAccountsHandler(accountService),
		Admin:          handlers.NewAdminHandler(adminService),
		AuthMiddleware: authMiddleware,
		RateLimiter:    rateLimiter,
		GeneralLimit:   cfg.RateLimit.MaxRequests,
		AuthLimit:      cfg.RateLimit.AuthMaxRequests,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
