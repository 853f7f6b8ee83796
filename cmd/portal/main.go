package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/tenderdesk/tenderdesk/internal/app"
	"github.com/tenderdesk/tenderdesk/internal/auth"
	"github.com/tenderdesk/tenderdesk/internal/invoices"
	"github.com/tenderdesk/tenderdesk/internal/notifications"
	"github.com/tenderdesk/tenderdesk/internal/observability"
	"github.com/tenderdesk/tenderdesk/internal/platform/db"
	"github.com/tenderdesk/tenderdesk/internal/projects"
	"github.com/tenderdesk/tenderdesk/internal/reports"
	"github.com/tenderdesk/tenderdesk/internal/shared"
	"github.com/tenderdesk/tenderdesk/internal/suppliers"
	"github.com/tenderdesk/tenderdesk/internal/tenders"
	"github.com/tenderdesk/tenderdesk/internal/users"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping server startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}

	audit := shared.NewAuditLogger(pool)
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)
	metrics := observability.NewMetrics()

	authRepo := auth.NewRepository(pool)
	authService, err := auth.NewService(authRepo)
	if err != nil {
		logger.Error("init auth service", slog.Any("error", err))
		os.Exit(1)
	}
	authHandler := auth.NewHandler(logger, authService, csrfManager, cfg.IsProduction())
	authMiddleware := auth.Middleware{Service: authService, Logger: logger}

	notifRepo := notifications.NewRepository(pool)
	engine := notifications.NewEngine(notifRepo, notifRepo, notifRepo, notifRepo, logger)
	notifService := notifications.NewService(engine, notifRepo)
	notifHandler := notifications.NewHandler(logger, notifService)

	usersService := users.NewService(users.NewRepository(pool), audit)
	usersHandler := users.NewHandler(logger, usersService)

	tendersService := tenders.NewService(tenders.NewPGRepository(pool), audit)
	tendersHandler := tenders.NewHandler(logger, tendersService)

	suppliersService := suppliers.NewService(suppliers.NewPGRepository(pool), audit)
	suppliersHandler := suppliers.NewHandler(logger, suppliersService)

	projectsService := projects.NewService(projects.NewPGRepository(pool), audit)
	projectsHandler := projects.NewHandler(logger, projectsService)

	invoicesService := invoices.NewService(invoices.NewPGRepository(pool), audit)
	invoicesHandler := invoices.NewHandler(logger, invoicesService)

	reportsCache := reports.NewRedisCache(redisClient, cfg.SummaryCacheTTL)
	reportsService := reports.NewService(reports.NewPGRepository(pool), reportsCache, notifService, logger)
	reportsHandler := reports.NewHandler(logger, reportsService)

	router := app.NewRouter(app.RouterParams{
		Logger:               logger,
		Config:               cfg,
		CSRFManager:          csrfManager,
		AuthMiddleware:       authMiddleware,
		AuthHandler:          authHandler,
		UsersHandler:         usersHandler,
		TendersHandler:       tendersHandler,
		SuppliersHandler:     suppliersHandler,
		ProjectsHandler:      projectsHandler,
		InvoicesHandler:      invoicesHandler,
		ReportsHandler:       reportsHandler,
		NotificationsHandler: notifHandler,
		Metrics:              metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("portal listening", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("server exited", slog.Any("error", err))
		os.Exit(1)
	}
}
