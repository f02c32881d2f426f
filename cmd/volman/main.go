package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/animecon/volunteer-manager/internal/access"
	"github.com/animecon/volunteer-manager/internal/app"
	"github.com/animecon/volunteer-manager/internal/applications"
	"github.com/animecon/volunteer-manager/internal/audit"
	"github.com/animecon/volunteer-manager/internal/auth"
	"github.com/animecon/volunteer-manager/internal/events"
	"github.com/animecon/volunteer-manager/internal/hotel"
	"github.com/animecon/volunteer-manager/internal/observability"
	"github.com/animecon/volunteer-manager/internal/platform/cache"
	"github.com/animecon/volunteer-manager/internal/platform/db"
	"github.com/animecon/volunteer-manager/internal/shared"
	"github.com/animecon/volunteer-manager/internal/volunteers"
	"github.com/animecon/volunteer-manager/jobs"
	"github.com/animecon/volunteer-manager/report"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
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

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "volman_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	auditLogger := shared.NewAuditLogger(dbpool)
	idempotencyStore := shared.NewIdempotencyStore(dbpool)

	guard := access.Middleware{Logger: logger}
	catalog := access.DefaultCatalog()

	authRepo := auth.NewRepository(dbpool)
	authService := auth.NewService(authRepo)
	authHandler := auth.NewHandler(logger, authService, sessionManager, csrfManager, cfg.LoginRateLimit)

	volunteersRepo := volunteers.NewRepository(dbpool)
	volunteersService := volunteers.NewService(volunteersRepo, catalog, auditLogger, sessionManager)
	volunteersHandler := volunteers.NewHandler(logger, volunteersService, guard)

	eventsRepo := events.NewRepository(dbpool)
	eventsService := events.NewService(eventsRepo, auditLogger, redisClient)
	eventsHandler := events.NewHandler(logger, eventsService, guard)

	jobClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("jobs client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()

	applicationsRepo := applications.NewRepository(dbpool)
	applicationsService := applications.NewService(applicationsRepo, eventsService, idempotencyStore, auditLogger, jobClient, volunteersService)
	applicationsHandler := applications.NewHandler(logger, applicationsService, eventsService, guard)

	hotelRepo := hotel.NewRepository(dbpool)
	hotelService := hotel.NewService(hotelRepo, auditLogger)
	hotelHandler := hotel.NewHandler(logger, hotelService, eventsService, guard)

	auditRepo := audit.NewRepository(dbpool)
	auditService := audit.NewService(auditRepo)
	auditHandler := audit.NewHandler(logger, auditService, guard)

	metrics := observability.NewMetrics()

	reportClient := report.NewClient(cfg.GotenbergURL)
	reportHandler := report.NewHandler(reportClient, logger, guard, eventsService, applicationsService, volunteersService)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:              logger,
		Config:              cfg,
		SessionManager:      sessionManager,
		CSRFManager:         csrfManager,
		AuthHandler:         authHandler,
		VolunteersHandler:   volunteersHandler,
		EventsHandler:       eventsHandler,
		ApplicationsHandler: applicationsHandler,
		HotelHandler:        hotelHandler,
		AuditHandler:        auditHandler,
		ReportHandler:       reportHandler,
		JobHandler:          jobHandler,
		Metrics:             metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
