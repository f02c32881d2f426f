package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/animecon/volunteer-manager/internal/app"
	"github.com/animecon/volunteer-manager/internal/audit"
	jobmetrics "github.com/animecon/volunteer-manager/internal/jobs"
	"github.com/animecon/volunteer-manager/internal/shared"
	"github.com/animecon/volunteer-manager/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
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

	pool, err := pgxpool.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	metrics := jobmetrics.NewMetrics(nil)

	mailer := jobs.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom, logger)
	emailJob := &jobs.SendEmailJob{Mailer: mailer, Logger: logger, Metrics: metrics}

	auditService := audit.NewService(audit.NewRepository(pool))
	idempotencyStore := shared.NewIdempotencyStore(pool)
	retentionDays := int(cfg.AuditRetention / (24 * time.Hour))
	sweepJob := &jobs.AuditSweepJob{
		Audit:         auditService,
		Idempotency:   idempotencyStore,
		RetentionDays: retentionDays,
		Logger:        logger,
		Metrics:       metrics,
	}

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

	var recipients []string
	if cfg.DigestRecipients != "" {
		recipients = strings.Split(cfg.DigestRecipients, ",")
	}
	digestJob := &jobs.NightlyDigestJob{
		Pool:       pool,
		Recipients: recipients,
		Enqueuer:   jobClient,
		Logger:     logger,
		Metrics:    metrics,
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskTypeSendEmail, Handler: emailJob.Handle},
			{Type: jobs.TaskTypeAuditSweep, Handler: sweepJob.Handle},
			{Type: jobs.TaskTypeNightlyDigest, Handler: digestJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "0 3 * * *", Task: jobs.NewAuditSweepTask(), Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "30 5 * * *", Task: jobs.NewNightlyDigestTask(), Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
