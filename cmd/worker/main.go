package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/atithi-pms/atithi/internal/accounting/journals"
	"github.com/atithi-pms/atithi/internal/accounting/ledgers"
	"github.com/atithi-pms/atithi/internal/accounting/posting"
	"github.com/atithi-pms/atithi/internal/app"
	"github.com/atithi-pms/atithi/internal/housekeeping"
	jobmetrics "github.com/atithi-pms/atithi/internal/jobs"
	"github.com/atithi-pms/atithi/internal/platform/db"
	"github.com/atithi-pms/atithi/jobs"
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

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	ledgerService := ledgers.NewService(ledgers.NewRepository(pool))
	journalService := journals.NewService(journals.NewRepository(pool), logger)
	poster := posting.NewPoster(ledgerService, journalService, logger)
	reconciler := posting.NewReconciler(posting.NewReconStore(pool), poster, logger)

	housekeepingStore := housekeeping.NewStore(pool)
	metrics := jobmetrics.NewMetrics(nil)

	reconTask, err := jobs.NewLedgerReconTask(time.Now())
	if err != nil {
		logger.Error("build reconciliation task", slog.Any("error", err))
		os.Exit(1)
	}
	integrityTask, err := jobs.NewGLIntegrityTask(time.Now())
	if err != nil {
		logger.Error("build integrity task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskCleaningRequest, Handler: jobs.NewCleaningHandler(housekeepingStore, logger)},
			{Type: jobs.TaskRefillRequest, Handler: jobs.NewRefillHandler(housekeepingStore, logger)},
			{Type: jobs.TaskLedgerReconciliation, Handler: jobs.NewLedgerReconHandler(reconciler, logger, metrics)},
			{Type: jobs.TaskGLIntegrity, Handler: jobs.NewGLIntegrityHandler(pool, logger, metrics)},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "*/30 * * * *", Task: reconTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "0 3 * * *", Task: integrityTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("worker starting", slog.String("redis", cfg.RedisAddr))
	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker stopped", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("worker stopped")
}
