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

	"github.com/atithi-pms/atithi/internal/accounting/journals"
	"github.com/atithi-pms/atithi/internal/accounting/ledgers"
	"github.com/atithi-pms/atithi/internal/accounting/posting"
	"github.com/atithi-pms/atithi/internal/accounting/reports"
	"github.com/atithi-pms/atithi/internal/app"
	"github.com/atithi-pms/atithi/internal/billing"
	"github.com/atithi-pms/atithi/internal/checkout"
	"github.com/atithi-pms/atithi/internal/inventory"
	"github.com/atithi-pms/atithi/internal/observability"
	"github.com/atithi-pms/atithi/internal/platform/cache"
	"github.com/atithi-pms/atithi/internal/platform/db"
	"github.com/atithi-pms/atithi/internal/reservations"
	"github.com/atithi-pms/atithi/internal/tax"
	"github.com/atithi-pms/atithi/jobs"
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

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, report caching disabled", slog.Any("error", err))
		redisClient = nil
	}
	defer func() {
		if redisClient != nil {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}
	}()

	calc := tax.New(tax.Config{HomeStateCode: cfg.HomeStateCode})

	ledgerService := ledgers.NewService(ledgers.NewRepository(pool))
	journalService := journals.NewService(journals.NewRepository(pool), logger)
	poster := posting.NewPoster(ledgerService, journalService, logger)

	reportRepo := reports.NewRepository(pool)
	reportService := reports.NewService(reportRepo, reportRepo,
		reports.NewCache(redisClient, 5*time.Minute), logger)

	roomRepo := reservations.NewRepository(pool)
	inventoryService := inventory.NewService(inventory.NewRepository(pool), logger)
	billingService := billing.NewService(roomRepo, billing.NewRepository(pool), inventoryService, calc, logger)

	dispatcher, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("asynq client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dispatcher.Close(); err != nil {
			logger.Warn("asynq close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()

	checkoutService := checkout.NewService(
		checkout.NewRepository(pool),
		billingService,
		inventoryService,
		poster,
		dispatcher,
		calc,
		checkout.Config{KeycardFee: cfg.KeycardFee, LateFeeGrace: cfg.LateFeeGrace},
		logger,
	)
	checkoutService.WithMetrics(metrics)

	router := app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		BillingHandler:  billing.NewHandler(logger, billingService),
		CheckoutHandler: checkout.NewHandler(logger, checkoutService),
		JournalHandler:  journals.NewHandler(logger, journalService),
		LedgerHandler:   ledgers.NewHandler(logger, ledgerService),
		PostingHandler:  posting.NewHandler(logger, poster),
		ReportHandler:   reports.NewHandler(logger, reportService),
		JobHandler:      jobs.NewHandler(asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr}), logger),
		Metrics:         metrics,
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
