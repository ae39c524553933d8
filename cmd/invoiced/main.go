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

	"github.com/hibiken/asynq"

	"github.com/KevinDennyII/crm-windshield-repair-sa-sub003/internal/app"
	"github.com/KevinDennyII/crm-windshield-repair-sa-sub003/internal/artifacts"
	invoicehttp "github.com/KevinDennyII/crm-windshield-repair-sa-sub003/internal/invoice/http"
	"github.com/KevinDennyII/crm-windshield-repair-sa-sub003/internal/invoicing"
	"github.com/KevinDennyII/crm-windshield-repair-sa-sub003/internal/jobstore"
	"github.com/KevinDennyII/crm-windshield-repair-sa-sub003/internal/observability"
	"github.com/KevinDennyII/crm-windshield-repair-sa-sub003/internal/platform/cache"
	"github.com/KevinDennyII/crm-windshield-repair-sa-sub003/internal/platform/db"
	"github.com/KevinDennyII/crm-windshield-repair-sa-sub003/jobs"
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

	repo := jobstore.NewRepository(dbpool)
	if err := repo.Migrate(ctx); err != nil {
		logger.Error("migrate job store", slog.Any("error", err))
		os.Exit(1)
	}

	// The artifact cache and queue are optional: without redis every
	// request renders and the queue endpoint answers 503.
	var artifactCache *artifacts.Cache
	var queue invoicehttp.Enqueuer
	var jobHandler *jobs.Handler
	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, caching disabled", slog.Any("error", err))
	} else {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}()
		artifactCache = artifacts.NewCache(redisClient, cfg.InvoiceCacheTTL)

		redisOpt, err := cache.QueueOpt(cfg.RedisAddr)
		if err != nil {
			logger.Error("queue options", slog.Any("error", err))
			os.Exit(1)
		}
		client, err := jobs.NewClient(redisOpt)
		if err != nil {
			logger.Error("init queue client", slog.Any("error", err))
			os.Exit(1)
		}
		defer func() {
			if err := client.Close(); err != nil {
				logger.Warn("queue client close", slog.Any("error", err))
			}
		}()
		queue = client

		inspector := asynq.NewInspector(redisOpt)
		defer func() {
			if err := inspector.Close(); err != nil {
				logger.Warn("inspector close", slog.Any("error", err))
			}
		}()
		jobHandler = jobs.NewHandler(inspector, logger)
	}

	metrics := observability.NewMetrics()
	generator := app.NewGenerator(cfg, logger, metrics)
	service := invoicing.NewService(invoicing.Config{
		Store:     repo,
		Cache:     artifactCache,
		Generator: generator,
		Logger:    logger,
	})

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		InvoiceHandler: invoicehttp.NewHandler(logger, service, generator, queue),
		JobHandler:     jobHandler,
		Metrics:        metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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
