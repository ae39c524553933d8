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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/KevinDennyII/crm-windshield-repair-sa-sub003/internal/app"
	"github.com/KevinDennyII/crm-windshield-repair-sa-sub003/internal/artifacts"
	"github.com/KevinDennyII/crm-windshield-repair-sa-sub003/internal/invoicing"
	jobmetrics "github.com/KevinDennyII/crm-windshield-repair-sa-sub003/internal/jobs"
	"github.com/KevinDennyII/crm-windshield-repair-sa-sub003/internal/jobstore"
	"github.com/KevinDennyII/crm-windshield-repair-sa-sub003/internal/observability"
	"github.com/KevinDennyII/crm-windshield-repair-sa-sub003/internal/platform/cache"
	"github.com/KevinDennyII/crm-windshield-repair-sa-sub003/internal/platform/db"
	"github.com/KevinDennyII/crm-windshield-repair-sa-sub003/jobs"
)

const metricsAddr = ":9091"

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
	redisOpt, err := cache.QueueOpt(cfg.RedisAddr)
	if err != nil {
		logger.Error("queue options", slog.Any("error", err))
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	generationMetrics := observability.NewMetricsWith(registry)
	jobMetrics := jobmetrics.NewMetrics(registry)

	service := invoicing.NewService(invoicing.Config{
		Store:     jobstore.NewRepository(pool),
		Cache:     artifacts.NewCache(redisClient, cfg.InvoiceCacheTTL),
		Generator: app.NewGenerator(cfg, logger, generationMetrics),
		Logger:    logger,
	})
	invoiceJob := invoicing.NewJob(invoicing.JobConfig{
		Service: service,
		Archive: artifacts.Archive{Dir: cfg.StorageDir()},
		Metrics: jobMetrics,
		Logger:  logger,
	})

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: redisOpt,
		Logger:    logger,
		Handlers:  []jobs.TaskHandler{invoiceJob.TaskHandler()},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	metricsServer := &http.Server{
		Addr:              metricsAddr,
		Handler:           promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("worker metrics server", slog.Any("error", err))
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	logger.Info("starting worker", slog.String("storage_dir", cfg.StorageDir()))
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
