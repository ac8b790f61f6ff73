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
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/stockdesk/console/internal/apiclient"
	"github.com/stockdesk/console/internal/app"
	jobmetrics "github.com/stockdesk/console/internal/jobs"
	"github.com/stockdesk/console/jobs"
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
	if !cfg.WorkerEnabled() {
		logger.Warn("WORKER_USERNAME and WORKER_PASSWORD are not set, worker disabled")
		return
	}

	client := apiclient.New(apiclient.Config{
		BaseURL:    cfg.APIBaseURL,
		APIPrefix:  cfg.APIPrefix,
		AuthPrefix: cfg.APIAuthPrefix,
		Timeout:    cfg.APITimeout,
	})
	account := jobs.NewServiceAccount(client, cfg.WorkerUsername, cfg.WorkerPassword)
	metrics := jobmetrics.NewMetrics(nil)

	importJob := jobs.NewOrdersImportJob(account, logger, metrics)
	scanJob := jobs.NewStockScanJob(account, logger, metrics)

	importTask, err := jobs.NewOrdersImportTask("cron")
	if err != nil {
		logger.Error("build import task", slog.Any("error", err))
		os.Exit(1)
	}
	scanTask, err := jobs.NewStockScanTask("cron")
	if err != nil {
		logger.Error("build stock scan task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts:   asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword},
		Logger:      logger,
		Concurrency: cfg.WorkerThreads,
		Location:    cfg.Location(),
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskOrdersImport, Handler: importJob.Handle},
			{Type: jobs.TaskStockScan, Handler: scanJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: cfg.ImportCron, Task: importTask, Options: []asynq.Option{asynq.MaxRetry(2), asynq.Timeout(2 * time.Minute)}},
			{Spec: cfg.StockScanCron, Task: scanTask, Options: []asynq.Option{asynq.MaxRetry(1)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	var metricsServer *http.Server
	if cfg.WorkerMetrics != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		metricsServer = &http.Server{Addr: cfg.WorkerMetrics, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			logger.Info("serving worker metrics", slog.String("addr", cfg.WorkerMetrics))
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Warn("worker metrics server", slog.Any("error", err))
			}
		}()
	}

	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}

	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}
}
