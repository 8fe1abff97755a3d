package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"nivasa/internal/amqp"
	"nivasa/internal/cli"
	"nivasa/internal/log"
	"nivasa/internal/metrics"
	"nivasa/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL")).WithComponent(log.ComponentWorker)
	logger.Info("Starting nivasa-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	// Snapshots must outlive the process and be visible to the API server.
	if cfg.DataBackend != "sqlite" {
		logger.Error("The stats worker requires DATA_BACKEND=sqlite", "backend", cfg.DataBackend)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("The stats worker requires AMQP_URL")
		os.Exit(1)
	}

	res := cli.InitBackend(context.Background(), logger, cfg)
	client, ok := res.Publisher.(*amqp.Client)
	if !ok {
		logger.Error("AMQP broker unreachable", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		res.Cleanup()
		os.Exit(1)
	}

	svc := cli.NewTracker(res, logger)
	statsWorker := worker.NewStatsWorker(svc, cfg.StatsDebounce, logger)

	mux := http.NewServeMux()
	mux.Handle("GET /metrics", metrics.Handler())
	metricsSrv := &http.Server{
		Addr:              ":" + cfg.WorkerMetricsPort,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := metricsSrv.Shutdown(ctx); err != nil {
			logger.Warn("Metrics server shutdown error", log.FieldError, err)
		}
		if err := res.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", log.FieldError, err)
		}
	})

	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server error", log.FieldError, err, "port", cfg.WorkerMetricsPort)
		}
	}()

	go func() {
		err := client.ConsumeEntityChanged(ctx, statsWorker.HandleEntityChanged)
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Message consumption failed", log.FieldError, err)
			os.Exit(1)
		}
	}()

	cli.WaitForShutdown(ctx, done)
}
