package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"nivasa/internal/auth"
	"nivasa/internal/cache"
	"nivasa/internal/cli"
	apphttp "nivasa/internal/http"
	"nivasa/internal/log"
	"nivasa/internal/services"
)

const shutdownTimeout = 30 * time.Second

// pinger is implemented by stores backed by a real database.
type pinger interface {
	Ping(ctx context.Context) error
}

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := cli.LoadAndValidateConfig(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	res := cli.InitBackend(ctx, logger, cfg)

	stats := cli.NewStatsCache(cfg)
	caches := cache.NewManager(logger.WithComponent(log.ComponentCache).Slog())
	caches.Register(stats)
	caches.StartCleanup(cfg.StatsCacheTTL)

	svc := cli.NewTracker(res, logger, services.WithStatsCache(stats))

	var ready func(context.Context) error
	if p, ok := res.Store.(pinger); ok {
		ready = p.Ping
	}
	srv := apphttp.NewServer(":"+cfg.Port, svc, auth.NewSigner(cfg.JWTSecret), apphttp.Options{
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Logger:             logger,
		Ready:              ready,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting nivasa server", log.FieldOperation, log.OpStartup, "port", cfg.Port, "backend", cfg.DataBackend, "sheets", cfg.SheetsEnabled())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down server", log.FieldOperation, log.OpShutdown)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	err := g.Wait()
	caches.Stop()
	if cerr := res.Cleanup(); cerr != nil {
		logger.Error("Backend cleanup failed", log.FieldError, cerr)
	}
	if err != nil {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
