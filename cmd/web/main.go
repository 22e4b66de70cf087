package main

import (
	"chat-analyzer/internal/apiclient"
	"chat-analyzer/internal/log"
	"chat-analyzer/internal/pkg/config"
	"chat-analyzer/internal/router"
	"chat-analyzer/internal/web"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

const healthProbeTimeout = 5 * time.Second

func main() {
	configPath := flag.String("config", config.DefaultConfigFile, "Path to the YAML config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.ValidateFrontend(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "config validation failed: %v\n", err)
		os.Exit(1)
	}

	logger := log.New(os.Stdout, cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := router.NewClientPool(ctx, cfg.BackendURLs(), cfg.Frontend.HealthCheckInterval,
		logger.With(slog.String("component", "router")),
		apiclient.WithTimeout(cfg.Frontend.RequestTimeout),
		apiclient.WithLogger(logger.With(slog.String("component", "apiclient"))),
	)
	if err != nil {
		slog.Error("failed to create backend pool", "error", err)
		os.Exit(1)
	}
	defer pool.Stop()

	srv := web.New(cfg, pool, logger.With(slog.String("component", "web")))

	// Недоступный сервис анализа не мешает запуску: проверка только пишет в лог
	probeCtx, probeCancel := context.WithTimeout(ctx, healthProbeTimeout)
	srv.CheckBackend(probeCtx)
	probeCancel()

	srv.StartBackground(ctx)

	serverDone := make(chan struct{})
	go func() {
		defer close(serverDone)
		slog.Info("Starting web front-end", "addr", cfg.FrontendAddress(), "backends", cfg.BackendURLs())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Signal received, shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	<-serverDone
	slog.Info("Web front-end stopped")
}
