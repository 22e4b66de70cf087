package main

import (
	"chat-analyzer/internal/adapters/parser"
	"chat-analyzer/internal/analyzer"
	"chat-analyzer/internal/cache"
	"chat-analyzer/internal/log"
	"chat-analyzer/internal/pkg/config"
	"chat-analyzer/internal/server"
	"chat-analyzer/internal/server/usecase"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/sevlyar/go-daemon"
)

func main() {
	if err := run(); err != nil {
		slog.Error("application run failed", "error", err)
		os.Exit(1)
	}
}

// run инкапсулирует всю логику инициализации и запуска приложения.
func run() error {
	configPath := flag.String("config", config.DefaultConfigFile, "Path to the YAML config file")
	detach := flag.Bool("daemon", false, "Run the service in the background")
	flag.Parse()

	// 1. Загрузка и валидация конфигурации
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		// Логгер еще не инициализирован, выводим в stderr
		_, _ = fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.ValidateServer(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "config validation failed: %v\n", err)
		os.Exit(1)
	}

	// 2. Переход в фоновый режим. Родительский процесс завершается сразу.
	if *detach {
		dctx := &daemon.Context{
			PidFileName: cfg.Daemon.PidFile,
			PidFilePerm: 0o644,
			LogFileName: cfg.Daemon.LogFile,
			LogFilePerm: 0o640,
			WorkDir:     cfg.Daemon.WorkDir,
			Umask:       0o27,
		}
		child, err := dctx.Reborn()
		if err != nil {
			return fmt.Errorf("failed to daemonize: %w", err)
		}
		if child != nil {
			fmt.Printf("chat-analyzer started in background, pid %d\n", child.Pid)
			return nil
		}
		defer func() {
			if err := dctx.Release(); err != nil {
				slog.Error("failed to release pid file", "error", err)
			}
		}()
	}

	// 3. Инициализация логгера
	logger := log.New(os.Stdout, cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(logger)

	// 4. Инициализация зависимостей
	cacheStore := cache.NewCacheStore()
	processor := usecase.NewAnalyzeChatUseCase(cfg, parser.NewWhatsAppParser(), analyzer.NewAnalyzer(), cacheStore)

	// 5. Создание HTTP-сервера
	srv, err := server.New(cfg, processor, cacheStore)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	appCtx, appCancel := context.WithCancel(context.Background())
	defer appCancel()
	srv.StartBackground(appCtx)

	// 6. Запуск сервера и graceful shutdown
	serverDone := make(chan struct{})
	go func() {
		defer close(serverDone)
		slog.Info("Starting server", "addr", cfg.Address())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
		slog.Info("Signal received, shutting down...")
	case <-serverDone:
		return fmt.Errorf("server stopped unexpectedly")
	}

	// Сначала останавливаем фоновую очистку кэша
	appCancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	<-serverDone
	slog.Info("Application exited gracefully")
	return nil
}
