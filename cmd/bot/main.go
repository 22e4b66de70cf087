package main

import (
	"chat-analyzer/internal/apiclient"
	"chat-analyzer/internal/bot"
	"chat-analyzer/internal/log"
	"chat-analyzer/internal/pkg/config"
	"chat-analyzer/internal/router"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func main() {
	configPath := flag.String("config", config.DefaultConfigFile, "Path to the YAML config file")
	flag.Parse()

	// Загрузка конфигурации бота
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load bot config: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.ValidateBot(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to validate bot config: %v\n", err)
		os.Exit(1)
	}

	// Инициализация логгера с маскировкой токенов и настройками из конфига
	logger := log.New(os.Stdout, cfg.Logging.Level, cfg.Logging.Format)
	slog.SetDefault(logger)
	if err := tgbotapi.SetLogger(log.NewTGBotAPIAdapter(logger)); err != nil {
		slog.Warn("failed to set telegram library logger", slog.String("error", err.Error()))
	}

	// Ожидание сигналов для graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Инициализация компонентов
	pool, err := router.NewClientPool(ctx, cfg.BackendURLs(), cfg.Frontend.HealthCheckInterval,
		logger.With(slog.String("component", "router")),
		apiclient.WithTimeout(cfg.Frontend.RequestTimeout),
		apiclient.WithLogger(logger.With(slog.String("component", "apiclient"))),
	)
	if err != nil {
		slog.Error("failed to create backend pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Stop()

	b, err := bot.NewBot(cfg.Bot, pool, bot.NewTaskStore(), logger.With(slog.String("component", "bot")))
	if err != nil {
		slog.Error("failed to create bot", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("Bot created successfully, starting...", slog.Any("backends", cfg.BackendURLs()))

	// Start возвращается после отмены ctx и завершения начатых анализов
	b.Start(ctx)

	slog.Info("Bot stopped gracefully")
}
