// Package config предоставляет управление конфигурацией приложения
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// DefaultConfigFile — файл конфигурации, читаемый по умолчанию.
const DefaultConfigFile = "config.yml"

// Server содержит конфигурацию сервиса анализа
type Server struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	MaxUploadSizeMB int64         `yaml:"max_upload_size_mb"`
}

// Frontend содержит конфигурацию веб-интерфейса и клиентов сервиса анализа
type Frontend struct {
	// BackendURL — базовый адрес сервиса анализа, допускается вариант с суффиксом /api.
	BackendURL string `yaml:"backend_url"`
	// Backends — дополнительные экземпляры сервиса; запросы распределяются по кругу.
	Backends            []string      `yaml:"backends"`
	HealthCheckInterval time.Duration `yaml:"health_check_interval"`
	RequestTimeout      time.Duration `yaml:"request_timeout"` // 0 - таймаут транспорта
	Host                string        `yaml:"host"`
	Port                int           `yaml:"port"`
	SessionTTL          time.Duration `yaml:"session_ttl"`
}

// Processing содержит конфигурацию обработки
type Processing struct {
	CacheTTL        time.Duration `yaml:"cache_ttl"` // 0 - кэш отключен
	CleanupInterval time.Duration `yaml:"cleanup_interval"`
}

// Bot содержит конфигурацию Telegram-бота
type Bot struct {
	Token           string        `yaml:"token"`
	PollingTimeout  int           `yaml:"polling_timeout_seconds"`
	ExcelThreshold  int           `yaml:"excel_threshold"`
	TaskTimeout     time.Duration `yaml:"task_timeout"`
	MaxFileSizeMB   int64         `yaml:"max_file_size_mb"`
	BarWidth        int           `yaml:"bar_width"`
	DownloadTimeout time.Duration `yaml:"download_timeout"`
}

// Logging содержит конфигурацию логирования
type Logging struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// Daemon содержит конфигурацию фонового режима сервиса
type Daemon struct {
	PidFile string `yaml:"pid_file"`
	LogFile string `yaml:"log_file"`
	WorkDir string `yaml:"work_dir"`
}

// Config содержит конфигурацию приложения
type Config struct {
	Server     Server     `yaml:"server"`
	Frontend   Frontend   `yaml:"frontend"`
	Processing Processing `yaml:"processing"`
	Bot        Bot        `yaml:"bot"`
	Logging    Logging    `yaml:"logging"`
	Daemon     Daemon     `yaml:"daemon"`
}

// Default возвращает конфигурацию со значениями по умолчанию.
func Default() *Config {
	return &Config{
		Server: Server{
			Host:            DefaultServerHost,
			Port:            DefaultServerPort,
			ReadTimeout:     DefaultReadTimeout,
			WriteTimeout:    DefaultWriteTimeout,
			IdleTimeout:     DefaultIdleTimeout,
			ShutdownTimeout: DefaultShutdownTimeout,
			MaxUploadSizeMB: DefaultMaxUploadSizeMB,
		},
		Frontend: Frontend{
			BackendURL:          DefaultBackendURL,
			HealthCheckInterval: DefaultHealthCheckInterval,
			RequestTimeout:      DefaultRequestTimeout,
			Host:                DefaultFrontendHost,
			Port:                DefaultFrontendPort,
			SessionTTL:          DefaultSessionTTL,
		},
		Processing: Processing{
			CacheTTL:        DefaultCacheTTL,
			CleanupInterval: DefaultCleanupInterval,
		},
		Bot: Bot{
			PollingTimeout:  DefaultPollingTimeout,
			ExcelThreshold:  DefaultExcelThreshold,
			TaskTimeout:     DefaultBotTaskTimeout,
			MaxFileSizeMB:   DefaultMaxUploadSizeMB,
			BarWidth:        DefaultBarWidth,
			DownloadTimeout: DefaultDownloadTimeout,
		},
		Logging: Logging{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Daemon: Daemon{
			PidFile: DefaultPidFile,
			LogFile: DefaultDaemonLogFile,
			WorkDir: DefaultWorkDir,
		},
	}
}

// LoadConfig загружает конфигурацию из .env, YAML-файла и переменных окружения.
// Отсутствие файла не является ошибкой: используются значения по умолчанию.
func LoadConfig(path string) (*Config, error) {
	// .env необязателен
	_ = godotenv.Load()

	if path == "" {
		path = DefaultConfigFile
	}

	cfg := Default()
	if err := loadFromYAML(path, cfg); err != nil {
		return nil, err
	}
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFromYAML накладывает значения из YAML-файла поверх cfg
func loadFromYAML(filename string, cfg *Config) error {
	data, err := os.ReadFile(filename)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("не удалось прочитать файл конфигурации %s: %w", filename, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("не удалось разобрать YAML конфигурацию: %w", err)
	}
	return nil
}

// applyEnv накладывает переменные окружения поверх cfg
func applyEnv(cfg *Config) error {
	cfg.Frontend.BackendURL = getEnv("BACKEND_URL", cfg.Frontend.BackendURL)
	cfg.Server.Host = getEnv("SERVER_HOST", cfg.Server.Host)
	cfg.Logging.Level = strings.ToLower(getEnv("LOG_LEVEL", cfg.Logging.Level))
	cfg.Logging.Format = strings.ToLower(getEnv("LOG_FORMAT", cfg.Logging.Format))
	cfg.Bot.Token = getEnv("BOT_TOKEN", cfg.Bot.Token)

	if v := os.Getenv("SERVER_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("недопустимый SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if v := os.Getenv("WEB_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("недопустимый WEB_PORT: %w", err)
		}
		cfg.Frontend.Port = port
	}
	return nil
}

// Address возвращает адрес сервиса анализа в формате "host:port"
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

// FrontendAddress возвращает адрес веб-интерфейса в формате "host:port"
func (c *Config) FrontendAddress() string {
	return fmt.Sprintf("%s:%d", c.Frontend.Host, c.Frontend.Port)
}

// BackendURLs возвращает адреса всех экземпляров сервиса анализа без повторов, основной первым
func (c *Config) BackendURLs() []string {
	seen := make(map[string]bool)
	var urls []string
	for _, u := range append([]string{c.Frontend.BackendURL}, c.Frontend.Backends...) {
		u = strings.TrimSpace(u)
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		urls = append(urls, u)
	}
	return urls
}

// MaxUploadSize возвращает лимит загрузки сервиса в байтах
func (c *Config) MaxUploadSize() int64 {
	return c.Server.MaxUploadSizeMB << 20
}

// Validate проверяет общие значения конфигурации
func (c *Config) Validate() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level должен быть одним из: debug, info, warn, error")
	}

	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format должен быть одним из: text, json")
	}

	if c.Processing.CacheTTL < 0 {
		return fmt.Errorf("processing.cache_ttl должно быть неотрицательным (0 для отключения кэша)")
	}
	if c.Processing.CleanupInterval <= 0 {
		return fmt.Errorf("processing.cleanup_interval должно быть положительным")
	}
	return nil
}

// ValidateServer проверяет значения, нужные сервису анализа
func (c *Config) ValidateServer() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := validatePort("server.port", c.Server.Port); err != nil {
		return err
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout должно быть положительным")
	}
	if c.Server.MaxUploadSizeMB <= 0 {
		return fmt.Errorf("server.max_upload_size_mb должно быть положительным")
	}
	return nil
}

// ValidateFrontend проверяет значения, нужные веб-интерфейсу и CLI
func (c *Config) ValidateFrontend() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(c.Frontend.BackendURL) == "" {
		return fmt.Errorf("frontend.backend_url не может быть пустым")
	}
	if c.Frontend.RequestTimeout < 0 {
		return fmt.Errorf("frontend.request_timeout должно быть неотрицательным (0 для таймаута транспорта)")
	}
	if err := validatePort("frontend.port", c.Frontend.Port); err != nil {
		return err
	}
	if c.Frontend.SessionTTL <= 0 {
		return fmt.Errorf("frontend.session_ttl должно быть положительным")
	}
	if c.Frontend.HealthCheckInterval <= 0 {
		return fmt.Errorf("frontend.health_check_interval должно быть положительным")
	}
	return nil
}

// ValidateBot проверяет значения, нужные Telegram-боту
func (c *Config) ValidateBot() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Bot.Token == "" {
		return fmt.Errorf("bot.token не может быть пустым (или задайте BOT_TOKEN)")
	}
	if strings.TrimSpace(c.Frontend.BackendURL) == "" {
		return fmt.Errorf("frontend.backend_url не может быть пустым")
	}
	if c.Frontend.HealthCheckInterval <= 0 {
		return fmt.Errorf("frontend.health_check_interval должно быть положительным")
	}
	if c.Bot.ExcelThreshold <= 0 {
		return fmt.Errorf("bot.excel_threshold должно быть положительным")
	}
	if c.Bot.TaskTimeout <= 0 {
		return fmt.Errorf("bot.task_timeout должно быть положительным")
	}
	if c.Bot.MaxFileSizeMB <= 0 {
		return fmt.Errorf("bot.max_file_size_mb должно быть положительным")
	}
	return nil
}

func validatePort(name string, port int) error {
	if port <= 0 || port > 65535 {
		return fmt.Errorf("%s должен быть действительным номером порта (1-65535)", name)
	}
	return nil
}

// getEnv извлекает значение переменной окружения или возвращает значение по умолчанию, если она не установлена
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
